package logger

import "testing"

func TestRedactPhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+15551230000", "*******0000"},
		{"555-123-0000", "******0000"},
		{"0000", "****"},
		{"12", "****"},
		{"", ""},
		{"no digits here", "no digits here"},
	}
	for _, tt := range tests {
		if got := RedactPhone(tt.in); got != tt.want {
			t.Errorf("RedactPhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRedactPIIValue(t *testing.T) {
	if got := redactPIIValue("phone_number", "+15551230000"); got != "*******0000" {
		t.Errorf("phone key not redacted: %q", got)
	}
	if got := redactPIIValue("to", "+15551230000"); got != "*******0000" {
		t.Errorf("to key not redacted: %q", got)
	}
	// Embedded numbers in generic fields are masked too
	got := redactPIIValue("msg", "call +15551230000 today")
	if got == "call +15551230000 today" {
		t.Errorf("embedded number not redacted: %q", got)
	}
}
