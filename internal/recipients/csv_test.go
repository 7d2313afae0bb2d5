package recipients

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParseCSV(t *testing.T) {
	input := "Name,Phone,Active\nAlice,+15551230000,TRUE\n\"Bob, Jr.\",+15551230001,no\n"

	table, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if !reflect.DeepEqual(table.Header, []string{"Name", "Phone", "Active"}) {
		t.Errorf("Header = %v", table.Header)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("Rows = %d, want 2", len(table.Rows))
	}
	if table.Rows[1][0] != "Bob, Jr." {
		t.Errorf("quoted field = %q, want %q", table.Rows[1][0], "Bob, Jr.")
	}
}

func TestParseCSV_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"ragged row", "Name,Phone\nAlice,+15551230000,extra\n"},
		{"bare quote", "Name,Phone\nAl\"ice,+15551230000\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ParseCSV(strings.NewReader(tt.input))
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("ParseCSV() error = %v, want *ParseError", err)
			}
			if table != nil {
				t.Errorf("ParseCSV() returned partial table alongside error")
			}
		})
	}
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	// normalize(serialize(table)) == table, per the canonical export header.
	original := []Record{
		{Name: "Alice", PhoneNumber: "+15551230000", SendFlag: true},
		{Name: "Bob, Jr.", PhoneNumber: "", SendFlag: false},
		{Name: "Carol", PhoneNumber: "+15551230002", SendFlag: true},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, original); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	table, err := ParseCSV(&buf)
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	got, defaulted, err := Normalize(table)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if defaulted {
		t.Error("round-trip lost the flag column")
	}
	if !reflect.DeepEqual(got, original) {
		t.Errorf("round-trip = %+v, want %+v", got, original)
	}
}

func TestWriteCSV_Header(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "Name,PhoneNumber,SendFlag" {
		t.Errorf("header = %q", got)
	}
}
