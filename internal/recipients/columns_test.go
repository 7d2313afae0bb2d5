package recipients

import (
	"errors"
	"testing"
)

func TestResolveColumns_CaseInsensitiveAliases(t *testing.T) {
	tests := []struct {
		name      string
		header    []string
		wantName  int
		wantPhone int
		wantFlag  int
		polarity  Polarity
	}{
		{"canonical header", []string{"Name", "PhoneNumber", "SendFlag"}, 0, 1, 2, Positive},
		{"tenant and mobile", []string{"Tenant", "Mobile", "Paid"}, 0, 1, 2, Negative},
		{"contact uppercase", []string{"CONTACT", "PHONE"}, 0, 1, -1, Positive},
		{"send? punctuation", []string{"name", "phone", "Send?"}, 0, 1, 2, Positive},
		{"literal FALSE header", []string{"Name", "Phone", "FALSE"}, 0, 1, 2, Negative},
		{"flag among extra columns", []string{"Unit", "Name", "Rent", "Phone", "Active"}, 1, 3, 4, Positive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ResolveColumns(tt.header)
			if err != nil {
				t.Fatalf("ResolveColumns(%v) error = %v", tt.header, err)
			}
			if res.NameIdx != tt.wantName || res.PhoneIdx != tt.wantPhone || res.FlagIdx != tt.wantFlag {
				t.Errorf("ResolveColumns(%v) = {%d %d %d}, want {%d %d %d}",
					tt.header, res.NameIdx, res.PhoneIdx, res.FlagIdx, tt.wantName, tt.wantPhone, tt.wantFlag)
			}
			if res.FlagIdx >= 0 && res.FlagPolarity != tt.polarity {
				t.Errorf("ResolveColumns(%v) polarity = %v, want %v", tt.header, res.FlagPolarity, tt.polarity)
			}
		})
	}
}

func TestResolveColumns_FirstMatchWins(t *testing.T) {
	// Multiple synonym columns for the same role: the leftmost one binds.
	res, err := ResolveColumns([]string{"Tenant", "Name", "Mobile", "Phone", "Active", "Paid"})
	if err != nil {
		t.Fatalf("ResolveColumns() error = %v", err)
	}
	if res.NameIdx != 0 {
		t.Errorf("NameIdx = %d, want 0 (Tenant before Name)", res.NameIdx)
	}
	if res.PhoneIdx != 2 {
		t.Errorf("PhoneIdx = %d, want 2 (Mobile before Phone)", res.PhoneIdx)
	}
	if res.FlagIdx != 4 || res.FlagPolarity != Positive {
		t.Errorf("FlagIdx = %d polarity %v, want 4/Positive (Active before Paid)", res.FlagIdx, res.FlagPolarity)
	}
}

func TestResolveColumns_BoundColumnNotReused(t *testing.T) {
	// A second name-alias column stays unbound and is never picked up as
	// phone; a column bound to name/phone is skipped in the flag scan.
	res, err := ResolveColumns([]string{"Name", "Contact", "Phone"})
	if err != nil {
		t.Fatalf("ResolveColumns() error = %v", err)
	}
	if res.NameIdx != 0 || res.PhoneIdx != 2 {
		t.Errorf("resolution = {%d %d}, want {0 2}", res.NameIdx, res.PhoneIdx)
	}
	if res.FlagIdx != -1 {
		t.Errorf("FlagIdx = %d, want -1 (Contact is not a flag alias)", res.FlagIdx)
	}
}

func TestResolveColumns_Missing(t *testing.T) {
	_, err := ResolveColumns([]string{"Foo", "Bar"})
	var missing *MissingColumnError
	if !errors.As(err, &missing) {
		t.Fatalf("ResolveColumns() error = %T, want *MissingColumnError", err)
	}
	if len(missing.MissingRoles) != 2 {
		t.Errorf("MissingRoles = %v, want both roles", missing.MissingRoles)
	}
	if missing.Error() == "" {
		t.Error("MissingColumnError.Error() is empty")
	}
}
