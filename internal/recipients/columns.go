package recipients

import "strings"

// Polarity states how raw values in the flag-source column map to "send".
type Polarity int

const (
	// Positive means truthy source values ("true", "1", "yes", "y") mean send.
	Positive Polarity = iota
	// Negative means falsy source values ("false", "0", "no", "n") mean send.
	// This models sheets like "Paid" where the unpaid tenants are the ones
	// who get a reminder.
	Negative
)

// Synonym sets for the two required roles. Matching is case-insensitive and
// exact (no substring matching), first column in header order wins.
var nameAliases = map[string]bool{
	"name":    true,
	"tenant":  true,
	"contact": true,
}

var phoneAliases = map[string]bool{
	"phonenumber": true,
	"phone":       true,
	"mobile":      true,
}

// flagAliases maps recognized flag-column names to their polarity.
var flagAliases = map[string]Polarity{
	"sendflag": Positive,
	"send?":    Positive,
	"active":   Positive,
	"paid":     Negative,
	"false":    Negative, // legacy exports with a literal FALSE header
}

// Resolution is the result of binding raw columns to canonical roles.
// FlagIdx is -1 when the input carries no recognizable flag column.
type Resolution struct {
	NameIdx      int
	PhoneIdx     int
	FlagIdx      int
	FlagPolarity Polarity
}

// ResolveColumns binds header columns to the name/phone/flag roles.
//
// Name and phone are resolved in a single left-to-right pass: the first
// column matching a name alias becomes Name, the first remaining column
// matching a phone alias becomes PhoneNumber. The else-if scan guarantees a
// single column never serves both roles. If either required role stays
// unbound the whole resolution fails with MissingColumnError.
//
// The flag source is then the first not-yet-bound column whose lowercased
// name appears in flagAliases; later matches are ignored.
func ResolveColumns(header []string) (*Resolution, error) {
	res := &Resolution{NameIdx: -1, PhoneIdx: -1, FlagIdx: -1}

	for i, col := range header {
		lower := strings.ToLower(col)
		if res.NameIdx < 0 && nameAliases[lower] {
			res.NameIdx = i
		} else if res.PhoneIdx < 0 && phoneAliases[lower] {
			res.PhoneIdx = i
		}
	}

	if res.NameIdx < 0 || res.PhoneIdx < 0 {
		var missing []string
		if res.NameIdx < 0 {
			missing = append(missing, RoleName)
		}
		if res.PhoneIdx < 0 {
			missing = append(missing, RolePhoneNumber)
		}
		return nil, &MissingColumnError{MissingRoles: missing}
	}

	for i, col := range header {
		if i == res.NameIdx || i == res.PhoneIdx {
			continue
		}
		if polarity, ok := flagAliases[strings.ToLower(col)]; ok {
			res.FlagIdx = i
			res.FlagPolarity = polarity
			break
		}
	}

	return res, nil
}
