package recipients

import (
	"errors"
	"fmt"
	"strings"
)

var errNoHeader = errors.New("input has no header row")

// Recognized flag spellings per polarity. Anything outside the set resolves
// to "do not send" — fail-closed, there is no unknown-means-true fallback.
var truthyValues = map[string]bool{
	"true": true, "1": true, "yes": true, "y": true,
}

var falsyValues = map[string]bool{
	"false": true, "0": true, "no": true, "n": true,
}

// Normalize converts a raw table into the canonical recipient table.
//
// The returned bool reports whether SendFlag was defaulted to true for every
// row because the input carries no recognizable flag column at all (fail-open,
// callers surface a warning). That is distinct from the per-value rule above:
// when a flag column exists, unrecognized values fail closed to false.
//
// Output row order equals input row order and name/phone values are copied
// verbatim. Normalization is all-or-nothing: on any error no table is
// returned. Pure function, safe for concurrent use.
func Normalize(raw *RawTable) ([]Record, bool, error) {
	if raw == nil || len(raw.Header) == 0 {
		return nil, false, &ParseError{Err: errNoHeader}
	}

	res, err := ResolveColumns(raw.Header)
	if err != nil {
		return nil, false, err
	}

	width := len(raw.Header)
	for i, row := range raw.Rows {
		if len(row) != width {
			return nil, false, &ParseError{
				Err: fmt.Errorf("row %d has %d fields, header has %d", i+1, len(row), width),
			}
		}
	}

	flagDefaulted := res.FlagIdx < 0
	records := make([]Record, 0, len(raw.Rows))
	for _, row := range raw.Rows {
		rec := Record{
			Name:        row[res.NameIdx],
			PhoneNumber: row[res.PhoneIdx],
			SendFlag:    true,
		}
		if !flagDefaulted {
			rec.SendFlag = interpretFlag(row[res.FlagIdx], res.FlagPolarity)
		}
		records = append(records, rec)
	}

	return records, flagDefaulted, nil
}

func interpretFlag(raw string, polarity Polarity) bool {
	v := strings.ToLower(raw)
	if polarity == Negative {
		return falsyValues[v]
	}
	return truthyValues[v]
}
