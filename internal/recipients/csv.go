package recipients

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// ParseCSV reads comma-delimited input with a header row into a RawTable.
// Field quoting, delimiting and ragged-row detection are encoding/csv's;
// every failure comes back as a ParseError so callers can degrade to their
// previous table instead of crashing.
func ParseCSV(r io.Reader) (*RawTable, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &ParseError{Err: errNoHeader}
	}
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	table := &RawTable{Header: header}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Err: err}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// WriteCSV serializes a canonical table with the fixed header
// Name,PhoneNumber,SendFlag. Re-normalizing the output yields an identical
// table (the export header resolves to the same roles and polarity).
func WriteCSV(w io.Writer, records []Record) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{RoleName, RolePhoneNumber, RoleSendFlag}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		row := []string{rec.Name, rec.PhoneNumber, strconv.FormatBool(rec.SendFlag)}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
