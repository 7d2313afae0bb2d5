// Package recipients normalizes loosely-structured tenant spreadsheets into
// the canonical three-column recipient table used everywhere else in the
// system (store, API, send worker).
package recipients

import (
	"fmt"
	"strings"
)

// RawTable is tabular input as it came off the wire: the header row verbatim
// plus every data row as strings. No typing or cleaning has happened yet.
type RawTable struct {
	Header []string
	Rows   [][]string
}

// Record is one canonical recipient row. Name and PhoneNumber are carried
// verbatim from the source; format validation (E.164 etc.) is a presentation
// concern, not ours.
type Record struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
	SendFlag    bool   `json:"sendFlag"`
}

// Canonical role names, as reported by MissingColumnError and used for the
// CSV export header.
const (
	RoleName        = "Name"
	RolePhoneNumber = "PhoneNumber"
	RoleSendFlag    = "SendFlag"
)

// MissingColumnError reports which required roles could not be bound to any
// column of the input header. Recoverable: callers keep their previous table
// and surface the missing role names.
type MissingColumnError struct {
	MissingRoles []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("no column found for: %s", strings.Join(e.MissingRoles, ", "))
}

// ParseError wraps malformed tabular input (unreadable CSV, ragged rows).
// Normalization is all-or-nothing: a ParseError means no rows were produced.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed recipient data: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
