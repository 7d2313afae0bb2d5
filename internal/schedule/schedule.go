// Package schedule decides which days reminder runs happen on.
package schedule

import (
	"fmt"
	"time"
)

// Type selects how the send day is computed.
type Type string

const (
	// TypeEndOfMonth sends DaysBeforeEnd days before the last day of the month.
	TypeEndOfMonth Type = "end_of_month"
	// TypeDayOfMonth sends on a fixed calendar day.
	TypeDayOfMonth Type = "day_of_month"
	// TypeManual disables automatic sends; runs are API-triggered only.
	TypeManual Type = "manual"
)

// Schedule is the persisted reminder schedule.
type Schedule struct {
	Type          Type `json:"type" yaml:"type"`
	DaysBeforeEnd int  `json:"days_before_end" yaml:"days_before_end"`
	DayOfMonth    int  `json:"day_of_month" yaml:"day_of_month"`
}

// Validate checks the schedule is internally consistent.
func (s Schedule) Validate() error {
	switch s.Type {
	case TypeEndOfMonth:
		if s.DaysBeforeEnd < 0 || s.DaysBeforeEnd > 10 {
			return fmt.Errorf("days_before_end must be 0-10, got %d", s.DaysBeforeEnd)
		}
	case TypeDayOfMonth:
		if s.DayOfMonth < 1 || s.DayOfMonth > 31 {
			return fmt.Errorf("day_of_month must be 1-31, got %d", s.DayOfMonth)
		}
	case TypeManual:
	default:
		return fmt.Errorf("unknown schedule type %q", s.Type)
	}
	return nil
}

// DaysUntilEndOfMonth returns how many days remain until the last day of
// now's month. Zero means now is the last day.
func DaysUntilEndOfMonth(now time.Time) int {
	// Day 0 of next month is the last day of this month.
	lastDay := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
	return lastDay - now.Day()
}

// Matches reports whether a scheduled run should fire on the given day.
// Manual schedules never match.
func (s Schedule) Matches(now time.Time) bool {
	switch s.Type {
	case TypeEndOfMonth:
		return DaysUntilEndOfMonth(now) == s.DaysBeforeEnd
	case TypeDayOfMonth:
		return now.Day() == s.DayOfMonth
	default:
		return false
	}
}
