package schedule

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 0, 0, 0, time.UTC)
}

func TestDaysUntilEndOfMonth(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"last day of 31-day month", date(2026, time.August, 31), 0},
		{"mid month", date(2026, time.August, 28), 3},
		{"first of month", date(2026, time.September, 1), 29},
		{"february non-leap", date(2026, time.February, 26), 2},
		{"february leap year", date(2028, time.February, 26), 3},
		{"december year boundary", date(2026, time.December, 29), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysUntilEndOfMonth(tt.now); got != tt.want {
				t.Errorf("DaysUntilEndOfMonth(%s) = %d, want %d", tt.now.Format("2006-01-02"), got, tt.want)
			}
		})
	}
}

func TestScheduleMatches(t *testing.T) {
	tests := []struct {
		name string
		s    Schedule
		now  time.Time
		want bool
	}{
		{"end of month hit", Schedule{Type: TypeEndOfMonth, DaysBeforeEnd: 3}, date(2026, time.August, 28), true},
		{"end of month miss", Schedule{Type: TypeEndOfMonth, DaysBeforeEnd: 3}, date(2026, time.August, 27), false},
		{"zero days before end", Schedule{Type: TypeEndOfMonth, DaysBeforeEnd: 0}, date(2026, time.August, 31), true},
		{"day of month hit", Schedule{Type: TypeDayOfMonth, DayOfMonth: 1}, date(2026, time.September, 1), true},
		{"day of month miss", Schedule{Type: TypeDayOfMonth, DayOfMonth: 1}, date(2026, time.September, 2), false},
		{"manual never matches", Schedule{Type: TypeManual}, date(2026, time.August, 28), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.Matches(tt.now); got != tt.want {
				t.Errorf("Matches(%s) = %v, want %v", tt.now.Format("2006-01-02"), got, tt.want)
			}
		})
	}
}

func TestScheduleValidate(t *testing.T) {
	valid := []Schedule{
		{Type: TypeEndOfMonth, DaysBeforeEnd: 0},
		{Type: TypeEndOfMonth, DaysBeforeEnd: 10},
		{Type: TypeDayOfMonth, DayOfMonth: 31},
		{Type: TypeManual},
	}
	for _, s := range valid {
		if err := s.Validate(); err != nil {
			t.Errorf("Validate(%+v) = %v, want nil", s, err)
		}
	}

	invalid := []Schedule{
		{Type: TypeEndOfMonth, DaysBeforeEnd: 11},
		{Type: TypeEndOfMonth, DaysBeforeEnd: -1},
		{Type: TypeDayOfMonth, DayOfMonth: 0},
		{Type: TypeDayOfMonth, DayOfMonth: 32},
		{Type: "weekly"},
	}
	for _, s := range invalid {
		if err := s.Validate(); err == nil {
			t.Errorf("Validate(%+v) = nil, want error", s)
		}
	}
}
