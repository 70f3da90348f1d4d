package business

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type Business struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Settings is the canonical daily/weekly schedule of a business.
type Settings struct {
	BusinessID           string
	WorkingDays          []time.Weekday
	DefaultInTime        string // HH:MM
	DefaultOutTime       string // HH:MM
	LunchDurationMinutes int
	Timezone             string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Holiday marks a single calendar date as non-working for a business.
type Holiday struct {
	ID         string
	BusinessID string
	Date       time.Time
	Name       string
	CreatedAt  time.Time
}

// IsWorkingWeekday reports whether d is one of the configured working weekdays.
func (s Settings) IsWorkingWeekday(d time.Weekday) bool {
	for _, wd := range s.WorkingDays {
		if wd == d {
			return true
		}
	}
	return false
}

// Location returns the business timezone, falling back to UTC.
func (s Settings) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DailyWorkHours returns the scheduled hours of one working day:
// (out - in) minus the lunch break, in decimal hours. A lunch break longer
// than the shift yields zero.
func (s Settings) DailyWorkHours() (decimal.Decimal, error) {
	in, err := parseClock(s.DefaultInTime)
	if err != nil {
		return decimal.Zero, fmt.Errorf("default in time: %w", err)
	}
	out, err := parseClock(s.DefaultOutTime)
	if err != nil {
		return decimal.Zero, fmt.Errorf("default out time: %w", err)
	}
	if out <= in {
		return decimal.Zero, ErrInvalidSchedule
	}

	minutes := out - in - s.LunchDurationMinutes
	if minutes <= 0 {
		return decimal.Zero, nil
	}
	return decimal.NewFromInt(int64(minutes)).Div(decimal.NewFromInt(60)), nil
}

// parseClock converts "HH:MM" into minutes since midnight.
func parseClock(v string) (int, error) {
	if !validator.IsValidClock(v) {
		return 0, ErrInvalidSchedule
	}
	t, err := time.Parse("15:04", v)
	if err != nil {
		return 0, ErrInvalidSchedule
	}
	return t.Hour()*60 + t.Minute(), nil
}
