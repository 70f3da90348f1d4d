package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyRecord holds every employee's attendance for one business on one calendar date.
type DailyRecord struct {
	ID         string
	BusinessID string
	Date       time.Time
	Entries    []Entry
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Entry struct {
	EmployeeID string
	InStatus   Status
	OutStatus  *string
	InTime     *time.Time
	OutTime    *time.Time
	WorkHours  decimal.Decimal
}
