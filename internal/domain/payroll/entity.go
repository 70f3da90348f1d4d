package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus enum
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusPending || s == PaymentStatusPaid
}

// CalculationBasis selects whether earned salary follows day counts or hour counts.
type CalculationBasis string

const (
	BasisPerDay  CalculationBasis = "perDay"
	BasisPerHour CalculationBasis = "perHour"
)

// ParseCalculationBasis accepts the wire value; empty means perDay.
func ParseCalculationBasis(s string) (CalculationBasis, error) {
	switch CalculationBasis(s) {
	case "", BasisPerDay:
		return BasisPerDay, nil
	case BasisPerHour:
		return BasisPerHour, nil
	}
	return "", ErrInvalidCalculationBasis
}

// FactsSource records where the attendance facts of a record come from.
type FactsSource string

const (
	// FactsFromAttendance facts follow the attendance log until the record is paid.
	FactsFromAttendance FactsSource = "attendance"
	// FactsManual facts were supplied or corrected by an administrator and are used as stored.
	FactsManual FactsSource = "manual"
)

func (s FactsSource) IsValid() bool {
	return s == FactsFromAttendance || s == FactsManual
}

// OvertimeMultiplier is applied to the hourly rate for overtime hours.
var OvertimeMultiplier = decimal.NewFromFloat(1.5)

// AttendanceFacts are the monthly attendance aggregates payroll is derived from.
// TotalWorkingDays and TotalBusinessHours are business-wide; the rest are per employee.
type AttendanceFacts struct {
	TotalWorkingDays   int
	TotalBusinessHours decimal.Decimal
	PresentDays        int
	AbsentDays         int
	LeaveDays          int
	HalfDays           int
	TotalWorkHours     decimal.Decimal
	OvertimeHours      decimal.Decimal
	HolidayWorkDays    int
	HolidayWorkHours   decimal.Decimal
}

// Adjustments are externally supplied additions and deductions, zero unless set.
type Adjustments struct {
	Allowances      decimal.Decimal
	Bonus           decimal.Decimal
	Tax             decimal.Decimal
	ProvidentFund   decimal.Decimal
	ProfessionalTax decimal.Decimal
	OtherDeductions decimal.Decimal
}

// DerivationInput is everything the salary derivation reads.
type DerivationInput struct {
	BasicSalary decimal.Decimal
	AttendanceFacts
	Adjustments
}

// Breakdown is the derived financial result for one employee and period.
type Breakdown struct {
	PerDayRate       decimal.Decimal
	PerHourRate      decimal.Decimal
	EarnedSalary     decimal.Decimal
	OvertimePay      decimal.Decimal
	GrossSalary      decimal.Decimal
	AbsenceDeduction decimal.Decimal
	TotalDeductions  decimal.Decimal
	NetSalary        decimal.Decimal
}

// PayrollRecord is the persisted payroll of one employee for one month.
type PayrollRecord struct {
	ID          string
	EmployeeID  string
	BusinessID  string
	PeriodMonth int
	PeriodYear  int
	BasicSalary decimal.Decimal
	AttendanceFacts
	FactsSource     FactsSource
	GrossSalary     decimal.Decimal
	TotalDeductions decimal.Decimal
	NetSalary       decimal.Decimal
	OvertimePay     decimal.Decimal
	Adjustments
	PaymentStatus    PaymentStatus
	PaymentDate      *time.Time
	CalculationBasis *CalculationBasis
	Notes            *string
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Joined fields
	EmployeeName *string
	EmployeeCode *string
}

// Input returns the derivation input snapshotted in the record.
func (r PayrollRecord) Input() DerivationInput {
	return DerivationInput{
		BasicSalary:     r.BasicSalary,
		AttendanceFacts: r.AttendanceFacts,
		Adjustments:     r.Adjustments,
	}
}

func (r PayrollRecord) Period() Period {
	return Period{Month: r.PeriodMonth, Year: r.PeriodYear}
}

// Period is a calendar month.
type Period struct {
	Month int
	Year  int
}

func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 || p.Year < 2000 || p.Year > 9999 {
		return ErrInvalidPeriod
	}
	return nil
}

// Days returns the number of days in the month.
func (p Period) Days() int {
	return time.Date(p.Year, time.Month(p.Month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Date returns the given day of the month at UTC midnight.
func (p Period) Date(day int) time.Time {
	return time.Date(p.Year, time.Month(p.Month), day, 0, 0, 0, 0, time.UTC)
}

// PeriodOf returns the calendar month containing t, in t's location.
func PeriodOf(t time.Time) Period {
	return Period{Month: int(t.Month()), Year: t.Year()}
}

// Summary aggregates the payroll records of one business and period.
type Summary struct {
	TotalEmployees     int
	TotalBasicSalary   decimal.Decimal
	TotalGrossSalary   decimal.Decimal
	TotalDeductions    decimal.Decimal
	TotalOvertimePay   decimal.Decimal
	TotalNetSalary     decimal.Decimal
	PendingCount       int
	PaidCount          int
	TotalPaidNetSalary decimal.Decimal
}
