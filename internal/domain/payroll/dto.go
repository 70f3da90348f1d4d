package payroll

import (
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== QUERY DTOs ==========

type GenerateOrFetchRequest struct {
	PeriodMonth int     `json:"period_month"`
	PeriodYear  int     `json:"period_year"`
	EmployeeID  *string `json:"employee_id,omitempty"`
	Basis       string  `json:"basis,omitempty"` // basis used for the live preview of pending records
}

func (r *GenerateOrFetchRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = append(errs, validatePeriod(r.PeriodMonth, r.PeriodYear)...)
	if r.EmployeeID != nil && validator.IsEmpty(*r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "must not be blank"})
	}
	if _, err := ParseCalculationBasis(r.Basis); err != nil {
		errs = append(errs, validator.ValidationError{Field: "basis", Message: "must be 'perDay' or 'perHour'"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type GeneratePayrollRequest struct {
	PeriodMonth int `json:"period_month"`
	PeriodYear  int `json:"period_year"`
}

func (r *GeneratePayrollRequest) Validate() error {
	if errs := validatePeriod(r.PeriodMonth, r.PeriodYear); len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== RECORD DTOs ==========

type CreatePayrollRequest struct {
	EmployeeID  string           `json:"employee_id"`
	PeriodMonth int              `json:"period_month"`
	PeriodYear  int              `json:"period_year"`
	BasicSalary *decimal.Decimal `json:"basic_salary,omitempty"` // defaults to the employee's salary

	TotalWorkingDays   int             `json:"total_working_days"`
	TotalBusinessHours decimal.Decimal `json:"total_business_hours"`
	PresentDays        int             `json:"present_days"`
	AbsentDays         int             `json:"absent_days"`
	LeaveDays          int             `json:"leave_days"`
	HalfDays           int             `json:"half_days"`
	TotalWorkHours     decimal.Decimal `json:"total_work_hours"`
	OvertimeHours      decimal.Decimal `json:"overtime_hours"`
	HolidayWorkDays    int             `json:"holiday_work_days"`
	HolidayWorkHours   decimal.Decimal `json:"holiday_work_hours"`

	GrossSalary     *decimal.Decimal `json:"gross_salary,omitempty"`
	TotalDeductions decimal.Decimal  `json:"total_deductions"`
	NetSalary       *decimal.Decimal `json:"net_salary,omitempty"`
	OvertimePay     decimal.Decimal  `json:"overtime_pay"`
	Allowances      decimal.Decimal  `json:"allowances"`
	Bonus           decimal.Decimal  `json:"bonus"`
	Tax             decimal.Decimal  `json:"tax"`
	ProvidentFund   decimal.Decimal  `json:"provident_fund"`
	ProfessionalTax decimal.Decimal  `json:"professional_tax"`
	OtherDeductions decimal.Decimal  `json:"other_deductions"`
	Notes           *string          `json:"notes,omitempty"`
}

func (r *CreatePayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	errs = append(errs, validatePeriod(r.PeriodMonth, r.PeriodYear)...)
	if r.BasicSalary != nil && r.BasicSalary.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "basic_salary", Message: "must be non-negative"})
	}

	counts := map[string]int{
		"total_working_days": r.TotalWorkingDays,
		"present_days":       r.PresentDays,
		"absent_days":        r.AbsentDays,
		"leave_days":         r.LeaveDays,
		"half_days":          r.HalfDays,
		"holiday_work_days":  r.HolidayWorkDays,
	}
	for field, v := range counts {
		if v < 0 {
			errs = append(errs, validator.ValidationError{Field: field, Message: "must be non-negative"})
		}
	}

	amounts := map[string]decimal.Decimal{
		"total_business_hours": r.TotalBusinessHours,
		"total_work_hours":     r.TotalWorkHours,
		"overtime_hours":       r.OvertimeHours,
		"holiday_work_hours":   r.HolidayWorkHours,
		"allowances":           r.Allowances,
		"bonus":                r.Bonus,
		"tax":                  r.Tax,
		"provident_fund":       r.ProvidentFund,
		"professional_tax":     r.ProfessionalTax,
		"other_deductions":     r.OtherDeductions,
	}
	for field, v := range amounts {
		if v.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: field, Message: "must be non-negative"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdatePayrollRequest is a generic partial update; nil fields are left untouched.
type UpdatePayrollRequest struct {
	ID string `json:"-"`

	BasicSalary *decimal.Decimal `json:"basic_salary,omitempty"`

	TotalWorkingDays   *int             `json:"total_working_days,omitempty"`
	TotalBusinessHours *decimal.Decimal `json:"total_business_hours,omitempty"`
	PresentDays        *int             `json:"present_days,omitempty"`
	AbsentDays         *int             `json:"absent_days,omitempty"`
	LeaveDays          *int             `json:"leave_days,omitempty"`
	HalfDays           *int             `json:"half_days,omitempty"`
	TotalWorkHours     *decimal.Decimal `json:"total_work_hours,omitempty"`
	OvertimeHours      *decimal.Decimal `json:"overtime_hours,omitempty"`
	HolidayWorkDays    *int             `json:"holiday_work_days,omitempty"`
	HolidayWorkHours   *decimal.Decimal `json:"holiday_work_hours,omitempty"`

	GrossSalary     *decimal.Decimal `json:"gross_salary,omitempty"`
	TotalDeductions *decimal.Decimal `json:"total_deductions,omitempty"`
	NetSalary       *decimal.Decimal `json:"net_salary,omitempty"`
	OvertimePay     *decimal.Decimal `json:"overtime_pay,omitempty"`
	Allowances      *decimal.Decimal `json:"allowances,omitempty"`
	Bonus           *decimal.Decimal `json:"bonus,omitempty"`
	Tax             *decimal.Decimal `json:"tax,omitempty"`
	ProvidentFund   *decimal.Decimal `json:"provident_fund,omitempty"`
	ProfessionalTax *decimal.Decimal `json:"professional_tax,omitempty"`
	OtherDeductions *decimal.Decimal `json:"other_deductions,omitempty"`

	PaymentStatus    *PaymentStatus `json:"payment_status,omitempty"`
	CalculationBasis *string        `json:"calculation_basis,omitempty"`
	Notes            *string        `json:"notes,omitempty"`
}

func (r *UpdatePayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "is required"})
	}
	if r.BasicSalary != nil && r.BasicSalary.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "basic_salary", Message: "must be non-negative"})
	}
	for field, v := range map[string]*int{
		"total_working_days": r.TotalWorkingDays,
		"present_days":       r.PresentDays,
		"absent_days":        r.AbsentDays,
		"leave_days":         r.LeaveDays,
		"half_days":          r.HalfDays,
		"holiday_work_days":  r.HolidayWorkDays,
	} {
		if v != nil && *v < 0 {
			errs = append(errs, validator.ValidationError{Field: field, Message: "must be non-negative"})
		}
	}
	for field, v := range map[string]*decimal.Decimal{
		"total_business_hours": r.TotalBusinessHours,
		"total_work_hours":     r.TotalWorkHours,
		"overtime_hours":       r.OvertimeHours,
		"holiday_work_hours":   r.HolidayWorkHours,
		"gross_salary":         r.GrossSalary,
		"total_deductions":     r.TotalDeductions,
		"overtime_pay":         r.OvertimePay,
		"allowances":           r.Allowances,
		"bonus":                r.Bonus,
		"tax":                  r.Tax,
		"provident_fund":       r.ProvidentFund,
		"professional_tax":     r.ProfessionalTax,
		"other_deductions":     r.OtherDeductions,
	} {
		if v != nil && v.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: field, Message: "must be non-negative"})
		}
	}
	if r.PaymentStatus != nil && !r.PaymentStatus.IsValid() {
		errs = append(errs, validator.ValidationError{Field: "payment_status", Message: "must be 'pending' or 'paid'"})
	}
	if r.CalculationBasis != nil {
		if _, err := ParseCalculationBasis(*r.CalculationBasis); err != nil {
			errs = append(errs, validator.ValidationError{Field: "calculation_basis", Message: "must be 'perDay' or 'perHour'"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ChangesFacts reports whether the update touches any attendance fact.
func (r *UpdatePayrollRequest) ChangesFacts() bool {
	return r.TotalWorkingDays != nil || r.TotalBusinessHours != nil ||
		r.PresentDays != nil || r.AbsentDays != nil || r.LeaveDays != nil ||
		r.HalfDays != nil || r.TotalWorkHours != nil || r.OvertimeHours != nil ||
		r.HolidayWorkDays != nil || r.HolidayWorkHours != nil
}

type MarkPaidRequest struct {
	ID               string `json:"-"`
	CalculationBasis string `json:"calculation_basis"`
}

func (r *MarkPaidRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "is required"})
	}
	if _, err := ParseCalculationBasis(r.CalculationBasis); err != nil {
		errs = append(errs, validator.ValidationError{Field: "calculation_basis", Message: "must be 'perDay' or 'perHour'"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CalculateRequest runs the derivation on arbitrary inputs without touching storage.
type CalculateRequest struct {
	BasicSalary        decimal.Decimal `json:"basic_salary"`
	TotalWorkingDays   int             `json:"total_working_days"`
	TotalBusinessHours decimal.Decimal `json:"total_business_hours"`
	PresentDays        int             `json:"present_days"`
	HalfDays           int             `json:"half_days"`
	TotalWorkHours     decimal.Decimal `json:"total_work_hours"`
	OvertimeHours      decimal.Decimal `json:"overtime_hours"`
	Allowances         decimal.Decimal `json:"allowances"`
	Bonus              decimal.Decimal `json:"bonus"`
	Tax                decimal.Decimal `json:"tax"`
	ProvidentFund      decimal.Decimal `json:"provident_fund"`
	ProfessionalTax    decimal.Decimal `json:"professional_tax"`
	OtherDeductions    decimal.Decimal `json:"other_deductions"`
	CalculationBasis   string          `json:"calculation_basis"`
}

func (r *CalculateRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.BasicSalary.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "basic_salary", Message: "must be non-negative"})
	}
	if r.TotalWorkingDays < 0 || r.PresentDays < 0 || r.HalfDays < 0 {
		errs = append(errs, validator.ValidationError{Field: "days", Message: "day counts must be non-negative"})
	}
	if _, err := ParseCalculationBasis(r.CalculationBasis); err != nil {
		errs = append(errs, validator.ValidationError{Field: "calculation_basis", Message: "must be 'perDay' or 'perHour'"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Input converts the request into a derivation input.
func (r *CalculateRequest) Input() DerivationInput {
	return DerivationInput{
		BasicSalary: r.BasicSalary,
		AttendanceFacts: AttendanceFacts{
			TotalWorkingDays:   r.TotalWorkingDays,
			TotalBusinessHours: r.TotalBusinessHours,
			PresentDays:        r.PresentDays,
			HalfDays:           r.HalfDays,
			TotalWorkHours:     r.TotalWorkHours,
			OvertimeHours:      r.OvertimeHours,
		},
		Adjustments: Adjustments{
			Allowances:      r.Allowances,
			Bonus:           r.Bonus,
			Tax:             r.Tax,
			ProvidentFund:   r.ProvidentFund,
			ProfessionalTax: r.ProfessionalTax,
			OtherDeductions: r.OtherDeductions,
		},
	}
}

// ========== RESPONSE DTOs ==========

type BreakdownResponse struct {
	CalculationBasis string          `json:"calculation_basis"`
	PerDayRate       decimal.Decimal `json:"per_day_rate"`
	PerHourRate      decimal.Decimal `json:"per_hour_rate"`
	EarnedSalary     decimal.Decimal `json:"earned_salary"`
	OvertimePay      decimal.Decimal `json:"overtime_pay"`
	GrossSalary      decimal.Decimal `json:"gross_salary"`
	AbsenceDeduction decimal.Decimal `json:"absence_deduction"`
	TotalDeductions  decimal.Decimal `json:"total_deductions"`
	NetSalary        decimal.Decimal `json:"net_salary"`
}

type PayrollRecordResponse struct {
	ID           string          `json:"id"`
	EmployeeID   string          `json:"employee_id"`
	EmployeeName string          `json:"employee_name,omitempty"`
	EmployeeCode string          `json:"employee_code,omitempty"`
	BusinessID   string          `json:"business_id"`
	PeriodMonth  int             `json:"period_month"`
	PeriodYear   int             `json:"period_year"`
	BasicSalary  decimal.Decimal `json:"basic_salary"`

	TotalWorkingDays   int             `json:"total_working_days"`
	TotalBusinessHours decimal.Decimal `json:"total_business_hours"`
	PresentDays        int             `json:"present_days"`
	AbsentDays         int             `json:"absent_days"`
	LeaveDays          int             `json:"leave_days"`
	HalfDays           int             `json:"half_days"`
	TotalWorkHours     decimal.Decimal `json:"total_work_hours"`
	OvertimeHours      decimal.Decimal `json:"overtime_hours"`
	HolidayWorkDays    int             `json:"holiday_work_days"`
	HolidayWorkHours   decimal.Decimal `json:"holiday_work_hours"`

	GrossSalary     decimal.Decimal `json:"gross_salary"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	NetSalary       decimal.Decimal `json:"net_salary"`
	OvertimePay     decimal.Decimal `json:"overtime_pay"`
	Allowances      decimal.Decimal `json:"allowances"`
	Bonus           decimal.Decimal `json:"bonus"`
	Tax             decimal.Decimal `json:"tax"`
	ProvidentFund   decimal.Decimal `json:"provident_fund"`
	ProfessionalTax decimal.Decimal `json:"professional_tax"`
	OtherDeductions decimal.Decimal `json:"other_deductions"`

	PaymentStatus    string  `json:"payment_status"`
	PaymentDate      *string `json:"payment_date,omitempty"`
	CalculationBasis *string `json:"calculation_basis,omitempty"`
	Notes            *string `json:"notes,omitempty"`

	// Preview is the live derivation shown for pending records.
	Preview *BreakdownResponse `json:"preview,omitempty"`
}

type PayrollSummaryResponse struct {
	PeriodMonth        int             `json:"period_month"`
	PeriodYear         int             `json:"period_year"`
	TotalEmployees     int             `json:"total_employees"`
	TotalBasicSalary   decimal.Decimal `json:"total_basic_salary"`
	TotalGrossSalary   decimal.Decimal `json:"total_gross_salary"`
	TotalDeductions    decimal.Decimal `json:"total_deductions"`
	TotalOvertimePay   decimal.Decimal `json:"total_overtime_pay"`
	TotalNetSalary     decimal.Decimal `json:"total_net_salary"`
	TotalPaidNetSalary decimal.Decimal `json:"total_paid_net_salary"`
	PendingCount       int             `json:"pending_count"`
	PaidCount          int             `json:"paid_count"`
}

func validatePeriod(month, year int) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if month < 1 || month > 12 {
		errs = append(errs, validator.ValidationError{Field: "period_month", Message: "must be between 1 and 12"})
	}
	if year < 2000 || year > 9999 {
		errs = append(errs, validator.ValidationError{Field: "period_year", Message: "must be between 2000 and 9999"})
	}
	return errs
}
