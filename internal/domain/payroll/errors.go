package payroll

import "errors"

var (
	ErrPayrollRecordNotFound      = errors.New("payroll record not found")
	ErrPayrollRecordAlreadyExists = errors.New("payroll record already exists for this period")
	ErrPayrollRecordAlreadyPaid   = errors.New("payroll record already paid")
	ErrInvalidStatusTransition    = errors.New("paid payroll record cannot return to pending")
	ErrInvalidPeriod              = errors.New("invalid payroll period")
	ErrInvalidCalculationBasis    = errors.New("calculation basis must be 'perDay' or 'perHour'")
	ErrNoStaffEmployees           = errors.New("no staff employees found for business")
)
