package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/business"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrBusinessIDRequired):
		Forbidden(w, "Business ID is required")
	case errors.Is(err, auth.ErrManagerAccessRequired):
		Forbidden(w, "Manager access required")

	// Business domain errors
	case errors.Is(err, business.ErrBusinessNotFound):
		NotFound(w, "Business not found")
	case errors.Is(err, business.ErrBusinessSettingsNotFound):
		ConfigurationMissing(w, "Business working schedule is not configured")
	case errors.Is(err, business.ErrInvalidSchedule):
		ConfigurationMissing(w, "Business working schedule is invalid")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrInvalidStatus):
		ValidationError(w, map[string]string{"in_status": err.Error()})

	// Payroll domain errors
	case errors.Is(err, payroll.ErrPayrollRecordNotFound):
		NotFound(w, "Payroll record not found")
	case errors.Is(err, payroll.ErrNoStaffEmployees):
		NotFound(w, "No staff employees found for this business")
	case errors.Is(err, payroll.ErrPayrollRecordAlreadyExists):
		Conflict(w, "Payroll record already exists for this employee and period")
	case errors.Is(err, payroll.ErrPayrollRecordAlreadyPaid):
		Conflict(w, "Payroll record is already paid")
	case errors.Is(err, payroll.ErrInvalidStatusTransition):
		Conflict(w, "Paid payroll record cannot return to pending")
	case errors.Is(err, payroll.ErrInvalidPeriod):
		ValidationError(w, map[string]string{"period": "month must be 1-12 and year 2000-9999"})
	case errors.Is(err, payroll.ErrInvalidCalculationBasis):
		ValidationError(w, map[string]string{"calculation_basis": "must be 'perDay' or 'perHour'"})

	// Default
	default:
		slog.Error("unhandled error", slog.Any("error", err))
		InternalServerError(w, "An unexpected error occurred")
	}
}
