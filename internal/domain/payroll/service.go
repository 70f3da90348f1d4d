package payroll

import "context"

// PayrollService is the payroll lifecycle exposed to transports and jobs.
// Every method is scoped to one business.
type PayrollService interface {
	// GenerateOrFetch returns the records of a period. When the period has no records
	// and no employee filter is given, it generates pending records first.
	GenerateOrFetch(ctx context.Context, businessID string, req GenerateOrFetchRequest) ([]PayrollRecordResponse, error)

	// EnsureGenerated idempotently creates pending records for every staff employee.
	// It returns the number of records inserted by this call.
	EnsureGenerated(ctx context.Context, businessID string, period Period) (int, error)

	CreatePayroll(ctx context.Context, businessID string, req CreatePayrollRequest) (PayrollRecordResponse, error)
	GetPayroll(ctx context.Context, businessID string, id string, basis CalculationBasis) (PayrollRecordResponse, error)
	UpdatePayroll(ctx context.Context, businessID string, req UpdatePayrollRequest) (PayrollRecordResponse, error)
	MarkPaid(ctx context.Context, businessID string, req MarkPaidRequest) (PayrollRecordResponse, error)
	DeletePayroll(ctx context.Context, businessID string, id string) error

	GetSummary(ctx context.Context, businessID string, period Period) (PayrollSummaryResponse, error)
	Calculate(ctx context.Context, req CalculateRequest) (BreakdownResponse, error)
}
