package payroll

import (
	"context"
	"time"
)

// PayrollRepository defines data access methods for payroll records.
// All methods include businessID to prevent cross-tenant data access.
// Implementations must enforce uniqueness of (employee, business, month, year).
type PayrollRepository interface {
	// Create inserts a single record; returns ErrPayrollRecordAlreadyExists on a duplicate period.
	Create(ctx context.Context, record PayrollRecord) (PayrollRecord, error)

	// CreateMany inserts records atomically, skipping those whose period already exists.
	// It returns the number of records actually inserted.
	CreateMany(ctx context.Context, records []PayrollRecord) (int, error)

	GetByID(ctx context.Context, id string, businessID string) (PayrollRecord, error)
	List(ctx context.Context, businessID string, filter RecordFilter) ([]PayrollRecord, error)
	Update(ctx context.Context, record PayrollRecord) (PayrollRecord, error)

	// MarkPaid stores the finalized record only if it is still pending;
	// returns ErrPayrollRecordAlreadyPaid otherwise.
	MarkPaid(ctx context.Context, record PayrollRecord, paidAt time.Time) (PayrollRecord, error)

	Delete(ctx context.Context, id string, businessID string) error
	GetSummary(ctx context.Context, businessID string, period Period) (Summary, error)
}

// RecordFilter narrows List to one period and, optionally, one employee.
type RecordFilter struct {
	Period     Period
	EmployeeID *string
	Status     *PaymentStatus
}
