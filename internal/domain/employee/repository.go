package employee

import "context"

// EmployeeRepository defines read access to employees.
// All methods include businessID to prevent cross-tenant access.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string, businessID string) (Employee, error)
	ListByRole(ctx context.Context, businessID string, role Role) ([]Employee, error)
}
