package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `id, business_id, employee_code, full_name, role, salary, created_at, updated_at`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var (
		emp  employee.Employee
		role string
	)
	err := row.Scan(
		&emp.ID, &emp.BusinessID, &emp.EmployeeCode, &emp.FullName,
		&role, &emp.Salary, &emp.CreatedAt, &emp.UpdatedAt,
	)
	if err != nil {
		return employee.Employee{}, err
	}
	emp.Role = employee.Role(role)
	if !emp.Role.IsValid() {
		return employee.Employee{}, fmt.Errorf("employee %s role %q: %w", emp.ID, role, employee.ErrInvalidRole)
	}
	return emp, nil
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string, businessID string) (employee.Employee, error) {
	// employees.id is a UUID column; a malformed id would fail the cast instead of matching nothing.
	if !validator.IsValidUUID(id) {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + employeeColumns + `
		FROM employees
		WHERE id = $1 AND business_id = $2
	`

	emp, err := scanEmployee(q.QueryRow(ctx, query, id, businessID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}

	return emp, nil
}

// ListByRole implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListByRole(ctx context.Context, businessID string, role employee.Role) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + employeeColumns + `
		FROM employees
		WHERE business_id = $1 AND role = $2
		ORDER BY employee_code
	`

	rows, err := q.Query(ctx, query, businessID, string(role))
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}

	return employees, rows.Err()
}
