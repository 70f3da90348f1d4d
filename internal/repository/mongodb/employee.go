package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type employeeDocument struct {
	ID           string               `bson:"_id"`
	BusinessID   string               `bson:"business_id"`
	EmployeeCode string               `bson:"employee_code"`
	FullName     string               `bson:"full_name"`
	Role         string               `bson:"role"`
	Salary       primitive.Decimal128 `bson:"salary"`
	CreatedAt    time.Time            `bson:"created_at"`
	UpdatedAt    time.Time            `bson:"updated_at"`
}

func (d employeeDocument) toEntity() (employee.Employee, error) {
	role := employee.Role(d.Role)
	if !role.IsValid() {
		return employee.Employee{}, fmt.Errorf("employee %s role %q: %w", d.ID, d.Role, employee.ErrInvalidRole)
	}
	salary, err := fromDecimal128(d.Salary)
	if err != nil {
		return employee.Employee{}, fmt.Errorf("employee %s salary: %w", d.ID, err)
	}
	return employee.Employee{
		ID:           d.ID,
		BusinessID:   d.BusinessID,
		EmployeeCode: d.EmployeeCode,
		FullName:     d.FullName,
		Role:         role,
		Salary:       salary,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}

type employeeRepository struct {
	employees *mongo.Collection
}

func NewEmployeeRepository(db *database.MongoDB) employee.EmployeeRepository {
	return &employeeRepository{employees: db.Database.Collection(employeesCollection)}
}

func (r *employeeRepository) GetByID(ctx context.Context, id string, businessID string) (employee.Employee, error) {
	var doc employeeDocument
	err := r.employees.FindOne(ctx, bson.M{"_id": id, "business_id": businessID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return doc.toEntity()
}

func (r *employeeRepository) ListByRole(ctx context.Context, businessID string, role employee.Role) ([]employee.Employee, error) {
	filter := bson.M{"business_id": businessID, "role": string(role)}
	cursor, err := r.employees.Find(ctx, filter, options.Find().SetSort(bson.M{"employee_code": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	var docs []employeeDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode employees: %w", err)
	}

	employees := make([]employee.Employee, 0, len(docs))
	for _, d := range docs {
		emp, err := d.toEntity()
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, nil
}

// namesByID returns full name and code of the given employees, keyed by id.
func namesByID(ctx context.Context, coll *mongo.Collection, ids []string) (map[string]employeeDocument, error) {
	result := make(map[string]employeeDocument, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	opts := options.Find().SetProjection(bson.M{"full_name": 1, "employee_code": 1})
	cursor, err := coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get employee names: %w", err)
	}

	var docs []employeeDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode employee names: %w", err)
	}
	for _, d := range docs {
		result[d.ID] = d
	}
	return result, nil
}
