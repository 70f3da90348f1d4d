package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID           string
	BusinessID   string
	EmployeeCode string
	FullName     string
	Role         Role
	Salary       decimal.Decimal // monthly base salary
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Role string

const (
	RoleOwner   Role = "Owner"
	RoleManager Role = "Manager"
	RoleStaff   Role = "Staff"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleManager, RoleStaff:
		return true
	}
	return false
}

// CanManagePayroll reports whether the role may administer payroll.
func (r Role) CanManagePayroll() bool {
	return r == RoleOwner || r == RoleManager
}
