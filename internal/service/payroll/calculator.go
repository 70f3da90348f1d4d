package payroll

import (
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

var halfDayWeight = decimal.NewFromFloat(0.5)

// SalaryCalculator derives salary figures from attendance facts. It holds no state;
// identical inputs always produce identical breakdowns.
type SalaryCalculator struct {
}

func NewSalaryCalculator() *SalaryCalculator {
	return &SalaryCalculator{}
}

// Derive computes earned, gross and net salary without rounding. Zero or negative
// denominators degrade the dependent component to zero instead of failing.
// Attendance units are multiplied into the salary before dividing, so a half day is
// worth exactly half of basic/totalWorkingDays.
func (c *SalaryCalculator) Derive(in payroll.DerivationInput, basis payroll.CalculationBasis) payroll.Breakdown {
	var b payroll.Breakdown

	workingDays := decimal.NewFromInt(int64(in.TotalWorkingDays))
	hasDays := in.TotalWorkingDays > 0
	hasHours := in.TotalBusinessHours.IsPositive()

	if hasHours {
		b.PerHourRate = in.BasicSalary.Div(in.TotalBusinessHours)
	}
	if hasDays {
		b.PerDayRate = in.BasicSalary.Div(workingDays)
	}

	switch {
	case basis == payroll.BasisPerDay && hasDays:
		units := decimal.NewFromInt(int64(in.PresentDays)).
			Add(decimal.NewFromInt(int64(in.HalfDays)).Mul(halfDayWeight))
		b.EarnedSalary = in.BasicSalary.Mul(units).Div(workingDays)
	case basis == payroll.BasisPerHour && hasHours:
		b.EarnedSalary = in.BasicSalary.Mul(in.TotalWorkHours).Div(in.TotalBusinessHours)
	default:
		b.EarnedSalary = decimal.Zero
	}

	if hasHours {
		b.OvertimePay = in.BasicSalary.Mul(in.OvertimeHours).Mul(payroll.OvertimeMultiplier).Div(in.TotalBusinessHours)
	}

	return sumUp(in, b)
}

// Settle derives the breakdown and rounds it to cents for storage and display.
// Earned salary and overtime pay are rounded first and the totals are summed from the
// rounded parts, so the gross and net identities still hold on the stored amounts.
func (c *SalaryCalculator) Settle(in payroll.DerivationInput, basis payroll.CalculationBasis) payroll.Breakdown {
	b := c.Derive(in, basis)
	b.PerDayRate = b.PerDayRate.Round(2)
	b.PerHourRate = b.PerHourRate.Round(2)
	b.EarnedSalary = b.EarnedSalary.Round(2)
	b.OvertimePay = b.OvertimePay.Round(2)
	return sumUp(in, b)
}

func sumUp(in payroll.DerivationInput, b payroll.Breakdown) payroll.Breakdown {
	b.GrossSalary = b.EarnedSalary.Add(b.OvertimePay).Add(in.Allowances).Add(in.Bonus)

	// Not clamped: earned salary above basic salary yields a negative deduction.
	b.AbsenceDeduction = in.BasicSalary.Sub(b.EarnedSalary)
	b.TotalDeductions = b.AbsenceDeduction.
		Add(in.Tax).
		Add(in.ProvidentFund).
		Add(in.ProfessionalTax).
		Add(in.OtherDeductions)
	b.NetSalary = b.GrossSalary.Sub(b.TotalDeductions)

	return b
}
