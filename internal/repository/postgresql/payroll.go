package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

const payrollColumns = `
	pr.id, pr.employee_id, pr.business_id, pr.period_month, pr.period_year, pr.basic_salary,
	pr.total_working_days, pr.total_business_hours, pr.present_days, pr.absent_days,
	pr.leave_days, pr.half_days, pr.total_work_hours, pr.overtime_hours,
	pr.holiday_work_days, pr.holiday_work_hours, pr.facts_source,
	pr.gross_salary, pr.total_deductions, pr.net_salary, pr.overtime_pay,
	pr.allowances, pr.bonus, pr.tax, pr.provident_fund, pr.professional_tax, pr.other_deductions,
	pr.payment_status, pr.payment_date, pr.calculation_basis, pr.notes,
	pr.created_at, pr.updated_at,
	e.full_name, e.employee_code`

const payrollFrom = `
	FROM payroll_records pr
	LEFT JOIN employees e ON e.id = pr.employee_id`

func scanPayrollRecord(row pgx.Row) (payroll.PayrollRecord, error) {
	var (
		r      payroll.PayrollRecord
		status string
		source string
		basis  *string
	)
	err := row.Scan(
		&r.ID, &r.EmployeeID, &r.BusinessID, &r.PeriodMonth, &r.PeriodYear, &r.BasicSalary,
		&r.TotalWorkingDays, &r.TotalBusinessHours, &r.PresentDays, &r.AbsentDays,
		&r.LeaveDays, &r.HalfDays, &r.TotalWorkHours, &r.OvertimeHours,
		&r.HolidayWorkDays, &r.HolidayWorkHours, &source,
		&r.GrossSalary, &r.TotalDeductions, &r.NetSalary, &r.OvertimePay,
		&r.Allowances, &r.Bonus, &r.Tax, &r.ProvidentFund, &r.ProfessionalTax, &r.OtherDeductions,
		&status, &r.PaymentDate, &basis, &r.Notes,
		&r.CreatedAt, &r.UpdatedAt,
		&r.EmployeeName, &r.EmployeeCode,
	)
	if err != nil {
		return payroll.PayrollRecord{}, err
	}

	r.PaymentStatus = payroll.PaymentStatus(status)
	r.FactsSource = payroll.FactsSource(source)
	if basis != nil {
		b, err := payroll.ParseCalculationBasis(*basis)
		if err != nil {
			return payroll.PayrollRecord{}, fmt.Errorf("payroll record %s: %w", r.ID, err)
		}
		r.CalculationBasis = &b
	}
	return r, nil
}

func basisArg(b *payroll.CalculationBasis) *string {
	if b == nil {
		return nil
	}
	s := string(*b)
	return &s
}

const insertPayrollQuery = `
	INSERT INTO payroll_records (
		id, employee_id, business_id, period_month, period_year, basic_salary,
		total_working_days, total_business_hours, present_days, absent_days,
		leave_days, half_days, total_work_hours, overtime_hours,
		holiday_work_days, holiday_work_hours,
		gross_salary, total_deductions, net_salary, overtime_pay,
		allowances, bonus, tax, provident_fund, professional_tax, other_deductions,
		payment_status, payment_date, calculation_basis, notes, facts_source
	) VALUES (
		$1, $2, $3, $4, $5, $6,
		$7, $8, $9, $10,
		$11, $12, $13, $14,
		$15, $16,
		$17, $18, $19, $20,
		$21, $22, $23, $24, $25, $26,
		$27, $28, $29, $30, $31
	)`

func insertPayrollArgs(r payroll.PayrollRecord) []interface{} {
	return []interface{}{
		r.ID, r.EmployeeID, r.BusinessID, r.PeriodMonth, r.PeriodYear, r.BasicSalary,
		r.TotalWorkingDays, r.TotalBusinessHours, r.PresentDays, r.AbsentDays,
		r.LeaveDays, r.HalfDays, r.TotalWorkHours, r.OvertimeHours,
		r.HolidayWorkDays, r.HolidayWorkHours,
		r.GrossSalary, r.TotalDeductions, r.NetSalary, r.OvertimePay,
		r.Allowances, r.Bonus, r.Tax, r.ProvidentFund, r.ProfessionalTax, r.OtherDeductions,
		string(r.PaymentStatus), r.PaymentDate, basisArg(r.CalculationBasis), r.Notes,
		factsSourceArg(r.FactsSource),
	}
}

func factsSourceArg(s payroll.FactsSource) string {
	if !s.IsValid() {
		return string(payroll.FactsManual)
	}
	return string(s)
}

// ========== RECORDS ==========

func (r *payrollRepository) Create(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, insertPayrollQuery, insertPayrollArgs(record)...); err != nil {
		if strings.Contains(err.Error(), "uk_payroll_employee_period") {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordAlreadyExists
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to create payroll record: %w", err)
	}

	return r.GetByID(ctx, record.ID, record.BusinessID)
}

// CreateMany inserts all records in one transaction. Periods that already have a
// record are skipped by the uk_payroll_employee_period constraint.
func (r *payrollRepository) CreateMany(ctx context.Context, records []payroll.PayrollRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	inserted := 0
	err := WithTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		batch := &pgx.Batch{}
		for _, record := range records {
			batch.Queue(insertPayrollQuery+` ON CONFLICT ON CONSTRAINT uk_payroll_employee_period DO NOTHING`,
				insertPayrollArgs(record)...)
		}

		results := q.SendBatch(ctx, batch)
		for range records {
			tag, err := results.Exec()
			if err != nil {
				_ = results.Close()
				return fmt.Errorf("failed to insert payroll record: %w", err)
			}
			inserted += int(tag.RowsAffected())
		}
		return results.Close()
	})
	if err != nil {
		return 0, err
	}

	return inserted, nil
}

func (r *payrollRepository) GetByID(ctx context.Context, id string, businessID string) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payrollColumns + payrollFrom + `
		WHERE pr.id = $1 AND pr.business_id = $2
	`

	record, err := scanPayrollRecord(q.QueryRow(ctx, query, id, businessID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record: %w", err)
	}

	return record, nil
}

func (r *payrollRepository) List(ctx context.Context, businessID string, filter payroll.RecordFilter) ([]payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"pr.business_id = $1", "pr.period_month = $2", "pr.period_year = $3"}
	args := []interface{}{businessID, filter.Period.Month, filter.Period.Year}
	argIdx := 4

	if filter.EmployeeID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("pr.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Status != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("pr.payment_status = $%d", argIdx))
		args = append(args, string(*filter.Status))
	}

	query := `SELECT ` + payrollColumns + payrollFrom + `
		WHERE ` + strings.Join(whereClauses, " AND ") + `
		ORDER BY e.employee_code, pr.created_at
	`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll records: %w", err)
	}
	defer rows.Close()

	var records []payroll.PayrollRecord
	for rows.Next() {
		record, err := scanPayrollRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

func (r *payrollRepository) Update(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_records SET
			basic_salary = $3,
			total_working_days = $4, total_business_hours = $5, present_days = $6, absent_days = $7,
			leave_days = $8, half_days = $9, total_work_hours = $10, overtime_hours = $11,
			holiday_work_days = $12, holiday_work_hours = $13,
			gross_salary = $14, total_deductions = $15, net_salary = $16, overtime_pay = $17,
			allowances = $18, bonus = $19, tax = $20, provident_fund = $21,
			professional_tax = $22, other_deductions = $23,
			payment_status = $24, payment_date = $25, calculation_basis = $26, notes = $27,
			facts_source = $28, updated_at = NOW()
		WHERE id = $1 AND business_id = $2
	`

	tag, err := q.Exec(ctx, query,
		record.ID, record.BusinessID, record.BasicSalary,
		record.TotalWorkingDays, record.TotalBusinessHours, record.PresentDays, record.AbsentDays,
		record.LeaveDays, record.HalfDays, record.TotalWorkHours, record.OvertimeHours,
		record.HolidayWorkDays, record.HolidayWorkHours,
		record.GrossSalary, record.TotalDeductions, record.NetSalary, record.OvertimePay,
		record.Allowances, record.Bonus, record.Tax, record.ProvidentFund,
		record.ProfessionalTax, record.OtherDeductions,
		string(record.PaymentStatus), record.PaymentDate, basisArg(record.CalculationBasis), record.Notes,
		factsSourceArg(record.FactsSource),
	)
	if err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to update payroll record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
	}

	return r.GetByID(ctx, record.ID, record.BusinessID)
}

// MarkPaid finalizes a pending record. The status guard in the WHERE clause makes
// concurrent finalizations of the same record resolve to a single winner.
func (r *payrollRepository) MarkPaid(ctx context.Context, record payroll.PayrollRecord, paidAt time.Time) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_records SET
			total_working_days = $3, total_business_hours = $4, present_days = $5, absent_days = $6,
			leave_days = $7, half_days = $8, total_work_hours = $9, overtime_hours = $10,
			holiday_work_days = $11, holiday_work_hours = $12,
			gross_salary = $13, total_deductions = $14, net_salary = $15, overtime_pay = $16,
			calculation_basis = $17,
			payment_status = 'paid', payment_date = $18, updated_at = NOW()
		WHERE id = $1 AND business_id = $2 AND payment_status = 'pending'
	`

	tag, err := q.Exec(ctx, query,
		record.ID, record.BusinessID,
		record.TotalWorkingDays, record.TotalBusinessHours, record.PresentDays, record.AbsentDays,
		record.LeaveDays, record.HalfDays, record.TotalWorkHours, record.OvertimeHours,
		record.HolidayWorkDays, record.HolidayWorkHours,
		record.GrossSalary, record.TotalDeductions, record.NetSalary, record.OvertimePay,
		basisArg(record.CalculationBasis), paidAt,
	)
	if err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to mark payroll record as paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, record.ID, record.BusinessID); err != nil {
			return payroll.PayrollRecord{}, err
		}
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordAlreadyPaid
	}

	return r.GetByID(ctx, record.ID, record.BusinessID)
}

func (r *payrollRepository) Delete(ctx context.Context, id string, businessID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM payroll_records WHERE id = $1 AND business_id = $2`, id, businessID)
	if err != nil {
		return fmt.Errorf("failed to delete payroll record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayrollRecordNotFound
	}

	return nil
}

// ========== SUMMARY ==========

func (r *payrollRepository) GetSummary(ctx context.Context, businessID string, period payroll.Period) (payroll.Summary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(basic_salary), 0),
			COALESCE(SUM(gross_salary), 0),
			COALESCE(SUM(total_deductions), 0),
			COALESCE(SUM(overtime_pay), 0),
			COALESCE(SUM(net_salary), 0),
			COUNT(*) FILTER (WHERE payment_status = 'pending'),
			COUNT(*) FILTER (WHERE payment_status = 'paid'),
			COALESCE(SUM(net_salary) FILTER (WHERE payment_status = 'paid'), 0)
		FROM payroll_records
		WHERE business_id = $1 AND period_month = $2 AND period_year = $3
	`

	var s payroll.Summary
	err := q.QueryRow(ctx, query, businessID, period.Month, period.Year).Scan(
		&s.TotalEmployees, &s.TotalBasicSalary, &s.TotalGrossSalary, &s.TotalDeductions,
		&s.TotalOvertimePay, &s.TotalNetSalary, &s.PendingCount, &s.PaidCount, &s.TotalPaidNetSalary,
	)
	if err != nil {
		return payroll.Summary{}, fmt.Errorf("failed to get payroll summary: %w", err)
	}

	return s, nil
}
