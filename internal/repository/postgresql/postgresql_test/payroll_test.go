package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/business"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDB *database.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		fmt.Println("TEST_DATABASE_URL not set, skipping postgresql repository tests")
		os.Exit(0)
	}

	ctx := context.Background()
	setup, err := NewTestDatabase(ctx, dsn)
	if err != nil {
		panic(err.Error())
	}
	if err := setup.TruncateAllTables(ctx); err != nil {
		panic(err.Error())
	}
	testDB = setup.DB

	code := m.Run()
	setup.Close()
	os.Exit(code)
}

func newID(t *testing.T) string {
	id, err := uuid.NewV7()
	require.NoError(t, err)
	return id.String()
}

// Helper untuk membuat business dengan satu staff untuk testing
func createTestBusiness(t *testing.T, ctx context.Context, withSettings bool) (businessID, employeeID string) {
	businessID, employeeID = newID(t), newID(t)

	_, err := testDB.Exec(ctx, `INSERT INTO businesses (id, name) VALUES ($1, 'Test Business')`, businessID)
	require.NoError(t, err)

	_, err = testDB.Exec(ctx, `
		INSERT INTO employees (id, business_id, employee_code, full_name, role, salary)
		VALUES ($1, $2, 'E001', 'Test Staff', 'Staff', 30000)
	`, employeeID, businessID)
	require.NoError(t, err)

	if withSettings {
		_, err = testDB.Exec(ctx, `
			INSERT INTO business_settings (business_id, working_days, default_in_time, default_out_time, lunch_duration_minutes)
			VALUES ($1, '{1,2,3,4,5}', '09:00', '17:00', 60)
		`, businessID)
		require.NoError(t, err)
	}

	t.Cleanup(func() {
		_, _ = testDB.Exec(context.Background(), `DELETE FROM businesses WHERE id = $1`, businessID)
	})
	return businessID, employeeID
}

func pendingRecord(t *testing.T, businessID, employeeID string, month, year int) payroll.PayrollRecord {
	salary := decimal.NewFromInt(30000)
	return payroll.PayrollRecord{
		ID:            newID(t),
		EmployeeID:    employeeID,
		BusinessID:    businessID,
		PeriodMonth:   month,
		PeriodYear:    year,
		BasicSalary:   salary,
		GrossSalary:   salary,
		NetSalary:     salary,
		FactsSource:   payroll.FactsFromAttendance,
		PaymentStatus: payroll.PaymentStatusPending,
	}
}

func TestPayrollRepository_Create_Duplicate(t *testing.T) {
	ctx := context.Background()
	businessID, employeeID := createTestBusiness(t, ctx, true)
	repo := postgresql.NewPayrollRepository(testDB)

	created, err := repo.Create(ctx, pendingRecord(t, businessID, employeeID, 3, 2024))
	require.NoError(t, err)
	require.NotNil(t, created.EmployeeName)
	assert.Equal(t, "Test Staff", *created.EmployeeName)
	assert.Equal(t, payroll.FactsFromAttendance, created.FactsSource)

	_, err = repo.Create(ctx, pendingRecord(t, businessID, employeeID, 3, 2024))
	assert.ErrorIs(t, err, payroll.ErrPayrollRecordAlreadyExists)

	records, err := repo.List(ctx, businessID, payroll.RecordFilter{Period: payroll.Period{Month: 3, Year: 2024}})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestPayrollRepository_CreateMany_SkipsExisting(t *testing.T) {
	ctx := context.Background()
	businessID, employeeID := createTestBusiness(t, ctx, true)
	repo := postgresql.NewPayrollRepository(testDB)

	inserted, err := repo.CreateMany(ctx, []payroll.PayrollRecord{pendingRecord(t, businessID, employeeID, 4, 2024)})
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	inserted, err = repo.CreateMany(ctx, []payroll.PayrollRecord{pendingRecord(t, businessID, employeeID, 4, 2024)})
	require.NoError(t, err)
	assert.Zero(t, inserted)
}

func TestPayrollRepository_MarkPaid_OnlyOnce(t *testing.T) {
	ctx := context.Background()
	businessID, employeeID := createTestBusiness(t, ctx, true)
	repo := postgresql.NewPayrollRepository(testDB)

	created, err := repo.Create(ctx, pendingRecord(t, businessID, employeeID, 5, 2024))
	require.NoError(t, err)

	basis := payroll.BasisPerDay
	created.CalculationBasis = &basis
	created.NetSalary = decimal.RequireFromString("27300.00")
	paidAt := time.Date(2024, time.June, 1, 8, 0, 0, 0, time.UTC)

	paid, err := repo.MarkPaid(ctx, created, paidAt)
	require.NoError(t, err)
	assert.Equal(t, payroll.PaymentStatusPaid, paid.PaymentStatus)
	require.NotNil(t, paid.PaymentDate)
	assert.True(t, paid.PaymentDate.Equal(paidAt))
	assert.Equal(t, "27300.00", paid.NetSalary.StringFixed(2))

	_, err = repo.MarkPaid(ctx, created, paidAt)
	assert.ErrorIs(t, err, payroll.ErrPayrollRecordAlreadyPaid)

	created.ID = newID(t)
	_, err = repo.MarkPaid(ctx, created, paidAt)
	assert.ErrorIs(t, err, payroll.ErrPayrollRecordNotFound)
}

func TestPayrollRepository_DeleteAndSummary(t *testing.T) {
	ctx := context.Background()
	businessID, employeeID := createTestBusiness(t, ctx, true)
	repo := postgresql.NewPayrollRepository(testDB)
	period := payroll.Period{Month: 6, Year: 2024}

	created, err := repo.Create(ctx, pendingRecord(t, businessID, employeeID, period.Month, period.Year))
	require.NoError(t, err)

	summary, err := repo.GetSummary(ctx, businessID, period)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalEmployees)
	assert.Equal(t, 1, summary.PendingCount)
	assert.Equal(t, "30000.00", summary.TotalNetSalary.StringFixed(2))

	require.NoError(t, repo.Delete(ctx, created.ID, businessID))
	assert.ErrorIs(t, repo.Delete(ctx, created.ID, businessID), payroll.ErrPayrollRecordNotFound)
}

func TestBusinessRepository_SettingsAndHolidays(t *testing.T) {
	ctx := context.Background()
	businessID, _ := createTestBusiness(t, ctx, true)
	unconfiguredID, _ := createTestBusiness(t, ctx, false)
	repo := postgresql.NewBusinessRepository(testDB)

	_, err := testDB.Exec(ctx, `
		INSERT INTO holidays (id, business_id, holiday_date, name)
		VALUES ($1, $2, '2024-06-12', 'Company Day'), ($3, $2, '2024-07-01', 'Next Month')
	`, newID(t), businessID, newID(t))
	require.NoError(t, err)

	settings, err := repo.GetSettings(ctx, businessID)
	require.NoError(t, err)
	assert.Equal(t, []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}, settings.WorkingDays)
	assert.Equal(t, "UTC", settings.Timezone)

	_, err = repo.GetSettings(ctx, unconfiguredID)
	assert.ErrorIs(t, err, business.ErrBusinessSettingsNotFound)

	holidays, err := repo.ListHolidaysInMonth(ctx, businessID, 2024, 6)
	require.NoError(t, err)
	require.Len(t, holidays, 1)
	assert.Equal(t, "2024-06-12", holidays[0].Date.Format("2006-01-02"))

	_, err = repo.GetByID(ctx, newID(t))
	assert.ErrorIs(t, err, business.ErrBusinessNotFound)
}

func TestEmployeeAndAttendanceRepositories(t *testing.T) {
	ctx := context.Background()
	businessID, employeeID := createTestBusiness(t, ctx, true)

	staff, err := postgresql.NewEmployeeRepository(testDB).ListByRole(ctx, businessID, employee.RoleStaff)
	require.NoError(t, err)
	require.Len(t, staff, 1)
	assert.Equal(t, "30000.00", staff[0].Salary.StringFixed(2))

	_, err = postgresql.NewEmployeeRepository(testDB).GetByID(ctx, "abc", businessID)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	dayID := newID(t)
	_, err = testDB.Exec(ctx, `INSERT INTO daily_attendance (id, business_id, attendance_date) VALUES ($1, $2, '2024-06-03')`, dayID, businessID)
	require.NoError(t, err)
	_, err = testDB.Exec(ctx, `
		INSERT INTO daily_attendance_entries (daily_attendance_id, employee_id, in_status, work_hours)
		VALUES ($1, $2, 'Half-Day', 3.5)
	`, dayID, employeeID)
	require.NoError(t, err)

	records, err := postgresql.NewAttendanceRepository(testDB).ListByMonth(ctx, businessID, 2024, 6)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Len(t, records[0].Entries, 1)
	assert.Equal(t, attendance.StatusHalfDay, records[0].Entries[0].InStatus)
	assert.Equal(t, "3.50", records[0].Entries[0].WorkHours.StringFixed(2))
}
