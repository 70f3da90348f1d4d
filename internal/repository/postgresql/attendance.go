package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/shopspring/decimal"
)

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}

// ListByMonth implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) ListByMonth(ctx context.Context, businessID string, year, month int) ([]attendance.DailyRecord, error) {
	q := GetQuerier(ctx, a.db)

	from, to := monthRange(year, month)
	query := `
		SELECT da.id, da.business_id, da.attendance_date, da.created_at, da.updated_at,
			   e.employee_id, e.in_status, e.out_status, e.in_time, e.out_time, e.work_hours
		FROM daily_attendance da
		LEFT JOIN daily_attendance_entries e ON e.daily_attendance_id = da.id
		WHERE da.business_id = $1 AND da.attendance_date >= $2 AND da.attendance_date < $3
		ORDER BY da.attendance_date
	`

	rows, err := q.Query(ctx, query, businessID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily attendance: %w", err)
	}
	defer rows.Close()

	var (
		records []attendance.DailyRecord
		index   = make(map[string]int)
	)
	for rows.Next() {
		var (
			rec        attendance.DailyRecord
			employeeID *string
			inStatus   *string
			outStatus  *string
			inTime     *time.Time
			outTime    *time.Time
			workHours  decimal.NullDecimal
		)
		if err := rows.Scan(
			&rec.ID, &rec.BusinessID, &rec.Date, &rec.CreatedAt, &rec.UpdatedAt,
			&employeeID, &inStatus, &outStatus, &inTime, &outTime, &workHours,
		); err != nil {
			return nil, fmt.Errorf("failed to scan daily attendance: %w", err)
		}

		i, ok := index[rec.ID]
		if !ok {
			records = append(records, rec)
			i = len(records) - 1
			index[rec.ID] = i
		}
		if employeeID == nil {
			continue
		}

		status, err := attendance.ParseStatus(*inStatus)
		if err != nil {
			return nil, fmt.Errorf("daily attendance %s employee %s: %w", rec.ID, *employeeID, err)
		}
		records[i].Entries = append(records[i].Entries, attendance.Entry{
			EmployeeID: *employeeID,
			InStatus:   status,
			OutStatus:  outStatus,
			InTime:     inTime,
			OutTime:    outTime,
			WorkHours:  workHours.Decimal,
		})
	}

	return records, rows.Err()
}
