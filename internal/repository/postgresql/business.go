package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/business"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type businessRepositoryImpl struct {
	db *database.DB
}

func NewBusinessRepository(db *database.DB) business.BusinessRepository {
	return &businessRepositoryImpl{db: db}
}

// GetByID implements business.BusinessRepository.
func (r *businessRepositoryImpl) GetByID(ctx context.Context, id string) (business.Business, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, created_at, updated_at
		FROM businesses
		WHERE id = $1
	`

	var b business.Business
	err := q.QueryRow(ctx, query, id).Scan(&b.ID, &b.Name, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return business.Business{}, business.ErrBusinessNotFound
		}
		return business.Business{}, fmt.Errorf("failed to get business: %w", err)
	}

	return b, nil
}

// ListIDs implements business.BusinessRepository.
func (r *businessRepositoryImpl) ListIDs(ctx context.Context) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT id FROM businesses ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list businesses: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan business id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// GetSettings implements business.BusinessRepository.
func (r *businessRepositoryImpl) GetSettings(ctx context.Context, businessID string) (business.Settings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT business_id, working_days, default_in_time, default_out_time,
			   lunch_duration_minutes, timezone, created_at, updated_at
		FROM business_settings
		WHERE business_id = $1
	`

	var (
		s           business.Settings
		workingDays []int16
	)
	err := q.QueryRow(ctx, query, businessID).Scan(
		&s.BusinessID, &workingDays, &s.DefaultInTime, &s.DefaultOutTime,
		&s.LunchDurationMinutes, &s.Timezone, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return business.Settings{}, business.ErrBusinessSettingsNotFound
		}
		return business.Settings{}, fmt.Errorf("failed to get business settings: %w", err)
	}

	s.WorkingDays = make([]time.Weekday, 0, len(workingDays))
	for _, d := range workingDays {
		if d < 0 || d > 6 {
			return business.Settings{}, fmt.Errorf("business %s working day %d: %w", businessID, d, business.ErrInvalidSchedule)
		}
		s.WorkingDays = append(s.WorkingDays, time.Weekday(d))
	}

	return s, nil
}

// ListHolidaysInMonth implements business.BusinessRepository.
func (r *businessRepositoryImpl) ListHolidaysInMonth(ctx context.Context, businessID string, year, month int) ([]business.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	from, to := monthRange(year, month)
	query := `
		SELECT id, business_id, holiday_date, name, created_at
		FROM holidays
		WHERE business_id = $1 AND holiday_date >= $2 AND holiday_date < $3
		ORDER BY holiday_date
	`

	rows, err := q.Query(ctx, query, businessID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	var holidays []business.Holiday
	for rows.Next() {
		var h business.Holiday
		if err := rows.Scan(&h.ID, &h.BusinessID, &h.Date, &h.Name, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		holidays = append(holidays, h)
	}

	return holidays, rows.Err()
}

// monthRange returns [first day of month, first day of next month) as UTC dates.
func monthRange(year, month int) (time.Time, time.Time) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}
