package attendance

import "context"

// AttendanceRepository defines read access to daily attendance documents.
type AttendanceRepository interface {
	// ListByMonth returns the daily records of a business whose date falls in the given month.
	ListByMonth(ctx context.Context, businessID string, year, month int) ([]DailyRecord, error)
}
