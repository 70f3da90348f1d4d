package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	businessesCollection      = "businesses"
	holidaysCollection        = "holidays"
	employeesCollection       = "employees"
	dailyAttendanceCollection = "daily_attendance"
	payrollRecordsCollection  = "payroll_records"
)

// EnsureIndexes creates the indexes the repositories rely on, including the
// unique payroll period index that makes bulk generation idempotent.
func EnsureIndexes(ctx context.Context, db *database.MongoDB) error {
	indexes := map[string][]mongo.IndexModel{
		payrollRecordsCollection: {
			{
				Keys: bson.D{
					{Key: "employee_id", Value: 1}, {Key: "business_id", Value: 1},
					{Key: "period_month", Value: 1}, {Key: "period_year", Value: 1},
				},
				Options: options.Index().SetUnique(true).SetName("uk_payroll_employee_period"),
			},
			{
				Keys: bson.D{{Key: "business_id", Value: 1}, {Key: "period_year", Value: 1}, {Key: "period_month", Value: 1}},
			},
		},
		holidaysCollection: {
			{
				Keys:    bson.D{{Key: "business_id", Value: 1}, {Key: "date", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uk_holiday_business_date"),
			},
		},
		dailyAttendanceCollection: {
			{
				Keys:    bson.D{{Key: "business_id", Value: 1}, {Key: "date", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uk_daily_attendance_business_date"),
			},
		},
		employeesCollection: {
			{Keys: bson.D{{Key: "business_id", Value: 1}, {Key: "role", Value: 1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := db.Database.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", coll, err)
		}
	}
	return nil
}

func toDecimal128(d decimal.Decimal) primitive.Decimal128 {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		// more than 34 significant digits
		v, _ = primitive.ParseDecimal128(d.StringFixed(2))
	}
	return v
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	if v == (primitive.Decimal128{}) {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal %q: %w", v.String(), err)
	}
	return d, nil
}

// monthRange returns [first day of month, first day of next month) as UTC dates.
func monthRange(year, month int) (time.Time, time.Time) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}

// calendarDate keeps only the Y-M-D of t at UTC midnight.
func calendarDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// isOnlyDuplicateKeyErrors reports whether err is a bulk write failure made up
// entirely of duplicate key violations, and how many documents were rejected.
func isOnlyDuplicateKeyErrors(err error) (int, bool) {
	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) || bwe.WriteConcernError != nil {
		return 0, false
	}
	for _, we := range bwe.WriteErrors {
		if we.Code != 11000 {
			return 0, false
		}
	}
	return len(bwe.WriteErrors), true
}
