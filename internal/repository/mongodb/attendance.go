package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// dailyAttendanceDocument is one business day with the entries of every employee.
type dailyAttendanceDocument struct {
	ID         string                 `bson:"_id"`
	BusinessID string                 `bson:"business_id"`
	Date       time.Time              `bson:"date"`
	Entries    []attendanceEntryField `bson:"entries"`
	CreatedAt  time.Time              `bson:"created_at"`
	UpdatedAt  time.Time              `bson:"updated_at"`
}

type attendanceEntryField struct {
	EmployeeID string               `bson:"employee_id"`
	InStatus   string               `bson:"in_status"`
	OutStatus  *string              `bson:"out_status,omitempty"`
	InTime     *time.Time           `bson:"in_time,omitempty"`
	OutTime    *time.Time           `bson:"out_time,omitempty"`
	WorkHours  primitive.Decimal128 `bson:"work_hours"`
}

func (d dailyAttendanceDocument) toEntity() (attendance.DailyRecord, error) {
	rec := attendance.DailyRecord{
		ID:         d.ID,
		BusinessID: d.BusinessID,
		Date:       calendarDate(d.Date),
		Entries:    make([]attendance.Entry, 0, len(d.Entries)),
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
	for _, e := range d.Entries {
		status, err := attendance.ParseStatus(e.InStatus)
		if err != nil {
			return attendance.DailyRecord{}, fmt.Errorf("daily attendance %s employee %s: %w", d.ID, e.EmployeeID, err)
		}
		workHours, err := fromDecimal128(e.WorkHours)
		if err != nil {
			return attendance.DailyRecord{}, fmt.Errorf("daily attendance %s employee %s: %w", d.ID, e.EmployeeID, err)
		}
		rec.Entries = append(rec.Entries, attendance.Entry{
			EmployeeID: e.EmployeeID,
			InStatus:   status,
			OutStatus:  e.OutStatus,
			InTime:     e.InTime,
			OutTime:    e.OutTime,
			WorkHours:  workHours,
		})
	}
	return rec, nil
}

type attendanceRepository struct {
	days *mongo.Collection
}

func NewAttendanceRepository(db *database.MongoDB) attendance.AttendanceRepository {
	return &attendanceRepository{days: db.Database.Collection(dailyAttendanceCollection)}
}

func (r *attendanceRepository) ListByMonth(ctx context.Context, businessID string, year, month int) ([]attendance.DailyRecord, error) {
	from, to := monthRange(year, month)
	filter := bson.M{
		"business_id": businessID,
		"date":        bson.M{"$gte": from, "$lt": to},
	}

	cursor, err := r.days.Find(ctx, filter, options.Find().SetSort(bson.M{"date": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to list daily attendance: %w", err)
	}

	var docs []dailyAttendanceDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode daily attendance: %w", err)
	}

	records := make([]attendance.DailyRecord, 0, len(docs))
	for _, d := range docs {
		rec, err := d.toEntity()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
