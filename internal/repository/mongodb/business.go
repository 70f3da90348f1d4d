package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/business"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type settingsDocument struct {
	WorkingDays          []int     `bson:"working_days"`
	DefaultInTime        string    `bson:"default_in_time"`
	DefaultOutTime       string    `bson:"default_out_time"`
	LunchDurationMinutes int       `bson:"lunch_duration_minutes"`
	Timezone             string    `bson:"timezone,omitempty"`
	CreatedAt            time.Time `bson:"created_at"`
	UpdatedAt            time.Time `bson:"updated_at"`
}

// businessDocument embeds the schedule settings; a business without settings
// has no "settings" field.
type businessDocument struct {
	ID        string            `bson:"_id"`
	Name      string            `bson:"name"`
	Settings  *settingsDocument `bson:"settings,omitempty"`
	CreatedAt time.Time         `bson:"created_at"`
	UpdatedAt time.Time         `bson:"updated_at"`
}

type holidayDocument struct {
	ID         string    `bson:"_id"`
	BusinessID string    `bson:"business_id"`
	Date       time.Time `bson:"date"`
	Name       string    `bson:"name"`
	CreatedAt  time.Time `bson:"created_at"`
}

func (d settingsDocument) toEntity(businessID string) (business.Settings, error) {
	s := business.Settings{
		BusinessID:           businessID,
		WorkingDays:          make([]time.Weekday, 0, len(d.WorkingDays)),
		DefaultInTime:        d.DefaultInTime,
		DefaultOutTime:       d.DefaultOutTime,
		LunchDurationMinutes: d.LunchDurationMinutes,
		Timezone:             d.Timezone,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}
	if s.Timezone == "" {
		s.Timezone = "UTC"
	}
	for _, wd := range d.WorkingDays {
		if wd < 0 || wd > 6 {
			return business.Settings{}, fmt.Errorf("business %s working day %d: %w", businessID, wd, business.ErrInvalidSchedule)
		}
		s.WorkingDays = append(s.WorkingDays, time.Weekday(wd))
	}
	return s, nil
}

type businessRepository struct {
	businesses *mongo.Collection
	holidays   *mongo.Collection
}

func NewBusinessRepository(db *database.MongoDB) business.BusinessRepository {
	return &businessRepository{
		businesses: db.Database.Collection(businessesCollection),
		holidays:   db.Database.Collection(holidaysCollection),
	}
}

func (r *businessRepository) find(ctx context.Context, id string) (businessDocument, error) {
	var doc businessDocument
	err := r.businesses.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return businessDocument{}, business.ErrBusinessNotFound
		}
		return businessDocument{}, fmt.Errorf("failed to get business: %w", err)
	}
	return doc, nil
}

func (r *businessRepository) GetByID(ctx context.Context, id string) (business.Business, error) {
	doc, err := r.find(ctx, id)
	if err != nil {
		return business.Business{}, err
	}
	return business.Business{ID: doc.ID, Name: doc.Name, CreatedAt: doc.CreatedAt, UpdatedAt: doc.UpdatedAt}, nil
}

func (r *businessRepository) ListIDs(ctx context.Context) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1}).SetSort(bson.M{"created_at": 1})
	cursor, err := r.businesses.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list businesses: %w", err)
	}

	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode businesses: %w", err)
	}

	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

func (r *businessRepository) GetSettings(ctx context.Context, businessID string) (business.Settings, error) {
	doc, err := r.find(ctx, businessID)
	if err != nil {
		if errors.Is(err, business.ErrBusinessNotFound) {
			return business.Settings{}, business.ErrBusinessSettingsNotFound
		}
		return business.Settings{}, err
	}
	if doc.Settings == nil {
		return business.Settings{}, business.ErrBusinessSettingsNotFound
	}
	return doc.Settings.toEntity(businessID)
}

func (r *businessRepository) ListHolidaysInMonth(ctx context.Context, businessID string, year, month int) ([]business.Holiday, error) {
	from, to := monthRange(year, month)
	filter := bson.M{
		"business_id": businessID,
		"date":        bson.M{"$gte": from, "$lt": to},
	}

	cursor, err := r.holidays.Find(ctx, filter, options.Find().SetSort(bson.M{"date": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}

	var docs []holidayDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode holidays: %w", err)
	}

	holidays := make([]business.Holiday, 0, len(docs))
	for _, d := range docs {
		holidays = append(holidays, business.Holiday{
			ID:         d.ID,
			BusinessID: d.BusinessID,
			Date:       calendarDate(d.Date),
			Name:       d.Name,
			CreatedAt:  d.CreatedAt,
		})
	}
	return holidays, nil
}
