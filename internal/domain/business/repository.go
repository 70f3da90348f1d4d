package business

import "context"

// BusinessRepository provides read access to tenants and their schedule configuration.
type BusinessRepository interface {
	GetByID(ctx context.Context, id string) (Business, error)
	ListIDs(ctx context.Context) ([]string, error)

	// GetSettings returns ErrBusinessSettingsNotFound when the business has no schedule configured.
	GetSettings(ctx context.Context, businessID string) (Settings, error)

	// ListHolidaysInMonth returns the holidays whose calendar date falls in the given month.
	ListHolidaysInMonth(ctx context.Context, businessID string, year, month int) ([]Holiday, error)
}
