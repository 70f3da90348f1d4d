package business

import "errors"

var (
	ErrBusinessNotFound         = errors.New("business not found")
	ErrBusinessSettingsNotFound = errors.New("business settings not configured")
	ErrInvalidSchedule          = errors.New("business schedule is invalid: out time must be a valid HH:MM later than in time")
)
