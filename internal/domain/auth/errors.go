package auth

import "errors"

var (
	ErrInvalidToken          = errors.New("invalid or expired token")
	ErrBusinessIDRequired    = errors.New("business ID is required")
	ErrManagerAccessRequired = errors.New("manager access required")
)
