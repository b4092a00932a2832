package auth

import "errors"

var (
	ErrEmailTaken         = errors.New("email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid password")
	ErrMissingFields      = errors.New("name, email and password are required")
)
