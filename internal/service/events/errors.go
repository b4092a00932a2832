package events

import (
	"errors"
	"fmt"
)

// ErrValidation is the root of all input validation failures so transports
// can map the whole family to one status code.
var ErrValidation = errors.New("validation failed")

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrMissingTitle     = fmt.Errorf("%w: title is required", ErrValidation)
	ErrMissingEventDate = fmt.Errorf("%w: eventDate is required", ErrValidation)
	ErrInvalidEventDate = fmt.Errorf("%w: eventDate must be YYYY-MM-DD", ErrValidation)
	ErrInvalidNumber    = fmt.Errorf("%w: numeric field is not a number", ErrValidation)
)
