package services

import "errors"

// Business errors returned by the services. Handlers match these with
// errors.Is and map them to HTTP statuses; anything else is an internal
// fault.
var (
	ErrBookNotFound       = errors.New("book not found")
	ErrBookUnavailable    = errors.New("book unavailable")
	ErrInvalidOrderType   = errors.New("invalid order type")
	ErrInvalidDuration    = errors.New("invalid rent duration")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)
