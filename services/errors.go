package services

import "errors"

// Common errors. Routes map these onto the HTTP error taxonomy: not
// found, forbidden, bad request, conflict, unauthorized.
var (
	ErrNotFound             = errors.New("resource not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrNoteNotFound         = errors.New("note not found")
	ErrVersionNotFound      = errors.New("note version not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrForbidden            = errors.New("operation not permitted")
	ErrGranteeNotFound      = errors.New("one or more users not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidVisibility    = errors.New("invalid visibility value")
	ErrEmailExists          = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUserInactive         = errors.New("user account is deactivated")
	ErrInvalidToken         = errors.New("invalid token")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrInternal             = errors.New("internal server error")
)
