package services

import "errors"

// Sentinel errors shared by the domain services. Controllers translate
// these into the HTTP error envelope; anything else is a gateway/store
// failure and maps to DATABASE_ERROR.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidTransition  = errors.New("invalid transition")
	ErrConflict           = errors.New("conflict")
	ErrLocked             = errors.New("account locked")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
