package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")

	// Access code errors
	ErrCodeInvalid = errors.New("invalid access code")
	ErrCodeExpired = errors.New("access code has expired")

	// Payment errors
	ErrPaymentNotSuccessful = errors.New("payment unsuccessful")
	ErrUnknownPlan          = errors.New("unknown subscription plan")

	// Access errors
	ErrNoActiveAccess = errors.New("no active access")

	// Infra errors
	ErrInvalidExecContext = errors.New("invalid database execution context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
)
