package serviceerrs

import (
	"errors"
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidKind       = errors.New("invalid transaction type")
	ErrMissingCustomerID = errors.New("customerId is required")
	ErrInvalidLimit      = errors.New("limit must be a positive integer")
	ErrInvalidAction     = errors.New(`action must be "add" or "deduct"`)
)

var (
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrVersionConflict      = errors.New("document was modified concurrently")
	ErrNotFound             = errors.New("not found")
	ErrIdempotencyKeyReused = errors.New("idempotency key was already used for a different operation")
)

var (
	ErrQueueFull                = errors.New("notification queue is full")
	ErrDispatcherStopped        = errors.New("notification dispatcher is stopped")
	ErrSemaphoreTimeoutExceeded = errors.New("semaphore acquire timeout exceeded")
	ErrDeliveryFailed           = errors.New("notification delivery failed")
)

var (
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// IsValidation reports whether err was caused by bad caller input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidKind) ||
		errors.Is(err, ErrMissingCustomerID) ||
		errors.Is(err, ErrInvalidLimit) ||
		errors.Is(err, ErrInvalidAction)
}
