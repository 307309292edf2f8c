package services

import "errors"

// Business-rule errors surfaced by the order flow. Handlers map these onto
// HTTP status codes.
var (
	ErrValidation          = errors.New("validation failed")
	ErrProductsUnavailable = errors.New("some products are unavailable")
	ErrProductInactive     = errors.New("product not available")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrOrderNotFound       = errors.New("order not found")
	ErrNotOrderOwner       = errors.New("not the order owner")
	ErrAlreadyCancelled    = errors.New("order is already cancelled")
	ErrCancellationClosed  = errors.New("order can no longer be cancelled")
	ErrInvalidOrderStatus  = errors.New("invalid order status")
)
