package services

import "errors"

// Domain validation errors. Callers distinguish them with errors.Is;
// the HTTP layer maps them to status codes in one place.
var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotInQueue        = errors.New("order is not in the fulfillment queue")
	ErrAlreadyQueued     = errors.New("order is already queued")
	ErrUnknownItem       = errors.New("item is not part of this task")
	ErrIncompletePick    = errors.New("not all items have been picked")
	ErrItemNotInOrder    = errors.New("item or quantity was not part of the original order")
	ErrAlreadyReturned   = errors.New("requested quantity exceeds what can still be returned")
	ErrFeeExceedsRefund  = errors.New("restocking fee must be less than the refund amount")
	ErrNonPositiveRefund = errors.New("final refund must be positive")
	ErrReasonRequired    = errors.New("rejection reason is required")
	ErrShipmentRequired  = errors.New("carrier and tracking number are required to ship")

	// ErrExternalService wraps failures from collaborators (notifier,
	// carrier). Order-side state that already committed is not rolled back.
	ErrExternalService = errors.New("external service failure")
)
