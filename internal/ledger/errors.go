package ledger

import "errors"

var (
	// ErrNotFound is returned when a referenced account, category, currency,
	// transaction or transfer does not exist.
	ErrNotFound = errors.New("not found")

	ErrInvalidDeleteMode = errors.New("invalid delete mode")

	// ErrCategoryInUse is returned when deleting a category that still has
	// transactions booked under it.
	ErrCategoryInUse = errors.New("category in use")
)
