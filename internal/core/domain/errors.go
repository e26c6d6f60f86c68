package domain

import "errors"

// Sentinel errors returned by the lifecycle engine. All engine operations
// are all-or-nothing: when any of these is returned, no partial mutation
// occurred. ErrStoreUnavailable and ErrConcurrencyConflict are safe to
// retry with backoff; the rest are terminal for that input.
var (
	// Campaign creation
	ErrInvalidBudget       = errors.New("campaign budget must be positive")
	ErrInsufficientCredits = errors.New("insufficient credits for campaign budget")

	// Lifecycle transitions
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("campaign is not in the required lifecycle stage")
	ErrForbidden    = errors.New("caller is not authorized for this operation")

	// Ad viewing
	ErrIneligible      = errors.New("viewer is not eligible for this ad")
	ErrBudgetExhausted = errors.New("campaign budget is exhausted")

	// Registration
	ErrProfileExists = errors.New("profile already exists for user")

	// Infrastructure
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrConcurrencyConflict = errors.New("concurrent update conflict, retries exhausted")
)
