package contract

import "errors"

// Error taxonomy shared by the engine and its callers. Match with errors.Is.
var (
	// ErrAccessDenied means there is no identity, or the identity lacks the scope or capability.
	ErrAccessDenied = errors.New("access denied")

	// ErrNotFound means a referenced project is absent.
	ErrNotFound = errors.New("not found")

	// ErrAggregationFailure means an upstream fetch failed.
	ErrAggregationFailure = errors.New("aggregation failure")

	// ErrInvalidRange means a range selector is not one of the accepted values.
	ErrInvalidRange = errors.New("invalid range")
)
