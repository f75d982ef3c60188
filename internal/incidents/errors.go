package incidents

import "errors"

// Source errors.
var (
	ErrFetchFailed = errors.New("failed to fetch incidents")
)

// Lookup errors.
var (
	ErrIncidentNotFound = errors.New("incident not found")
)

// Action errors.
var (
	ErrActionInProgress = errors.New("another action is in progress for this incident")
	ErrAlreadyResolved  = errors.New("incident is already resolved")
)
