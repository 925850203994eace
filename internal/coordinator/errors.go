package coordinator

import (
	"errors"

	"github.com/rshade/datatable/internal/fetch"
)

// Lifecycle errors.
var (
	// ErrAlreadyAttached is returned by Attach on an attached coordinator.
	ErrAlreadyAttached = errors.New("coordinator already attached")

	// ErrNotAttached is returned by triggers and queries outside an attached lifecycle.
	ErrNotAttached = errors.New("coordinator not attached")

	// ErrInvalidPageRequest is returned for a negative page index or size.
	ErrInvalidPageRequest = errors.New("page index and size must be non-negative")

	// ErrNilFetcher is returned by Attach when no fetcher is given.
	ErrNilFetcher = fetch.ErrNilFetcher
)

// LifecycleError reports a misuse of the coordinator API.
type LifecycleError struct {
	// Op is the coordinator method that failed.
	Op string
	// Err is the underlying sentinel.
	Err error
}

func (e *LifecycleError) Error() string {
	return "coordinator " + e.Op + ": " + e.Err.Error()
}

func (e *LifecycleError) Unwrap() error {
	return e.Err
}

func lifecycleErr(op string, err error) error {
	return &LifecycleError{Op: op, Err: err}
}
