package orchestrator

import (
	"errors"
	"fmt"
)

// errNoData marks an exhausted provider chain that produced no usable
// rows rather than a transport failure.
var errNoData = errors.New("no data returned by any source")

// ValidationError rejects a request before any fetch or computation runs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ProviderError wraps a failure of every upstream data source for a
// request.
type ProviderError struct {
	Source string
	Symbol string
	Err    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider failed for %s: %v", e.Source, e.Symbol, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// PersistenceError wraps a storage failure. Callers log it and keep
// serving the in-memory result; losing the cache write is not losing the
// response.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
