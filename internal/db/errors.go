// internal/db/errors.go
package db

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// ConnectionError wraps database connection failures
type ConnectionError struct {
	Underlying error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection failed: %v", e.Underlying)
}

func (e *ConnectionError) Unwrap() error { return e.Underlying }

// QueryError wraps query execution failures
type QueryError struct {
	Underlying error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed: %v", e.Underlying)
}

func (e *QueryError) Unwrap() error { return e.Underlying }

// LoadError reports the constituent calls of a joined load that failed.
// The load itself still committed with empty values in their place.
type LoadError struct {
	Calls      []string
	Underlying error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load failed for %v: %v", e.Calls, e.Underlying)
}

func (e *LoadError) Unwrap() error { return e.Underlying }

// WrapConnectionError creates a ConnectionError from underlying error
func WrapConnectionError(err error) error {
	return &ConnectionError{Underlying: err}
}

// WrapQueryError creates a QueryError from underlying error
func WrapQueryError(err error) error {
	return &QueryError{Underlying: err}
}

// JoinLoadErrors builds a LoadError from named call errors, nil when all succeeded
func JoinLoadErrors(calls map[string]error) error {
	var names []string
	for _, name := range slices.Sorted(maps.Keys(calls)) {
		if calls[name] != nil {
			names = append(names, name)
		}
	}
	var errs []error
	for _, name := range names {
		errs = append(errs, fmt.Errorf("%s: %w", name, calls[name]))
	}
	if len(errs) == 0 {
		return nil
	}
	return &LoadError{Calls: names, Underlying: errors.Join(errs...)}
}
