package models

import (
	"errors"
	"fmt"
)

// TransientStoreError is a connection-level store fault (broken connection,
// timeout). It is the only error class the query executor retries.
type TransientStoreError struct {
	Attempts int
	Err      error
}

func (e *TransientStoreError) Error() string {
	if e.Attempts > 0 {
		return fmt.Sprintf("transient store error after %d attempts: %v", e.Attempts, e.Err)
	}
	return fmt.Sprintf("transient store error: %v", e.Err)
}

func (e *TransientStoreError) Unwrap() error {
	return e.Err
}

// QueryError is a query or logic fault reported by the store (bad SQL,
// constraint violation, scan failure). It is never retried.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query error: %v", e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// ShapeMismatchError reports that fetched rows do not carry the fields a
// report shape declares. It indicates upstream schema drift and aborts the
// request.
type ShapeMismatchError struct {
	Field  string
	Row    int
	Reason string
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("shape mismatch: row %d field %q: %s", e.Row, e.Field, e.Reason)
}

// IsTransient reports whether err is, or wraps, a TransientStoreError.
func IsTransient(err error) bool {
	var te *TransientStoreError
	return errors.As(err, &te)
}
