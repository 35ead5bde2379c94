package domain

import "errors"

var ErrNotFound = errors.New("delivery not found")

// ConnectionError reports that no database connection could be acquired.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return "connection failed: " + e.Err.Error()
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// InsertError reports that the delivery row could not be written.
// Err carries the driver error text shown to callers.
type InsertError struct {
	Err error
}

func (e *InsertError) Error() string {
	return "insert delivery: " + e.Err.Error()
}

func (e *InsertError) Unwrap() error { return e.Err }
