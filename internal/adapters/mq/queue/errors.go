package queue

import "errors"

var (
	// ErrClosed indicates the queue was closed while an operation was
	// in flight.
	ErrClosed = errors.New("queue closed")
)
