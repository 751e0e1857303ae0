package classifier

import "errors"

var (
	// ErrEmptyText indicates the text to classify was empty.
	ErrEmptyText = errors.New("text to classify is empty")
	// ErrInvalidResponse indicates the model response could not be parsed
	// into a subject breakdown.
	ErrInvalidResponse = errors.New("invalid classifier response")
	// ErrUnavailable indicates the classifier backend could not be reached.
	ErrUnavailable = errors.New("classifier unavailable")
)
