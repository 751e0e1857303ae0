package assign

import "errors"

// Sentinel kinds for assignment errors.
var (
	ErrEmptyMatrix = errors.New("cost matrix has no rows or columns")
)
