package hierarchy

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSnapshot is returned when the source snapshot cannot be parsed.
	ErrInvalidSnapshot = errors.New("hierarchy: invalid snapshot")
	// ErrMissingIDColumn is returned when the snapshot has no id column.
	ErrMissingIDColumn = errors.New("hierarchy: missing id column")
	// ErrEmptyTable is returned when a table name is required but empty.
	ErrEmptyTable = errors.New("hierarchy: empty table name")
)

// SinkError reports a failed batch delivery. Batch is the zero-based index
// of the failing batch; earlier batches remain applied.
type SinkError struct {
	Batch int
	Err   error
}

// Error implements error.
func (e *SinkError) Error() string {
	return fmt.Sprintf("hierarchy: sink batch %d: %v", e.Batch, e.Err)
}

// Unwrap returns the underlying sink failure.
func (e *SinkError) Unwrap() error {
	return e.Err
}
