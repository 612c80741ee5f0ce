package sink

import "errors"

var (
	// ErrUnreachable marks store failures caused by connectivity. Store
	// implementations wrap transport errors with it.
	ErrUnreachable      = errors.New("sink: store unreachable")
	ErrWriteFailed      = errors.New("sink: write failed")
	ErrDatabaseRequired = errors.New("sink: database name required")
	ErrStoreRequired    = errors.New("sink: store required")
)

// IsUnreachable reports whether err is a connectivity failure.
func IsUnreachable(err error) bool {
	return errors.Is(err, ErrUnreachable)
}
