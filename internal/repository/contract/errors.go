package contract

import "errors"

var (
	// ErrStoreUnavailable wraps any failure talking to the backing store.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrDuplicate is returned when a unique key already exists.
	ErrDuplicate = errors.New("duplicate record")
	// ErrConflict is returned when a guarded write finds the row changed since it was read.
	ErrConflict = errors.New("record changed concurrently")
)
