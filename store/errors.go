package store

import "errors"

var (
	// ErrRedisUnavailable wraps Redis command failures.
	ErrRedisUnavailable = errors.New("redis unavailable")
	// ErrCorrupt is returned when a file store cannot be decoded.
	ErrCorrupt = errors.New("store file corrupt")
	// ErrEmptyKey is returned for operations on the empty key.
	ErrEmptyKey = errors.New("empty key")
)
