package storage

import "errors"

// Package storage contains the durable key/value abstraction the client keeps
// its session in. Values are opaque bytes; keys are short fixed names.

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("key not found")

// Storage is a small durable key/value store.
// Implementations must be safe for concurrent use by multiple goroutines.
type Storage interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(key string) ([]byte, error)
	// Put stores value under key, replacing any previous value.
	Put(key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
}
