package repository

import "errors"

// Package repository contains data access abstractions for the stand-in
// backend. Implementations live in subpackages (e.g. memory).

var (
	// ErrNotFound is returned when no row matches.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a unique key is already taken.
	ErrConflict = errors.New("record already exists")
)
