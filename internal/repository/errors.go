package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist or belongs
	// to another tenant; the two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("repository: not found")
	// ErrConflict indicates a uniqueness or concurrency conflict.
	ErrConflict = errors.New("repository: conflict")
)
