// Package apperr defines sentinel errors shared across application layers.
package apperr

import "errors"

var (
	// ErrNotFound indicates a requested archive or record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnreadableInput indicates an input archive could not be read;
	// fatal for that input, other inputs are still processed.
	ErrUnreadableInput = errors.New("unreadable input")
)
