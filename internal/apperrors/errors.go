// Package apperrors holds the error kinds shared by the chat and frame flows.
// Packages wrap these with %w and callers classify with errors.Is.
package apperrors

import "errors"

var (
	// ErrInvalidInput marks bad or conflicting user input (duplicate names,
	// empty arguments, protected sessions). Reported in-band, never fatal.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks a missing session, metadata entry or fps entry.
	ErrNotFound = errors.New("not found")
	// ErrFetch marks a failed network call or an unreadable collaborator
	// response. Recoverable by retrying.
	ErrFetch = errors.New("fetch failed")
	// ErrCorrupt marks persisted data that cannot be decoded or violates the
	// store invariants.
	ErrCorrupt = errors.New("corrupt data")
)

// Kind returns the sentinel err belongs to, or nil if it is unclassified.
func Kind(err error) error {
	for _, kind := range []error{ErrInvalidInput, ErrNotFound, ErrFetch, ErrCorrupt} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
