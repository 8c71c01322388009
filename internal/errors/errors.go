// Package errors wraps the standard library errors package so call sites
// across the codebase share a single import for error inspection helpers.
package errors

import "errors"

// New returns an error with the given text.
func New(text string) error { return errors.New(text) }

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool { return errors.As(err, target) }

// Join returns an error wrapping the given errors.
func Join(errs ...error) error { return errors.Join(errs...) }

// Unwrap returns the result of calling Unwrap on err, if available.
func Unwrap(err error) error { return errors.Unwrap(err) }
