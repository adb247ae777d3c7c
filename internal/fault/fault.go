// Package fault defines the error kinds shared by the readers, the group
// finder and the optics table builder. Every failure is wrapped with one of
// these so callers can tell them apart with errors.Is.
package fault

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat reports a malformed or missing input file.
	ErrFormat = errors.New("format error")
	// ErrConsistency reports data that contradicts itself, e.g. a micrograph
	// matching two membership rows or a group with mixed voltages.
	ErrConsistency = errors.New("consistency error")
	// ErrMissingInput reports an argument required by the input that was not given.
	ErrMissingInput = errors.New("missing input")
	// ErrPostcondition reports a particle left without an optics group.
	ErrPostcondition = errors.New("postcondition violated")
)

func Format(format string, args ...any) error {
	return wrap(ErrFormat, format, args...)
}

func Consistency(format string, args ...any) error {
	return wrap(ErrConsistency, format, args...)
}

func MissingInput(format string, args ...any) error {
	return wrap(ErrMissingInput, format, args...)
}

func Postcondition(format string, args ...any) error {
	return wrap(ErrPostcondition, format, args...)
}

func wrap(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}
