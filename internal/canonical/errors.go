package canonical

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrCycle is matched by every *CycleError.
var ErrCycle = errors.New("circular structure")

// CycleError reports a value that contains itself.
type CycleError struct {
	Type reflect.Type
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("canonical: converting circular structure to JSON (%s)", e.Type)
}

// Is lets errors.Is(err, ErrCycle) match.
func (e *CycleError) Is(target error) bool { return target == ErrCycle }

// UnsupportedTypeError is returned for values that have no JSON form
// (channels, functions, complex numbers, unsafe pointers).
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return "canonical: unsupported type: " + e.Type.String()
}

// InvalidNumberError is returned for a json.Number that is not a number literal.
type InvalidNumberError struct {
	Literal string
}

func (e *InvalidNumberError) Error() string {
	return fmt.Sprintf("canonical: invalid number literal %q", e.Literal)
}

// SyntaxError wraps a decoding failure in Parse.
type SyntaxError struct {
	Offset     int64
	Underlying error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("canonical: invalid JSON at offset %d: %v", e.Offset, e.Underlying)
}

// Unwrap returns the decoder error.
func (e *SyntaxError) Unwrap() error { return e.Underlying }
