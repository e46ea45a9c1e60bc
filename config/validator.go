package config

import (
	"fmt"
	"strings"
	"unicode"
)

// Validator is a type able to validate itself. Validate inspects the type for
// syntactic or semantic issues, and returns a descriptive error if any
// violations are encountered. Validate should return instances of
// ValidationError where possible, which enables tracking nested contexts.
type Validator interface {
	Validate() error
}

// ValidationError is an error implementation which captures its validation context.
type ValidationError struct {
	Context []string
	Err     error
}

// Error implements the error interface.
func (ve *ValidationError) Error() string {
	if len(ve.Context) != 0 {
		return strings.Join(ve.Context, ".") + ": " + ve.Err.Error()
	}
	return ve.Err.Error()
}

// Unwrap returns the underlying error of the ValidationError.
func (ve *ValidationError) Unwrap() error { return ve.Err }

// ExtendContext type-checks |err| to a *ValidationError, and if matched extends
// it with |context|. In all cases the value of |err| is returned.
func ExtendContext(err error, format string, args ...interface{}) error {
	if ve, ok := err.(*ValidationError); ok {
		ve.Context = append([]string{fmt.Sprintf(format, args...)}, ve.Context...)
	}
	return err
}

// NewValidationError parallels fmt.Errorf to return a new ValidationError instance.
func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{Err: fmt.Errorf(format, args...)}
}

// ValidateLabel ensures the string is a usable vocabulary label: of length
// [1, max] bytes, without surrounding whitespace, and without control runes
// or the CSV field separator, so that it round-trips through result files.
func ValidateLabel(n string, max int) error {
	if l := len(n); l < 1 || l > max {
		return NewValidationError("invalid length (%d; expected 1 <= length <= %d)", l, max)
	} else if strings.TrimSpace(n) != n {
		return NewValidationError("cannot have leading or trailing whitespace (%q)", n)
	}
	for _, r := range n {
		if unicode.IsControl(r) || r == ',' {
			return NewValidationError("not a valid label (%q)", n)
		}
	}
	return nil
}
