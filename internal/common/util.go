package common

import (
	"errors"
	"fmt"
	"strings"
)

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// Used for folder passwords read from the terminal once they have been sent.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Validationf returns an error wrapping ErrValidation with a user-facing
// message. The message is what Error() returns, without the sentinel prefix.
func Validationf(format string, args ...any) error {
	return &validationError{msg: fmt.Sprintf(format, args...)}
}

type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Is(target error) bool { return target == ErrValidation }

// IsValidation reports whether err was produced by a client-side check.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// Blank reports whether s is empty after trimming whitespace.
func Blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
