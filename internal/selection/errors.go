package selection

import (
	"errors"
	"fmt"
)

// Precondition failures. These indicate a caller bug, never a user action.
var (
	ErrUnknownRole     = errors.New("role is not active")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Error represents an error that occurs during bullet selection
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}
