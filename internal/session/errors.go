package session

import (
	"errors"
	"fmt"
)

// Session lookup failures
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session is closed")
)

// ErrBlankEdit is returned when edit text is empty after trimming
var ErrBlankEdit = errors.New("edited bullet text is blank")

// Error represents an error that occurs while operating on a session
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
