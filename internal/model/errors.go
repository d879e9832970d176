package model

import (
	"errors"
	"fmt"
	"strings"
)

// Error is the single error kind reported for model backend failures.
// Connection refusals, non-2xx responses, and decode failures all collapse
// into it; callers never see transport-specific error types.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := strings.TrimSpace(e.Message)
	if e.Err != nil {
		if msg == "" {
			return fmt.Sprintf("model backend: %v", e.Err)
		}
		return fmt.Sprintf("model backend: %s: %v", msg, e.Err)
	}
	if msg == "" {
		msg = "request failed"
	}
	return "model backend: " + msg
}

func (e *Error) Unwrap() error { return e.Err }

func newError(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

func wrapError(message string, err error) *Error {
	return &Error{Message: message, Err: err}
}

func IsBackendError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}
