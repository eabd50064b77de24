package xclipper

import (
	"errors"
	"fmt"
)

// Application error codes. These map 1:1 to user-facing failure classes:
// EINVALID is a configuration or input problem the user must fix,
// ENOTFOUND covers both "no post detected" and a missing remote database,
// EUNAUTHORIZED is a credential or sharing problem, EUNAVAILABLE is a
// failed fetch of an external resource, and EINTERNAL is everything else.
const (
	EINVALID      = "invalid"
	ENOTFOUND     = "not_found"
	EUNAUTHORIZED = "unauthorized"
	EUNAVAILABLE  = "unavailable"
	EINTERNAL     = "internal"
)

// Error represents an application-specific error. Application errors carry
// a machine-readable code and a human-readable message.
type Error struct {
	// Code is one of the E* constants above.
	Code string

	// Message is a human-readable description of the error.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("xclipper error: code=%s message=%s", e.Code, e.Message)
}

// Errorf is a helper to construct an Error with formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error.".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}
