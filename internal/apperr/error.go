// internal/apperr/error.go

package apperr

import (
	"errors"
	"fmt"
)

type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

type ErrorType int

const (
	ValidationError ErrorType = iota
	ConnectError
	PersistError
	NotFoundError
)

func (t ErrorType) String() string {
	switch t {
	case ValidationError:
		return "validation"
	case ConnectError:
		return "connect"
	case PersistError:
		return "persist"
	case NotFoundError:
		return "not found"
	default:
		return "unknown"
	}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches another *AppError of the same type, so callers can write
// errors.Is(err, &AppError{Type: NotFoundError}).
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Type == e.Type && (t.Message == "" || t.Message == e.Message)
}

func New(errType ErrorType, message string, err error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// IsType reports whether any error in err's chain is an *AppError of type t.
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Type == t
}

// Reason returns the message of the first *AppError in err's chain, or the
// plain error text when there is none.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
