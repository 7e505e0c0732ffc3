package ierr

import (
	"encoding/json"
	"errors"
)

type ErrorCode string

const (
	ErrorCodeInvalidArgument    ErrorCode = "InvalidArgument"
	ErrorCodeNotFound           ErrorCode = "NotFound"
	ErrorCodeFailedPrecondition ErrorCode = "FailedPrecondition"
	ErrorCodePermissionDenied   ErrorCode = "PermissionDenied"
	ErrorCodeUnauthenticated    ErrorCode = "Unauthenticated"
	ErrorCodeInternal           ErrorCode = "Internal"
)

type Error struct {
	Code    ErrorCode       `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`

	cause error
}

func New(code ErrorCode, cause error) Error {
	return Error{
		Code:    code,
		Message: cause.Error(),
		cause:   cause,
	}
}

// Errorf is a shorthand for New(code, errors.New(message)).
func Errorf(code ErrorCode, message string) Error {
	return New(code, errors.New(message))
}

func (e Error) Error() string {
	return string(e.Code) + ": " + e.cause.Error()
}

func (e Error) Unwrap() error {
	return e.cause
}

// CodeOf returns the code carried by err, or ErrorCodeInternal when err is not
// an Error.
func CodeOf(err error) ErrorCode {
	var coded Error
	if errors.As(err, &coded) {
		return coded.Code
	}

	return ErrorCodeInternal
}

// IsClientError reports whether err was caused by the caller's input rather
// than by a failure on our side.
func IsClientError(err error) bool {
	switch CodeOf(err) {
	case ErrorCodeInvalidArgument,
		ErrorCodeNotFound,
		ErrorCodeFailedPrecondition,
		ErrorCodePermissionDenied,
		ErrorCodeUnauthenticated:
		return true
	default:
		return false
	}
}
