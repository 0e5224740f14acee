// Package apperr defines the error taxonomy shared by the services and the
// HTTP layer. Every failure a caller is expected to act on is an *Error
// carrying a Code; anything else is treated as an internal failure.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies the class of a failure.
type Code string

const (
	// CodeValidation indicates malformed or missing input.
	CodeValidation Code = "VALIDATION_ERROR"

	// CodeNotFound indicates a referenced entity does not exist.
	CodeNotFound Code = "NOT_FOUND"

	// CodeConflict indicates a uniqueness or stock conflict.
	CodeConflict Code = "CONFLICT"

	// CodeForbidden indicates a failed precondition or missing authority.
	CodeForbidden Code = "FORBIDDEN"

	// CodeInvalidStatus indicates an unknown status or an illegal transition.
	CodeInvalidStatus Code = "INVALID_STATUS"

	// CodeUnauthorized indicates missing or bad credentials.
	CodeUnauthorized Code = "UNAUTHORIZED"

	// CodeInternal indicates an unexpected failure.
	CodeInternal Code = "INTERNAL_ERROR"
)

// Error is a typed application error.
type Error struct {
	Code    Code
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Messages returns the user facing message list.
func (e *Error) Messages() []string {
	if len(e.Details) > 0 {
		return e.Details
	}
	return []string{e.Message}
}

func newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error {
	return newf(CodeValidation, format, args...)
}

// ValidationList builds a validation error from several messages.
func ValidationList(messages []string) *Error {
	msg := "validation failed"
	if len(messages) == 1 {
		msg = messages[0]
	}
	return &Error{Code: CodeValidation, Message: msg, Details: messages}
}

func NotFound(format string, args ...any) *Error {
	return newf(CodeNotFound, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return newf(CodeConflict, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return newf(CodeForbidden, format, args...)
}

func InvalidStatus(format string, args ...any) *Error {
	return newf(CodeInvalidStatus, format, args...)
}

func Unauthorized(format string, args ...any) *Error {
	return newf(CodeUnauthorized, format, args...)
}

// Internal wraps an unexpected failure. The message is never shown to users.
func Internal(err error, format string, args ...any) *Error {
	e := newf(CodeInternal, format, args...)
	e.Err = err
	return e
}

// CodeOf returns the code of the first *Error in err's chain, or
// CodeInternal when there is none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// HTTPStatus maps a code to the response status used by the handlers.
func HTTPStatus(code Code) int {
	switch code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeForbidden:
		return http.StatusForbidden
	case CodeInvalidStatus:
		return http.StatusUnprocessableEntity
	case CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
