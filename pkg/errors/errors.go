// Package errors provides coded errors for the boundaries of arbor: the
// analysis runner, the HTTP API and the CLI.
//
// Library packages such as arbor, skeleton and io return plain sentinel
// errors. At the boundary those are classified into an [*Error] carrying a
// machine-readable [Code], which the API maps to an HTTP status and the CLI
// prints without the Go error chain.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "sholl increment must be positive, got %v", r)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // reject the request
//	}
//
//	// Classify library errors
//	s, err := pkgio.ReadJSON(body)
//	if err != nil {
//	    return errors.Classify(err)
//	}
package errors

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/matzehuels/arbor/pkg/arbor"
	pkgio "github.com/matzehuels/arbor/pkg/io"
	"github.com/matzehuels/arbor/pkg/skeleton"
)

// Code represents a machine-readable error code.
type Code string

const (
	// Input validation errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidMetric    Code = "INVALID_METRIC"
	ErrCodeInvalidIncrement Code = "INVALID_INCREMENT"
	ErrCodeMalformedTree    Code = "MALFORMED_TREE"

	// Resource not found errors
	ErrCodeNodeNotFound Code = "NODE_NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Analysis results that cannot be produced for the given input
	ErrCodeNotComputable Code = "NOT_COMPUTABLE"

	// Infrastructure errors
	ErrCodeCache    Code = "CACHE_ERROR"
	ErrCodeTimeout  Code = "TIMEOUT"
	ErrCodeCanceled Code = "CANCELED"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is an error with a code and optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the cause so errors.Is and errors.As see through an *Error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the chain of err contains an *Error with code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode returns the code of the first *Error in the chain of err, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of an *Error without the code prefix, or
// err.Error() for other errors.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return e.Message + ": " + e.Cause.Error()
		}
		return e.Message
	}
	return err.Error()
}

// Classify converts library errors into coded errors. Errors that already
// carry a code and nil are returned unchanged; unknown errors become
// INTERNAL_ERROR.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	switch {
	case errors.Is(err, arbor.ErrMalformedTree), errors.Is(err, pkgio.ErrDuplicateNode):
		return Wrap(ErrCodeMalformedTree, err, "skeleton is not a single rooted tree")
	case errors.Is(err, arbor.ErrNodeNotFound), errors.Is(err, skeleton.ErrUnknownNode):
		return Wrap(ErrCodeNodeNotFound, err, "unknown node")
	case errors.Is(err, skeleton.ErrMissingPosition):
		return Wrap(ErrCodeInvalidInput, err, "incomplete skeleton")
	case errors.Is(err, arbor.ErrInvalidIncrement):
		return Wrap(ErrCodeInvalidIncrement, err, "invalid radius increment")
	case errors.Is(err, pkgio.ErrUnsupportedFormat):
		return Wrap(ErrCodeInvalidFormat, err, "unsupported input")
	case errors.Is(err, fs.ErrNotExist):
		return Wrap(ErrCodeFileNotFound, err, "file not found")
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(ErrCodeTimeout, err, "analysis timed out")
	case errors.Is(err, context.Canceled):
		return Wrap(ErrCodeCanceled, err, "analysis canceled")
	}
	return Wrap(ErrCodeInternal, err, "internal error")
}

// HTTPStatus returns the response status for code.
func HTTPStatus(code Code) int {
	switch code {
	case ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidMetric,
		ErrCodeInvalidIncrement, ErrCodeMalformedTree:
		return http.StatusBadRequest
	case ErrCodeNodeNotFound, ErrCodeFileNotFound:
		return http.StatusNotFound
	case ErrCodeNotComputable:
		return http.StatusUnprocessableEntity
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeCanceled:
		return 499
	case ErrCodeUnsupported:
		return http.StatusNotImplemented
	case ErrCodeCache:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
