package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain error kinds. Match with errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrInvalidState        = errors.New("invalid state")
	ErrConcurrencyConflict = errors.New("concurrency conflict")
)

// Error is a domain failure with a client-safe message.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func newf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return newf(ErrNotFound, format, args...)
}

func InsufficientStock(format string, args ...any) error {
	return newf(ErrInsufficientStock, format, args...)
}

func InvalidState(format string, args ...any) error {
	return newf(ErrInvalidState, format, args...)
}

func Conflict(format string, args ...any) error {
	return newf(ErrConcurrencyConflict, format, args...)
}

// Status maps err to the HTTP status a handler should answer with.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInsufficientStock),
		errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrConcurrencyConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text safe to show a client for err. Errors that are not
// domain errors get a generic message.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Msg
	}
	return "internal server error"
}
