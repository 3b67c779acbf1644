// Package apierr describes how an error surfaces over the read API.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error pairs a status and machine code with a message safe to return to
// clients. Cause is for logs only.
type Error struct {
	Status int
	Code   string
	Public string
	Cause  error
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Cause != nil && e.Public != "":
		return e.Public + ": " + e.Cause.Error()
	case e.Cause != nil:
		return e.Cause.Error()
	case e.Public != "":
		return e.Public
	case e.Code != "":
		return e.Code
	}
	return http.StatusText(e.Status)
}

func (e *Error) Unwrap() error { return e.Cause }

// BadRequest reports an invalid request parameter.
func BadRequest(code, format string, args ...any) *Error {
	return &Error{Status: http.StatusBadRequest, Code: code, Public: fmt.Sprintf(format, args...)}
}

// Internal hides cause behind a generic message.
func Internal(code string, cause error) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: code, Public: "internal error", Cause: cause}
}

func Unavailable(code, public string, cause error) *Error {
	return &Error{Status: http.StatusServiceUnavailable, Code: code, Public: public, Cause: cause}
}

// From returns the *Error in err's chain. Anything else becomes Internal.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) && ae.Status != 0 {
		return ae
	}
	return Internal("internal", err)
}
