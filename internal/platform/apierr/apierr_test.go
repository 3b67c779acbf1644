package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestFrom(t *testing.T) {
	base := errors.New("connection refused")
	wrapped := fmt.Errorf("handler: %w", Unavailable("db_down", "database unavailable", base))

	ae := From(wrapped)
	if ae.Status != http.StatusServiceUnavailable || ae.Code != "db_down" || ae.Public != "database unavailable" {
		t.Fatalf("unexpected error: %+v", ae)
	}
	if !errors.Is(wrapped, base) {
		t.Fatalf("expected cause to unwrap")
	}

	plain := From(base)
	if plain.Status != http.StatusInternalServerError || plain.Public != "internal error" {
		t.Fatalf("plain errors should become internal: %+v", plain)
	}
	if !errors.Is(plain, base) {
		t.Fatalf("internal error should keep its cause")
	}
}

func TestError_Message(t *testing.T) {
	cases := []struct {
		err  *Error
		want string
	}{
		{err: nil, want: ""},
		{err: BadRequest("invalid_limit", "limit must be <= %d", 500), want: "limit must be <= 500"},
		{err: Internal("query_failed", errors.New("boom")), want: "internal error: boom"},
		{err: &Error{Cause: errors.New("boom")}, want: "boom"},
		{err: &Error{Code: "invalid_limit"}, want: "invalid_limit"},
		{err: &Error{Status: http.StatusTeapot}, want: "I'm a teapot"},
	}
	for _, tc := range cases {
		if got := tc.err.Error(); got != tc.want {
			t.Fatalf("want %q got %q", tc.want, got)
		}
	}
}
