package sqlexec

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestNoopExecutor(t *testing.T) {
	res, err := NewNoop().Execute(context.Background(), "SELECT 1")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Executed || res.Success {
		t.Fatalf("noop should not report execution: %+v", res)
	}
	if res.ErrorMessages == nil || res.WarningMessages == nil {
		t.Fatalf("message slices should be non-nil")
	}
}

func TestNoticeSink_RoutesByConnection(t *testing.T) {
	s := &noticeSink{byConn: map[*pgconn.PgConn]*[]string{}}
	a, b := &pgconn.PgConn{}, &pgconn.PgConn{}

	s.start(a)
	s.add(a, &pgconn.Notice{Severity: "NOTICE", Message: "table t does not exist, skipping"})
	s.add(b, &pgconn.Notice{Severity: "NOTICE", Message: "dropped"})
	s.add(a, nil)

	got := s.stop(a)
	if len(got) != 1 || got[0] != "NOTICE: table t does not exist, skipping" {
		t.Fatalf("unexpected notices: %#v", got)
	}
	if s.stop(b) != nil {
		t.Fatalf("unregistered connection should yield nil")
	}
}

func TestErrorMessage(t *testing.T) {
	err := &pgconn.PgError{Code: "42P01", Message: `relation "missing" does not exist`}
	if got := errorMessage(err); got != `relation "missing" does not exist (SQLSTATE 42P01)` {
		t.Fatalf("got %q", got)
	}
}
