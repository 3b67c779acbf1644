package sqlexec

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/logger"
)

// Result is the execution evidence handed to the analysis stage.
type Result struct {
	Executed        bool     `json:"executed"`
	Success         bool     `json:"success"`
	StatementsRun   int      `json:"statements_run"`
	ResultSets      int      `json:"result_sets"`
	ExecutionTimeMS int64    `json:"execution_time_ms"`
	Errors          int      `json:"errors"`
	Warnings        int      `json:"warnings"`
	ErrorMessages   []string `json:"error_messages"`
	WarningMessages []string `json:"warning_messages"`
}

// Executor runs SQL text and reports what happened. SQL errors are part of the
// Result; the error return is reserved for infrastructure failures.
type Executor interface {
	Execute(ctx context.Context, sql string) (Result, error)
	Close()
}

type noopExecutor struct{}

// NewNoop returns an executor that never runs anything.
func NewNoop() Executor { return noopExecutor{} }

func (noopExecutor) Execute(ctx context.Context, sql string) (Result, error) {
	return Result{ErrorMessages: []string{}, WarningMessages: []string{}}, nil
}

func (noopExecutor) Close() {}

type Config struct {
	DSN              string
	MaxConns         int32
	StatementTimeout time.Duration
}

type pgExecutor struct {
	log     *logger.Logger
	pool    *pgxpool.Pool
	timeout time.Duration
	notices *noticeSink
}

// NewPostgres connects a sandbox pool. Every Execute runs inside a
// transaction that is always rolled back.
func NewPostgres(ctx context.Context, log *logger.Logger, cfg Config) (Executor, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("sandbox dsn required")
	}
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse sandbox dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	sink := &noticeSink{byConn: map[*pgconn.PgConn]*[]string{}}
	pcfg.ConnConfig.OnNotice = sink.add

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("sandbox pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("sandbox unreachable: %w", err)
	}

	timeout := cfg.StatementTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &pgExecutor{
		log:     log.With("service", "SQLExecutor"),
		pool:    pool,
		timeout: timeout,
		notices: sink,
	}, nil
}

func (e *pgExecutor) Close() { e.pool.Close() }

func (e *pgExecutor) Execute(ctx context.Context, sql string) (Result, error) {
	out := Result{Executed: true, ErrorMessages: []string{}, WarningMessages: []string{}}

	conn, err := e.pool.Acquire(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("acquire sandbox conn: %w", err)
	}
	defer conn.Release()

	pg := conn.Conn().PgConn()
	e.notices.start(pg)
	defer func() {
		out.WarningMessages = append(out.WarningMessages, e.notices.stop(pg)...)
		out.Warnings = len(out.WarningMessages)
	}()

	setup := fmt.Sprintf("BEGIN; SET LOCAL statement_timeout = %d", e.timeout.Milliseconds())
	if _, err := pg.Exec(ctx, setup).ReadAll(); err != nil {
		return Result{}, fmt.Errorf("begin sandbox tx: %w", err)
	}

	start := time.Now()
	mrr := pg.Exec(ctx, sql)
	for mrr.NextResult() {
		rr := mrr.ResultReader()
		hasRows := len(rr.FieldDescriptions()) > 0
		for rr.NextRow() {
		}
		if _, err := rr.Close(); err != nil {
			out.ErrorMessages = append(out.ErrorMessages, errorMessage(err))
			continue
		}
		out.StatementsRun++
		if hasRows {
			out.ResultSets++
		}
	}
	if err := mrr.Close(); err != nil && len(out.ErrorMessages) == 0 {
		out.ErrorMessages = append(out.ErrorMessages, errorMessage(err))
	}
	out.ExecutionTimeMS = time.Since(start).Milliseconds()
	out.Errors = len(out.ErrorMessages)
	out.Success = out.Errors == 0

	// Rollback on a fresh context so a canceled caller still leaves the conn clean.
	rbCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := pg.Exec(rbCtx, "ROLLBACK").ReadAll(); err != nil {
		e.log.Warn("Sandbox rollback failed; discarding connection", "error", err)
		_ = pg.Close(rbCtx)
	}
	return out, nil
}

func errorMessage(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Sprintf("%s (SQLSTATE %s)", pgErr.Message, pgErr.Code)
	}
	return err.Error()
}

// noticeSink routes server notices to the execution that is currently using
// the connection.
type noticeSink struct {
	mu     sync.Mutex
	byConn map[*pgconn.PgConn]*[]string
}

func (s *noticeSink) add(c *pgconn.PgConn, n *pgconn.Notice) {
	if n == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if buf, ok := s.byConn[c]; ok {
		*buf = append(*buf, fmt.Sprintf("%s: %s", n.Severity, n.Message))
	}
}

func (s *noticeSink) start(c *pgconn.PgConn) {
	s.mu.Lock()
	s.byConn[c] = &[]string{}
	s.mu.Unlock()
}

func (s *noticeSink) stop(c *pgconn.PgConn) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf, ok := s.byConn[c]
	delete(s.byConn, c)
	if !ok {
		return nil
	}
	return *buf
}
