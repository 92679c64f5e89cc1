package schema

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx operations the routing layer needs. It is
// satisfied by *pgxpool.Pool, *pgxpool.Conn, pgx.Tx and pgxmock pools.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RoutingSession pins one database connection to a programme schema's search
// path. A session is created per request and never shared across concurrent
// requests. The search path is connection state, not pool state, so SetSchema
// must be re-applied every time a pooled connection is (re)acquired.
type RoutingSession struct {
	db     Querier
	schema string
}

// NewRoutingSession wraps db. The session starts on the public schema; no
// statement is issued until SetSchema is called.
func NewRoutingSession(db Querier) *RoutingSession {
	return &RoutingSession{db: db, schema: "public"}
}

// Schema returns the currently configured schema name.
func (s *RoutingSession) Schema() string {
	return s.schema
}

// SetSchema sets the connection's search path to [name, public] for the rest
// of the session. Idempotent: re-applying the current schema is a no-op.
func (s *RoutingSession) SetSchema(ctx context.Context, name string) error {
	if name == s.schema {
		return nil
	}
	resolved, err := Resolve(name)
	if err != nil {
		return err
	}
	stmt := fmt.Sprintf("SET search_path TO %s, public", pgx.Identifier{resolved}.Sanitize())
	if _, err := s.db.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("set search_path to %s: %w", resolved, err)
	}
	s.schema = resolved
	return nil
}

// Reset restores the public search path. Called before the underlying
// connection is returned to the pool so schema state never leaks into an
// unrelated request.
func (s *RoutingSession) Reset(ctx context.Context) error {
	if s.schema == "public" {
		return nil
	}
	if _, err := s.db.Exec(ctx, "SET search_path TO public"); err != nil {
		return fmt.Errorf("reset search_path: %w", err)
	}
	s.schema = "public"
	return nil
}

// Exec runs a statement under the session's current search path.
func (s *RoutingSession) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return s.db.Exec(ctx, sql, args...)
}

// Query runs a query under the session's current search path.
func (s *RoutingSession) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return s.db.Query(ctx, sql, args...)
}

// QueryRow runs a single-row query under the session's current search path.
func (s *RoutingSession) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return s.db.QueryRow(ctx, sql, args...)
}

// ExecInSchema applies the schema (idempotently) and runs the statement,
// returning the affected row count.
func (s *RoutingSession) ExecInSchema(ctx context.Context, schemaName, sql string, args ...any) (int64, error) {
	if err := s.SetSchema(ctx, schemaName); err != nil {
		return 0, err
	}
	tag, err := s.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// QueryInSchema applies the schema (idempotently) and runs the query.
func (s *RoutingSession) QueryInSchema(ctx context.Context, schemaName, sql string, args ...any) (pgx.Rows, error) {
	if err := s.SetSchema(ctx, schemaName); err != nil {
		return nil, err
	}
	return s.db.Query(ctx, sql, args...)
}
