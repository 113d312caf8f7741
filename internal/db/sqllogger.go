package db

import (
	"context"
	"database/sql/driver"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// queryLogConnector opens connections whose queries are logged at debug
// level once their rows are closed, with the engine, the elapsed time and
// the number of rows read.
type queryLogConnector struct {
	driver driver.Driver
	dsn    string
	engine string
	logger *slog.Logger
}

// NewQueryLogConnector returns a driver.Connector that opens dsn with drv
// and logs every query the station source runs. engine tags each record.
// Statements other than queries pass through unlogged.
func NewQueryLogConnector(engine string, drv driver.Driver, dsn string, logger *slog.Logger) (driver.Connector, error) {
	if drv == nil {
		return nil, fmt.Errorf("query-log: nil driver for %q", engine)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &queryLogConnector{driver: drv, dsn: dsn, engine: engine, logger: logger}, nil
}

func (c *queryLogConnector) Driver() driver.Driver {
	return c.driver
}

func (c *queryLogConnector) Connect(_ context.Context) (driver.Conn, error) {
	conn, err := c.driver.Open(c.dsn)
	if err != nil {
		c.logger.Debug("sql connect failed", "engine", c.engine, "error", err)
		return nil, err
	}
	return &queryLogConn{Conn: conn, connector: c}, nil
}

// queryLogConn hides the wrapped connection's Queryer so database/sql
// prepares every query through Prepare.
type queryLogConn struct {
	driver.Conn
	connector *queryLogConnector
}

func (c *queryLogConn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	var (
		stmt driver.Stmt
		err  error
	)
	if prep, ok := c.Conn.(driver.ConnPrepareContext); ok {
		stmt, err = prep.PrepareContext(ctx, query)
	} else {
		stmt, err = c.Conn.Prepare(query)
	}
	if err != nil {
		c.connector.logger.Debug("sql prepare failed", "engine", c.connector.engine, "sql", query, "error", err)
		return nil, err
	}
	return &queryLogStmt{Stmt: stmt, query: query, connector: c.connector}, nil
}

func (c *queryLogConn) Prepare(query string) (driver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

// Ping keeps health checks reaching the server.
func (c *queryLogConn) Ping(ctx context.Context) error {
	if p, ok := c.Conn.(driver.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

type queryLogStmt struct {
	driver.Stmt
	query     string
	connector *queryLogConnector
}

func (s *queryLogStmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	start := time.Now()
	var (
		rows driver.Rows
		err  error
	)
	if q, ok := s.Stmt.(driver.StmtQueryContext); ok {
		rows, err = q.QueryContext(ctx, args)
	} else {
		vals := make([]driver.Value, len(args))
		for i := range args {
			vals[i] = args[i].Value
		}
		//nolint:staticcheck // SA1019 – fallback when underlying stmt does not implement StmtQueryContext
		rows, err = s.Stmt.Query(vals)
	}
	if err != nil {
		s.log(start, args, 0, err)
		return nil, err
	}
	return &countingRows{Rows: rows, stmt: s, args: args, start: start}, nil
}

func (s *queryLogStmt) log(start time.Time, args []driver.NamedValue, n int, err error) {
	attrs := []any{
		"engine", s.connector.engine,
		"sql", s.query,
		"args", formatArgs(args),
		"rows", n,
		"duration", time.Since(start),
	}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	s.connector.logger.Debug("sql query", attrs...)
}

// countingRows logs its query on Close, after the caller has read what it
// wanted.
type countingRows struct {
	driver.Rows
	stmt   *queryLogStmt
	args   []driver.NamedValue
	start  time.Time
	n      int
	err    error
	logged bool
}

func (r *countingRows) Next(dest []driver.Value) error {
	err := r.Rows.Next(dest)
	switch {
	case err == nil:
		r.n++
	case err != io.EOF:
		r.err = err
	}
	return err
}

func (r *countingRows) Close() error {
	err := r.Rows.Close()
	if !r.logged {
		r.logged = true
		r.stmt.log(r.start, r.args, r.n, r.err)
	}
	return err
}

func formatArgs(args []driver.NamedValue) []string {
	out := make([]string, len(args))
	for i, a := range args {
		v := formatArg(a.Value)
		if a.Name != "" {
			v = a.Name + "=" + v
		}
		out[i] = v
	}
	return out
}

func formatArg(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}
