package source

import (
	"context"
	"database/sql"
	"log/slog"
	"time"
)

// sqlSource serves the mysql and sqlite3 engines through database/sql.
type sqlSource struct {
	db      *sql.DB
	dialect dialect
	timeout time.Duration
	logger  *slog.Logger
}

// NewMySQL wraps a *sql.DB opened with the mysql driver.
func NewMySQL(db *sql.DB, timeout time.Duration, logger *slog.Logger) Fetcher {
	return newSQLSource(db, mysqlDialect, timeout, logger)
}

// NewSQLite wraps a *sql.DB opened with the sqlite3 driver.
func NewSQLite(db *sql.DB, timeout time.Duration, logger *slog.Logger) Fetcher {
	return newSQLSource(db, sqliteDialect, timeout, logger)
}

func newSQLSource(db *sql.DB, d dialect, timeout time.Duration, logger *slog.Logger) *sqlSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &sqlSource{db: db, dialect: d, timeout: timeout, logger: logger}
}

func (s *sqlSource) Fetch(ctx context.Context, table string, limit int) ([]Row, error) {
	query, err := s.dialect.latestQuery(table, limit)
	if err != nil {
		return nil, &FetchError{Kind: QueryFailed, Table: table, Err: err}
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	// One connection per fetch, handed back to the pool on every path.
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, &FetchError{Kind: ConnectionFailed, Table: table, Err: err}
	}
	defer func() {
		if err := conn.Close(); err != nil {
			s.logger.Error("release connection", "table", table, "error", err)
		}
	}()

	rows, err := conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, &FetchError{Kind: QueryFailed, Table: table, Err: err}
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Error("close latest rows", "table", table, "error", err)
		}
	}()

	out, err := scanRows(rows)
	if err != nil {
		return nil, &FetchError{Kind: QueryFailed, Table: table, Err: err}
	}
	return out, nil
}

func (s *sqlSource) Ping(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		return &FetchError{Kind: ConnectionFailed, Err: err}
	}
	return nil
}

func (s *sqlSource) Close() error {
	return s.db.Close()
}

func scanRows(rows *sql.Rows) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(Row, len(cols))
		for i, col := range cols {
			row[col] = normalize(values[i])
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
