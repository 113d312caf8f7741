package source

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type pgxSource struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewPostgres wraps a pgx pool.
func NewPostgres(pool *pgxpool.Pool, timeout time.Duration) Fetcher {
	return &pgxSource{pool: pool, timeout: timeout}
}

func (s *pgxSource) Fetch(ctx context.Context, table string, limit int) ([]Row, error) {
	query, err := postgresDialect.latestQuery(table, limit)
	if err != nil {
		return nil, &FetchError{Kind: QueryFailed, Table: table, Err: err}
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, &FetchError{Kind: ConnectionFailed, Table: table, Err: err}
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, limit)
	if err != nil {
		return nil, &FetchError{Kind: QueryFailed, Table: table, Err: err}
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var out []Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, &FetchError{Kind: QueryFailed, Table: table, Err: err}
		}
		row := make(Row, len(fields))
		for i, f := range fields {
			row[f.Name] = normalize(values[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &FetchError{Kind: QueryFailed, Table: table, Err: err}
	}
	return out, nil
}

func (s *pgxSource) Ping(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.pool.Ping(ctx); err != nil {
		return &FetchError{Kind: ConnectionFailed, Err: err}
	}
	return nil
}

func (s *pgxSource) Close() error {
	s.pool.Close()
	return nil
}
