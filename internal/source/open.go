package source

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mvhdi/Weather-Station/internal/config"
	"github.com/mvhdi/Weather-Station/internal/db"
)

// opener connects one engine and returns a ready Fetcher.
type opener func(ctx context.Context, cfg config.Config, logger *slog.Logger) (Fetcher, error)

var openers = map[string]opener{
	"mysql":    openSQL(NewMySQL),
	"sqlite3":  openSQL(NewSQLite),
	"postgres": openPostgres,
}

// Open connects to the engine named by cfg.Driver and checks it answers.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (Fetcher, error) {
	open, ok := openers[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("unknown database driver %q (available: %v)", cfg.Driver, Drivers())
	}
	return open(ctx, cfg, logger)
}

// Drivers lists the supported DB_DRIVER values.
func Drivers() []string {
	out := make([]string, 0, len(openers))
	for name := range openers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func openSQL(wrap func(*sql.DB, time.Duration, *slog.Logger) Fetcher) opener {
	return func(ctx context.Context, cfg config.Config, logger *slog.Logger) (Fetcher, error) {
		conn, err := db.Open(ctx, cfg, logger)
		if err != nil {
			return nil, &FetchError{Kind: ConnectionFailed, Err: err}
		}
		return wrap(conn, cfg.QueryTimeout, logger), nil
	}
}

func openPostgres(ctx context.Context, cfg config.Config, _ *slog.Logger) (Fetcher, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, &FetchError{Kind: ConnectionFailed, Err: err}
	}
	src := NewPostgres(pool, cfg.QueryTimeout)
	if err := src.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return src, nil
}
