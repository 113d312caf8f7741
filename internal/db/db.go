package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-sql-driver/mysql"
	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/mvhdi/Weather-Station/internal/config"
)

// Open returns a *sql.DB for the sqlite3 and mysql drivers. Postgres goes
// through pgxpool in the source package and is rejected here.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (*sql.DB, error) {
	drv, dsn, err := driverFor(cfg)
	if err != nil {
		return nil, err
	}

	var db *sql.DB
	if cfg.LogSQL {
		connector, err := NewQueryLogConnector(cfg.Driver, drv, dsn, logger)
		if err != nil {
			return nil, err
		}
		db = sql.OpenDB(connector)
	} else {
		db = sql.OpenDB(dsnConnector{dsn: dsn, driver: drv})
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns >= 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.QueryTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return db, nil
}

func driverFor(cfg config.Config) (driver.Driver, string, error) {
	switch cfg.Driver {
	case "sqlite3":
		return &sqlite3.SQLiteDriver{}, buildSQLiteDSN(cfg), nil
	case "mysql":
		return &mysql.MySQLDriver{}, cfg.DSN, nil
	default:
		return nil, "", fmt.Errorf("db open: driver %q is not served by database/sql", cfg.Driver)
	}
}

// buildSQLiteDSN opens the station file read-only; the dashboard never writes.
func buildSQLiteDSN(cfg config.Config) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}

	params := []string{
		"mode=ro",
		"_busy_timeout=5000",
	}

	path := cfg.SQLitePath
	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + strings.Join(params, "&")
	}
	return fmt.Sprintf("file:%s?%s", path, strings.Join(params, "&"))
}

// dsnConnector lets sql.OpenDB use a driver value directly, so the driver
// does not have to be registered under a name.
type dsnConnector struct {
	dsn    string
	driver driver.Driver
}

func (c dsnConnector) Connect(_ context.Context) (driver.Conn, error) {
	return c.driver.Open(c.dsn)
}

func (c dsnConnector) Driver() driver.Driver {
	return c.driver
}
