package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	// StaticDir is the absolute path to the directory served at /static/.
	// Set via STATIC_DIR (relative paths are resolved against the process working directory at startup).
	StaticDir string

	// CatalogDir is the root that catalog source ids (e.g. "nowPage/windTable.ini") are resolved against.
	CatalogDir string
	PagesFile  string

	Driver          string
	DSN             string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	QueryTimeout    time.Duration
	LogSQL          bool
}

// LoadFromEnv reads configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment variables win.
func LoadFromEnv() (Config, error) {
	_ = godotenv.Load() // ignore missing file

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	httpAddr := strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	staticDir, err := absDirFromEnv("STATIC_DIR", "static")
	if err != nil {
		return Config{}, err
	}
	catalogDir, err := absDirFromEnv("CATALOG_DIR", "configs/catalogs")
	if err != nil {
		return Config{}, err
	}

	pagesFile := strings.TrimSpace(os.Getenv("PAGES_FILE"))
	if pagesFile == "" {
		pagesFile = "configs/pages.yaml"
	}

	driver := strings.TrimSpace(os.Getenv("DB_DRIVER"))
	if driver == "" {
		driver = "sqlite3"
	}
	switch driver {
	case "sqlite3", "mysql", "postgres":
	default:
		return Config{}, fmt.Errorf("invalid DB_DRIVER %q (allowed: sqlite3, mysql, postgres)", driver)
	}

	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	if dsn == "" && driver != "sqlite3" {
		return Config{}, fmt.Errorf("DB_DSN is required for DB_DRIVER %q", driver)
	}

	sqlitePath := strings.TrimSpace(os.Getenv("SQLITE_PATH"))
	if sqlitePath == "" {
		sqlitePath = "dev/sqlite/station.db"
	}

	maxOpenConns, err := intFromEnv("DB_MAX_OPEN_CONNS", 4)
	if err != nil {
		return Config{}, err
	}
	maxIdleConns, err := intFromEnv("DB_MAX_IDLE_CONNS", 2)
	if err != nil {
		return Config{}, err
	}
	connMaxLifetime, err := durationFromEnv("DB_CONN_MAX_LIFETIME", "0s")
	if err != nil {
		return Config{}, err
	}
	queryTimeout, err := durationFromEnv("DB_QUERY_TIMEOUT", "5s")
	if err != nil {
		return Config{}, err
	}
	if queryTimeout <= 0 {
		return Config{}, fmt.Errorf("invalid DB_QUERY_TIMEOUT %q: must be > 0", os.Getenv("DB_QUERY_TIMEOUT"))
	}

	logSQL := false
	if s := strings.TrimSpace(os.Getenv("DB_LOG_SQL")); s != "" {
		logSQL, err = strconv.ParseBool(s)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DB_LOG_SQL %q: %w", s, err)
		}
	}

	return Config{
		AppEnv:          appEnv,
		LogLevel:        level,
		HTTPAddr:        httpAddr,
		StaticDir:       staticDir,
		CatalogDir:      catalogDir,
		PagesFile:       pagesFile,
		Driver:          driver,
		DSN:             dsn,
		SQLitePath:      sqlitePath,
		MaxOpenConns:    maxOpenConns,
		MaxIdleConns:    maxIdleConns,
		ConnMaxLifetime: connMaxLifetime,
		QueryTimeout:    queryTimeout,
		LogSQL:          logSQL,
	}, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

func absDirFromEnv(name, def string) (string, error) {
	dir := strings.TrimSpace(os.Getenv(name))
	if dir == "" {
		dir = def
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%s %q: %w", name, dir, err)
	}
	return abs, nil
}

func intFromEnv(name string, def int) (int, error) {
	s := strings.TrimSpace(os.Getenv(name))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return n, nil
}

func durationFromEnv(name, def string) (time.Duration, error) {
	s := strings.TrimSpace(os.Getenv(name))
	if s == "" {
		s = def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return d, nil
}
