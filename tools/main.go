package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mvhdi/Weather-Station/tools/lint"
	"github.com/mvhdi/Weather-Station/tools/migrate"
)

const usage = `usage: %s <command>
  migrate  create and seed the development SQLite station database (SQLITE_PATH)
  lint     check PAGES_FILE and every catalog it references under CATALOG_DIR
`

func main() {
	_ = godotenv.Load()
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelInfo})))

	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, usage, os.Args[0])
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "migrate":
		err = runMigrate(ctx)
	case "lint":
		err = runLint()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		fmt.Fprintf(os.Stderr, usage, os.Args[0])
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func runMigrate(ctx context.Context) error {
	dbPath := envOr("SQLITE_PATH", "dev/sqlite/station.db")
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return err
	}
	conn, err := open(dbPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			slog.Error("db close", "err", closeErr)
		}
	}()

	if err := migrate.Run(ctx, conn); err != nil {
		return err
	}
	fmt.Println("migrations applied")
	return nil
}

func runLint() error {
	pages := envOr("PAGES_FILE", "configs/pages.yaml")
	catalogDir := envOr("CATALOG_DIR", "configs/catalogs")

	rep, err := lint.Run(pages, os.DirFS(catalogDir))
	if err != nil {
		return err
	}
	fmt.Printf("%d pages, %d catalogs, %d fields: ok\n", rep.Pages, len(rep.Catalogs), rep.Fields)
	return nil
}

func envOr(name, def string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return def
}

// open opens the station file read-write; the dashboard itself only reads.
func open(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", buildDSN(filepath.Clean(dbPath)))
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func buildDSN(dbPath string) string {
	params := []string{
		"_busy_timeout=5000",
		"_journal_mode=WAL",
	}

	if strings.HasPrefix(dbPath, "file:") {
		sep := "?"
		if strings.Contains(dbPath, "?") {
			sep = "&"
		}
		return dbPath + sep + strings.Join(params, "&")
	}

	return fmt.Sprintf("file:%s?%s", dbPath, strings.Join(params, "&"))
}
