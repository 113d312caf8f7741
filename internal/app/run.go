package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/mvhdi/Weather-Station/internal/config"
	"github.com/mvhdi/Weather-Station/internal/httpapi"
	"github.com/mvhdi/Weather-Station/internal/modules/dashboard"
	"github.com/mvhdi/Weather-Station/internal/modules/dashboard/catalog"
	"github.com/mvhdi/Weather-Station/internal/modules/dashboard/compose"
	dashboardviews "github.com/mvhdi/Weather-Station/internal/modules/dashboard/views"
	"github.com/mvhdi/Weather-Station/internal/source"
)

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"staticDir", cfg.StaticDir,
		"catalogDir", cfg.CatalogDir,
		"pagesFile", cfg.PagesFile,
		"driver", cfg.Driver,
		"sqlitePath", cfg.SQLitePath,
		"maxOpenConns", cfg.MaxOpenConns,
		"maxIdleConns", cfg.MaxIdleConns,
		"connMaxLifetime", cfg.ConnMaxLifetime,
		"queryTimeout", cfg.QueryTimeout,
		"logSQL", cfg.LogSQL,
	)

	layout, err := compose.LoadLayout(cfg.PagesFile)
	if err != nil {
		return err
	}
	slog.Info("page layout loaded", "pages", len(layout.Pages))

	if info, err := os.Stat(cfg.CatalogDir); err != nil || !info.IsDir() {
		return fmt.Errorf("catalog dir %q is not a directory", cfg.CatalogDir)
	}

	fetcher, err := source.Open(ctx, cfg, slog.Default())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := fetcher.Close(); closeErr != nil {
			slog.Error("db close", "error", closeErr)
		}
	}()
	slog.Info("database connection successful", "driver", cfg.Driver)

	if err := dashboardviews.LoadTemplates(); err != nil {
		return err
	}

	catalogs := catalog.NewLoader(os.DirFS(cfg.CatalogDir))
	mux := httpapi.NewMux(fetcher, cfg.StaticDir)
	dashboard.RegisterFeature(mux, layout, fetcher, catalogs, slog.Default())

	srv := httpapi.NewServer(cfg, mux)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}
