package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/config"
	"github.com/MrJamesThe3rd/invoicer/internal/database"
	"github.com/MrJamesThe3rd/invoicer/internal/export"
	invoicerHttp "github.com/MrJamesThe3rd/invoicer/internal/http"
	invoiceHandler "github.com/MrJamesThe3rd/invoicer/internal/http/invoice"
	templateHandler "github.com/MrJamesThe3rd/invoicer/internal/http/savedtemplate"
	"github.com/MrJamesThe3rd/invoicer/internal/importer"
	"github.com/MrJamesThe3rd/invoicer/internal/render"
	"github.com/MrJamesThe3rd/invoicer/internal/savedtemplate"
	"github.com/MrJamesThe3rd/invoicer/internal/savedtemplate/memstore"
	templateStore "github.com/MrJamesThe3rd/invoicer/internal/savedtemplate/store"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	if cfg.Auth.Secret == "" {
		slog.Warn("AUTH_JWT_SECRET is empty; template endpoints will reject every request")
	}

	repo, closeRepo, err := templateRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	var sheets []render.Stylesheet
	if cfg.Export.FontCSS != "" {
		sheets = append(sheets, render.NewRemoteStylesheet(cfg.Export.FontCSS))
	}

	renderer, err := render.NewRenderer(sheets...)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	exportService, err := export.NewService(export.Config{
		SettleDelay: cfg.Export.SettleDelay,
		Scale:       cfg.Export.Scale,
	}, nil)
	if err != nil {
		return fmt.Errorf("creating export service: %w", err)
	}

	var (
		verifier        = auth.NewVerifier(cfg.Auth.Secret, cfg.Auth.Issuer)
		templateService = savedtemplate.NewService(repo)
		importService   = importer.NewService()
	)

	router := invoicerHttp.New(
		invoicerHttp.Options{AllowedOrigins: cfg.Server.AllowedOrigins, Timeout: cfg.Server.Timeout},
		invoiceHandler.NewHandler(renderer, exportService, importService),
		templateHandler.NewHandler(templateService, verifier),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout + 5*time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "app", cfg.App.Name, "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func templateRepository(ctx context.Context, cfg *config.Config) (savedtemplate.Repository, func(), error) {
	if cfg.Templates.Store == config.StoreMemory {
		slog.Info("using in-memory template store")
		return memstore.New(), func() {}, nil
	}

	if err := database.Migrate(ctx, cfg.ConnectionString()); err != nil {
		return nil, nil, fmt.Errorf("migrating database: %w", err)
	}

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}

	return templateStore.New(db), func() { db.Close() }, nil
}
