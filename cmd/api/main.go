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

	"github.com/MrJamesThe3rd/conta/internal/config"
	contaHttp "github.com/MrJamesThe3rd/conta/internal/http"
	accountHandler "github.com/MrJamesThe3rd/conta/internal/http/account"
	"github.com/MrJamesThe3rd/conta/internal/importer"
	"github.com/MrJamesThe3rd/conta/internal/ledger"
	"github.com/MrJamesThe3rd/conta/internal/logging"
	"github.com/MrJamesThe3rd/conta/internal/statement"
	"github.com/MrJamesThe3rd/conta/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		slog.Error("failed to build logger", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	store, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	var (
		engine = ledger.NewEngine(store.Accounts, store.Transactions,
			ledger.WithLogger(logger),
			ledger.WithMaxRetries(cfg.Ledger.MaxRetries),
		)
		query = ledger.NewQuery(store.Accounts, store.Transactions)
	)

	accountsH := accountHandler.NewHandler(
		engine,
		query,
		statement.NewService(query),
		importer.NewService(engine),
	)

	router := contaHttp.New(contaHttp.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Timeout:        cfg.Server.Timeout,
	}, accountsH)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "app", cfg.App.Name, "addr", srv.Addr, "storage", cfg.Ledger.Storage)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	return nil
}
