package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/ai-tarot/internal/domain/account"
	"github.com/yanqian/ai-tarot/internal/domain/reading"
	"github.com/yanqian/ai-tarot/internal/infra/config"
)

// App encapsulates the HTTP server lifecycle.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	server   *http.Server
	accounts account.Service
	readings reading.Controller
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, accounts account.Service, readings reading.Controller) *App {
	return &App{
		cfg:      cfg,
		logger:   logger.With("component", "bootstrap"),
		server:   server,
		accounts: accounts,
		readings: readings,
	}
}

// Run restores the stored login, starts the HTTP server and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	restoreCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	status, err := a.accounts.Restore(restoreCtx)
	cancel()
	if err != nil {
		a.logger.Warn("restore session failed", "error", err)
	} else {
		a.logger.Info("session restored", "authenticated", status.Authenticated)
	}

	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address, "backend", a.cfg.Backend.BaseURL)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.logger.Info("shutdown signal received")
		a.readings.Reset()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		a.readings.Reset()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
