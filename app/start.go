package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// Start runs the queue service and the admin HTTP server until ctx is
// cancelled, then shuts both down.
func (app *App) Start(ctx context.Context) error {
	logger := app.Obs.Logger

	if err := app.Queue.Start(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    app.Cfg.HTTP.Addr,
		Handler: app.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Admin HTTP server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", slog.Any("error", err))
	}
	app.Close(shutdownCtx)

	return nil
}
