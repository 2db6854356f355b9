package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"mockmate/internal/config"
)

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}

	if err := a.sweeper.Start(); err != nil {
		a.close(context.Background())
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := a.server()
	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("mockmate server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			a.logger.Error("failed to start server", zap.Error(err))
			a.close(context.Background())
			return err
		}
	case <-ctx.Done():
	}

	a.logger.Info("mockmate server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	// sessions close first so in-flight evaluations stop holding requests open
	a.registry.CloseAll()
	err = server.Shutdown(shutdownCtx)
	if err != nil {
		a.logger.Error("server forced to shutdown", zap.Error(err))
	}
	a.close(shutdownCtx)
	a.logger.Info("mockmate server exited")
	return err
}
