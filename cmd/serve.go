package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/sablecliff/accountd/internal/server"
)

// Serve constructs the store once and runs the webhook consumer and lookup
// API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	host := config.Server.Host
	if cmd.String("host") != "" {
		host = cmd.String("host")
	}
	port := config.Server.Port
	if cmd.Int("port") != 0 {
		port = cmd.Int("port")
	}

	db, users, err := r.openStore(config)
	if err != nil {
		return err
	}
	defer db.Close()

	handlers := []server.Handler{
		server.NewWebhookHandler(users, r.logger, config.Billing.WebhookSecret),
		server.NewUsersHandler(users, r.logger),
		server.NewHealthHandler(db),
	}
	router := server.NewRouter(handlers, r.logger, config.Server.WebhookRateLimit, config.Server.WebhookRateBurst)

	addr := fmt.Sprintf("%s:%d", host, port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("listening", "addr", addr, "database", config.DatabasePath())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	r.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	return nil
}
