package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/wayfinder/pkg/adapters/telegram"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Receive chat updates through a webhook",
	Long: `Starts the HTTP server (POST /webhook, GET /healthz, GET /metrics) and
registers WEBHOOK_URL with the chat platform.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()
		s := a.settings
		if err := s.RequireWebhook(); err != nil {
			return err
		}

		client := telegram.NewClient(s.BotToken, telegram.WithClientLogger(a.logger))
		d := a.dispatcher(client)

		handler := telegram.NewWebhook(d,
			telegram.WithSecret(s.WebhookSecret),
			telegram.WithAnswerer(client),
			telegram.WithMetricsHandler(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})),
			telegram.WithHealthCheck(a.healthy),
			telegram.WithLogger(a.logger),
		)
		srv := &http.Server{
			Addr:              s.HTTPAddr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		serverErrors := make(chan error, 1)
		go func() {
			a.logger.Info("listening", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		if err := client.SetWebhook(ctx, s.WebhookURL, s.WebhookSecret); err != nil {
			_ = srv.Close()
			return fmt.Errorf("failed to register webhook: %w", err)
		}
		a.logger.Info("webhook registered", "url", s.WebhookURL)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			a.logger.Info("shutting down")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			return srv.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
