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
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Receive chat updates through long polling",
	Long: `Removes any registered webhook and fetches updates with getUpdates.
Metrics and health stay available on HTTP_ADDR.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()
		s := a.settings
		if err := s.RequireBot(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		client := telegram.NewClient(s.BotToken, telegram.WithClientLogger(a.logger))
		if err := client.DeleteWebhook(ctx); err != nil {
			return fmt.Errorf("failed to remove webhook: %w", err)
		}
		me, err := client.GetMe(ctx)
		if err != nil {
			return fmt.Errorf("failed to identify bot: %w", err)
		}
		a.logger.Info("polling updates", "bot", me.Username)

		poller := telegram.NewPoller(client, a.dispatcher(client),
			telegram.WithPollAnswerer(client),
			telegram.WithPollLogger(a.logger),
		)

		r := chi.NewRouter()
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			if err := a.healthy(r.Context()); err != nil {
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte("ok"))
		})
		srv := &http.Server{Addr: s.HTTPAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
		g.Go(func() error {
			return poller.Run(gctx)
		})
		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(pollCmd)
}
