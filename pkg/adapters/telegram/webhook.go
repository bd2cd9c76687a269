package telegram

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/aretw0/wayfinder/internal/logging"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// SecretHeader carries the webhook secret set with SetWebhook.
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// EventHandler consumes inbound events. *dispatch.Dispatcher satisfies it.
type EventHandler interface {
	Dispatch(ctx context.Context, ev domain.Event) error
}

// CallbackAnswerer acknowledges button taps. *Client satisfies it.
type CallbackAnswerer interface {
	AnswerCallback(ctx context.Context, callbackID string) error
}

type webhook struct {
	handler  EventHandler
	answerer CallbackAnswerer
	secret   string
	metrics  http.Handler
	health   func(context.Context) error
	logger   *slog.Logger
}

// WebhookOption configures the webhook router.
type WebhookOption func(*webhook)

// WithSecret requires every update request to carry secret in SecretHeader.
func WithSecret(secret string) WebhookOption {
	return func(w *webhook) {
		w.secret = secret
	}
}

// WithAnswerer acknowledges callback queries after they are dispatched.
func WithAnswerer(a CallbackAnswerer) WebhookOption {
	return func(w *webhook) {
		w.answerer = a
	}
}

// WithMetricsHandler mounts h on GET /metrics.
func WithMetricsHandler(h http.Handler) WebhookOption {
	return func(w *webhook) {
		w.metrics = h
	}
}

// WithHealthCheck makes GET /healthz report 503 when check fails.
func WithHealthCheck(check func(context.Context) error) WebhookOption {
	return func(w *webhook) {
		w.health = check
	}
}

// WithLogger configures a logger for the webhook and poller.
func WithLogger(logger *slog.Logger) WebhookOption {
	return func(w *webhook) {
		w.logger = logger
	}
}

// NewWebhook returns the HTTP surface of the bot: POST /webhook receives
// updates, GET /healthz reports liveness and GET /metrics (when configured)
// exposes Prometheus metrics.
func NewWebhook(handler EventHandler, opts ...WebhookOption) http.Handler {
	w := &webhook{handler: handler, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(w)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post("/webhook", w.receive)
	r.Get("/healthz", w.healthz)
	if w.metrics != nil {
		r.Method(http.MethodGet, "/metrics", w.metrics)
	}
	return r
}

func (w *webhook) receive(rw http.ResponseWriter, r *http.Request) {
	if w.secret != "" {
		got := r.Header.Get(SecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(w.secret)) != 1 {
			http.Error(rw, "forbidden", http.StatusForbidden)
			w.logger.Warn("webhook: rejected update with bad secret", "remote", r.RemoteAddr)
			return
		}
	}

	var u Update
	if err := json.NewDecoder(http.MaxBytesReader(rw, r.Body, 1<<20)).Decode(&u); err != nil {
		http.Error(rw, "invalid update", http.StatusBadRequest)
		w.logger.Warn("webhook: invalid update body", "err", err)
		return
	}

	// Telegram retries non-2xx responses; failures past this point are
	// logged and acknowledged.
	handle(r.Context(), u, w.handler, w.answerer, w.logger)
	rw.WriteHeader(http.StatusOK)
}

func (w *webhook) healthz(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "application/json")
	if w.health != nil {
		if err := w.health(r.Context()); err != nil {
			w.logger.Warn("health check failed", "err", err)
			rw.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(rw).Encode(map[string]string{"status": "unavailable"})
			return
		}
	}
	json.NewEncoder(rw).Encode(map[string]string{"status": "ok"})
}

// handle dispatches one update and acknowledges the tap, if any.
func handle(ctx context.Context, u Update, h EventHandler, a CallbackAnswerer, logger *slog.Logger) {
	ev, ok := u.Event()
	if !ok {
		logger.Debug("ignoring update", "update_id", u.UpdateID)
		return
	}
	if err := h.Dispatch(ctx, ev); err != nil {
		logger.Error("failed to dispatch update", "update_id", u.UpdateID, "external_id", ev.Sender.ExternalID, "err", err)
	}
	if a != nil && ev.CallbackID != "" {
		if err := a.AnswerCallback(ctx, ev.CallbackID); err != nil {
			logger.Debug("failed to answer callback", "update_id", u.UpdateID, "err", err)
		}
	}
}
