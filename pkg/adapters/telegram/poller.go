package telegram

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/wayfinder/internal/logging"
)

// UpdateSource fetches updates by long polling. *Client satisfies it.
type UpdateSource interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error)
}

// Poller receives updates through getUpdates and dispatches them in order.
type Poller struct {
	source   UpdateSource
	handler  EventHandler
	answerer CallbackAnswerer
	timeout  time.Duration
	backoff  time.Duration
	logger   *slog.Logger
}

// PollerOption configures the Poller.
type PollerOption func(*Poller)

// WithPollTimeout sets the long-poll timeout sent to the API. Default 30s.
func WithPollTimeout(d time.Duration) PollerOption {
	return func(p *Poller) {
		p.timeout = d
	}
}

// WithBackoff sets the pause after a failed poll. Default 3s.
func WithBackoff(d time.Duration) PollerOption {
	return func(p *Poller) {
		p.backoff = d
	}
}

// WithPollAnswerer acknowledges callback queries after they are dispatched.
func WithPollAnswerer(a CallbackAnswerer) PollerOption {
	return func(p *Poller) {
		p.answerer = a
	}
}

// WithPollLogger configures a logger for the Poller.
func WithPollLogger(logger *slog.Logger) PollerOption {
	return func(p *Poller) {
		p.logger = logger
	}
}

// NewPoller creates a poller reading from source.
func NewPoller(source UpdateSource, handler EventHandler, opts ...PollerOption) *Poller {
	p := &Poller{
		source:  source,
		handler: handler,
		timeout: 30 * time.Second,
		backoff: 3 * time.Second,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run polls until ctx is cancelled. It returns nil on cancellation.
func (p *Poller) Run(ctx context.Context) error {
	var offset int64
	for {
		updates, err := p.source.GetUpdates(ctx, offset, p.timeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.Code == 409 {
				// A webhook is set or another poller is running.
				return err
			}
			p.logger.Warn("poll failed, backing off", "err", err, "backoff", p.backoff)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(p.backoff):
			}
			continue
		}

		for _, u := range updates {
			handle(ctx, u, p.handler, p.answerer, p.logger)
			offset = u.UpdateID + 1
		}
	}
}
