package guard

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/aretw0/wayfinder/internal/logging"
	"github.com/aretw0/wayfinder/pkg/domain"
)

// DefaultFailureNotice is sent when a request fails unexpectedly.
const DefaultFailureNotice = "Something went wrong. Please try again later."

type named struct {
	name string
	fn   Func
}

// Chain runs guards in order, then the handler, inside a containment layer.
type Chain struct {
	guards  []named
	logger  *slog.Logger
	hooks   domain.Hooks
	failure string
}

// Option configures a Chain.
type Option func(*Chain)

// WithLogger configures a logger for contained failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chain) {
		c.logger = logger
	}
}

// WithHooks registers observability callbacks.
func WithHooks(h domain.Hooks) Option {
	return func(c *Chain) {
		c.hooks = h
	}
}

// WithFailureNotice overrides the generic failure text.
func WithFailureNotice(text string) Option {
	return func(c *Chain) {
		c.failure = text
	}
}

// NewChain creates an empty chain.
func NewChain(opts ...Option) *Chain {
	c := &Chain{
		logger:  logging.NewNop(),
		failure: DefaultFailureNotice,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Use appends a guard. Guards run in the order they were added.
func (c *Chain) Use(name string, fn Func) *Chain {
	c.guards = append(c.guards, named{name: name, fn: fn})
	return c
}

// Names lists the guards in execution order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.guards))
	for i, g := range c.guards {
		names[i] = g.name
	}
	return names
}

// Run executes the chain. It never returns an error and never panics:
// failures are logged and answered with the failure notice. An open form
// session is left untouched so the user can resume after the error.
func (c *Chain) Run(ctx context.Context, req *Request, h Handler) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("panic while handling event",
				"route", req.Route.Name,
				"external_id", req.ExternalID(),
				"panic", r,
				"stack", string(debug.Stack()),
			)
			out = c.contain(ctx, req, fmt.Errorf("panic: %v", r))
		}
	}()

	for _, g := range c.guards {
		decision, err := g.fn(ctx, req)
		if err != nil {
			return c.contain(ctx, req, fmt.Errorf("guard %s: %w", g.name, err))
		}
		c.decided(ctx, req, g.name, decision.Proceed)
		if !decision.Proceed {
			return Outcome{Reply: decision.Response}
		}
	}

	out, err := h(ctx, req)
	if err != nil {
		return c.contain(ctx, req, err)
	}
	return out
}

// Fail contains an error raised after Run returned, such as a rejected
// delivery. The returned reply carries no keyboard.
func (c *Chain) Fail(ctx context.Context, req *Request, err error) Outcome {
	return c.contain(ctx, req, err)
}

func (c *Chain) contain(ctx context.Context, req *Request, err error) Outcome {
	c.logger.Error("unexpected error while handling event",
		"route", req.Route.Name,
		"path", req.Path.String(),
		"external_id", req.ExternalID(),
		"err", err,
	)
	if c.hooks.OnFailure != nil {
		c.hooks.OnFailure(ctx, &domain.FailureEvent{
			EventBase: c.base(domain.EventFailure, req),
			Route:     req.Route.Name,
			Err:       err,
		})
	}
	if req.ExternalID() == 0 {
		return Outcome{}
	}
	return Outcome{Reply: domain.NewReply(c.failure)}
}

func (c *Chain) decided(ctx context.Context, req *Request, name string, proceed bool) {
	if !proceed {
		c.logger.Debug("guard stopped request", "guard", name, "route", req.Route.Name, "external_id", req.ExternalID())
	}
	if c.hooks.OnGuardDecision == nil {
		return
	}
	c.hooks.OnGuardDecision(ctx, &domain.GuardEvent{
		EventBase: c.base(domain.EventGuardDecision, req),
		Guard:     name,
		Route:     req.Route.Name,
		Proceed:   proceed,
	})
}

func (c *Chain) base(t domain.EventType, req *Request) domain.EventBase {
	return domain.EventBase{
		Timestamp:  time.Now(),
		Type:       t,
		ExternalID: req.ExternalID(),
	}
}
