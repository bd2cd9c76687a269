package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/aretw0/wayfinder/internal/logging"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/form"
	"github.com/aretw0/wayfinder/pkg/guard"
	"github.com/aretw0/wayfinder/pkg/navpath"
	"github.com/aretw0/wayfinder/pkg/ports"
	"github.com/aretw0/wayfinder/pkg/session"
)

// Route binds a path segment to a screen. Exactly one of Handler or Form is set.
type Route struct {
	Segment     string
	Permissions []string
	EntryGate   bool
	Handler     guard.Handler
	Form        *form.Machine
}

// Dispatcher routes events to screens.
type Dispatcher struct {
	root     string
	routes   map[string]Route
	chain    *guard.Chain
	forms    *form.Store
	notifier ports.Notifier
	sessions *session.Manager
	hooks    domain.Hooks
	logger   *slog.Logger
}

// Option configures the Dispatcher.
type Option func(*Dispatcher)

// WithSessions sets the per-identity serializer.
func WithSessions(m *session.Manager) Option {
	return func(d *Dispatcher) {
		d.sessions = m
	}
}

// WithHooks registers observability callbacks.
func WithHooks(h domain.Hooks) Option {
	return func(d *Dispatcher) {
		d.hooks = h
	}
}

// WithLogger configures a logger for the Dispatcher.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// New creates a dispatcher whose root screen is the route named root.
func New(root string, chain *guard.Chain, forms *form.Store, notifier ports.Notifier, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		root:     root,
		routes:   make(map[string]Route),
		chain:    chain,
		forms:    forms,
		notifier: notifier,
		sessions: session.NewManager(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Handle registers routes. A later registration of the same segment wins.
func (d *Dispatcher) Handle(routes ...Route) {
	for _, r := range routes {
		d.routes[r.Segment] = r
	}
}

// Segments lists the registered segments in sorted order.
func (d *Dispatcher) Segments() []string {
	segs := make([]string, 0, len(d.routes))
	for s := range d.routes {
		segs = append(segs, s)
	}
	slices.Sort(segs)
	return segs
}

// Root returns the root segment.
func (d *Dispatcher) Root() string {
	return d.root
}

// Dispatch handles one inbound event. Screen failures are contained by the
// guard chain. A rejected reply is contained the same way and answered with
// the failure notice; the returned error only reports that the notice could
// not be delivered either.
func (d *Dispatcher) Dispatch(ctx context.Context, ev domain.Event) error {
	return d.sessions.WithIdentity(ctx, ev.Sender.ExternalID, func(ctx context.Context) error {
		return d.dispatch(ctx, ev)
	})
}

func (d *Dispatcher) dispatch(ctx context.Context, ev domain.Event) error {
	path := d.resolve(ctx, ev)
	route := d.lookup(path)
	if route.Segment != path.Current() {
		path = navpath.Start(d.root)
	}
	d.inbound(ctx, ev, route)

	out := d.run(ctx, ev, path, route)
	if out.Redirect != nil {
		next := *out.Redirect
		redirected := ev
		redirected.Text = ""
		redirected.Attachment = ""
		redirected.Token = next.String()

		route = d.lookup(next)
		if route.Segment != next.Current() {
			next = navpath.Start(d.root)
		}
		out = d.run(ctx, redirected, next, route)
		if out.Redirect != nil {
			d.logger.Warn("dropping chained redirect", "from", next.String(), "to", out.Redirect.String())
		}
		path = next
	}

	err := d.deliver(ctx, ev, out.Reply)
	if err == nil {
		return nil
	}
	req := &guard.Request{Event: ev, Path: path, Route: guard.Route{Name: route.Segment}}
	notice := d.chain.Fail(ctx, req, err)
	if notice.Reply == nil {
		return err
	}
	if _, nerr := d.notifier.Send(ctx, ev.Sender.ExternalID, notice.Reply); nerr != nil {
		return errors.Join(err, fmt.Errorf("failed to deliver failure notice: %w", nerr))
	}
	return nil
}

func (d *Dispatcher) resolve(ctx context.Context, ev domain.Event) navpath.Path {
	root := navpath.Start(d.root)
	switch {
	case ev.IsTap():
		path, err := navpath.Decode(ev.Token)
		if err != nil {
			d.logger.Warn("malformed token, falling back to root", "token", ev.Token, "err", err)
			return root
		}
		if path.Root() != d.root {
			d.logger.Warn("token not rooted at the main menu, falling back to root", "token", ev.Token)
			return root
		}
		return path
	case ev.IsStart():
		return root
	}

	sess, err := d.forms.Load(ctx, ev.Sender.ExternalID)
	if err != nil {
		if !errors.Is(err, form.ErrNoSession) {
			d.logger.Warn("failed to load form session", "external_id", ev.Sender.ExternalID, "err", err)
		}
		return root
	}
	path, err := navpath.Decode(sess.Path)
	if err != nil {
		d.logger.Warn("form session holds a malformed path", "path", sess.Path, "err", err)
		return root
	}
	if path.Root() != d.root {
		return root
	}
	return path
}

func (d *Dispatcher) lookup(path navpath.Path) Route {
	if r, ok := d.routes[path.Current()]; ok {
		return r
	}
	return d.routes[d.root]
}

func (d *Dispatcher) run(ctx context.Context, ev domain.Event, path navpath.Path, route Route) guard.Outcome {
	req := &guard.Request{
		Event: ev,
		Path:  path,
		Route: guard.Route{
			Name:        route.Segment,
			Permissions: route.Permissions,
			EntryGate:   route.EntryGate,
		},
	}
	return d.chain.Run(ctx, req, d.handler(route))
}

func (d *Dispatcher) handler(route Route) guard.Handler {
	if route.Form != nil {
		machine := route.Form
		return func(ctx context.Context, req *guard.Request) (guard.Outcome, error) {
			in := form.Input{
				Sender:     req.Event.Sender,
				Identity:   req.Identity,
				Profile:    req.Profile,
				Text:       req.Event.Text,
				Attachment: req.Event.Attachment,
			}
			if req.Event.IsTap() {
				in.Text, in.Attachment = "", ""
			}
			res, err := machine.Handle(ctx, req.Path, in)
			if err != nil {
				return guard.Outcome{}, err
			}
			return guard.Outcome{Reply: res.Reply, Redirect: res.Redirect}, nil
		}
	}

	if route.Handler == nil {
		return func(ctx context.Context, req *guard.Request) (guard.Outcome, error) {
			return guard.Outcome{}, fmt.Errorf("no route registered for %q", req.Path.Current())
		}
	}
	return func(ctx context.Context, req *guard.Request) (guard.Outcome, error) {
		// Leaving for any other screen abandons the open form.
		if err := d.forms.Clear(ctx, req.ExternalID()); err != nil {
			return guard.Outcome{}, err
		}
		return route.Handler(ctx, req)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, ev domain.Event, reply *domain.Reply) error {
	if reply == nil {
		return nil
	}
	chatID := ev.Sender.ExternalID

	if editor, ok := d.notifier.(ports.Editor); ok && ev.IsTap() && ev.MessageID != 0 {
		_, err := editor.Edit(ctx, chatID, ev.MessageID, reply)
		if err == nil {
			return nil
		}
		d.logger.Debug("edit failed, sending a new message", "external_id", chatID, "err", err)
	}

	if _, err := d.notifier.Send(ctx, chatID, reply); err != nil {
		return fmt.Errorf("failed to deliver reply: %w", err)
	}
	return nil
}

func (d *Dispatcher) inbound(ctx context.Context, ev domain.Event, route Route) {
	d.logger.Debug("inbound event", "external_id", ev.Sender.ExternalID, "route", route.Segment, "tap", ev.IsTap())
	if d.hooks.OnInbound == nil {
		return
	}
	d.hooks.OnInbound(ctx, &domain.InboundEvent{
		EventBase: domain.EventBase{
			Timestamp:  time.Now(),
			Type:       domain.EventInbound,
			ExternalID: ev.Sender.ExternalID,
		},
		Route: route.Segment,
		Tap:   ev.IsTap(),
	})
}
