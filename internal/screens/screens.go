// Package screens implements the assistant's menus and forms on top of the
// dispatcher: the main menu, feedback requests and their processing,
// reviews, invitations, mailings and statistics.
package screens

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/wayfinder/internal/logging"
	"github.com/aretw0/wayfinder/pkg/dispatch"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/form"
	"github.com/aretw0/wayfinder/pkg/navpath"
	"github.com/aretw0/wayfinder/pkg/ports"
)

// Path segments of the registered screens.
const (
	SegRoot        = "start"
	SegFeedback    = "fb"
	SegFeedbackNew = "fbn"
	SegTake        = "take"
	SegDone        = "done"
	SegRequests    = "reqs"
	SegReview      = "rv"
	SegInvite      = "inv"
	SegMailing     = "mail"
	SegStats       = "stats"
)

const (
	defaultCacheTTL    = 24 * time.Hour
	defaultConcurrency = 8
	requestsPerPage    = 5
)

var errNoIdentity = errors.New("screen requires a registered identity")

// Deps are the collaborators the screens read from and write to.
type Deps struct {
	Identities ports.IdentityStore
	Operators  ports.OperatorStore
	Invites    ports.InviteStore
	Feedback   ports.FeedbackStore
	Reviews    ports.ReviewStore
	Directory  ports.DirectoryStore
	Cache      ports.Cache
	Notifier   ports.Notifier
}

// Screens holds the handlers and form schemas.
type Screens struct {
	deps        Deps
	catalog     *catalog
	botUsername string
	loc         *time.Location
	now         func() time.Time
	concurrency int
	cacheTTL    time.Duration
	logger      *slog.Logger

	feedbackForm form.Schema
	reviewForm   form.Schema
	inviteForm   form.Schema
	mailingForm  form.Schema
}

// Option configures Screens.
type Option func(*Screens)

// WithBotUsername sets the username used to build invitation links.
func WithBotUsername(name string) Option {
	return func(s *Screens) {
		s.botUsername = name
	}
}

// WithLocation sets the time zone used for greetings, working hours and reports.
func WithLocation(loc *time.Location) Option {
	return func(s *Screens) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Screens) {
		s.now = now
	}
}

// WithMailingConcurrency bounds the number of parallel mailing deliveries.
func WithMailingConcurrency(n int) Option {
	return func(s *Screens) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithCacheTTL sets how long reference data stays cached.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Screens) {
		s.cacheTTL = ttl
	}
}

// WithLogger configures a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Screens) {
		s.logger = logger
	}
}

// New builds the screens.
func New(deps Deps, opts ...Option) *Screens {
	s := &Screens{
		deps:        deps,
		loc:         time.UTC,
		now:         time.Now,
		concurrency: defaultConcurrency,
		cacheTTL:    defaultCacheTTL,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.catalog = &catalog{
		cache:     deps.Cache,
		directory: deps.Directory,
		operators: deps.Operators,
		ttl:       s.cacheTTL,
		logger:    s.logger,
	}
	s.feedbackForm = s.feedbackSchema()
	s.reviewForm = s.reviewSchema()
	s.inviteForm = s.inviteSchema()
	s.mailingForm = s.mailingSchema()
	return s
}

// Routes returns every screen bound to its segment. Forms persist their
// sessions in forms.
func (s *Screens) Routes(forms *form.Store, opts ...form.MachineOption) []dispatch.Route {
	machine := func(schema form.Schema) *form.Machine {
		return form.NewMachine(schema, forms, opts...)
	}
	return []dispatch.Route{
		{Segment: SegRoot, EntryGate: true, Handler: s.start},
		{Segment: SegFeedback, Handler: s.feedbackMenu},
		{Segment: SegFeedbackNew, Form: machine(s.feedbackForm)},
		{Segment: SegTake, Permissions: []string{domain.PermProcessFeedback}, Handler: s.take},
		{Segment: SegDone, Permissions: []string{domain.PermProcessFeedback}, Handler: s.done},
		{Segment: SegRequests, Permissions: []string{domain.PermProcessFeedback}, Handler: s.requests},
		{Segment: SegReview, Form: machine(s.reviewForm)},
		{Segment: SegInvite, Permissions: []string{domain.PermAddUser}, Form: machine(s.inviteForm)},
		{Segment: SegMailing, Permissions: []string{domain.PermAddMailing}, Form: machine(s.mailingForm)},
		{Segment: SegStats, Permissions: []string{domain.PermGetStats}, Handler: s.stats},
	}
}

// buttons collects navigation buttons and keeps the first encoding error.
type buttons struct {
	list []domain.Button
	err  error
}

func (b *buttons) nav(label string, p navpath.Path) {
	token, err := p.Encode()
	if err != nil {
		if b.err == nil {
			b.err = fmt.Errorf("button %q: %w", label, err)
		}
		return
	}
	b.list = append(b.list, domain.Button{Label: label, Token: token})
}

func (b *buttons) link(label, url string) {
	if url != "" {
		b.list = append(b.list, domain.Button{Label: label, URL: url})
	}
}

// back adds a button to the parent of p, if there is one.
func (b *buttons) back(label string, p navpath.Path) {
	if parent, ok := p.Pop(); ok {
		b.nav(label, parent)
	}
}

func (b *buttons) take() []domain.Button {
	out := b.list
	b.list = nil
	return out
}

func root() navpath.Path {
	return navpath.Start(SegRoot)
}

func identityOf(s *form.Scope) (*domain.Identity, error) {
	if s.Identity == nil {
		return nil, errNoIdentity
	}
	return s.Identity, nil
}

func (s *Screens) notify(ctx context.Context, chatID int64, reply *domain.Reply) {
	if _, err := s.deps.Notifier.Send(ctx, chatID, reply); err != nil {
		s.logger.Warn("notification failed", "chat_id", chatID, "err", err)
	}
}
