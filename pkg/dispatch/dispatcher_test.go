package dispatch_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/wayfinder/pkg/adapters/memory"
	"github.com/aretw0/wayfinder/pkg/dispatch"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/form"
	"github.com/aretw0/wayfinder/pkg/guard"
	"github.com/aretw0/wayfinder/pkg/navpath"
	"github.com/aretw0/wayfinder/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const user = 7

type harness struct {
	d        *dispatch.Dispatcher
	outbox   *memory.Outbox
	forms    *form.Store
	records  *memory.Records
	routes   []string
	failures []string
	commits  int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	outbox := memory.NewOutbox()
	return newHarnessWith(t, outbox, outbox)
}

// newHarnessWith routes replies through notifier while outbox records what
// actually reached the user.
func newHarnessWith(t *testing.T, outbox *memory.Outbox, notifier ports.Notifier) *harness {
	t.Helper()
	h := &harness{
		outbox:  outbox,
		forms:   form.NewStore(memory.NewCache()),
		records: memory.NewRecords(),
	}
	_, err := h.records.CreateIdentity(context.Background(), user, domain.IdentityAttrs{})
	require.NoError(t, err)

	chain := guard.NewChain(guard.WithHooks(domain.Hooks{
		OnFailure: func(ctx context.Context, e *domain.FailureEvent) { h.failures = append(h.failures, e.Route) },
	})).
		Use("entry_gate", guard.EntryGate(h.records, h.records, nil)).
		Use("access", guard.Access(h.records, h.records, h.forms))

	h.d = dispatch.New("start", chain, h.forms, notifier, dispatch.WithHooks(domain.Hooks{
		OnInbound: func(ctx context.Context, e *domain.InboundEvent) { h.routes = append(h.routes, e.Route) },
	}))

	notes := form.NewMachine(form.Schema{
		Kind:   "notes",
		Title:  "Note",
		Fields: []form.Field{{Name: "text", Title: "Text", Prompt: form.Ask("Type a note"), Capture: form.Text(1, 50, "Too long.")}},
		Commit: func(ctx context.Context, s *form.Scope) (*domain.Reply, error) {
			h.commits++
			return domain.NewReply("Saved"), nil
		},
	}, h.forms)

	h.d.Handle(
		dispatch.Route{
			Segment:   "start",
			EntryGate: true,
			Handler: func(ctx context.Context, req *guard.Request) (guard.Outcome, error) {
				return guard.Outcome{Reply: domain.NewReply("Main menu").
					Row(domain.Button{Label: "Notes", Token: req.Path.Push("notes").MustEncode()})}, nil
			},
		},
		dispatch.Route{Segment: "notes", Form: notes},
		dispatch.Route{
			Segment:     "admin",
			Permissions: []string{domain.PermAddUser},
			Handler: func(ctx context.Context, req *guard.Request) (guard.Outcome, error) {
				return guard.Outcome{Reply: domain.NewReply("Admin")}, nil
			},
		},
		dispatch.Route{
			Segment: "broken",
			Handler: func(ctx context.Context, req *guard.Request) (guard.Outcome, error) {
				return guard.Outcome{}, errors.New("boom")
			},
		},
		dispatch.Route{
			Segment: "about",
			Handler: func(ctx context.Context, req *guard.Request) (guard.Outcome, error) {
				return guard.Outcome{Reply: domain.NewReply("About")}, nil
			},
		},
	)
	return h
}

func tap(token string) domain.Event {
	return domain.Event{Sender: domain.Sender{ExternalID: user}, Token: token, MessageID: 99}
}

func text(s string) domain.Event {
	return domain.Event{Sender: domain.Sender{ExternalID: user}, Text: s}
}

func (h *harness) last(t *testing.T) memory.Delivery {
	t.Helper()
	d, ok := h.outbox.Last()
	require.True(t, ok, "expected a delivery")
	return d
}

func (h *harness) hasForm(t *testing.T) bool {
	t.Helper()
	_, err := h.forms.Load(context.Background(), user)
	if errors.Is(err, form.ErrNoSession) {
		return false
	}
	require.NoError(t, err)
	return true
}

func TestDispatch_StartRendersRoot(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.d.Dispatch(context.Background(), text("/start")))

	d := h.last(t)
	assert.Equal(t, "Main menu", d.Reply.Text)
	assert.False(t, d.Edited)
	assert.Equal(t, "start/notes/", d.Reply.Keyboard[0][0].Token)
	assert.Equal(t, []string{"start"}, h.routes)
}

func TestDispatch_MalformedOrUnknownTokenFallsBackToRoot(t *testing.T) {
	for _, token := range []string{"garbage", "start/nowhere/", "start/?a", "start/about/?page=2/x", "about/", "notes/"} {
		t.Run(token, func(t *testing.T) {
			h := newHarness(t)
			require.NoError(t, h.d.Dispatch(context.Background(), tap(token)))
			assert.Equal(t, "Main menu", h.last(t).Reply.Text)
		})
	}
}

func TestDispatch_TapEditsInPlace(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.d.Dispatch(context.Background(), tap("start/about/")))

	d := h.last(t)
	assert.Equal(t, "About", d.Reply.Text)
	assert.True(t, d.Edited)
	assert.Equal(t, 99, d.MessageID)
}

func TestDispatch_FreeTextReachesOpenForm(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.d.Dispatch(ctx, tap("start/notes/")))
	assert.Contains(t, h.last(t).Reply.Text, "Type a note")

	require.NoError(t, h.d.Dispatch(ctx, text("buy oil")))
	assert.Contains(t, h.last(t).Reply.Text, "Text: buy oil")

	require.NoError(t, h.d.Dispatch(ctx, tap("start/notes/?op=ok&s=c")))
	assert.Equal(t, "Saved", h.last(t).Reply.Text)
	assert.Equal(t, 1, h.commits)
	assert.False(t, h.hasForm(t))
}

func TestDispatch_FreeTextWithoutFormShowsRoot(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.d.Dispatch(context.Background(), text("hello")))
	assert.Equal(t, "Main menu", h.last(t).Reply.Text)
}

func TestDispatch_OtherScreenAbandonsForm(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.d.Dispatch(ctx, tap("start/notes/")))
	require.True(t, h.hasForm(t))

	require.NoError(t, h.d.Dispatch(ctx, tap("start/about/")))
	assert.False(t, h.hasForm(t))
}

func TestDispatch_CancelRendersParent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.d.Dispatch(ctx, tap("start/notes/")))
	require.NoError(t, h.d.Dispatch(ctx, tap("start/notes/?op=cancel")))

	d := h.last(t)
	assert.Equal(t, "Main menu", d.Reply.Text)
	assert.True(t, d.Edited)
	assert.False(t, h.hasForm(t))
}

func TestDispatch_DeniedRouteClearsForm(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.d.Dispatch(ctx, tap("start/notes/")))
	require.NoError(t, h.d.Dispatch(ctx, tap("start/admin/")))

	assert.Equal(t, guard.DefaultDeniedNotice, h.last(t).Reply.Text)
	assert.False(t, h.hasForm(t))
}

func TestDispatch_FailureKeepsForm(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.d.Dispatch(ctx, tap("start/notes/")))

	failing := form.NewMachine(form.Schema{
		Kind:  "notes",
		Title: "Note",
		Fields: []form.Field{{Name: "text", Capture: func(ctx context.Context, s *form.Scope, a form.Answer) (form.Entry, error) {
			return form.Entry{}, errors.New("disk full")
		}}},
	}, h.forms)
	h.d.Handle(dispatch.Route{Segment: "notes", Form: failing})

	require.NoError(t, h.d.Dispatch(ctx, text("anything")))
	assert.Equal(t, guard.DefaultFailureNotice, h.last(t).Reply.Text)
	assert.True(t, h.hasForm(t), "form survives unexpected errors")
}

func TestDispatch_HandlerErrorSendsFailureNotice(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.d.Dispatch(context.Background(), tap("start/broken/")))
	assert.Equal(t, guard.DefaultFailureNotice, h.last(t).Reply.Text)
}

func TestDispatch_UnknownSenderOnboarding(t *testing.T) {
	h := newHarness(t)
	ev := text("/start")
	ev.Sender.ExternalID = 404

	require.NoError(t, h.d.Dispatch(context.Background(), ev))
	d := h.last(t)
	assert.Equal(t, int64(404), d.ChatID)
	assert.Equal(t, guard.DefaultOnboardingNotice, d.Reply.Text)
}

func TestDispatch_Segments(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, []string{"about", "admin", "broken", "notes", "start"}, h.d.Segments())
	assert.Equal(t, "start", h.d.Root())
	assert.Equal(t, "start/notes/", navpath.Start(h.d.Root()).Push("notes").MustEncode())
}

// keyboardRejecter refuses replies carrying buttons, like a platform that
// cannot parse the markup.
type keyboardRejecter struct {
	outbox *memory.Outbox
}

func (k keyboardRejecter) Send(ctx context.Context, chatID int64, reply *domain.Reply) (domain.Receipt, error) {
	if len(reply.Keyboard) > 0 {
		return domain.Receipt{}, errors.New("bad request: can't parse entities")
	}
	return k.outbox.Send(ctx, chatID, reply)
}

func TestDispatch_RejectedReplySendsFailureNotice(t *testing.T) {
	outbox := memory.NewOutbox()
	h := newHarnessWith(t, outbox, keyboardRejecter{outbox: outbox})

	require.NoError(t, h.d.Dispatch(context.Background(), text("/start")))

	d := h.last(t)
	assert.Equal(t, guard.DefaultFailureNotice, d.Reply.Text)
	assert.Empty(t, d.Reply.Keyboard)
	assert.Equal(t, int64(user), d.ChatID)
	assert.Equal(t, []string{"start"}, h.failures)
}

type rejectAll struct{}

func (rejectAll) Send(ctx context.Context, chatID int64, reply *domain.Reply) (domain.Receipt, error) {
	return domain.Receipt{}, errors.New("connection refused")
}

func TestDispatch_UndeliverableNoticeReturnsError(t *testing.T) {
	h := newHarnessWith(t, memory.NewOutbox(), rejectAll{})

	err := h.d.Dispatch(context.Background(), text("/start"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, []string{"start"}, h.failures)
	assert.Empty(t, h.outbox.Deliveries())
}

func TestDispatch_UnrootedFormTokenFallsBackToRoot(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.d.Dispatch(context.Background(), tap("notes/")))
	assert.Equal(t, "Main menu", h.last(t).Reply.Text)
	assert.False(t, h.hasForm(t))
}
