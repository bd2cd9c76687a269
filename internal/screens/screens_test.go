package screens_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/wayfinder/internal/screens"
	"github.com/aretw0/wayfinder/pkg/adapters/memory"
	"github.com/aretw0/wayfinder/pkg/dispatch"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/form"
	"github.com/aretw0/wayfinder/pkg/guard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	client  = 1000
	nora    = 100
	bob     = 200
	carl    = 300
	botName = "wayfinder_bot"
)

type fixture struct {
	t       *testing.T
	records *memory.Records
	outbox  *memory.Outbox
	forms   *form.Store
	d       *dispatch.Dispatcher
	now     time.Time
}

func testSeed() domain.Seed {
	return domain.Seed{
		Roles: []domain.SeedRole{
			{Slug: domain.RoleManager, Name: "Manager", Permissions: []string{domain.PermProcessFeedback, domain.PermAddUser}},
			{Slug: domain.RoleCEO, Name: "CEO", Permissions: []string{
				domain.PermProcessFeedback, domain.PermAddUser, domain.PermAddMailing, domain.PermGetStats,
			}},
		},
		Workshops: []domain.Workshop{
			{Slug: "north", Name: "North", MapsURL: "https://maps.example.com/north"},
			{Slug: "south", Name: "South"},
		},
		ContactMethods: []domain.ContactMethod{
			{Slug: "call", Name: "Call"},
			{Slug: "chat", Name: "Chat"},
		},
		Operators: []domain.SeedOperator{
			{ExternalID: nora, FullName: "Nord Nora Ann", Role: domain.RoleManager, Workshop: "north"},
			{ExternalID: bob, FullName: "Bell Bob", Role: domain.RoleManager, Workshop: "north"},
			{ExternalID: carl, FullName: "Chief Carl", Phone: "+15550300", Role: domain.RoleCEO},
		},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:       t,
		records: memory.NewRecords(),
		outbox:  memory.NewOutbox(),
		now:     time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	f.records.SetClock(clock)
	require.NoError(t, f.records.ApplySeed(testSeed()))
	_, err := f.records.CreateIdentity(context.Background(), client, domain.IdentityAttrs{Phone: "+15550001"})
	require.NoError(t, err)

	cache := memory.NewCache()
	f.forms = form.NewStore(cache)
	chain := guard.NewChain().
		Use("entry_gate", guard.EntryGate(f.records, f.records, nil)).
		Use("access", guard.Access(f.records, f.records, f.forms))
	f.d = dispatch.New(screens.SegRoot, chain, f.forms, f.outbox)

	s := screens.New(screens.Deps{
		Identities: f.records,
		Operators:  f.records,
		Invites:    f.records,
		Feedback:   f.records,
		Reviews:    f.records,
		Directory:  f.records,
		Cache:      cache,
		Notifier:   f.outbox,
	}, screens.WithBotUsername(botName), screens.WithClock(clock))
	f.d.Handle(s.Routes(f.forms)...)
	return f
}

func (f *fixture) send(from int64, text string) domain.Reply {
	f.t.Helper()
	require.NoError(f.t, f.d.Dispatch(context.Background(), domain.Event{
		Sender: domain.Sender{ExternalID: from, FirstName: "Sam"},
		Text:   text,
	}))
	return f.last(from)
}

func (f *fixture) attach(from int64, fileID string) domain.Reply {
	f.t.Helper()
	require.NoError(f.t, f.d.Dispatch(context.Background(), domain.Event{
		Sender:     domain.Sender{ExternalID: from},
		Attachment: fileID,
	}))
	return f.last(from)
}

func (f *fixture) tap(from int64, token string) domain.Reply {
	f.t.Helper()
	require.NoError(f.t, f.d.Dispatch(context.Background(), domain.Event{
		Sender:    domain.Sender{ExternalID: from, FirstName: "Sam"},
		Token:     token,
		MessageID: 1,
	}))
	return f.last(from)
}

// press taps the button of reply labeled label, or else the first whose
// label contains it.
func (f *fixture) press(from int64, reply domain.Reply, label string) domain.Reply {
	f.t.Helper()
	return f.tap(from, button(f.t, reply, label).Token)
}

func (f *fixture) last(chatID int64) domain.Reply {
	f.t.Helper()
	ds := f.outbox.To(chatID)
	require.NotEmpty(f.t, ds, "no delivery to %d", chatID)
	return ds[len(ds)-1].Reply
}

func button(t *testing.T, reply domain.Reply, label string) domain.Button {
	t.Helper()
	for _, match := range []func(string, string) bool{func(a, b string) bool { return a == b }, strings.Contains} {
		for _, row := range reply.Keyboard {
			for _, b := range row {
				if match(b.Label, label) {
					return b
				}
			}
		}
	}
	require.Failf(t, "button not found", "%q in %+v", label, reply.Keyboard)
	return domain.Button{}
}

func labels(reply domain.Reply) []string {
	var out []string
	for _, row := range reply.Keyboard {
		for _, b := range row {
			out = append(out, b.Label)
		}
	}
	return out
}

func TestStart_MenuDependsOnPermissions(t *testing.T) {
	f := newFixture(t)

	reply := f.send(client, "/start")
	assert.Contains(t, reply.Text, "Good morning, Sam!")
	assert.Equal(t, []string{"📞 Feedback", "🌟 Leave a review"}, labels(reply))

	reply = f.send(nora, "/start")
	assert.Equal(t, []string{"📞 Feedback", "🌟 Leave a review", "📬 Open requests", "➕ Invite a user"}, labels(reply))

	reply = f.send(carl, "/start")
	assert.Len(t, labels(reply), 6)
}

func TestStart_Greeting(t *testing.T) {
	f := newFixture(t)
	f.now = time.Date(2025, 3, 3, 23, 0, 0, 0, time.UTC)
	assert.Contains(t, f.send(client, "/start").Text, "Good night")
	f.now = time.Date(2025, 3, 3, 19, 0, 0, 0, time.UTC)
	assert.Contains(t, f.send(client, "/start").Text, "Good evening")
}

func TestStart_UnknownSenderGetsOnboarding(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, guard.DefaultOnboardingNotice, f.send(4242, "/start").Text)
}

func TestStart_StaffRouteDenied(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, guard.DefaultDeniedNotice, f.tap(client, "start/stats/").Text)
}
