package console_test

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/aretw0/wayfinder/pkg/adapters/console"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.Notifier = (*console.Console)(nil)

// echo answers every event with a fixed menu and remembers what it saw.
type echo struct {
	mu     sync.Mutex
	c      *console.Console
	events []domain.Event
}

func (e *echo) Dispatch(ctx context.Context, ev domain.Event) error {
	e.mu.Lock()
	e.events = append(e.events, ev)
	e.mu.Unlock()
	reply := domain.NewReply("Menu").
		Row(domain.Button{Label: "Feedback", Token: "start/feedback"}, domain.Button{Label: "Review", Token: "start/review"}).
		Row(domain.Button{Label: "Site", URL: "https://example.com"})
	_, err := e.c.Send(ctx, ev.Sender.ExternalID, reply)
	return err
}

func TestConsole_Run(t *testing.T) {
	input := strings.NewReader("2\nhello there\n3\n/photo file-9\n\n/quit\n")
	var out bytes.Buffer
	sender := domain.Sender{ExternalID: 1, FirstName: "Dev"}
	c := console.New(input, &out, sender)
	h := &echo{c: c}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, c.Run(ctx, h))

	h.mu.Lock()
	defer h.mu.Unlock()
	require.Len(t, h.events, 5)
	assert.True(t, h.events[0].IsStart())
	assert.Equal(t, "start/review", h.events[1].Token)
	assert.NotZero(t, h.events[1].MessageID)
	assert.Equal(t, "hello there", h.events[2].Text)
	assert.Equal(t, "3", h.events[3].Text, "URL buttons are not tappable")
	assert.Equal(t, "file-9", h.events[4].Attachment)
	for _, ev := range h.events {
		assert.Equal(t, sender, ev.Sender)
	}

	printed := out.String()
	assert.Contains(t, printed, "[1] Feedback  [2] Review")
	assert.Contains(t, printed, "[3] Site <https://example.com>")
}

func TestConsole_SendWithRenderer(t *testing.T) {
	var out bytes.Buffer
	c := console.New(strings.NewReader(""), &out, domain.Sender{ExternalID: 1},
		console.WithRenderer(func(s string) (string, error) { return strings.ToUpper(s), nil }))

	rc1, err := c.Send(context.Background(), 1, &domain.Reply{Text: "news", Photo: "pic"})
	require.NoError(t, err)
	rc2, err := c.Send(context.Background(), 1, domain.NewReply("again"))
	require.NoError(t, err)

	assert.Equal(t, rc1.MessageID+1, rc2.MessageID)
	assert.Contains(t, out.String(), "NEWS\n[photo pic]")
}

func TestConsole_StopsOnEOF(t *testing.T) {
	var out bytes.Buffer
	c := console.New(strings.NewReader("hi\n"), &out, domain.Sender{ExternalID: 1})
	h := &echo{c: c}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, c.Run(ctx, h))
	assert.Len(t, h.events, 2)
}

func TestPrintBanner(t *testing.T) {
	var out bytes.Buffer
	console.PrintBanner(&out, "v1.2.3")
	assert.Contains(t, out.String(), "v1.2.3")
}
