package screens_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var linkPattern = regexp.MustCompile(`https://t\.me/wayfinder_bot\?start=([0-9a-f-]{36})`)

func TestInvite_LinkProvisionsIdentity(t *testing.T) {
	f := newFixture(t)

	step := f.press(nora, f.send(nora, "/start"), "Invite a user")
	assert.Contains(t, step.Text, "phone number")
	step = f.send(nora, "+1 555 123-4567")
	assert.Contains(t, step.Text, "📲 Phone: +1 555 123-4567")

	done := f.press(nora, step, "Confirm")
	require.Contains(t, done.Text, "Invitation created")
	m := linkPattern.FindStringSubmatch(done.Text)
	require.Len(t, m, 2, done.Text)

	const newcomer = 5000
	welcome := f.send(newcomer, "/start "+m[1])
	assert.Contains(t, welcome.Text, "Welcome")

	ident, err := f.records.FindIdentity(context.Background(), newcomer)
	require.NoError(t, err)
	assert.Equal(t, "+1 555 123-4567", ident.Phone)

	// A used link no longer provisions anyone.
	assert.Contains(t, f.send(5001, "/start "+m[1]).Text, "not registered")
}

func TestInvite_RejectsMalformedPhone(t *testing.T) {
	f := newFixture(t)

	f.press(nora, f.send(nora, "/start"), "Invite a user")
	step := f.send(nora, "call me maybe")
	assert.Contains(t, step.Text, "phone number looks wrong")
	assert.Contains(t, step.Text, "(1/1)")
}

func TestInvite_ClientDenied(t *testing.T) {
	f := newFixture(t)
	assert.Contains(t, f.tap(client, "start/inv/").Text, "enough rights")
}
