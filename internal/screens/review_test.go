package screens_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openReview(f *fixture) domain.Reply {
	f.t.Helper()
	return f.press(client, f.send(client, "/start"), "Leave a review")
}

func TestReview_SavesAndAlertsManagement(t *testing.T) {
	f := newFixture(t)

	step := f.press(client, openReview(f), "North")
	assert.Contains(t, step.Text, "(2/3)")
	step = f.send(client, "Quick service and friendly staff.")
	step = f.press(client, step, "⭐️⭐️⭐️⭐️")
	assert.Contains(t, step.Text, "⭐️ Rating: 4 (⭐️⭐️⭐️⭐️)")

	done := f.press(client, step, "Confirm")
	assert.Contains(t, done.Text, "Review saved")
	assert.Equal(t, "https://maps.example.com/north", button(t, done, "map").URL)

	alert := f.last(carl)
	assert.Contains(t, alert.Text, "New review")
	assert.Contains(t, alert.Text, "⭐️ Rating: 4")
	assert.Empty(t, f.outbox.To(nora))

	ident, err := f.records.FindIdentity(context.Background(), client)
	require.NoError(t, err)
	workshops, err := f.records.ListWorkshops(context.Background())
	require.NoError(t, err)
	has, err := f.records.HasReview(context.Background(), ident.ID, workshops[0].ID)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestReview_SecondReviewOfWorkshopAborts(t *testing.T) {
	f := newFixture(t)

	step := f.press(client, openReview(f), "North")
	step = f.press(client, step, "Skip")
	f.press(client, f.press(client, step, "⭐️⭐️⭐️⭐️⭐️"), "Confirm")

	reply := f.press(client, openReview(f), "North")
	assert.Contains(t, reply.Text, "already reviewed this workshop")
	assert.Equal(t, "https://maps.example.com/north", button(t, reply, "map").URL)

	reply = f.press(client, openReview(f), "South")
	assert.Contains(t, reply.Text, "(2/3)")
}

func TestReview_TextLength(t *testing.T) {
	f := newFixture(t)

	step := f.press(client, openReview(f), "South")
	step = f.send(client, "too short")
	assert.Contains(t, step.Text, "from 20 to 2000 characters")

	step = f.send(client, strings.Repeat("b", 2001))
	assert.Contains(t, step.Text, "from 20 to 2000 characters")
	assert.Contains(t, step.Text, "(2/3)")
}
