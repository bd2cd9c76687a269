package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/wayfinder/pkg/adapters/memory"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecords_TakeFeedbackOwnership(t *testing.T) {
	r := memory.NewRecords()
	ctx := context.Background()

	req, err := r.CreateFeedback(ctx, domain.FeedbackRequest{IdentityID: 1, WorkshopID: 2})
	require.NoError(t, err)

	_, err = r.TakeFeedback(ctx, req.ID, 10)
	require.NoError(t, err)

	_, err = r.TakeFeedback(ctx, req.ID, 11)
	assert.ErrorIs(t, err, domain.ErrAlreadyTaken)

	_, err = r.CompleteFeedback(ctx, req.ID, 11)
	assert.ErrorIs(t, err, domain.ErrAlreadyTaken)

	done, err := r.CompleteFeedback(ctx, req.ID, 10)
	require.NoError(t, err)
	assert.NotNil(t, done.CompletedAt)

	open, err := r.ListFeedback(ctx, domain.FeedbackFilter{OpenOnly: true})
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestRecords_ConsumeInviteRespectsLimit(t *testing.T) {
	r := memory.NewRecords()
	ctx := context.Background()

	inv, err := r.CreateInvite(ctx, 1, domain.IdentityAttrs{Phone: "+1"}, 1)
	require.NoError(t, err)

	require.NoError(t, r.ConsumeInvite(ctx, inv.ID))
	assert.ErrorIs(t, r.ConsumeInvite(ctx, inv.ID), domain.ErrNotFound)
}

func TestRecords_ListOperatorsByRole(t *testing.T) {
	r := memory.NewRecords()
	ctx := context.Background()
	manager := r.AddRole(domain.RoleManager, "Manager", domain.PermProcessFeedback)
	ceo := r.AddRole(domain.RoleCEO, "CEO", domain.PermGetStats)
	north := r.AddWorkshop(domain.Workshop{Slug: "north", Name: "North"})

	m := r.AddOperator(100, "Mia", manager.ID, north.ID)
	r.AddOperator(101, "Carl", ceo.ID, north.ID)

	ops, err := r.ListOperators(ctx, north.ID, domain.RoleManager)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, m.ID, ops[0].ID)

	perms, err := r.PermissionsOf(ctx, manager.ID)
	require.NoError(t, err)
	assert.True(t, perms.Has(domain.PermProcessFeedback))
}

func TestOutbox(t *testing.T) {
	o := memory.NewOutbox()
	ctx := context.Background()

	rcpt, err := o.Send(ctx, 5, domain.NewReply("hi"))
	require.NoError(t, err)
	_, err = o.Edit(ctx, 5, rcpt.MessageID, domain.NewReply("edited"))
	require.NoError(t, err)
	_, _ = o.Send(ctx, 6, domain.NewReply("other"))

	assert.Len(t, o.To(5), 2)
	last, ok := o.Last()
	require.True(t, ok)
	assert.Equal(t, "other", last.Reply.Text)
	assert.True(t, o.To(5)[1].Edited)
}
