package guard

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/navpath"
	"github.com/aretw0/wayfinder/pkg/ports"
)

// WelcomeFunc builds the reply sent after an invitation provisioned an identity.
type WelcomeFunc func(req *Request) *domain.Reply

// DefaultWelcome greets the new identity and offers a button to the root screen.
func DefaultWelcome(req *Request) *domain.Reply {
	root := navpath.Start(req.Path.Root())
	return domain.NewReply(fmt.Sprintf("Welcome, %s! Your access is ready.", req.Event.Sender.DisplayName())).
		Row(domain.Button{Label: "Open menu", Token: root.String()})
}

// EntryGate provisions an identity from a "/start <invite>" command.
//
// It acts only on routes flagged EntryGate, when the payload names an
// existing invite below its activation limit and the sender is not yet
// registered. In that case it consumes one activation, creates the identity
// with the invite data and stops with welcome. Every other case continues
// silently, so the root screen renders as if no payload was given.
func EntryGate(identities ports.IdentityStore, invites ports.InviteStore, welcome WelcomeFunc) Func {
	if welcome == nil {
		welcome = DefaultWelcome
	}
	return func(ctx context.Context, req *Request) (Decision, error) {
		if !req.Route.EntryGate {
			return Continue(), nil
		}
		payload := req.Event.StartPayload()
		if payload == "" {
			return Continue(), nil
		}

		_, err := identities.FindIdentity(ctx, req.ExternalID())
		switch {
		case err == nil:
			return Continue(), nil
		case !errors.Is(err, domain.ErrNotFound):
			return Decision{}, fmt.Errorf("failed to look up identity: %w", err)
		}

		invite, err := invites.FindInvite(ctx, payload)
		if errors.Is(err, domain.ErrNotFound) {
			return Continue(), nil
		}
		if err != nil {
			return Decision{}, fmt.Errorf("failed to look up invite: %w", err)
		}
		if invite.Exhausted() {
			return Continue(), nil
		}

		// Claim the activation first: a concurrent use of the same link loses here.
		if err := invites.ConsumeInvite(ctx, invite.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return Continue(), nil
			}
			return Decision{}, fmt.Errorf("failed to consume invite: %w", err)
		}

		ident, err := identities.CreateIdentity(ctx, req.ExternalID(), invite.Data)
		if err != nil {
			return Decision{}, fmt.Errorf("failed to create identity: %w", err)
		}
		req.Identity = ident
		return Stop(welcome(req)), nil
	}
}
