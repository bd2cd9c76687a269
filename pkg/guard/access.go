package guard

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
)

// Default access notices.
const (
	DefaultOnboardingNotice = "You are not registered yet. Ask the service for an invitation link."
	DefaultDeniedNotice     = "You do not have enough rights for this action."
)

// AccessOption configures the Access guard.
type AccessOption func(*access)

// WithOnboardingNotice overrides the text sent to unknown senders.
func WithOnboardingNotice(text string) AccessOption {
	return func(a *access) {
		a.onboarding = text
	}
}

// WithDeniedNotice overrides the text sent when permissions are missing.
func WithDeniedNotice(text string) AccessOption {
	return func(a *access) {
		a.denied = text
	}
}

type access struct {
	identities ports.IdentityStore
	operators  ports.OperatorStore
	sessions   SessionClearer
	onboarding string
	denied     string
}

// Access resolves the sender and enforces the route permissions.
//
// An unknown sender gets the onboarding notice. When the route declares
// permissions, the sender needs an operator profile whose role grants every
// one of them. Both refusals also drop any open form session.
func Access(identities ports.IdentityStore, operators ports.OperatorStore, sessions SessionClearer, opts ...AccessOption) Func {
	a := &access{
		identities: identities,
		operators:  operators,
		sessions:   sessions,
		onboarding: DefaultOnboardingNotice,
		denied:     DefaultDeniedNotice,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a.check
}

func (a *access) check(ctx context.Context, req *Request) (Decision, error) {
	ident, err := a.identities.FindIdentity(ctx, req.ExternalID())
	if errors.Is(err, domain.ErrNotFound) {
		return a.refuse(ctx, req, a.onboarding)
	}
	if err != nil {
		return Decision{}, fmt.Errorf("failed to look up identity: %w", err)
	}
	req.Identity = ident

	profile, err := a.operators.FindOperatorProfile(ctx, ident.ID)
	switch {
	case err == nil:
		perms, err := a.operators.PermissionsOf(ctx, profile.RoleID)
		if err != nil {
			return Decision{}, fmt.Errorf("failed to load permissions: %w", err)
		}
		req.Profile = profile
		req.Permissions = perms
	case errors.Is(err, domain.ErrNotFound):
		req.Permissions = domain.Permissions{}
	default:
		return Decision{}, fmt.Errorf("failed to look up operator profile: %w", err)
	}

	if len(req.Route.Permissions) == 0 {
		return Continue(), nil
	}
	if req.Profile == nil || !req.Permissions.ContainsAll(req.Route.Permissions) {
		return a.refuse(ctx, req, a.denied)
	}
	return Continue(), nil
}

func (a *access) refuse(ctx context.Context, req *Request, text string) (Decision, error) {
	if a.sessions != nil {
		if err := a.sessions.Clear(ctx, req.ExternalID()); err != nil {
			return Decision{}, fmt.Errorf("failed to clear form session: %w", err)
		}
	}
	return Stop(domain.NewReply(text)), nil
}
