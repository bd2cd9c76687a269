package guard_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/guard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAccess_OperatorProfileRequired(t *testing.T) {
	identities := new(MockIdentities)
	operators := new(MockOperators)
	sessions := new(MockSessions)

	identities.On("FindIdentity", mock.Anything, int64(7)).Return(&domain.Identity{ID: 70, ExternalID: 7}, nil)
	operators.On("FindOperatorProfile", mock.Anything, int64(70)).Return(nil, domain.ErrNotFound)
	sessions.On("Clear", mock.Anything, int64(7)).Return(nil)

	calls := 0
	chain := guard.NewChain().Use("access", guard.Access(identities, operators, sessions))
	req := newRequest(7)
	req.Route = guard.Route{Name: "invite", Permissions: []string{domain.PermAddUser}}

	out := chain.Run(context.Background(), req, func(ctx context.Context, req *guard.Request) (guard.Outcome, error) {
		calls++
		return guard.Outcome{}, nil
	})

	require.NotNil(t, out.Reply)
	assert.Equal(t, guard.DefaultDeniedNotice, out.Reply.Text)
	assert.Zero(t, calls, "wrapped handler must not run")
	sessions.AssertCalled(t, "Clear", mock.Anything, int64(7))
	operators.AssertNotCalled(t, "PermissionsOf", mock.Anything, mock.Anything)
}

func TestAccess_PermissionsMustAllBeGranted(t *testing.T) {
	tests := []struct {
		name     string
		granted  []string
		required []string
		proceed  bool
	}{
		{"all granted", []string{"add_user", "get_stats"}, []string{"add_user"}, true},
		{"exact match", []string{"add_user", "get_stats"}, []string{"add_user", "get_stats"}, true},
		{"partial overlap", []string{"add_user"}, []string{"add_user", "get_stats"}, false},
		{"none granted", nil, []string{"get_stats"}, false},
		{"no requirement", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identities := new(MockIdentities)
			operators := new(MockOperators)
			sessions := new(MockSessions)

			identities.On("FindIdentity", mock.Anything, int64(7)).Return(&domain.Identity{ID: 70}, nil)
			operators.On("FindOperatorProfile", mock.Anything, int64(70)).Return(&domain.OperatorProfile{ID: 3, RoleID: 9}, nil)
			operators.On("PermissionsOf", mock.Anything, int64(9)).Return(domain.NewPermissions(tt.granted...), nil)
			sessions.On("Clear", mock.Anything, int64(7)).Return(nil)

			req := newRequest(7)
			req.Route.Permissions = tt.required

			decision, err := guard.Access(identities, operators, sessions)(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, tt.proceed, decision.Proceed)
			if tt.proceed {
				assert.Equal(t, int64(3), req.Profile.ID)
				sessions.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
			} else {
				sessions.AssertCalled(t, "Clear", mock.Anything, int64(7))
			}
		})
	}
}

func TestAccess_UnknownSenderGetsOnboarding(t *testing.T) {
	identities := new(MockIdentities)
	operators := new(MockOperators)
	sessions := new(MockSessions)

	identities.On("FindIdentity", mock.Anything, int64(5)).Return(nil, domain.ErrNotFound)
	sessions.On("Clear", mock.Anything, int64(5)).Return(nil)

	access := guard.Access(identities, operators, sessions, guard.WithOnboardingNotice("Ask for a link."))
	decision, err := access(context.Background(), newRequest(5))

	require.NoError(t, err)
	assert.False(t, decision.Proceed)
	assert.Equal(t, "Ask for a link.", decision.Response.Text)
	sessions.AssertExpectations(t)
}

func TestAccess_PlainIdentityWithoutRequirements(t *testing.T) {
	identities := new(MockIdentities)
	operators := new(MockOperators)

	identities.On("FindIdentity", mock.Anything, int64(5)).Return(&domain.Identity{ID: 50}, nil)
	operators.On("FindOperatorProfile", mock.Anything, int64(50)).Return(nil, domain.ErrNotFound)

	req := newRequest(5)
	decision, err := guard.Access(identities, operators, nil)(context.Background(), req)

	require.NoError(t, err)
	assert.True(t, decision.Proceed)
	assert.Equal(t, int64(50), req.Identity.ID)
	assert.Nil(t, req.Profile)
	assert.NotNil(t, req.Permissions)
}

func TestAccess_StoreErrorIsUnexpected(t *testing.T) {
	identities := new(MockIdentities)
	identities.On("FindIdentity", mock.Anything, int64(5)).Return(nil, errors.New("disk I/O error"))

	_, err := guard.Access(identities, new(MockOperators), nil)(context.Background(), newRequest(5))
	assert.Error(t, err)
}
