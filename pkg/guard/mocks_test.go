package guard_test

import (
	"context"
	"time"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/stretchr/testify/mock"
)

type MockIdentities struct {
	mock.Mock
}

func (m *MockIdentities) FindIdentity(ctx context.Context, externalID int64) (*domain.Identity, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

func (m *MockIdentities) GetIdentity(ctx context.Context, id int64) (*domain.Identity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

func (m *MockIdentities) CreateIdentity(ctx context.Context, externalID int64, attrs domain.IdentityAttrs) (*domain.Identity, error) {
	args := m.Called(ctx, externalID, attrs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

func (m *MockIdentities) ListIdentities(ctx context.Context) ([]domain.Identity, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Identity), args.Error(1)
}

type MockOperators struct {
	mock.Mock
}

func (m *MockOperators) FindOperatorProfile(ctx context.Context, identityID int64) (*domain.OperatorProfile, error) {
	args := m.Called(ctx, identityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OperatorProfile), args.Error(1)
}

func (m *MockOperators) GetOperator(ctx context.Context, id int64) (*domain.OperatorProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OperatorProfile), args.Error(1)
}

func (m *MockOperators) PermissionsOf(ctx context.Context, roleID int64) (domain.Permissions, error) {
	args := m.Called(ctx, roleID)
	return args.Get(0).(domain.Permissions), args.Error(1)
}

func (m *MockOperators) ListOperators(ctx context.Context, workshopID int64, roleSlug string) ([]domain.OperatorProfile, error) {
	args := m.Called(ctx, workshopID, roleSlug)
	return args.Get(0).([]domain.OperatorProfile), args.Error(1)
}

type MockInvites struct {
	mock.Mock
}

func (m *MockInvites) CreateInvite(ctx context.Context, operatorID int64, attrs domain.IdentityAttrs, limit int) (*domain.Invite, error) {
	args := m.Called(ctx, operatorID, attrs, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invite), args.Error(1)
}

func (m *MockInvites) FindInvite(ctx context.Context, id string) (*domain.Invite, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invite), args.Error(1)
}

func (m *MockInvites) ConsumeInvite(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockInvites) ListInvites(ctx context.Context, since time.Time) ([]domain.Invite, error) {
	args := m.Called(ctx, since)
	return args.Get(0).([]domain.Invite), args.Error(1)
}

type MockSessions struct {
	mock.Mock
}

func (m *MockSessions) Clear(ctx context.Context, externalID int64) error {
	return m.Called(ctx, externalID).Error(0)
}
