package ports

import (
	"context"
	"time"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// IdentityStore manages registered chat users.
// Lookups return domain.ErrNotFound when nothing matches.
type IdentityStore interface {
	FindIdentity(ctx context.Context, externalID int64) (*domain.Identity, error)
	GetIdentity(ctx context.Context, id int64) (*domain.Identity, error)
	CreateIdentity(ctx context.Context, externalID int64, attrs domain.IdentityAttrs) (*domain.Identity, error)
	ListIdentities(ctx context.Context) ([]domain.Identity, error)
}

// OperatorStore resolves employees, their roles and the permissions granted by a role.
type OperatorStore interface {
	FindOperatorProfile(ctx context.Context, identityID int64) (*domain.OperatorProfile, error)
	GetOperator(ctx context.Context, id int64) (*domain.OperatorProfile, error)
	PermissionsOf(ctx context.Context, roleID int64) (domain.Permissions, error)

	// ListOperators filters by workshop and role slug; zero values match everything.
	ListOperators(ctx context.Context, workshopID int64, roleSlug string) ([]domain.OperatorProfile, error)
}

// InviteStore manages activation links.
type InviteStore interface {
	CreateInvite(ctx context.Context, operatorID int64, attrs domain.IdentityAttrs, limit int) (*domain.Invite, error)
	FindInvite(ctx context.Context, id string) (*domain.Invite, error)

	// ConsumeInvite increments the activation counter. It returns
	// domain.ErrNotFound if the invite does not exist or is exhausted.
	ConsumeInvite(ctx context.Context, id string) error

	// ListInvites returns invites created at or after since.
	ListInvites(ctx context.Context, since time.Time) ([]domain.Invite, error)
}

// FeedbackStore manages callback requests.
type FeedbackStore interface {
	CreateFeedback(ctx context.Context, req domain.FeedbackRequest) (*domain.FeedbackRequest, error)
	GetFeedback(ctx context.Context, id int64) (*domain.FeedbackRequest, error)
	ListFeedback(ctx context.Context, filter domain.FeedbackFilter) ([]domain.FeedbackRequest, error)

	// TakeFeedback assigns the request to operatorID. It returns
	// domain.ErrAlreadyTaken when another operator holds it.
	TakeFeedback(ctx context.Context, id, operatorID int64) (*domain.FeedbackRequest, error)

	// CompleteFeedback marks the request done. Same ownership rule as TakeFeedback.
	CompleteFeedback(ctx context.Context, id, operatorID int64) (*domain.FeedbackRequest, error)
}

// ReviewStore manages workshop reviews.
type ReviewStore interface {
	CreateReview(ctx context.Context, review domain.Review) (*domain.Review, error)
	HasReview(ctx context.Context, identityID, workshopID int64) (bool, error)
}

// DirectoryStore serves reference data.
type DirectoryStore interface {
	ListWorkshops(ctx context.Context) ([]domain.Workshop, error)
	GetWorkshop(ctx context.Context, id int64) (*domain.Workshop, error)
	ListContactMethods(ctx context.Context) ([]domain.ContactMethod, error)
}
