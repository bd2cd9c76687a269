package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/google/uuid"
)

// Records implements every record store port in memory.
// It backs tests and the local console mode. Safe for concurrent use.
type Records struct {
	mu sync.Mutex

	identities map[int64]domain.Identity
	operators  map[int64]domain.OperatorProfile
	roles      map[int64]domain.Role
	grants     map[int64]domain.Permissions
	invites    map[string]domain.Invite
	feedback   map[int64]domain.FeedbackRequest
	reviews    []domain.Review
	workshops  []domain.Workshop
	contacts   []domain.ContactMethod
	nextID     int64
	now        func() time.Time
}

// NewRecords creates an empty record set.
func NewRecords() *Records {
	return &Records{
		identities: make(map[int64]domain.Identity),
		operators:  make(map[int64]domain.OperatorProfile),
		roles:      make(map[int64]domain.Role),
		grants:     make(map[int64]domain.Permissions),
		invites:    make(map[string]domain.Invite),
		feedback:   make(map[int64]domain.FeedbackRequest),
		now:        time.Now,
	}
}

// SetClock replaces the time source used for CreatedAt stamps.
func (r *Records) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

func (r *Records) id() int64 {
	r.nextID++
	return r.nextID
}

// AddRole registers a role granting the given permission slugs.
func (r *Records) AddRole(slug, name string, perms ...string) domain.Role {
	r.mu.Lock()
	defer r.mu.Unlock()
	role := domain.Role{ID: r.id(), Slug: slug, Name: name}
	r.roles[role.ID] = role
	r.grants[role.ID] = domain.NewPermissions(perms...)
	return role
}

// AddWorkshop registers a workshop and assigns its ID.
func (r *Records) AddWorkshop(w domain.Workshop) domain.Workshop {
	r.mu.Lock()
	defer r.mu.Unlock()
	w.ID = r.id()
	r.workshops = append(r.workshops, w)
	return w
}

// AddContactMethod registers a contact method and assigns its ID.
func (r *Records) AddContactMethod(c domain.ContactMethod) domain.ContactMethod {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = r.id()
	r.contacts = append(r.contacts, c)
	return c
}

// AddOperator registers an identity together with its operator profile.
func (r *Records) AddOperator(externalID int64, fullName string, roleID, workshopID int64) domain.OperatorProfile {
	r.mu.Lock()
	defer r.mu.Unlock()
	ident := domain.Identity{ID: r.id(), ExternalID: externalID, CreatedAt: r.now()}
	r.identities[ident.ID] = ident
	op := domain.OperatorProfile{
		ID:         r.id(),
		IdentityID: ident.ID,
		RoleID:     roleID,
		WorkshopID: workshopID,
		FullName:   fullName,
		ExternalID: externalID,
		CreatedAt:  r.now(),
	}
	r.operators[op.ID] = op
	return op
}

// FindIdentity implements ports.IdentityStore.
func (r *Records) FindIdentity(ctx context.Context, externalID int64) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ident := range r.identities {
		if ident.ExternalID == externalID {
			return &ident, nil
		}
	}
	return nil, domain.ErrNotFound
}

// GetIdentity implements ports.IdentityStore.
func (r *Records) GetIdentity(ctx context.Context, id int64) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ident, ok := r.identities[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &ident, nil
}

// CreateIdentity implements ports.IdentityStore.
func (r *Records) CreateIdentity(ctx context.Context, externalID int64, attrs domain.IdentityAttrs) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ident := domain.Identity{ID: r.id(), ExternalID: externalID, Phone: attrs.Phone, CreatedAt: r.now()}
	r.identities[ident.ID] = ident
	return &ident, nil
}

// ListIdentities implements ports.IdentityStore.
func (r *Records) ListIdentities(ctx context.Context) ([]domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Identity, 0, len(r.identities))
	for _, ident := range r.identities {
		out = append(out, ident)
	}
	slices.SortFunc(out, func(a, b domain.Identity) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

// FindOperatorProfile implements ports.OperatorStore.
func (r *Records) FindOperatorProfile(ctx context.Context, identityID int64) (*domain.OperatorProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, op := range r.operators {
		if op.IdentityID == identityID {
			return &op, nil
		}
	}
	return nil, domain.ErrNotFound
}

// GetOperator implements ports.OperatorStore.
func (r *Records) GetOperator(ctx context.Context, id int64) (*domain.OperatorProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	op, ok := r.operators[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &op, nil
}

// PermissionsOf implements ports.OperatorStore.
func (r *Records) PermissionsOf(ctx context.Context, roleID int64) (domain.Permissions, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	perms, ok := r.grants[roleID]
	if !ok {
		return domain.Permissions{}, nil
	}
	return perms, nil
}

// ListOperators implements ports.OperatorStore.
func (r *Records) ListOperators(ctx context.Context, workshopID int64, roleSlug string) ([]domain.OperatorProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.OperatorProfile
	for _, op := range r.operators {
		if workshopID != 0 && op.WorkshopID != workshopID {
			continue
		}
		if roleSlug != "" && r.roles[op.RoleID].Slug != roleSlug {
			continue
		}
		out = append(out, op)
	}
	slices.SortFunc(out, func(a, b domain.OperatorProfile) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

// CreateInvite implements ports.InviteStore.
func (r *Records) CreateInvite(ctx context.Context, operatorID int64, attrs domain.IdentityAttrs, limit int) (*domain.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv := domain.Invite{
		ID:               uuid.NewString(),
		OperatorID:       operatorID,
		Data:             attrs,
		ActivationsLimit: limit,
		CreatedAt:        r.now(),
	}
	r.invites[inv.ID] = inv
	return &inv, nil
}

// FindInvite implements ports.InviteStore.
func (r *Records) FindInvite(ctx context.Context, id string) (*domain.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invites[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &inv, nil
}

// ConsumeInvite implements ports.InviteStore.
func (r *Records) ConsumeInvite(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invites[id]
	if !ok || inv.Exhausted() {
		return domain.ErrNotFound
	}
	inv.Activations++
	r.invites[id] = inv
	return nil
}

// ListInvites implements ports.InviteStore.
func (r *Records) ListInvites(ctx context.Context, since time.Time) ([]domain.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Invite
	for _, inv := range r.invites {
		if !inv.CreatedAt.Before(since) {
			out = append(out, inv)
		}
	}
	slices.SortFunc(out, func(a, b domain.Invite) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

// CreateFeedback implements ports.FeedbackStore.
func (r *Records) CreateFeedback(ctx context.Context, req domain.FeedbackRequest) (*domain.FeedbackRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req.ID = r.id()
	req.CreatedAt = r.now()
	r.feedback[req.ID] = req
	return &req, nil
}

// GetFeedback implements ports.FeedbackStore.
func (r *Records) GetFeedback(ctx context.Context, id int64) (*domain.FeedbackRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.feedback[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &req, nil
}

// ListFeedback implements ports.FeedbackStore. Results are ordered by creation.
func (r *Records) ListFeedback(ctx context.Context, f domain.FeedbackFilter) ([]domain.FeedbackRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.FeedbackRequest
	for _, req := range r.feedback {
		switch {
		case f.IdentityID != 0 && req.IdentityID != f.IdentityID,
			f.WorkshopID != 0 && req.WorkshopID != f.WorkshopID,
			f.OperatorID != 0 && (req.OperatorID == nil || *req.OperatorID != f.OperatorID),
			f.OpenOnly && req.CompletedAt != nil,
			f.CompletedOnly && req.CompletedAt == nil,
			!f.Since.IsZero() && req.CreatedAt.Before(f.Since):
			continue
		}
		out = append(out, req)
	}
	slices.SortFunc(out, func(a, b domain.FeedbackRequest) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

// TakeFeedback implements ports.FeedbackStore.
func (r *Records) TakeFeedback(ctx context.Context, id, operatorID int64) (*domain.FeedbackRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.feedback[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if req.OperatorID != nil && *req.OperatorID != operatorID {
		return nil, domain.ErrAlreadyTaken
	}
	now := r.now()
	req.OperatorID = &operatorID
	req.TakenAt = &now
	r.feedback[id] = req
	return &req, nil
}

// CompleteFeedback implements ports.FeedbackStore.
func (r *Records) CompleteFeedback(ctx context.Context, id, operatorID int64) (*domain.FeedbackRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.feedback[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if req.OperatorID != nil && *req.OperatorID != operatorID {
		return nil, domain.ErrAlreadyTaken
	}
	now := r.now()
	req.OperatorID = &operatorID
	if req.TakenAt == nil {
		req.TakenAt = &now
	}
	req.CompletedAt = &now
	r.feedback[id] = req
	return &req, nil
}

// CreateReview implements ports.ReviewStore.
func (r *Records) CreateReview(ctx context.Context, review domain.Review) (*domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	review.ID = r.id()
	review.CreatedAt = r.now()
	r.reviews = append(r.reviews, review)
	return &review, nil
}

// HasReview implements ports.ReviewStore.
func (r *Records) HasReview(ctx context.Context, identityID, workshopID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.ContainsFunc(r.reviews, func(rv domain.Review) bool {
		return rv.IdentityID == identityID && rv.WorkshopID == workshopID
	}), nil
}

// ListWorkshops implements ports.DirectoryStore.
func (r *Records) ListWorkshops(ctx context.Context) ([]domain.Workshop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.workshops), nil
}

// GetWorkshop implements ports.DirectoryStore.
func (r *Records) GetWorkshop(ctx context.Context, id int64) (*domain.Workshop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.workshops {
		if w.ID == id {
			return &w, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ListContactMethods implements ports.DirectoryStore.
func (r *Records) ListContactMethods(ctx context.Context) ([]domain.ContactMethod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.contacts), nil
}
