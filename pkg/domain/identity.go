package domain

import "time"

// Identity is a registered chat user.
type Identity struct {
	ID         int64     `json:"id"`
	ExternalID int64     `json:"external_id"`
	Phone      string    `json:"phone"`
	CreatedAt  time.Time `json:"created_at"`
}

// IdentityAttrs carries the data used to provision a new identity.
type IdentityAttrs struct {
	Phone string `json:"phone" yaml:"phone"`
}

// OperatorProfile maps an identity to an employee with a role.
type OperatorProfile struct {
	ID         int64     `json:"id"`
	IdentityID int64     `json:"identity_id"`
	RoleID     int64     `json:"role_id"`
	WorkshopID int64     `json:"workshop_id"`
	FullName   string    `json:"full_name"`
	ExternalID int64     `json:"external_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Role groups permissions.
type Role struct {
	ID   int64  `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Well-known permission slugs.
const (
	PermAddUser         = "add_user"
	PermAddMailing      = "add_mailing"
	PermProcessFeedback = "process_feedback_request"
	PermGetStats        = "get_stats"
)

// Well-known role slugs.
const (
	RoleManager = "manager"
	RoleCEO     = "ceo"
	RoleCTO     = "cto"
)

// Permissions is a set of permission slugs.
type Permissions map[string]struct{}

// NewPermissions builds a set from slugs.
func NewPermissions(slugs ...string) Permissions {
	p := make(Permissions, len(slugs))
	for _, s := range slugs {
		p[s] = struct{}{}
	}
	return p
}

// Has reports whether slug is granted.
func (p Permissions) Has(slug string) bool {
	_, ok := p[slug]
	return ok
}

// ContainsAll reports whether every required slug is granted.
// Partial overlap is not enough.
func (p Permissions) ContainsAll(required []string) bool {
	for _, slug := range required {
		if !p.Has(slug) {
			return false
		}
	}
	return true
}
