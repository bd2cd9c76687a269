package domain

import "time"

// Invite is a one-time activation link that provisions an identity.
type Invite struct {
	ID               string        `json:"id"`
	OperatorID       int64         `json:"operator_id"`
	Data             IdentityAttrs `json:"data"`
	Activations      int           `json:"activations"`
	ActivationsLimit int           `json:"activations_limit"`
	CreatedAt        time.Time     `json:"created_at"`
}

// Exhausted reports whether the invite reached its activation limit.
func (i Invite) Exhausted() bool {
	return i.Activations >= i.ActivationsLimit
}

// Workshop is a service location that receives feedback requests and reviews.
type Workshop struct {
	ID      int64  `json:"id" yaml:"id"`
	Slug    string `json:"slug" yaml:"slug"`
	Name    string `json:"name" yaml:"name"`
	MapsURL string `json:"maps_url" yaml:"maps_url"`
}

// ContactMethod is a preferred channel for a callback.
type ContactMethod struct {
	ID   int64  `json:"id" yaml:"id"`
	Slug string `json:"slug" yaml:"slug"`
	Name string `json:"name" yaml:"name"`
}

// FeedbackRequest asks the workshop to call the identity back.
type FeedbackRequest struct {
	ID              int64      `json:"id"`
	IdentityID      int64      `json:"identity_id"`
	WorkshopID      int64      `json:"workshop_id"`
	OperatorID      *int64     `json:"operator_id,omitempty"`
	ContactMethodID *int64     `json:"contact_method_id,omitempty"`
	Reason          *string    `json:"reason,omitempty"`
	TakenAt         *time.Time `json:"taken_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// FeedbackFilter narrows feedback request listings. Zero values are ignored.
type FeedbackFilter struct {
	IdentityID    int64
	WorkshopID    int64
	OperatorID    int64
	OpenOnly      bool
	CompletedOnly bool
	Since         time.Time
}

// Review is a rated opinion about a workshop.
type Review struct {
	ID         int64     `json:"id"`
	IdentityID int64     `json:"identity_id"`
	WorkshopID int64     `json:"workshop_id"`
	Text       *string   `json:"text,omitempty"`
	Rating     int       `json:"rating"`
	CreatedAt  time.Time `json:"created_at"`
}

// Mailing is a broadcast message.
type Mailing struct {
	Text  string `json:"text"`
	Photo string `json:"photo,omitempty"`
}
