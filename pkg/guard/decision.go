package guard

import (
	"context"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/navpath"
)

// Decision is the verdict of a guard.
type Decision struct {
	Proceed  bool
	Response *domain.Reply
}

// Continue lets the request through.
func Continue() Decision {
	return Decision{Proceed: true}
}

// Stop short-circuits the chain; reply, if not nil, is sent to the user.
func Stop(reply *domain.Reply) Decision {
	return Decision{Response: reply}
}

// Route is the declaration of the screen a request targets.
type Route struct {
	Name        string
	Permissions []string
	EntryGate   bool
}

// Request flows through the guards into the handler. Guards enrich it:
// Access fills Identity, Profile and Permissions.
type Request struct {
	Event       domain.Event
	Path        navpath.Path
	Route       Route
	Identity    *domain.Identity
	Profile     *domain.OperatorProfile
	Permissions domain.Permissions
}

// ExternalID returns the chat identifier of the sender.
func (r *Request) ExternalID() int64 {
	return r.Event.Sender.ExternalID
}

// Outcome is what the dispatcher delivers after the chain ran.
type Outcome struct {
	Reply    *domain.Reply
	Redirect *navpath.Path
}

// Func is a single guard.
type Func func(ctx context.Context, req *Request) (Decision, error)

// Handler renders the screen once every guard let the request through.
type Handler func(ctx context.Context, req *Request) (Outcome, error)

// SessionClearer drops the open form session of an identity.
type SessionClearer interface {
	Clear(ctx context.Context, externalID int64) error
}
