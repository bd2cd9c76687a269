package domain

import (
	"context"
	"time"
)

// EventType defines the category of an observability event.
type EventType string

const (
	EventInbound        EventType = "inbound"
	EventGuardDecision  EventType = "guard_decision"
	EventFailure        EventType = "failure"
	EventFormTransition EventType = "form_transition"
)

// EventBase contains common fields for all observability events.
type EventBase struct {
	Timestamp  time.Time `json:"timestamp"`
	Type       EventType `json:"type"`
	ExternalID int64     `json:"external_id"`
}

// InboundEvent is emitted once per dispatched event.
type InboundEvent struct {
	EventBase
	Route string `json:"route"`
	Tap   bool   `json:"tap"`
}

// GuardEvent records a single guard decision.
type GuardEvent struct {
	EventBase
	Guard   string `json:"guard"`
	Route   string `json:"route"`
	Proceed bool   `json:"proceed"`
}

// FailureEvent records an unexpected error contained by the guard chain.
type FailureEvent struct {
	EventBase
	Route string `json:"route"`
	Err   error  `json:"-"`
}

// FormEvent records a form state machine transition.
type FormEvent struct {
	EventBase
	Form       string `json:"form"`
	Transition string `json:"transition"`
	Field      string `json:"field,omitempty"`
}

// Hooks defines callbacks for dispatcher observability.
type Hooks struct {
	OnInbound        func(context.Context, *InboundEvent)
	OnGuardDecision  func(context.Context, *GuardEvent)
	OnFailure        func(context.Context, *FailureEvent)
	OnFormTransition func(context.Context, *FormEvent)
}

// Merge combines two hook sets; both callbacks run when both are set.
func (h Hooks) Merge(other Hooks) Hooks {
	return Hooks{
		OnInbound:        chain(h.OnInbound, other.OnInbound),
		OnGuardDecision:  chain(h.OnGuardDecision, other.OnGuardDecision),
		OnFailure:        chain(h.OnFailure, other.OnFailure),
		OnFormTransition: chain(h.OnFormTransition, other.OnFormTransition),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
