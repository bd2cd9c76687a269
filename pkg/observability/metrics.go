package observability

import (
	"context"
	"strconv"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the assistant counters.
type Metrics struct {
	Events          *prometheus.CounterVec
	GuardDecisions  *prometheus.CounterVec
	Failures        *prometheus.CounterVec
	FormTransitions *prometheus.CounterVec
	Deliveries      *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wayfinder_events_total",
			Help: "Inbound events by resolved route and kind (tap or message).",
		}, []string{"route", "tap"}),
		GuardDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wayfinder_guard_decisions_total",
			Help: "Guard decisions by guard, route and outcome.",
		}, []string{"guard", "route", "proceed"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wayfinder_failures_total",
			Help: "Unexpected errors contained by the guard chain.",
		}, []string{"route"}),
		FormTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wayfinder_form_transitions_total",
			Help: "Form state machine transitions.",
		}, []string{"form", "transition"}),
		Deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wayfinder_deliveries_total",
			Help: "Outgoing messages by result.",
		}, []string{"result"}),
	}
	for _, c := range []prometheus.Collector{m.Events, m.GuardDecisions, m.Failures, m.FormTransitions, m.Deliveries} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns callbacks that record metrics.
func (m *Metrics) Hooks() domain.Hooks {
	return domain.Hooks{
		OnInbound: func(ctx context.Context, e *domain.InboundEvent) {
			m.Events.WithLabelValues(e.Route, strconv.FormatBool(e.Tap)).Inc()
		},
		OnGuardDecision: func(ctx context.Context, e *domain.GuardEvent) {
			m.GuardDecisions.WithLabelValues(e.Guard, e.Route, strconv.FormatBool(e.Proceed)).Inc()
		},
		OnFailure: func(ctx context.Context, e *domain.FailureEvent) {
			m.Failures.WithLabelValues(e.Route).Inc()
		},
		OnFormTransition: func(ctx context.Context, e *domain.FormEvent) {
			m.FormTransitions.WithLabelValues(e.Form, e.Transition).Inc()
		},
	}
}

// Delivered records the result of one outgoing message.
func (m *Metrics) Delivered(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Deliveries.WithLabelValues(result).Inc()
}
