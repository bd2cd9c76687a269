package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// LogHooks returns callbacks that log every event at debug level, and
// refusals at info level.
func LogHooks(logger *slog.Logger) domain.Hooks {
	return domain.Hooks{
		OnInbound: func(ctx context.Context, e *domain.InboundEvent) {
			logger.DebugContext(ctx, "event", "external_id", e.ExternalID, "route", e.Route, "tap", e.Tap)
		},
		OnGuardDecision: func(ctx context.Context, e *domain.GuardEvent) {
			level := slog.LevelDebug
			if !e.Proceed {
				level = slog.LevelInfo
			}
			logger.Log(ctx, level, "guard decision", "external_id", e.ExternalID, "guard", e.Guard, "route", e.Route, "proceed", e.Proceed)
		},
		OnFormTransition: func(ctx context.Context, e *domain.FormEvent) {
			logger.DebugContext(ctx, "form transition", "external_id", e.ExternalID, "form", e.Form, "transition", e.Transition, "field", e.Field)
		},
	}
}
