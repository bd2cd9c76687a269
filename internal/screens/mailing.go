package screens

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/form"
	"github.com/aretw0/wayfinder/pkg/ports"
)

func (s *Screens) mailingSchema() form.Schema {
	return form.Schema{
		Kind:  "mailing",
		Title: "*📣 New mailing*",
		Fields: []form.Field{
			{
				Name:    "text",
				Title:   "📝 Text",
				Prompt:  form.Ask("Type the mailing text."),
				Capture: form.Text(20, 1000, "The mailing text must contain from 20 to 1000 characters."),
			},
			{
				Name:      "image",
				Title:     "🖼 Image",
				Skippable: true,
				Prompt:    form.Ask("Send an image for the mailing or skip this step."),
				Capture:   form.Attachment("Please send an image or skip this step."),
			},
		},
		Commit: s.commitMailing,
	}
}

// BroadcastReport counts the outcome of a broadcast.
type BroadcastReport struct {
	Recipients int
	Delivered  int
	Failed     int
}

// Broadcast sends reply to every recipient with at most limit deliveries in
// flight. Failed deliveries are counted, not fatal; only cancellation of ctx
// stops the broadcast early.
func Broadcast(ctx context.Context, n ports.Notifier, recipients []int64, reply *domain.Reply, limit int) (BroadcastReport, error) {
	var delivered, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(limit, 1))

	for _, chatID := range recipients {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if _, err := n.Send(gctx, chatID, reply); err != nil {
				failed.Add(1)
				return nil
			}
			delivered.Add(1)
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	return BroadcastReport{
		Recipients: len(recipients),
		Delivered:  int(delivered.Load()),
		Failed:     int(failed.Load()),
	}, err
}

func (s *Screens) commitMailing(ctx context.Context, scope *form.Scope) (*domain.Reply, error) {
	text, ok := scope.Session.Value("text")
	if !ok {
		return nil, errors.New("mailing without text")
	}
	m := domain.Mailing{Text: text}
	if photo, ok := scope.Session.Value("image"); ok {
		m.Photo = photo
	}

	identities, err := s.deps.Identities.ListIdentities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipients: %w", err)
	}
	recipients := make([]int64, 0, len(identities))
	for _, ident := range identities {
		recipients = append(recipients, ident.ExternalID)
	}

	report, err := Broadcast(ctx, s.deps.Notifier, recipients, &domain.Reply{Text: domain.EscapeMarkdown(m.Text), Photo: m.Photo}, s.concurrency)
	if err != nil {
		return nil, fmt.Errorf("mailing interrupted after %d deliveries: %w", report.Delivered, err)
	}
	s.logger.Info("mailing sent", "recipients", report.Recipients, "delivered", report.Delivered, "failed", report.Failed)

	var b buttons
	b.nav("🏠 Main menu", root())
	if b.err != nil {
		return nil, b.err
	}
	return domain.NewReply(fmt.Sprintf("*✅ Mailing sent*\n\nDelivered: %d of %d", report.Delivered, report.Recipients)).
		Grid(1, b.take()...), nil
}
