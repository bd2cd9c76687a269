package screens

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/form"
)

var ratingOptions = func() []form.Option {
	opts := make([]form.Option, 0, 5)
	for n := 5; n >= 1; n-- {
		opts = append(opts, form.Option{Label: strings.Repeat("⭐️", n), Value: strconv.Itoa(n)})
	}
	return opts
}()

func (s *Screens) reviewSchema() form.Schema {
	return form.Schema{
		Kind:  "review",
		Title: "*🌟 Review*",
		Fields: []form.Field{
			{
				Name:    "workshop",
				Title:   "🏎 Workshop",
				Prompt:  form.Choose("Which workshop would you like to review?", s.workshopOptions, 2),
				Capture: s.captureReviewWorkshop,
			},
			{
				Name:      "text",
				Title:     "💬 Review",
				Skippable: true,
				Prompt:    form.Ask("Tell us about your visit or skip this step."),
				Capture:   form.Text(20, 2000, "The review must contain from 20 to 2000 characters."),
			},
			{
				Name:    "rating",
				Title:   "⭐️ Rating",
				Prompt:  form.Choose("Rate the workshop.", form.Static(ratingOptions...), 1),
				Capture: captureRating,
			},
		},
		Commit: s.commitReview,
	}
}

// captureReviewWorkshop accepts a workshop the identity has not reviewed yet.
func (s *Screens) captureReviewWorkshop(ctx context.Context, scope *form.Scope, a form.Answer) (form.Entry, error) {
	entry, err := form.Choice(s.workshopOptions, "Please choose a workshop from the list.")(ctx, scope, a)
	if err != nil {
		return entry, err
	}
	ident, err := identityOf(scope)
	if err != nil {
		return form.Entry{}, err
	}
	workshopID, err := strconv.ParseInt(*entry.Value, 10, 64)
	if err != nil {
		return form.Entry{}, err
	}
	reviewed, err := s.deps.Reviews.HasReview(ctx, ident.ID, workshopID)
	if err != nil {
		return form.Entry{}, err
	}
	if !reviewed {
		return entry, nil
	}

	w, _, err := s.catalog.workshop(ctx, workshopID)
	if err != nil {
		return form.Entry{}, err
	}
	var b buttons
	b.link("🗺 Rate us on the map", w.MapsURL)
	b.nav("🏠 Main menu", root())
	if b.err != nil {
		return form.Entry{}, b.err
	}
	text := "*🏆 You have already reviewed this workshop!*"
	if w.MapsURL != "" {
		text += "\n\n🤩 You can also rate us on the map."
	}
	return form.Entry{}, form.Abort(domain.NewReply(text).Grid(1, b.take()...))
}

func captureRating(ctx context.Context, scope *form.Scope, a form.Answer) (form.Entry, error) {
	entry, err := form.Choice(form.Static(ratingOptions...), "Please rate from 1 to 5 stars.")(ctx, scope, a)
	if err != nil {
		return entry, err
	}
	return form.Labeled(*entry.Value, fmt.Sprintf("%s (%s)", *entry.Value, entry.Display)), nil
}

func (s *Screens) commitReview(ctx context.Context, scope *form.Scope) (*domain.Reply, error) {
	ident, err := identityOf(scope)
	if err != nil {
		return nil, err
	}
	sess := scope.Session
	workshopID, ok := sess.Int64("workshop")
	if !ok {
		return nil, errors.New("review without workshop")
	}
	rating, ok := sess.Int64("rating")
	if !ok {
		return nil, errors.New("review without rating")
	}
	review, err := s.deps.Reviews.CreateReview(ctx, domain.Review{
		IdentityID: ident.ID,
		WorkshopID: workshopID,
		Text:       sess.Ptr("text"),
		Rating:     int(rating),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save review: %w", err)
	}

	w, _, err := s.catalog.workshop(ctx, workshopID)
	if err != nil {
		return nil, err
	}
	s.alertReview(ctx, ident, w, review)

	var b buttons
	b.link("🗺 Rate us on the map", w.MapsURL)
	b.nav("🏠 Main menu", root())
	if b.err != nil {
		return nil, b.err
	}
	text := "*🎉 Review saved. Thank you, every rating matters to us!*\n\n" + domain.EscapeMarkdown(form.Summary(s.reviewForm, sess))
	return domain.NewReply(text).Grid(1, b.take()...), nil
}

// alertReview forwards a review to management.
func (s *Screens) alertReview(ctx context.Context, ident *domain.Identity, w domain.Workshop, r *domain.Review) {
	text := "not specified"
	if r.Text != nil {
		text = *r.Text
	}
	body := strings.Join([]string{
		"*🌟 New review*",
		"",
		"📲 Phone: " + domain.EscapeMarkdown(ident.Phone),
		"🏎 Workshop: " + domain.EscapeMarkdown(w.Name),
		"💬 Review: " + domain.EscapeMarkdown(text),
		fmt.Sprintf("⭐️ Rating: %d", r.Rating),
	}, "\n")

	for _, role := range []string{domain.RoleCEO, domain.RoleCTO} {
		ops, err := s.deps.Operators.ListOperators(ctx, 0, role)
		if err != nil {
			s.logger.Warn("failed to list management", "role", role, "err", err)
			continue
		}
		for _, op := range ops {
			s.notify(ctx, op.ExternalID, domain.NewReply(body))
		}
	}
}
