package screens

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/form"
	"github.com/aretw0/wayfinder/pkg/guard"
	"github.com/aretw0/wayfinder/pkg/navpath"
	"github.com/aretw0/wayfinder/pkg/paginate"
)

const (
	feedbackInterval = time.Hour
	workdayStart     = 8
	workdayEnd       = 20
	paramID          = "id"
)

func (s *Screens) feedbackMenu(ctx context.Context, req *guard.Request) (guard.Outcome, error) {
	var b buttons
	b.nav("📲 Send a request", req.Path.Push(SegFeedbackNew))
	b.back("⬅️ Back", req.Path)
	if b.err != nil {
		return guard.Outcome{}, b.err
	}
	reply := domain.NewReply("*📞 Feedback*\n\nLeave a request and a manager will call you back.").
		Grid(1, b.take()...)
	return guard.Outcome{Reply: reply}, nil
}

func (s *Screens) feedbackSchema() form.Schema {
	return form.Schema{
		Kind:  "feedback",
		Title: "*📲 Feedback request*",
		Fields: []form.Field{
			{
				Name:    "workshop",
				Title:   "🏎 Workshop",
				Prompt:  form.Choose("Choose the workshop you want to contact.", s.workshopOptions, 2),
				Capture: form.Choice(s.workshopOptions, "Please choose a workshop from the list."),
			},
			{
				Name:      "manager",
				Title:     "👨🏼‍💻 Manager",
				Skippable: true,
				Prompt:    form.Choose("Choose a manager or skip this step.", s.managerOptions, 2),
				Capture:   form.Choice(s.managerOptions, "Please choose a manager from the list."),
			},
			{
				Name:      "contact",
				Title:     "☎️ Contact method",
				Skippable: true,
				Prompt:    form.Choose("How should we contact you? You can skip this step.", s.contactOptions, 2),
				Capture:   form.Choice(s.contactOptions, "Please choose a contact method from the list."),
			},
			{
				Name:      "reason",
				Title:     "💭 Reason",
				Skippable: true,
				Prompt:    form.Ask("Briefly describe the reason for your request or skip this step."),
				Capture:   form.Text(1, 200, "The reason must not exceed 200 characters."),
			},
		},
		Precheck: s.feedbackRateLimit,
		Footer:   func(ctx context.Context, _ *form.Scope) string { return s.waitingTime() },
		Commit:   s.commitFeedback,
	}
}

func (s *Screens) workshopOptions(ctx context.Context, _ *form.Scope) ([]form.Option, error) {
	workshops, err := s.catalog.workshops(ctx)
	if err != nil {
		return nil, err
	}
	opts := make([]form.Option, 0, len(workshops))
	for _, w := range workshops {
		opts = append(opts, form.Option{Label: w.Name, Value: strconv.FormatInt(w.ID, 10)})
	}
	return opts, nil
}

func (s *Screens) managerOptions(ctx context.Context, scope *form.Scope) ([]form.Option, error) {
	workshopID, ok := scope.Session.Int64("workshop")
	if !ok {
		return nil, nil
	}
	managers, err := s.catalog.operatorsOf(ctx, workshopID, domain.RoleManager)
	if err != nil {
		return nil, err
	}
	opts := make([]form.Option, 0, len(managers))
	for _, m := range managers {
		opts = append(opts, form.Option{Label: shortName(m.FullName), Value: strconv.FormatInt(m.ID, 10)})
	}
	return opts, nil
}

func (s *Screens) contactOptions(ctx context.Context, _ *form.Scope) ([]form.Option, error) {
	methods, err := s.catalog.contactMethods(ctx)
	if err != nil {
		return nil, err
	}
	opts := make([]form.Option, 0, len(methods))
	for _, m := range methods {
		opts = append(opts, form.Option{Label: m.Name, Value: strconv.FormatInt(m.ID, 10)})
	}
	return opts, nil
}

func (s *Screens) feedbackRateLimit(ctx context.Context, scope *form.Scope) error {
	ident, err := identityOf(scope)
	if err != nil {
		return err
	}
	recent, err := s.deps.Feedback.ListFeedback(ctx, domain.FeedbackFilter{
		IdentityID: ident.ID,
		Since:      s.now().Add(-feedbackInterval),
	})
	if err != nil {
		return err
	}
	if len(recent) == 0 {
		return nil
	}
	var b buttons
	b.back("⬅️ Back", scope.Path)
	if b.err != nil {
		return b.err
	}
	return form.Abort(domain.NewReply("*⏰ You can send at most one feedback request per hour.*").
		Grid(1, b.take()...))
}

func (s *Screens) waitingTime() string {
	hour := s.now().In(s.loc).Hour()
	if hour >= workdayStart && hour < workdayEnd {
		return "📩 A manager will contact you within 15 minutes."
	}
	return fmt.Sprintf("📩 A manager will contact you at the start of the working day (we work from %d:00 to %d:00).",
		workdayStart, workdayEnd)
}

func (s *Screens) commitFeedback(ctx context.Context, scope *form.Scope) (*domain.Reply, error) {
	ident, err := identityOf(scope)
	if err != nil {
		return nil, err
	}
	sess := scope.Session
	workshopID, ok := sess.Int64("workshop")
	if !ok {
		return nil, errors.New("feedback request without workshop")
	}
	draft := domain.FeedbackRequest{
		IdentityID: ident.ID,
		WorkshopID: workshopID,
		Reason:     sess.Ptr("reason"),
	}
	if id, ok := sess.Int64("manager"); ok {
		draft.OperatorID = &id
	}
	if id, ok := sess.Int64("contact"); ok {
		draft.ContactMethodID = &id
	}
	created, err := s.deps.Feedback.CreateFeedback(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("failed to create feedback request: %w", err)
	}
	s.alertFeedback(ctx, created)

	text := "*✅ Feedback request sent*"
	if summary := form.Summary(s.feedbackForm, sess); summary != "" {
		text += "\n\n" + domain.EscapeMarkdown(summary)
	}
	text += "\n\n" + s.waitingTime()

	var b buttons
	b.back("📞 Back to feedback", scope.Path)
	b.nav("🏠 Main menu", root())
	if b.err != nil {
		return nil, b.err
	}
	return domain.NewReply(text).Grid(1, b.take()...), nil
}

// alertFeedback tells the chosen manager, or every manager of the workshop,
// about a new request.
func (s *Screens) alertFeedback(ctx context.Context, fr *domain.FeedbackRequest) {
	var recipients []domain.OperatorProfile
	if fr.OperatorID != nil {
		op, err := s.deps.Operators.GetOperator(ctx, *fr.OperatorID)
		if err != nil {
			s.logger.Warn("failed to resolve chosen manager", "operator_id", *fr.OperatorID, "err", err)
		} else {
			recipients = append(recipients, *op)
		}
	}
	if len(recipients) == 0 {
		ops, err := s.deps.Operators.ListOperators(ctx, fr.WorkshopID, domain.RoleManager)
		if err != nil {
			s.logger.Warn("failed to list workshop managers", "workshop_id", fr.WorkshopID, "err", err)
			return
		}
		recipients = ops
	}

	body, err := s.describeFeedback(ctx, fr)
	if err != nil {
		s.logger.Warn("failed to describe feedback request", "id", fr.ID, "err", err)
		return
	}
	title := "*🔔 New feedback request*"
	if fr.OperatorID != nil {
		title += "\n\n_The client chose you as their manager._"
	}
	var b buttons
	b.nav("📥 Take", takePath(fr.ID))
	if b.err != nil {
		s.logger.Warn("failed to build alert controls", "id", fr.ID, "err", b.err)
		return
	}
	keys := b.take()
	for _, op := range recipients {
		s.notify(ctx, op.ExternalID, domain.NewReply(title+"\n\n"+body).Grid(1, keys...))
	}
}

func takePath(id int64) navpath.Path {
	return root().Push(SegTake, navpath.Set(paramID, strconv.FormatInt(id, 10)))
}

func donePath(id int64) navpath.Path {
	return root().Push(SegDone, navpath.Set(paramID, strconv.FormatInt(id, 10)))
}

// describeFeedback renders the request details shared by alerts and status updates.
func (s *Screens) describeFeedback(ctx context.Context, fr *domain.FeedbackRequest) (string, error) {
	ident, err := s.deps.Identities.GetIdentity(ctx, fr.IdentityID)
	if err != nil {
		return "", fmt.Errorf("failed to load requester: %w", err)
	}
	workshop := "unknown"
	if w, ok, err := s.catalog.workshop(ctx, fr.WorkshopID); err != nil {
		return "", err
	} else if ok {
		workshop = w.Name
	}
	operator := "not assigned"
	if fr.OperatorID != nil {
		if op, err := s.deps.Operators.GetOperator(ctx, *fr.OperatorID); err == nil {
			operator = op.FullName
		}
	}
	contact := "not specified"
	if fr.ContactMethodID != nil {
		methods, err := s.catalog.contactMethods(ctx)
		if err != nil {
			return "", err
		}
		for _, m := range methods {
			if m.ID == *fr.ContactMethodID {
				contact = m.Name
			}
		}
	}
	reason := "not specified"
	if fr.Reason != nil {
		reason = *fr.Reason
	}
	phone := ident.Phone
	if phone == "" {
		phone = "unknown"
	}

	lines := []string{
		fmt.Sprintf("#️⃣ Request: %d", fr.ID),
		"📲 Phone: " + domain.EscapeMarkdown(phone),
		"🏎 Workshop: " + domain.EscapeMarkdown(workshop),
		"👨🏼‍💻 Manager: " + domain.EscapeMarkdown(operator),
		"☎️ Contact method: " + domain.EscapeMarkdown(contact),
		"💭 Reason: " + domain.EscapeMarkdown(reason),
	}
	return strings.Join(lines, "\n"), nil
}

func requestID(req *guard.Request) (int64, bool) {
	raw, ok := req.Path.Param(paramID)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	return id, err == nil && id > 0
}

func notFoundReply() *domain.Reply {
	var b buttons
	b.nav("🏠 Main menu", root())
	return domain.NewReply("*❌ Feedback request not found*").Grid(1, b.take()...)
}

// transition runs a take or complete operation and renders the shared refusals.
func (s *Screens) transition(ctx context.Context, req *guard.Request,
	apply func(ctx context.Context, id, operatorID int64) (*domain.FeedbackRequest, error),
) (*domain.FeedbackRequest, *domain.Reply, error) {
	id, ok := requestID(req)
	if !ok || req.Profile == nil {
		return nil, notFoundReply(), nil
	}
	fr, err := apply(ctx, id, req.Profile.ID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil, notFoundReply(), nil
	case errors.Is(err, domain.ErrAlreadyTaken):
		holder := "another manager"
		if cur, err := s.deps.Feedback.GetFeedback(ctx, id); err == nil && cur.OperatorID != nil {
			if op, err := s.deps.Operators.GetOperator(ctx, *cur.OperatorID); err == nil {
				holder = domain.EscapeMarkdown(op.FullName)
			}
		}
		var b buttons
		b.nav("🏠 Main menu", root())
		return nil, domain.NewReply("*❌ This request is already handled by "+holder+"*").Grid(1, b.take()...), nil
	case err != nil:
		return nil, nil, err
	}
	return fr, nil, nil
}

func (s *Screens) take(ctx context.Context, req *guard.Request) (guard.Outcome, error) {
	fr, refusal, err := s.transition(ctx, req, s.deps.Feedback.TakeFeedback)
	if err != nil || refusal != nil {
		return guard.Outcome{Reply: refusal}, err
	}
	body, err := s.describeFeedback(ctx, fr)
	if err != nil {
		return guard.Outcome{}, err
	}

	var b buttons
	b.nav("☑️ Mark as done", donePath(fr.ID))
	b.nav("🏠 Main menu", root())
	if b.err != nil {
		return guard.Outcome{}, b.err
	}
	s.notifyRequester(ctx, fr, "*⏳ Your feedback request is being handled*\n\n"+body)
	return guard.Outcome{Reply: domain.NewReply("*📥 You took the request*\n\n"+body).Grid(1, b.take()...)}, nil
}

func (s *Screens) done(ctx context.Context, req *guard.Request) (guard.Outcome, error) {
	fr, refusal, err := s.transition(ctx, req, s.deps.Feedback.CompleteFeedback)
	if err != nil || refusal != nil {
		return guard.Outcome{Reply: refusal}, err
	}
	body, err := s.describeFeedback(ctx, fr)
	if err != nil {
		return guard.Outcome{}, err
	}

	var b buttons
	b.nav("📬 Open requests", root().Push(SegRequests))
	b.nav("🏠 Main menu", root())
	if b.err != nil {
		return guard.Outcome{}, b.err
	}
	s.notifyRequester(ctx, fr, "*☑️ Your feedback request was completed*\n\n"+body)
	return guard.Outcome{Reply: domain.NewReply("*☑️ Request marked as done*\n\n"+body).Grid(1, b.take()...)}, nil
}

func (s *Screens) notifyRequester(ctx context.Context, fr *domain.FeedbackRequest, text string) {
	ident, err := s.deps.Identities.GetIdentity(ctx, fr.IdentityID)
	if err != nil {
		s.logger.Warn("failed to resolve requester", "id", fr.ID, "err", err)
		return
	}
	s.notify(ctx, ident.ExternalID, domain.NewReply(text))
}

// requests lists the open requests visible to the operator, one page at a time.
func (s *Screens) requests(ctx context.Context, req *guard.Request) (guard.Outcome, error) {
	if req.Profile == nil {
		return guard.Outcome{}, errors.New("requests screen without operator profile")
	}
	me := req.Profile.ID
	all, err := s.deps.Feedback.ListFeedback(ctx, domain.FeedbackFilter{
		WorkshopID: req.Profile.WorkshopID,
		OpenOnly:   true,
	})
	if err != nil {
		return guard.Outcome{}, err
	}
	visible := all[:0:0]
	for _, fr := range all {
		if fr.OperatorID == nil || *fr.OperatorID == me {
			visible = append(visible, fr)
		}
	}

	page := paginate.Slice(visible, requestsPerPage, paginate.Current(req.Path, paginate.DefaultParam))
	var text strings.Builder
	fmt.Fprintf(&text, "*📬 Open feedback requests* (%d)\n", page.Total)
	if page.Total == 0 {
		text.WriteString("\n🔎 No open requests")
	}

	var b buttons
	for _, fr := range page.Items {
		workshop := "unknown"
		if w, ok, err := s.catalog.workshop(ctx, fr.WorkshopID); err != nil {
			return guard.Outcome{}, err
		} else if ok {
			workshop = w.Name
		}
		status := "new"
		if fr.TakenAt != nil {
			status = "in progress"
		}
		fmt.Fprintf(&text, "\n#%d · %s · %s · %s", fr.ID, domain.EscapeMarkdown(workshop),
			fr.CreatedAt.In(s.loc).Format("02.01 15:04"), status)
		if fr.TakenAt != nil {
			b.nav(fmt.Sprintf("☑️ #%d", fr.ID), donePath(fr.ID))
		} else {
			b.nav(fmt.Sprintf("📥 #%d", fr.ID), takePath(fr.ID))
		}
	}
	if b.err != nil {
		return guard.Outcome{}, b.err
	}
	reply := domain.NewReply(text.String()).Grid(2, b.take()...)

	controls, err := paginate.Controls(req.Path, page.Number, page.Pages, paginate.DefaultParam)
	if err != nil {
		return guard.Outcome{}, err
	}
	reply.Row(controls...)

	b.back("⬅️ Back", req.Path)
	if b.err != nil {
		return guard.Outcome{}, b.err
	}
	return guard.Outcome{Reply: reply.Row(b.take()...)}, nil
}
