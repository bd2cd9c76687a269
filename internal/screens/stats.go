package screens

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/guard"
	"github.com/aretw0/wayfinder/pkg/navpath"
)

const (
	paramReport = "r"
	paramPeriod = "p"
)

// ReportKind names a statistics report.
type ReportKind string

const (
	ReportUsers    ReportKind = "users"
	ReportFeedback ReportKind = "feedback"
)

// Period is a reporting window ending now.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

var periods = []struct {
	period Period
	label  string
}{
	{PeriodDay, "Day"},
	{PeriodWeek, "Week"},
	{PeriodMonth, "Month"},
	{PeriodYear, "Year"},
}

// Since returns the start of the window ending at now. Unknown periods
// cover everything.
func (p Period) Since(now time.Time) time.Time {
	switch p {
	case PeriodDay:
		return now.AddDate(0, 0, -1)
	case PeriodWeek:
		return now.AddDate(0, 0, -7)
	case PeriodMonth:
		return now.AddDate(0, -1, 0)
	case PeriodYear:
		return now.AddDate(-1, 0, 0)
	default:
		return time.Time{}
	}
}

type reportFunc func(s *Screens, ctx context.Context, since time.Time) (string, error)

var reports = []struct {
	kind   ReportKind
	label  string
	render reportFunc
}{
	{ReportUsers, "🧑🏼‍💼 Users", (*Screens).usersReport},
	{ReportFeedback, "📞 Feedback requests", (*Screens).feedbackReport},
}

func lookupReport(kind string) (string, reportFunc, bool) {
	for _, r := range reports {
		if string(r.kind) == kind {
			return r.label, r.render, true
		}
	}
	return "", nil, false
}

// stats shows the report list, or the selected report. The report and the
// period live in the path params and survive switching between them.
func (s *Screens) stats(ctx context.Context, req *guard.Request) (guard.Outcome, error) {
	kind, _ := req.Path.Param(paramReport)
	label, render, ok := lookupReport(kind)
	if !ok {
		return s.statsMenu(req)
	}

	now := s.now()
	period, hasPeriod := req.Path.Param(paramPeriod)
	since := Period(period).Since(now)
	body, err := render(s, ctx, since)
	if err != nil {
		return guard.Outcome{}, err
	}

	var text strings.Builder
	fmt.Fprintf(&text, "*📊 Statistics | %s*\n\n", label)
	if since.IsZero() {
		text.WriteString("📅 All time\n\n")
	} else {
		fmt.Fprintf(&text, "📅 From %s to %s\n\n",
			since.In(s.loc).Format("2006-01-02 15:04"), now.In(s.loc).Format("2006-01-02 15:04"))
	}
	text.WriteString(body)

	reply := domain.NewReply(text.String())
	var b buttons
	for _, p := range periods {
		name := p.label
		if hasPeriod && period == string(p.period) {
			name = "▫️ " + name
		}
		b.nav(name, req.Path.UpdateParams(navpath.Merge, navpath.Set(paramPeriod, string(p.period))))
	}
	reply.Grid(2, b.take()...)
	if hasPeriod {
		b.nav("♾ All time", req.Path.UpdateParams(navpath.Merge, navpath.Unset(paramPeriod)))
	}
	b.nav("⬅️ Reports", req.Path.UpdateParams(navpath.Merge, navpath.Unset(paramReport)))
	if b.err != nil {
		return guard.Outcome{}, b.err
	}
	return guard.Outcome{Reply: reply.Grid(1, b.take()...)}, nil
}

func (s *Screens) statsMenu(req *guard.Request) (guard.Outcome, error) {
	var b buttons
	for _, r := range reports {
		b.nav(r.label, req.Path.UpdateParams(navpath.Merge, navpath.Set(paramReport, string(r.kind))))
	}
	reply := domain.NewReply("*📊 Statistics*\n\n🗃 Choose a report.").Grid(2, b.take()...)
	b.back("⬅️ Back", req.Path)
	if b.err != nil {
		return guard.Outcome{}, b.err
	}
	return guard.Outcome{Reply: reply.Row(b.take()...)}, nil
}

// tally counts per operator, grouped by the operator's workshop.
type tally struct {
	counts    map[int64]int
	operators map[int64]*domain.OperatorProfile
}

func newTally() *tally {
	return &tally{counts: map[int64]int{}, operators: map[int64]*domain.OperatorProfile{}}
}

func (s *Screens) count(ctx context.Context, t *tally, operatorID int64, n int) error {
	if _, ok := t.operators[operatorID]; !ok {
		op, err := s.deps.Operators.GetOperator(ctx, operatorID)
		if err != nil {
			return fmt.Errorf("failed to load operator %d: %w", operatorID, err)
		}
		t.operators[operatorID] = op
	}
	t.counts[operatorID] += n
	return nil
}

func (s *Screens) render(ctx context.Context, t *tally, heading string) (string, error) {
	byWorkshop := map[int64][]*domain.OperatorProfile{}
	for id, op := range t.operators {
		if t.counts[id] > 0 && op.WorkshopID != 0 {
			byWorkshop[op.WorkshopID] = append(byWorkshop[op.WorkshopID], op)
		}
	}
	var out strings.Builder
	fmt.Fprintf(&out, "*─── %s ───*\n", heading)
	if len(byWorkshop) == 0 {
		out.WriteString("🔎 No data")
		return out.String(), nil
	}

	ids := make([]int64, 0, len(byWorkshop))
	for id := range byWorkshop {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, wid := range ids {
		ops := byWorkshop[wid]
		slices.SortFunc(ops, func(a, b *domain.OperatorProfile) int { return cmp.Compare(a.ID, b.ID) })
		total := 0
		for _, op := range ops {
			total += t.counts[op.ID]
		}
		name := "unknown"
		if w, ok, err := s.catalog.workshop(ctx, wid); err != nil {
			return "", err
		} else if ok {
			name = w.Name
		}
		fmt.Fprintf(&out, "\n• %s: %d\n", domain.EscapeMarkdown(name), total)
		for _, op := range ops {
			fmt.Fprintf(&out, "╭➤ %s: *%d*\n", domain.EscapeMarkdown(op.FullName), t.counts[op.ID])
		}
	}
	return strings.TrimRight(out.String(), "\n"), nil
}

// usersReport counts identities provisioned through each operator's invites.
func (s *Screens) usersReport(ctx context.Context, since time.Time) (string, error) {
	invites, err := s.deps.Invites.ListInvites(ctx, since)
	if err != nil {
		return "", err
	}
	t := newTally()
	for _, inv := range invites {
		if inv.Activations == 0 {
			continue
		}
		if err := s.count(ctx, t, inv.OperatorID, inv.Activations); err != nil {
			return "", err
		}
	}
	return s.render(ctx, t, "➕ Users added")
}

// feedbackReport counts requests completed by each operator.
func (s *Screens) feedbackReport(ctx context.Context, since time.Time) (string, error) {
	done, err := s.deps.Feedback.ListFeedback(ctx, domain.FeedbackFilter{CompletedOnly: true})
	if err != nil {
		return "", err
	}
	t := newTally()
	for _, fr := range done {
		if fr.OperatorID == nil || fr.CompletedAt == nil || fr.CompletedAt.Before(since) {
			continue
		}
		if err := s.count(ctx, t, *fr.OperatorID, 1); err != nil {
			return "", err
		}
	}
	return s.render(ctx, t, "☑️ Requests completed")
}
