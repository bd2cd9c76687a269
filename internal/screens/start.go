package screens

import (
	"context"
	"fmt"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/guard"
)

func greeting(hour int) string {
	switch {
	case hour < 4 || hour >= 22:
		return "Good night"
	case hour < 12:
		return "Good morning"
	case hour < 18:
		return "Good afternoon"
	default:
		return "Good evening"
	}
}

// start is the main menu. Staff entries appear only with the matching permission.
func (s *Screens) start(ctx context.Context, req *guard.Request) (guard.Outcome, error) {
	hour := s.now().In(s.loc).Hour()
	text := fmt.Sprintf("*%s, %s!*\n\nHow can I help you?", greeting(hour), domain.EscapeMarkdown(req.Event.Sender.DisplayName()))

	home := root()
	var b buttons
	b.nav("📞 Feedback", home.Push(SegFeedback))
	b.nav("🌟 Leave a review", home.Push(SegReview))
	if req.Permissions.Has(domain.PermProcessFeedback) {
		b.nav("📬 Open requests", home.Push(SegRequests))
	}
	if req.Permissions.Has(domain.PermAddUser) {
		b.nav("➕ Invite a user", home.Push(SegInvite))
	}
	if req.Permissions.Has(domain.PermAddMailing) {
		b.nav("📣 New mailing", home.Push(SegMailing))
	}
	if req.Permissions.Has(domain.PermGetStats) {
		b.nav("📊 Statistics", home.Push(SegStats))
	}
	if b.err != nil {
		return guard.Outcome{}, b.err
	}
	return guard.Outcome{Reply: domain.NewReply(text).Grid(1, b.take()...)}, nil
}
