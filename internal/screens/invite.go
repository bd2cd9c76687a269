package screens

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/form"
)

var phonePattern = regexp.MustCompile(`^(\+?\d{1,4}[\s\-]?)?(\(?\d{1,4}\)?[\s\-]?)?[\d\s\-]{5,15}$`)

func (s *Screens) inviteSchema() form.Schema {
	return form.Schema{
		Kind:  "invite",
		Title: "*➕ Invite a user*",
		Fields: []form.Field{
			{
				Name:    "phone",
				Title:   "📲 Phone",
				Prompt:  form.Ask("Type the phone number of the person you are inviting."),
				Capture: form.Pattern(phonePattern, "The phone number looks wrong, please try again."),
			},
		},
		Commit: s.commitInvite,
	}
}

// InviteLink returns the deep link that activates invite id.
func InviteLink(botUsername, id string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", botUsername, id)
}

func (s *Screens) commitInvite(ctx context.Context, scope *form.Scope) (*domain.Reply, error) {
	if scope.Profile == nil {
		return nil, errors.New("invite without operator profile")
	}
	phone, _ := scope.Session.Value("phone")
	inv, err := s.deps.Invites.CreateInvite(ctx, scope.Profile.ID, domain.IdentityAttrs{Phone: phone}, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}
	link := InviteLink(s.botUsername, inv.ID)

	var b buttons
	b.nav("➕ Invite another", scope.Path)
	b.nav("🏠 Main menu", root())
	if b.err != nil {
		return nil, b.err
	}
	text := fmt.Sprintf("*✅ Invitation created*\n\n📲 Phone: `%s`\n\n🔗 Link: `%s`\n\n🤳🏼 The link works until it is activated once.",
		phone, link)
	return domain.NewReply(text).Grid(1, b.take()...), nil
}
