package telegram

import (
	"strings"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// Update is the subset of a Bot API update the assistant consumes.
type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

// User is a Telegram account.
type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// Chat is the conversation a message belongs to.
type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

// PhotoSize is one resolution of an uploaded photo.
type PhotoSize struct {
	FileID   string `json:"file_id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	FileSize int    `json:"file_size,omitempty"`
}

// Message is an inbound or sent message.
type Message struct {
	MessageID int         `json:"message_id"`
	From      *User       `json:"from,omitempty"`
	Chat      Chat        `json:"chat"`
	Text      string      `json:"text,omitempty"`
	Caption   string      `json:"caption,omitempty"`
	Photo     []PhotoSize `json:"photo,omitempty"`
}

// CallbackQuery is a button tap.
type CallbackQuery struct {
	ID      string   `json:"id"`
	From    User     `json:"from"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data,omitempty"`
}

// Event converts an update into a domain event. ok is false for updates the
// assistant ignores (edits, channel posts, messages from bots, group chats).
func (u Update) Event() (ev domain.Event, ok bool) {
	switch {
	case u.CallbackQuery != nil:
		q := u.CallbackQuery
		if q.From.IsBot || q.Data == "" {
			return domain.Event{}, false
		}
		ev = domain.Event{
			Sender:     sender(q.From),
			Token:      q.Data,
			CallbackID: q.ID,
		}
		if q.Message != nil {
			ev.MessageID = q.Message.MessageID
		}
		return ev, true

	case u.Message != nil:
		m := u.Message
		if m.From == nil || m.From.IsBot || m.Chat.Type != "private" {
			return domain.Event{}, false
		}
		ev = domain.Event{
			Sender: sender(*m.From),
			Text:   strings.TrimSpace(m.Text),
		}
		if len(m.Photo) > 0 {
			// Sizes are ordered smallest first.
			ev.Attachment = m.Photo[len(m.Photo)-1].FileID
			if ev.Text == "" {
				ev.Text = strings.TrimSpace(m.Caption)
			}
		}
		return ev, ev.Text != "" || ev.Attachment != ""
	}
	return domain.Event{}, false
}

func sender(u User) domain.Sender {
	return domain.Sender{
		ExternalID: u.ID,
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
	}
}

// InlineKeyboardButton is the wire form of domain.Button.
type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
	URL          string `json:"url,omitempty"`
}

// InlineKeyboardMarkup is the wire form of a reply keyboard.
type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// MaxCallbackData is the Bot API limit on callback_data, in bytes.
const MaxCallbackData = 64

// markup converts a keyboard, rejecting tokens the API would refuse.
func markup(rows [][]domain.Button) (*InlineKeyboardMarkup, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	kb := &InlineKeyboardMarkup{InlineKeyboard: make([][]InlineKeyboardButton, 0, len(rows))}
	for _, row := range rows {
		out := make([]InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			if len(b.Token) > MaxCallbackData {
				return nil, &TokenTooLongError{Label: b.Label, Token: b.Token}
			}
			out = append(out, InlineKeyboardButton{Text: b.Label, CallbackData: b.Token, URL: b.URL})
		}
		kb.InlineKeyboard = append(kb.InlineKeyboard, out)
	}
	return kb, nil
}
