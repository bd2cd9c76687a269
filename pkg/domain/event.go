package domain

import "strings"

// StartCommand is the text command that opens the root screen.
const StartCommand = "/start"

// Sender describes the chat user behind an inbound event.
type Sender struct {
	ExternalID int64  `json:"external_id"`
	Username   string `json:"username,omitempty"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
}

// DisplayName returns the string used to address the sender.
func (s Sender) DisplayName() string {
	switch {
	case s.FirstName != "" && s.LastName != "":
		return s.FirstName + " " + s.LastName
	case s.FirstName != "":
		return s.FirstName
	case s.Username != "":
		return "@" + s.Username
	default:
		return "User"
	}
}

// Event is a single inbound update: either free text (Text, Attachment) or a
// button tap (Token). MessageID refers to the message that carried the tapped
// button so the reply can replace it.
type Event struct {
	Sender     Sender `json:"sender"`
	Text       string `json:"text,omitempty"`
	Token      string `json:"token,omitempty"`
	Attachment string `json:"attachment,omitempty"`
	MessageID  int    `json:"message_id,omitempty"`
	CallbackID string `json:"callback_id,omitempty"`
}

// IsTap reports whether the event is a button tap.
func (e Event) IsTap() bool {
	return e.Token != ""
}

// IsStart reports whether the event is the start command, with or without payload.
func (e Event) IsStart() bool {
	fields := strings.Fields(e.Text)
	return len(fields) > 0 && fields[0] == StartCommand
}

// StartPayload returns the argument following the start command, if any.
func (e Event) StartPayload() string {
	fields := strings.Fields(e.Text)
	if len(fields) < 2 || fields[0] != StartCommand {
		return ""
	}
	return fields[1]
}

// Button is a single inline keyboard control. Exactly one of Token or URL is set.
type Button struct {
	Label string `json:"label"`
	Token string `json:"token,omitempty"`
	URL   string `json:"url,omitempty"`
}

// Reply is an outgoing message. Text is Markdown: bold with *...*, italic
// with _..._ and code with `...`. Text coming from users goes through
// EscapeMarkdown first.
type Reply struct {
	Text     string     `json:"text"`
	Photo    string     `json:"photo,omitempty"`
	Keyboard [][]Button `json:"keyboard,omitempty"`
}

var markdownEscaper = strings.NewReplacer(
	"_", `\_`,
	"*", `\*`,
	"`", "\\`",
	"[", `\[`,
)

// EscapeMarkdown makes s render literally inside Reply text.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// NewReply creates a reply with the given text.
func NewReply(text string) *Reply {
	return &Reply{Text: text}
}

// Row appends a keyboard row, skipping empty rows.
func (r *Reply) Row(buttons ...Button) *Reply {
	if len(buttons) > 0 {
		r.Keyboard = append(r.Keyboard, buttons)
	}
	return r
}

// Grid appends buttons distributed over rows of the given width.
func (r *Reply) Grid(width int, buttons ...Button) *Reply {
	if width < 1 {
		width = 1
	}
	for i := 0; i < len(buttons); i += width {
		end := min(i+width, len(buttons))
		r.Row(buttons[i:end]...)
	}
	return r
}

// Receipt is returned by the notifier after a message was delivered.
type Receipt struct {
	MessageID int `json:"message_id"`
}
