package form

import (
	"context"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/navpath"
)

// Input is what the identity sent for the current step, plus who sent it.
type Input struct {
	Sender     domain.Sender
	Identity   *domain.Identity
	Profile    *domain.OperatorProfile
	Text       string
	Attachment string
}

// Scope gives prompts, captures and commits access to the caller and the
// answers collected so far.
type Scope struct {
	Input
	Path    navpath.Path
	Session *Session
}

// Answer is the raw reply to a field.
type Answer struct {
	// Text is the typed text, or the option value when Chosen is set.
	Text       string
	Attachment string
	Chosen     bool
}

// Option is a selectable answer rendered as a button.
// Values must be safe for navigation tokens (identifiers, slugs).
type Option struct {
	Label string
	Value string
}

// Prompt is the question of a field.
type Prompt struct {
	Text    string
	Options []Option
	Columns int
}

type (
	PromptFunc  func(ctx context.Context, s *Scope) (Prompt, error)
	CaptureFunc func(ctx context.Context, s *Scope, a Answer) (Entry, error)
	OptionsFunc func(ctx context.Context, s *Scope) ([]Option, error)
	CommitFunc  func(ctx context.Context, s *Scope) (*domain.Reply, error)
	CheckFunc   func(ctx context.Context, s *Scope) error
	FooterFunc  func(ctx context.Context, s *Scope) string
)

// Field is one step of a form.
type Field struct {
	Name      string
	Title     string
	Skippable bool
	Prompt    PromptFunc
	Capture   CaptureFunc
}

// Schema describes a form.
type Schema struct {
	Kind   string
	Title  string
	Fields []Field

	// Precheck runs before the first step. Returning an AbortError refuses
	// to open the form.
	Precheck CheckFunc

	// Commit performs the side effects once the summary is confirmed. A nil
	// reply redirects to the parent screen.
	Commit CommitFunc

	// Footer is appended to the summary screen.
	Footer FooterFunc
}

func (s Schema) index(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}
