package form

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Ask is a prompt without options.
func Ask(text string) PromptFunc {
	return func(ctx context.Context, s *Scope) (Prompt, error) {
		return Prompt{Text: text}, nil
	}
}

// Choose is a prompt offering the options returned by options.
func Choose(text string, options OptionsFunc, columns int) PromptFunc {
	return func(ctx context.Context, s *Scope) (Prompt, error) {
		opts, err := options(ctx, s)
		if err != nil {
			return Prompt{}, err
		}
		return Prompt{Text: text, Options: opts, Columns: columns}, nil
	}
}

// Static returns a fixed option list.
func Static(opts ...Option) OptionsFunc {
	return func(ctx context.Context, s *Scope) ([]Option, error) {
		return opts, nil
	}
}

// Text accepts typed text whose length in characters lies in [min, max].
// A zero max means unbounded.
func Text(min, max int, msg string) CaptureFunc {
	return func(ctx context.Context, s *Scope, a Answer) (Entry, error) {
		text := strings.TrimSpace(a.Text)
		n := utf8.RuneCountInString(text)
		if a.Chosen || text == "" || n < min || (max > 0 && n > max) {
			return Entry{}, Invalid(msg)
		}
		return Answered(text), nil
	}
}

// Pattern accepts typed text matching re.
func Pattern(re *regexp.Regexp, msg string) CaptureFunc {
	return func(ctx context.Context, s *Scope, a Answer) (Entry, error) {
		text := strings.TrimSpace(a.Text)
		if a.Chosen || !re.MatchString(text) {
			return Entry{}, Invalid(msg)
		}
		return Answered(text), nil
	}
}

// Choice accepts one of the options, either tapped or typed as its label.
func Choice(options OptionsFunc, msg string) CaptureFunc {
	return func(ctx context.Context, s *Scope, a Answer) (Entry, error) {
		opts, err := options(ctx, s)
		if err != nil {
			return Entry{}, err
		}
		text := strings.TrimSpace(a.Text)
		for _, o := range opts {
			if (a.Chosen && o.Value == text) || (!a.Chosen && strings.EqualFold(o.Label, text)) {
				return Labeled(o.Value, o.Label), nil
			}
		}
		return Entry{}, Invalid(msg)
	}
}

// Attachment accepts an uploaded file and stores its transport identifier.
func Attachment(msg string) CaptureFunc {
	return func(ctx context.Context, s *Scope, a Answer) (Entry, error) {
		if a.Attachment == "" {
			return Entry{}, Invalid(msg)
		}
		return Labeled(a.Attachment, "attached"), nil
	}
}
