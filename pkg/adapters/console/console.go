// Package console runs the assistant in a terminal for local development.
//
// Console implements ports.Notifier by printing replies with numbered
// buttons; typing a number taps the matching button. Every other line is
// delivered as free text from a single local sender.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Commands understood by the input loop.
const (
	QuitCommand  = "/quit"
	PhotoCommand = "/photo"
)

// Handler consumes the events typed at the console.
type Handler interface {
	Dispatch(ctx context.Context, ev domain.Event) error
}

// Console is a terminal notifier and input loop.
type Console struct {
	in     io.Reader
	out    io.Writer
	sender domain.Sender
	render func(string) (string, error)
	color  termenv.Profile

	mu      sync.Mutex
	buttons []domain.Button
	lastID  int
}

// Option configures the Console.
type Option func(*Console)

// WithRenderer renders reply text before printing, e.g. with NewRenderer.
func WithRenderer(render func(string) (string, error)) Option {
	return func(c *Console) {
		c.render = render
	}
}

// WithColorProfile overrides the detected color profile.
func WithColorProfile(p termenv.Profile) Option {
	return func(c *Console) {
		c.color = p
	}
}

// New creates a console reading from in and writing to out on behalf of sender.
func New(in io.Reader, out io.Writer, sender domain.Sender, opts ...Option) *Console {
	c := &Console{
		in:     in,
		out:    out,
		sender: sender,
		color:  termenv.Ascii,
	}
	if f, ok := out.(*os.File); ok && Interactive(f) {
		c.color = termenv.EnvColorProfile()
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Interactive reports whether f is attached to a terminal.
func Interactive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// NewRenderer returns a markdown renderer using glamour with a style picked
// from the terminal background.
func NewRenderer() (func(string) (string, error), error) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
	if err != nil {
		return nil, err
	}
	return r.Render, nil
}

// Send implements ports.Notifier. The chat ID is ignored; the console has a
// single participant.
func (c *Console) Send(ctx context.Context, chatID int64, reply *domain.Reply) (domain.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	text := reply.Text
	if c.render != nil {
		if rendered, err := c.render(text); err == nil {
			text = rendered
		}
	}
	fmt.Fprintln(c.out, strings.TrimSpace(text))
	if reply.Photo != "" {
		fmt.Fprintln(c.out, c.color.String("[photo "+reply.Photo+"]").Faint())
	}

	c.buttons = c.buttons[:0]
	for _, row := range reply.Keyboard {
		cells := make([]string, 0, len(row))
		for _, b := range row {
			c.buttons = append(c.buttons, b)
			label := fmt.Sprintf("[%d] %s", len(c.buttons), b.Label)
			if b.URL != "" {
				label += " <" + b.URL + ">"
			}
			cells = append(cells, c.color.String(label).Foreground(c.color.Color("#38bdf8")).String())
		}
		fmt.Fprintln(c.out, "  "+strings.Join(cells, "  "))
	}

	c.lastID++
	return domain.Receipt{MessageID: c.lastID}, nil
}

// event turns one input line into an event. ok is false for blank lines.
func (c *Console) event(line string) (domain.Event, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return domain.Event{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(c.buttons) {
		b := c.buttons[n-1]
		if b.Token != "" {
			return domain.Event{Sender: c.sender, Token: b.Token, MessageID: c.lastID}, true
		}
	}
	if rest, found := strings.CutPrefix(line, PhotoCommand+" "); found {
		return domain.Event{Sender: c.sender, Attachment: strings.TrimSpace(rest)}, true
	}
	return domain.Event{Sender: c.sender, Text: line}, true
}

// Run opens the root screen and feeds typed lines to h until EOF, the quit
// command or ctx cancellation.
func (c *Console) Run(ctx context.Context, h Handler) error {
	if err := h.Dispatch(ctx, domain.Event{Sender: c.sender, Text: domain.StartCommand}); err != nil {
		return err
	}

	lines := make(chan string)
	errs := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errs <- scanner.Err()
	}()

	for {
		fmt.Fprint(c.out, "> ")
		select {
		case <-ctx.Done():
			return nil
		case err := <-errs:
			return err
		case line := <-lines:
			if strings.TrimSpace(line) == QuitCommand {
				return nil
			}
			ev, ok := c.event(line)
			if !ok {
				continue
			}
			if err := h.Dispatch(ctx, ev); err != nil {
				fmt.Fprintln(c.out, c.color.String("error: "+err.Error()).Foreground(c.color.Color("#f87171")))
			}
		}
	}
}
