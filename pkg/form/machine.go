package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/wayfinder/internal/logging"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/navpath"
)

// Control parameters carried by form tokens.
const (
	ParamOp    = "op"
	ParamStep  = "s"
	ParamValue = "v"

	OpSet     = "set"
	OpSkip    = "skip"
	OpBack    = "back"
	OpCancel  = "cancel"
	OpConfirm = "ok"

	commitStep = "c"
)

// Transition names reported through domain.Hooks.OnFormTransition.
const (
	TransitionBegin    = "begin"
	TransitionCapture  = "capture"
	TransitionSkip     = "skip"
	TransitionBack     = "back"
	TransitionInvalid  = "invalid"
	TransitionStale    = "stale"
	TransitionCommit   = "commit"
	TransitionCancel   = "cancel"
	TransitionAbort    = "abort"
	TransitionRerender = "rerender"
)

// Labels are the texts of the control buttons and the summary header.
type Labels struct {
	Skip        string
	Back        string
	Cancel      string
	Confirm     string
	Review      string
	ErrorPrefix string
}

// DefaultLabels is used when no WithLabels option is given.
var DefaultLabels = Labels{
	Skip:        "Skip »",
	Back:        "« Back",
	Cancel:      "✖ Cancel",
	Confirm:     "✔ Confirm",
	Review:      "Please check your answers:",
	ErrorPrefix: "⚠️ ",
}

// Result is the outcome of a step. Exactly one of Reply or Redirect is set.
type Result struct {
	Reply    *domain.Reply
	Redirect *navpath.Path
}

// Machine drives one form Schema.
type Machine struct {
	schema Schema
	store  *Store
	labels Labels
	hooks  domain.Hooks
	logger *slog.Logger
}

// MachineOption configures a Machine.
type MachineOption func(*Machine)

// WithLabels overrides the control texts.
func WithLabels(l Labels) MachineOption {
	return func(m *Machine) {
		m.labels = l
	}
}

// WithHooks registers observability callbacks.
func WithHooks(h domain.Hooks) MachineOption {
	return func(m *Machine) {
		m.hooks = h
	}
}

// WithLogger configures a logger for the Machine.
func WithLogger(logger *slog.Logger) MachineOption {
	return func(m *Machine) {
		m.logger = logger
	}
}

// NewMachine creates a machine for schema persisting sessions in store.
func NewMachine(schema Schema, store *Store, opts ...MachineOption) *Machine {
	m := &Machine{
		schema: schema,
		store:  store,
		labels: DefaultLabels,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Kind returns the schema kind.
func (m *Machine) Kind() string {
	return m.schema.Kind
}

// Schema returns the driven schema.
func (m *Machine) Schema() Schema {
	return m.schema
}

// Begin opens the form at its first field, replacing any other open form.
func (m *Machine) Begin(ctx context.Context, path navpath.Path, in Input) (Result, error) {
	base := path.UpdateParams(navpath.Replace)
	token, err := base.Encode()
	if err != nil {
		return Result{}, fmt.Errorf("form %s: %w", m.schema.Kind, err)
	}

	id := in.Sender.ExternalID
	if err := m.store.Clear(ctx, id); err != nil {
		return Result{}, err
	}

	sess := &Session{
		Kind:   m.schema.Kind,
		Cursor: CommitCursor,
		Path:   token,
		Fields: map[string]Entry{},
	}
	if len(m.schema.Fields) > 0 {
		sess.Cursor = m.schema.Fields[0].Name
	}
	scope := &Scope{Input: in, Path: base, Session: sess}

	if m.schema.Precheck != nil {
		if err := m.schema.Precheck(ctx, scope); err != nil {
			if a, ok := asAbort(err); ok {
				m.emit(ctx, id, TransitionAbort, "")
				return m.aborted(a, base), nil
			}
			if v, ok := asValidation(err); ok {
				m.emit(ctx, id, TransitionAbort, "")
				return Result{Reply: domain.NewReply(v.Message)}, nil
			}
			return Result{}, err
		}
	}

	if err := m.store.Save(ctx, id, sess); err != nil {
		return Result{}, err
	}
	m.emit(ctx, id, TransitionBegin, sess.Cursor)
	return m.render(ctx, scope, "")
}

// Handle applies one inbound event to the open form. Control operations
// come from the token params of path; free text and attachments from in.
func (m *Machine) Handle(ctx context.Context, path navpath.Path, in Input) (Result, error) {
	op, _ := path.Param(ParamOp)
	step, _ := path.Param(ParamStep)
	base := path.UpdateParams(navpath.Replace)
	id := in.Sender.ExternalID

	if op == OpCancel {
		return m.cancel(ctx, base, id)
	}

	sess, err := m.store.Load(ctx, id)
	if errors.Is(err, ErrNoSession) {
		return m.Begin(ctx, base, in)
	}
	if err != nil {
		return Result{}, err
	}
	if sess.Kind != m.schema.Kind || (op == "" && in.Text == "" && in.Attachment == "") {
		return m.Begin(ctx, base, in)
	}

	scope := &Scope{Input: in, Path: base, Session: sess}
	if sess.Cursor == CommitCursor {
		return m.handleCommit(ctx, scope, op, step)
	}

	idx := m.schema.index(sess.Cursor)
	if idx < 0 {
		m.logger.Warn("form cursor points to unknown field, restarting", "form", m.schema.Kind, "cursor", sess.Cursor)
		return m.Begin(ctx, base, in)
	}
	field := m.schema.Fields[idx]

	if op != "" && step != strconv.Itoa(idx) {
		m.emit(ctx, id, TransitionStale, field.Name)
		return m.render(ctx, scope, "")
	}

	var answer Answer
	switch op {
	case OpBack:
		if idx > 0 {
			sess.Cursor = m.schema.Fields[idx-1].Name
			if err := m.store.Save(ctx, id, sess); err != nil {
				return Result{}, err
			}
			m.emit(ctx, id, TransitionBack, sess.Cursor)
		}
		return m.render(ctx, scope, "")
	case OpSkip:
		if !field.Skippable {
			return m.render(ctx, scope, "")
		}
		return m.advance(ctx, scope, idx, Skipped(), TransitionSkip)
	case OpSet:
		v, _ := path.Param(ParamValue)
		answer = Answer{Text: v, Chosen: true}
	case "":
		answer = Answer{Text: in.Text, Attachment: in.Attachment}
	default:
		m.emit(ctx, id, TransitionStale, field.Name)
		return m.render(ctx, scope, "")
	}

	capture := field.Capture
	if capture == nil {
		capture = Text(1, 0, "Please type an answer.")
	}
	entry, err := capture(ctx, scope, answer)
	if err != nil {
		return m.fail(ctx, scope, field.Name, err)
	}
	return m.advance(ctx, scope, idx, entry, TransitionCapture)
}

func (m *Machine) handleCommit(ctx context.Context, scope *Scope, op, step string) (Result, error) {
	sess := scope.Session
	id := scope.Sender.ExternalID

	if op != "" && step != commitStep {
		m.emit(ctx, id, TransitionStale, "")
		return m.render(ctx, scope, "")
	}

	switch op {
	case OpBack:
		if n := len(m.schema.Fields); n > 0 {
			sess.Cursor = m.schema.Fields[n-1].Name
			if err := m.store.Save(ctx, id, sess); err != nil {
				return Result{}, err
			}
			m.emit(ctx, id, TransitionBack, sess.Cursor)
		}
		return m.render(ctx, scope, "")
	case OpConfirm:
		var reply *domain.Reply
		if m.schema.Commit != nil {
			var err error
			reply, err = m.schema.Commit(ctx, scope)
			if err != nil {
				return m.fail(ctx, scope, "", err)
			}
		}
		if err := m.store.Clear(ctx, id); err != nil {
			return Result{}, err
		}
		m.emit(ctx, id, TransitionCommit, "")
		if reply == nil {
			return m.parent(scope.Path), nil
		}
		return Result{Reply: reply}, nil
	default:
		m.emit(ctx, id, TransitionRerender, "")
		return m.render(ctx, scope, "")
	}
}

func (m *Machine) advance(ctx context.Context, scope *Scope, idx int, entry Entry, transition string) (Result, error) {
	sess := scope.Session
	name := m.schema.Fields[idx].Name
	sess.Fields[name] = entry

	sess.Cursor = CommitCursor
	if idx+1 < len(m.schema.Fields) {
		sess.Cursor = m.schema.Fields[idx+1].Name
	}
	if err := m.store.Save(ctx, scope.Sender.ExternalID, sess); err != nil {
		return Result{}, err
	}
	m.emit(ctx, scope.Sender.ExternalID, transition, name)
	return m.render(ctx, scope, "")
}

func (m *Machine) fail(ctx context.Context, scope *Scope, field string, err error) (Result, error) {
	id := scope.Sender.ExternalID
	if v, ok := asValidation(err); ok {
		m.emit(ctx, id, TransitionInvalid, field)
		return m.render(ctx, scope, v.Message)
	}
	if a, ok := asAbort(err); ok {
		if err := m.store.Clear(ctx, id); err != nil {
			return Result{}, err
		}
		m.emit(ctx, id, TransitionAbort, field)
		return m.aborted(a, scope.Path), nil
	}
	return Result{}, fmt.Errorf("form %s: %w", m.schema.Kind, err)
}

func (m *Machine) cancel(ctx context.Context, base navpath.Path, id int64) (Result, error) {
	if err := m.store.Clear(ctx, id); err != nil {
		return Result{}, err
	}
	m.emit(ctx, id, TransitionCancel, "")
	return m.parent(base), nil
}

// aborted replies with the abort message, or returns to the parent screen
// when there is none.
func (m *Machine) aborted(a *AbortError, base navpath.Path) Result {
	if a.Reply == nil {
		return m.parent(base)
	}
	return Result{Reply: a.Reply}
}

func (m *Machine) parent(base navpath.Path) Result {
	parent, ok := base.Pop()
	if !ok {
		parent = navpath.Start(base.Root())
	}
	return Result{Redirect: &parent}
}

func (m *Machine) render(ctx context.Context, scope *Scope, errMsg string) (Result, error) {
	sess := scope.Session

	var text strings.Builder
	text.WriteString(m.schema.Title)
	if errMsg != "" {
		text.WriteString("\n\n" + m.labels.ErrorPrefix + errMsg)
	}

	reply := &domain.Reply{}
	if sess.Cursor == CommitCursor {
		text.WriteString("\n\n" + m.labels.Review)
		if summary := Summary(m.schema, sess); summary != "" {
			text.WriteString("\n" + domain.EscapeMarkdown(summary))
		}
		if m.schema.Footer != nil {
			if footer := m.schema.Footer(ctx, scope); footer != "" {
				text.WriteString("\n\n" + footer)
			}
		}

		confirm, err := m.control(scope.Path, OpConfirm, commitStep, m.labels.Confirm)
		if err != nil {
			return Result{}, err
		}
		reply.Row(confirm)

		var controls []domain.Button
		if len(m.schema.Fields) > 0 {
			back, err := m.control(scope.Path, OpBack, commitStep, m.labels.Back)
			if err != nil {
				return Result{}, err
			}
			controls = append(controls, back)
		}
		cancel, err := m.control(scope.Path, OpCancel, "", m.labels.Cancel)
		if err != nil {
			return Result{}, err
		}
		reply.Row(append(controls, cancel)...)
		reply.Text = text.String()
		return Result{Reply: reply}, nil
	}

	idx := m.schema.index(sess.Cursor)
	field := m.schema.Fields[idx]
	step := strconv.Itoa(idx)

	fmt.Fprintf(&text, " (%d/%d)", idx+1, len(m.schema.Fields))

	prompt := field.Prompt
	if prompt == nil {
		prompt = Ask(field.Title)
	}
	p, err := prompt(ctx, scope)
	if err != nil {
		return Result{}, fmt.Errorf("form %s: prompt %s: %w", m.schema.Kind, field.Name, err)
	}
	text.WriteString("\n\n" + p.Text)

	options := make([]domain.Button, 0, len(p.Options))
	for _, o := range p.Options {
		token, err := scope.Path.UpdateParams(navpath.Replace,
			navpath.Set(ParamOp, OpSet),
			navpath.Set(ParamStep, step),
			navpath.Set(ParamValue, o.Value),
		).Encode()
		if err != nil {
			return Result{}, fmt.Errorf("form %s: option %q: %w", m.schema.Kind, o.Label, err)
		}
		options = append(options, domain.Button{Label: o.Label, Token: token})
	}
	reply.Grid(max(p.Columns, 1), options...)

	var controls []domain.Button
	if idx > 0 {
		back, err := m.control(scope.Path, OpBack, step, m.labels.Back)
		if err != nil {
			return Result{}, err
		}
		controls = append(controls, back)
	}
	if field.Skippable {
		skip, err := m.control(scope.Path, OpSkip, step, m.labels.Skip)
		if err != nil {
			return Result{}, err
		}
		controls = append(controls, skip)
	}
	reply.Row(controls...)

	cancel, err := m.control(scope.Path, OpCancel, "", m.labels.Cancel)
	if err != nil {
		return Result{}, err
	}
	reply.Row(cancel)

	reply.Text = text.String()
	return Result{Reply: reply}, nil
}

func (m *Machine) control(base navpath.Path, op, step, label string) (domain.Button, error) {
	ops := []navpath.ParamOp{navpath.Set(ParamOp, op)}
	if step != "" {
		ops = append(ops, navpath.Set(ParamStep, step))
	}
	token, err := base.UpdateParams(navpath.Replace, ops...).Encode()
	if err != nil {
		return domain.Button{}, fmt.Errorf("form %s: %w", m.schema.Kind, err)
	}
	return domain.Button{Label: label, Token: token}, nil
}

func (m *Machine) emit(ctx context.Context, externalID int64, transition, field string) {
	m.logger.Debug("form transition", "form", m.schema.Kind, "transition", transition, "field", field, "external_id", externalID)
	if m.hooks.OnFormTransition == nil {
		return
	}
	m.hooks.OnFormTransition(ctx, &domain.FormEvent{
		EventBase: domain.EventBase{
			Timestamp:  time.Now(),
			Type:       domain.EventFormTransition,
			ExternalID: externalID,
		},
		Form:       m.schema.Kind,
		Transition: transition,
		Field:      field,
	})
}
