package form

import "strconv"

// CommitCursor marks a session waiting for confirmation.
const CommitCursor = "__commit__"

// Entry is a collected answer. A nil Value means the field was explicitly
// skipped; a field never visited has no Entry at all.
type Entry struct {
	Value   *string `json:"value"`
	Display string  `json:"display,omitempty"`
}

// Answered builds an entry whose display text equals the value.
func Answered(value string) Entry {
	return Entry{Value: &value, Display: value}
}

// Labeled builds an entry with a separate display text.
func Labeled(value, display string) Entry {
	return Entry{Value: &value, Display: display}
}

// Skipped builds an explicitly skipped entry.
func Skipped() Entry {
	return Entry{}
}

// Session is the in-progress state of one form for one identity.
type Session struct {
	Kind   string           `json:"kind"`
	Cursor string           `json:"cursor"`
	Path   string           `json:"path"`
	Fields map[string]Entry `json:"fields"`
}

// Lookup returns the entry of a field and whether it was visited.
func (s *Session) Lookup(name string) (Entry, bool) {
	e, ok := s.Fields[name]
	return e, ok
}

// Value returns the answer of a field. It reports false for fields that were
// skipped or never visited.
func (s *Session) Value(name string) (string, bool) {
	e, ok := s.Fields[name]
	if !ok || e.Value == nil {
		return "", false
	}
	return *e.Value, true
}

// Int64 parses the answer of a field as an identifier.
func (s *Session) Int64(name string) (int64, bool) {
	v, ok := s.Value(name)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Ptr returns the answer as a pointer, nil when skipped or never visited.
func (s *Session) Ptr(name string) *string {
	v, ok := s.Value(name)
	if !ok {
		return nil
	}
	return &v
}
