package navpath

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

const (
	segmentSep = "/"
	querySep   = "?"
	pairSep    = "&"
	kvSep      = "="
	reserved   = segmentSep + querySep + pairSep + kvSep
)

var (
	// ErrEmptyPath is returned when encoding a path without segments.
	ErrEmptyPath = errors.New("navpath: path has no segments")
	// ErrInvalidSegment is returned for segments outside [A-Za-z0-9_].
	ErrInvalidSegment = errors.New("navpath: invalid segment")
	// ErrInvalidParam is returned for empty keys or keys/values holding reserved characters.
	ErrInvalidParam = errors.New("navpath: invalid parameter")
	// ErrMalformed is returned when a token does not follow the grammar.
	ErrMalformed = errors.New("navpath: malformed token")
)

// Path is an ordered breadcrumb of screen segments plus the query parameters
// of the last segment.
type Path struct {
	Segments []string
	Params   map[string]string
}

// Start builds a fresh single-segment path rooted at root.
func Start(root string) Path {
	return Path{Segments: []string{root}, Params: map[string]string{}}
}

// Current returns the last segment, or "" for an empty path.
func (p Path) Current() string {
	if len(p.Segments) == 0 {
		return ""
	}
	return p.Segments[len(p.Segments)-1]
}

// Root returns the first segment, or "" for an empty path.
func (p Path) Root() string {
	if len(p.Segments) == 0 {
		return ""
	}
	return p.Segments[0]
}

// Depth returns the number of segments.
func (p Path) Depth() int {
	return len(p.Segments)
}

// Param returns the value of a query parameter of the current segment.
func (p Path) Param(key string) (string, bool) {
	v, ok := p.Params[key]
	return v, ok
}

// Push appends a child segment. The query block is replaced by ops.
func (p Path) Push(segment string, ops ...ParamOp) Path {
	next := Path{
		Segments: append(slices.Clone(p.Segments), segment),
		Params:   map[string]string{},
	}
	apply(next.Params, ops)
	return next
}

// PushMerge appends a child segment keeping the current query block; ops
// overwrite or remove individual keys.
func (p Path) PushMerge(segment string, ops ...ParamOp) Path {
	next := Path{
		Segments: append(slices.Clone(p.Segments), segment),
		Params:   cloneParams(p.Params),
	}
	apply(next.Params, ops)
	return next
}

// Pop removes the last segment together with its params. It returns false
// when the path has a single segment: there is no parent and no back control
// should be rendered.
func (p Path) Pop() (Path, bool) {
	if len(p.Segments) <= 1 {
		return Path{}, false
	}
	return Path{
		Segments: slices.Clone(p.Segments[:len(p.Segments)-1]),
		Params:   map[string]string{},
	}, true
}

// UpdateParams returns the same breadcrumb with a new query block.
// In Merge mode keys not named by ops are preserved.
func (p Path) UpdateParams(mode Mode, ops ...ParamOp) Path {
	next := Path{Segments: slices.Clone(p.Segments)}
	if mode == Merge {
		next.Params = cloneParams(p.Params)
	} else {
		next.Params = map[string]string{}
	}
	apply(next.Params, ops)
	return next
}

// Encode serializes the path into a token. Characters outside the safe
// alphabet are rejected instead of producing a token that cannot be parsed.
func (p Path) Encode() (string, error) {
	if len(p.Segments) == 0 {
		return "", ErrEmptyPath
	}

	var b strings.Builder
	for _, seg := range p.Segments {
		if !validSegment(seg) {
			return "", fmt.Errorf("%w: %q", ErrInvalidSegment, seg)
		}
		b.WriteString(seg)
		b.WriteString(segmentSep)
	}

	if len(p.Params) == 0 {
		return b.String(), nil
	}

	keys := slices.Sorted(maps.Keys(p.Params))
	b.WriteString(querySep)
	for i, k := range keys {
		v := p.Params[k]
		if k == "" || strings.ContainsAny(k, reserved) || strings.ContainsAny(v, reserved) {
			return "", fmt.Errorf("%w: %q=%q", ErrInvalidParam, k, v)
		}
		if i > 0 {
			b.WriteString(pairSep)
		}
		b.WriteString(k)
		b.WriteString(kvSep)
		b.WriteString(v)
	}
	return b.String(), nil
}

// MustEncode is like Encode but panics on error. Use it only with segments
// and values known at compile time or already validated.
func (p Path) MustEncode() string {
	token, err := p.Encode()
	if err != nil {
		panic(err)
	}
	return token
}

// String implements fmt.Stringer. Invalid paths render as "<invalid>".
func (p Path) String() string {
	token, err := p.Encode()
	if err != nil {
		return "<invalid>"
	}
	return token
}

// Decode parses a token produced by Encode.
func Decode(token string) (Path, error) {
	crumbs, query, hasQuery := strings.Cut(token, querySep)
	if !strings.HasSuffix(crumbs, segmentSep) {
		return Path{}, fmt.Errorf("%w: missing trailing slash in %q", ErrMalformed, token)
	}

	parts := strings.Split(strings.TrimSuffix(crumbs, segmentSep), segmentSep)
	for _, seg := range parts {
		if !validSegment(seg) {
			return Path{}, fmt.Errorf("%w: bad segment %q in %q", ErrMalformed, seg, token)
		}
	}

	p := Path{Segments: parts, Params: map[string]string{}}
	if !hasQuery || query == "" {
		return p, nil
	}

	for _, pair := range strings.Split(query, pairSep) {
		k, v, ok := strings.Cut(pair, kvSep)
		if !ok || k == "" || strings.ContainsAny(k+v, reserved) {
			return Path{}, fmt.Errorf("%w: bad pair %q in %q", ErrMalformed, pair, token)
		}
		p.Params[k] = v
	}
	return p, nil
}

func validSegment(seg string) bool {
	if seg == "" {
		return false
	}
	for _, r := range seg {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return true
}

func cloneParams(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	maps.Copy(dst, src)
	return dst
}
