package form

import "strings"

// Summary lists the answered fields in schema order as "<title>: <display>".
// Skipped and unvisited fields are omitted.
func Summary(schema Schema, sess *Session) string {
	var lines []string
	for _, f := range schema.Fields {
		e, ok := sess.Fields[f.Name]
		if !ok || e.Value == nil {
			continue
		}
		display := e.Display
		if display == "" {
			display = *e.Value
		}
		lines = append(lines, f.Title+": "+display)
	}
	return strings.Join(lines, "\n")
}
