package form_test

import (
	"testing"

	"github.com/aretw0/wayfinder/pkg/form"
	"github.com/stretchr/testify/assert"
)

func TestSummary_OmitsSkippedAndUnvisited(t *testing.T) {
	schema := form.Schema{Fields: []form.Field{
		{Name: "workshop", Title: "Workshop"},
		{Name: "manager", Title: "Manager"},
		{Name: "contact", Title: "Contact"},
		{Name: "reason", Title: "Reason"},
	}}
	sess := &form.Session{Fields: map[string]form.Entry{
		"reason":   form.Answered("Noise"),
		"manager":  form.Skipped(),
		"workshop": form.Labeled("3", "North"),
	}}

	assert.Equal(t, "Workshop: North\nReason: Noise", form.Summary(schema, sess))
}

func TestSession_Accessors(t *testing.T) {
	sess := &form.Session{Fields: map[string]form.Entry{
		"id":      form.Labeled("42", "North"),
		"skipped": form.Skipped(),
		"text":    form.Answered("abc"),
	}}

	id, ok := sess.Int64("id")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	_, ok = sess.Int64("text")
	assert.False(t, ok)

	_, ok = sess.Value("skipped")
	assert.False(t, ok)
	assert.Nil(t, sess.Ptr("skipped"))

	e, ok := sess.Lookup("skipped")
	assert.True(t, ok, "skipped fields were visited")
	assert.Nil(t, e.Value)
}
