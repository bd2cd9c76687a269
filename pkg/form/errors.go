package form

import (
	"errors"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// ValidationError rejects an answer. The step is shown again with Message
// and the session is left untouched.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Invalid returns a ValidationError.
func Invalid(msg string) error {
	return &ValidationError{Message: msg}
}

// AbortError ends the form early. The session is cleared and Reply is sent.
type AbortError struct {
	Reply *domain.Reply
}

func (e *AbortError) Error() string {
	if e.Reply == nil {
		return "form aborted"
	}
	return "form aborted: " + e.Reply.Text
}

// Abort returns an AbortError carrying reply.
func Abort(reply *domain.Reply) error {
	return &AbortError{Reply: reply}
}

func asValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	ok := errors.As(err, &v)
	return v, ok
}

func asAbort(err error) (*AbortError, bool) {
	var a *AbortError
	ok := errors.As(err, &a)
	return a, ok
}
