package telegram

import "fmt"

// APIError is a non-ok response from the Bot API.
type APIError struct {
	Method      string
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram: %s failed (%d): %s", e.Method, e.Code, e.Description)
}

// TokenTooLongError reports a button whose navigation token exceeds
// MaxCallbackData.
type TokenTooLongError struct {
	Label string
	Token string
}

func (e *TokenTooLongError) Error() string {
	return fmt.Sprintf("telegram: button %q token is %d bytes, limit is %d", e.Label, len(e.Token), MaxCallbackData)
}
