package llm

import (
	"errors"
	"fmt"
)

// Kinds of completion failure. Match them with errors.Is; use errors.As with
// *CompletionError for the status code and message.
var (
	ErrConfiguration     = errors.New("configuration error")
	ErrAuthentication    = errors.New("authentication error")
	ErrRateLimit         = errors.New("rate limit error")
	ErrServer            = errors.New("server error")
	ErrRequest           = errors.New("request error")
	ErrMalformedResponse = errors.New("malformed response")
	ErrTransport         = errors.New("transport error")
)

// CompletionError is returned by Client.Complete for every failure.
type CompletionError struct {
	Kind       error  // one of the Err* sentinels
	StatusCode int    // HTTP status, 0 when no response was received
	Message    string // human-readable, suitable for showing to the user
	Err        error  // underlying cause, if any
}

func (e *CompletionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CompletionError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// UserMessage returns the message without the underlying cause.
func UserMessage(err error) string {
	var ce *CompletionError
	if errors.As(err, &ce) {
		return ce.Message
	}
	if err == nil {
		return ""
	}
	return "An unexpected error occurred while communicating with JARVIS."
}

// classifyStatus maps a non-2xx HTTP status to a completion error.
func classifyStatus(status int) *CompletionError {
	switch {
	case status == 401:
		return &CompletionError{
			Kind:       ErrAuthentication,
			StatusCode: status,
			Message:    "Invalid API key. Please check your OpenRouter API key configuration.",
		}
	case status == 429:
		return &CompletionError{
			Kind:       ErrRateLimit,
			StatusCode: status,
			Message:    "Rate limit exceeded. Please try again in a moment.",
		}
	case status >= 500:
		return &CompletionError{
			Kind:       ErrServer,
			StatusCode: status,
			Message:    "Server error. Please try again later.",
		}
	default:
		return &CompletionError{
			Kind:       ErrRequest,
			StatusCode: status,
			Message:    fmt.Sprintf("API request failed with status %d", status),
		}
	}
}
