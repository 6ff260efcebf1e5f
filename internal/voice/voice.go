// Package voice provides one-shot dictation: record a short clip from the
// local microphone and turn it into text.
package voice

import (
	"context"
	"errors"
	"strings"
)

// DefaultLocale is the only dictation locale the chat UI requests.
const DefaultLocale = "en-US"

// UnavailableMessage is shown when dictation is requested on a system where
// no recorder or transcription backend was found at start-up.
const UnavailableMessage = "Voice recognition is not supported on this system. Please install arecord (alsa-utils), sox, or ffmpeg and configure a transcription API key."

// Recognizer captures a single utterance. Recognize blocks until the first
// transcript, an error, or the end of capture. An empty string with a nil
// error means capture ended without a result.
type Recognizer interface {
	Name() string
	Recognize(ctx context.Context, locale string) (string, error)
}

// Reason classifies a capture failure.
type Reason string

const (
	ReasonNoSpeech         Reason = "no-speech"
	ReasonNoMicrophone     Reason = "no-microphone"
	ReasonPermissionDenied Reason = "permission-denied"
	ReasonOther            Reason = "other"
)

// Message is the user-facing explanation for the reason.
func (r Reason) Message() string {
	switch r {
	case ReasonNoSpeech:
		return "No speech was detected."
	case ReasonNoMicrophone:
		return "No microphone was found."
	case ReasonPermissionDenied:
		return "Microphone permission was denied."
	default:
		return "Please try again."
	}
}

// CaptureError is returned by Recognize when dictation fails.
type CaptureError struct {
	Reason Reason
	Err    error
}

func (e *CaptureError) Error() string {
	if e.Err != nil {
		return "voice capture " + string(e.Reason) + ": " + e.Err.Error()
	}
	return "voice capture " + string(e.Reason)
}

func (e *CaptureError) Unwrap() error { return e.Err }

// ReasonOf extracts the capture reason from err, defaulting to ReasonOther.
func ReasonOf(err error) Reason {
	var ce *CaptureError
	if errors.As(err, &ce) {
		return ce.Reason
	}
	return ReasonOther
}

// AlertText is the full alert shown for a failed dictation attempt.
func AlertText(err error) string {
	return "Voice recognition failed. " + ReasonOf(err).Message()
}

// Language returns the primary language subtag of a locale ("en-US" -> "en").
func Language(locale string) string {
	locale = strings.TrimSpace(locale)
	if i := strings.IndexAny(locale, "-_"); i >= 0 {
		locale = locale[:i]
	}
	return strings.ToLower(locale)
}
