package voice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/samsaffron/jarvis/internal/logging"
)

// minSpeechBytes is the smallest WAV file treated as containing audio:
// the 44-byte header plus roughly 50ms of 16kHz mono 16-bit samples.
const minSpeechBytes = 44 + 1600

// Recorder describes how to capture a mono 16kHz WAV clip with an external
// program.
type Recorder struct {
	Name string
	Args func(out string, max time.Duration) []string
}

// knownRecorders are probed in order when no recorder is configured.
var knownRecorders = []Recorder{
	{
		Name: "arecord",
		Args: func(out string, max time.Duration) []string {
			return []string{"-q", "-f", "S16_LE", "-r", "16000", "-c", "1", "-t", "wav", "-d", seconds(max), out}
		},
	},
	{
		// sox: stop after 1.5s of silence once speech has started.
		Name: "rec",
		Args: func(out string, max time.Duration) []string {
			return []string{"-q", "-c", "1", "-r", "16000", out, "trim", "0", seconds(max), "silence", "1", "0.1", "1%", "1", "1.5", "1%"}
		},
	},
	{
		Name: "ffmpeg",
		Args: func(out string, max time.Duration) []string {
			format, device := "pulse", "default"
			if runtime.GOOS == "darwin" {
				format, device = "avfoundation", ":0"
			}
			return []string{"-hide_banner", "-loglevel", "error", "-f", format, "-i", device, "-t", seconds(max), "-ac", "1", "-ar", "16000", "-y", out}
		},
	},
}

func seconds(d time.Duration) string {
	s := int(d / time.Second)
	if s < 1 {
		s = 1
	}
	return strconv.Itoa(s)
}

// recorderByName returns the known recorder whose binary base name matches.
func recorderByName(name string) (Recorder, bool) {
	base := filepath.Base(name)
	for _, r := range knownRecorders {
		if r.Name == base {
			r.Name = name
			return r, true
		}
	}
	return Recorder{}, false
}

// runFunc runs a command and returns what it wrote to stderr.
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.Bytes(), err
}

// CommandRecognizer records with an external program, then transcribes.
type CommandRecognizer struct {
	recorder    Recorder
	transcriber Transcriber
	maxDuration time.Duration
	tempDir     string
	run         runFunc
	logger      *zap.Logger
}

// NewCommandRecognizer creates a recognizer around a recorder binary.
func NewCommandRecognizer(rec Recorder, t Transcriber, maxDuration time.Duration, logger *zap.Logger) *CommandRecognizer {
	if maxDuration <= 0 {
		maxDuration = 8 * time.Second
	}
	return &CommandRecognizer{
		recorder:    rec,
		transcriber: t,
		maxDuration: maxDuration,
		run:         runCommand,
		logger:      logging.OrNop(logger),
	}
}

func (r *CommandRecognizer) Name() string {
	return filepath.Base(r.recorder.Name)
}

// Recognize records one clip and returns its transcript. Cancelling ctx while
// recording ends capture without a result.
func (r *CommandRecognizer) Recognize(ctx context.Context, locale string) (string, error) {
	f, err := os.CreateTemp(r.tempDir, "jarvis-dictation-*.wav")
	if err != nil {
		return "", &CaptureError{Reason: ReasonOther, Err: fmt.Errorf("create temp file: %w", err)}
	}
	path := f.Name()
	f.Close()
	defer os.Remove(path)

	r.logger.Debug("dictation started", zap.String("recorder", r.recorder.Name), zap.String("locale", locale))

	stderr, err := r.run(ctx, r.recorder.Name, r.recorder.Args(path, r.maxDuration)...)
	if ctx.Err() != nil {
		r.logger.Debug("dictation ended without result", zap.Error(ctx.Err()))
		return "", nil
	}
	if err != nil {
		reason := classifyRecorderFailure(err, stderr)
		r.logger.Warn("recorder failed",
			zap.String("recorder", r.recorder.Name),
			zap.String("reason", string(reason)),
			zap.ByteString("stderr", stderr),
			zap.Error(err))
		return "", &CaptureError{Reason: reason, Err: err}
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", &CaptureError{Reason: ReasonOther, Err: err}
	}
	if info.Size() < minSpeechBytes {
		return "", &CaptureError{Reason: ReasonNoSpeech}
	}

	text, err := r.transcriber.Transcribe(ctx, path, Language(locale))
	if err != nil {
		if ctx.Err() != nil {
			return "", nil
		}
		r.logger.Warn("transcription failed", zap.Error(err))
		return "", &CaptureError{Reason: ReasonOther, Err: err}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &CaptureError{Reason: ReasonNoSpeech}
	}
	return text, nil
}

// classifyRecorderFailure maps recorder exit errors and diagnostics onto a
// capture reason.
func classifyRecorderFailure(err error, stderr []byte) Reason {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return ReasonNoMicrophone
	}
	if errors.Is(err, os.ErrPermission) {
		return ReasonPermissionDenied
	}
	msg := strings.ToLower(string(stderr) + " " + err.Error())
	switch {
	case strings.Contains(msg, "permission denied"),
		strings.Contains(msg, "not permitted"),
		strings.Contains(msg, "not authorized"):
		return ReasonPermissionDenied
	case strings.Contains(msg, "no such device"),
		strings.Contains(msg, "no such file or directory"),
		strings.Contains(msg, "audio open error"),
		strings.Contains(msg, "cannot find card"),
		strings.Contains(msg, "no default audio device"),
		strings.Contains(msg, "input/output error"),
		strings.Contains(msg, "connection refused"):
		return ReasonNoMicrophone
	default:
		return ReasonOther
	}
}
