package voice

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/samsaffron/jarvis/internal/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

type stubTranscriber struct {
	text     string
	err      error
	language string
	calls    int
}

func (s *stubTranscriber) Transcribe(ctx context.Context, path, language string) (string, error) {
	s.calls++
	s.language = language
	return s.text, s.err
}

// writeClip returns a run func that writes size bytes to the output path,
// which every known recorder receives as an argument ending in .wav.
func writeClip(size int, stderr string, runErr error) runFunc {
	return func(ctx context.Context, name string, args ...string) ([]byte, error) {
		for _, arg := range args {
			if strings.HasSuffix(arg, ".wav") {
				if err := os.WriteFile(arg, make([]byte, size), 0600); err != nil {
					return nil, err
				}
			}
		}
		return []byte(stderr), runErr
	}
}

func newTestRecognizer(t *testing.T, run runFunc, tr Transcriber) *CommandRecognizer {
	t.Helper()
	rec, ok := recorderByName("arecord")
	if !ok {
		t.Fatal("arecord recorder missing")
	}
	r := NewCommandRecognizer(rec, tr, 2*time.Second, nil)
	r.tempDir = t.TempDir()
	r.run = run
	return r
}

func TestRecognizeReturnsTranscript(t *testing.T) {
	tr := &stubTranscriber{text: "  open the pod bay doors  "}
	r := newTestRecognizer(t, writeClip(32000, "", nil), tr)

	got, err := r.Recognize(context.Background(), "en-US")
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if got != "open the pod bay doors" {
		t.Fatalf("Recognize = %q", got)
	}
	if tr.language != "en" {
		t.Fatalf("language = %q, want en", tr.language)
	}

	entries, _ := os.ReadDir(r.tempDir)
	if len(entries) != 0 {
		t.Fatalf("temp clip not removed: %d entries", len(entries))
	}
}

func TestRecognizeShortClipIsNoSpeech(t *testing.T) {
	tr := &stubTranscriber{text: "ignored"}
	r := newTestRecognizer(t, writeClip(44, "", nil), tr)

	_, err := r.Recognize(context.Background(), "en-US")
	if ReasonOf(err) != ReasonNoSpeech {
		t.Fatalf("reason = %q, want no-speech (err=%v)", ReasonOf(err), err)
	}
	if tr.calls != 0 {
		t.Fatal("transcriber should not run for an empty clip")
	}
}

func TestRecognizeEmptyTranscriptIsNoSpeech(t *testing.T) {
	r := newTestRecognizer(t, writeClip(32000, "", nil), &stubTranscriber{text: "   "})

	_, err := r.Recognize(context.Background(), "en-US")
	if ReasonOf(err) != ReasonNoSpeech {
		t.Fatalf("reason = %q, want no-speech", ReasonOf(err))
	}
}

func TestRecognizeRecorderFailures(t *testing.T) {
	exitErr := errors.New("exit status 1")
	tests := []struct {
		name   string
		stderr string
		err    error
		want   Reason
	}{
		{"missing device", "arecord: main:850: audio open error: No such file or directory", exitErr, ReasonNoMicrophone},
		{"no card", "ALSA lib confmisc.c:855: cannot find card '0'", exitErr, ReasonNoMicrophone},
		{"permission", "arecord: audio open error: Permission denied", exitErr, ReasonPermissionDenied},
		{"binary vanished", "", exec.ErrNotFound, ReasonNoMicrophone},
		{"unknown", "something odd", exitErr, ReasonOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRecognizer(t, writeClip(0, tt.stderr, tt.err), &stubTranscriber{})
			_, err := r.Recognize(context.Background(), "en-US")
			if got := ReasonOf(err); got != tt.want {
				t.Fatalf("reason = %q, want %q (err=%v)", got, tt.want, err)
			}
		})
	}
}

func TestRecognizeTranscriptionFailureIsOther(t *testing.T) {
	r := newTestRecognizer(t, writeClip(32000, "", nil), &stubTranscriber{err: errors.New("whisper API error 500")})

	_, err := r.Recognize(context.Background(), "en-US")
	if ReasonOf(err) != ReasonOther {
		t.Fatalf("reason = %q, want other", ReasonOf(err))
	}
}

func TestRecognizeCancelledEndsWithoutResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	run := func(ctx context.Context, name string, args ...string) ([]byte, error) {
		cancel()
		return nil, errors.New("signal: killed")
	}
	r := newTestRecognizer(t, run, &stubTranscriber{text: "unused"})

	got, err := r.Recognize(ctx, "en-US")
	if err != nil || got != "" {
		t.Fatalf("Recognize = %q, %v; want natural end", got, err)
	}
}

func TestAlertText(t *testing.T) {
	tests := map[Reason]string{
		ReasonNoSpeech:         "Voice recognition failed. No speech was detected.",
		ReasonNoMicrophone:     "Voice recognition failed. No microphone was found.",
		ReasonPermissionDenied: "Voice recognition failed. Microphone permission was denied.",
		ReasonOther:            "Voice recognition failed. Please try again.",
	}
	for reason, want := range tests {
		if got := AlertText(&CaptureError{Reason: reason}); got != want {
			t.Errorf("AlertText(%s) = %q, want %q", reason, got, want)
		}
	}
	if got := AlertText(errors.New("plain")); got != tests[ReasonOther] {
		t.Errorf("AlertText(plain) = %q", got)
	}
}

func TestLanguage(t *testing.T) {
	for locale, want := range map[string]string{"en-US": "en", "en_GB": "en", "FR": "fr", "": ""} {
		if got := Language(locale); got != want {
			t.Errorf("Language(%q) = %q, want %q", locale, got, want)
		}
	}
}

func TestDetect(t *testing.T) {
	orig := lookPath
	t.Cleanup(func() { lookPath = orig })

	installed := map[string]bool{}
	lookPath = func(file string) (string, error) {
		if installed[file] {
			return "/usr/bin/" + file, nil
		}
		return "", exec.ErrNotFound
	}

	cfg := config.VoiceConfig{Enabled: true, APIKey: "sk-test", MaxSeconds: 5, Model: "whisper-1"}

	if Detect(cfg, nil) != nil {
		t.Fatal("expected nil recognizer without any recorder")
	}

	installed["rec"] = true
	r := Detect(cfg, nil)
	if r == nil {
		t.Fatal("expected recognizer when sox is installed")
	}
	if r.Name() != "rec" {
		t.Fatalf("recognizer = %q, want rec", r.Name())
	}

	installed["arecord"] = true
	if r := Detect(cfg, nil); r == nil || r.Name() != "arecord" {
		t.Fatalf("expected arecord to be preferred, got %v", r)
	}

	cfg.Recorder = "ffmpeg"
	if Detect(cfg, nil) != nil {
		t.Fatal("configured recorder that is not installed must disable dictation")
	}

	cfg.Recorder = ""
	cfg.APIKey = ""
	if Detect(cfg, nil) != nil {
		t.Fatal("expected nil recognizer without transcription credential")
	}

	cfg.APIKey = "sk-test"
	cfg.Enabled = false
	if Detect(cfg, nil) != nil {
		t.Fatal("expected nil recognizer when disabled")
	}
}

func TestWhisperTranscriber(t *testing.T) {
	var gotPath, gotLanguage, gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotLanguage = r.FormValue("language")
		gotModel = r.FormValue("model")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"text":" Good evening, JARVIS. "}`)
	}))
	defer srv.Close()

	clip := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(clip, make([]byte, 2048), 0600); err != nil {
		t.Fatal(err)
	}

	tr := NewWhisperTranscriber(config.VoiceConfig{APIKey: "sk-test", BaseURL: srv.URL, Model: "whisper-1"})
	got, err := tr.Transcribe(context.Background(), clip, "en")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if got != "Good evening, JARVIS." {
		t.Fatalf("Transcribe = %q", got)
	}
	if gotPath != "/audio/transcriptions" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotLanguage != "en" || gotModel != "whisper-1" {
		t.Fatalf("language=%q model=%q", gotLanguage, gotModel)
	}
}

func TestWhisperTranscriberRejectsUnknownExtension(t *testing.T) {
	tr := NewWhisperTranscriber(config.VoiceConfig{APIKey: "sk-test"})
	if _, err := tr.Transcribe(context.Background(), "notes.txt", "en"); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}
