package voice

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/samsaffron/jarvis/internal/config"
)

// Transcriber turns an audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, path, language string) (string, error)
}

// WhisperTranscriber calls an OpenAI-compatible /audio/transcriptions
// endpoint: OpenAI itself, or a local whisper.cpp server via BaseURL.
type WhisperTranscriber struct {
	client openai.Client
	model  string
}

// NewWhisperTranscriber builds a transcriber from the voice config.
func NewWhisperTranscriber(cfg config.VoiceConfig, opts ...option.RequestOption) *WhisperTranscriber {
	reqOpts := []option.RequestOption{option.WithMaxRetries(0)}
	if cfg.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")+"/"))
	}
	reqOpts = append(reqOpts, opts...)

	model := cfg.Model
	if model == "" {
		model = "whisper-1"
	}
	return &WhisperTranscriber{
		client: openai.NewClient(reqOpts...),
		model:  model,
	}
}

// Transcribe uploads the file at path and returns the trimmed transcript.
// Supported formats: flac, mp3, mp4, mpeg, mpga, m4a, ogg, wav, webm.
func (w *WhisperTranscriber) Transcribe(ctx context.Context, path, language string) (string, error) {
	if _, err := AudioMimeType(path); err != nil {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	params := openai.AudioTranscriptionNewParams{
		File:  f,
		Model: openai.AudioModel(w.model),
	}
	if language != "" {
		params.Language = openai.String(language)
	}

	resp, err := w.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("whisper request: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

// AudioMimeType maps a file extension to the MIME type the transcription
// endpoint accepts.
func AudioMimeType(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".ogg":
		return "audio/ogg", nil
	case ".mp3", ".mpga", ".mpeg":
		return "audio/mpeg", nil
	case ".wav":
		return "audio/wav", nil
	case ".m4a", ".mp4":
		return "audio/mp4", nil
	case ".flac":
		return "audio/flac", nil
	case ".webm":
		return "audio/webm", nil
	default:
		return "", fmt.Errorf("unsupported audio extension %q", ext)
	}
}
