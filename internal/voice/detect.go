package voice

import (
	"os/exec"
	"time"

	"go.uber.org/zap"

	"github.com/samsaffron/jarvis/internal/config"
	"github.com/samsaffron/jarvis/internal/logging"
)

var lookPath = exec.LookPath

// Detect probes for a dictation backend. It returns nil when dictation is
// disabled, no recorder program is installed, or transcription has no
// credential, so callers can hide the feature.
func Detect(cfg config.VoiceConfig, logger *zap.Logger) Recognizer {
	logger = logging.OrNop(logger)
	if !cfg.Enabled {
		return nil
	}
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		logger.Debug("dictation unavailable: no transcription credential")
		return nil
	}

	rec, ok := findRecorder(cfg.Recorder)
	if !ok {
		logger.Debug("dictation unavailable: no recorder found", zap.String("configured", cfg.Recorder))
		return nil
	}

	maxDuration := time.Duration(cfg.MaxSeconds) * time.Second
	return NewCommandRecognizer(rec, NewWhisperTranscriber(cfg), maxDuration, logger)
}

func findRecorder(configured string) (Recorder, bool) {
	if configured != "" {
		rec, ok := recorderByName(configured)
		if !ok {
			return Recorder{}, false
		}
		if path, err := lookPath(configured); err == nil {
			rec.Name = path
			return rec, true
		}
		return Recorder{}, false
	}
	for _, rec := range knownRecorders {
		if path, err := lookPath(rec.Name); err == nil {
			rec.Name = path
			return rec, true
		}
	}
	return Recorder{}, false
}
