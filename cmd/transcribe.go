package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samsaffron/jarvis/internal/signal"
	"github.com/samsaffron/jarvis/internal/voice"
)

var (
	transcribeLanguage  string
	transcribePorcelain bool
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <file>",
	Short: "Transcribe an audio file to text using Whisper",
	Long: `Transcribe an audio file with the endpoint configured for dictation.

The language defaults to the one of voice.locale.`,
	Args: cobra.ExactArgs(1),
	RunE: runTranscribe,
}

func init() {
	transcribeCmd.Flags().StringVar(&transcribeLanguage, "language", "", "Language hint for transcription (e.g. \"en\", \"ja\")")
	transcribeCmd.Flags().BoolVar(&transcribePorcelain, "porcelain", false, "Output only the transcript text")

	rootCmd.AddCommand(transcribeCmd)
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context())
	defer stop()

	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Voice.APIKey == "" && cfg.Voice.BaseURL == "" {
		return fmt.Errorf("no transcription credential: set OPENAI_API_KEY, voice.api_key or voice.base_url")
	}

	filePath := args[0]
	mimeType, err := voice.AudioMimeType(filePath)
	if err != nil {
		return err
	}

	language := strings.TrimSpace(transcribeLanguage)
	if language == "" {
		language = voice.Language(cfg.Voice.Locale)
	}

	if !transcribePorcelain {
		fmt.Fprintf(cmd.ErrOrStderr(), "Transcribing %s (%s)...\n", filepath.Base(filePath), mimeType)
	}

	text, err := voice.NewWhisperTranscriber(cfg.Voice).Transcribe(ctx, filePath, language)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
