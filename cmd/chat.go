package cmd

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/samsaffron/jarvis/internal/llm"
	"github.com/samsaffron/jarvis/internal/signal"
	"github.com/samsaffron/jarvis/internal/tui/chat"
	"github.com/samsaffron/jarvis/internal/voice"
)

var (
	chatResume  bool
	chatNoVoice bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the JARVIS chat (default)",
	Long: `Open the full-screen chat.

Keyboard shortcuts:
  Enter            Send message
  Alt+Enter        New line (Ctrl+J works in every terminal)
  Ctrl+R           Dictate (Esc stops listening)
  PgUp/PgDn        Scroll the conversation
  Ctrl+K           Start a new conversation
  Ctrl+C           Quit`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
	addChatFlags(chatCmd)
}

func addChatFlags(c *cobra.Command) {
	c.Flags().BoolVar(&chatResume, "resume", false, "Continue the most recent conversation")
	c.Flags().BoolVar(&chatNoVoice, "no-voice", false, "Disable dictation")
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context())
	defer stop()

	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := chat.Options{
		Completer: llm.NewClient(cfg.OpenRouter, llm.WithLogger(logger)),
		Store:     store,
		Locale:    cfg.Voice.Locale,
		Markdown:  cfg.UI.Markdown,
		Logger:    logger,
	}
	if !chatNoVoice {
		opts.Recognizer = voice.Detect(cfg.Voice, logger)
	}

	if chatResume {
		sess, err := store.Latest(ctx)
		if err != nil {
			return fmt.Errorf("failed to load latest session: %w", err)
		}
		if sess != nil {
			turns, err := store.Turns(ctx, sess.ID)
			if err != nil {
				return fmt.Errorf("failed to load session %s: %w", sess.ID, err)
			}
			opts.Session = sess
			opts.Turns = turns
			logger.Info("resuming session", zap.String("session", sess.ID), zap.Int("turns", len(turns)))
		}
	}

	p := tea.NewProgram(chat.New(opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("chat failed: %w", err)
	}
	return nil
}
