package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/samsaffron/jarvis/internal/llm"
	"github.com/samsaffron/jarvis/internal/signal"
	"github.com/samsaffron/jarvis/internal/ui"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask JARVIS a single question",
	Long: `Send one message and print the reply.

Piped input is appended to the question.

Examples:
  jarvis ask "What is the capital of France?"
  cat error.log | jarvis ask "What went wrong?"`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	var stdin io.Reader
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		stdin = os.Stdin
	}
	question, err := buildQuestion(args, stdin)
	if err != nil {
		return err
	}
	if question == "" {
		return fmt.Errorf("nothing to ask: pass a question or pipe input")
	}

	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context())
	defer stop()

	client := llm.NewClient(cfg.OpenRouter, llm.WithLogger(logger))
	reply, err := client.Complete(ctx, []llm.Turn{llm.UserTurn(question, time.Now())})
	if err != nil {
		return errors.New(llm.UserMessage(err))
	}

	out := cmd.OutOrStdout()
	if cfg.UI.Markdown && term.IsTerminal(int(os.Stdout.Fd())) {
		width, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil {
			width = 80
		}
		fmt.Fprintln(out, ui.RenderMarkdown(reply, width))
		return nil
	}
	fmt.Fprintln(out, reply)
	return nil
}

// buildQuestion joins the arguments and, when stdin is not nil, the piped
// input below them.
func buildQuestion(args []string, stdin io.Reader) (string, error) {
	question := strings.TrimSpace(strings.Join(args, " "))
	if stdin == nil {
		return question, nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	piped := strings.TrimSpace(string(data))
	switch {
	case piped == "":
		return question, nil
	case question == "":
		return piped, nil
	default:
		return question + "\n\n" + piped, nil
	}
}
