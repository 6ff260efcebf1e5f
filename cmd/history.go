package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/samsaffron/jarvis/internal/llm"
	"github.com/samsaffron/jarvis/internal/session"
	"github.com/samsaffron/jarvis/internal/ui"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [id]",
	Short: "List stored conversations or show one",
	Long: `Without an argument, list stored conversations, most recent first.
With a session ID, print that conversation.

Examples:
  jarvis history
  jarvis history --limit 5
  jarvis history 0b6f8a3e-...`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of conversations to list (0 for all)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if !cfg.Session.Enabled {
		return fmt.Errorf("session history is disabled (session.enabled: false)")
	}
	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		summaries, err := store.List(ctx, session.ListOptions{Limit: historyLimit})
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}
		printSummaries(out, summaries, time.Now())
		return nil
	}

	sess, err := store.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if sess == nil {
		return fmt.Errorf("session %q not found", args[0])
	}
	turns, err := store.Turns(ctx, sess.ID)
	if err != nil {
		return fmt.Errorf("failed to load turns: %w", err)
	}
	printConversation(out, sess, turns)
	return nil
}

func printSummaries(w io.Writer, summaries []session.Summary, now time.Time) {
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No conversations found.")
		return
	}

	fmt.Fprintf(w, "%-36s %-40s %5s %s\n", "ID", "TITLE", "TURNS", "UPDATED")
	fmt.Fprintln(w, strings.Repeat("-", 92))
	for _, s := range summaries {
		title := s.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(w, "%-36s %-40s %5d %s\n",
			s.ID, ui.Truncate(title, 40), s.TurnCount, formatRelativeTime(s.UpdatedAt, now))
	}
}

func printConversation(w io.Writer, sess *session.Session, turns []llm.Turn) {
	title := sess.Title
	if title == "" {
		title = sess.ID
	}
	fmt.Fprintf(w, "# %s\n", title)

	for _, t := range turns {
		speaker := "You"
		if t.Role == llm.RoleAssistant {
			speaker = "JARVIS"
		}
		if t.HasTimestamp() {
			speaker += " (" + t.Timestamp.Local().Format("2006-01-02 15:04") + ")"
		}
		fmt.Fprintf(w, "\n%s:\n%s\n", speaker, t.Content)
	}
}

// formatRelativeTime renders t relative to now, e.g. "5m ago".
func formatRelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Local().Format("2006-01-02")
	}
}
