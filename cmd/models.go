package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/samsaffron/jarvis/internal/llm"
)

var modelsJSON bool

var modelsCmd = &cobra.Command{
	Use:   "models [filter]",
	Short: "List models available through OpenRouter",
	Long: `List the models OpenRouter offers. An optional filter keeps the models
whose ID contains every word of it.

Examples:
  jarvis models
  jarvis models gpt oss
  jarvis models --json`,
	RunE: runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.Flags().BoolVar(&modelsJSON, "json", false, "Output as JSON")
}

// ModelLister is implemented by clients that can list available models.
type ModelLister interface {
	ListModels(ctx context.Context) ([]llm.ModelInfo, error)
}

func runModels(cmd *cobra.Command, args []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	client := llm.NewClient(cfg.OpenRouter, llm.WithLogger(logger))
	return printModels(ctx, cmd.OutOrStdout(), client, strings.Join(args, " "), modelsJSON)
}

func printModels(ctx context.Context, w io.Writer, lister ModelLister, filter string, asJSON bool) error {
	models, err := lister.ListModels(ctx)
	if err != nil {
		return err
	}
	models = llm.FilterModels(models, filter)

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(models)
	}

	if len(models) == 0 {
		fmt.Fprintln(w, "No models found.")
		return nil
	}
	fmt.Fprintf(w, "Available models (%d):\n\n", len(models))
	for _, m := range models {
		if m.OwnedBy != "" {
			fmt.Fprintf(w, "  %s (%s)\n", m.ID, m.OwnedBy)
		} else {
			fmt.Fprintf(w, "  %s\n", m.ID)
		}
	}
	return nil
}
