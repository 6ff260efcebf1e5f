package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/samsaffron/jarvis/internal/config"
	"github.com/samsaffron/jarvis/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage jarvis configuration",
	Long: `View or create your jarvis configuration.

Examples:
  jarvis config                       # show current config
  jarvis config path                  # print the config file path
  jarvis config init                  # write a config file interactively`,
	RunE: configShow, // Default to show
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print configuration file path",
	RunE:  configPath,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file",
	Long: `Prompt for the OpenRouter API key and write a configuration file with
the default settings. Leave the key empty to keep reading it from
OPENROUTER_API_KEY.`,
	RunE: configInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
}

func configShow(cmd *cobra.Command, args []string) error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !config.Exists() {
		fmt.Fprintf(out, "# No config file (using defaults)\n")
		fmt.Fprintf(out, "# Create one with: jarvis config init\n\n")
	} else {
		fmt.Fprintf(out, "# %s\n\n", configPath)
	}
	return writeConfig(out, cfg)
}

// writeConfig prints cfg as YAML with credentials masked, noting where an
// unset key is expected to come from.
func writeConfig(w io.Writer, cfg *config.Config) error {
	data, err := yaml.Marshal(cfg.Masked())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return err
	}

	var notes []string
	if cfg.OpenRouter.APIKey == "" {
		notes = append(notes, "# openrouter.api_key: NOT SET - export OPENROUTER_API_KEY")
	}
	if cfg.Voice.APIKey == "" && cfg.Voice.BaseURL == "" {
		notes = append(notes, "# voice.api_key: NOT SET - dictation needs OPENAI_API_KEY or voice.base_url")
	}
	if len(notes) > 0 {
		fmt.Fprintf(w, "\n%s\n", strings.Join(notes, "\n"))
	}
	return nil
}

func configPath(cmd *cobra.Command, args []string) error {
	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func configInit(cmd *cobra.Command, args []string) error {
	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}

	if config.Exists() {
		overwrite := false
		confirm := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("%s already exists. Overwrite it?", path)).
				Value(&overwrite),
		))
		if err := confirm.Run(); err != nil {
			return promptError(err)
		}
		if !overwrite {
			fmt.Fprintln(cmd.ErrOrStderr(), "Cancelled.")
			return nil
		}
	}

	cfg := config.Default()
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("OpenRouter API key").
			Description("Leave empty to use OPENROUTER_API_KEY from the environment.").
			EchoMode(huh.EchoModePassword).
			Value(&cfg.OpenRouter.APIKey),
		huh.NewConfirm().
			Title("Render JARVIS replies as markdown?").
			Value(&cfg.UI.Markdown),
	))
	if err := form.Run(); err != nil {
		return promptError(err)
	}
	cfg.OpenRouter.APIKey = strings.TrimSpace(cfg.OpenRouter.APIKey)

	if err := config.Save(cfg); err != nil {
		return err
	}
	fmt.Fprintln(cmd.ErrOrStderr(), ui.DefaultStyles().FormatResult(true, "Wrote "+path))
	return nil
}

func promptError(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return fmt.Errorf("cancelled")
	}
	return err
}
