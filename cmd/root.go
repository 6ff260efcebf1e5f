package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jarvis",
	Short: "Chat with JARVIS from the terminal",
	Long: `jarvis is a terminal chat client for an OpenRouter-hosted model that
answers in the persona of JARVIS.

Examples:
  jarvis                                # open the chat
  jarvis chat --resume                  # continue the latest conversation
  jarvis ask "summarize today's news"   # one-shot answer
  jarvis history                        # list stored conversations

  jarvis config init                    # store your API key`,
	Args:              cobra.NoArgs,
	RunE:              runChat,
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	SilenceUsage:      true,
}

var (
	debugMode bool
	logFile   string
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Log at debug level")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file ('-' for stderr)")
	addChatFlags(rootCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
