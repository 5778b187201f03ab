// Package main implements the notedraft CLI: a terminal note editor whose
// fields are autosaved as drafts, plus commands to inspect the draft store.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// configPath overrides ~/.config/notedraft/config.yaml
	configPath string
	// logLevel overrides logging.level from config
	logLevel string
	// version information
	version = "dev"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "notedraft",
	Short: "Terminal note editor with draft autosave",
	Long: `notedraft is a terminal note editor. The content of every field is saved
as a draft while you type, and offered back when the editor is reopened.
Submitting a form clears its drafts.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/notedraft/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the notedraft version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "notedraft %s\n", version)
	},
}
