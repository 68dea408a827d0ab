package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for beforeiplay.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "beforeiplay",
		Short: "Mirror BeforeIPlay game articles as Markdown files",
		Long: `beforeiplay downloads the game articles listed on the BeforeIPlay wiki
and stores each one as a Markdown file under <output-dir>/<letter>/<title>.md.

Games whose file already exists are skipped, so an interrupted run can be
started again and continues where it stopped. A courtesy delay is kept
between page requests.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewScrapeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
