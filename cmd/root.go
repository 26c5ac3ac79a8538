package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	clog "github.com/xrsl/jobpilot/pkg/log"
	"github.com/xrsl/jobpilot/pkg/style"
)

var (
	quiet   bool
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "jobpilot",
	Short: "A resumable AI pipeline for job applications",
	Long: `jobpilot runs a checkpointed pipeline against a job posting URL:
analyze the posting, tailor your CV, draft a cover letter, and pull
matching snippets from your portfolio.

Every stage transition is persisted, so an interrupted run picks up where
it left off, and a failed stage never blocks the ones that can still run.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		clog.SetVerbose(verbose)
		clog.SetQuiet(quiet)
	},
}

func Execute() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Setup Typer-style help formatting
	style.SetupHelp(rootCmd)

	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}
