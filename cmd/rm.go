package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xrsl/jobpilot/pkg/config"
	"github.com/xrsl/jobpilot/pkg/pipeline"
	"github.com/xrsl/jobpilot/pkg/style"
)

var rmCmd = &cobra.Command{
	Use:   "rm <workflow-id>",
	Short: "Remove a workflow snapshot",
	Long: `Delete the checkpoint for a workflow. Cached stage records (analysis,
resume, letter, portfolio) are kept: a future run for the same posting
still short-circuits on them.

Examples:
  jobpilot rm wf-5e8f2c`,
	Args: cobra.ExactArgs(1),
	RunE: runRm,
}

func init() {
	rootCmd.AddCommand(rmCmd)
}

func runRm(cmd *cobra.Command, args []string) error {
	workflowID := args[0]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	fs, err := openStore(cfg)
	if err != nil {
		return err
	}

	// Check it exists so the user gets a clear message for typos.
	if _, err := fs.Load(cmd.Context(), workflowID); err != nil {
		if errors.Is(err, pipeline.ErrNotFound) {
			return fmt.Errorf("no workflow %q (see: jobpilot list)", workflowID)
		}
		return err
	}

	if err := fs.Delete(workflowID); err != nil {
		return fmt.Errorf("delete workflow: %w", err)
	}

	fmt.Printf("%s%s\n", style.Success("Deleted"), style.C(style.Cyan, workflowID))
	return nil
}
