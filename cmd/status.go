package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xrsl/jobpilot/pkg/apply"
	"github.com/xrsl/jobpilot/pkg/config"
	"github.com/xrsl/jobpilot/pkg/pipeline"
)

var statusCmd = &cobra.Command{
	Use:   "status <workflow-id>",
	Short: "Show the state of a workflow",
	Long: `Show the checkpointed state of a workflow: which stages ran, which
failed, cache hits, and the snapshot version.

Examples:
  jobpilot status wf-5e8f2c
  jobpilot status wf-5e8f2c --json`,
	Args: cobra.ExactArgs(1),
	RunE: runStatusCmd,
}

var statusJSON bool

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print the report as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatusCmd(cmd *cobra.Command, args []string) error {
	workflowID := args[0]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	fs, err := openStore(cfg)
	if err != nil {
		return err
	}

	st, err := fs.Load(cmd.Context(), workflowID)
	if err != nil {
		if errors.Is(err, pipeline.ErrNotFound) {
			return fmt.Errorf("no workflow %q (see: jobpilot list)", workflowID)
		}
		return err
	}

	rep := apply.BuildReport(st)
	if statusJSON {
		return printJSON(rep)
	}
	renderReport(rep)
	return nil
}
