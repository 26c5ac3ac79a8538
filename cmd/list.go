package cmd

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/xrsl/jobpilot/pkg/apply"
	"github.com/xrsl/jobpilot/pkg/config"
	"github.com/xrsl/jobpilot/pkg/style"
)

var listStatus string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List checkpointed workflows",
	Long: `List all workflows with a snapshot in the work directory.

Examples:
  jobpilot list
  jobpilot list --status in_progress`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listStatus, "status", "", "Filter by status (success|partial_success|failed|in_progress)")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	fs, err := openStore(cfg)
	if err != nil {
		return err
	}

	ids, err := fs.List()
	if err != nil {
		return fmt.Errorf("list workflows: %w", err)
	}
	if len(ids) == 0 {
		fmt.Println("No workflows. Start one: jobpilot run <job-url>")
		return nil
	}

	// Table header
	fmt.Printf("%s%s%-40s | %-15s | %-35s | %s%s\n", style.Bold, style.Cyan, "Workflow", "Status", "Role", "Ver", style.Reset)
	fmt.Printf("%s%s%s\n", style.Cyan, strings.Repeat("-", 104), style.Reset)

	shown := 0
	for _, id := range ids {
		st, err := fs.Load(cmd.Context(), id)
		if err != nil {
			fmt.Printf("%-40s | %s\n", id, style.C(style.Red, "unreadable: "+err.Error()))
			continue
		}
		rep := apply.BuildReport(st)
		if listStatus != "" && rep.Status != listStatus {
			continue
		}

		role := analysisSummary(rep)
		if utf8.RuneCountInString(role) > 35 {
			role = string([]rune(role)[:35])
		}
		fmt.Printf("%-40s | %s%-15s%s | %-35s | v%d\n",
			id, statusColor(rep.Status), rep.Status, style.Reset, role, rep.Version)
		shown++
	}

	if shown == 0 && listStatus != "" {
		fmt.Printf("No workflows with status %q\n", listStatus)
	}
	return nil
}

func statusColor(status string) string {
	switch status {
	case "success":
		return style.Green
	case "partial_success":
		return style.Yellow
	case "failed":
		return style.Red
	default:
		return style.Cyan
	}
}
