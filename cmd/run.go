package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/xrsl/jobpilot/pkg/apply"
	"github.com/xrsl/jobpilot/pkg/config"
	"github.com/xrsl/jobpilot/pkg/pipeline"
	"github.com/xrsl/jobpilot/pkg/signal"
	"github.com/xrsl/jobpilot/pkg/store"
	"github.com/xrsl/jobpilot/pkg/style"
	"github.com/xrsl/jobpilot/pkg/utils"
)

var (
	runWorkflowID string
	runResume     bool
	runDeadline   time.Duration
	runTopN       int
	runAgent      string
	runOutputDir  string
	runDryRun     bool
	runEphemeral  bool
)

var runCmd = &cobra.Command{
	Use:   "run <job-url>",
	Short: "Run the application pipeline for a job posting",
	Long: `Run the full pipeline for a job posting URL: analyze the posting,
tailor the CV, draft a cover letter, and collect portfolio snippets.

State is checkpointed after every stage. Re-running with --resume and the
workflow id continues an interrupted run; stages that already produced a
result are skipped.

Examples:
  jobpilot run https://example.com/jobs/123
  jobpilot run https://example.com/jobs/123 --deadline 10m
  jobpilot run https://example.com/jobs/123 --resume --workflow-id wf-abc`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runWorkflowID, "workflow-id", "", "Workflow id (minted when omitted)")
	runCmd.Flags().BoolVar(&runResume, "resume", false, "Resume an interrupted workflow")
	runCmd.Flags().DurationVar(&runDeadline, "deadline", 0, "Overall run deadline (e.g. 10m)")
	runCmd.Flags().IntVar(&runTopN, "top-n", 0, "Portfolio snippets to return (overrides config)")
	runCmd.Flags().StringVar(&runAgent, "agent", "", "AI agent (overrides config)")
	runCmd.Flags().StringVarP(&runOutputDir, "output", "o", "", "Write stage outputs to this directory")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Validate and show the plan without running")
	runCmd.Flags().BoolVar(&runEphemeral, "ephemeral", false, "Keep workflow state in memory only (no checkpoint file)")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	jobURL := args[0]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if runTopN > 0 {
		cfg.TopN = runTopN
	}
	deadline := runDeadline
	if deadline == 0 {
		deadline = cfg.Deadline
	}

	if runDryRun {
		return printPlan(cfg, jobURL)
	}

	deps, cleanup, err := buildDeps(cfg, runAgent)
	if err != nil {
		return err
	}
	defer cleanup()

	var st pipeline.Store
	if runEphemeral {
		st = store.NewMemStore()
	} else {
		fs, err := openStore(cfg)
		if err != nil {
			return err
		}
		st = fs
	}
	runner, err := apply.NewRunner(deps, st)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext()
	defer cancel()

	rep, err := runner.Run(ctx, apply.Request{
		JobURL:     jobURL,
		WorkflowID: runWorkflowID,
		Resume:     runResume,
		Deadline:   deadline,
	})
	if err != nil {
		return err
	}

	renderReport(rep)

	if runOutputDir != "" {
		if err := writeOutputs(runOutputDir, rep); err != nil {
			return err
		}
	}
	if rep.Status == "failed" {
		return fmt.Errorf("workflow %s failed", rep.WorkflowID)
	}
	return nil
}

// printPlan validates the request and shows what a run would do, without
// touching the network or the AI client.
func printPlan(cfg *config.Config, jobURL string) error {
	if err := apply.ValidateJobURL(jobURL); err != nil {
		return err
	}
	if runResume && runWorkflowID == "" {
		return fmt.Errorf("--resume requires --workflow-id")
	}

	agent := runAgent
	if agent == "" {
		agent = cfg.Agent
	}

	fmt.Printf("\n%s\n", style.B("Plan"))
	fmt.Printf("  %-10s %s\n", "url", style.C(style.Cyan, jobURL))
	fmt.Printf("  %-10s %s\n", "agent", agent)
	fmt.Printf("  %-10s %s\n", "cv", orUnset(cfg.CVPath))
	fmt.Printf("  %-10s %s\n", "work dir", cfg.WorkDir)
	fmt.Printf("  %-10s %d\n", "top-n", cfg.TopN)
	fmt.Printf("\n%s\n", style.B("Stages"))
	for _, stage := range []string{
		apply.StageJobAnalysis,
		apply.StageResumeTailoring,
		apply.StageCoverLetter,
		apply.StagePortfolio,
	} {
		fmt.Printf("  %s\n", style.C(style.Cyan, stage))
	}
	fmt.Println()
	return nil
}

func orUnset(s string) string {
	if s == "" {
		return style.C(style.Gray, "(not set)")
	}
	return s
}

// writeOutputs saves the successful stage outputs as files for editing.
func writeOutputs(dir string, rep *apply.Report) error {
	write := func(name, content string) error {
		if content == "" {
			return nil
		}
		path := filepath.Join(dir, name)
		if err := utils.WriteFile(path, content); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Printf("%s%s\n", style.Success("Wrote"), path)
		return nil
	}

	if err := write("resume.md", rep.Resume); err != nil {
		return err
	}
	if err := write("cover_letter.md", rep.CoverLetter); err != nil {
		return err
	}
	if rep.Analysis != nil {
		data, err := json.MarshalIndent(rep.Analysis, "", "  ")
		if err != nil {
			return err
		}
		if err := write("analysis.json", string(data)+"\n"); err != nil {
			return err
		}
	}
	if len(rep.Portfolio) > 0 {
		var sb []byte
		for _, sn := range rep.Portfolio {
			sb = append(sb, fmt.Sprintf("## %s\n\n```\n%s\n```\n\n", sn.Source, sn.Content)...)
		}
		if err := write("portfolio.md", string(sb)); err != nil {
			return err
		}
	}
	return nil
}
