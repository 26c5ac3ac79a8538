package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xrsl/jobpilot/pkg/ai"
	"github.com/xrsl/jobpilot/pkg/apply"
	"github.com/xrsl/jobpilot/pkg/config"
	"github.com/xrsl/jobpilot/pkg/datastore"
	"github.com/xrsl/jobpilot/pkg/fetch"
	"github.com/xrsl/jobpilot/pkg/gh"
	"github.com/xrsl/jobpilot/pkg/retry"
	"github.com/xrsl/jobpilot/pkg/schema"
	"github.com/xrsl/jobpilot/pkg/search"
	"github.com/xrsl/jobpilot/pkg/store"
	"github.com/xrsl/jobpilot/pkg/style"
)

// openStore opens the checkpoint store under the configured work directory.
func openStore(cfg *config.Config) (*store.FileStore, error) {
	fs, err := store.NewFileStore(cfg.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint store: %w", err)
	}
	return fs, nil
}

// buildDeps assembles the pipeline collaborators from config. The returned
// cleanup closes the AI client and must be called after the run.
func buildDeps(cfg *config.Config, agent string) (apply.Deps, func(), error) {
	var deps apply.Deps

	if agent == "" {
		agent = cfg.Agent
	}
	if agent == "" {
		agent = ai.DefaultAgent()
	}

	client, err := ai.NewClient(agent)
	if err != nil {
		return deps, nil, fmt.Errorf("ai client: %w", err)
	}

	sch, err := schema.Load(cfg.Schema)
	if err != nil {
		client.Close()
		return deps, nil, err
	}

	records, err := datastore.New(filepath.Join(cfg.WorkDir, "records"))
	if err != nil {
		client.Close()
		return deps, nil, err
	}
	records.Validate("analysis", sch.ValidateRecord)

	deps = apply.Deps{
		Generator:    client,
		Fetcher:      fetch.New("jobpilot/" + Version),
		Records:      records,
		Searcher:     search.NewGitHub(gh.New(), cfg.Repos),
		Schema:       sch,
		CVPath:       cfg.CVPath,
		HistoryPath:  cfg.HistoryPath,
		TopN:         cfg.TopN,
		StageTimeout: cfg.StageTimeout,
		Retry:        retry.DefaultConfig(),
	}
	return deps, client.Close, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderReport prints the per-stage outcome table for a workflow.
func renderReport(rep *apply.Report) {
	fmt.Printf("\n%s %s %s\n\n",
		style.B(rep.WorkflowID),
		statusStyled(rep.Status),
		style.C(style.Gray, fmt.Sprintf("v%d", rep.Version)))

	renderStage(rep, apply.StageJobAnalysis, analysisSummary(rep))
	renderStage(rep, apply.StageResumeTailoring, charCount(rep.Resume))
	renderStage(rep, apply.StageCoverLetter, charCount(rep.CoverLetter))
	renderStage(rep, apply.StagePortfolio, snippetSummary(rep))

	if len(rep.Errors) > 0 {
		fmt.Println()
		for _, e := range rep.Errors {
			fmt.Printf("  %s %s: %s\n", style.C(style.Yellow, "!"), e.Stage, e.Message)
		}
	}
	fmt.Println()
}

func renderStage(rep *apply.Report, stage, summary string) {
	if msg, failed := rep.Failed[stage]; failed {
		fmt.Printf("  %s %-17s %s\n", style.C(style.Red, "✗"), stage, style.C(style.Gray, msg))
		return
	}
	if !stageRan(rep, stage) {
		fmt.Printf("  %s %-17s %s\n", style.C(style.Gray, "-"), stage, style.C(style.Gray, "not run"))
		return
	}
	if summary != "" {
		summary = " " + style.C(style.Gray, summary)
	}
	if cacheHit(rep, stage) {
		summary += " " + style.C(style.Cyan, "(cached)")
	}
	fmt.Printf("  %s %-17s%s\n", style.C(style.Green, "✓"), stage, summary)
}

func stageRan(rep *apply.Report, stage string) bool {
	switch stage {
	case apply.StageJobAnalysis:
		return rep.Analysis != nil
	case apply.StageResumeTailoring:
		return rep.Resume != ""
	case apply.StageCoverLetter:
		return rep.CoverLetter != ""
	case apply.StagePortfolio:
		return rep.Portfolio != nil
	}
	return false
}

func cacheHit(rep *apply.Report, stage string) bool {
	for _, s := range rep.CacheHits {
		if s == stage {
			return true
		}
	}
	return false
}

func statusStyled(status string) string {
	switch status {
	case "success":
		return style.C(style.Green, status)
	case "partial_success":
		return style.C(style.Yellow, status)
	case "failed":
		return style.C(style.Red, status)
	default:
		return style.C(style.Cyan, status)
	}
}

func analysisSummary(rep *apply.Report) string {
	if rep.Analysis == nil {
		return ""
	}
	title, _ := rep.Analysis["title"].(string)
	company, _ := rep.Analysis["company"].(string)
	switch {
	case title != "" && company != "":
		return title + " @ " + company
	case title != "":
		return title
	default:
		return company
	}
}

func charCount(content string) string {
	if content == "" {
		return ""
	}
	return fmt.Sprintf("%d chars", len(content))
}

func snippetSummary(rep *apply.Report) string {
	if rep.Portfolio == nil {
		return ""
	}
	return fmt.Sprintf("%d snippets", len(rep.Portfolio))
}
