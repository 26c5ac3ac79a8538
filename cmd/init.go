package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xrsl/jobpilot/pkg/ai"
	"github.com/xrsl/jobpilot/pkg/config"
	"github.com/xrsl/jobpilot/pkg/schema"
	"github.com/xrsl/jobpilot/pkg/style"
	"github.com/xrsl/jobpilot/pkg/utils"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize jobpilot for this directory",
	Long: `Initialize jobpilot configuration and work directory.

Creates:
  .jobpilot.yaml          Configuration file
  .jobpilot/workflows/    Checkpointed workflow state
  .jobpilot/records/      Cached stage outputs
  .jobpilot/schema.yaml   Extraction schema (editable)

Run this once per directory you apply from.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	reader := bufio.NewReader(os.Stdin)
	cfg, _ := config.Load()

	fmt.Printf("\n%s\n\n", style.C(style.Gray, "Press Enter to accept defaults shown in brackets."))

	// Step 1: AI agent
	agents := buildAgentList()
	currentAgent := cfg.Agent
	if currentAgent == "" {
		currentAgent = ai.DefaultAgent()
	}
	currentIdx := 0
	for i, a := range agents {
		if a.name == currentAgent {
			currentIdx = i
			break
		}
	}

	fmt.Printf("%s AI agent\n", style.C(style.Green, "?"))
	for i, a := range agents {
		marker := "   "
		if i == currentIdx {
			marker = fmt.Sprintf("  %s", style.C(style.Green, "→"))
		}
		fmt.Printf("%s%s %s", marker, style.C(style.Cyan, strconv.Itoa(i+1)+")"), a.name)
		if a.note != "" {
			fmt.Printf(" %s", style.C(style.Gray, "("+a.note+")"))
		}
		fmt.Println()
	}
	fmt.Printf("\n  Choice %s: ", style.C(style.Cyan, "["+strconv.Itoa(currentIdx+1)+"]"))

	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	selected := currentAgent
	if input != "" {
		if idx, err := strconv.Atoi(input); err == nil && idx >= 1 && idx <= len(agents) {
			selected = agents[idx-1].name
		}
	}
	if err := config.Set("agent", selected); err != nil {
		return err
	}
	fmt.Printf("  Using %s\n\n", style.C(style.Cyan, selected))

	// Step 2: CV path
	cvPath := cfg.CVPath
	if cvPath == "" {
		cvPath = "cv.md"
	}
	fmt.Printf("%s CV file path %s: ", style.C(style.Green, "?"), style.C(style.Cyan, "["+cvPath+"]"))
	input, _ = reader.ReadString('\n')
	if input = strings.TrimSpace(input); input != "" {
		cvPath = input
	}
	if err := config.Set("cv_path", cvPath); err != nil {
		return err
	}
	if !utils.FileExists(cvPath) {
		fmt.Printf("  %s %s does not exist yet\n", style.C(style.Yellow, "!"), cvPath)
	}
	fmt.Println()

	// Step 3: Career history path (optional)
	historyPath := cfg.HistoryPath
	fmt.Printf("%s Career history path %s: ", style.C(style.Green, "?"), style.C(style.Cyan, "[optional]"))
	input, _ = reader.ReadString('\n')
	if input = strings.TrimSpace(input); input != "" {
		historyPath = input
	}
	if historyPath != "" {
		if err := config.Set("history_path", historyPath); err != nil {
			return err
		}
	}
	fmt.Println()

	// Step 4: Portfolio repos (optional, comma separated)
	fmt.Printf("%s Portfolio repos %s: ", style.C(style.Green, "?"), style.C(style.Cyan, "[owner/repo, comma separated, optional]"))
	input, _ = reader.ReadString('\n')
	if input = strings.TrimSpace(input); input != "" {
		repos := strings.Split(input, ",")
		for i := range repos {
			repos[i] = strings.TrimSpace(repos[i])
		}
		cfg.Repos = repos
		cfg.Agent = selected
		cfg.CVPath = cvPath
		cfg.HistoryPath = historyPath
		if err := config.Save(cfg); err != nil {
			return err
		}
	}
	fmt.Println()

	// Work directory structure
	workDir := cfg.WorkDir
	if workDir == "" {
		workDir = ".jobpilot"
	}
	if err := initWorkDir(workDir); err != nil {
		return fmt.Errorf("initialize %s: %w", workDir, err)
	}
	if cfg.Schema == "" {
		if err := config.Set("schema", filepath.Join(workDir, "schema.yaml")); err != nil {
			return err
		}
	}

	fmt.Printf("%s\n", style.B(style.C(style.Green, "Ready!")))
	fmt.Printf("  %s    Run the pipeline for a posting\n", style.C(style.Cyan, "jobpilot run <job-url>"))
	fmt.Printf("  %s               List workflows\n\n", style.C(style.Cyan, "jobpilot list"))
	return nil
}

// initWorkDir creates the checkpoint layout and drops the default extraction
// schema where the user can edit it.
func initWorkDir(workDir string) error {
	for _, sub := range []string{"workflows", "records"} {
		if err := os.MkdirAll(filepath.Join(workDir, sub), 0o755); err != nil {
			return err
		}
	}
	if err := utils.EnsureWorkDirGitignore(workDir); err != nil {
		return err
	}

	schemaPath := filepath.Join(workDir, "schema.yaml")
	if !utils.FileExists(schemaPath) {
		if err := utils.WriteFile(schemaPath, string(schema.DefaultYAML())); err != nil {
			return err
		}
		fmt.Printf("%s %s\n", style.C(style.Green, "✓"), schemaPath)
	}
	return nil
}

type agentOption struct {
	name string
	note string
}

// buildAgentList returns the selectable agents with availability notes.
func buildAgentList() []agentOption {
	var agents []agentOption
	for _, a := range ai.SupportedAgents() {
		note := ""
		switch {
		case ai.IsAgentCLI(a):
			note = "uses the locally installed CLI"
		case strings.HasPrefix(a, "gemini"):
			note = "requires GEMINI_API_KEY"
		case strings.HasPrefix(a, "claude"):
			note = "requires ANTHROPIC_API_KEY"
		}
		agents = append(agents, agentOption{a, note})
	}
	return agents
}
