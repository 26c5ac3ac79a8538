package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/xrsl/jobpilot/pkg/ai"
	"github.com/xrsl/jobpilot/pkg/config"
	"github.com/xrsl/jobpilot/pkg/style"
	"github.com/xrsl/jobpilot/pkg/utils"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check system setup for jobpilot run",
	Long:  `Verify the dependencies and configuration needed for jobpilot run.`,
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	fmt.Printf("%s Checking jobpilot setup\n\n", style.C(style.Blue, "→"))

	allGood := true

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	// Check 1: configured agent is usable
	agent := cfg.Agent
	if agent == "" {
		agent = ai.DefaultAgent()
	}
	if ai.IsAgentSupported(agent) {
		fmt.Printf("%s agent %s available\n", style.C(style.Green, "✓"), agent)
	} else {
		fmt.Printf("%s agent %s not usable\n", style.C(style.Red, "✗"), agent)
		if ai.IsAgentCLI(agent) {
			fmt.Printf("  Install the matching CLI, or: jobpilot config set agent <agent>\n")
		} else {
			fmt.Printf("  Fix: jobpilot config set agent <agent>\n")
		}
		allGood = false
	}

	// Check 2: gh CLI for the portfolio stage
	if _, err := exec.LookPath("gh"); err != nil {
		fmt.Printf("%s gh not found in PATH (portfolio stage will fail)\n", style.C(style.Yellow, "⚠"))
	} else {
		fmt.Printf("%s gh installed\n", style.C(style.Green, "✓"))
	}

	// Check 3: CV file exists
	if cfg.CVPath == "" {
		fmt.Printf("%s cv_path not set (resume_tailoring will fail)\n", style.C(style.Red, "✗"))
		fmt.Printf("  Fix: jobpilot config set cv_path <path>\n")
		allGood = false
	} else if !utils.FileExists(cfg.CVPath) {
		fmt.Printf("%s cv_path %s does not exist\n", style.C(style.Red, "✗"), cfg.CVPath)
		allGood = false
	} else {
		fmt.Printf("%s cv_path %s\n", style.C(style.Green, "✓"), cfg.CVPath)
	}

	// Check 4: work directory initialized
	if utils.FileExists(cfg.WorkDir + "/.gitignore") {
		fmt.Printf("%s work dir %s initialized\n", style.C(style.Green, "✓"), cfg.WorkDir)
	} else {
		fmt.Printf("%s work dir %s not initialized (run: jobpilot init)\n", style.C(style.Yellow, "⚠"), cfg.WorkDir)
	}

	fmt.Println()

	// Check API credentials
	fmt.Printf("%s Checking API credentials\n\n", style.C(style.Blue, "→"))

	hasAnthropicKey := os.Getenv("ANTHROPIC_API_KEY") != ""
	hasGeminiKey := os.Getenv("GEMINI_API_KEY") != ""

	if hasAnthropicKey {
		fmt.Printf("%s ANTHROPIC_API_KEY set\n", style.C(style.Green, "✓"))
	} else {
		fmt.Printf("%s ANTHROPIC_API_KEY not set (required for claude-* agents)\n", style.C(style.Yellow, "⚠"))
	}

	if hasGeminiKey {
		fmt.Printf("%s GEMINI_API_KEY set\n", style.C(style.Green, "✓"))
	} else {
		fmt.Printf("%s GEMINI_API_KEY not set (required for gemini-* agents)\n", style.C(style.Yellow, "⚠"))
	}

	fmt.Println()

	cliAgent := ai.IsAgentCLI(agent) && ai.IsAgentSupported(agent)
	if allGood && (hasAnthropicKey || hasGeminiKey || cliAgent) {
		fmt.Printf("%s Setup OK\n", style.C(style.Green, "✓"))
		return nil
	}

	if !allGood {
		return fmt.Errorf("setup issues detected")
	}

	// Warnings don't cause exit code
	return nil
}
