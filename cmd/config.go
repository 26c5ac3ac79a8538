package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/xrsl/jobpilot/pkg/config"
	"github.com/xrsl/jobpilot/pkg/style"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage jobpilot configuration",
	Long: `Read and write jobpilot configuration (.jobpilot.yaml).

Every key can also be set through the environment with a JOBPILOT_ prefix,
e.g. JOBPILOT_AGENT=gemini-2.5-pro.

Examples:
  jobpilot config list
  jobpilot config get agent
  jobpilot config set cv_path cv/cv.md`,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value",
	Long: `Set a configuration value.

Keys:
  agent          AI agent (claude-*, gemini-*, claude-code, gemini-cli)
  schema         Path to extraction schema YAML
  cv_path        Path to the CV source file
  history_path   Path to the career history file
  work_dir       Directory for checkpoints and cached records
  repos          Portfolio repos, comma-separated (e.g. me/api,me/cli)
  top_n          Portfolio snippets per run
  stage_timeout  Per-stage timeout (e.g. 2m)
  deadline       Overall run deadline (e.g. 15m)

Examples:
  jobpilot config set agent gemini-2.5-pro
  jobpilot config set cv_path cv/cv.md
  jobpilot config set stage_timeout 90s`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := config.Set(key, value); err != nil {
			return err
		}
		fmt.Printf("Set %s = %s\n", key, value)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a config value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := config.Get(args[0])
		if err != nil {
			return err
		}
		if value == "" {
			fmt.Println("(not set)")
		} else {
			fmt.Println(value)
		}
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all config values",
	RunE: func(cmd *cobra.Command, args []string) error {
		all := config.All()
		keys := make([]string, 0, len(all))
		for k := range all {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Printf("\n%s\n", style.B(style.C(style.Cyan, "jobpilot config")))
		fmt.Printf("%s\n\n", style.C(style.Gray, config.Path()))
		for _, k := range keys {
			printConfigRow(k, all[k])
		}
		fmt.Println()
		return nil
	},
}

func printConfigRow(key, value string) {
	if value == "" {
		fmt.Printf("  %-14s %s\n", key, style.C(style.Gray, "(not set)"))
	} else {
		fmt.Printf("  %-14s %s\n", key, style.C(style.Green, value))
	}
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)
}
