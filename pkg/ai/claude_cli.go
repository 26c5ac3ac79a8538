package ai

import (
	"context"
	"os/exec"
	"strings"
)

// ClaudeCLI implements Client by shelling out to a locally installed
// claude CLI. No API key handling here; the CLI owns its own auth.
type ClaudeCLI struct {
	model string // optional, e.g. "sonnet-4-5"
}

// NewClaudeCLI creates a Claude CLI client
func NewClaudeCLI(model string) *ClaudeCLI {
	return &ClaudeCLI{model: model}
}

// IsClaudeCLIAvailable checks if claude CLI is installed
func IsClaudeCLIAvailable() bool {
	_, err := exec.LookPath("claude")
	return err == nil
}

func (c *ClaudeCLI) GenerateContent(ctx context.Context, prompt string) (string, error) {
	return c.run(ctx, "", prompt)
}

// GenerateContentWithSystem passes the system part through
// --append-system-prompt so the stable extraction instructions stay
// separate from the per-posting text.
func (c *ClaudeCLI) GenerateContentWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.run(ctx, systemPrompt, userPrompt)
}

func (c *ClaudeCLI) run(ctx context.Context, system, prompt string) (string, error) {
	args := []string{"-p", prompt, "--output-format", "text"}
	if system != "" {
		args = append(args, "--append-system-prompt", system)
	}
	if c.model != "" {
		args = append(args, "--model", "claude-"+c.model)
	}
	cmd := exec.CommandContext(ctx, "claude", args...)
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}

func (c *ClaudeCLI) Close() {
	// No cleanup needed
}
