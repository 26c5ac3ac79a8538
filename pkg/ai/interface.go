// Package ai selects and constructs the LLM client used by the generation
// stages. Agents are addressed by name: API models ("claude-*", "gemini-*")
// or local CLI agents ("claude-code", "gemini-cli", optionally with a
// ":model" suffix).
package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/xrsl/jobpilot/pkg/claude"
	"github.com/xrsl/jobpilot/pkg/gemini"
)

// Client is the common interface for AI providers
type Client interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Close()
}

// CachingClient supports prompt caching (optional interface)
type CachingClient interface {
	Client
	GenerateContentWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// DefaultAgent returns the best available agent: a local CLI agent when one
// is installed, otherwise the default API model.
func DefaultAgent() string {
	if IsClaudeCLIAvailable() {
		return "claude-code"
	}
	if IsGeminiCLIAvailable() {
		return "gemini-cli"
	}
	return claude.DefaultAgent
}

// NewClient creates an AI client based on agent prefix
func NewClient(agent string) (Client, error) {
	switch {
	case agent == "claude-code" || strings.HasPrefix(agent, "claude-code:"):
		if !IsClaudeCLIAvailable() {
			return nil, fmt.Errorf("claude CLI not found in PATH")
		}
		return NewClaudeCLI(cliModel(agent)), nil
	case agent == "gemini-cli" || strings.HasPrefix(agent, "gemini-cli:"):
		if !IsGeminiCLIAvailable() {
			return nil, fmt.Errorf("gemini CLI not found in PATH")
		}
		return NewGeminiCLI(cliModel(agent)), nil
	case strings.HasPrefix(agent, "gemini-"):
		return gemini.NewClient(agent)
	case strings.HasPrefix(agent, "claude-"):
		return claude.NewClient(agent)
	default:
		return nil, fmt.Errorf("unknown agent: %s (use claude-code, gemini-cli, gemini-*, or claude-*)", agent)
	}
}

// cliModel extracts the model suffix from "claude-code:sonnet-4-5" style
// agent names.
func cliModel(agent string) string {
	if idx := strings.Index(agent, ":"); idx != -1 {
		return agent[idx+1:]
	}
	return ""
}

// IsAgentCLI returns true if the agent runs through a local CLI.
func IsAgentCLI(agent string) bool {
	return agent == "claude-code" || strings.HasPrefix(agent, "claude-code:") ||
		agent == "gemini-cli" || strings.HasPrefix(agent, "gemini-cli:")
}

// IsAgentSupported checks if an agent is supported by any provider
func IsAgentSupported(agent string) bool {
	switch {
	case IsAgentCLI(agent):
		if strings.HasPrefix(agent, "claude-code") {
			return IsClaudeCLIAvailable()
		}
		return IsGeminiCLIAvailable()
	case strings.HasPrefix(agent, "gemini-"):
		return gemini.IsAgentSupported(agent)
	case strings.HasPrefix(agent, "claude-"):
		return claude.IsAgentSupported(agent)
	default:
		return false
	}
}

// SupportedAgents returns all supported agents (CLI + API)
func SupportedAgents() []string {
	agents := []string{}
	if IsClaudeCLIAvailable() {
		agents = append(agents, "claude-code")
	}
	if IsGeminiCLIAvailable() {
		agents = append(agents, "gemini-cli")
	}
	agents = append(agents, claude.SupportedAgents...)
	agents = append(agents, gemini.SupportedAgents...)
	return agents
}
