package ai

import (
	"strings"
	"testing"
)

func TestIsAgentCLI(t *testing.T) {
	tests := []struct {
		agent string
		want  bool
	}{
		{"claude-code", true},
		{"claude-code:sonnet-4-5", true},
		{"gemini-cli", true},
		{"gemini-cli:gemini-2.5-pro", true},
		{"claude-sonnet-4-5", false},
		{"gemini-2.5-flash", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsAgentCLI(tt.agent); got != tt.want {
			t.Errorf("IsAgentCLI(%q) = %v, want %v", tt.agent, got, tt.want)
		}
	}
}

func TestCLIModel(t *testing.T) {
	tests := []struct {
		agent string
		want  string
	}{
		{"claude-code", ""},
		{"claude-code:sonnet-4-5", "sonnet-4-5"},
		{"gemini-cli:gemini-2.5-pro", "gemini-2.5-pro"},
	}
	for _, tt := range tests {
		if got := cliModel(tt.agent); got != tt.want {
			t.Errorf("cliModel(%q) = %q, want %q", tt.agent, got, tt.want)
		}
	}
}

func TestIsAgentSupportedUnknown(t *testing.T) {
	for _, agent := range []string{"", "gpt-4", "llama-3"} {
		if IsAgentSupported(agent) {
			t.Errorf("IsAgentSupported(%q) = true", agent)
		}
	}
}

func TestNewClientUnknownAgent(t *testing.T) {
	_, err := NewClient("gpt-4")
	if err == nil || !strings.Contains(err.Error(), "unknown agent") {
		t.Errorf("NewClient(gpt-4) error = %v", err)
	}
}

func TestDefaultAgentNeverEmpty(t *testing.T) {
	if DefaultAgent() == "" {
		t.Error("DefaultAgent() = empty string")
	}
}
