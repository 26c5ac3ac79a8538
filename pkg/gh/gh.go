// Package gh provides an interface for GitHub CLI operations
package gh

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
)

// CLI defines the GitHub CLI operations the portfolio search needs.
type CLI interface {
	// SearchCode searches code in the given repos and returns the raw JSON
	// response (path, repository, textMatches fields).
	SearchCode(ctx context.Context, query string, repos []string, limit int) ([]byte, error)
	// RepoList lists the authenticated user's repositories as JSON.
	RepoList(ctx context.Context, limit int) ([]byte, error)
}

// DefaultCLI implements CLI using the gh command
type DefaultCLI struct{}

// New returns a new DefaultCLI instance
func New() *DefaultCLI {
	return &DefaultCLI{}
}

// SearchCode runs gh search code with text matches enabled.
func (c *DefaultCLI) SearchCode(ctx context.Context, query string, repos []string, limit int) ([]byte, error) {
	args := []string{"search", "code", query, "--json", "path,repository,textMatches"}
	for _, r := range repos {
		args = append(args, "--repo", r)
	}
	if limit > 0 {
		args = append(args, "--limit", strconv.Itoa(limit))
	}
	cmd := exec.CommandContext(ctx, "gh", args...)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("gh search code failed: %w", err)
	}
	return out, nil
}

// RepoList lists repositories for the authenticated user.
func (c *DefaultCLI) RepoList(ctx context.Context, limit int) ([]byte, error) {
	args := []string{"repo", "list", "--json", "nameWithOwner,description"}
	if limit > 0 {
		args = append(args, "--limit", strconv.Itoa(limit))
	}
	cmd := exec.CommandContext(ctx, "gh", args...)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("gh repo list failed: %w", err)
	}
	return out, nil
}

// CodeMatch is one entry of a gh search code JSON response.
type CodeMatch struct {
	Path       string `json:"path"`
	Repository struct {
		NameWithOwner string `json:"nameWithOwner"`
	} `json:"repository"`
	TextMatches []struct {
		Fragment string `json:"fragment"`
	} `json:"textMatches"`
}

// ParseCodeMatches parses a gh search code response.
func ParseCodeMatches(data []byte) ([]CodeMatch, error) {
	var matches []CodeMatch
	if err := json.Unmarshal(data, &matches); err != nil {
		return nil, fmt.Errorf("parse gh search response: %w", err)
	}
	return matches, nil
}
