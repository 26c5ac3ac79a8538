// Package search is the retrieval collaborator for the portfolio stage: it
// returns ranked snippets of the user's own work relevant to a job's skill
// profile. The ranking combines the upstream search order with a keyword
// overlap score; consumers only see the merged top-N.
package search

import (
	"context"
	"fmt"

	"github.com/xrsl/jobpilot/pkg/gh"

	clog "github.com/xrsl/jobpilot/pkg/log"
)

// Snippet is one ranked retrieval result.
type Snippet struct {
	Content string  `json:"content"`
	Score   float64 `json:"score"`
	Source  string  `json:"source"`
}

// Filters narrows a search.
type Filters struct {
	Limit int
	Repos []string
}

// Searcher returns ranked snippets for a query.
type Searcher interface {
	Search(ctx context.Context, query string, f Filters) ([]Snippet, error)
}

// GitHub searches the user's portfolio repositories through the gh CLI.
type GitHub struct {
	cli   gh.CLI
	repos []string
}

// NewGitHub creates a searcher over the given repositories. An empty repo
// list searches everything the authenticated user can see.
func NewGitHub(cli gh.CLI, repos []string) *GitHub {
	return &GitHub{cli: cli, repos: repos}
}

// Search runs the code search and ranks the fragments.
func (g *GitHub) Search(ctx context.Context, query string, f Filters) ([]Snippet, error) {
	repos := f.Repos
	if len(repos) == 0 {
		repos = g.repos
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 5
	}

	// Over-fetch so ranking has something to choose from.
	raw, err := g.cli.SearchCode(ctx, query, repos, limit*4)
	if err != nil {
		return nil, err
	}
	matches, err := gh.ParseCodeMatches(raw)
	if err != nil {
		return nil, err
	}

	snippets := make([]Snippet, 0, len(matches))
	for _, m := range matches {
		source := fmt.Sprintf("%s/%s", m.Repository.NameWithOwner, m.Path)
		for _, tm := range m.TextMatches {
			if tm.Fragment == "" {
				continue
			}
			snippets = append(snippets, Snippet{Content: tm.Fragment, Source: source})
		}
	}

	ranked := Rank(query, snippets)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	clog.Debug("portfolio search", "query", query, "matches", len(matches), "returned", len(ranked))
	return ranked, nil
}
