package search

import (
	"context"
	"errors"
	"testing"
)

// fakeCLI returns a canned gh search code response.
type fakeCLI struct {
	response  []byte
	err       error
	gotQuery  string
	gotRepos  []string
	gotLimit  int
	repoCalls int
}

func (f *fakeCLI) SearchCode(_ context.Context, query string, repos []string, limit int) ([]byte, error) {
	f.gotQuery = query
	f.gotRepos = repos
	f.gotLimit = limit
	return f.response, f.err
}

func (f *fakeCLI) RepoList(_ context.Context, _ int) ([]byte, error) {
	f.repoCalls++
	return []byte("[]"), nil
}

const searchResponse = `[
  {
    "path": "worker/pool.go",
    "repository": {"nameWithOwner": "me/backend"},
    "textMatches": [
      {"fragment": "func NewPool(workers int) *Pool { // goroutine worker pool"},
      {"fragment": ""}
    ]
  },
  {
    "path": "README.md",
    "repository": {"nameWithOwner": "me/dotfiles"},
    "textMatches": [{"fragment": "my shell aliases"}]
  }
]`

func TestGitHubSearch(t *testing.T) {
	cli := &fakeCLI{response: []byte(searchResponse)}
	g := NewGitHub(cli, []string{"me/backend", "me/dotfiles"})

	got, err := g.Search(context.Background(), "goroutine pool", Filters{Limit: 2})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if cli.gotQuery != "goroutine pool" {
		t.Errorf("query = %q", cli.gotQuery)
	}
	if len(cli.gotRepos) != 2 {
		t.Errorf("repos = %v, want configured repos", cli.gotRepos)
	}
	// Over-fetch factor gives the ranker candidates to discard.
	if cli.gotLimit != 8 {
		t.Errorf("upstream limit = %d, want 8", cli.gotLimit)
	}

	if len(got) != 2 {
		t.Fatalf("len(snippets) = %d, want 2 (empty fragment dropped)", len(got))
	}
	// The fragment matching both query terms ranks first.
	if got[0].Source != "me/backend/worker/pool.go" {
		t.Errorf("top snippet = %+v", got[0])
	}
	if got[0].Score <= got[1].Score {
		t.Errorf("scores not descending: %v then %v", got[0].Score, got[1].Score)
	}
}

func TestGitHubSearchFilterReposOverride(t *testing.T) {
	cli := &fakeCLI{response: []byte("[]")}
	g := NewGitHub(cli, []string{"me/default"})

	if _, err := g.Search(context.Background(), "q", Filters{Repos: []string{"me/override"}, Limit: 1}); err != nil {
		t.Fatal(err)
	}
	if len(cli.gotRepos) != 1 || cli.gotRepos[0] != "me/override" {
		t.Errorf("repos = %v, want override", cli.gotRepos)
	}
}

func TestGitHubSearchTruncatesToLimit(t *testing.T) {
	cli := &fakeCLI{response: []byte(searchResponse)}
	g := NewGitHub(cli, nil)

	got, err := g.Search(context.Background(), "pool", Filters{Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("len(snippets) = %d, want 1", len(got))
	}
}

func TestGitHubSearchErrors(t *testing.T) {
	cli := &fakeCLI{err: errors.New("gh: auth required")}
	g := NewGitHub(cli, nil)
	if _, err := g.Search(context.Background(), "q", Filters{}); err == nil {
		t.Error("Search() = nil error, want upstream error")
	}

	cli = &fakeCLI{response: []byte("not json")}
	g = NewGitHub(cli, nil)
	if _, err := g.Search(context.Background(), "q", Filters{}); err == nil {
		t.Error("Search() = nil error on bad JSON")
	}
}

func TestRank(t *testing.T) {
	snippets := []Snippet{
		{Content: "nothing relevant here", Source: "a"},
		{Content: "redis cache layer with go generics", Source: "b"},
		{Content: "redis cache", Source: "c"},
	}

	got := Rank("redis cache generics", snippets)
	if len(got) != 3 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].Source != "b" {
		t.Errorf("top result = %q, want b (full overlap)", got[0].Source)
	}
	if got[2].Source != "a" {
		t.Errorf("bottom result = %q, want a (no overlap)", got[2].Source)
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Score < got[i].Score {
			t.Errorf("scores not descending at %d: %v", i, got)
		}
	}
}

func TestRankDedupes(t *testing.T) {
	snippets := []Snippet{
		{Content: "same fragment", Source: "repo/file.go"},
		{Content: "same fragment", Source: "repo/file.go"},
		{Content: "same fragment", Source: "other/file.go"},
	}
	got := Rank("fragment", snippets)
	if len(got) != 2 {
		t.Errorf("len = %d, want 2 (duplicate source+content dropped)", len(got))
	}
}

func TestRankEmptyQuery(t *testing.T) {
	snippets := []Snippet{{Content: "a", Source: "s1"}, {Content: "b", Source: "s2"}}
	got := Rank("", snippets)
	if len(got) != 2 {
		t.Fatalf("len = %d", len(got))
	}
	// Only the positional component remains, so upstream order is kept.
	if got[0].Source != "s1" {
		t.Errorf("order changed with empty query: %+v", got)
	}
}
