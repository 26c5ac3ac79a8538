package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	ResetForTest(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Agent != "claude-sonnet-4-5" {
		t.Errorf("Agent = %q", cfg.Agent)
	}
	if cfg.WorkDir != ".jobpilot" {
		t.Errorf("WorkDir = %q", cfg.WorkDir)
	}
	if cfg.TopN != 5 {
		t.Errorf("TopN = %d", cfg.TopN)
	}
	if cfg.StageTimeout != 2*time.Minute {
		t.Errorf("StageTimeout = %v", cfg.StageTimeout)
	}
}

func TestSetGetRoundtrip(t *testing.T) {
	ResetForTest(t.TempDir())

	if err := Set("cv_path", "cv/cv.md"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := Get("cv_path")
	if err != nil {
		t.Fatal(err)
	}
	if got != "cv/cv.md" {
		t.Errorf("Get(cv_path) = %q", got)
	}

	// The value survives a reload from disk.
	ResetForTest(strings.TrimSuffix(Path(), "/.jobpilot.yaml"))
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.CVPath != "cv/cv.md" {
		t.Errorf("reloaded CVPath = %q", cfg.CVPath)
	}
}

func TestReposListRoundtrip(t *testing.T) {
	ResetForTest(t.TempDir())

	if err := Set("repos", "me/api, me/cli"); err != nil {
		t.Fatalf("Set(repos) error = %v", err)
	}
	got, err := Get("repos")
	if err != nil {
		t.Fatal(err)
	}
	if got != "me/api,me/cli" {
		t.Errorf("Get(repos) = %q", got)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Repos) != 2 || cfg.Repos[0] != "me/api" || cfg.Repos[1] != "me/cli" {
		t.Errorf("Repos = %v", cfg.Repos)
	}

	// And back from disk.
	ResetForTest(strings.TrimSuffix(Path(), "/.jobpilot.yaml"))
	cfg, err = Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Repos) != 2 {
		t.Errorf("reloaded Repos = %v", cfg.Repos)
	}
}

func TestUnknownKey(t *testing.T) {
	ResetForTest(t.TempDir())

	if err := Set("no_such_key", "x"); err == nil {
		t.Error("Set(unknown) = nil error")
	}
	if _, err := Get("no_such_key"); err == nil {
		t.Error("Get(unknown) = nil error")
	}
}

func TestEnvOverride(t *testing.T) {
	dir := t.TempDir()
	os.Setenv("JOBPILOT_AGENT", "gemini-2.5-pro")
	t.Cleanup(func() { os.Unsetenv("JOBPILOT_AGENT") })
	ResetForTest(dir)

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Agent != "gemini-2.5-pro" {
		t.Errorf("Agent = %q, want env override", cfg.Agent)
	}
}

func TestAllListsEveryKey(t *testing.T) {
	ResetForTest(t.TempDir())

	all := All()
	for _, k := range Keys() {
		if _, ok := all[k]; !ok {
			t.Errorf("All() missing key %q", k)
		}
	}
}

func TestSaveWritesYAML(t *testing.T) {
	ResetForTest(t.TempDir())

	cfg := &Config{Agent: "claude-opus-4-5", CVPath: "cv.md", TopN: 3}
	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	data, err := os.ReadFile(Path())
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"agent: claude-opus-4-5", "cv_path: cv.md", "top_n: 3"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("config file missing %q:\n%s", want, data)
		}
	}
}
