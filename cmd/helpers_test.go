package cmd

import (
	"testing"

	"github.com/xrsl/jobpilot/pkg/apply"
	"github.com/xrsl/jobpilot/pkg/search"
)

func TestStageRan(t *testing.T) {
	rep := &apply.Report{
		Analysis:  map[string]any{"company": "Acme"},
		Resume:    "# CV",
		Portfolio: []search.Snippet{},
	}

	tests := []struct {
		stage string
		want  bool
	}{
		{apply.StageJobAnalysis, true},
		{apply.StageResumeTailoring, true},
		{apply.StageCoverLetter, false},
		{apply.StagePortfolio, true},
		{"unknown", false},
	}
	for _, tt := range tests {
		if got := stageRan(rep, tt.stage); got != tt.want {
			t.Errorf("stageRan(%s) = %v, want %v", tt.stage, got, tt.want)
		}
	}
}

func TestCacheHit(t *testing.T) {
	rep := &apply.Report{CacheHits: []string{apply.StageJobAnalysis}}
	if !cacheHit(rep, apply.StageJobAnalysis) {
		t.Error("cacheHit(job_analysis) = false")
	}
	if cacheHit(rep, apply.StageCoverLetter) {
		t.Error("cacheHit(cover_letter) = true")
	}
}

func TestAnalysisSummary(t *testing.T) {
	tests := []struct {
		name     string
		analysis map[string]any
		want     string
	}{
		{"both", map[string]any{"title": "Engineer", "company": "Acme"}, "Engineer @ Acme"},
		{"title only", map[string]any{"title": "Engineer"}, "Engineer"},
		{"company only", map[string]any{"company": "Acme"}, "Acme"},
		{"nil analysis", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := &apply.Report{Analysis: tt.analysis}
			if got := analysisSummary(rep); got != tt.want {
				t.Errorf("analysisSummary() = %q, want %q", got, tt.want)
			}
		})
	}
}
