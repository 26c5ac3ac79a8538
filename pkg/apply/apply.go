// Package apply wires the job-application pipeline: four stages
// (job_analysis, resume_tailoring, cover_letter, portfolio) with cache
// gates, fallback edges, and the adapter between external calls and
// pipeline state.
package apply

import (
	"context"
	"time"

	"github.com/xrsl/jobpilot/pkg/pipeline"
	"github.com/xrsl/jobpilot/pkg/retry"
	"github.com/xrsl/jobpilot/pkg/schema"
	"github.com/xrsl/jobpilot/pkg/search"
)

// Stage names in the pipeline graph.
const (
	StageJobAnalysis     = "job_analysis"
	StageResumeTailoring = "resume_tailoring"
	StageCoverLetter     = "cover_letter"
	StagePortfolio       = "portfolio"
)

// Generator produces text from a prompt. ai.Client satisfies it; clients
// that also implement GenerateContentWithSystem get the cacheable
// system/user prompt split.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Fetcher retrieves a job posting as cleaned text.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Records is the data-access collaborator: whole records keyed by natural
// key. Read reports absence, never an error.
type Records interface {
	Read(key string) (map[string]any, bool)
	Write(key string, record map[string]any) error
}

// Deps carries every collaborator the stages need. No ambient globals: the
// graph closes over this struct.
type Deps struct {
	Generator Generator
	Fetcher   Fetcher
	Records   Records
	Searcher  search.Searcher
	Schema    *schema.Schema

	CVPath      string
	HistoryPath string
	TopN        int

	StageTimeout time.Duration
	Retry        retry.Config
}

// NewGraph builds the validated stage graph for the job-application
// pipeline.
//
// Edges encode the fallback policy: a failed resume_tailoring must not stop
// the cover letter, which can be drafted from the analysis alone. Only a
// failed job_analysis ends the run early, because nothing downstream can
// work without it.
func NewGraph(d Deps) (*pipeline.Graph, error) {
	if d.Schema == nil {
		d.Schema = schema.Default()
	}
	if d.TopN <= 0 {
		d.TopN = 5
	}
	s := &stages{deps: d}

	return pipeline.NewGraph(
		&pipeline.Descriptor{
			Name:    StageJobAnalysis,
			Run:     s.jobAnalysis,
			Gate:    s.analysisGate,
			Reads:   []string{"input.job_url"},
			Writes:  []string{StageJobAnalysis},
			Timeout: d.StageTimeout,
			Retry:   d.Retry,
			Edges: []pipeline.Edge{
				{When: succeeded(StageJobAnalysis), To: StageResumeTailoring},
				{To: pipeline.Terminal},
			},
		},
		&pipeline.Descriptor{
			Name:    StageResumeTailoring,
			Run:     s.resumeTailoring,
			Gate:    s.pairGate(nsResume),
			Reads:   []string{StageJobAnalysis},
			Writes:  []string{StageResumeTailoring},
			Timeout: d.StageTimeout,
			Retry:   d.Retry,
			Edges: []pipeline.Edge{
				{To: StageCoverLetter},
			},
		},
		&pipeline.Descriptor{
			Name:    StageCoverLetter,
			Run:     s.coverLetter,
			Gate:    s.pairGate(nsLetter),
			Reads:   []string{StageJobAnalysis, StageResumeTailoring},
			Writes:  []string{StageCoverLetter},
			Timeout: d.StageTimeout,
			Retry:   d.Retry,
			Edges: []pipeline.Edge{
				{To: StagePortfolio},
			},
		},
		&pipeline.Descriptor{
			Name:    StagePortfolio,
			Run:     s.portfolio,
			Gate:    s.pairGate(nsPortfolio),
			Reads:   []string{StageJobAnalysis},
			Writes:  []string{StagePortfolio},
			Timeout: d.StageTimeout,
			Retry:   d.Retry,
			Edges: []pipeline.Edge{
				{To: pipeline.Terminal},
			},
		},
	)
}

func succeeded(stage string) pipeline.Predicate {
	return func(s *pipeline.State) bool {
		return s.Succeeded(stage)
	}
}
