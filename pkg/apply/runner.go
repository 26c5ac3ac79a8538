package apply

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/xrsl/jobpilot/pkg/pipeline"
	"github.com/xrsl/jobpilot/pkg/search"
)

// Request is the entry contract: what an external caller (CLI command,
// scheduled job, tool invocation) supplies to start or resume a workflow.
type Request struct {
	JobURL     string
	WorkflowID string
	// Resume continues an interrupted run for WorkflowID instead of
	// starting fresh. Without it, reusing an existing id is rejected so a
	// finished workflow is never silently re-entered.
	Resume   bool
	Deadline time.Duration
}

// Report is the exit contract: the final pipeline state mapped to the shape
// callers consume.
type Report struct {
	WorkflowID  string                `json:"workflow_id"`
	Status      string                `json:"status"`
	Completed   bool                  `json:"completed"`
	Version     int                   `json:"version"`
	CacheHits   []string              `json:"cache_hits,omitempty"`
	Analysis    map[string]any        `json:"job_analysis,omitempty"`
	Resume      string                `json:"tailored_resume,omitempty"`
	CoverLetter string                `json:"cover_letter,omitempty"`
	Portfolio   []search.Snippet      `json:"portfolio,omitempty"`
	Failed      map[string]string     `json:"failed,omitempty"`
	Errors      []pipeline.StageError `json:"errors,omitempty"`
}

// Runner is the entry/exit adapter around the orchestrator.
type Runner struct {
	orch  *pipeline.Orchestrator
	store pipeline.Store
}

// NewRunner builds the pipeline graph from deps and wraps it in an adapter.
func NewRunner(deps Deps, st pipeline.Store) (*Runner, error) {
	graph, err := NewGraph(deps)
	if err != nil {
		return nil, err
	}
	return &Runner{orch: pipeline.New(graph, st), store: st}, nil
}

// Run validates the request, resolves the workflow id, executes the
// pipeline, and maps the final state to a Report.
//
// Callers must not issue concurrent Run calls for the same workflow id;
// runs for distinct ids are independent.
func (r *Runner) Run(ctx context.Context, req Request) (*Report, error) {
	if err := ValidateJobURL(req.JobURL); err != nil {
		return nil, err
	}

	id := req.WorkflowID
	switch {
	case req.Resume && id == "":
		return nil, pipeline.NewInputError("resume requires a workflow id")
	case id == "":
		id = "wf-" + uuid.NewString()
	case !req.Resume:
		if _, err := r.store.Load(ctx, id); err == nil {
			return nil, pipeline.NewInputError("workflow %q already exists; resume it or omit the id", id)
		}
	}

	st, err := r.orch.WithDeadline(req.Deadline).Run(ctx, id, StageJobAnalysis, map[string]any{"job_url": req.JobURL})
	if err != nil {
		return nil, err
	}
	return BuildReport(st), nil
}

// Status loads a workflow snapshot without executing anything.
func (r *Runner) Status(ctx context.Context, workflowID string) (*Report, error) {
	st, err := r.store.Load(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	return BuildReport(st), nil
}

// ValidateJobURL rejects anything that is not an absolute http(s) URL.
func ValidateJobURL(raw string) error {
	if raw == "" {
		return pipeline.NewInputError("job_url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return pipeline.NewInputError("job_url %q is not a valid URL: %v", raw, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return pipeline.NewInputError("job_url %q must be an absolute URL", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return pipeline.NewInputError("job_url %q must use http or https", raw)
	}
	return nil
}

// BuildReport maps a pipeline state snapshot to the caller-facing shape.
func BuildReport(st *pipeline.State) *Report {
	rep := &Report{
		WorkflowID:  st.WorkflowID,
		Status:      st.Status(),
		Completed:   st.Completed,
		Version:     st.Version,
		CacheHits:   st.CacheHits,
		CoverLetter: contentOf(st, StageCoverLetter),
		Resume:      contentOf(st, StageResumeTailoring),
		Errors:      st.Errors,
	}
	if analysis, ok := analysisFrom(st); ok {
		rep.Analysis = analysis
	}
	rep.Portfolio = snippetsFrom(st)

	for name, out := range st.Results {
		if out.Status == pipeline.OutcomeFailure {
			if rep.Failed == nil {
				rep.Failed = make(map[string]string)
			}
			rep.Failed[name] = out.Error
		}
	}
	return rep
}

// snippetsFrom recovers portfolio snippets whether the output holds typed
// values (fresh run) or decoded JSON/YAML (resumed or cached run).
func snippetsFrom(st *pipeline.State) []search.Snippet {
	m, ok := st.Output(StagePortfolio).(map[string]any)
	if !ok {
		return nil
	}
	raw, ok := m["snippets"]
	if !ok {
		return nil
	}
	if typed, ok := raw.([]search.Snippet); ok {
		return typed
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	var snippets []search.Snippet
	if err := json.Unmarshal(data, &snippets); err != nil {
		return nil
	}
	return snippets
}
