package pipeline

import (
	"maps"
	"slices"
	"time"
)

// Run status taxonomy reported to callers.
const (
	StatusSuccess        = "success"
	StatusPartialSuccess = "partial_success"
	StatusFailed         = "failed"
	StatusInProgress     = "in_progress"
)

// Outcome status for a single stage's Results entry.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeCacheHit = "cache_hit"
)

// Outcome is the recorded result of one stage execution.
type Outcome struct {
	Status string    `json:"status"`
	Output any       `json:"output,omitempty"`
	Error  string    `json:"error,omitempty"`
	At     time.Time `json:"at"`
}

// Succeeded reports whether the outcome carries usable output.
func (o Outcome) Succeeded() bool {
	return o.Status == OutcomeSuccess || o.Status == OutcomeCacheHit
}

// StageError is one entry in the append-only error log.
type StageError struct {
	Stage   string    `json:"stage"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// State is the single mutable record threaded through a workflow. It is
// persisted whole after every stage transition; Version counts persisted
// transitions and never decreases.
type State struct {
	WorkflowID string             `json:"workflow_id"`
	Input      map[string]any     `json:"input"`
	Results    map[string]Outcome `json:"results"`
	Errors     []StageError       `json:"errors"`
	CacheHits  []string           `json:"cache_hits"`
	Completed  bool               `json:"completed"`
	Version    int                `json:"version"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// NewState constructs a fresh workflow state. The input map is copied so the
// caller's patch cannot be mutated later.
func NewState(workflowID string, input map[string]any) *State {
	in := make(map[string]any, len(input))
	maps.Copy(in, input)
	now := time.Now().UTC()
	return &State{
		WorkflowID: workflowID,
		Input:      in,
		Results:    make(map[string]Outcome),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Succeeded reports whether the named stage produced usable output
// (fresh execution or cache hit).
func (s *State) Succeeded(stage string) bool {
	out, ok := s.Results[stage]
	return ok && out.Succeeded()
}

// Ran reports whether the named stage has a recorded outcome of any kind.
func (s *State) Ran(stage string) bool {
	_, ok := s.Results[stage]
	return ok
}

// Output returns the recorded output for a stage, or nil when the stage has
// not succeeded.
func (s *State) Output(stage string) any {
	out, ok := s.Results[stage]
	if !ok || !out.Succeeded() {
		return nil
	}
	return out.Output
}

// FromCache reports whether the stage's result came from its cache gate.
func (s *State) FromCache(stage string) bool {
	return slices.Contains(s.CacheHits, stage)
}

// RecordSuccess stores a successful stage outcome. Existing outcomes are
// never silently overwritten.
func (s *State) RecordSuccess(stage string, output any) {
	if s.Ran(stage) {
		return
	}
	s.Results[stage] = Outcome{Status: OutcomeSuccess, Output: output, At: time.Now().UTC()}
}

// RecordCacheHit stores a gate-supplied outcome and marks the stage as a
// cache hit.
func (s *State) RecordCacheHit(stage string, output any) {
	if s.Ran(stage) {
		return
	}
	s.Results[stage] = Outcome{Status: OutcomeCacheHit, Output: output, At: time.Now().UTC()}
	if !slices.Contains(s.CacheHits, stage) {
		s.CacheHits = append(s.CacheHits, stage)
	}
}

// RecordFailure marks the stage failed and appends to the error log.
func (s *State) RecordFailure(stage, message string) {
	now := time.Now().UTC()
	if !s.Ran(stage) {
		s.Results[stage] = Outcome{Status: OutcomeFailure, Error: message, At: now}
	}
	s.Errors = append(s.Errors, StageError{Stage: stage, Message: message, At: now})
}

// AppendError records a workflow-level error (e.g. deadline exceeded)
// without touching Results.
func (s *State) AppendError(stage, message string) {
	s.Errors = append(s.Errors, StageError{Stage: stage, Message: message, At: time.Now().UTC()})
}

// Status maps the state onto the caller-facing taxonomy.
func (s *State) Status() string {
	if !s.Completed {
		return StatusInProgress
	}
	if len(s.Errors) == 0 {
		return StatusSuccess
	}
	for _, out := range s.Results {
		if out.Succeeded() {
			return StatusPartialSuccess
		}
	}
	return StatusFailed
}
