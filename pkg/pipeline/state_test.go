package pipeline

import "testing"

func TestStateStatus(t *testing.T) {
	tests := []struct {
		name  string
		build func() *State
		want  string
	}{
		{
			name:  "not completed",
			build: func() *State { return NewState("wf", nil) },
			want:  StatusInProgress,
		},
		{
			name: "completed without errors",
			build: func() *State {
				s := NewState("wf", nil)
				s.RecordSuccess("a", "out")
				s.Completed = true
				return s
			},
			want: StatusSuccess,
		},
		{
			name: "completed with failure and a success",
			build: func() *State {
				s := NewState("wf", nil)
				s.RecordSuccess("a", "out")
				s.RecordFailure("b", "boom")
				s.Completed = true
				return s
			},
			want: StatusPartialSuccess,
		},
		{
			name: "cache hit counts as success",
			build: func() *State {
				s := NewState("wf", nil)
				s.RecordCacheHit("a", "cached")
				s.RecordFailure("b", "boom")
				s.Completed = true
				return s
			},
			want: StatusPartialSuccess,
		},
		{
			name: "completed with only failures",
			build: func() *State {
				s := NewState("wf", nil)
				s.RecordFailure("a", "boom")
				s.Completed = true
				return s
			},
			want: StatusFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.build().Status(); got != tt.want {
				t.Errorf("Status() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecordSuccessNoOverwrite(t *testing.T) {
	s := NewState("wf", nil)
	s.RecordSuccess("a", "first")
	s.RecordSuccess("a", "second")

	if got := s.Output("a"); got != "first" {
		t.Errorf("Output(a) = %v, want first", got)
	}
}

func TestRecordFailureKeepsEarlierOutcome(t *testing.T) {
	s := NewState("wf", nil)
	s.RecordSuccess("a", "out")
	s.RecordFailure("a", "late failure")

	if !s.Succeeded("a") {
		t.Error("Succeeded(a) = false after late failure, want true")
	}
	// The error log is append-only even when the outcome is kept.
	if len(s.Errors) != 1 {
		t.Errorf("len(Errors) = %d, want 1", len(s.Errors))
	}
}

func TestRecordCacheHit(t *testing.T) {
	s := NewState("wf", nil)
	s.RecordCacheHit("a", "cached")

	if !s.Succeeded("a") {
		t.Error("Succeeded(a) = false, want true")
	}
	if !s.FromCache("a") {
		t.Error("FromCache(a) = false, want true")
	}
	if got := s.Output("a"); got != "cached" {
		t.Errorf("Output(a) = %v, want cached", got)
	}
}

func TestOutputOfFailedStageIsNil(t *testing.T) {
	s := NewState("wf", nil)
	s.RecordFailure("a", "boom")

	if got := s.Output("a"); got != nil {
		t.Errorf("Output(a) = %v, want nil", got)
	}
	if !s.Ran("a") {
		t.Error("Ran(a) = false, want true")
	}
}

func TestNewStateCopiesInput(t *testing.T) {
	patch := map[string]any{"job_url": "https://example.com"}
	s := NewState("wf", patch)
	patch["job_url"] = "mutated"

	if got := s.Input["job_url"]; got != "https://example.com" {
		t.Errorf("Input[job_url] = %v, want original value", got)
	}
}
