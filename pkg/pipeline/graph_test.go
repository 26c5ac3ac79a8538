package pipeline

import (
	"context"
	"strings"
	"testing"
)

func noop(_ context.Context, _ *State) Result {
	return Success(nil)
}

func stage(name string, edges ...Edge) *Descriptor {
	return &Descriptor{Name: name, Run: noop, Edges: edges}
}

func TestNewGraphValidation(t *testing.T) {
	tests := []struct {
		name    string
		stages  []*Descriptor
		wantErr string
	}{
		{
			name:   "linear chain",
			stages: []*Descriptor{stage("a", Edge{To: "b"}), stage("b", Edge{To: Terminal})},
		},
		{
			name:   "no edges is terminal",
			stages: []*Descriptor{stage("a")},
		},
		{
			name:    "empty name",
			stages:  []*Descriptor{stage("")},
			wantErr: "invalid stage name",
		},
		{
			name:    "terminal as stage name",
			stages:  []*Descriptor{stage(Terminal)},
			wantErr: "invalid stage name",
		},
		{
			name:    "missing run function",
			stages:  []*Descriptor{{Name: "a"}},
			wantErr: "no function",
		},
		{
			name:    "duplicate stage",
			stages:  []*Descriptor{stage("a"), stage("a")},
			wantErr: "duplicate stage",
		},
		{
			name:    "edge to unknown stage",
			stages:  []*Descriptor{stage("a", Edge{To: "ghost"})},
			wantErr: "unknown stage",
		},
		{
			name: "edge after unconditional edge",
			stages: []*Descriptor{
				stage("a", Edge{To: "b"}, Edge{When: func(*State) bool { return true }, To: "b"}),
				stage("b"),
			},
			wantErr: "unreachable",
		},
		{
			name:    "self cycle",
			stages:  []*Descriptor{stage("a", Edge{To: "a"})},
			wantErr: "cycle",
		},
		{
			name: "two stage cycle",
			stages: []*Descriptor{
				stage("a", Edge{To: "b"}),
				stage("b", Edge{When: func(*State) bool { return false }, To: "a"}),
			},
			wantErr: "cycle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGraph(tt.stages...)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("NewGraph() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("NewGraph() = nil error, want %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("NewGraph() error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestGraphStages(t *testing.T) {
	g, err := NewGraph(stage("first", Edge{To: "second"}), stage("second"))
	if err != nil {
		t.Fatal(err)
	}
	got := g.Stages()
	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Errorf("Stages() = %v, want [first second]", got)
	}
}

func TestNextFirstMatchWins(t *testing.T) {
	d := stage("a",
		Edge{When: func(s *State) bool { return s.Succeeded("a") }, To: "won"},
		Edge{To: "fallback"},
	)
	g, err := NewGraph(d, stage("won"), stage("fallback"))
	if err != nil {
		t.Fatal(err)
	}

	st := NewState("wf", nil)
	if next, ok := g.Next(d, st); !ok || next != "fallback" {
		t.Errorf("Next() with failed predicate = %q, %v; want fallback, true", next, ok)
	}

	st.RecordSuccess("a", "out")
	if next, ok := g.Next(d, st); !ok || next != "won" {
		t.Errorf("Next() with matching predicate = %q, %v; want won, true", next, ok)
	}
}

func TestNextTerminal(t *testing.T) {
	g, err := NewGraph(
		stage("a", Edge{To: Terminal}),
		stage("b"),
		stage("c", Edge{When: func(*State) bool { return false }, To: "b"}),
	)
	if err != nil {
		t.Fatal(err)
	}
	st := NewState("wf", nil)

	for _, name := range []string{"a", "b", "c"} {
		d, _ := g.Stage(name)
		if next, ok := g.Next(d, st); ok {
			t.Errorf("Next(%s) = %q, true; want terminal", name, next)
		}
	}
}

func TestNextPredicatePanicIsFalse(t *testing.T) {
	d := stage("a",
		Edge{When: func(*State) bool { panic("broken predicate") }, To: "b"},
		Edge{To: Terminal},
	)
	g, err := NewGraph(d, stage("b"))
	if err != nil {
		t.Fatal(err)
	}
	if next, ok := g.Next(d, NewState("wf", nil)); ok {
		t.Errorf("Next() = %q, true; want terminal via fallback", next)
	}
}
