package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xrsl/jobpilot/pkg/retry"

	clog "github.com/xrsl/jobpilot/pkg/log"
)

// Store persists whole workflow snapshots keyed by workflow id. Load returns
// ErrNotFound for an unknown id. Implementations must be safe for use by
// concurrent workflows.
type Store interface {
	Load(ctx context.Context, workflowID string) (*State, error)
	Save(ctx context.Context, s *State) error
}

// Orchestrator walks a Graph for one workflow at a time, checkpointing state
// after every stage transition.
type Orchestrator struct {
	graph *Graph
	store Store

	// Deadline, when positive, bounds the whole run. On expiry the
	// orchestrator stops advancing, records an error, and returns the
	// in-progress state. Completed stages are kept. Set it before the
	// orchestrator is shared across goroutines; per-run deadlines go
	// through WithDeadline.
	Deadline time.Duration
}

// New creates an orchestrator over a validated graph and a state store.
func New(graph *Graph, store Store) *Orchestrator {
	return &Orchestrator{graph: graph, store: store}
}

// WithDeadline returns a copy of the orchestrator bounded by d. The
// receiver is left untouched, so one orchestrator can serve concurrent
// runs with different deadlines.
func (o *Orchestrator) WithDeadline(d time.Duration) *Orchestrator {
	c := *o
	c.Deadline = d
	return &c
}

// Run executes the workflow identified by workflowID starting at entry.
//
// If a snapshot exists for the id, the run resumes from it and patch is
// ignored; otherwise a fresh state is built from patch. Stage failures are
// recorded in the state and do not produce an error return; only input
// validation and persistence problems do.
func (o *Orchestrator) Run(ctx context.Context, workflowID, entry string, patch map[string]any) (*State, error) {
	if workflowID == "" {
		return nil, NewInputError("workflow id must not be empty")
	}
	if _, ok := o.graph.Stage(entry); !ok {
		return nil, NewInputError("unknown entry stage %q", entry)
	}

	wlog := clog.WithWorkflow(workflowID)
	st, err := o.store.Load(ctx, workflowID)
	switch {
	case errors.Is(err, ErrNotFound):
		st = NewState(workflowID, patch)
		if err := o.store.Save(ctx, st); err != nil {
			return nil, &PersistenceError{Op: "save", Err: err}
		}
		wlog.Debug("workflow created")
	case err != nil:
		return nil, &PersistenceError{Op: "load", Err: err}
	default:
		if st.Completed {
			wlog.Debug("workflow already completed")
			return st, nil
		}
		wlog.Debug("workflow resumed", "version", st.Version)
	}

	started := time.Now()
	cur := entry
	// The graph is validated acyclic, so the walk is bounded by the stage
	// count. The guard catches descriptor tables mutated after validation.
	for steps := 0; steps <= len(o.graph.order); steps++ {
		d, ok := o.graph.Stage(cur)
		if !ok {
			return st, NewInputError("unknown stage %q", cur)
		}

		if !st.Ran(cur) {
			if stop, msg := o.expired(ctx, started); stop {
				st.AppendError(cur, msg)
				if err := o.persist(ctx, st); err != nil {
					return st, err
				}
				wlog.Warn("workflow stopped before terminal stage", "stage", cur, "reason", msg)
				return st, nil
			}
			o.execute(ctx, d, st)
			if err := o.persist(ctx, st); err != nil {
				return st, err
			}
		}

		next, more := o.graph.Next(d, st)
		if !more {
			st.Completed = true
			if err := o.persist(ctx, st); err != nil {
				return st, err
			}
			wlog.Info("workflow completed", "status", st.Status(), "version", st.Version)
			return st, nil
		}
		cur = next
	}
	return st, fmt.Errorf("graph walk exceeded %d transitions; stage table corrupted", len(o.graph.order))
}

// expired reports whether the run should stop before executing another stage.
func (o *Orchestrator) expired(ctx context.Context, started time.Time) (bool, string) {
	if ctx.Err() != nil {
		return true, "run canceled before stage execution"
	}
	if o.Deadline > 0 && time.Since(started) >= o.Deadline {
		return true, fmt.Sprintf("workflow deadline %s exceeded", o.Deadline)
	}
	return false, ""
}

// execute runs the gate and, on a miss, the stage function, recording the
// outcome on the state.
func (o *Orchestrator) execute(ctx context.Context, d *Descriptor, st *State) {
	if d.Gate != nil {
		if out, hit := o.checkGate(ctx, d, st); hit {
			clog.Debug("cache gate hit", "stage", d.Name)
			st.RecordCacheHit(d.Name, out)
			return
		}
	}

	res := o.invoke(ctx, d, st)
	if res.Failed() {
		clog.Warn("stage failed", "stage", d.Name, "error", res.Err)
		st.RecordFailure(d.Name, res.Err)
		return
	}
	clog.Debug("stage succeeded", "stage", d.Name)
	st.RecordSuccess(d.Name, res.Output)
}

// checkGate runs the cache gate. A panicking gate is a miss; caching is an
// optimization, never a correctness dependency.
func (o *Orchestrator) checkGate(ctx context.Context, d *Descriptor, st *State) (out any, hit bool) {
	defer func() {
		if r := recover(); r != nil {
			clog.Warn("cache gate panicked, treating as miss", "stage", d.Name, "panic", r)
			out, hit = nil, false
		}
	}()
	return d.Gate(ctx, st)
}

// invoke runs the stage function under its timeout and retry policy.
func (o *Orchestrator) invoke(parent context.Context, d *Descriptor, st *State) Result {
	ctx := parent
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, d.Timeout)
		defer cancel()
	}

	res, err := retry.Do(ctx, d.Retry, func() (Result, error) {
		r := attempt(ctx, d, st)
		if r.Failed() && r.Err != "timeout" {
			// Mark as retryable so the descriptor's policy decides how
			// many attempts to spend. Timeouts are terminal: the budget
			// for the whole stage is already gone.
			return r, retry.Retryable(errors.New(r.Err))
		}
		return r, nil
	})
	switch {
	case err == nil:
		return res
	case errors.Is(err, context.DeadlineExceeded):
		return Failure("timeout")
	case errors.Is(err, context.Canceled):
		return Failure("canceled")
	default:
		return Failure("%s", err.Error())
	}
}

// attempt calls the stage function in a goroutine so a hung stage cannot
// block the orchestrator past its timeout. Panics become failures.
func attempt(ctx context.Context, d *Descriptor, st *State) Result {
	done := make(chan Result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- Failure("panic in stage %s: %v", d.Name, r)
			}
		}()
		done <- d.Run(ctx, st)
	}()

	select {
	case res := <-done:
		return res
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Failure("timeout")
		}
		return Failure("canceled")
	}
}

// persist bumps the revision and writes the whole snapshot. On a store
// failure the bump is reverted so the in-memory state matches the last
// durable snapshot.
func (o *Orchestrator) persist(ctx context.Context, st *State) error {
	st.Version++
	st.UpdatedAt = time.Now().UTC()
	if err := o.store.Save(ctx, st); err != nil {
		st.Version--
		return &PersistenceError{Op: "save", Err: err}
	}
	return nil
}
