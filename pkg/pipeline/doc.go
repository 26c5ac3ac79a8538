// Package pipeline implements a small checkpointed stage graph used to drive
// the job-application workflow.
//
// A Graph is a static table of stage descriptors. Each descriptor names a
// stage function, an optional cache gate, and its outgoing edges. The
// Orchestrator walks the graph one stage at a time, persisting the full
// workflow State to a Store after every transition so an interrupted run can
// be resumed from the last checkpoint.
//
// Stage failures are recorded, not raised: a failed stage appends to
// State.Errors and marks its Results entry failed, then edge predicates
// decide where control goes next. Partial success is an ordinary terminal
// state.
//
// Execution within one workflow id is strictly sequential. Concurrent Run
// calls for the same workflow id are not serialized here; callers that need
// that must hold an external lock per workflow id.
package pipeline
