package pipeline

import "fmt"

// Result is the return value of a stage function: either a success carrying
// output, or a failure carrying a message. Stage functions report failures
// through Result instead of error so the orchestrator can record them and
// keep walking the graph.
type Result struct {
	Output any
	Err    string
}

// Success wraps stage output in a successful Result.
func Success(output any) Result {
	return Result{Output: output}
}

// Failure builds a failed Result with a formatted message.
func Failure(format string, args ...any) Result {
	return Result{Err: fmt.Sprintf(format, args...)}
}

// Failed reports whether the result is a failure.
func (r Result) Failed() bool {
	return r.Err != ""
}
