// ABOUTME: Status algebra for the pipeline runner — the terminal/non-terminal
// ABOUTME: status values every stage, job, and pipeline outcome is normalized to.
package status

import "fmt"

// Status is the outcome of running one stage of a pipeline.
type Status int

const (
	// ERROR marks a stage that failed, either via an explicit handler
	// return or a trapped panic.
	ERROR Status = iota + 1
	// READY marks a pipeline that has not yet started (or has just been
	// reset by a restart).
	READY
	// STARTING marks a job about to invoke its handler.
	STARTING
	// RUNNING marks a job or pipeline mid-execution.
	RUNNING
	// SUCCESS marks a stage that completed normally.
	SUCCESS
	// FINAL marks a stage that has already arranged its own continuation
	// (typically a submitter-flavor handler that emitted child
	// configurations). The engine treats it like SUCCESS: the parent
	// pipeline still advances to its next stage, and the stage is not
	// treated as an error.
	FINAL
)

// String renders the status the way it appears in logs and reports.
func (s Status) String() string {
	switch s {
	case ERROR:
		return "ERROR"
	case READY:
		return "READY"
	case STARTING:
		return "STARTING"
	case RUNNING:
		return "RUNNING"
	case SUCCESS:
		return "SUCCESS"
	case FINAL:
		return "FINAL"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}

// IsFinal reports whether status requires no further action by the engine:
// the stage has either failed, succeeded, or already submitted its own
// continuation.
func IsFinal(s Status) bool {
	return s == ERROR || s == SUCCESS || s == FINAL
}

// IsStartable reports whether a pipeline in this status may begin
// executing its current stage.
func IsStartable(s Status) bool {
	return s == READY
}
