package celerybridge

// State represents a task status as reported by the Celery result backend.
// Use the exported constants (StateSuccess, StateFailure, etc.) instead of
// raw strings to avoid typos.
type State string

const (
	// StatePending means no result record exists yet. The result backend does
	// not distinguish "still running" from "unknown task id"; neither do we.
	StatePending State = "PENDING"
	// StateSuccess means the worker finished the task successfully.
	StateSuccess State = "SUCCESS"
	// StateFailure means the worker raised an error while running the task.
	StateFailure State = "FAILURE"
	// StateRevoked means the task was cancelled before or during execution.
	StateRevoked State = "REVOKED"
	// StateError is synthesized locally when a result record cannot be decoded.
	// It never appears on the wire.
	StateError State = "ERROR"
)

// readyStates lists every terminal state in a stable order.
var readyStates = []State{StateSuccess, StateFailure, StateRevoked}

// String returns the raw string value of the state.
func (s State) String() string { return string(s) }

// Ready reports whether the state is terminal: the worker will never write
// another record for this task. StateError counts as terminal because a
// corrupt record is not going to repair itself.
func (s State) Ready() bool {
	if s == StateError {
		return true
	}
	for _, r := range readyStates {
		if s == r {
			return true
		}
	}
	return false
}
