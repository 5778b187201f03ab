package autosave

import "fmt"

// State is the lifecycle state of a Controller.
type State int

const (
	// StateClean means the field content equals the last saved value.
	StateClean State = iota

	// StateDirty means the field content differs from the last saved value.
	StateDirty

	// StateRecovered is held only while the recovery prompt is open.
	StateRecovered

	// StateCleared is terminal: the form was submitted and the draft removed.
	StateCleared

	// StateDetached is terminal: the controller was stopped, the draft kept.
	StateDetached
)

func (s State) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateDirty:
		return "dirty"
	case StateRecovered:
		return "recovered"
	case StateCleared:
		return "cleared"
	case StateDetached:
		return "detached"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether no further saves can happen in s.
func (s State) Terminal() bool {
	return s == StateCleared || s == StateDetached
}

// TickResult is the outcome of one autosave tick.
type TickResult int

const (
	// TickClean means nothing changed since the last save.
	TickClean TickResult = iota

	// TickSaved means the content was written.
	TickSaved

	// TickFailed means the write failed; the next tick retries.
	TickFailed

	// TickSkippedEmpty means the content changed to empty and was not written.
	TickSkippedEmpty

	// TickInactive means the controller is cleared or detached.
	TickInactive
)

func (r TickResult) String() string {
	switch r {
	case TickClean:
		return "clean"
	case TickSaved:
		return "saved"
	case TickFailed:
		return "failed"
	case TickSkippedEmpty:
		return "skipped_empty"
	case TickInactive:
		return "inactive"
	default:
		return fmt.Sprintf("TickResult(%d)", int(r))
	}
}
