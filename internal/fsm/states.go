package fsm

type StepState string

const (
	StateNotStarted StepState = "not_started"
	StateInProgress StepState = "in_progress"
	StateDone       StepState = "done"
)

// StateOf places a sub-step counter on the NOT_STARTED -> IN_PROGRESS -> DONE
// line. A step without sub-steps is never done.
func StateOf(current, total int) StepState {
	switch {
	case total > 0 && current >= total:
		return StateDone
	case current > 0:
		return StateInProgress
	default:
		return StateNotStarted
	}
}

// Regressed reports a transition that only a backend reset or a plan change
// may perform.
func Regressed(from, to StepState) bool {
	return from == StateDone && to != StateDone
}
