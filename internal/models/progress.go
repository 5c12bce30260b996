package models

import "github.com/ad/go-membership-wizard/internal/fsm"

// StepProgress is the sub-step counter of one wizard step.
// 0 <= Current <= Total always holds.
type StepProgress struct {
	Step    MembershipStep
	Current int
	Total   int
}

func (p StepProgress) State() fsm.StepState {
	return fsm.StateOf(p.Current, p.Total)
}

func (p StepProgress) Remaining() int {
	return max(p.Total-p.Current, 0)
}
