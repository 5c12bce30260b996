package models

import "strings"

// StepSet is an immutable set of membership steps. The zero value is empty.
type StepSet uint32

func NewStepSet(steps ...MembershipStep) StepSet {
	var s StepSet
	for _, step := range steps {
		s = s.With(step)
	}
	return s
}

func (s StepSet) Has(step MembershipStep) bool {
	if !step.Valid() {
		return false
	}
	return s&(1<<uint(step)) != 0
}

func (s StepSet) With(step MembershipStep) StepSet {
	if !step.Valid() {
		return s
	}
	return s | 1<<uint(step)
}

func (s StepSet) Without(step MembershipStep) StepSet {
	if !step.Valid() {
		return s
	}
	return s &^ (1 << uint(step))
}

func (s StepSet) ContainsAll(steps ...MembershipStep) bool {
	for _, step := range steps {
		if !s.Has(step) {
			return false
		}
	}
	return true
}

func (s StepSet) IsEmpty() bool {
	return s == 0
}

func (s StepSet) Len() int {
	n := 0
	for _, step := range AllMembershipSteps() {
		if s.Has(step) {
			n++
		}
	}
	return n
}

// Steps lists the members in declaration order.
func (s StepSet) Steps() []MembershipStep {
	var steps []MembershipStep
	for _, step := range AllMembershipSteps() {
		if s.Has(step) {
			steps = append(steps, step)
		}
	}
	return steps
}

func (s StepSet) String() string {
	names := make([]string, 0, MembershipStepCount)
	for _, step := range s.Steps() {
		names = append(names, step.String())
	}
	return "{" + strings.Join(names, ", ") + "}"
}
