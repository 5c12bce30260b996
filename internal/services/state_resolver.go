package services

import (
	"github.com/ad/go-membership-wizard/internal/fsm"
	"github.com/ad/go-membership-wizard/internal/models"
)

// ResolveNextStep returns the first step of the plan, in wizard order, that
// is not done yet. ok is false when the plan has no open steps.
func ResolveNextStep(snap WizardSnapshot) (step models.MembershipStep, ok bool) {
	for _, p := range snap.Steps {
		if p.State() != fsm.StateDone {
			return p.Step, true
		}
	}
	return 0, false
}
