package services

import (
	"github.com/ad/go-membership-wizard/internal/fsm"
	"github.com/ad/go-membership-wizard/internal/models"
)

// MinutesPerSubStep is the estimated cost of one wizard sub-step.
const MinutesPerSubStep = 2

var (
	ironHandSteps = []stepTotal{
		{models.StepAddTapSigner1, 8},
		{models.StepAddTapSigner2, 8},
		{models.StepAddServerKey, 2},
		{models.StepSetupKeyRecovery, 1},
		{models.StepCreateWallet, 2},
	}
	honeyBadgerSteps = []stepTotal{
		{models.StepHoneyAddTapSigner, 8},
		{models.StepHoneyAddHardwareKey1, 8},
		{models.StepHoneyAddHardwareKey2, 8},
		{models.StepAddServerKey, 2},
		{models.StepSetupKeyRecovery, 2},
		{models.StepCreateWallet, 2},
		{models.StepSetupInheritance, 12},
	}

	ironHandKeySteps = []models.MembershipStep{
		models.StepAddTapSigner1,
		models.StepAddTapSigner2,
		models.StepAddServerKey,
	}
	honeyBadgerKeySteps = []models.MembershipStep{
		models.StepHoneyAddTapSigner,
		models.StepHoneyAddHardwareKey1,
		models.StepHoneyAddHardwareKey2,
		models.StepAddServerKey,
	}
)

type stepTotal struct {
	step  models.MembershipStep
	total int
}

func planSteps(plan models.MembershipPlan) []stepTotal {
	switch {
	case plan == models.PlanIronHand:
		return ironHandSteps
	case plan.IsHoneyFamily():
		return honeyBadgerSteps
	default:
		return nil
	}
}

// KeySteps lists the steps that must be done before the plan's keys count as
// configured.
func KeySteps(plan models.MembershipPlan) []models.MembershipStep {
	if plan == models.PlanIronHand {
		return ironHandKeySteps
	}
	return honeyBadgerKeySteps
}

type stepSlot struct {
	enabled bool
	current int
	total   int
}

// stepTable is indexed by step ordinal. Slots of steps outside the plan stay
// disabled.
type stepTable struct {
	plan  models.MembershipPlan
	slots [models.MembershipStepCount]stepSlot
}

func newStepTable(plan models.MembershipPlan) stepTable {
	t := stepTable{plan: plan}
	for _, st := range planSteps(plan) {
		t.slots[st.step] = stepSlot{enabled: true, total: st.total}
	}
	return t
}

func (t *stepTable) has(step models.MembershipStep) bool {
	return step.Valid() && t.slots[step].enabled
}

func (t *stepTable) reset() {
	for i := range t.slots {
		t.slots[i].current = 0
	}
}

// advance moves the step one sub-step forward or back. Done steps do not move.
func (t *stepTable) advance(step models.MembershipStep, forward bool) {
	slot := &t.slots[step]
	if slot.current >= slot.total {
		return
	}
	if forward {
		slot.current = min(slot.current+1, slot.total)
	} else {
		slot.current = max(slot.current-1, 0)
	}
}

func (t *stepTable) markDone(step models.MembershipStep) {
	t.slots[step].current = t.slots[step].total
}

func (t *stepTable) markRequired(step models.MembershipStep) {
	t.slots[step].current = 0
}

// apply reconciles the table with a backend step list and returns the records
// it could not place.
func (t *stepTable) apply(infos []models.StepInfo) []models.StepInfo {
	if len(infos) == 0 {
		t.reset()
		return nil
	}
	var skipped []models.StepInfo
	for _, info := range infos {
		if !t.has(info.Step) {
			skipped = append(skipped, info)
			continue
		}
		if info.IsVerifiedOrKeyAdded {
			t.markDone(info.Step)
		} else {
			t.markRequired(info.Step)
		}
	}
	return skipped
}

func (t *stepTable) done() models.StepSet {
	var set models.StepSet
	for i, slot := range t.slots {
		if slot.enabled && fsm.StateOf(slot.current, slot.total) == fsm.StateDone {
			set = set.With(models.MembershipStep(i))
		}
	}
	return set
}

func (t *stepTable) remaining(steps ...models.MembershipStep) int {
	total := 0
	for _, step := range steps {
		if !t.has(step) {
			continue
		}
		slot := t.slots[step]
		total += max(slot.total-slot.current, 0) * MinutesPerSubStep
	}
	return total
}

func (t *stepTable) steps() []models.MembershipStep {
	var steps []models.MembershipStep
	for _, st := range planSteps(t.plan) {
		steps = append(steps, st.step)
	}
	return steps
}

func (t *stepTable) remainingAll() int {
	return t.remaining(t.steps()...)
}

func (t *stepTable) progress(step models.MembershipStep) (models.StepProgress, bool) {
	if !t.has(step) {
		return models.StepProgress{}, false
	}
	slot := t.slots[step]
	return models.StepProgress{Step: step, Current: slot.current, Total: slot.total}, true
}

func (t *stepTable) snapshot() WizardSnapshot {
	snap := WizardSnapshot{
		Plan:          t.plan,
		Done:          t.done(),
		RemainingTime: t.remainingAll(),
	}
	for _, step := range t.steps() {
		p, _ := t.progress(step)
		snap.Steps = append(snap.Steps, p)
	}
	return snap
}

// WizardSnapshot is a point-in-time copy of the wizard state.
type WizardSnapshot struct {
	Plan          models.MembershipPlan
	CurrentStep   models.MembershipStep
	HasCurrent    bool
	Steps         []models.StepProgress
	Done          models.StepSet
	RemainingTime int
}

// ProjectSteps shows what the wizard of a plan looks like after a single
// backend sync with the given records.
func ProjectSteps(plan models.MembershipPlan, infos []models.StepInfo) WizardSnapshot {
	t := newStepTable(plan)
	t.apply(infos)
	return t.snapshot()
}
