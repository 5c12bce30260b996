package services

import (
	"testing"

	"github.com/ad/go-membership-wizard/internal/fsm"
	"github.com/ad/go-membership-wizard/internal/models"
	"pgregory.net/rapid"
)

func totalSubSteps(plan models.MembershipPlan) int {
	total := 0
	for _, st := range planSteps(plan) {
		total += st.total
	}
	return total
}

func TestNewStepTableInitialRemainingTime(t *testing.T) {
	tests := []struct {
		plan models.MembershipPlan
		want int
	}{
		{models.PlanIronHand, 42},
		{models.PlanHoneyBadger, (8 + 8 + 8 + 2 + 2 + 2 + 12) * MinutesPerSubStep},
		{models.PlanHoneyBadgerPremier, (8 + 8 + 8 + 2 + 2 + 2 + 12) * MinutesPerSubStep},
		{models.PlanNone, 0},
	}
	for _, tt := range tests {
		table := newStepTable(tt.plan)
		if got := table.remainingAll(); got != tt.want {
			t.Errorf("%s: remaining = %d, want %d", tt.plan, got, tt.want)
		}
		if !table.done().IsEmpty() {
			t.Errorf("%s: fresh table has done steps %s", tt.plan, table.done())
		}
	}
}

func TestIronHandWalkthrough(t *testing.T) {
	table := newStepTable(models.PlanIronHand)
	if table.remainingAll() != 42 {
		t.Fatalf("expected 42, got %d", table.remainingAll())
	}
	table.apply([]models.StepInfo{{Step: models.StepAddTapSigner1, IsVerifiedOrKeyAdded: true}})
	if table.remainingAll() != 26 {
		t.Errorf("expected 26 after tap signer 1 is done, got %d", table.remainingAll())
	}
	if !table.done().Has(models.StepAddTapSigner1) {
		t.Error("tap signer 1 should be done")
	}
}

func TestProperty1_ForwardAndBackwardClamp(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		plan := rapid.SampledFrom([]models.MembershipPlan{models.PlanIronHand, models.PlanHoneyBadger}).Draw(t, "plan")
		steps := planSteps(plan)
		st := rapid.SampledFrom(steps).Draw(t, "step")
		moves := rapid.SliceOf(rapid.Bool()).Draw(t, "moves")

		table := newStepTable(plan)
		wasDone := false
		for _, forward := range moves {
			before := table.slots[st.step].current
			table.advance(st.step, forward)
			after := table.slots[st.step].current

			if after < 0 || after > st.total {
				t.Fatalf("counter %d escaped [0,%d]", after, st.total)
			}
			if wasDone && after != before {
				t.Fatalf("done step moved from %d to %d", before, after)
			}
			wasDone = wasDone || fsm.StateOf(after, st.total) == fsm.StateDone
		}
	})
}

func TestForwardReachesTotalAndStays(t *testing.T) {
	for _, st := range planSteps(models.PlanIronHand) {
		table := newStepTable(models.PlanIronHand)
		for i := 0; i < st.total+3; i++ {
			table.advance(st.step, true)
		}
		p, _ := table.progress(st.step)
		if p.Current != st.total {
			t.Errorf("%s: current = %d, want %d", st.step, p.Current, st.total)
		}

		table = newStepTable(models.PlanIronHand)
		table.advance(st.step, false)
		p, _ = table.progress(st.step)
		if p.Current != 0 {
			t.Errorf("%s: backward from 0 gave %d", st.step, p.Current)
		}
	}
}

func TestProperty2_VerifiedSyncIsIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		st := rapid.SampledFrom(planSteps(models.PlanHoneyBadger)).Draw(t, "step")
		infos := []models.StepInfo{{Step: st.step, IsVerifiedOrKeyAdded: true}}

		once := newStepTable(models.PlanHoneyBadger)
		once.apply(infos)
		twice := newStepTable(models.PlanHoneyBadger)
		twice.apply(infos)
		twice.apply(infos)

		if once.slots != twice.slots {
			t.Fatalf("applying twice changed the table")
		}
		if !twice.done().Has(st.step) || twice.slots[st.step].current != st.total {
			t.Fatalf("step %s not fully done", st.step)
		}
	})
}

func TestProperty3_EmptySyncResets(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		table := newStepTable(models.PlanIronHand)
		for _, st := range planSteps(models.PlanIronHand) {
			n := rapid.IntRange(0, st.total).Draw(t, st.step.String())
			for i := 0; i < n; i++ {
				table.advance(st.step, true)
			}
		}
		table.apply(nil)

		for _, st := range planSteps(models.PlanIronHand) {
			if table.slots[st.step].current != 0 {
				t.Fatalf("%s not reset", st.step)
			}
		}
		if !table.done().IsEmpty() {
			t.Fatalf("done set not emptied: %s", table.done())
		}
		if table.remainingAll() != totalSubSteps(models.PlanIronHand)*MinutesPerSubStep {
			t.Fatalf("remaining not restored")
		}
	})
}

func TestProperty4_DoneStepReducesRemainingByItsCost(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		plan := rapid.SampledFrom([]models.MembershipPlan{models.PlanIronHand, models.PlanHoneyBadgerPlus}).Draw(t, "plan")
		st := rapid.SampledFrom(planSteps(plan)).Draw(t, "step")

		table := newStepTable(plan)
		before := table.remainingAll()
		table.apply([]models.StepInfo{{Step: st.step, IsVerifiedOrKeyAdded: true}})

		if diff := before - table.remainingAll(); diff != st.total*MinutesPerSubStep {
			t.Fatalf("remaining dropped by %d, want %d", diff, st.total*MinutesPerSubStep)
		}
	})
}

func TestApplyLeavesUnmentionedStepsAlone(t *testing.T) {
	table := newStepTable(models.PlanIronHand)
	table.advance(models.StepCreateWallet, true)
	table.markDone(models.StepAddTapSigner2)

	skipped := table.apply([]models.StepInfo{
		{Step: models.StepAddTapSigner1, IsVerifiedOrKeyAdded: true},
		{Step: models.StepAddTapSigner2, IsVerifiedOrKeyAdded: false},
		{Step: models.StepSetupInheritance, IsVerifiedOrKeyAdded: true},
	})

	if len(skipped) != 1 || skipped[0].Step != models.StepSetupInheritance {
		t.Fatalf("expected SETUP_INHERITANCE to be skipped, got %+v", skipped)
	}
	if table.slots[models.StepCreateWallet].current != 1 {
		t.Error("CREATE_WALLET progress should be untouched")
	}
	if table.slots[models.StepAddTapSigner2].current != 0 || table.done().Has(models.StepAddTapSigner2) {
		t.Error("ADD_TAP_SIGNER_2 should be required again")
	}
	if table.has(models.StepSetupInheritance) {
		t.Error("SETUP_INHERITANCE is not an IRON_HAND step")
	}
}

func TestRemainingSubset(t *testing.T) {
	table := newStepTable(models.PlanIronHand)
	table.advance(models.StepAddServerKey, true)

	got := table.remaining(models.StepAddServerKey, models.StepCreateWallet, models.StepHoneyAddTapSigner)
	want := (1 + 2) * MinutesPerSubStep
	if got != want {
		t.Errorf("remaining = %d, want %d", got, want)
	}
}

func TestProjectSteps(t *testing.T) {
	snap := ProjectSteps(models.PlanIronHand, []models.StepInfo{
		{Step: models.StepAddTapSigner1, IsVerifiedOrKeyAdded: true},
		{Step: models.StepAddServerKey, IsVerifiedOrKeyAdded: true},
	})
	if snap.RemainingTime != 42-16-4 {
		t.Errorf("remaining = %d, want %d", snap.RemainingTime, 42-16-4)
	}
	if len(snap.Steps) != 5 || snap.Steps[0].Step != models.StepAddTapSigner1 {
		t.Fatalf("unexpected steps %+v", snap.Steps)
	}
	if snap.Steps[0].State() != fsm.StateDone || snap.Steps[1].State() != fsm.StateNotStarted {
		t.Errorf("unexpected states %s %s", snap.Steps[0].State(), snap.Steps[1].State())
	}
	if !snap.Done.ContainsAll(models.StepAddTapSigner1, models.StepAddServerKey) || snap.Done.Len() != 2 {
		t.Errorf("unexpected done set %s", snap.Done)
	}
}
