package models

import (
	"fmt"
	"strings"
	"time"
)

type MembershipStep int

const (
	StepAddTapSigner1 MembershipStep = iota
	StepAddTapSigner2
	StepAddServerKey
	StepSetupKeyRecovery
	StepCreateWallet
	StepHoneyAddTapSigner
	StepHoneyAddHardwareKey1
	StepHoneyAddHardwareKey2
	StepSetupInheritance

	MembershipStepCount = int(StepSetupInheritance) + 1
)

var membershipStepNames = [MembershipStepCount]string{
	StepAddTapSigner1:        "ADD_TAP_SIGNER_1",
	StepAddTapSigner2:        "ADD_TAP_SIGNER_2",
	StepAddServerKey:         "ADD_SERVER_KEY",
	StepSetupKeyRecovery:     "SETUP_KEY_RECOVERY",
	StepCreateWallet:         "CREATE_WALLET",
	StepHoneyAddTapSigner:    "HONEY_ADD_TAP_SIGNER",
	StepHoneyAddHardwareKey1: "HONEY_ADD_HARDWARE_KEY_1",
	StepHoneyAddHardwareKey2: "HONEY_ADD_HARDWARE_KEY_2",
	StepSetupInheritance:     "SETUP_INHERITANCE",
}

// The backend still reports the server key step under its historical name.
var membershipStepAliases = map[string]MembershipStep{
	"ADD_SEVER_KEY": StepAddServerKey,
}

func (s MembershipStep) Valid() bool {
	return s >= 0 && int(s) < MembershipStepCount
}

func (s MembershipStep) String() string {
	if !s.Valid() {
		return fmt.Sprintf("MembershipStep(%d)", int(s))
	}
	return membershipStepNames[s]
}

func ParseMembershipStep(value string) (MembershipStep, error) {
	name := strings.ToUpper(strings.TrimSpace(value))
	for i, n := range membershipStepNames {
		if n == name {
			return MembershipStep(i), nil
		}
	}
	if step, ok := membershipStepAliases[name]; ok {
		return step, nil
	}
	return 0, fmt.Errorf("unknown membership step: %q", value)
}

func AllMembershipSteps() []MembershipStep {
	steps := make([]MembershipStep, MembershipStepCount)
	for i := range steps {
		steps[i] = MembershipStep(i)
	}
	return steps
}

type MembershipPlan string

const (
	PlanNone               MembershipPlan = "NONE"
	PlanIronHand           MembershipPlan = "IRON_HAND"
	PlanHoneyBadger        MembershipPlan = "HONEY_BADGER"
	PlanHoneyBadgerPlus    MembershipPlan = "HONEY_BADGER_PLUS"
	PlanHoneyBadgerPremier MembershipPlan = "HONEY_BADGER_PREMIER"
)

func (p MembershipPlan) IsHoneyFamily() bool {
	switch p {
	case PlanHoneyBadger, PlanHoneyBadgerPlus, PlanHoneyBadgerPremier:
		return true
	default:
		return false
	}
}

func (p MembershipPlan) Valid() bool {
	return p == PlanNone || p == PlanIronHand || p.IsHoneyFamily()
}

func ParseMembershipPlan(value string) (MembershipPlan, error) {
	plan := MembershipPlan(strings.ToUpper(strings.TrimSpace(value)))
	if plan == "" {
		return PlanNone, nil
	}
	if !plan.Valid() {
		return PlanNone, fmt.Errorf("unknown membership plan: %q", value)
	}
	return plan, nil
}

func AllMembershipPlans() []MembershipPlan {
	return []MembershipPlan{PlanNone, PlanIronHand, PlanHoneyBadger, PlanHoneyBadgerPlus, PlanHoneyBadgerPremier}
}

// StepInfo is a step record as reported by the membership backend.
type StepInfo struct {
	Plan                 MembershipPlan
	Step                 MembershipStep
	IsVerifiedOrKeyAdded bool
	MasterSignerID       string
	ExtraData            string
	UpdatedAt            time.Time
}

type AssistedWallet struct {
	LocalID            string
	Plan               MembershipPlan
	IsSetupInheritance bool
	CreatedAt          time.Time
}
