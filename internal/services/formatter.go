package services

import (
	"fmt"
	"strings"

	"github.com/ad/go-membership-wizard/internal/fsm"
	"github.com/ad/go-membership-wizard/internal/models"
)

var stepTitles = map[models.MembershipStep]string{
	models.StepAddTapSigner1:        "Add TAPSIGNER #1",
	models.StepAddTapSigner2:        "Add TAPSIGNER #2",
	models.StepAddServerKey:         "Set up the server key",
	models.StepSetupKeyRecovery:     "Set up key recovery",
	models.StepCreateWallet:         "Create the assisted wallet",
	models.StepHoneyAddTapSigner:    "Add the inheritance TAPSIGNER",
	models.StepHoneyAddHardwareKey1: "Add hardware key #1",
	models.StepHoneyAddHardwareKey2: "Add hardware key #2",
	models.StepSetupInheritance:     "Set up inheritance",
}

func StepTitle(step models.MembershipStep) string {
	if title, ok := stepTitles[step]; ok {
		return title
	}
	return step.String()
}

// FormatRemainingTime renders an estimate given in minutes, e.g. "~1h 2m".
func FormatRemainingTime(minutes int) string {
	if minutes <= 0 {
		return "done"
	}
	hours := minutes / 60
	rest := minutes % 60

	var parts []string
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if rest > 0 {
		parts = append(parts, fmt.Sprintf("%dm", rest))
	}
	return "~" + strings.Join(parts, " ")
}

func FormatProgressBar(p models.StepProgress) string {
	if p.Total <= 0 {
		return ""
	}
	filled := min(max(p.Current, 0), p.Total)
	return strings.Repeat("▰", filled) + strings.Repeat("▱", p.Total-filled) +
		fmt.Sprintf(" %d/%d", filled, p.Total)
}

func stateIcon(state fsm.StepState) string {
	switch state {
	case fsm.StateDone:
		return "✅"
	case fsm.StateInProgress:
		return "🔄"
	default:
		return "⬜"
	}
}

// FormatWizardStatus renders the wizard as an HTML message.
func FormatWizardStatus(snap WizardSnapshot, gates WizardGates) string {
	var sb strings.Builder
	sb.WriteString(FormatBold("Plan: " + string(snap.Plan)))
	sb.WriteString("\n\n")

	if len(snap.Steps) == 0 {
		sb.WriteString("No setup steps for this plan. Choose one with /plan.")
		return sb.String()
	}

	for _, p := range snap.Steps {
		marker := ""
		if snap.HasCurrent && snap.CurrentStep == p.Step {
			marker = " 👈"
		}
		sb.WriteString(fmt.Sprintf("%s %s%s\n%s\n",
			stateIcon(p.State()), FormatBold(StepTitle(p.Step)), marker, FormatCode(FormatProgressBar(p))))
	}

	sb.WriteString(fmt.Sprintf("\n⏱ Remaining: %s\n\n", FormatRemainingTime(snap.RemainingTime)))
	sb.WriteString(fmt.Sprintf("%s Keys configured\n", checkMark(gates.KeysConfigured)))
	sb.WriteString(fmt.Sprintf("%s Key recovery ready\n", checkMark(gates.RecoverKeyConfigured)))
	sb.WriteString(fmt.Sprintf("%s Assisted wallet created\n", checkMark(gates.WalletCreated)))
	sb.WriteString(fmt.Sprintf("%s Inheritance set up", checkMark(gates.InheritanceDone)))
	return sb.String()
}

// FormatStepsConfirmed announces steps that moved into the done set between
// two StepDone values. It returns "" when nothing new was completed.
func FormatStepsConfirmed(previous, current models.StepSet, remaining int) string {
	var lines []string
	for _, step := range current.Steps() {
		if !previous.Has(step) {
			lines = append(lines, "✅ "+FormatBold(StepTitle(step)))
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + fmt.Sprintf("\n\n⏱ Remaining: %s", FormatRemainingTime(remaining))
}

func checkMark(ok bool) string {
	if ok {
		return "☑️"
	}
	return "▫️"
}
