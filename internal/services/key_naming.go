package services

import (
	"fmt"

	"github.com/ad/go-membership-wizard/internal/models"
)

const (
	TapSignerBaseName        = "TAPSIGNER"
	TapSignerInheritanceName = "TAPSIGNER (Inheritance)"
)

// NextKeySuffix numbers keys of the same signer type: the first key has no
// suffix, the second is " #2" and so on. Keys are counted from the step
// records the backend reported for the current plan.
func (m *MembershipStepManager) NextKeySuffix(signerType models.SignerType) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return keySuffix(countSigners(m.stepInfo, signerType) + 1)
}

// TapSignerName suggests a name for the TAPSIGNER being added in the current
// step.
func (m *MembershipStepManager) TapSignerName() string {
	step, ok := m.CurrentStep()
	if ok && step == models.StepHoneyAddTapSigner {
		return TapSignerInheritanceName
	}
	return TapSignerBaseName + m.NextKeySuffix(models.SignerTypeNFC)
}

// IsKeyExisted reports whether a step record already references the master
// signer.
func (m *MembershipStepManager) IsKeyExisted(masterSignerID string) bool {
	if masterSignerID == "" {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, info := range m.stepInfo {
		if info.MasterSignerID == masterSignerID {
			return true
		}
	}
	return false
}

func countSigners(infos []models.StepInfo, signerType models.SignerType) int {
	n := 0
	for _, info := range infos {
		if info.ExtraData == "" {
			continue
		}
		extra, err := models.ParseSignerExtra(info.ExtraData)
		if err != nil {
			continue
		}
		if extra.SignerType == signerType {
			n++
		}
	}
	return n
}

func keySuffix(index int) string {
	if index <= 1 {
		return ""
	}
	return fmt.Sprintf(" #%d", index)
}
