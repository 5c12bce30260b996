package services

import (
	"testing"

	"github.com/ad/go-membership-wizard/internal/models"
	"github.com/stretchr/testify/assert"
)

func keyAdded(step models.MembershipStep, masterSignerID string, signerType models.SignerType) models.StepInfo {
	extra := &models.SignerExtra{SignerType: signerType}
	data, _ := extra.ToJSON()
	return models.StepInfo{
		Step:                 step,
		IsVerifiedOrKeyAdded: true,
		MasterSignerID:       masterSignerID,
		ExtraData:            data,
	}
}

func TestNextKeySuffix(t *testing.T) {
	m, _ := newTestManager(t)
	m.SetCurrentPlan(models.PlanHoneyBadger)

	assert.Equal(t, "", m.NextKeySuffix(models.SignerTypeNFC))
	assert.Equal(t, "TAPSIGNER", m.TapSignerName())

	m.applySteps(m.generation, []models.StepInfo{
		keyAdded(models.StepHoneyAddHardwareKey1, "mfp-a", models.SignerTypeNFC),
		keyAdded(models.StepHoneyAddHardwareKey2, "mfp-b", models.SignerTypeColdcardNFC),
		{Step: models.StepAddServerKey, ExtraData: "{broken"},
	})

	assert.Equal(t, " #2", m.NextKeySuffix(models.SignerTypeNFC))
	assert.Equal(t, " #2", m.NextKeySuffix(models.SignerTypeColdcardNFC))
	assert.Equal(t, "", m.NextKeySuffix(models.SignerTypeHardware))
	assert.Equal(t, "TAPSIGNER #2", m.TapSignerName())

	m.SetCurrentStep(models.StepHoneyAddTapSigner)
	assert.Equal(t, TapSignerInheritanceName, m.TapSignerName())
}

func TestIsKeyExisted(t *testing.T) {
	m, _ := newTestManager(t)
	m.SetCurrentPlan(models.PlanIronHand)
	m.applySteps(m.generation, []models.StepInfo{
		keyAdded(models.StepAddTapSigner1, "mfp-a", models.SignerTypeNFC),
	})

	assert.True(t, m.IsKeyExisted("mfp-a"))
	assert.False(t, m.IsKeyExisted("mfp-z"))
	assert.False(t, m.IsKeyExisted(""))

	// a plan change forgets the backend records
	m.SetCurrentPlan(models.PlanHoneyBadger)
	assert.False(t, m.IsKeyExisted("mfp-a"))
}

func TestKeySuffix(t *testing.T) {
	assert.Equal(t, "", keySuffix(0))
	assert.Equal(t, "", keySuffix(1))
	assert.Equal(t, " #3", keySuffix(3))
}
