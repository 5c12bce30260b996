package db

import (
	"database/sql"

	"github.com/ad/go-membership-wizard/internal/models"
	log "github.com/sirupsen/logrus"
)

type MembershipStepRepository struct {
	queue *DBQueue
}

func NewMembershipStepRepository(queue *DBQueue) *MembershipStepRepository {
	return &MembershipStepRepository{queue: queue}
}

func (r *MembershipStepRepository) Upsert(info *models.StepInfo) error {
	_, err := r.queue.Execute(func(db *sql.DB) (any, error) {
		_, err := db.Exec(`
			INSERT INTO membership_steps (plan, step, is_verified_or_key_added, master_signer_id, extra_data, updated_at)
			VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(plan, step) DO UPDATE SET
				is_verified_or_key_added = excluded.is_verified_or_key_added,
				master_signer_id = excluded.master_signer_id,
				extra_data = excluded.extra_data,
				updated_at = excluded.updated_at
		`, string(info.Plan), info.Step.String(), info.IsVerifiedOrKeyAdded, info.MasterSignerID, info.ExtraData)
		return nil, err
	})
	return err
}

func (r *MembershipStepRepository) MarkVerified(plan models.MembershipPlan, step models.MembershipStep, masterSignerID, extraData string) error {
	return r.Upsert(&models.StepInfo{
		Plan:                 plan,
		Step:                 step,
		IsVerifiedOrKeyAdded: true,
		MasterSignerID:       masterSignerID,
		ExtraData:            extraData,
	})
}

// MarkRequired flags the step as needing to be redone. Any key previously
// attached to it is dropped.
func (r *MembershipStepRepository) MarkRequired(plan models.MembershipPlan, step models.MembershipStep) error {
	return r.Upsert(&models.StepInfo{Plan: plan, Step: step})
}

func (r *MembershipStepRepository) ListByPlan(plan models.MembershipPlan) ([]models.StepInfo, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (any, error) {
		rows, err := db.Query(`
			SELECT plan, step, is_verified_or_key_added, master_signer_id, extra_data, updated_at
			FROM membership_steps WHERE plan = ?
			ORDER BY step
		`, string(plan))
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var infos []models.StepInfo
		for rows.Next() {
			var (
				planName, stepName string
				info               models.StepInfo
				updatedAt          sql.NullTime
			)
			if err := rows.Scan(&planName, &stepName, &info.IsVerifiedOrKeyAdded, &info.MasterSignerID, &info.ExtraData, &updatedAt); err != nil {
				return nil, err
			}
			step, err := models.ParseMembershipStep(stepName)
			if err != nil {
				log.Printf("[DB] skipping membership step row %q for plan %s: %v", stepName, planName, err)
				continue
			}
			info.Plan = models.MembershipPlan(planName)
			info.Step = step
			if updatedAt.Valid {
				info.UpdatedAt = updatedAt.Time
			}
			infos = append(infos, info)
		}
		return infos, rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.StepInfo), nil
}

func (r *MembershipStepRepository) DeleteByPlan(plan models.MembershipPlan) (int64, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (any, error) {
		res, err := db.Exec(`DELETE FROM membership_steps WHERE plan = ?`, string(plan))
		if err != nil {
			return int64(0), err
		}
		return res.RowsAffected()
	})
	if err != nil {
		return 0, err
	}
	return result.(int64), nil
}
