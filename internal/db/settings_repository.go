package db

import (
	"database/sql"
	"errors"

	"github.com/ad/go-membership-wizard/internal/models"
)

const membershipPlanKey = "membership_plan"

type SettingsRepository struct {
	queue *DBQueue
}

func NewSettingsRepository(queue *DBQueue) *SettingsRepository {
	return &SettingsRepository{queue: queue}
}

func (r *SettingsRepository) Get(key string) (string, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (any, error) {
		var value string
		err := db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
		return value, err
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.queue.Execute(func(db *sql.DB) (any, error) {
		_, err := db.Exec(`
			INSERT INTO settings (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, key, value)
		return nil, err
	})
	return err
}

// GetMembershipPlan returns the persisted plan, NONE when nothing was stored.
func (r *SettingsRepository) GetMembershipPlan() (models.MembershipPlan, error) {
	value, err := r.Get(membershipPlanKey)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PlanNone, nil
	}
	if err != nil {
		return models.PlanNone, err
	}
	return models.ParseMembershipPlan(value)
}

func (r *SettingsRepository) SetMembershipPlan(plan models.MembershipPlan) error {
	return r.Set(membershipPlanKey, string(plan))
}
