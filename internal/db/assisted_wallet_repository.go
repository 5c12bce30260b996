package db

import (
	"database/sql"

	"github.com/ad/go-membership-wizard/internal/models"
)

type AssistedWalletRepository struct {
	queue *DBQueue
}

func NewAssistedWalletRepository(queue *DBQueue) *AssistedWalletRepository {
	return &AssistedWalletRepository{queue: queue}
}

func (r *AssistedWalletRepository) Upsert(wallet *models.AssistedWallet) error {
	_, err := r.queue.Execute(func(db *sql.DB) (any, error) {
		_, err := db.Exec(`
			INSERT INTO assisted_wallets (local_id, plan, is_setup_inheritance)
			VALUES (?, ?, ?)
			ON CONFLICT(local_id) DO UPDATE SET
				plan = excluded.plan,
				is_setup_inheritance = excluded.is_setup_inheritance
		`, wallet.LocalID, string(wallet.Plan), wallet.IsSetupInheritance)
		return nil, err
	})
	return err
}

func (r *AssistedWalletRepository) SetInheritance(localID string, isSetup bool) error {
	_, err := r.queue.Execute(func(db *sql.DB) (any, error) {
		res, err := db.Exec(`UPDATE assisted_wallets SET is_setup_inheritance = ? WHERE local_id = ?`, isSetup, localID)
		if err != nil {
			return nil, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, sql.ErrNoRows
		}
		return nil, nil
	})
	return err
}

func (r *AssistedWalletRepository) GetAll() ([]models.AssistedWallet, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (any, error) {
		rows, err := db.Query(`
			SELECT local_id, plan, is_setup_inheritance, created_at
			FROM assisted_wallets ORDER BY created_at, local_id
		`)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var wallets []models.AssistedWallet
		for rows.Next() {
			var (
				wallet    models.AssistedWallet
				plan      string
				createdAt sql.NullTime
			)
			if err := rows.Scan(&wallet.LocalID, &plan, &wallet.IsSetupInheritance, &createdAt); err != nil {
				return nil, err
			}
			wallet.Plan = models.MembershipPlan(plan)
			if createdAt.Valid {
				wallet.CreatedAt = createdAt.Time
			}
			wallets = append(wallets, wallet)
		}
		return wallets, rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.AssistedWallet), nil
}

func (r *AssistedWalletRepository) Delete(localID string) error {
	_, err := r.queue.Execute(func(db *sql.DB) (any, error) {
		_, err := db.Exec(`DELETE FROM assisted_wallets WHERE local_id = ?`, localID)
		return nil, err
	})
	return err
}
