package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS membership_steps (
    plan TEXT NOT NULL,
    step TEXT NOT NULL,
    is_verified_or_key_added BOOLEAN NOT NULL DEFAULT FALSE,
    master_signer_id TEXT NOT NULL DEFAULT '',
    extra_data TEXT NOT NULL DEFAULT '',
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (plan, step)
);

CREATE TABLE IF NOT EXISTS assisted_wallets (
    local_id TEXT PRIMARY KEY,
    plan TEXT NOT NULL,
    is_setup_inheritance BOOLEAN NOT NULL DEFAULT FALSE,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

const defaultSettings = `
INSERT OR IGNORE INTO settings (key, value) VALUES
    ('membership_plan', 'NONE');
`

func InitSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return err
	}

	_, err := db.Exec(defaultSettings)
	return err
}
