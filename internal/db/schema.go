package db

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS leads (
		id           BIGSERIAL PRIMARY KEY,
		name         TEXT NOT NULL,
		address      TEXT NOT NULL,
		city         TEXT NOT NULL,
		country      TEXT NOT NULL,
		niche        TEXT NOT NULL,
		phone        TEXT NOT NULL DEFAULT '',
		email        TEXT NOT NULL DEFAULT '',
		website      TEXT NOT NULL DEFAULT '',
		source       TEXT NOT NULL,
		scraped_at   TIMESTAMPTZ NOT NULL,
		name_hash    TEXT NOT NULL,
		address_hash TEXT NOT NULL,
		email_hash   TEXT NOT NULL DEFAULT '',
		phone_hash   TEXT NOT NULL DEFAULT '',
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_leads_name_address
		ON leads (name_hash, address_hash)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_leads_email_phone
		ON leads (email_hash, phone_hash)
		WHERE email_hash <> '' AND phone_hash <> ''`,
	`CREATE INDEX IF NOT EXISTS idx_leads_name_hash ON leads (name_hash)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_address_hash ON leads (address_hash)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_email_hash ON leads (email_hash)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_phone_hash ON leads (phone_hash)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_source ON leads (source)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_city_country ON leads (city, country)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_niche ON leads (niche)`,
	`CREATE TABLE IF NOT EXISTS dedup_log (
		id                 BIGSERIAL PRIMARY KEY,
		operation_type     TEXT NOT NULL,
		total_leads        INTEGER NOT NULL,
		duplicates_found   INTEGER NOT NULL,
		duplicates_removed INTEGER NOT NULL,
		final_count        INTEGER NOT NULL,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate creates the leads and dedup_log tables and their indexes if missing.
func (db *DB) Migrate(ctx context.Context) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, stmt := range schemaStatements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit schema: %w", err)
	}
	return nil
}
