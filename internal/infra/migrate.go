package infra

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		verification_token  TEXT PRIMARY KEY,
		name                TEXT NOT NULL DEFAULT '',
		data_retention_days INT,
		preferred_currency  TEXT NOT NULL DEFAULT 'USD',
		latest_request_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS transactions (
		message_id                    TEXT PRIMARY KEY,
		verification_token            TEXT NOT NULL,
		kofi_transaction_id           TEXT NOT NULL,
		type                          TEXT NOT NULL,
		timestamp                     TIMESTAMPTZ NOT NULL,
		amount                        TEXT NOT NULL,
		currency                      TEXT NOT NULL,
		from_name                     TEXT NOT NULL DEFAULT '',
		message                       TEXT NOT NULL DEFAULT '',
		url                           TEXT NOT NULL DEFAULT '',
		email                         TEXT NOT NULL DEFAULT '',
		is_public                     BOOLEAN NOT NULL DEFAULT FALSE,
		is_subscription_payment       BOOLEAN NOT NULL DEFAULT FALSE,
		is_first_subscription_payment BOOLEAN NOT NULL DEFAULT FALSE,
		tier_name                     TEXT NOT NULL DEFAULT '',
		shop_items                    JSONB,
		shipping                      JSONB,
		payload                       JSONB NOT NULL DEFAULT '{}'::jsonb
	);`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_token ON transactions (verification_token);`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_token_ts ON transactions (verification_token, timestamp);`,
}

// Migrate applies the schema at startup. Every statement is idempotent, so
// re-running against an existing database is safe.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
