package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"kofiapi/internal/domain"
)

const insertTransactionSQL = `
INSERT INTO transactions (` + transactionColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
ON CONFLICT (message_id) DO NOTHING;
`

func transactionArgs(t *domain.Transaction) []any {
	return []any{
		t.MessageID,
		t.VerificationToken,
		t.KofiTransactionID,
		t.Type,
		t.Timestamp,
		t.Amount,
		t.Currency,
		t.FromName,
		t.Message,
		t.URL,
		t.Email,
		t.IsPublic,
		t.IsSubscriptionPayment,
		t.IsFirstSubscriptionPayment,
		t.TierName,
		t.ShopItems,
		t.Shipping,
		t.Payload,
	}
}

// IngestStorePG implements domain.IngestStore backed by PostgreSQL.
type IngestStorePG struct {
	pool *pgxpool.Pool
}

// NewIngestStore creates a new IngestStorePG.
func NewIngestStore(pool *pgxpool.Pool) *IngestStorePG {
	return &IngestStorePG{pool: pool}
}

// RecordDonation upserts the user and appends the transaction in a single
// database transaction. Concurrent ingests racing on a never-seen
// verification token resolve through the primary-key conflict clause, so
// exactly one user row is created. A replayed message id reports
// created=false without inserting anything.
func (r *IngestStorePG) RecordDonation(ctx context.Context, user *domain.User, txn *domain.Transaction) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, storage("begin ingest", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
INSERT INTO users (verification_token, name, data_retention_days, preferred_currency)
VALUES ($1, $2, $3, $4)
ON CONFLICT (verification_token) DO NOTHING;
`, user.VerificationToken, user.Name, user.RetentionDays, user.PreferredCurrency)
	if err != nil {
		return false, storage("upsert user", err)
	}

	tag, err := tx.Exec(ctx, insertTransactionSQL, transactionArgs(txn)...)
	if err != nil {
		return false, storage("insert transaction", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, storage("commit ingest", err)
	}
	return tag.RowsAffected() > 0, nil
}
