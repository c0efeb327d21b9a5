package repo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kofiapi/internal/domain"
)

// TransactionRepositoryPG implements domain.TransactionRepository using PostgreSQL.
type TransactionRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new transaction repo.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepositoryPG {
	return &TransactionRepositoryPG{pool: pool}
}

// Get fetches a single transaction scoped to its owner.
func (r *TransactionRepositoryPG) Get(ctx context.Context, token, messageID string) (*domain.Transaction, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+transactionColumns+`
FROM transactions
WHERE verification_token = $1 AND message_id = $2;
`, token, messageID)
	return scanTransaction(row)
}

// ListByUser returns every transaction belonging to the user, oldest first.
func (r *TransactionRepositoryPG) ListByUser(ctx context.Context, token string) ([]domain.Transaction, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+transactionColumns+`
FROM transactions
WHERE verification_token = $1
ORDER BY timestamp;
`, token)
	if err != nil {
		return nil, storage("list transactions", err)
	}
	return collectTransactions(rows)
}

// ListSince returns the user's transactions at or after the given instant.
func (r *TransactionRepositoryPG) ListSince(ctx context.Context, token string, since time.Time) ([]domain.Transaction, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+transactionColumns+`
FROM transactions
WHERE verification_token = $1 AND timestamp >= $2
ORDER BY timestamp;
`, token, since)
	if err != nil {
		return nil, storage("list transactions since", err)
	}
	return collectTransactions(rows)
}

// ListAll returns the full transaction table, oldest first.
func (r *TransactionRepositoryPG) ListAll(ctx context.Context) ([]domain.Transaction, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+transactionColumns+` FROM transactions ORDER BY timestamp`)
	if err != nil {
		return nil, storage("list all transactions", err)
	}
	return collectTransactions(rows)
}

// DeleteOlderThan removes the user's transactions strictly older than cutoff
// and reports how many rows went away.
func (r *TransactionRepositoryPG) DeleteOlderThan(ctx context.Context, token string, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
DELETE FROM transactions
WHERE verification_token = $1 AND timestamp < $2;
`, token, cutoff)
	if err != nil {
		return 0, storage("delete expired transactions", err)
	}
	return tag.RowsAffected(), nil
}

func collectTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	defer rows.Close()

	// Non-nil even when empty so handlers marshal [] rather than null.
	items := make([]domain.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, storage("iterate transactions", err)
	}
	return items, nil
}
