package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"kofiapi/internal/domain"
)

const restoreUserSQL = `
INSERT INTO users (` + userColumns + `)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (verification_token) DO NOTHING;
`

// SnapshotStorePG implements domain.SnapshotStore using PostgreSQL.
type SnapshotStorePG struct {
	pool *pgxpool.Pool
}

// NewSnapshotStore creates a new SnapshotStorePG.
func NewSnapshotStore(pool *pgxpool.Pool) *SnapshotStorePG {
	return &SnapshotStorePG{pool: pool}
}

// Export serializes every user and transaction into a versioned snapshot.
func (r *SnapshotStorePG) Export(ctx context.Context) (*domain.Snapshot, error) {
	users := NewUserRepository(r.pool)
	txns := NewTransactionRepository(r.pool)

	allUsers, err := users.List(ctx)
	if err != nil {
		return nil, err
	}
	allTxns, err := txns.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.Snapshot{
		SchemaVersion: domain.SnapshotSchemaVersion,
		SnapshotID:    uuid.NewString(),
		ExportedAt:    time.Now().UTC(),
		Users:         allUsers,
		Transactions:  allTxns,
	}, nil
}

// ImportMerge inserts snapshot rows whose primary key is absent. Existing
// rows are never modified. The whole merge is one database transaction.
func (r *SnapshotStorePG) ImportMerge(ctx context.Context, snap *domain.Snapshot) (domain.ImportStats, error) {
	var stats domain.ImportStats

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return stats, storage("begin import", err)
	}
	defer tx.Rollback(ctx)

	for i := range snap.Users {
		u := &snap.Users[i]
		tag, err := tx.Exec(ctx, restoreUserSQL,
			u.VerificationToken, u.Name, u.RetentionDays, u.PreferredCurrency, u.LatestRequestAt, u.CreatedAt)
		if err != nil {
			return domain.ImportStats{}, storage("import user", err)
		}
		stats.UsersAdded += int(tag.RowsAffected())
	}
	for i := range snap.Transactions {
		tag, err := tx.Exec(ctx, insertTransactionSQL, transactionArgs(&snap.Transactions[i])...)
		if err != nil {
			return domain.ImportStats{}, storage("import transaction", err)
		}
		stats.TransactionsAdded += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.ImportStats{}, storage("commit import", err)
	}
	return stats, nil
}

// ReplaceAll discards the current contents and loads the snapshot. Runs in
// one database transaction, so a failure leaves the live store untouched.
func (r *SnapshotStorePG) ReplaceAll(ctx context.Context, snap *domain.Snapshot) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return storage("begin recover", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM transactions`); err != nil {
		return storage("clear transactions", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM users`); err != nil {
		return storage("clear users", err)
	}

	for i := range snap.Users {
		u := &snap.Users[i]
		if _, err := tx.Exec(ctx, restoreUserSQL,
			u.VerificationToken, u.Name, u.RetentionDays, u.PreferredCurrency, u.LatestRequestAt, u.CreatedAt); err != nil {
			return storage("restore user", err)
		}
	}
	for i := range snap.Transactions {
		if _, err := tx.Exec(ctx, insertTransactionSQL, transactionArgs(&snap.Transactions[i])...); err != nil {
			return storage("restore transaction", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return storage("commit recover", err)
	}
	return nil
}
