package domain

import (
	"context"
	"time"
)

// UserRepository defines access methods for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Get(ctx context.Context, token string) (*User, error)
	List(ctx context.Context) ([]User, error)
	UpdateRetention(ctx context.Context, token string, days int) error
	UpdatePreferredCurrency(ctx context.Context, token, currency string) error
	TouchLatestRequest(ctx context.Context, token string, at time.Time) error
	// Delete removes the user and cascades to all of its transactions.
	Delete(ctx context.Context, token string) error
}

// TransactionRepository defines persistence for donation transactions.
type TransactionRepository interface {
	Get(ctx context.Context, token, messageID string) (*Transaction, error)
	ListByUser(ctx context.Context, token string) ([]Transaction, error)
	ListSince(ctx context.Context, token string, since time.Time) ([]Transaction, error)
	ListAll(ctx context.Context) ([]Transaction, error)
	DeleteOlderThan(ctx context.Context, token string, cutoff time.Time) (int64, error)
}

// IngestStore records a webhook delivery atomically: the user upsert and the
// transaction insert land together or not at all.
type IngestStore interface {
	// RecordDonation returns created=false when the message id was already
	// stored; redeliveries are idempotent successes.
	RecordDonation(ctx context.Context, user *User, txn *Transaction) (created bool, err error)
}

// SnapshotStore serializes and restores the whole store.
type SnapshotStore interface {
	Export(ctx context.Context) (*Snapshot, error)
	// ImportMerge inserts rows whose primary key is absent and leaves
	// existing rows untouched, all in one store transaction.
	ImportMerge(ctx context.Context, snap *Snapshot) (ImportStats, error)
	// ReplaceAll discards current contents and loads the snapshot, all in
	// one store transaction.
	ReplaceAll(ctx context.Context, snap *Snapshot) error
}
