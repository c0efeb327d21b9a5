package httpapi

import (
	"context"
	"sort"
	"sync"
	"time"

	"kofiapi/internal/domain"
)

// fakeStore backs the end-to-end router tests with an in-memory map per
// table. It implements every repository interface the handlers touch.
type fakeStore struct {
	mu    sync.Mutex
	users map[string]domain.User
	txns  map[string]domain.Transaction
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: make(map[string]domain.User),
		txns:  make(map[string]domain.Transaction),
	}
}

func (f *fakeStore) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.VerificationToken]; ok {
		return domain.ErrConflict
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.LatestRequestAt = now
	f.users[user.VerificationToken] = *user
	return nil
}

func (f *fakeStore) Get(_ context.Context, token string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (f *fakeStore) List(_ context.Context) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := make([]domain.User, 0, len(f.users))
	for _, u := range f.users {
		items = append(items, u)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].VerificationToken < items[j].VerificationToken
	})
	return items, nil
}

func (f *fakeStore) UpdateRetention(_ context.Context, token string, days int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[token]
	if !ok {
		return domain.ErrNotFound
	}
	u.RetentionDays = &days
	f.users[token] = u
	return nil
}

func (f *fakeStore) UpdatePreferredCurrency(_ context.Context, token, currency string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[token]
	if !ok {
		return domain.ErrNotFound
	}
	u.PreferredCurrency = currency
	f.users[token] = u
	return nil
}

func (f *fakeStore) TouchLatestRequest(_ context.Context, token string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[token]
	if !ok {
		return domain.ErrNotFound
	}
	u.LatestRequestAt = at
	f.users[token] = u
	return nil
}

func (f *fakeStore) Delete(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[token]; !ok {
		return domain.ErrNotFound
	}
	delete(f.users, token)
	for id, t := range f.txns {
		if t.VerificationToken == token {
			delete(f.txns, id)
		}
	}
	return nil
}

func (f *fakeStore) GetTxn(_ context.Context, token, messageID string) (*domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.txns[messageID]
	if !ok || t.VerificationToken != token {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (f *fakeStore) ListByUser(_ context.Context, token string) ([]domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filterLocked(func(t domain.Transaction) bool {
		return t.VerificationToken == token
	}), nil
}

func (f *fakeStore) ListSince(_ context.Context, token string, since time.Time) ([]domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filterLocked(func(t domain.Transaction) bool {
		return t.VerificationToken == token && !t.Timestamp.Before(since)
	}), nil
}

func (f *fakeStore) ListAll(_ context.Context) ([]domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filterLocked(func(domain.Transaction) bool { return true }), nil
}

func (f *fakeStore) DeleteOlderThan(_ context.Context, token string, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var removed int64
	for id, t := range f.txns {
		if t.VerificationToken == token && t.Timestamp.Before(cutoff) {
			delete(f.txns, id)
			removed++
		}
	}
	return removed, nil
}

func (f *fakeStore) filterLocked(keep func(domain.Transaction) bool) []domain.Transaction {
	items := make([]domain.Transaction, 0)
	for _, t := range f.txns {
		if keep(t) {
			items = append(items, t)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].MessageID < items[j].MessageID
	})
	return items
}

func (f *fakeStore) RecordDonation(_ context.Context, user *domain.User, txn *domain.Transaction) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.VerificationToken]; !ok {
		// Store the user exactly as handed over, like the INSERT does.
		u := *user
		u.CreatedAt = time.Now().UTC()
		u.LatestRequestAt = u.CreatedAt
		f.users[u.VerificationToken] = u
	}
	if _, ok := f.txns[txn.MessageID]; ok {
		return false, nil
	}
	f.txns[txn.MessageID] = *txn
	return true, nil
}

func (f *fakeStore) Export(ctx context.Context) (*domain.Snapshot, error) {
	users, _ := f.List(ctx)
	txns, _ := f.ListAll(ctx)
	return &domain.Snapshot{
		SchemaVersion: domain.SnapshotSchemaVersion,
		SnapshotID:    "test-snapshot",
		ExportedAt:    time.Now().UTC(),
		Users:         users,
		Transactions:  txns,
	}, nil
}

func (f *fakeStore) ImportMerge(_ context.Context, snap *domain.Snapshot) (domain.ImportStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var stats domain.ImportStats
	for _, u := range snap.Users {
		if _, ok := f.users[u.VerificationToken]; !ok {
			f.users[u.VerificationToken] = u
			stats.UsersAdded++
		}
	}
	for _, t := range snap.Transactions {
		if _, ok := f.txns[t.MessageID]; !ok {
			f.txns[t.MessageID] = t
			stats.TransactionsAdded++
		}
	}
	return stats, nil
}

func (f *fakeStore) ReplaceAll(_ context.Context, snap *domain.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = make(map[string]domain.User, len(snap.Users))
	f.txns = make(map[string]domain.Transaction, len(snap.Transactions))
	for _, u := range snap.Users {
		f.users[u.VerificationToken] = u
	}
	for _, t := range snap.Transactions {
		f.txns[t.MessageID] = t
	}
	return nil
}

// fakeTxnRepo exposes the transaction-scoped Get; the method name collides
// with the user one on fakeStore itself.
type fakeTxnRepo struct{ *fakeStore }

func (r fakeTxnRepo) Get(ctx context.Context, token, messageID string) (*domain.Transaction, error) {
	return r.GetTxn(ctx, token, messageID)
}
