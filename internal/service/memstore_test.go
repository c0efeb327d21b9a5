package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"kofiapi/internal/domain"
)

// memStore is an in-memory stand-in for the PostgreSQL repositories. It
// implements every store interface the services depend on, with optional
// error injection for failure-path tests.
type memStore struct {
	mu    sync.Mutex
	users map[string]domain.User
	txns  map[string]domain.Transaction

	listUsersErr  error
	deleteOldErr  map[string]error
	replaceErr    error
	importErr     error
	replaceCalled bool
}

func newMemStore() *memStore {
	return &memStore{
		users:        make(map[string]domain.User),
		txns:         make(map[string]domain.Transaction),
		deleteOldErr: make(map[string]error),
	}
}

// --- domain.UserRepository ---

func (m *memStore) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.VerificationToken]; ok {
		return domain.ErrConflict
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.LatestRequestAt.IsZero() {
		user.LatestRequestAt = user.CreatedAt
	}
	m.users[user.VerificationToken] = *user
	return nil
}

func (m *memStore) Get(_ context.Context, token string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (m *memStore) List(_ context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listUsersErr != nil {
		return nil, m.listUsersErr
	}
	items := make([]domain.User, 0, len(m.users))
	for _, u := range m.users {
		items = append(items, u)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].VerificationToken < items[j].VerificationToken
	})
	return items, nil
}

func (m *memStore) UpdateRetention(_ context.Context, token string, days int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[token]
	if !ok {
		return domain.ErrNotFound
	}
	u.RetentionDays = &days
	m.users[token] = u
	return nil
}

func (m *memStore) UpdatePreferredCurrency(_ context.Context, token, currency string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[token]
	if !ok {
		return domain.ErrNotFound
	}
	u.PreferredCurrency = currency
	m.users[token] = u
	return nil
}

func (m *memStore) TouchLatestRequest(_ context.Context, token string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[token]
	if !ok {
		return domain.ErrNotFound
	}
	u.LatestRequestAt = at
	m.users[token] = u
	return nil
}

func (m *memStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[token]; !ok {
		return domain.ErrNotFound
	}
	delete(m.users, token)
	for id, t := range m.txns {
		if t.VerificationToken == token {
			delete(m.txns, id)
		}
	}
	return nil
}

// --- domain.TransactionRepository ---

func (m *memStore) GetTxn(_ context.Context, token, messageID string) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.txns[messageID]
	if !ok || t.VerificationToken != token {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (m *memStore) ListByUser(_ context.Context, token string) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listLocked(func(t domain.Transaction) bool {
		return t.VerificationToken == token
	}), nil
}

func (m *memStore) ListSince(_ context.Context, token string, since time.Time) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listLocked(func(t domain.Transaction) bool {
		return t.VerificationToken == token && !t.Timestamp.Before(since)
	}), nil
}

func (m *memStore) ListAll(_ context.Context) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listLocked(func(domain.Transaction) bool { return true }), nil
}

func (m *memStore) DeleteOlderThan(_ context.Context, token string, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.deleteOldErr[token]; err != nil {
		return 0, err
	}
	var removed int64
	for id, t := range m.txns {
		if t.VerificationToken == token && t.Timestamp.Before(cutoff) {
			delete(m.txns, id)
			removed++
		}
	}
	return removed, nil
}

func (m *memStore) listLocked(keep func(domain.Transaction) bool) []domain.Transaction {
	items := make([]domain.Transaction, 0)
	for _, t := range m.txns {
		if keep(t) {
			items = append(items, t)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Timestamp.Equal(items[j].Timestamp) {
			return items[i].MessageID < items[j].MessageID
		}
		return items[i].Timestamp.Before(items[j].Timestamp)
	})
	return items
}

// --- domain.IngestStore ---

func (m *memStore) RecordDonation(_ context.Context, user *domain.User, txn *domain.Transaction) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.VerificationToken]; !ok {
		// Store the user exactly as handed over, like the INSERT does.
		u := *user
		u.CreatedAt = time.Now().UTC()
		u.LatestRequestAt = u.CreatedAt
		m.users[u.VerificationToken] = u
	}
	if _, ok := m.txns[txn.MessageID]; ok {
		return false, nil
	}
	m.txns[txn.MessageID] = *txn
	return true, nil
}

// --- domain.SnapshotStore ---

func (m *memStore) Export(ctx context.Context) (*domain.Snapshot, error) {
	users, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	txns, _ := m.ListAll(ctx)
	return &domain.Snapshot{
		SchemaVersion: domain.SnapshotSchemaVersion,
		SnapshotID:    "mem-snapshot",
		ExportedAt:    time.Now().UTC(),
		Users:         users,
		Transactions:  txns,
	}, nil
}

func (m *memStore) ImportMerge(_ context.Context, snap *domain.Snapshot) (domain.ImportStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.importErr != nil {
		return domain.ImportStats{}, m.importErr
	}
	var stats domain.ImportStats
	for _, u := range snap.Users {
		if _, ok := m.users[u.VerificationToken]; !ok {
			m.users[u.VerificationToken] = u
			stats.UsersAdded++
		}
	}
	for _, t := range snap.Transactions {
		if _, ok := m.txns[t.MessageID]; !ok {
			m.txns[t.MessageID] = t
			stats.TransactionsAdded++
		}
	}
	return stats, nil
}

func (m *memStore) ReplaceAll(_ context.Context, snap *domain.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replaceCalled = true
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.users = make(map[string]domain.User, len(snap.Users))
	m.txns = make(map[string]domain.Transaction, len(snap.Transactions))
	for _, u := range snap.Users {
		m.users[u.VerificationToken] = u
	}
	for _, t := range snap.Transactions {
		m.txns[t.MessageID] = t
	}
	return nil
}

// txnRepo adapts memStore to domain.TransactionRepository; the Get method
// name collides with the user repository one on the shared struct.
type txnRepo struct{ *memStore }

func (r txnRepo) Get(ctx context.Context, token, messageID string) (*domain.Transaction, error) {
	return r.GetTxn(ctx, token, messageID)
}
