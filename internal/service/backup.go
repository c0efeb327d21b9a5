package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"kofiapi/internal/domain"
)

// Backup implements export, merge-mode import and destructive recovery over
// versioned JSON snapshots of the store.
type Backup struct {
	store       domain.SnapshotStore
	guard       *Maintenance
	projectName string
	logger      zerolog.Logger
}

// NewBackup creates the backup service. projectName doubles as the recovery
// confirmation phrase.
func NewBackup(store domain.SnapshotStore, guard *Maintenance, projectName string, logger zerolog.Logger) *Backup {
	return &Backup{store: store, guard: guard, projectName: projectName, logger: logger}
}

// Export serializes the entire store.
func (b *Backup) Export(ctx context.Context) (*domain.Snapshot, error) {
	return b.store.Export(ctx)
}

// Import validates the uploaded snapshot and merges it into the store:
// rows with unknown primary keys are inserted, existing rows are left as
// they are. Validation failures mutate nothing.
func (b *Backup) Import(ctx context.Context, raw []byte) (domain.ImportStats, error) {
	snap, err := ParseSnapshot(raw)
	if err != nil {
		return domain.ImportStats{}, err
	}

	b.guard.Lock()
	defer b.guard.Unlock()

	stats, err := b.store.ImportMerge(ctx, snap)
	if err != nil {
		return domain.ImportStats{}, err
	}
	b.logger.Info().
		Str("snapshot_id", snap.SnapshotID).
		Int("users_added", stats.UsersAdded).
		Int("transactions_added", stats.TransactionsAdded).
		Msg("snapshot imported")
	return stats, nil
}

// Recover validates the uploaded snapshot and replaces the store's contents
// with it. The confirmation phrase must match the project name; recovery is
// deliberately hard to trigger by accident. If validation fails the live
// store is untouched.
func (b *Backup) Recover(ctx context.Context, raw []byte, confirm string) error {
	if confirm != b.projectName {
		return fmt.Errorf("%w: recovery requires confirm=%q", domain.ErrValidation, b.projectName)
	}
	snap, err := ParseSnapshot(raw)
	if err != nil {
		return err
	}

	b.guard.Lock()
	defer b.guard.Unlock()

	if err := b.store.ReplaceAll(ctx, snap); err != nil {
		return err
	}
	b.logger.Warn().
		Str("snapshot_id", snap.SnapshotID).
		Int("users", len(snap.Users)).
		Int("transactions", len(snap.Transactions)).
		Msg("store recovered from snapshot")
	return nil
}

// ParseSnapshot decodes and structurally validates a snapshot file. Any
// defect is a validation error; callers must not mutate the store on one.
func ParseSnapshot(raw []byte) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("%w: malformed snapshot: %v", domain.ErrValidation, err)
	}
	if snap.SchemaVersion != domain.SnapshotSchemaVersion {
		return nil, fmt.Errorf("%w: unsupported schema version %d (want %d)",
			domain.ErrValidation, snap.SchemaVersion, domain.SnapshotSchemaVersion)
	}

	seenUsers := make(map[string]bool, len(snap.Users))
	for i := range snap.Users {
		u := &snap.Users[i]
		if u.VerificationToken == "" {
			return nil, fmt.Errorf("%w: user %d has no verification token", domain.ErrValidation, i)
		}
		if seenUsers[u.VerificationToken] {
			return nil, fmt.Errorf("%w: duplicate user %q in snapshot", domain.ErrValidation, u.VerificationToken)
		}
		seenUsers[u.VerificationToken] = true
	}

	seenTxns := make(map[string]bool, len(snap.Transactions))
	for i := range snap.Transactions {
		t := &snap.Transactions[i]
		switch {
		case t.MessageID == "":
			return nil, fmt.Errorf("%w: transaction %d has no message id", domain.ErrValidation, i)
		case t.VerificationToken == "":
			return nil, fmt.Errorf("%w: transaction %q has no verification token", domain.ErrValidation, t.MessageID)
		case !t.Type.Valid():
			return nil, fmt.Errorf("%w: transaction %q has unknown type %q", domain.ErrValidation, t.MessageID, t.Type)
		case t.Timestamp.IsZero():
			return nil, fmt.Errorf("%w: transaction %q has no timestamp", domain.ErrValidation, t.MessageID)
		case t.Amount == "" || t.Currency == "":
			return nil, fmt.Errorf("%w: transaction %q is missing amount or currency", domain.ErrValidation, t.MessageID)
		}
		if seenTxns[t.MessageID] {
			return nil, fmt.Errorf("%w: duplicate transaction %q in snapshot", domain.ErrValidation, t.MessageID)
		}
		seenTxns[t.MessageID] = true
	}

	return &snap, nil
}
