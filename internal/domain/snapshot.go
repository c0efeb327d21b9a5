package domain

import "time"

// SnapshotSchemaVersion is bumped whenever the snapshot layout changes in a
// way old importers cannot read.
const SnapshotSchemaVersion = 1

// Snapshot is a complete serialization of the store, used by export, import
// and recovery. Every row round-trips field for field.
type Snapshot struct {
	SchemaVersion int           `json:"schema_version"`
	SnapshotID    string        `json:"snapshot_id"`
	ExportedAt    time.Time     `json:"exported_at"`
	Users         []User        `json:"users"`
	Transactions  []Transaction `json:"transactions"`
}

// ImportStats reports what a merge-mode import actually inserted.
type ImportStats struct {
	UsersAdded        int `json:"users_added"`
	TransactionsAdded int `json:"transactions_added"`
}
