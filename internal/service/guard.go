package service

import "sync"

// Maintenance serializes operations that rewrite broad swaths of the store.
// Backup import/recovery hold the lock for the duration of the replace; the
// retention sweeper only try-locks and skips its cycle when a backup is in
// flight, picking up again on the next tick.
type Maintenance struct {
	mu sync.Mutex
}

func (m *Maintenance) Lock()         { m.mu.Lock() }
func (m *Maintenance) Unlock()       { m.mu.Unlock() }
func (m *Maintenance) TryLock() bool { return m.mu.TryLock() }
