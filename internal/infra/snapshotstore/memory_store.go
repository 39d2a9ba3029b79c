package snapshotstore

import (
	"context"
	"sync/atomic"

	"github.com/yanqian/rain-nowcast/internal/domain/nowcast"
)

// MemoryStore keeps the latest snapshot in process memory.
type MemoryStore struct {
	latest atomic.Pointer[nowcast.ForecastSnapshot]
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Latest implements nowcast.SnapshotStore.
func (s *MemoryStore) Latest(_ context.Context) (nowcast.ForecastSnapshot, bool, error) {
	snap := s.latest.Load()
	if snap == nil {
		return nowcast.ForecastSnapshot{}, false, nil
	}
	return *snap, true, nil
}

// Replace swaps in snapshot; readers holding the old value keep a valid copy.
func (s *MemoryStore) Replace(_ context.Context, snapshot nowcast.ForecastSnapshot) error {
	s.latest.Store(&snapshot)
	return nil
}

var _ nowcast.SnapshotStore = (*MemoryStore)(nil)
