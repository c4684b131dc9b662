package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/jobcraft/internal/types"
)

// MemoryStore keeps profiles in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]types.StoredProfile
	now      func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[uuid.UUID]types.StoredProfile), now: time.Now}
}

func (m *MemoryStore) SaveProfile(_ context.Context, sp *types.StoredProfile) error {
	if sp.ID == uuid.Nil {
		sp.ID = uuid.New()
	}
	if sp.CreatedAt.IsZero() {
		sp.CreatedAt = m.now()
	}

	stored := *sp
	if sp.Profile != nil {
		p := *sp.Profile
		stored.Profile = &p
	}

	m.mu.Lock()
	m.profiles[sp.ID] = stored
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) GetProfile(_ context.Context, id uuid.UUID) (*types.StoredProfile, error) {
	m.mu.RLock()
	sp, ok := m.profiles[id]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return &sp, nil
}

func (m *MemoryStore) ListProfiles(_ context.Context, limit int) ([]*types.StoredProfile, error) {
	m.mu.RLock()
	all := make([]*types.StoredProfile, 0, len(m.profiles))
	for _, sp := range m.profiles {
		sp := sp
		all = append(all, &sp)
	}
	m.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID.String() < all[j].ID.String()
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
