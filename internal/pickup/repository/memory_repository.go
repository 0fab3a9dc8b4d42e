package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"pickup-backend/internal/pickup/domain"
)

// MemoryStore keeps requests, collectors and users in process memory. It is
// used for local development and tests; every method returns copies so
// callers observe point-in-time snapshots, as they would from a remote store.
type MemoryStore struct {
	mu         sync.RWMutex
	requests   map[string]domain.Request
	collectors map[string]domain.Collector
	users      map[string]domain.User
	chats      map[string]domain.Chat
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		requests:   make(map[string]domain.Request),
		collectors: make(map[string]domain.Collector),
		users:      make(map[string]domain.User),
		chats:      make(map[string]domain.Chat),
	}
}

// PutRequest inserts or replaces a request
func (s *MemoryStore) PutRequest(r domain.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[r.ID] = r
}

// PutCollector inserts or replaces a collector
func (s *MemoryStore) PutCollector(c domain.Collector) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collectors[c.ID] = c
}

// PutUser inserts or replaces a user
func (s *MemoryStore) PutUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// PutChat inserts or replaces a chat
func (s *MemoryStore) PutChat(c domain.Chat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chats[c.ID] = c
}

// Requests exposes the store as a RequestRepository
func (s *MemoryStore) Requests() RequestRepository { return memoryRequests{s} }

// Collectors exposes the store as a CollectorRepository
func (s *MemoryStore) Collectors() CollectorRepository { return memoryCollectors{s} }

// Users exposes the store as a UserRepository
func (s *MemoryStore) Users() UserRepository { return memoryUsers{s} }

// Chats exposes the store as a ChatRepository
func (s *MemoryStore) Chats() ChatRepository { return memoryChats{s} }

type memoryRequests struct{ s *MemoryStore }

func (m memoryRequests) FindByID(_ context.Context, id string) (*domain.Request, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	r, ok := m.s.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m memoryRequests) filter(keep func(r *domain.Request) bool, less func(a, b *domain.Request) bool) []*domain.Request {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	var out []*domain.Request
	for _, r := range m.s.requests {
		r := r
		if keep(&r) {
			out = append(out, &r)
		}
	}
	if less == nil {
		less = byCreatedAt
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func (m memoryRequests) FindUnassignedPending(_ context.Context, town string) ([]*domain.Request, error) {
	return m.filter(func(r *domain.Request) bool {
		return r.Status == domain.StatusPending && r.CollectorID == "" && (town == "" || r.UserTown == town)
	}, byCreatedAt), nil
}

func (m memoryRequests) FindPendingByCollector(_ context.Context, collectorID string) ([]*domain.Request, error) {
	return m.filter(func(r *domain.Request) bool {
		return r.Status == domain.StatusPending && r.CollectorID == collectorID
	}, byCreatedAt), nil
}

func (m memoryRequests) FindDuePending(_ context.Context, now time.Time) ([]*domain.Request, error) {
	return m.filter(func(r *domain.Request) bool {
		return r.Status == domain.StatusPending && !r.PickupDate.After(now)
	}, byPickupDate), nil
}

func (m memoryRequests) FindOpenBefore(_ context.Context, cutoff time.Time) ([]*domain.Request, error) {
	return m.filter(func(r *domain.Request) bool {
		return r.Status.IsOpen() && r.PickupDate.Before(cutoff)
	}, byPickupDate), nil
}

func (m memoryRequests) FindUpcoming(_ context.Context, from, to time.Time) ([]*domain.Request, error) {
	return m.filter(func(r *domain.Request) bool {
		return (r.Status == domain.StatusPending || r.Status == domain.StatusAccepted) &&
			r.PickupDate.After(from) && !r.PickupDate.After(to)
	}, byPickupDate), nil
}

func (m memoryRequests) List(_ context.Context, limit int) ([]*domain.Request, error) {
	all := m.filter(func(*domain.Request) bool { return true }, byCreatedAt)
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m memoryRequests) ApplyPatches(_ context.Context, patches []RequestPatch) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	// Validate first so the batch is all-or-nothing
	for _, p := range patches {
		if _, ok := m.s.requests[p.RequestID]; !ok {
			return fmt.Errorf("update request %s: %w", p.RequestID, ErrNotFound)
		}
	}
	for _, p := range patches {
		r := m.s.requests[p.RequestID]
		p.Apply(&r)
		m.s.requests[p.RequestID] = r
	}
	return nil
}

type memoryCollectors struct{ s *MemoryStore }

func (m memoryCollectors) FindByID(_ context.Context, id string) (*domain.Collector, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	c, ok := m.s.collectors[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m memoryCollectors) FindActiveByTown(_ context.Context, town, excludeID string) ([]*domain.Collector, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	var out []*domain.Collector
	for _, c := range m.s.collectors {
		c := c
		if c.IsActive && c.Town == town && (excludeID == "" || c.ID != excludeID) {
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memoryCollectors) List(_ context.Context, limit int) ([]*domain.Collector, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	var out []*domain.Collector
	for _, c := range m.s.collectors {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memoryUsers struct{ s *MemoryStore }

func (m memoryUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	u, ok := m.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

type memoryChats struct{ s *MemoryStore }

func (m memoryChats) FindByID(_ context.Context, id string) (*domain.Chat, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	c, ok := m.s.chats[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func byCreatedAt(a, b *domain.Request) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID < b.ID
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

func byPickupDate(a, b *domain.Request) bool {
	if a.PickupDate.Equal(b.PickupDate) {
		return a.ID < b.ID
	}
	return a.PickupDate.Before(b.PickupDate)
}
