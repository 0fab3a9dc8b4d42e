package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"pickup-backend/internal/marketplace/domain"
)

// MemoryItemRepository keeps marketplace items in process memory
type MemoryItemRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Item
}

// NewMemoryItemRepository creates an empty MemoryItemRepository
func NewMemoryItemRepository() *MemoryItemRepository {
	return &MemoryItemRepository{items: make(map[string]domain.Item)}
}

// Put inserts or replaces an item
func (r *MemoryItemRepository) Put(item domain.Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = item
}

// Exists reports whether an item with id is stored
func (r *MemoryItemRepository) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.items[id]
	return ok
}

func (r *MemoryItemRepository) FindExpired(_ context.Context, now time.Time) ([]*domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Item
	for _, item := range r.items {
		item := item
		if item.Expired(now) {
			out = append(out, &item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DeleteAfter.Equal(*out[j].DeleteAfter) {
			return out[i].ID < out[j].ID
		}
		return out[i].DeleteAfter.Before(*out[j].DeleteAfter)
	})
	return out, nil
}

func (r *MemoryItemRepository) DeleteItems(_ context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		delete(r.items, id)
	}
	return nil
}
