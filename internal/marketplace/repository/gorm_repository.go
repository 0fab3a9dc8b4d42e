package repository

import (
	"context"
	"time"

	"pickup-backend/internal/marketplace/domain"

	"gorm.io/gorm"
)

// gormItemRepository implements ItemRepository using GORM
type gormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GORM-based ItemRepository
func NewGormItemRepository(db *gorm.DB) ItemRepository {
	return &gormItemRepository{db: db}
}

func (r *gormItemRepository) FindExpired(ctx context.Context, now time.Time) ([]*domain.Item, error) {
	var items []*domain.Item
	err := r.db.WithContext(ctx).
		Where("status IN ? AND delete_after <= ?", statusStrings(domain.ExpirableStatuses), now).
		Order("delete_after ASC").
		Find(&items).Error
	return items, err
}

func (r *gormItemRepository) DeleteItems(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Where("id IN ?", ids).Delete(&domain.Item{}).Error
	})
}

func statusStrings(statuses []domain.ItemStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
