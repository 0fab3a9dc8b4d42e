package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pickup-backend/internal/pickup/domain"

	"gorm.io/gorm"
)

// gormRequestRepository implements RequestRepository using GORM
type gormRequestRepository struct {
	db *gorm.DB
}

// NewGormRequestRepository creates a new GORM-based RequestRepository
func NewGormRequestRepository(db *gorm.DB) RequestRepository {
	return &gormRequestRepository{db: db}
}

func (r *gormRequestRepository) FindByID(ctx context.Context, id string) (*domain.Request, error) {
	var req domain.Request
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *gormRequestRepository) FindUnassignedPending(ctx context.Context, town string) ([]*domain.Request, error) {
	var reqs []*domain.Request
	query := r.db.WithContext(ctx).
		Where("status = ?", domain.StatusPending).
		Where("(collector_id = ? OR collector_id IS NULL)", "")
	if town != "" {
		query = query.Where("user_town = ?", town)
	}
	err := query.Order("created_at ASC").Find(&reqs).Error
	return reqs, err
}

func (r *gormRequestRepository) FindPendingByCollector(ctx context.Context, collectorID string) ([]*domain.Request, error) {
	var reqs []*domain.Request
	err := r.db.WithContext(ctx).
		Where("status = ? AND collector_id = ?", domain.StatusPending, collectorID).
		Order("created_at ASC").
		Find(&reqs).Error
	return reqs, err
}

func (r *gormRequestRepository) FindDuePending(ctx context.Context, now time.Time) ([]*domain.Request, error) {
	var reqs []*domain.Request
	err := r.db.WithContext(ctx).
		Where("status = ? AND pickup_date <= ?", domain.StatusPending, now).
		Order("pickup_date ASC").
		Find(&reqs).Error
	return reqs, err
}

func (r *gormRequestRepository) FindOpenBefore(ctx context.Context, cutoff time.Time) ([]*domain.Request, error) {
	var reqs []*domain.Request
	err := r.db.WithContext(ctx).
		Where("status IN ? AND pickup_date < ?", statusStrings(domain.OpenStatuses), cutoff).
		Order("pickup_date ASC").
		Find(&reqs).Error
	return reqs, err
}

func (r *gormRequestRepository) FindUpcoming(ctx context.Context, from, to time.Time) ([]*domain.Request, error) {
	var reqs []*domain.Request
	statuses := statusStrings([]domain.RequestStatus{domain.StatusPending, domain.StatusAccepted})
	err := r.db.WithContext(ctx).
		Where("status IN ? AND pickup_date > ? AND pickup_date <= ?", statuses, from, to).
		Find(&reqs).Error
	return reqs, err
}

func (r *gormRequestRepository) List(ctx context.Context, limit int) ([]*domain.Request, error) {
	var reqs []*domain.Request
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&reqs).Error
	return reqs, err
}

func (r *gormRequestRepository) ApplyPatches(ctx context.Context, patches []RequestPatch) error {
	if len(patches) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range patches {
			res := tx.Model(&domain.Request{}).Where("id = ?", p.RequestID).Updates(p.Columns())
			if res.Error != nil {
				return fmt.Errorf("update request %s: %w", p.RequestID, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("update request %s: %w", p.RequestID, ErrNotFound)
			}
		}
		return nil
	})
}

// gormCollectorRepository implements CollectorRepository using GORM
type gormCollectorRepository struct {
	db *gorm.DB
}

// NewGormCollectorRepository creates a new GORM-based CollectorRepository
func NewGormCollectorRepository(db *gorm.DB) CollectorRepository {
	return &gormCollectorRepository{db: db}
}

func (r *gormCollectorRepository) FindByID(ctx context.Context, id string) (*domain.Collector, error) {
	var c domain.Collector
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *gormCollectorRepository) FindActiveByTown(ctx context.Context, town, excludeID string) ([]*domain.Collector, error) {
	var collectors []*domain.Collector
	query := r.db.WithContext(ctx).Where("is_active = ? AND town = ?", true, town)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Order("id ASC").Find(&collectors).Error
	return collectors, err
}

func (r *gormCollectorRepository) List(ctx context.Context, limit int) ([]*domain.Collector, error) {
	var collectors []*domain.Collector
	err := r.db.WithContext(ctx).Order("id ASC").Limit(limit).Find(&collectors).Error
	return collectors, err
}

// gormUserRepository implements UserRepository using GORM
type gormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM-based UserRepository
func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

type gormChatRepository struct {
	db *gorm.DB
}

func NewGormChatRepository(db *gorm.DB) ChatRepository {
	return &gormChatRepository{db: db}
}

func (r *gormChatRepository) FindByID(ctx context.Context, id string) (*domain.Chat, error) {
	var c domain.Chat
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func statusStrings(statuses []domain.RequestStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
