package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"pickup-backend/internal/notification/domain"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationsCollection is the Firestore collection for in-app notifications
const NotificationsCollection = "notifications"

// NotificationRepository stores in-app notification records
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
}

// prepare fills the id and timestamp the way every backend stores them
func prepare(n *domain.Notification) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
}

// gormNotificationRepository implements NotificationRepository using GORM
type gormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GORM-based NotificationRepository
func NewGormNotificationRepository(db *gorm.DB) NotificationRepository {
	return &gormNotificationRepository{db: db}
}

func (r *gormNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	prepare(n)
	return r.db.WithContext(ctx).Create(n).Error
}

// firestoreNotificationRepository implements NotificationRepository on Cloud Firestore
type firestoreNotificationRepository struct {
	client *firestore.Client
}

// NewFirestoreNotificationRepository creates a Firestore-backed NotificationRepository
func NewFirestoreNotificationRepository(client *firestore.Client) NotificationRepository {
	return &firestoreNotificationRepository{client: client}
}

func (r *firestoreNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	prepare(n)
	_, err := r.client.Collection(NotificationsCollection).Doc(n.ID).Create(ctx, n)
	return err
}

// MemoryNotificationRepository keeps notifications in memory
type MemoryNotificationRepository struct {
	mu    sync.Mutex
	items []domain.Notification
}

// NewMemoryNotificationRepository creates an empty MemoryNotificationRepository
func NewMemoryNotificationRepository() *MemoryNotificationRepository {
	return &MemoryNotificationRepository{}
}

func (r *MemoryNotificationRepository) Create(_ context.Context, n *domain.Notification) error {
	prepare(n)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, *n)
	return nil
}

// ForRecipient returns the notifications addressed to id, oldest first
func (r *MemoryNotificationRepository) ForRecipient(id string) []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Notification
	for _, n := range r.items {
		if n.RecipientID() == id {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// All returns every stored notification
func (r *MemoryNotificationRepository) All() []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Notification(nil), r.items...)
}
