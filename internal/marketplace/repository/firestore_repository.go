package repository

import (
	"context"
	"fmt"
	"time"

	"pickup-backend/internal/marketplace/domain"

	"cloud.google.com/go/firestore"
)

type firestoreItemRepository struct {
	client *firestore.Client
}

// NewFirestoreItemRepository creates a Firestore-backed ItemRepository
func NewFirestoreItemRepository(client *firestore.Client) ItemRepository {
	return &firestoreItemRepository{client: client}
}

func (r *firestoreItemRepository) FindExpired(ctx context.Context, now time.Time) ([]*domain.Item, error) {
	docs, err := r.client.Collection(ItemsCollection).
		Where("status", "in", statusStrings(domain.ExpirableStatuses)).
		Where("deleteAfter", "<=", now).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	items := make([]*domain.Item, 0, len(docs))
	for _, doc := range docs {
		var item domain.Item
		if err := doc.DataTo(&item); err != nil {
			return nil, fmt.Errorf("decode marketplace item %s: %w", doc.Ref.ID, err)
		}
		item.ID = doc.Ref.ID
		items = append(items, &item)
	}
	return items, nil
}

func (r *firestoreItemRepository) DeleteItems(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	batch := r.client.Batch()
	for _, id := range ids {
		batch.Delete(r.client.Collection(ItemsCollection).Doc(id))
	}
	if _, err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("commit %d item deletes: %w", len(ids), err)
	}
	return nil
}
