package repository

import (
	"context"
	"fmt"
	"time"

	"pickup-backend/internal/pickup/domain"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore collection names
const (
	RequestsCollection   = "pickup_requests"
	CollectorsCollection = "collectors"
	UsersCollection      = "users"
	ChatsCollection      = "chats"
)

// firestoreRequestRepository implements RequestRepository on Cloud Firestore
type firestoreRequestRepository struct {
	client *firestore.Client
}

// NewFirestoreRequestRepository creates a Firestore-backed RequestRepository
func NewFirestoreRequestRepository(client *firestore.Client) RequestRepository {
	return &firestoreRequestRepository{client: client}
}

func (r *firestoreRequestRepository) col() *firestore.CollectionRef {
	return r.client.Collection(RequestsCollection)
}

func (r *firestoreRequestRepository) FindByID(ctx context.Context, id string) (*domain.Request, error) {
	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decodeRequest(snap)
}

func (r *firestoreRequestRepository) FindUnassignedPending(ctx context.Context, town string) ([]*domain.Request, error) {
	q := r.col().
		Where("status", "==", string(domain.StatusPending)).
		Where("collectorId", "in", []interface{}{"", nil})
	if town != "" {
		q = q.Where("userTown", "==", town)
	}
	return queryRequests(ctx, q.OrderBy("createdAt", firestore.Asc))
}

func (r *firestoreRequestRepository) FindPendingByCollector(ctx context.Context, collectorID string) ([]*domain.Request, error) {
	q := r.col().
		Where("status", "==", string(domain.StatusPending)).
		Where("collectorId", "==", collectorID)
	return queryRequests(ctx, q)
}

func (r *firestoreRequestRepository) FindDuePending(ctx context.Context, now time.Time) ([]*domain.Request, error) {
	q := r.col().
		Where("status", "==", string(domain.StatusPending)).
		Where("pickupDate", "<=", now)
	return queryRequests(ctx, q)
}

func (r *firestoreRequestRepository) FindOpenBefore(ctx context.Context, cutoff time.Time) ([]*domain.Request, error) {
	q := r.col().
		Where("status", "in", statusStrings(domain.OpenStatuses)).
		Where("pickupDate", "<", cutoff)
	return queryRequests(ctx, q)
}

func (r *firestoreRequestRepository) FindUpcoming(ctx context.Context, from, to time.Time) ([]*domain.Request, error) {
	q := r.col().
		Where("status", "in", statusStrings([]domain.RequestStatus{domain.StatusPending, domain.StatusAccepted})).
		Where("pickupDate", ">", from).
		Where("pickupDate", "<=", to)
	return queryRequests(ctx, q)
}

func (r *firestoreRequestRepository) List(ctx context.Context, limit int) ([]*domain.Request, error) {
	return queryRequests(ctx, r.col().Limit(limit))
}

func (r *firestoreRequestRepository) ApplyPatches(ctx context.Context, patches []RequestPatch) error {
	if len(patches) == 0 {
		return nil
	}
	batch := r.client.Batch()
	for _, p := range patches {
		batch.Update(r.col().Doc(p.RequestID), firestoreUpdates(p))
	}
	if _, err := batch.Commit(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("commit %d request updates: %w", len(patches), ErrNotFound)
		}
		return fmt.Errorf("commit %d request updates: %w", len(patches), err)
	}
	return nil
}

func firestoreUpdates(p RequestPatch) []firestore.Update {
	var updates []firestore.Update
	if p.CollectorID != nil {
		updates = append(updates, firestore.Update{Path: "collectorId", Value: *p.CollectorID})
	}
	if p.CollectorName != nil {
		updates = append(updates, firestore.Update{Path: "collectorName", Value: *p.CollectorName})
	}
	if p.AssignedAt != nil {
		updates = append(updates, firestore.Update{Path: "assignedAt", Value: *p.AssignedAt})
	}
	if p.ClearAssignedAt {
		updates = append(updates, firestore.Update{Path: "assignedAt", Value: nil})
	}
	if p.ReassignedAt != nil {
		updates = append(updates, firestore.Update{Path: "reassignedAt", Value: *p.ReassignedAt})
	}
	if p.PickupDate != nil {
		updates = append(updates, firestore.Update{Path: "pickupDate", Value: *p.PickupDate})
	}
	if p.Status != nil {
		updates = append(updates, firestore.Update{Path: "status", Value: string(*p.Status)})
	}
	if p.MissedAt != nil {
		updates = append(updates, firestore.Update{Path: "missedAt", Value: *p.MissedAt})
	}
	if p.MissedReason != nil {
		updates = append(updates, firestore.Update{Path: "missedReason", Value: *p.MissedReason})
	}
	return updates
}

func queryRequests(ctx context.Context, q firestore.Query) ([]*domain.Request, error) {
	docs, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	reqs := make([]*domain.Request, 0, len(docs))
	for _, doc := range docs {
		req, err := decodeRequest(doc)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

func decodeRequest(snap *firestore.DocumentSnapshot) (*domain.Request, error) {
	var req domain.Request
	if err := snap.DataTo(&req); err != nil {
		return nil, fmt.Errorf("decode request %s: %w", snap.Ref.ID, err)
	}
	req.ID = snap.Ref.ID
	return &req, nil
}

// firestoreCollectorRepository implements CollectorRepository on Cloud Firestore
type firestoreCollectorRepository struct {
	client *firestore.Client
}

// NewFirestoreCollectorRepository creates a Firestore-backed CollectorRepository
func NewFirestoreCollectorRepository(client *firestore.Client) CollectorRepository {
	return &firestoreCollectorRepository{client: client}
}

func (r *firestoreCollectorRepository) FindByID(ctx context.Context, id string) (*domain.Collector, error) {
	snap, err := r.client.Collection(CollectorsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decodeCollector(snap)
}

func (r *firestoreCollectorRepository) FindActiveByTown(ctx context.Context, town, excludeID string) ([]*domain.Collector, error) {
	q := r.client.Collection(CollectorsCollection).
		Where("isActive", "==", true).
		Where("town", "==", town)
	collectors, err := queryCollectors(ctx, q)
	if err != nil {
		return nil, err
	}
	if excludeID == "" {
		return collectors, nil
	}
	// Document-id inequality needs a reference value; filtering here is simpler
	filtered := collectors[:0]
	for _, c := range collectors {
		if c.ID != excludeID {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

func (r *firestoreCollectorRepository) List(ctx context.Context, limit int) ([]*domain.Collector, error) {
	return queryCollectors(ctx, r.client.Collection(CollectorsCollection).Limit(limit))
}

func queryCollectors(ctx context.Context, q firestore.Query) ([]*domain.Collector, error) {
	docs, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	collectors := make([]*domain.Collector, 0, len(docs))
	for _, doc := range docs {
		c, err := decodeCollector(doc)
		if err != nil {
			return nil, err
		}
		collectors = append(collectors, c)
	}
	return collectors, nil
}

func decodeCollector(snap *firestore.DocumentSnapshot) (*domain.Collector, error) {
	var c domain.Collector
	if err := snap.DataTo(&c); err != nil {
		return nil, fmt.Errorf("decode collector %s: %w", snap.Ref.ID, err)
	}
	c.ID = snap.Ref.ID
	return &c, nil
}

// firestoreUserRepository implements UserRepository on Cloud Firestore
type firestoreUserRepository struct {
	client *firestore.Client
}

// NewFirestoreUserRepository creates a Firestore-backed UserRepository
func NewFirestoreUserRepository(client *firestore.Client) UserRepository {
	return &firestoreUserRepository{client: client}
}

func (r *firestoreUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	snap, err := r.client.Collection(UsersCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var u domain.User
	if err := snap.DataTo(&u); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", id, err)
	}
	u.ID = snap.Ref.ID
	return &u, nil
}

// firestoreChatRepository implements ChatRepository on Cloud Firestore
type firestoreChatRepository struct {
	client *firestore.Client
}

func NewFirestoreChatRepository(client *firestore.Client) ChatRepository {
	return &firestoreChatRepository{client: client}
}

func (r *firestoreChatRepository) FindByID(ctx context.Context, id string) (*domain.Chat, error) {
	snap, err := r.client.Collection(ChatsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var c domain.Chat
	if err := snap.DataTo(&c); err != nil {
		return nil, fmt.Errorf("decode chat %s: %w", id, err)
	}
	c.ID = snap.Ref.ID
	return &c, nil
}
