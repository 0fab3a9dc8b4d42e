package repository

import (
	"context"
	"errors"
	"time"

	"pickup-backend/internal/pickup/domain"
)

// ErrNotFound is returned when a document does not exist
var ErrNotFound = errors.New("record not found")

// RequestRepository defines the interface for pickup request data access
type RequestRepository interface {
	// FindByID returns ErrNotFound when the request does not exist
	FindByID(ctx context.Context, id string) (*domain.Request, error)

	// FindUnassignedPending returns pending requests with an empty or null
	// collector, oldest first. An empty town matches every town.
	FindUnassignedPending(ctx context.Context, town string) ([]*domain.Request, error)

	// FindPendingByCollector returns pending requests held by a collector
	FindPendingByCollector(ctx context.Context, collectorID string) ([]*domain.Request, error)

	// FindDuePending returns pending requests whose pickup date is at or before now
	FindDuePending(ctx context.Context, now time.Time) ([]*domain.Request, error)

	// FindOpenBefore returns pending, accepted or in-progress requests
	// scheduled strictly before cutoff
	FindOpenBefore(ctx context.Context, cutoff time.Time) ([]*domain.Request, error)

	// FindUpcoming returns pending or accepted requests with from < pickupDate <= to
	FindUpcoming(ctx context.Context, from, to time.Time) ([]*domain.Request, error)

	// List returns up to limit requests, for debugging
	List(ctx context.Context, limit int) ([]*domain.Request, error)

	// ApplyPatches writes all patches as one atomic batch: either every
	// patch is visible afterwards or none is
	ApplyPatches(ctx context.Context, patches []RequestPatch) error
}

// CollectorRepository defines the interface for collector data access
type CollectorRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Collector, error)

	// FindActiveByTown returns active collectors in town ordered by id,
	// leaving out excludeID when it is not empty
	FindActiveByTown(ctx context.Context, town, excludeID string) ([]*domain.Collector, error)

	List(ctx context.Context, limit int) ([]*domain.Collector, error)
}

// UserRepository looks up request owners
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// ChatRepository looks up chats to find message receivers
type ChatRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Chat, error)
}
