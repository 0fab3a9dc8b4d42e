package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"pickup-backend/internal/pickup/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A second connection would see a different in-memory database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&domain.Request{}, &domain.Collector{}, &domain.User{}, &domain.Chat{}))
	return db
}

func TestGormRequestRepository_Queries(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormRequestRepository(db)
	ctx := context.Background()
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	fixtures := []domain.Request{
		{ID: "r1", Status: domain.StatusPending, UserTown: "Accra", CreatedAt: base.Add(2 * time.Minute), PickupDate: base.Add(-time.Hour)},
		{ID: "r2", Status: domain.StatusPending, UserTown: "Accra", CreatedAt: base.Add(time.Minute), PickupDate: base.Add(time.Hour)},
		{ID: "r3", Status: domain.StatusPending, UserTown: "Kumasi", CollectorID: "c1", CreatedAt: base, PickupDate: base.Add(-2 * time.Hour)},
		{ID: "r4", Status: domain.StatusAccepted, UserTown: "Accra", CollectorID: "c2", CreatedAt: base, PickupDate: base.Add(28 * time.Minute)},
		{ID: "r5", Status: domain.StatusMissed, UserTown: "Accra", CreatedAt: base, PickupDate: base.Add(-48 * time.Hour)},
		{ID: "r6", Status: domain.StatusInProgress, UserTown: "Tema", CollectorID: "c3", CreatedAt: base, PickupDate: base.Add(-48 * time.Hour)},
	}
	for i := range fixtures {
		require.NoError(t, db.Create(&fixtures[i]).Error)
	}

	t.Run("unassigned pending oldest first", func(t *testing.T) {
		got, err := repo.FindUnassignedPending(ctx, "Accra")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "r2", got[0].ID)
		assert.Equal(t, "r1", got[1].ID)
	})

	t.Run("unassigned pending across towns", func(t *testing.T) {
		got, err := repo.FindUnassignedPending(ctx, "")
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("pending by collector", func(t *testing.T) {
		got, err := repo.FindPendingByCollector(ctx, "c1")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "r3", got[0].ID)
	})

	t.Run("due pending", func(t *testing.T) {
		got, err := repo.FindDuePending(ctx, base)
		require.NoError(t, err)
		ids := requestIDs(got)
		assert.ElementsMatch(t, []string{"r1", "r3"}, ids)
	})

	t.Run("open before cutoff skips missed", func(t *testing.T) {
		got, err := repo.FindOpenBefore(ctx, base.Add(-24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, []string{"r6"}, requestIDs(got))
	})

	t.Run("upcoming window", func(t *testing.T) {
		got, err := repo.FindUpcoming(ctx, base.Add(25*time.Minute), base.Add(30*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, []string{"r4"}, requestIDs(got))
	})

	t.Run("find by id", func(t *testing.T) {
		got, err := repo.FindByID(ctx, "r4")
		require.NoError(t, err)
		assert.Equal(t, "c2", got.CollectorID)

		_, err = repo.FindByID(ctx, "nope")
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestGormRequestRepository_ApplyPatches(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormRequestRepository(db)
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	require.NoError(t, db.Create(&domain.Request{ID: "r1", Status: domain.StatusPending, UserTown: "Accra", CreatedAt: now}).Error)
	require.NoError(t, db.Create(&domain.Request{ID: "r2", Status: domain.StatusPending, UserTown: "Accra", CreatedAt: now}).Error)

	collector := &domain.Collector{ID: "c1", Name: "Kofi", Town: "Accra", IsActive: true}

	t.Run("batch is applied", func(t *testing.T) {
		err := repo.ApplyPatches(ctx, []RequestPatch{
			AssignPatch("r1", collector, now),
			AssignPatch("r2", collector, now),
		})
		require.NoError(t, err)

		got, err := repo.FindByID(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, "c1", got.CollectorID)
		assert.Equal(t, "Kofi", got.CollectorName)
		require.NotNil(t, got.AssignedAt)
	})

	t.Run("batch with missing document rolls back", func(t *testing.T) {
		err := repo.ApplyPatches(ctx, []RequestPatch{
			ClearAssignmentPatch("r1"),
			ClearAssignmentPatch("missing"),
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))

		got, err := repo.FindByID(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, "c1", got.CollectorID, "first update must not survive the rollback")
	})

	t.Run("clear assignment nulls assignedAt", func(t *testing.T) {
		require.NoError(t, repo.ApplyPatches(ctx, []RequestPatch{ClearAssignmentPatch("r2")}))

		got, err := repo.FindByID(ctx, "r2")
		require.NoError(t, err)
		assert.Empty(t, got.CollectorID)
		assert.Empty(t, got.CollectorName)
		assert.Nil(t, got.AssignedAt)
		assert.Equal(t, domain.StatusPending, got.Status)
	})
}

func TestGormCollectorRepository_FindActiveByTown(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormCollectorRepository(db)
	ctx := context.Background()

	for _, c := range []domain.Collector{
		{ID: "c1", Town: "Accra", IsActive: true},
		{ID: "c2", Town: "Accra", IsActive: true},
		{ID: "c3", Town: "Accra", IsActive: false},
		{ID: "c4", Town: "Kumasi", IsActive: true},
	} {
		c := c
		require.NoError(t, db.Create(&c).Error)
	}

	got, err := repo.FindActiveByTown(ctx, "Accra", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, collectorIDs(got))

	got, err = repo.FindActiveByTown(ctx, "Accra", "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c2"}, collectorIDs(got))

	_, err = repo.FindByID(ctx, "c9")
	assert.ErrorIs(t, err, ErrNotFound)
}

func requestIDs(reqs []*domain.Request) []string {
	ids := make([]string, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.ID)
	}
	return ids
}

func collectorIDs(cs []*domain.Collector) []string {
	ids := make([]string, 0, len(cs))
	for _, c := range cs {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestGormChatRepository_FindByID(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormChatRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Create(&domain.Chat{ID: "chat1", UserID: "u1", CollectorID: "c1"}).Error)

	got, err := repo.FindByID(ctx, "chat1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "c1", got.CollectorID)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
