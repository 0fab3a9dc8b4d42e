package repository

import (
	"context"
	"testing"
	"time"

	"pickup-backend/internal/marketplace/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestGormItemRepository(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&domain.Item{}))

	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time { v := now.Add(d); return &v }
	items := []domain.Item{
		{ID: "sold-old", Status: domain.ItemSold, DeleteAfter: at(-2 * time.Hour)},
		{ID: "claimed-now", Status: domain.ItemClaimed, DeleteAfter: at(0)},
		{ID: "sold-later", Status: domain.ItemSold, DeleteAfter: at(time.Hour)},
		{ID: "available", Status: domain.ItemAvailable, DeleteAfter: at(-time.Hour)},
	}
	for i := range items {
		require.NoError(t, db.Create(&items[i]).Error)
	}

	repo := NewGormItemRepository(db)
	ctx := context.Background()

	expired, err := repo.FindExpired(ctx, now)
	require.NoError(t, err)
	require.Len(t, expired, 2)
	assert.Equal(t, "sold-old", expired[0].ID)
	assert.Equal(t, "claimed-now", expired[1].ID)

	require.NoError(t, repo.DeleteItems(ctx, []string{"sold-old", "claimed-now", "already-gone"}))

	var remaining int64
	require.NoError(t, db.Model(&domain.Item{}).Count(&remaining).Error)
	assert.Equal(t, int64(2), remaining)

	expired, err = repo.FindExpired(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, expired)
}
