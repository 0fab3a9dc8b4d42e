package usecase

import (
	"context"
	"testing"
	"time"

	"pickup-backend/internal/notification"
	notifdomain "pickup-backend/internal/notification/domain"
	"pickup-backend/internal/notification/mocks"
	notifrepo "pickup-backend/internal/notification/repository"
	"pickup-backend/internal/pickup/domain"
	"pickup-backend/pkg/fcm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func TestMissedSweeper_Sweep(t *testing.T) {
	ctx := context.Background()
	yesterday := testNow.Add(-24 * time.Hour)

	t.Run("marks open requests from earlier days", func(t *testing.T) {
		f := newFixture(nil)
		f.collector("c1", "Accra", true)
		f.request("r1", "Accra", pickupAt(yesterday))
		f.request("r2", "Accra", pickupAt(yesterday), heldBy("c1"), withStatus(domain.StatusAccepted))
		f.request("r3", "Accra", pickupAt(yesterday), heldBy("c1"), withStatus(domain.StatusInProgress))
		f.request("r4", "Accra", pickupAt(yesterday), withStatus(domain.StatusCompleted))
		// earlier today is not missed yet
		f.request("r5", "Accra", pickupAt(testNow.Add(-time.Hour)))

		res, err := NewMissedSweeper(f.deps, time.UTC).Sweep(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, res.Updated)

		for _, id := range []string{"r1", "r2", "r3"} {
			got := f.get(id)
			assert.Equal(t, domain.StatusMissed, got.Status, id)
			require.NotNil(t, got.MissedAt, id)
			assert.True(t, got.MissedAt.Equal(testNow), id)
			assert.Equal(t, domain.MissedReasonDayPassed, got.MissedReason, id)
		}
		assert.Equal(t, domain.StatusCompleted, f.get("r4").Status)
		assert.Equal(t, domain.StatusPending, f.get("r5").Status)

		// one note per user plus one per assigned collector
		assert.Len(t, f.notifier.notes, 5)
	})

	t.Run("second run sends nothing", func(t *testing.T) {
		f := newFixture(nil)
		f.collector("c1", "Accra", true)
		f.request("r1", "Accra", pickupAt(yesterday), heldBy("c1"))
		sweeper := NewMissedSweeper(f.deps, time.UTC)

		first, err := sweeper.Sweep(ctx)
		require.NoError(t, err)
		notes := len(f.notifier.notes)

		second, err := sweeper.Sweep(ctx)
		require.NoError(t, err)

		assert.Equal(t, 1, first.Updated)
		assert.Zero(t, second.Found)
		assert.Zero(t, second.Updated)
		assert.Len(t, f.notifier.notes, notes)
		assert.Equal(t, domain.StatusMissed, f.get("r1").Status)
	})

	t.Run("cutoff follows the configured location", func(t *testing.T) {
		// 23:00 UTC on the previous day is still today at UTC+13
		pickup := testNow.Add(-10 * time.Hour)
		auckland := time.FixedZone("NZDT", 13*60*60)

		f := newFixture(nil)
		f.request("r1", "Accra", pickupAt(pickup))
		res, err := NewMissedSweeper(f.deps, auckland).Sweep(ctx)
		require.NoError(t, err)
		assert.Zero(t, res.Updated)
		assert.Equal(t, domain.StatusPending, f.get("r1").Status)

		res, err = NewMissedSweeper(f.deps, time.UTC).Sweep(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Updated)
		assert.Equal(t, domain.StatusMissed, f.get("r1").Status)
	})
}

func TestMissedSweeper_Notifications(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockSender(ctrl)
	records := notifrepo.NewMemoryNotificationRepository()

	f := newFixture(nil)
	f.deps.Notifier = notification.NewService(sender, records, zap.NewNop())
	f.collector("c1", "Accra", true)
	f.store.PutUser(domain.User{ID: "user-r1", Name: "Ama", FCMToken: "user-token"})
	// user-r2 has no device registered
	f.request("r1", "Accra", pickupAt(testNow.Add(-48*time.Hour)), heldBy("c1"))
	f.request("r2", "Accra", pickupAt(testNow.Add(-48*time.Hour)))

	sender.EXPECT().
		SendToDevice(gomock.Any(), "user-token", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, n fcm.NotificationData) error {
			assert.Equal(t, notifdomain.TypeMissedPickup, n.Data["type"])
			assert.Equal(t, "reschedule", n.Data["action"])
			return nil
		})
	sender.EXPECT().
		SendToDevice(gomock.Any(), "tok-c1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, n fcm.NotificationData) error {
			assert.Equal(t, notifdomain.TypeMissedPickupCollector, n.Data["type"])
			assert.Equal(t, "contact_user", n.Data["action"])
			return nil
		})

	sweeper := NewMissedSweeper(f.deps, time.UTC)
	res, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Notified)

	userNotes := records.ForRecipient("user-r1")
	require.Len(t, userNotes, 1)
	assert.Equal(t, "⚠️ Pickup Request Missed", userNotes[0].Title)
	assert.Equal(t, "r1", userNotes[0].Data["pickupRequestId"])
	assert.False(t, userNotes[0].IsRead)

	collectorNotes := records.ForRecipient("c1")
	require.Len(t, collectorNotes, 1)
	assert.Equal(t, "c1", collectorNotes[0].CollectorID)
	assert.Equal(t, notifdomain.TypeMissedPickupCollector, collectorNotes[0].Type)

	// recorded in-app even without a device
	assert.Len(t, records.ForRecipient("user-r2"), 1)

	// the mock rejects any further push
	_, err = sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Len(t, records.All(), 3)
}
