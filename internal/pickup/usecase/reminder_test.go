package usecase

import (
	"context"
	"testing"
	"time"

	"pickup-backend/internal/pickup/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReminderSweeper_Sweep(t *testing.T) {
	f := newFixture(nil)
	f.collector("c1", "Accra", true)
	f.collector("c2", "Accra", true)
	f.request("edge-in", "Accra", heldBy("c1"), pickupAt(testNow.Add(30*time.Minute)))
	f.request("inside", "Accra", heldBy("c2"), pickupAt(testNow.Add(27*time.Minute)), withStatus(domain.StatusAccepted))
	f.request("edge-out", "Accra", heldBy("c1"), pickupAt(testNow.Add(25*time.Minute)))
	f.request("later", "Accra", heldBy("c1"), pickupAt(testNow.Add(31*time.Minute)))
	f.request("unassigned", "Accra", pickupAt(testNow.Add(28*time.Minute)))
	f.request("started", "Accra", heldBy("c1"), pickupAt(testNow.Add(28*time.Minute)), withStatus(domain.StatusInProgress))

	res, err := NewReminderSweeper(f.deps).Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, res.Found)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 2, res.Notified)

	c1 := f.notifier.pushesTo("c1")
	require.Len(t, c1, 1)
	assert.Equal(t, "edge-in", c1[0].data.Data["requestId"])
	assert.Equal(t, "⏰ Upcoming Pickup Reminder", c1[0].data.Title)

	c2 := f.notifier.pushesTo("c2")
	require.Len(t, c2, 1)
	assert.Equal(t, "inside", c2[0].data.Data["requestId"])
}
