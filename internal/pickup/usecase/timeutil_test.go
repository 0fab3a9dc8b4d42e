package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAddHours(t *testing.T) {
	base := time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2025, 3, 11, 1, 30, 0, 0, time.UTC), AddHours(base, 2))
	assert.Equal(t, time.Date(2025, 3, 10, 20, 30, 0, 0, time.UTC), AddHours(base, -3))
	assert.Equal(t, base, AddHours(base, 0))
	// the input time is left unchanged
	assert.Equal(t, 23, base.Hour())
}

func TestEndOfPreviousDay(t *testing.T) {
	accra := time.FixedZone("GMT", 0)
	plusTwo := time.FixedZone("SAST", 2*60*60)

	tests := []struct {
		name string
		now  time.Time
		loc  *time.Location
		want time.Time
	}{
		{
			name: "midday",
			now:  time.Date(2025, 3, 10, 12, 0, 0, 0, accra),
			loc:  accra,
			want: time.Date(2025, 3, 9, 23, 59, 59, int(999*time.Millisecond), accra),
		},
		{
			name: "just after midnight",
			now:  time.Date(2025, 3, 1, 0, 0, 1, 0, accra),
			loc:  accra,
			want: time.Date(2025, 2, 28, 23, 59, 59, int(999*time.Millisecond), accra),
		},
		{
			name: "location decides the day",
			now:  time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC),
			loc:  plusTwo,
			want: time.Date(2025, 3, 10, 23, 59, 59, int(999*time.Millisecond), plusTwo),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EndOfPreviousDay(tt.now, tt.loc)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
		})
	}
}
