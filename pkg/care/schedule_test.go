package care

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleNextWateringAddsCalendarDays(t *testing.T) {
	base := time.Date(2025, time.March, 1, 9, 30, 0, 0, time.UTC)
	for _, days := range []int{0, 1, 7, 14, 30, 365} {
		got := ScheduleNextWatering(base, days)
		assert.Equal(t, base.AddDate(0, 0, days), got, "interval %d", days)
	}
}

func TestScheduleNextWateringClampsNegative(t *testing.T) {
	base := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, base, ScheduleNextWatering(base, -3))
}

func TestScheduleNextWateringAcrossMonthEnd(t *testing.T) {
	base := time.Date(2025, time.January, 28, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.February, 4, 8, 0, 0, 0, time.UTC), ScheduleNextWatering(base, 7))
}

func TestWateringScenario(t *testing.T) {
	created := time.Date(2025, time.April, 1, 8, 0, 0, 0, time.UTC)

	last, next := InitialWatering(nil, 7, created)
	assert.Nil(t, last)
	assert.Equal(t, created.AddDate(0, 0, 7), next)

	wateredAt := created
	assert.Equal(t, created.AddDate(0, 0, 7), ScheduleNextWatering(wateredAt, 7))

	wateredAt = created.AddDate(0, 0, 10)
	assert.Equal(t, created.AddDate(0, 0, 17), ScheduleNextWatering(wateredAt, 7))
}

func TestInitialWateringWithExplicitLast(t *testing.T) {
	last := time.Date(2025, time.May, 5, 0, 0, 0, 0, time.UTC)
	gotLast, next := InitialWatering(&last, 3, time.Now())
	require.NotNil(t, gotLast)
	assert.Equal(t, last, *gotLast)
	assert.Equal(t, last.AddDate(0, 0, 3), next)
}

func TestRescheduleWateringRequiresHistory(t *testing.T) {
	_, ok := RescheduleWatering(nil, 10)
	assert.False(t, ok)

	last := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	next, ok := RescheduleWatering(&last, 10)
	assert.True(t, ok)
	assert.Equal(t, last.AddDate(0, 0, 10), next)
}

func TestScheduleNextFertilizing(t *testing.T) {
	last := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	interval := 30

	assert.Nil(t, ScheduleNextFertilizing(nil, &interval))
	assert.Nil(t, ScheduleNextFertilizing(&last, nil))

	next := ScheduleNextFertilizing(&last, &interval)
	require.NotNil(t, next)
	assert.Equal(t, last.AddDate(0, 0, 30), *next)
}

func TestIsWateringDue(t *testing.T) {
	now := time.Date(2025, time.July, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.False(t, IsWateringDue(nil, now))
	assert.True(t, IsWateringDue(&past, now))
	assert.True(t, IsWateringDue(&now, now))
	assert.False(t, IsWateringDue(&future, now))
}
