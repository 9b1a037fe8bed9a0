package availability

import (
	"context"
	"testing"
	"time"

	"clinicsched/internal/scheduling/conflict"
	"clinicsched/internal/scheduling/schedtest"
	"clinicsched/pkg/logger"
	"clinicsched/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2025-03-03 is a Monday.
func mon(h, m int) time.Time {
	return time.Date(2025, 3, 3, h, m, 0, 0, time.UTC)
}

func newCalculator(store *schedtest.Store, opts ...Option) *Calculator {
	return NewCalculator(conflict.Sources{
		Appointments: store.AppointmentLookup(),
		BlockedTimes: store.BlockedTimeLookup(),
		Hours:        store,
		Location:     time.UTC,
		Log:          logger.Discard(),
	}, opts...)
}

var scopeP = model.Scope{TenantID: "t1", UserID: "u1", ProviderID: "P"}

func TestAvailableSlots_SubtractsBusyTime(t *testing.T) {
	store := schedtest.NewStore()
	store.TenantHours = schedtest.Weekdays("09:00", "12:00", model.Break{Start: "10:30", End: "11:00"})
	store.AddAppointment(&model.Appointment{ID: "a", TenantID: "t1", UserID: "u2", ProviderID: "P", StartTime: mon(9, 15), EndTime: mon(9, 45)})
	store.AddBlocked(&model.BlockedTime{ID: "b", TenantID: "t1", UserID: "admin", ProviderID: "P", StartTime: mon(11, 30), EndTime: mon(12, 0), Reason: "Admin"})
	c := newCalculator(store)

	slots, err := c.AvailableSlots(context.Background(), scopeP, mon(0, 0), 30*time.Minute)
	require.NoError(t, err)

	want := []model.Slot{
		{Start: mon(9, 45), End: mon(10, 15), Available: true},
		{Start: mon(11, 0), End: mon(11, 30), Available: true},
	}
	assert.Equal(t, want, slots)
}

func TestAvailableSlots_NeverOverlapBusyTime(t *testing.T) {
	store := schedtest.NewStore()
	store.TenantHours = schedtest.Weekdays("08:00", "18:00")
	busy := []model.Interval{
		{Start: mon(8, 20), End: mon(8, 50)},
		{Start: mon(10, 5), End: mon(11, 40)},
		{Start: mon(15, 0), End: mon(15, 10)},
	}
	for i, b := range busy {
		store.AddAppointment(&model.Appointment{ID: string(rune('a' + i)), TenantID: "t1", UserID: "u1", ProviderID: "P", StartTime: b.Start, EndTime: b.End})
	}
	c := newCalculator(store)

	slots, err := c.AvailableSlots(context.Background(), scopeP, mon(12, 0), 25*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, slots)
	for _, s := range slots {
		assert.True(t, s.Available)
		assert.Equal(t, 25*time.Minute, s.End.Sub(s.Start))
		assert.False(t, s.Start.Before(mon(8, 0)))
		assert.False(t, s.End.After(mon(18, 0)))
		for _, b := range busy {
			assert.False(t, s.Interval().Overlaps(b), "slot %v overlaps busy %v", s, b)
		}
	}
}

func TestAvailableSlots_ClosedDay(t *testing.T) {
	store := schedtest.NewStore()
	store.TenantHours = schedtest.Weekdays("09:00", "17:00")
	c := newCalculator(store)

	sunday := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	slots, err := c.AvailableSlots(context.Background(), scopeP, sunday, 30*time.Minute)
	require.NoError(t, err)
	assert.NotNil(t, slots)
	assert.Empty(t, slots)
}

func TestAvailableSlots_InvalidDuration(t *testing.T) {
	c := newCalculator(schedtest.NewStore())
	_, err := c.AvailableSlots(context.Background(), scopeP, mon(0, 0), 0)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = c.SuggestedSlots(context.Background(), scopeP, -time.Minute, 7)
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestSuggestedSlots_DropsPastSlotsToday(t *testing.T) {
	store := schedtest.NewStore()
	store.TenantHours = schedtest.Weekdays("09:00", "17:00")
	c := newCalculator(store, WithClock(func() time.Time { return mon(16, 10) }))

	days, err := c.SuggestedSlots(context.Background(), scopeP, 30*time.Minute, 7)
	require.NoError(t, err)

	require.Len(t, days, 2)
	assert.Equal(t, "2025-03-03", days[0].Date)
	assert.Equal(t, []model.Slot{{Start: mon(16, 30), End: mon(17, 0), Available: true}}, days[0].Slots)
	assert.Equal(t, "2025-03-04", days[1].Date)
	require.Len(t, days[1].Slots, 2)
	assert.Equal(t, time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC), days[1].Slots[0].Start)
}

func TestSuggestedSlots_SkipsWeekendAndHonorsWindow(t *testing.T) {
	store := schedtest.NewStore()
	store.TenantHours = schedtest.Weekdays("09:00", "10:00")
	saturday := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	c := newCalculator(store, WithClock(func() time.Time { return saturday }))

	days, err := c.SuggestedSlots(context.Background(), scopeP, time.Hour, 2)
	require.NoError(t, err)
	assert.Empty(t, days)

	days, err = c.SuggestedSlots(context.Background(), scopeP, time.Hour, 7)
	require.NoError(t, err)
	require.Len(t, days, 3)
	assert.Equal(t, "2025-03-03", days[0].Date)
	assert.Equal(t, "2025-03-05", days[2].Date)
}

func TestSuggest_FlattensAndLimits(t *testing.T) {
	store := schedtest.NewStore()
	store.TenantHours = schedtest.Weekdays("09:00", "17:00")
	c := newCalculator(store, WithClock(func() time.Time { return mon(7, 0) }), WithMaxSuggestions(4))

	slots, err := c.Suggest(context.Background(), scopeP, 30*time.Minute)
	require.NoError(t, err)
	require.Len(t, slots, 4)
	assert.Equal(t, mon(9, 0), slots[0].Start)
	assert.Equal(t, mon(10, 30), slots[3].Start)
}

func TestSuggest_NoAvailability(t *testing.T) {
	store := schedtest.NewStore()
	c := newCalculator(store, WithClock(func() time.Time { return mon(7, 0) }))

	slots, err := c.Suggest(context.Background(), scopeP, 30*time.Minute)
	require.NoError(t, err)
	assert.NotNil(t, slots)
	assert.Empty(t, slots)
}
