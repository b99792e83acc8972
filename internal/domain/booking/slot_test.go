package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	utcMinus4 = time.FixedZone("UTC-4", -4*60*60)
	mayFirst  = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
)

func uintPtr(v uint) *uint { return &v }

func TestResolveSlots_SingleWindowConvertsToUTC(t *testing.T) {
	slots := ResolveSlots(ResolveInput{
		Windows: []AvailabilityWindow{
			{CloserID: 1, Date: "2024-06-01", LocalTime: "09:00", Timezone: "America/La_Paz"},
		},
		NowUTC: mayFirst,
	})

	require.Len(t, slots, 1)
	assert.Equal(t, time.Date(2024, 6, 1, 13, 0, 0, 0, time.UTC), slots[0].StartUTC)
	assert.Equal(t, uint(1), slots[0].CloserID)
}

func TestResolveSlots_SharedInstantFirstLoadedWins(t *testing.T) {
	windows := []AvailabilityWindow{
		{CloserID: 1, Date: "2024-06-01", LocalTime: "09:00", Timezone: "America/La_Paz"},
		{CloserID: 2, Date: "2024-06-01", LocalTime: "10:00", Timezone: "America/Sao_Paulo"},
	}

	slots := ResolveSlots(ResolveInput{Windows: windows, NowUTC: mayFirst})

	require.Len(t, slots, 1)
	assert.Equal(t, time.Date(2024, 6, 1, 13, 0, 0, 0, time.UTC), slots[0].StartUTC)
	assert.Equal(t, uint(1), slots[0].CloserID)
}

func TestResolveSlots_PreferredCloserWinsSharedInstant(t *testing.T) {
	windows := []AvailabilityWindow{
		{CloserID: 1, Date: "2024-06-01", LocalTime: "09:00", Timezone: "America/La_Paz"},
		{CloserID: 2, Date: "2024-06-01", LocalTime: "10:00", Timezone: "America/Sao_Paulo"},
	}

	for name, order := range map[string][]AvailabilityWindow{
		"preferred loaded last":  windows,
		"preferred loaded first": {windows[1], windows[0]},
	} {
		t.Run(name, func(t *testing.T) {
			slots := ResolveSlots(ResolveInput{
				Windows:           order,
				NowUTC:            mayFirst,
				PreferredCloserID: uintPtr(2),
			})

			require.Len(t, slots, 1)
			assert.Equal(t, uint(2), slots[0].CloserID)
		})
	}
}

func TestResolveSlots_ExcludesBookedAndPast(t *testing.T) {
	now := time.Date(2024, 6, 1, 13, 0, 0, 0, time.UTC)

	windows := []AvailabilityWindow{
		{CloserID: 1, Date: "2024-06-01", LocalTime: "08:00", Timezone: "America/La_Paz"}, // 12:00Z, passado
		{CloserID: 1, Date: "2024-06-01", LocalTime: "09:00", Timezone: "America/La_Paz"}, // 13:00Z == now
		{CloserID: 1, Date: "2024-06-01", LocalTime: "10:00", Timezone: "America/La_Paz"}, // 14:00Z, ocupado
		{CloserID: 2, Date: "2024-06-01", LocalTime: "10:00", Timezone: "America/La_Paz"}, // 14:00Z, livre
		{CloserID: 1, Date: "2024-06-01", LocalTime: "11:00", Timezone: "America/La_Paz"}, // 15:00Z, livre
	}
	booked := []BookedSlot{
		{CloserID: 1, StartUTC: time.Date(2024, 6, 1, 14, 0, 0, 0, time.UTC)},
	}

	slots := ResolveSlots(ResolveInput{Windows: windows, Booked: booked, NowUTC: now})

	require.Len(t, slots, 2)
	assert.Equal(t, CandidateSlot{StartUTC: time.Date(2024, 6, 1, 14, 0, 0, 0, time.UTC), CloserID: 2}, slots[0])
	assert.Equal(t, CandidateSlot{StartUTC: time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC), CloserID: 1}, slots[1])

	for _, s := range slots {
		assert.True(t, s.StartUTC.After(now))
	}
}

func TestResolveSlots_InvalidTimezoneUsesDefault(t *testing.T) {
	for _, tz := range []string{"", "Nowhere/Atlantis"} {
		slots := ResolveSlots(ResolveInput{
			Windows: []AvailabilityWindow{
				{CloserID: 3, Date: "2024-06-01", LocalTime: "09:00", Timezone: tz},
			},
			NowUTC:          mayFirst,
			DefaultLocation: utcMinus4,
		})

		require.Len(t, slots, 1, "tz=%q", tz)
		assert.Equal(t, time.Date(2024, 6, 1, 13, 0, 0, 0, time.UTC), slots[0].StartUTC)
	}
}

func TestResolveSlots_SortedAscending(t *testing.T) {
	windows := []AvailabilityWindow{
		{CloserID: 1, Date: "2024-06-03", LocalTime: "09:00", Timezone: "UTC"},
		{CloserID: 1, Date: "2024-06-01", LocalTime: "18:00", Timezone: "UTC"},
		{CloserID: 2, Date: "2024-06-02", LocalTime: "22:00", Timezone: "America/La_Paz"}, // 06-03 02:00Z
		{CloserID: 1, Date: "2024-06-01", LocalTime: "bad", Timezone: "UTC"},
	}

	slots := ResolveSlots(ResolveInput{Windows: windows, NowUTC: mayFirst})

	require.Len(t, slots, 3)
	assert.Equal(t, time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC), slots[0].StartUTC)
	assert.Equal(t, time.Date(2024, 6, 3, 2, 0, 0, 0, time.UTC), slots[1].StartUTC)
	assert.Equal(t, time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC), slots[2].StartUTC)
}

func TestResolveSlots_EmptyAvailability(t *testing.T) {
	slots := ResolveSlots(ResolveInput{NowUTC: mayFirst})
	assert.NotNil(t, slots)
	assert.Empty(t, slots)
}
