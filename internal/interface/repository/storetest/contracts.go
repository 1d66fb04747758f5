// Package storetest holds the behavioural contract every FlightPlanStore
// implementation must satisfy.
package storetest

import (
	"context"
	"regexp"
	"testing"
	"time"

	"flightplan-service/internal/domain/entity"
	"flightplan-service/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// StoreFactory returns an empty store for one subtest
type StoreFactory func(t *testing.T) repository.FlightPlanStore

var flightPlanIDPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

// SamplePlan is the KSEA to KPDX plan used across tests
func SamplePlan() entity.FlightPlan {
	t0 := time.Date(2024, 6, 4, 6, 30, 0, 0, time.UTC)
	return entity.FlightPlan{
		AircraftID:       "N12345",
		AircraftType:     "C172",
		Airspeed:         110,
		Altitude:         9000,
		FlightType:       "VFR",
		FuelHours:        4,
		FuelMinutes:      30,
		DepartureTime:    t0,
		ArrivalTime:      t0.Add(45 * time.Minute),
		DepartureAirport: "KSEA",
		ArrivalAirport:   "KPDX",
		Route:            "KSEA V23 BTG KPDX",
		Remarks:          "training flight",
		NumberOnBoard:    2,
	}
}

// AssertSamePlan compares every field except ID
func AssertSamePlan(t *testing.T, want, got entity.FlightPlan) {
	t.Helper()
	assert.True(t, want.DepartureTime.Equal(got.DepartureTime), "departure_time: want %v got %v", want.DepartureTime, got.DepartureTime)
	assert.True(t, want.ArrivalTime.Equal(got.ArrivalTime), "estimated_arrival_time: want %v got %v", want.ArrivalTime, got.ArrivalTime)

	want.ID, got.ID = "", ""
	want.DepartureTime, got.DepartureTime = time.Time{}, time.Time{}
	want.ArrivalTime, got.ArrivalTime = time.Time{}, time.Time{}
	assert.Equal(t, want, got)
}

func fileSample(t *testing.T, ctx context.Context, store repository.FlightPlanStore, plan entity.FlightPlan) string {
	t.Helper()
	id, outcome := store.FileFlightPlan(ctx, plan)
	require.Equal(t, entity.Success, outcome)
	require.NotEmpty(t, id)
	return id
}

// RunFlightPlanStore runs the full contract against stores built by newStore
func RunFlightPlanStore(t *testing.T, newStore StoreFactory) {
	t.Helper()
	ctx := context.Background()

	t.Run("GetAllOnEmptyStore", func(t *testing.T) {
		store := newStore(t)
		plans, err := store.GetAll(ctx)
		require.NoError(t, err)
		assert.NotNil(t, plans)
		assert.Empty(t, plans)
	})

	t.Run("FileThenGetRoundTrips", func(t *testing.T) {
		store := newStore(t)
		plan := SamplePlan()
		plan.ID = "caller-supplied"

		id := fileSample(t, ctx, store, plan)
		assert.NotEqual(t, "caller-supplied", id)
		assert.Regexp(t, flightPlanIDPattern, id)

		got, found, err := store.GetByID(ctx, id)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, id, got.ID)
		AssertSamePlan(t, plan, got)

		_, found, err = store.GetByID(ctx, "caller-supplied")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("FilingAssignsUniqueIDs", func(t *testing.T) {
		store := newStore(t)
		seen := make(map[string]bool)
		for i := 0; i < 5; i++ {
			id := fileSample(t, ctx, store, SamplePlan())
			assert.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}

		plans, err := store.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, plans, 5)
	})

	t.Run("TimeEnrouteOfFiledPlan", func(t *testing.T) {
		store := newStore(t)
		id := fileSample(t, ctx, store, SamplePlan())

		got, found, err := store.GetByID(ctx, id)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, 45*time.Minute, got.TimeEnroute())
	})

	t.Run("UpdateAltitude", func(t *testing.T) {
		store := newStore(t)
		plan := SamplePlan()
		id := fileSample(t, ctx, store, plan)

		changed := plan
		changed.Altitude = 10000
		assert.Equal(t, entity.Success, store.UpdateByID(ctx, id, changed))

		got, found, err := store.GetByID(ctx, id)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, 10000, got.Altitude)
		assert.Equal(t, id, got.ID)
		AssertSamePlan(t, changed, got)
	})

	t.Run("UpdateReplacesTimestamps", func(t *testing.T) {
		store := newStore(t)
		plan := SamplePlan()
		id := fileSample(t, ctx, store, plan)

		changed := plan
		changed.DepartureTime = plan.DepartureTime.Add(2 * time.Hour)
		changed.ArrivalTime = plan.ArrivalTime.Add(2*time.Hour + 15*time.Minute)
		changed.NumberOnBoard = 3
		require.Equal(t, entity.Success, store.UpdateByID(ctx, id, changed))

		got, _, err := store.GetByID(ctx, id)
		require.NoError(t, err)
		AssertSamePlan(t, changed, got)
		assert.Equal(t, time.Hour, got.TimeEnroute())
	})

	t.Run("UpdateKeepsStoredID", func(t *testing.T) {
		store := newStore(t)
		id := fileSample(t, ctx, store, SamplePlan())

		changed := SamplePlan()
		changed.ID = "some-other-id"
		require.Equal(t, entity.Success, store.UpdateByID(ctx, id, changed))

		got, found, err := store.GetByID(ctx, id)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, id, got.ID)

		_, found, err = store.GetByID(ctx, "some-other-id")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("UpdateWithIdenticalData", func(t *testing.T) {
		store := newStore(t)
		plan := SamplePlan()
		id := fileSample(t, ctx, store, plan)

		assert.Equal(t, entity.Success, store.UpdateByID(ctx, id, plan))
	})

	t.Run("UpdateIsolation", func(t *testing.T) {
		store := newStore(t)
		a := SamplePlan()
		b := SamplePlan()
		b.AircraftID = "N67890"
		b.Route = "KPDX DIRECT KSEA"
		aID := fileSample(t, ctx, store, a)
		bID := fileSample(t, ctx, store, b)

		changed := a
		changed.Altitude = 11500
		changed.Remarks = "amended"
		require.Equal(t, entity.Success, store.UpdateByID(ctx, aID, changed))

		gotB, found, err := store.GetByID(ctx, bID)
		require.NoError(t, err)
		require.True(t, found)
		AssertSamePlan(t, b, gotB)
	})

	t.Run("NeverFiledIDIsAbsentEverywhere", func(t *testing.T) {
		store := newStore(t)
		fileSample(t, ctx, store, SamplePlan())
		missing := "00000000000000000000000000000000"

		got, found, err := store.GetByID(ctx, missing)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Equal(t, entity.FlightPlan{}, got)

		assert.Equal(t, entity.NotFound, store.UpdateByID(ctx, missing, SamplePlan()))

		deleted, err := store.DeleteByID(ctx, missing)
		require.NoError(t, err)
		assert.False(t, deleted)

		plans, err := store.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, plans, 1, "update must not upsert")
	})

	t.Run("DeleteThenGet", func(t *testing.T) {
		store := newStore(t)
		id := fileSample(t, ctx, store, SamplePlan())

		deleted, err := store.DeleteByID(ctx, id)
		require.NoError(t, err)
		assert.True(t, deleted)

		_, found, err := store.GetByID(ctx, id)
		require.NoError(t, err)
		assert.False(t, found)

		deleted, err = store.DeleteByID(ctx, id)
		require.NoError(t, err)
		assert.False(t, deleted)

		assert.Equal(t, entity.NotFound, store.UpdateByID(ctx, id, SamplePlan()))
	})

	t.Run("ReadsAreIdempotent", func(t *testing.T) {
		store := newStore(t)
		id := fileSample(t, ctx, store, SamplePlan())
		fileSample(t, ctx, store, SamplePlan())

		first, err := store.GetAll(ctx)
		require.NoError(t, err)
		second, err := store.GetAll(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, first, second)

		one, _, err := store.GetByID(ctx, id)
		require.NoError(t, err)
		two, _, err := store.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, one, two)
	})
}
