package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"flightplan-service/internal/domain/repository"
	"flightplan-service/internal/infrastructure/persistence"
	"flightplan-service/internal/interface/repository/storetest"
	"flightplan-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Runs the store contract against a live server when MONGODB_TEST_URI is set.
func TestContract_MongoFlightPlanRepository(t *testing.T) {
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}

	ctx := context.Background()
	client, err := persistence.NewMongoClient(ctx, persistence.MongoOptions{URI: uri})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	db := persistence.GetDatabase(client, "flightplan_test")

	storetest.RunFlightPlanStore(t, func(t *testing.T) repository.FlightPlanStore {
		t.Helper()
		name := "flightplans_" + uuid.NewString()
		repo := NewMongoFlightPlanRepository(db, name, 5*time.Second, logger.NewNopLogger(), nil)
		require.NoError(t, repo.EnsureIndexes(ctx))
		t.Cleanup(func() { _ = db.Collection(name).Drop(context.Background()) })
		return repo
	})
}
