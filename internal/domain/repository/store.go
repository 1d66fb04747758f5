package repository

import (
	"context"

	"flightplan-service/internal/domain/entity"
)

// StoreAdapter is the minimum operation set any persisted record type supports
type StoreAdapter[T any] interface {
	// GetAll returns every stored record. An empty store yields an empty slice.
	GetAll(ctx context.Context) ([]T, error)

	// GetByID reports found=false when no record matches id.
	GetByID(ctx context.Context, id string) (T, bool, error)

	// UpdateByID replaces every field except the id. It never creates a record.
	UpdateByID(ctx context.Context, id string, data T) entity.TransactionOutcome

	// DeleteByID reports whether a record was removed.
	DeleteByID(ctx context.Context, id string) (bool, error)
}

// FlightPlanStore adds filing, the only creation path for flight plans
type FlightPlanStore interface {
	StoreAdapter[entity.FlightPlan]

	// FileFlightPlan assigns a fresh id, ignoring any id on plan, and persists
	// it. The id is empty unless the outcome is entity.Success.
	FileFlightPlan(ctx context.Context, plan entity.FlightPlan) (string, entity.TransactionOutcome)
}
