package repository

import (
	"context"
	"sync"

	"flightplan-service/internal/domain/entity"
	"flightplan-service/internal/domain/repository"
)

var _ repository.FlightPlanStore = (*MemoryFlightPlanRepository)(nil)

// MemoryFlightPlanRepository is an in-memory FlightPlanStore.
// It is safe for concurrent use.
type MemoryFlightPlanRepository struct {
	mu    sync.RWMutex
	byID  map[string]flightPlanDocument
	newID func() string
}

func NewMemoryFlightPlanRepository() *MemoryFlightPlanRepository {
	return &MemoryFlightPlanRepository{
		byID:  make(map[string]flightPlanDocument),
		newID: newFlightPlanID,
	}
}

func (r *MemoryFlightPlanRepository) GetAll(_ context.Context) ([]entity.FlightPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entity.FlightPlan, 0, len(r.byID))
	for _, doc := range r.byID {
		out = append(out, doc.toEntity())
	}
	return out, nil
}

func (r *MemoryFlightPlanRepository) GetByID(_ context.Context, id string) (entity.FlightPlan, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.byID[id]
	if !ok {
		return entity.FlightPlan{}, false, nil
	}
	return doc.toEntity(), true, nil
}

func (r *MemoryFlightPlanRepository) FileFlightPlan(_ context.Context, plan entity.FlightPlan) (string, entity.TransactionOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.newID()
	if _, exists := r.byID[id]; exists {
		return "", entity.ServerError
	}
	r.byID[id] = toDocument(id, plan)
	return id, entity.Success
}

func (r *MemoryFlightPlanRepository) UpdateByID(_ context.Context, id string, data entity.FlightPlan) entity.TransactionOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return entity.NotFound
	}
	r.byID[id] = toDocument(id, data)
	return entity.Success
}

func (r *MemoryFlightPlanRepository) DeleteByID(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return false, nil
	}
	delete(r.byID, id)
	return true, nil
}
