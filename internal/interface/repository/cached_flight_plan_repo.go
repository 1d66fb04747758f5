package repository

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"flightplan-service/internal/domain/entity"
	"flightplan-service/internal/domain/repository"
	"flightplan-service/internal/infrastructure/cache"
	"flightplan-service/pkg/logger"
	"flightplan-service/pkg/metrics"
)

var _ repository.FlightPlanStore = (*CachedFlightPlanRepository)(nil)

// CachedFlightPlanRepository reads flight plans by id through a cache and
// invalidates entries after every update and delete. Cache failures are
// logged and never fail the call.
//
// A read that misses the cache only fills it when no invalidation happened
// since the read started, so a slow read cannot put back a copy that an
// update or delete has already replaced.
type CachedFlightPlanRepository struct {
	next    repository.FlightPlanStore
	cache   cache.Cache
	ttl     time.Duration
	logger  logger.Logger
	metrics *metrics.Metrics

	// mu orders cache fills against invalidations; generation counts
	// invalidations.
	mu         sync.Mutex
	generation uint64
}

func NewCachedFlightPlanRepository(next repository.FlightPlanStore, c cache.Cache, ttl time.Duration, log logger.Logger, m *metrics.Metrics) *CachedFlightPlanRepository {
	return &CachedFlightPlanRepository{
		next:    next,
		cache:   c,
		ttl:     ttl,
		logger:  log,
		metrics: m,
	}
}

func flightPlanCacheKey(id string) string {
	return "flightplan:" + id
}

func (r *CachedFlightPlanRepository) GetAll(ctx context.Context) ([]entity.FlightPlan, error) {
	return r.next.GetAll(ctx)
}

func (r *CachedFlightPlanRepository) GetByID(ctx context.Context, id string) (entity.FlightPlan, bool, error) {
	key := flightPlanCacheKey(id)

	data, found, err := r.cache.Get(ctx, key)
	if err != nil {
		r.logger.Warn("Cache read failed", "key", key, "error", err)
	}
	if found {
		var plan entity.FlightPlan
		if err := json.Unmarshal(data, &plan); err == nil {
			r.metrics.ObserveCache("hit")
			return plan, true, nil
		}
		r.logger.Warn("Dropping undecodable cache entry", "key", key)
		r.invalidate(ctx, id)
	}
	r.metrics.ObserveCache("miss")

	started := r.currentGeneration()
	plan, found, err := r.next.GetByID(ctx, id)
	if err != nil || !found {
		return plan, found, err
	}

	if data, err := json.Marshal(plan); err == nil {
		r.fill(ctx, key, data, started)
	}
	return plan, true, nil
}

func (r *CachedFlightPlanRepository) FileFlightPlan(ctx context.Context, plan entity.FlightPlan) (string, entity.TransactionOutcome) {
	return r.next.FileFlightPlan(ctx, plan)
}

func (r *CachedFlightPlanRepository) UpdateByID(ctx context.Context, id string, data entity.FlightPlan) entity.TransactionOutcome {
	outcome := r.next.UpdateByID(ctx, id, data)
	// Any outcome may follow a write this process did not see.
	r.invalidate(ctx, id)
	return outcome
}

func (r *CachedFlightPlanRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	deleted, err := r.next.DeleteByID(ctx, id)
	r.invalidate(ctx, id)
	return deleted, err
}

func (r *CachedFlightPlanRepository) currentGeneration() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generation
}

// fill caches data unless an invalidation happened after started was taken.
func (r *CachedFlightPlanRepository) fill(ctx context.Context, key string, data []byte, started uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.generation != started {
		r.logger.Debug("Skipping cache fill after concurrent invalidation", "key", key)
		return
	}
	if err := r.cache.Set(ctx, key, data, r.ttl); err != nil {
		r.logger.Warn("Cache write failed", "key", key, "error", err)
	}
}

func (r *CachedFlightPlanRepository) invalidate(ctx context.Context, id string) {
	key := flightPlanCacheKey(id)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.generation++
	if err := r.cache.Delete(ctx, key); err != nil {
		r.logger.Warn("Cache invalidation failed", "key", key, "error", err)
	}
}
