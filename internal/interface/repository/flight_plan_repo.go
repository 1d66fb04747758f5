package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flightplan-service/internal/domain/entity"
	"flightplan-service/internal/domain/repository"
	"flightplan-service/pkg/logger"
	"flightplan-service/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repository.FlightPlanStore = (*MongoFlightPlanRepository)(nil)

// MongoFlightPlanRepository implements FlightPlanStore on a MongoDB collection
type MongoFlightPlanRepository struct {
	collection  *mongo.Collection
	timeout     time.Duration
	logger      logger.Logger
	metrics     *metrics.Metrics
	newID       func() string
	// insertedKey reports the key the server generated for an insert
	insertedKey func(any) (string, bool)
}

// NewMongoFlightPlanRepository creates a flight plan repository. timeout bounds
// every individual storage call; m may be nil.
func NewMongoFlightPlanRepository(db *mongo.Database, collection string, timeout time.Duration, log logger.Logger, m *metrics.Metrics) *MongoFlightPlanRepository {
	return &MongoFlightPlanRepository{
		collection:  db.Collection(collection),
		timeout:     timeout,
		logger:      log.With("collection", collection),
		metrics:     m,
		newID:       newFlightPlanID,
		insertedKey: generatedObjectID,
	}
}

// EnsureIndexes creates the unique index on flight_plan_id
func (r *MongoFlightPlanRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: fieldFlightPlanID, Value: 1}},
		Options: options.Index().SetUnique(true).SetName("flight_plan_id_unique"),
	})
	if err != nil {
		return fmt.Errorf("failed to create flight_plan_id index: %w", err)
	}
	return nil
}

// GetAll returns every flight plan. A single malformed document fails the
// whole call.
func (r *MongoFlightPlanRepository) GetAll(ctx context.Context) ([]entity.FlightPlan, error) {
	start := time.Now()
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	plans, err := r.findAll(ctx)
	if err != nil {
		r.observe("get_all", start, "error")
		return nil, err
	}

	r.observe("get_all", start, "ok")
	return plans, nil
}

func (r *MongoFlightPlanRepository) findAll(ctx context.Context) ([]entity.FlightPlan, error) {
	cursor, err := r.collection.Find(ctx, bson.D{})
	if err != nil {
		r.logger.Error("Failed to list flight plans", "error", err)
		return nil, fmt.Errorf("failed to list flight plans: %w", err)
	}
	defer cursor.Close(ctx)

	plans := make([]entity.FlightPlan, 0)
	for cursor.Next(ctx) {
		var doc flightPlanDocument
		if err := cursor.Decode(&doc); err != nil {
			r.logger.Error("Malformed flight plan document", "_id", documentKey(cursor.Current), "error", err)
			return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
		}
		if doc.FlightPlanID == "" {
			r.logger.Error("Flight plan document without flight_plan_id", "_id", documentKey(cursor.Current))
			return nil, fmt.Errorf("%w: missing %s", ErrMalformedDocument, fieldFlightPlanID)
		}
		plans = append(plans, doc.toEntity())
	}

	if err := cursor.Err(); err != nil {
		r.logger.Error("Flight plan cursor failed", "error", err)
		return nil, fmt.Errorf("failed to read flight plans: %w", err)
	}

	return plans, nil
}

// GetByID finds a flight plan by its flight_plan_id
func (r *MongoFlightPlanRepository) GetByID(ctx context.Context, id string) (entity.FlightPlan, bool, error) {
	start := time.Now()
	if id == "" {
		r.observe("get_by_id", start, "not_found")
		return entity.FlightPlan{}, false, nil
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var doc flightPlanDocument
	err := r.collection.FindOne(ctx, bson.M{fieldFlightPlanID: id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.observe("get_by_id", start, "not_found")
			return entity.FlightPlan{}, false, nil
		}
		r.observe("get_by_id", start, "error")
		r.logger.Error("Failed to get flight plan", "flightPlanID", id, "error", err)
		return entity.FlightPlan{}, false, fmt.Errorf("failed to get flight plan %s: %w", id, err)
	}

	r.observe("get_by_id", start, "ok")
	return doc.toEntity(), true, nil
}

// FileFlightPlan stores plan under a freshly generated id
func (r *MongoFlightPlanRepository) FileFlightPlan(ctx context.Context, plan entity.FlightPlan) (string, entity.TransactionOutcome) {
	start := time.Now()
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	id := r.newID()
	result, err := r.collection.InsertOne(ctx, toDocument(id, plan))
	if err != nil {
		r.logger.Error("Failed to file flight plan", "error", err)
		r.observe("file", start, entity.ServerError.String())
		return "", entity.ServerError
	}

	key, ok := r.insertedKey(result.InsertedID)
	if !ok {
		r.logger.Warn("Insert completed without a generated key", "insertedID", result.InsertedID)
		r.observe("file", start, entity.BadRequest.String())
		return "", entity.BadRequest
	}

	r.logger.Info("Flight plan filed", "flightPlanID", id, "_id", key)
	r.observe("file", start, entity.Success.String())
	return id, entity.Success
}

func generatedObjectID(v any) (string, bool) {
	oid, ok := v.(primitive.ObjectID)
	if !ok || oid.IsZero() {
		return "", false
	}
	return oid.Hex(), true
}

// UpdateByID replaces every mapped field of the matching flight plan. Data
// identical to what is stored still counts as a success.
func (r *MongoFlightPlanRepository) UpdateByID(ctx context.Context, id string, data entity.FlightPlan) entity.TransactionOutcome {
	start := time.Now()
	if id == "" {
		r.observe("update", start, entity.NotFound.String())
		return entity.NotFound
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{fieldFlightPlanID: id},
		bson.M{"$set": toDocument("", data)},
	)
	if err != nil {
		r.logger.Error("Failed to update flight plan", "flightPlanID", id, "error", err)
		r.observe("update", start, entity.ServerError.String())
		return entity.ServerError
	}

	if result.MatchedCount == 0 {
		r.observe("update", start, entity.NotFound.String())
		return entity.NotFound
	}

	r.observe("update", start, entity.Success.String())
	return entity.Success
}

// DeleteByID removes the matching flight plan
func (r *MongoFlightPlanRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	start := time.Now()
	if id == "" {
		r.observe("delete", start, "not_found")
		return false, nil
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{fieldFlightPlanID: id})
	if err != nil {
		r.logger.Error("Failed to delete flight plan", "flightPlanID", id, "error", err)
		r.observe("delete", start, "error")
		return false, fmt.Errorf("failed to delete flight plan %s: %w", id, err)
	}

	if result.DeletedCount == 0 {
		r.observe("delete", start, "not_found")
		return false, nil
	}

	r.observe("delete", start, "ok")
	return true, nil
}

func documentKey(raw bson.Raw) string {
	v, err := raw.LookupErr("_id")
	if err != nil {
		return ""
	}
	return v.String()
}

func (r *MongoFlightPlanRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *MongoFlightPlanRepository) observe(operation string, start time.Time, outcome string) {
	r.metrics.ObserveStore(operation, outcome, time.Since(start).Seconds())
}
