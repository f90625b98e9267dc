// internal/app/store/routes/routestore.go
package routestore

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dalemusser/greenlink/internal/app/system/collections"
	"github.com/dalemusser/greenlink/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrWardAlreadyAssigned means another active route covers the ward that day.
	ErrWardAlreadyAssigned = errors.New("ward already has an active route for this day")
	ErrNotFound            = errors.New("route not found")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(collections.Routes())}
}

// Create inserts r. The routes collection allows one active route per
// (ward, day); a second one returns ErrWardAlreadyAssigned.
func (s *Store) Create(ctx context.Context, r models.Route) (models.Route, error) {
	now := time.Now().UTC()
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	if r.Status == "" {
		r.Status = models.RouteActive
	}
	r.CreatedAt = now
	r.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Route{}, ErrWardAlreadyAssigned
		}
		return models.Route{}, err
	}
	return r, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Route, error) {
	var r models.Route
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Route{}, ErrNotFound
		}
		return models.Route{}, err
	}
	return r, nil
}

// Delete removes a route. Returns ErrNotFound if nothing was deleted.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll removes every route and returns the count.
func (s *Store) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ActiveForWard returns the active route for (ward, day), or nil.
func (s *Store) ActiveForWard(ctx context.Context, ward int, day civil.Date) (*models.Route, error) {
	var r models.Route
	err := s.c.FindOne(ctx, bson.M{"ward": ward, "day": day, "status": models.RouteActive}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// FirstForCollectorOnDay returns the collector's earliest route on day, or nil.
func (s *Store) FirstForCollectorOnDay(ctx context.Context, collectorID primitive.ObjectID, day civil.Date) (*models.Route, error) {
	var r models.Route
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	err := s.c.FindOne(ctx, bson.M{"collector_id": collectorID, "day": day}, opts).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListByDay returns the routes for day ordered by ward.
func (s *Store) ListByDay(ctx context.Context, day civil.Date) ([]models.Route, error) {
	opts := options.Find().SetSort(bson.D{{Key: "ward", Value: 1}, {Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"day": day}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Route{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// IncrementCollected bumps collected_houses on the collector's active
// route for day. It reports whether a route matched.
func (s *Store) IncrementCollected(ctx context.Context, collectorID primitive.ObjectID, day civil.Date) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"collector_id": collectorID, "day": day, "status": models.RouteActive},
		bson.M{
			"$inc": bson.M{"collected_houses": 1},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// CompleteBefore marks active routes on days before day as completed. Each
// gets the end of its own day as end time (see models.RouteEndTime). Days
// are stored as YYYY-MM-DD, so string order is date order.
func (s *Store) CompleteBefore(ctx context.Context, day civil.Date) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"status":     models.RouteCompleted,
			"end_time":   bson.M{"$concat": bson.A{"$day", models.RouteClosedSuffix}},
			"updated_at": time.Now().UTC(),
		}}},
	}
	res, err := s.c.UpdateMany(ctx,
		bson.M{"status": models.RouteActive, "day": bson.M{"$lt": day}},
		pipeline)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
