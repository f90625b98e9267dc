// internal/app/store/collectors/collectorstore.go
package collectorstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/greenlink/internal/app/system/collections"
	"github.com/dalemusser/greenlink/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrDuplicatePhone = errors.New("a collector with this phone already exists")
	ErrNotFound       = errors.New("collector not found")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(collections.Collectors())}
}

// Create inserts c as an active collector with no collections yet.
// A zero ID is replaced with a fresh one.
func (s *Store) Create(ctx context.Context, c models.Collector) (models.Collector, error) {
	now := time.Now().UTC()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	c.NameCI = text.Fold(c.Name)
	c.Avatar = models.AvatarFor(c.Name)
	if c.Status == "" {
		c.Status = models.CollectorActive
	}
	if c.Wards == nil {
		c.Wards = []int{}
	}
	c.TotalCollections = 0
	c.CreatedAt = now
	c.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Collector{}, ErrDuplicatePhone
		}
		return models.Collector{}, err
	}
	return c, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Collector, error) {
	var c models.Collector
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Collector{}, ErrNotFound
		}
		return models.Collector{}, err
	}
	return c, nil
}

var byName = bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}}

// List returns every collector ordered by name.
func (s *Store) List(ctx context.Context) ([]models.Collector, error) {
	return s.find(ctx, bson.M{}, options.Find().SetSort(byName))
}

// ListCoveringWard returns the active collectors whose wards include ward.
func (s *Store) ListCoveringWard(ctx context.Context, ward int) ([]models.Collector, error) {
	return s.find(ctx, bson.M{"wards": ward, "status": models.CollectorActive}, options.Find().SetSort(byName))
}

// ListByCreation returns every collector in insertion order. Ward
// assignment repair walks collectors in this order.
func (s *Store) ListByCreation(ctx context.Context) ([]models.Collector, error) {
	return s.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
}

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Collector, error) {
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Collector{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update holds the admin-editable fields. Nil fields are left unchanged.
type Update struct {
	Name   *string
	Phone  *string
	Email  *string
	Wards  []int
	Status *string
}

// Update applies u and returns the stored collector.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, u Update) (models.Collector, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if u.Name != nil {
		set["name"] = *u.Name
		set["name_ci"] = text.Fold(*u.Name)
		set["avatar"] = models.AvatarFor(*u.Name)
	}
	if u.Phone != nil {
		set["phone"] = *u.Phone
	}
	if u.Email != nil {
		set["email"] = *u.Email
	}
	if u.Wards != nil {
		set["wards"] = u.Wards
	}
	if u.Status != nil {
		set["status"] = *u.Status
	}

	var c models.Collector
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Collector{}, ErrNotFound
		}
		if wafflemongo.IsDup(err) {
			return models.Collector{}, ErrDuplicatePhone
		}
		return models.Collector{}, err
	}
	return c, nil
}

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

// DeleteAll removes every collector and returns the count.
func (s *Store) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// IncrementCollections adds n to the collector's total.
func (s *Store) IncrementCollections(ctx context.Context, id primitive.ObjectID, n int64) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"total_collections": n},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetTotalCollections overwrites the collector's total.
func (s *Store) SetTotalCollections(ctx context.Context, id primitive.ObjectID, total int64) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"total_collections": total,
		"updated_at":        time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
