// internal/app/store/collectionlogs/logstore.go
package collectionlogstore

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dalemusser/greenlink/internal/app/system/collections"
	"github.com/dalemusser/greenlink/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no log matches.
	ErrNotFound = errors.New("collection log not found")
	// ErrDuplicate means the household already has a log for that day.
	ErrDuplicate = errors.New("household already has a log for this day")
)

// coveredStatuses are the log statuses that count a household as served.
var coveredStatuses = bson.A{models.CollectionCollected, models.LogPaid}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(collections.Logs())}
}

// Key identifies the single log a household has on a day.
type Key struct {
	HouseholdID primitive.ObjectID
	Day         civil.Date
}

// Fields are written on every upsert. ResidentName and Location are only
// written when the log is created, and so are the collector fields when
// KeepCollector is set.
type Fields struct {
	CollectorID   string
	CollectorName string
	Status        string
	Amount        decimal.Decimal
	PaymentMode   string
	PaymentRef    string
	ResidentName  string
	Location      string
	KeepCollector bool
}

// UpsertForDay writes the day's log for key, creating it when missing.
// It returns the stored log and whether this call created it. Two writers
// racing to create the same log both succeed; the loser retries as an
// update.
func (s *Store) UpsertForDay(ctx context.Context, key Key, f Fields) (models.CollectionLog, bool, error) {
	mode := f.PaymentMode
	if mode == "" {
		mode = models.PaymentModeNone
	}
	now := time.Now().UTC()
	set := bson.M{
		"status":           f.Status,
		"amount_collected": f.Amount,
		"payment_mode":     mode,
		"updated_at":       now,
	}
	if f.PaymentRef != "" {
		set["payment_ref"] = f.PaymentRef
	}
	onInsert := bson.M{
		"_id":           primitive.NewObjectID(),
		"resident_name": f.ResidentName,
		"location":      f.Location,
		"timestamp":     now,
		"counted":       false,
		"created_at":    now,
	}
	collector := set
	if f.KeepCollector {
		collector = onInsert
	}
	collector["collector_id"] = f.CollectorID
	collector["collector_name"] = f.CollectorName
	update := bson.M{"$set": set, "$setOnInsert": onInsert}
	filter := bson.M{"household_id": key.HouseholdID, "day": key.Day}
	opts := options.Update().SetUpsert(true)

	res, err := s.c.UpdateOne(ctx, filter, update, opts)
	if err != nil && wafflemongo.IsDup(err) {
		res, err = s.c.UpdateOne(ctx, filter, update, opts)
	}
	if err != nil {
		return models.CollectionLog{}, false, err
	}

	var l models.CollectionLog
	if err := s.c.FindOne(ctx, filter).Decode(&l); err != nil {
		return models.CollectionLog{}, false, err
	}
	return l, res.UpsertedCount > 0, nil
}

// MarkCounted flips the log's counted flag from false to true. It reports
// whether this call did the flip; at most one caller ever gets true.
func (s *Store) MarkCounted(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "counted": bson.M{"$ne": true}},
		bson.M{"$set": bson.M{"counted": true, "updated_at": time.Now().UTC()}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// FindForDay returns the household's log for day, or nil.
func (s *Store) FindForDay(ctx context.Context, householdID primitive.ObjectID, day civil.Date) (*models.CollectionLog, error) {
	var l models.CollectionLog
	err := s.c.FindOne(ctx, bson.M{"household_id": householdID, "day": day}).Decode(&l)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ListRecent returns the newest logs first.
func (s *Store) ListRecent(ctx context.Context, limit int64) ([]models.CollectionLog, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)
	return s.find(ctx, bson.M{}, opts)
}

// ListForDay returns every log for day in time order.
func (s *Store) ListForDay(ctx context.Context, day civil.Date) ([]models.CollectionLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}})
	return s.find(ctx, bson.M{"day": day}, opts)
}

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.CollectionLog, error) {
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.CollectionLog{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// Insert stores l as-is, for backfills that need a historical timestamp.
// Live events go through UpsertForDay instead.
func (s *Store) Insert(ctx context.Context, l models.CollectionLog) (models.CollectionLog, error) {
	now := time.Now().UTC()
	if l.ID.IsZero() {
		l.ID = primitive.NewObjectID()
	}
	if l.PaymentMode == "" {
		l.PaymentMode = models.PaymentModeNone
	}
	if l.Timestamp.IsZero() {
		l.Timestamp = now
	}
	l.CreatedAt = now
	l.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, l); err != nil {
		if wafflemongo.IsDup(err) {
			return models.CollectionLog{}, ErrDuplicate
		}
		return models.CollectionLog{}, err
	}
	return l, nil
}

// DeleteByID removes one log.
func (s *Store) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll removes every log and returns the count.
func (s *Store) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DaySummary is the per-day rollup of logs.
type DaySummary struct {
	Covered int64           `bson:"covered" json:"covered"`
	Revenue decimal.Decimal `bson:"revenue" json:"revenue"`
}

// DaySummary counts the households served on day and sums the amounts
// collected. Logs are unique per (household, day), so counting logs
// counts households.
func (s *Store) DaySummary(ctx context.Context, day civil.Date) (DaySummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"day": day}}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"revenue": bson.M{"$sum": "$amount_collected"},
			"covered": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$in": bson.A{"$status", coveredStatuses}}, 1, 0,
			}}},
		}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return DaySummary{}, err
	}
	defer cur.Close(ctx)

	var out DaySummary
	if cur.Next(ctx) {
		if err := cur.Decode(&out); err != nil {
			return DaySummary{}, err
		}
	}
	return out, cur.Err()
}

// MonthRevenue is the amount collected in one calendar month (YYYY-MM).
type MonthRevenue struct {
	Month   string          `bson:"_id" json:"month"`
	Revenue decimal.Decimal `bson:"revenue" json:"revenue"`
}

// RevenueByMonth sums collected and paid amounts per month for logs dated
// from..to inclusive. Months without logs are absent.
func (s *Store) RevenueByMonth(ctx context.Context, from, to civil.Date) ([]MonthRevenue, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"day":    bson.M{"$gte": from, "$lte": to},
			"status": bson.M{"$in": coveredStatuses},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":     bson.M{"$substrBytes": bson.A{"$day", 0, 7}},
			"revenue": bson.M{"$sum": "$amount_collected"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []MonthRevenue{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountsByCollector returns, per collector_id, the number of logs with
// status collected or paid.
func (s *Store) CountsByCollector(ctx context.Context) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": bson.M{"$in": coveredStatuses}}}},
		{{Key: "$group", Value: bson.M{"_id": "$collector_id", "n": bson.M{"$sum": 1}}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]int64{}
	for cur.Next(ctx) {
		var row struct {
			ID string `bson:"_id"`
			N  int64  `bson:"n"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out[row.ID] = row.N
	}
	return out, cur.Err()
}
