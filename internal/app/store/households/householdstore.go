// internal/app/store/households/householdstore.go
package householdstore

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dalemusser/greenlink/internal/app/system/collections"
	"github.com/dalemusser/greenlink/internal/app/system/paging"
	"github.com/dalemusser/greenlink/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no household matches.
var ErrNotFound = errors.New("household not found")

// DefaultMonthlyFee applies when a household is created without a fee.
var DefaultMonthlyFee = decimal.NewFromInt(100)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(collections.Households())}
}

// Collection exposes the underlying collection for transactional callers.
func (s *Store) Collection() *mongo.Collection { return s.c }

// Create inserts h with pending statuses, no collector and no payment mode.
func (s *Store) Create(ctx context.Context, h models.Household) (models.Household, error) {
	now := time.Now().UTC()
	if h.ID.IsZero() {
		h.ID = primitive.NewObjectID()
	}
	h.ResidentNameCI = text.Fold(h.ResidentName)
	if h.MonthlyFee.IsZero() {
		h.MonthlyFee = DefaultMonthlyFee
	}
	if h.PaymentStatus == "" {
		h.PaymentStatus = models.PaymentPending
	}
	if h.CollectionStatus == "" {
		h.CollectionStatus = models.CollectionPending
	}
	if h.AssignedCollector == "" {
		h.AssignedCollector = models.Unassigned
	}
	if h.PaymentMode == "" {
		h.PaymentMode = models.PaymentModeNone
	}
	h.CreatedAt = now
	h.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, h); err != nil {
		return models.Household{}, err
	}
	return h, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Household, error) {
	var h models.Household
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&h); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Household{}, ErrNotFound
		}
		return models.Household{}, err
	}
	return h, nil
}

// GetByPhone returns the first household registered with phone.
func (s *Store) GetByPhone(ctx context.Context, phone string) (models.Household, error) {
	var h models.Household
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})
	if err := s.c.FindOne(ctx, bson.M{"phone": phone}, opts).Decode(&h); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Household{}, ErrNotFound
		}
		return models.Household{}, err
	}
	return h, nil
}

// ListFilter narrows List. A zero Ward means every ward.
type ListFilter struct {
	Ward int
	Page paging.Page
}

func (f ListFilter) bson() bson.M {
	q := bson.M{}
	if f.Ward > 0 {
		q["ward"] = f.Ward
	}
	return q
}

var byWardName = bson.D{{Key: "ward", Value: 1}, {Key: "resident_name_ci", Value: 1}, {Key: "_id", Value: 1}}

// List returns one page of households ordered by ward and resident name.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.Household, error) {
	page := f.Page
	if page.Limit <= 0 {
		page = paging.Default()
	}
	opts := page.Apply(options.Find().SetSort(byWardName))
	return s.find(ctx, f.bson(), opts)
}

// ListByWard returns every household in ward, without a page limit.
func (s *Store) ListByWard(ctx context.Context, ward int) ([]models.Household, error) {
	return s.find(ctx, bson.M{"ward": ward}, options.Find().SetSort(byWardName))
}

// ListAll returns every household. Reports and exports use it.
func (s *Store) ListAll(ctx context.Context) ([]models.Household, error) {
	return s.find(ctx, bson.M{}, options.Find().SetSort(byWardName))
}

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Household, error) {
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Household{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ForEach calls fn for every household in _id order. It stops at the first
// error from fn or the cursor.
func (s *Store) ForEach(ctx context.Context, fn func(models.Household) error) error {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var h models.Household
		if err := cur.Decode(&h); err != nil {
			return err
		}
		if err := fn(h); err != nil {
			return err
		}
	}
	return cur.Err()
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

func (s *Store) CountByWard(ctx context.Context, ward int) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"ward": ward})
}

// Update holds the admin-editable fields. Nil fields are left unchanged.
// PaymentStatus is stored as given and still decays on read when
// last_collection_date is not today.
type Update struct {
	ResidentName  *string
	Address       *string
	Ward          *int
	Phone         *string
	MonthlyFee    *decimal.Decimal
	Lat           *float64
	Lng           *float64
	WetWaste      *float64
	DryWaste      *float64
	RejectWaste   *float64
	PaymentStatus *string
}

// IsEmpty reports whether u changes nothing.
func (u Update) IsEmpty() bool {
	return u.ResidentName == nil && u.Address == nil && u.Ward == nil && u.Phone == nil &&
		u.MonthlyFee == nil && u.Lat == nil && u.Lng == nil &&
		u.WetWaste == nil && u.DryWaste == nil && u.RejectWaste == nil && u.PaymentStatus == nil
}

// Update applies u to the household and returns the stored result.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, u Update) (models.Household, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if u.ResidentName != nil {
		set["resident_name"] = *u.ResidentName
		set["resident_name_ci"] = text.Fold(*u.ResidentName)
	}
	if u.Address != nil {
		set["address"] = *u.Address
	}
	if u.Ward != nil {
		set["ward"] = *u.Ward
	}
	if u.Phone != nil {
		set["phone"] = *u.Phone
	}
	if u.MonthlyFee != nil {
		set["monthly_fee"] = *u.MonthlyFee
	}
	if u.PaymentStatus != nil {
		set["payment_status"] = *u.PaymentStatus
	}
	for field, v := range map[string]*float64{
		"lat": u.Lat, "lng": u.Lng,
		"wet_waste": u.WetWaste, "dry_waste": u.DryWaste, "reject_waste": u.RejectWaste,
	} {
		if v != nil {
			set[field] = *v
		}
	}

	var h models.Household
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&h); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Household{}, ErrNotFound
		}
		return models.Household{}, err
	}
	return h, nil
}

// Delete removes a household. Returns ErrNotFound if nothing was deleted.
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

// DeleteAll removes every household and returns the count.
func (s *Store) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// AssignWard points every household in ward at collector (a collector id
// hex or models.Unassigned) and returns how many matched.
func (s *Store) AssignWard(ctx context.Context, ward int, collector string) (int64, error) {
	res, err := s.c.UpdateMany(ctx, bson.M{"ward": ward}, bson.M{"$set": bson.M{
		"assigned_collector": collector,
		"updated_at":         time.Now().UTC(),
	}})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// AssignOne points a single household at collector.
func (s *Store) AssignOne(ctx context.Context, id primitive.ObjectID, collector string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"assigned_collector": collector,
		"updated_at":         time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Outcome is the household side of a collection event. An empty
// PaymentStatus keeps the stored payment status if it was set today and
// resets it to pending otherwise.
type Outcome struct {
	CollectionStatus string
	PaymentStatus    string
	PaymentMode      string
	Day              civil.Date
}

// SetCollectionOutcome records a collection event on the household.
func (s *Store) SetCollectionOutcome(ctx context.Context, id primitive.ObjectID, o Outcome) error {
	mode := o.PaymentMode
	if mode == "" {
		mode = models.PaymentModeNone
	}
	var payment any = o.PaymentStatus
	if o.PaymentStatus == "" {
		payment = bson.M{"$cond": bson.A{
			bson.M{"$eq": bson.A{"$last_collection_date", o.Day}},
			"$payment_status",
			models.PaymentPending,
		}}
	}
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"collection_status":    o.CollectionStatus,
			"payment_status":       payment,
			"last_collection_date": o.Day,
			"payment_mode":         mode,
			"updated_at":           time.Now().UTC(),
		}}},
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, pipeline)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkPaidOnline records an online payment for today. A collection status
// stored for an earlier day is reset to pending, since moving the date
// forward would otherwise revive it.
func (s *Store) MarkPaidOnline(ctx context.Context, id primitive.ObjectID, today civil.Date) error {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"collection_status": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$last_collection_date", today}},
				"$collection_status",
				models.CollectionPending,
			}},
			"payment_status":       models.PaymentPaid,
			"payment_mode":         models.PaymentModeOnline,
			"last_collection_date": today,
			"updated_at":           time.Now().UTC(),
		}}},
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, pipeline)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
