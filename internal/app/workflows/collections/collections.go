// Package collections records what happened at a household on a day:
// a collector's visit or a resident's online payment.
//
// Each household has at most one collection log per day. A second event on
// the same day rewrites that log in place. A collector's total grows by at
// most one per household per day, however many times the visit is
// re-recorded.
package collections

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/civil"
	collectionlogstore "github.com/dalemusser/greenlink/internal/app/store/collectionlogs"
	collectorstore "github.com/dalemusser/greenlink/internal/app/store/collectors"
	householdstore "github.com/dalemusser/greenlink/internal/app/store/households"
	routestore "github.com/dalemusser/greenlink/internal/app/store/routes"
	"github.com/dalemusser/greenlink/internal/app/system/servicedate"
	"github.com/dalemusser/greenlink/internal/domain/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	ErrHouseholdNotFound    = errors.New("household not found")
	ErrInvalidStatus        = errors.New(`status must be "collected" or "not-available"`)
	ErrInvalidPaymentMode   = errors.New(`payment mode must be "none", "offline" or "online"`)
	ErrInvalidPaymentStatus = errors.New(`payment status must be "pending", "paid" or "overdue"`)
	ErrInvalidAmount        = errors.New("amount cannot be negative")
)

// Service runs the collection workflow against one database.
type Service struct {
	households *householdstore.Store
	collectors *collectorstore.Store
	routes     *routestore.Store
	logs       *collectionlogstore.Store
	cal        *servicedate.Calendar
	log        *zap.Logger
}

func New(db *mongo.Database, cal *servicedate.Calendar, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		households: householdstore.New(db),
		collectors: collectorstore.New(db),
		routes:     routestore.New(db),
		logs:       collectionlogstore.New(db),
		cal:        cal,
		log:        log,
	}
}

// RecordInput is one collector visit.
type RecordInput struct {
	HouseholdID   primitive.ObjectID
	Status        string // collected | not-available
	CollectorID   string
	CollectorName string
	ResidentName  string // looked up when blank
	Location      string
	PaymentMode   string // optional; blank means none
	PaymentStatus string // optional override
	Amount        decimal.Decimal
}

// RecordResult reports what RecordCollection stored.
type RecordResult struct {
	Log models.CollectionLog `json:"log"`
	// PaymentStatus is the payment status written to the household, or
	// blank when it was left unchanged.
	PaymentStatus string `json:"payment_status,omitempty"`
	Created       bool   `json:"created"`
	// Counted is true when this call credited the collector.
	Counted bool `json:"counted"`
}

// EffectivePaymentStatus resolves the payment status a visit writes.
// An explicit override wins; otherwise offline payment means paid;
// otherwise the stored status is kept (blank).
func EffectivePaymentStatus(mode, override string) string {
	if override != "" {
		return override
	}
	if mode == models.PaymentModeOffline {
		return models.PaymentPaid
	}
	return ""
}

func (in RecordInput) validate() error {
	if in.Status != models.CollectionCollected && in.Status != models.CollectionNotAvailable {
		return ErrInvalidStatus
	}
	if in.PaymentMode != "" && !models.OneOf(in.PaymentMode, models.PaymentModes) {
		return ErrInvalidPaymentMode
	}
	if in.PaymentStatus != "" && !models.OneOf(in.PaymentStatus, models.PaymentStatuses) {
		return ErrInvalidPaymentStatus
	}
	if in.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// RecordCollection records a collector's visit to a household today.
func (s *Service) RecordCollection(ctx context.Context, in RecordInput) (RecordResult, error) {
	if err := in.validate(); err != nil {
		return RecordResult{}, err
	}
	today := s.cal.Today()

	if in.ResidentName == "" {
		h, err := s.households.GetByID(ctx, in.HouseholdID)
		if err != nil {
			if errors.Is(err, householdstore.ErrNotFound) {
				return RecordResult{}, ErrHouseholdNotFound
			}
			return RecordResult{}, fmt.Errorf("load household: %w", err)
		}
		in.ResidentName = h.ResidentName
	}

	payment := EffectivePaymentStatus(in.PaymentMode, in.PaymentStatus)
	err := s.households.SetCollectionOutcome(ctx, in.HouseholdID, householdstore.Outcome{
		CollectionStatus: in.Status,
		PaymentStatus:    payment,
		PaymentMode:      in.PaymentMode,
		Day:              today,
	})
	if err != nil {
		if errors.Is(err, householdstore.ErrNotFound) {
			return RecordResult{}, ErrHouseholdNotFound
		}
		return RecordResult{}, fmt.Errorf("update household: %w", err)
	}

	l, created, err := s.logs.UpsertForDay(ctx,
		collectionlogstore.Key{HouseholdID: in.HouseholdID, Day: today},
		collectionlogstore.Fields{
			CollectorID:   in.CollectorID,
			CollectorName: in.CollectorName,
			Status:        in.Status,
			Amount:        in.Amount,
			PaymentMode:   in.PaymentMode,
			ResidentName:  in.ResidentName,
			Location:      in.Location,
		})
	if err != nil {
		return RecordResult{}, fmt.Errorf("write collection log: %w", err)
	}

	res := RecordResult{Log: l, PaymentStatus: payment, Created: created}
	if in.Status == models.CollectionCollected && in.CollectorID != models.SystemCollector {
		res.Counted = s.credit(ctx, l, today)
	}
	return res, nil
}

// credit flips the log's counted flag and, if this call flipped it, bumps
// the collector's totals. Failures are logged, not returned.
func (s *Service) credit(ctx context.Context, l models.CollectionLog, today civil.Date) bool {
	flipped, err := s.logs.MarkCounted(ctx, l.ID)
	if err != nil {
		s.log.Error("mark log counted", zap.String("log_id", l.ID.Hex()), zap.Error(err))
		return false
	}
	if !flipped {
		return false
	}

	collectorID, err := primitive.ObjectIDFromHex(l.CollectorID)
	if err != nil {
		s.log.Warn("collector id is not an object id; total not incremented",
			zap.String("collector_id", l.CollectorID))
		return true
	}
	if err := s.collectors.IncrementCollections(ctx, collectorID, 1); err != nil {
		s.log.Error("increment collector total",
			zap.String("collector_id", l.CollectorID), zap.Error(err))
	}
	if _, err := s.routes.IncrementCollected(ctx, collectorID, today); err != nil {
		s.log.Error("increment route progress",
			zap.String("collector_id", l.CollectorID), zap.Error(err))
	}
	return true
}

// PayOnline records a resident's online payment for today. It does not
// credit any collector and does not change the displayed collection
// status. When a collector already logged a visit today, the log keeps
// that collector.
func (s *Service) PayOnline(ctx context.Context, householdID primitive.ObjectID, residentName string, amount decimal.Decimal) (models.CollectionLog, error) {
	if amount.IsNegative() {
		return models.CollectionLog{}, ErrInvalidAmount
	}
	today := s.cal.Today()

	if err := s.households.MarkPaidOnline(ctx, householdID, today); err != nil {
		if errors.Is(err, householdstore.ErrNotFound) {
			return models.CollectionLog{}, ErrHouseholdNotFound
		}
		return models.CollectionLog{}, fmt.Errorf("mark paid: %w", err)
	}

	l, _, err := s.logs.UpsertForDay(ctx,
		collectionlogstore.Key{HouseholdID: householdID, Day: today},
		collectionlogstore.Fields{
			CollectorID:   models.SystemCollector,
			CollectorName: models.SystemCollectorName,
			Status:        models.LogPaid,
			Amount:        amount,
			PaymentMode:   models.PaymentModeOnline,
			PaymentRef:    uuid.NewString(),
			ResidentName:  residentName,
			Location:      models.OnlineGateway,
			KeepCollector: true,
		})
	if err != nil {
		return models.CollectionLog{}, fmt.Errorf("write payment log: %w", err)
	}
	s.log.Info("online payment recorded",
		zap.String("household_id", householdID.Hex()),
		zap.String("payment_ref", l.PaymentRef),
		zap.String("amount", amount.String()))
	return l, nil
}
