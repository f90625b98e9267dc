// internal/domain/models/collectionlog.go
package models

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CollectionLog records the outcome of one household on one day.
// (household_id, day) is unique.
type CollectionLog struct {
	ID              primitive.ObjectID `bson:"_id" json:"id"`
	CollectorID     string             `bson:"collector_id" json:"collector_id"` // hex id or SYSTEM
	CollectorName   string             `bson:"collector_name" json:"collector_name"`
	HouseholdID     primitive.ObjectID `bson:"household_id" json:"household_id"`
	ResidentName    string             `bson:"resident_name" json:"resident_name"`
	Day             civil.Date         `bson:"day" json:"day"`
	Timestamp       time.Time          `bson:"timestamp" json:"timestamp"`
	Location        string             `bson:"location" json:"location"`
	Status          string             `bson:"status" json:"status"`
	AmountCollected decimal.Decimal    `bson:"amount_collected" json:"amount_collected"`
	PaymentMode     string             `bson:"payment_mode" json:"payment_mode"`
	PaymentRef      string             `bson:"payment_ref,omitempty" json:"payment_ref,omitempty"`

	// Counted is set once the collector's total has been credited for this log.
	Counted bool `bson:"counted" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
