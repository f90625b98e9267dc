// internal/domain/models/household.go
package models

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Household is a residence on a collection round.
//
// NOTE:
//   - CollectionStatus and PaymentStatus describe LastCollectionDate only.
//     Readers must project them through reconcile before showing them.
//   - A zero LastCollectionDate means the household was never collected and
//     is stored as "none".
type Household struct {
	ID             primitive.ObjectID `bson:"_id" json:"id"`
	ResidentName   string             `bson:"resident_name" json:"resident_name"`
	ResidentNameCI string             `bson:"resident_name_ci" json:"-"`
	Address        string             `bson:"address" json:"address"`
	Ward           int                `bson:"ward" json:"ward"`
	Phone          string             `bson:"phone" json:"phone"`
	MonthlyFee     decimal.Decimal    `bson:"monthly_fee" json:"monthly_fee"`

	PaymentStatus      string     `bson:"payment_status" json:"payment_status"`
	CollectionStatus   string     `bson:"collection_status" json:"collection_status"`
	LastCollectionDate civil.Date `bson:"last_collection_date" json:"-"`
	AssignedCollector  string     `bson:"assigned_collector" json:"assigned_collector"`
	PaymentMode        string     `bson:"payment_mode" json:"payment_mode"`

	Lat *float64 `bson:"lat,omitempty" json:"lat,omitempty"`
	Lng *float64 `bson:"lng,omitempty" json:"lng,omitempty"`

	// Waste weights in kg from the last survey.
	WetWaste    *float64 `bson:"wet_waste,omitempty" json:"wet_waste,omitempty"`
	DryWaste    *float64 `bson:"dry_waste,omitempty" json:"dry_waste,omitempty"`
	RejectWaste *float64 `bson:"reject_waste,omitempty" json:"reject_waste,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// LastCollectionLabel returns the stored day as YYYY-MM-DD, or "none".
func (h Household) LastCollectionLabel() string {
	if h.LastCollectionDate.IsZero() {
		return "none"
	}
	return h.LastCollectionDate.String()
}
