// internal/app/system/viewdata/viewdata.go
//
// Package viewdata holds the JSON view models the handlers return. Models
// that carry day-scoped statuses are projected onto the service day here,
// so every read path shows the same thing.
package viewdata

import (
	"cloud.google.com/go/civil"
	"github.com/dalemusser/greenlink/internal/app/system/reconcile"
	"github.com/dalemusser/greenlink/internal/domain/models"
	"github.com/shopspring/decimal"
)

// Household is a household as shown to clients.
type Household struct {
	ID                 string          `json:"id"`
	ResidentName       string          `json:"resident_name"`
	Address            string          `json:"address"`
	Ward               int             `json:"ward"`
	Phone              string          `json:"phone"`
	MonthlyFee         decimal.Decimal `json:"monthly_fee"`
	PaymentStatus      string          `json:"payment_status"`
	CollectionStatus   string          `json:"collection_status"`
	LastCollectionDate string          `json:"last_collection_date"` // YYYY-MM-DD or "none"
	AssignedCollector  string          `json:"assigned_collector"`
	PaymentMode        string          `json:"payment_mode"`
	Lat                *float64        `json:"lat,omitempty"`
	Lng                *float64        `json:"lng,omitempty"`
	WetWaste           *float64        `json:"wet_waste,omitempty"`
	DryWaste           *float64        `json:"dry_waste,omitempty"`
	RejectWaste        *float64        `json:"reject_waste,omitempty"`
}

// HouseholdFor projects h onto today.
func HouseholdFor(h models.Household, today civil.Date) Household {
	h = reconcile.Apply(h, today)
	return Household{
		ID:                 h.ID.Hex(),
		ResidentName:       h.ResidentName,
		Address:            h.Address,
		Ward:               h.Ward,
		Phone:              h.Phone,
		MonthlyFee:         h.MonthlyFee,
		PaymentStatus:      h.PaymentStatus,
		CollectionStatus:   h.CollectionStatus,
		LastCollectionDate: h.LastCollectionLabel(),
		AssignedCollector:  h.AssignedCollector,
		PaymentMode:        h.PaymentMode,
		Lat:                h.Lat,
		Lng:                h.Lng,
		WetWaste:           h.WetWaste,
		DryWaste:           h.DryWaste,
		RejectWaste:        h.RejectWaste,
	}
}

// Households projects every household onto today. The result is never nil.
func Households(hs []models.Household, today civil.Date) []Household {
	out := make([]Household, 0, len(hs))
	for _, h := range hs {
		out = append(out, HouseholdFor(h, today))
	}
	return out
}

// List wraps a page of results.
type List[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Limit  int64 `json:"limit,omitempty"`
	Offset int64 `json:"offset,omitempty"`
}
