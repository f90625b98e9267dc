// internal/app/features/households/types.go
package households

import "github.com/shopspring/decimal"

// Default map position for households registered without coordinates.
const (
	DefaultLat = 10.85
	DefaultLng = 76.27
)

type createRequest struct {
	ResidentName  string           `json:"resident_name" validate:"required,max=200" label:"Resident name"`
	Address       string           `json:"address" validate:"required,max=500" label:"Address"`
	Ward          int              `json:"ward" validate:"omitempty,ward" label:"Ward"`
	Phone         string           `json:"phone" validate:"required,phone" label:"Phone"`
	MonthlyFee    *decimal.Decimal `json:"monthly_fee"`
	Lat           *float64         `json:"lat" validate:"omitempty,gte=-90,lte=90" label:"Latitude"`
	Lng           *float64         `json:"lng" validate:"omitempty,gte=-180,lte=180" label:"Longitude"`
	WetWaste      *float64         `json:"wet_waste" validate:"omitempty,gte=0" label:"Wet waste"`
	DryWaste      *float64         `json:"dry_waste" validate:"omitempty,gte=0" label:"Dry waste"`
	RejectWaste   *float64         `json:"reject_waste" validate:"omitempty,gte=0" label:"Reject waste"`
	PaymentStatus string           `json:"payment_status" validate:"omitempty,paymentstatus" label:"Payment status"`
}

// editRequest fields left out of the body are not changed.
type editRequest struct {
	ResidentName  *string          `json:"resident_name" validate:"omitempty,max=200" label:"Resident name"`
	Address       *string          `json:"address" validate:"omitempty,max=500" label:"Address"`
	Ward          *int             `json:"ward" validate:"omitempty,ward" label:"Ward"`
	Phone         *string          `json:"phone" validate:"omitempty,phone" label:"Phone"`
	MonthlyFee    *decimal.Decimal `json:"monthly_fee"`
	Lat           *float64         `json:"lat" validate:"omitempty,gte=-90,lte=90" label:"Latitude"`
	Lng           *float64         `json:"lng" validate:"omitempty,gte=-180,lte=180" label:"Longitude"`
	WetWaste      *float64         `json:"wet_waste" validate:"omitempty,gte=0" label:"Wet waste"`
	DryWaste      *float64         `json:"dry_waste" validate:"omitempty,gte=0" label:"Dry waste"`
	RejectWaste   *float64         `json:"reject_waste" validate:"omitempty,gte=0" label:"Reject waste"`
	PaymentStatus *string          `json:"payment_status" validate:"omitempty,paymentstatus" label:"Payment status"`
}
