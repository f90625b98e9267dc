// Package reconcile projects stored household statuses onto a given day.
//
// A household's collection and payment statuses describe the day of its last
// collection event. Once that day has passed both read as pending. Nothing
// is written back; the decay happens on every read.
package reconcile

import (
	"cloud.google.com/go/civil"
	"github.com/dalemusser/greenlink/internal/domain/models"
)

// DisplayStatus returns the collection and payment status to show for h on
// today. Stored values are returned only when h was last collected today.
func DisplayStatus(h models.Household, today civil.Date) (collection, payment string) {
	if h.LastCollectionDate.IsZero() || h.LastCollectionDate != today {
		return models.CollectionPending, models.PaymentPending
	}
	return h.CollectionStatus, h.PaymentStatus
}

// Apply returns a copy of h with its statuses projected onto today.
func Apply(h models.Household, today civil.Date) models.Household {
	h.CollectionStatus, h.PaymentStatus = DisplayStatus(h, today)
	return h
}

// ApplyAll projects every household in hs onto today, in place, and
// returns hs.
func ApplyAll(hs []models.Household, today civil.Date) []models.Household {
	for i := range hs {
		hs[i] = Apply(hs[i], today)
	}
	return hs
}

// Covered reports whether h counts as served on today: collected, or paid.
func Covered(h models.Household, today civil.Date) bool {
	c, p := DisplayStatus(h, today)
	return c == models.CollectionCollected || p == models.PaymentPaid
}

// Missed reports whether h still needs a visit on today.
func Missed(h models.Household, today civil.Date) bool {
	c, _ := DisplayStatus(h, today)
	return c == models.CollectionPending || c == models.CollectionNotAvailable
}
