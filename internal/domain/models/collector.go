// internal/domain/models/collector.go
package models

import (
	"strings"
	"time"
	"unicode"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collector is a field worker covering one or more wards.
// The collector's ID is shared with its login account in the users collection.
type Collector struct {
	ID               primitive.ObjectID `bson:"_id" json:"id"`
	Name             string             `bson:"name" json:"name"`
	NameCI           string             `bson:"name_ci" json:"-"`
	Phone            string             `bson:"phone" json:"phone"`
	Email            string             `bson:"email" json:"email"`
	Wards            []int              `bson:"wards" json:"wards"`
	Status           string             `bson:"status" json:"status"` // active | inactive
	TotalCollections int64              `bson:"total_collections" json:"total_collections"`
	Avatar           string             `bson:"avatar" json:"avatar"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Covers reports whether the collector's wards include ward.
func (c Collector) Covers(ward int) bool {
	for _, w := range c.Wards {
		if w == ward {
			return true
		}
	}
	return false
}

// AvatarFor returns the first two letters of name, upper-cased.
func AvatarFor(name string) string {
	var b strings.Builder
	n := 0
	for _, r := range strings.TrimSpace(name) {
		if n == 2 {
			break
		}
		b.WriteRune(unicode.ToUpper(r))
		n++
	}
	return b.String()
}
