package userstore

import (
	"context"

	"github.com/dalemusser/greenlink/internal/app/system/auth"
	"github.com/dalemusser/greenlink/internal/app/system/collections"
	"github.com/dalemusser/greenlink/internal/app/system/normalize"
	"github.com/dalemusser/greenlink/internal/app/system/timeouts"
	"github.com/dalemusser/greenlink/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fetcher implements auth.UserFetcher to load fresh user data on each request.
// Staff sessions are backed by the users collection; resident sessions by
// the household they signed in as.
type Fetcher struct {
	db *mongo.Database
}

// NewFetcher creates a UserFetcher that queries the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{db: db}
}

// FetchUser returns nil if the user is not found, disabled, or if any
// error occurs.
func (f *Fetcher) FetchUser(ctx context.Context, userID, role string) *auth.SessionUser {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	if normalize.Role(role) == models.RoleHousehold {
		return f.fetchHousehold(ctx, oid)
	}

	var u models.User
	proj := options.FindOne().SetProjection(bson.M{
		"_id":       1,
		"full_name": 1,
		"email":     1,
		"role":      1,
		"status":    1,
	})
	// Collection name is resolved per call so tests can reconfigure it.
	if err := f.db.Collection(collections.Users).FindOne(ctx, bson.M{"_id": oid}, proj).Decode(&u); err != nil {
		return nil
	}
	if normalize.Status(u.Status) == models.AccountDisabled {
		return nil
	}
	// A stale cookie must not carry a role the account no longer has.
	if normalize.Role(u.Role) != normalize.Role(role) {
		return nil
	}

	return &auth.SessionUser{
		ID:      u.ID.Hex(),
		Name:    u.FullName,
		LoginID: u.Email,
		Role:    normalize.Role(u.Role),
	}
}

func (f *Fetcher) fetchHousehold(ctx context.Context, id primitive.ObjectID) *auth.SessionUser {
	var h models.Household
	proj := options.FindOne().SetProjection(bson.M{"_id": 1, "resident_name": 1, "phone": 1})
	if err := f.db.Collection(collections.Households()).FindOne(ctx, bson.M{"_id": id}, proj).Decode(&h); err != nil {
		return nil
	}
	return &auth.SessionUser{
		ID:      h.ID.Hex(),
		Name:    h.ResidentName,
		LoginID: h.Phone,
		Role:    models.RoleHousehold,
	}
}
