// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/greenlink/internal/app/system/auth"
	"github.com/dalemusser/greenlink/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role (lowercased), name, Mongo ObjectID, and a found flag.
// If no user is present in context or the user ID is malformed, it returns
// "visitor", "", NilObjectID, false, so ok=true always means a signed-in user
// with a valid ObjectID.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed id in the session: fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleAdmin
}

// IsCollector reports whether the current request's user is a collector.
func IsCollector(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleCollector
}

// IsHousehold reports whether the current request's user is a resident.
func IsHousehold(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleHousehold
}

// CollectorID returns the signed-in collector's id.
// ok is false for any other role.
func CollectorID(r *http.Request) (primitive.ObjectID, string, bool) {
	role, name, id, ok := UserCtx(r)
	if !ok || role != models.RoleCollector {
		return primitive.NilObjectID, "", false
	}
	return id, name, true
}

// HouseholdID returns the signed-in resident's household id.
// ok is false for any other role.
func HouseholdID(r *http.Request) (primitive.ObjectID, string, bool) {
	role, name, id, ok := UserCtx(r)
	if !ok || role != models.RoleHousehold {
		return primitive.NilObjectID, "", false
	}
	return id, name, true
}
