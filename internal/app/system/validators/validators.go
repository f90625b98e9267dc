// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/greenlink/internal/app/system/collections"
	"github.com/dalemusser/greenlink/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates the app's collections (if missing) and attaches
// JSON-Schema validators at the "moderate" level, so documents written
// before a schema change are not rejected on unrelated updates. Servers
// without collMod/validator support are logged and skipped.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	names := collections.Current()
	ensure(collections.Users, usersSchema())
	ensure(names.Households, householdsSchema())
	ensure(names.Collectors, collectorsSchema())
	ensure(names.Routes, routesSchema())
	ensure(names.Logs, logsSchema())
	ensure(collections.AuditEvents, nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var (
	nonBlank  = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}
	intType   = bson.M{"bsonType": bson.A{"int", "long"}}
	moneyType = bson.M{"bsonType": bson.A{"decimal", "double", "int", "long"}}
	dayType   = bson.M{"bsonType": "string", "pattern": `^(none|\d{4}-\d{2}-\d{2})$`}
)

func enum(values []string) bson.M {
	a := make(bson.A, len(values))
	for i, v := range values {
		a[i] = v
	}
	return bson.M{"enum": a}
}

func schema(required []string, props bson.M) bson.M {
	req := make(bson.A, len(required))
	for i, r := range required {
		req[i] = r
	}
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType":   "object",
			"required":   req,
			"properties": props,
		},
	}
}

func usersSchema() bson.M {
	return schema(
		[]string{"full_name", "email", "email_ci", "password_hash", "role", "status"},
		bson.M{
			"full_name":     nonBlank,
			"email":         nonBlank,
			"email_ci":      nonBlank,
			"password_hash": nonBlank,
			"role":          enum([]string{models.RoleAdmin, models.RoleCollector}),
			"status":        enum([]string{models.AccountActive, models.AccountDisabled}),
		},
	)
}

func householdsSchema() bson.M {
	return schema(
		[]string{"resident_name", "address", "ward", "phone", "payment_status", "collection_status", "assigned_collector", "payment_mode"},
		bson.M{
			"resident_name":        nonBlank,
			"address":              nonBlank,
			"ward":                 bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1},
			"phone":                nonBlank,
			"monthly_fee":          moneyType,
			"payment_status":       enum(models.PaymentStatuses),
			"collection_status":    enum(models.CollectionStatuses),
			"last_collection_date": dayType,
			"assigned_collector":   nonBlank,
			"payment_mode":         enum(models.PaymentModes),
		},
	)
}

func collectorsSchema() bson.M {
	return schema(
		[]string{"name", "phone", "wards", "status", "total_collections"},
		bson.M{
			"name":              nonBlank,
			"phone":             nonBlank,
			"wards":             bson.M{"bsonType": "array", "items": intType},
			"status":            enum([]string{models.CollectorActive, models.CollectorInactive}),
			"total_collections": bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
		},
	)
}

func routesSchema() bson.M {
	return schema(
		[]string{"name", "collector_id", "ward", "status", "day"},
		bson.M{
			"name":             nonBlank,
			"collector_id":     bson.M{"bsonType": "objectId"},
			"ward":             intType,
			"status":           enum([]string{models.RouteActive, models.RouteCompleted}),
			"total_houses":     intType,
			"collected_houses": intType,
			"day":              dayType,
		},
	)
}

func logsSchema() bson.M {
	return schema(
		[]string{"collector_id", "household_id", "day", "status", "payment_mode"},
		bson.M{
			"collector_id":     nonBlank,
			"household_id":     bson.M{"bsonType": "objectId"},
			"day":              dayType,
			"status":           enum(models.LogStatuses),
			"amount_collected": moneyType,
			"payment_mode":     enum(models.PaymentModes),
			"counted":          bson.M{"bsonType": "bool"},
		},
	)
}
