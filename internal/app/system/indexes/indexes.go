// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/greenlink/internal/app/system/collections"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// RouteWardDayUnique is the partial unique index that allows at most one
// active route per (ward, day).
const RouteWardDayUnique = "uniq_routes_ward_day_active"

// LogHouseholdDayUnique keeps one collection log per household per day.
const LogHouseholdDayUnique = "uniq_logs_household_day"

// Set is the desired index list for one collection.
type Set struct {
	Collection string
	Models     []mongo.IndexModel
}

/*
EnsureAll is called at startup and by the maintenance CLI. Each set is
reconciled idempotently. Errors are aggregated so every problem is visible
and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string
	for _, s := range Desired() {
		if err := ensureIndexSet(ctx, db.Collection(s.Collection), s.Models); err != nil {
			problems = append(problems, s.Collection+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// Desired returns the index sets for every collection, using the
// configured collection names.
func Desired() []Set {
	names := collections.Current()
	return []Set{
		{collections.Users, usersIndexes()},
		{names.Households, householdsIndexes()},
		{names.Collectors, collectorsIndexes()},
		{names.Routes, routesIndexes()},
		{names.Logs, logsIndexes()},
		{collections.AuditEvents, auditIndexes()},
	}
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name    string `bson:"name"`
	Key     bson.D `bson:"key"`
	Unique  *bool  `bson:"unique,omitempty"`
	Partial bson.D `bson:"partialFilterExpression,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func filterSig(f any) string {
	if f == nil {
		return ""
	}
	switch v := f.(type) {
	case bson.D:
		return keySig(v)
	case bson.M:
		d := make(bson.D, 0, len(v))
		for k, val := range v {
			d = append(d, bson.E{Key: k, Value: val})
		}
		return keySig(d)
	}
	return fmt.Sprintf("%v", f)
}

func sameBoolPtr(a, b *bool) bool {
	return (a != nil && *a) == (b != nil && *b)
}

func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// IndexOptionsConflict comes back when the same keys exist under a
// different name or with different options.
func isOptionsConflictErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "IndexOptionsConflict")
}

func listExisting(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	existing := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return existing
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		var desiredName string
		var desiredUnique *bool
		var desiredPartial any
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			desiredUnique = m.Options.Unique
			desiredPartial = m.Options.PartialFilterExpression
		}
		desiredSig := keySig(m.Keys.(bson.D))
		unique := desiredUnique != nil && *desiredUnique
		start := time.Now()

		fields := func(extra ...zap.Field) []zap.Field {
			return append([]zap.Field{
				zap.String("collection", coll.Name()),
				zap.String("name", desiredName),
				zap.String("keys", desiredSig),
				zap.Bool("unique", unique),
			}, extra...)
		}

		create := func() error {
			if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
				if isDuplicateKeyErr(err) && unique {
					return fmt.Errorf("%s(%s): cannot create unique index (duplicates present); run greenlink-maint remove-duplicates", coll.Name(), desiredName)
				}
				return fmt.Errorf("%s(%s): %v", coll.Name(), desiredName, err)
			}
			return nil
		}

		replace := func(old string, reason string) {
			zap.L().Info("replacing index", fields(zap.String("from", old), zap.String("reason", reason))...)
			if _, err := coll.Indexes().DropOne(ctx, old); err != nil {
				zap.L().Warn("drop existing index failed", fields(zap.Error(err))...)
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				return
			}
			if err := create(); err != nil {
				errs = append(errs, err.Error())
				return
			}
			zap.L().Info("index dropped and recreated", fields(zap.Duration("took", time.Since(start)))...)
		}

		reconcile := func(ex existingIndex) {
			switch {
			case !sameBoolPtr(desiredUnique, ex.Unique):
				replace(ex.Name, "unique mismatch")
			case filterSig(desiredPartial) != filterSig(ex.Partial):
				replace(ex.Name, "partial filter mismatch")
			case desiredName != "" && ex.Name != desiredName:
				replace(ex.Name, "name mismatch")
			default:
				zap.L().Debug("reusing existing index", fields(zap.Duration("took", time.Since(start)))...)
			}
		}

		if ex, ok := listExisting(ctx, coll)[desiredSig]; ok {
			reconcile(ex)
			continue
		}

		err := create()
		if err == nil {
			zap.L().Info("index ensured", fields(zap.Duration("took", time.Since(start)))...)
			continue
		}
		if isOptionsConflictErr(err) {
			if ex, ok := listExisting(ctx, coll)[desiredSig]; ok {
				reconcile(ex)
				continue
			}
		}
		zap.L().Warn("index ensure failed", fields(zap.Error(err))...)
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Per-collection index sets                                                  */
/* -------------------------------------------------------------------------- */

func usersIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email_ci", Value: 1}},
			Options: options.Index().SetName("uniq_users_email_ci").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_users_role_status"),
		},
	}
}

func householdsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		// resident login and lookup by phone
		{
			Keys:    bson.D{{Key: "phone", Value: 1}},
			Options: options.Index().SetName("idx_households_phone"),
		},
		// collector view, sorted by resident
		{
			Keys:    bson.D{{Key: "ward", Value: 1}, {Key: "resident_name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_households_ward_name_id"),
		},
		{
			Keys:    bson.D{{Key: "assigned_collector", Value: 1}},
			Options: options.Index().SetName("idx_households_assigned_collector"),
		},
	}
}

func collectorsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "phone", Value: 1}},
			Options: options.Index().SetName("uniq_collectors_phone").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "wards", Value: 1}},
			Options: options.Index().SetName("idx_collectors_wards"),
		},
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_collectors_nameci_id"),
		},
	}
}

func routesIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "ward", Value: 1}, {Key: "day", Value: 1}},
			Options: options.Index().
				SetName(RouteWardDayUnique).
				SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: "status", Value: "active"}}),
		},
		// daily assignment: first route for a collector on a day
		{
			Keys:    bson.D{{Key: "collector_id", Value: 1}, {Key: "day", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("idx_routes_collector_day_created"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "day", Value: 1}},
			Options: options.Index().SetName("idx_routes_status_day"),
		},
	}
}

func logsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "household_id", Value: 1}, {Key: "day", Value: 1}},
			Options: options.Index().SetName(LogHouseholdDayUnique).SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_logs_timestamp_desc"),
		},
		// day summaries and revenue
		{
			Keys:    bson.D{{Key: "day", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_logs_day_status"),
		},
		{
			Keys:    bson.D{{Key: "collector_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_logs_collector_status"),
		},
	}
}

func auditIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "event_type", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_category_type_ts"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_user_ts"),
		},
		{
			Keys:    bson.D{{Key: "target_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_target_ts"),
		},
	}
}
