package maint

import (
	"context"
	"fmt"
	"strings"

	"github.com/dalemusser/greenlink/internal/app/system/collections"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// dedupeBatch is how many documents RemoveDuplicates reads per query.
const dedupeBatch = 100

// DedupeRule names the fields that identify a document. Documents with
// the same key as an earlier one (in _id order) are duplicates.
type DedupeRule struct {
	Label      string
	Collection string
	Fields     []string
}

// DedupeRules returns the rule for each collection, using the configured
// collection names.
func DedupeRules() []DedupeRule {
	return []DedupeRule{
		{"collectors", collections.Collectors(), []string{"phone"}},
		{"households", collections.Households(), []string{"resident_name", "address"}},
		{"routes", collections.Routes(), []string{"collector_id", "name"}},
		{"collection logs", collections.Logs(), []string{"household_id", "day", "status"}},
	}
}

// Key joins the rule's field values with "|". A missing field counts as
// an empty value.
func (r DedupeRule) Key(doc bson.M) string {
	parts := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		if v, ok := doc[f]; ok && v != nil {
			parts[i] = fmt.Sprint(v)
		}
	}
	return strings.Join(parts, "|")
}

// RemoveDuplicates keeps the first document of each key in every
// collection and deletes the rest. A failed delete is logged and the scan
// continues. It returns the number deleted per collection label.
func (t *Tool) RemoveDuplicates(ctx context.Context) (map[string]int, error) {
	out := map[string]int{}
	for _, rule := range DedupeRules() {
		n, err := t.dedupe(ctx, rule)
		if err != nil {
			t.Log.Error("duplicate cleanup failed", zap.String("collection", rule.Label), zap.Error(err))
			continue
		}
		out[rule.Label] = n
		t.printf("Removed %d duplicates from %s.\n", n, rule.Label)
	}
	return out, nil
}

func (t *Tool) dedupe(ctx context.Context, rule DedupeRule) (int, error) {
	coll := t.DB.Collection(rule.Collection)
	total, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	bar := t.newBar(total, "Scanning "+rule.Label)

	projection := bson.M{"_id": 1}
	for _, f := range rule.Fields {
		projection[f] = 1
	}

	seen := map[string]struct{}{}
	deleted := 0
	var after any
	for {
		filter := bson.M{}
		if after != nil {
			filter["_id"] = bson.M{"$gt": after}
		}
		opts := options.Find().
			SetSort(bson.D{{Key: "_id", Value: 1}}).
			SetLimit(dedupeBatch).
			SetProjection(projection)
		cur, err := coll.Find(ctx, filter, opts)
		if err != nil {
			return deleted, err
		}
		var batch []bson.M
		if err := cur.All(ctx, &batch); err != nil {
			return deleted, err
		}

		for _, doc := range batch {
			_ = bar.Add(1)
			key := rule.Key(doc)
			if _, dup := seen[key]; !dup {
				seen[key] = struct{}{}
				continue
			}
			if _, err := coll.DeleteOne(ctx, bson.M{"_id": doc["_id"]}); err != nil {
				t.Log.Warn("delete duplicate failed",
					zap.String("collection", rule.Label),
					zap.Any("id", doc["_id"]),
					zap.Error(err))
				continue
			}
			deleted++
		}

		if len(batch) < dedupeBatch {
			break
		}
		after = batch[len(batch)-1]["_id"]
	}
	_ = bar.Finish()
	return deleted, nil
}
