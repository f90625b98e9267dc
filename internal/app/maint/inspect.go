package maint

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/greenlink/internal/app/system/collections"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CheckLogs prints the number of collection logs and the three latest.
func (t *Tool) CheckLogs(ctx context.Context) error {
	total, err := t.logs.Count(ctx)
	if err != nil {
		return fmt.Errorf("count logs: %w", err)
	}
	t.printf("Checking logs in collection: %s\n", collections.Logs())
	t.printf("Total logs found: %d\n", total)
	if total == 0 {
		t.printf("No logs found in the database.\n")
		return nil
	}

	recent, err := t.logs.ListRecent(ctx, 3)
	if err != nil {
		return fmt.Errorf("list logs: %w", err)
	}
	t.printf("Latest %d logs:\n", len(recent))
	for _, l := range recent {
		t.printf("- Resident: %s, Day: %s, Timestamp: %q, Status: %s\n",
			l.ResidentName, l.Day, l.Timestamp.In(t.Cal.Location()).Format("2006-01-02 03:04 PM"), l.Status)
	}
	return nil
}

// DebugCollections prints, for every collection the app owns, its
// document count and one sample document as extended JSON.
func (t *Tool) DebugCollections(ctx context.Context) error {
	t.printf("Collections in database %s:\n", t.DB.Name())
	for _, name := range collections.All() {
		coll := t.DB.Collection(name)
		n, err := coll.CountDocuments(ctx, bson.M{})
		if err != nil {
			return fmt.Errorf("count %s: %w", name, err)
		}
		t.printf("\n- %s: %d documents\n", name, n)

		raw, err := coll.FindOne(ctx, bson.M{}).Raw()
		if errors.Is(err, mongo.ErrNoDocuments) {
			continue
		}
		if err != nil {
			return fmt.Errorf("sample %s: %w", name, err)
		}
		js, err := bson.MarshalExtJSONIndent(raw, false, false, "  ", "  ")
		if err != nil {
			return fmt.Errorf("encode %s sample: %w", name, err)
		}
		t.printf("  %s\n", js)
	}

	n := collections.Current()
	t.printf("\nEnvironment:\n")
	t.printf("GREENLINK_COLLECTION_HOUSEHOLDS=%s\n", n.Households)
	t.printf("GREENLINK_COLLECTION_COLLECTORS=%s\n", n.Collectors)
	t.printf("GREENLINK_COLLECTION_ROUTES=%s\n", n.Routes)
	t.printf("GREENLINK_COLLECTION_LOGS=%s\n", n.Logs)
	return nil
}
