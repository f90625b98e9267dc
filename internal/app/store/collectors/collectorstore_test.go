package collectorstore_test

import (
	"errors"
	"testing"

	collectorstore "github.com/dalemusser/greenlink/internal/app/store/collectors"
	"github.com/dalemusser/greenlink/internal/domain/models"
	"github.com/dalemusser/greenlink/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDBWithSchema(t)
	store := collectorstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c, err := store.Create(ctx, models.Collector{
		Name:             "rajesh Kumar",
		Phone:            "9847000001",
		Wards:            []int{1, 2},
		TotalCollections: 42,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if c.Avatar != "RA" {
		t.Errorf("Avatar: got %q, want RA", c.Avatar)
	}
	if c.Status != models.CollectorActive {
		t.Errorf("Status: got %q, want active", c.Status)
	}
	if c.TotalCollections != 0 {
		t.Errorf("TotalCollections: got %d, want 0", c.TotalCollections)
	}

	_, err = store.Create(ctx, models.Collector{Name: "Other", Phone: "9847000001"})
	if !errors.Is(err, collectorstore.ErrDuplicatePhone) {
		t.Errorf("duplicate phone: got %v, want ErrDuplicatePhone", err)
	}
}

func TestStore_ListCoveringWard(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := collectorstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateCollector(ctx, "Rajesh", "9000000001", 1, 2)
	fixtures.CreateCollector(ctx, "Priya", "9000000002", 2, 3)
	fixtures.CreateCollector(ctx, "Suresh", "9000000003", 4)
	inactive := fixtures.CreateCollector(ctx, "Anil", "9000000004", 2)
	status := models.CollectorInactive
	if _, err := store.Update(ctx, inactive.ID, collectorstore.Update{Status: &status}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.ListCoveringWard(ctx, 2)
	if err != nil {
		t.Fatalf("ListCoveringWard failed: %v", err)
	}
	want := []string{"Priya", "Rajesh"}
	if len(got) != len(want) {
		t.Fatalf("len: got %d, want %d", len(got), len(want))
	}
	for i, c := range got {
		if c.Name != want[i] {
			t.Errorf("[%d]: got %q, want %q", i, c.Name, want[i])
		}
	}
}

func TestStore_Counters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := collectorstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c := fixtures.CreateCollector(ctx, "Rajesh", "9000000001", 1)

	for i := 0; i < 3; i++ {
		if err := store.IncrementCollections(ctx, c.ID, 1); err != nil {
			t.Fatalf("IncrementCollections failed: %v", err)
		}
	}
	got, _ := store.GetByID(ctx, c.ID)
	if got.TotalCollections != 3 {
		t.Errorf("after increments: got %d, want 3", got.TotalCollections)
	}

	if err := store.SetTotalCollections(ctx, c.ID, 10); err != nil {
		t.Fatalf("SetTotalCollections failed: %v", err)
	}
	got, _ = store.GetByID(ctx, c.ID)
	if got.TotalCollections != 10 {
		t.Errorf("after set: got %d, want 10", got.TotalCollections)
	}

	if err := store.IncrementCollections(ctx, primitive.NewObjectID(), 1); !errors.Is(err, collectorstore.ErrNotFound) {
		t.Errorf("missing collector: got %v, want ErrNotFound", err)
	}
}

func TestStore_UpdateAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := collectorstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c := fixtures.CreateCollector(ctx, "Rajesh", "9000000001", 1)
	name := "Meera Das"

	got, err := store.Update(ctx, c.ID, collectorstore.Update{Name: &name, Wards: []int{5, 6}})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got.Avatar != "ME" || got.NameCI != "meera das" {
		t.Errorf("derived fields: got (%q, %q)", got.Avatar, got.NameCI)
	}
	if len(got.Wards) != 2 || got.Wards[0] != 5 {
		t.Errorf("Wards: got %v", got.Wards)
	}

	if err := store.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.GetByID(ctx, c.ID); !errors.Is(err, collectorstore.ErrNotFound) {
		t.Errorf("after delete: got %v, want ErrNotFound", err)
	}
}
