package routestore_test

import (
	"errors"
	"testing"

	"cloud.google.com/go/civil"
	routestore "github.com/dalemusser/greenlink/internal/app/store/routes"
	"github.com/dalemusser/greenlink/internal/domain/models"
	"github.com/dalemusser/greenlink/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var today = civil.Date{Year: 2026, Month: 10, Day: 15}

func TestStore_Create_OneActivePerWardDay(t *testing.T) {
	db := testutil.SetupTestDBWithSchema(t)
	fixtures := testutil.NewFixtures(t, db)
	store := routestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c1 := fixtures.CreateCollector(ctx, "Rajesh", "9000000001", 3)
	c2 := fixtures.CreateCollector(ctx, "Priya", "9000000002", 3)

	route := func(c models.Collector) models.Route {
		return models.Route{
			Name: models.RouteName(c.Name, today), CollectorID: c.ID, CollectorName: c.Name,
			Ward: 3, StartTime: models.RouteStartTime(today), Day: today,
		}
	}

	first, err := store.Create(ctx, route(c1))
	if err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	if first.Status != models.RouteActive {
		t.Errorf("Status: got %q, want active", first.Status)
	}

	if _, err := store.Create(ctx, route(c2)); !errors.Is(err, routestore.ErrWardAlreadyAssigned) {
		t.Errorf("second Create: got %v, want ErrWardAlreadyAssigned", err)
	}

	// The next day is a different key.
	next := route(c2)
	next.Day = today.AddDays(1)
	if _, err := store.Create(ctx, next); err != nil {
		t.Errorf("next day: unexpected error: %v", err)
	}
}

func TestStore_FirstForCollectorOnDay(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := routestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c := fixtures.CreateCollector(ctx, "Rajesh", "9000000001", 1, 2)
	first := fixtures.CreateRoute(ctx, c, 2, today, models.RouteActive)
	fixtures.CreateRoute(ctx, c, 1, today, models.RouteActive)

	got, err := store.FirstForCollectorOnDay(ctx, c.ID, today)
	if err != nil {
		t.Fatalf("FirstForCollectorOnDay failed: %v", err)
	}
	if got == nil || got.ID != first.ID {
		t.Errorf("got %+v, want route %s", got, first.ID.Hex())
	}

	none, err := store.FirstForCollectorOnDay(ctx, c.ID, today.AddDays(1))
	if err != nil {
		t.Fatalf("FirstForCollectorOnDay failed: %v", err)
	}
	if none != nil {
		t.Errorf("expected nil for a day without routes, got %+v", none)
	}
}

func TestStore_ActiveForWard(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := routestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c := fixtures.CreateCollector(ctx, "Rajesh", "9000000001", 4)
	fixtures.CreateRoute(ctx, c, 4, today, models.RouteCompleted)

	got, err := store.ActiveForWard(ctx, 4, today)
	if err != nil {
		t.Fatalf("ActiveForWard failed: %v", err)
	}
	if got != nil {
		t.Errorf("completed route should not count, got %+v", got)
	}

	active := fixtures.CreateRoute(ctx, c, 4, today, models.RouteActive)
	got, _ = store.ActiveForWard(ctx, 4, today)
	if got == nil || got.ID != active.ID {
		t.Errorf("got %+v, want route %s", got, active.ID.Hex())
	}
}

func TestStore_IncrementCollected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := routestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c := fixtures.CreateCollector(ctx, "Rajesh", "9000000001", 1)
	r := fixtures.CreateRoute(ctx, c, 1, today, models.RouteActive)

	ok, err := store.IncrementCollected(ctx, c.ID, today)
	if err != nil || !ok {
		t.Fatalf("IncrementCollected: ok=%v err=%v", ok, err)
	}
	got, _ := store.GetByID(ctx, r.ID)
	if got.CollectedHouses != 1 {
		t.Errorf("CollectedHouses: got %d, want 1", got.CollectedHouses)
	}

	ok, err = store.IncrementCollected(ctx, primitive.NewObjectID(), today)
	if err != nil || ok {
		t.Errorf("unknown collector: ok=%v err=%v, want false/nil", ok, err)
	}
}

func TestStore_CompleteBefore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := routestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c := fixtures.CreateCollector(ctx, "Rajesh", "9000000001", 1)
	old := fixtures.CreateRoute(ctx, c, 1, today.AddDays(-2), models.RouteActive)
	yesterday := fixtures.CreateRoute(ctx, c, 2, today.AddDays(-1), models.RouteActive)
	current := fixtures.CreateRoute(ctx, c, 1, today, models.RouteActive)

	n, err := store.CompleteBefore(ctx, today)
	if err != nil {
		t.Fatalf("CompleteBefore failed: %v", err)
	}
	if n != 2 {
		t.Errorf("completed: got %d, want 2", n)
	}
	if got, _ := store.GetByID(ctx, old.ID); got.Status != models.RouteCompleted || got.EndTime != "2026-10-13 11:59 PM" {
		t.Errorf("old route: got (%q, %q)", got.Status, got.EndTime)
	}
	if got, _ := store.GetByID(ctx, yesterday.ID); got.EndTime != models.RouteEndTime(today.AddDays(-1)) {
		t.Errorf("yesterday's route end time: got %q", got.EndTime)
	}
	if got, _ := store.GetByID(ctx, current.ID); got.Status != models.RouteActive {
		t.Errorf("current route: got %q, want active", got.Status)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := routestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c := fixtures.CreateCollector(ctx, "Rajesh", "9000000001", 1)
	r := fixtures.CreateRoute(ctx, c, 1, today, models.RouteActive)

	if err := store.Delete(ctx, r.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(ctx, r.ID); !errors.Is(err, routestore.ErrNotFound) {
		t.Errorf("second Delete: got %v, want ErrNotFound", err)
	}
	routes, _ := store.ListByDay(ctx, today)
	if len(routes) != 0 {
		t.Errorf("ListByDay after delete: got %d routes", len(routes))
	}
}
