package assignments_test

import (
	"errors"
	"testing"

	"cloud.google.com/go/civil"
	householdstore "github.com/dalemusser/greenlink/internal/app/store/households"
	routestore "github.com/dalemusser/greenlink/internal/app/store/routes"
	"github.com/dalemusser/greenlink/internal/app/workflows/assignments"
	"github.com/dalemusser/greenlink/internal/domain/models"
	"github.com/dalemusser/greenlink/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var today = civil.Date{Year: 2026, Month: 10, Day: 15}

func TestAssignRoute(t *testing.T) {
	db := testutil.SetupTestDBWithSchema(t)
	fixtures := testutil.NewFixtures(t, db)
	svc := assignments.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c := fixtures.CreateCollector(ctx, "Rajesh Kumar", "9000000001", 3)
	var inWard []models.Household
	// More households than a default page, to show the update is not paged.
	for i := 0; i < 120; i++ {
		inWard = append(inWard, fixtures.CreateHousehold(ctx, "Resident", 3, "9100000000"))
	}
	other := fixtures.CreateHousehold(ctx, "Elsewhere", 4, "9200000000")

	r, err := svc.AssignRoute(ctx, c.ID, 3, today)
	if err != nil {
		t.Fatalf("AssignRoute failed: %v", err)
	}

	if r.Name != "Route - Rajesh Kumar - 2026-10-15" {
		t.Errorf("Name: got %q", r.Name)
	}
	if r.StartTime != "2026-10-15 08:00 AM" {
		t.Errorf("StartTime: got %q", r.StartTime)
	}
	if r.Status != models.RouteActive || r.TotalHouses != 120 || r.CollectedHouses != 0 {
		t.Errorf("route: status=%q total=%d collected=%d", r.Status, r.TotalHouses, r.CollectedHouses)
	}

	households := householdstore.New(db)
	for _, h := range inWard {
		got, _ := households.GetByID(ctx, h.ID)
		if got.AssignedCollector != c.ID.Hex() {
			t.Fatalf("household %s: got %q, want %s", h.ID.Hex(), got.AssignedCollector, c.ID.Hex())
		}
	}
	if got, _ := households.GetByID(ctx, other.ID); got.AssignedCollector != models.Unassigned {
		t.Errorf("other ward: got %q, want unassigned", got.AssignedCollector)
	}
}

func TestAssignRoute_SecondActiveRouteForWardConflicts(t *testing.T) {
	db := testutil.SetupTestDBWithSchema(t)
	fixtures := testutil.NewFixtures(t, db)
	svc := assignments.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c1 := fixtures.CreateCollector(ctx, "Rajesh", "9000000001", 3)
	c2 := fixtures.CreateCollector(ctx, "Priya", "9000000002", 3)
	h := fixtures.CreateHousehold(ctx, "Anitha", 3, "9847012345")

	if _, err := svc.AssignRoute(ctx, c1.ID, 3, today); err != nil {
		t.Fatalf("first AssignRoute failed: %v", err)
	}
	if _, err := svc.AssignRoute(ctx, c2.ID, 3, today); !errors.Is(err, assignments.ErrWardAlreadyAssigned) {
		t.Fatalf("second AssignRoute: got %v, want ErrWardAlreadyAssigned", err)
	}

	// Households still point at the first collector.
	got, _ := householdstore.New(db).GetByID(ctx, h.ID)
	if got.AssignedCollector != c1.ID.Hex() {
		t.Errorf("AssignedCollector: got %q, want %s", got.AssignedCollector, c1.ID.Hex())
	}

	// A completed route frees the ward.
	if _, err := svc.CompleteStaleRoutes(ctx, today.AddDays(1)); err != nil {
		t.Fatalf("CompleteStaleRoutes failed: %v", err)
	}
	if _, err := svc.AssignRoute(ctx, c2.ID, 3, today); err != nil {
		t.Errorf("after completion: unexpected error: %v", err)
	}
}

func TestAssignRoute_Errors(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	svc := assignments.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c := fixtures.CreateCollector(ctx, "Rajesh", "9000000001", 1)

	if _, err := svc.AssignRoute(ctx, primitive.NewObjectID(), 1, today); !errors.Is(err, assignments.ErrCollectorNotFound) {
		t.Errorf("unknown collector: got %v, want ErrCollectorNotFound", err)
	}
	if _, err := svc.AssignRoute(ctx, c.ID, 0, today); !errors.Is(err, assignments.ErrInvalidWard) {
		t.Errorf("ward 0: got %v, want ErrInvalidWard", err)
	}
}

func TestAssignRoute_OutsideWardsWarns(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	core, logs := observer.New(zap.WarnLevel)
	svc := assignments.New(db, zap.New(core))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c := fixtures.CreateCollector(ctx, "Rajesh", "9000000001", 1, 2)

	if _, err := svc.AssignRoute(ctx, c.ID, 7, today); err != nil {
		t.Fatalf("AssignRoute failed: %v", err)
	}
	if logs.FilterMessage("assigning collector outside their wards").Len() != 1 {
		t.Errorf("expected a ward mismatch warning, got %d entries", logs.Len())
	}
}

func TestDeleteRoute(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	svc := assignments.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c := fixtures.CreateCollector(ctx, "Rajesh", "9000000001", 5)
	h := fixtures.CreateHousehold(ctx, "Anitha", 5, "9847012345")
	r, err := svc.AssignRoute(ctx, c.ID, 5, today)
	if err != nil {
		t.Fatalf("AssignRoute failed: %v", err)
	}

	// Ward 0 falls back to the route's ward.
	if err := svc.DeleteRoute(ctx, r.ID, 0); err != nil {
		t.Fatalf("DeleteRoute failed: %v", err)
	}
	if _, err := routestore.New(db).GetByID(ctx, r.ID); !errors.Is(err, routestore.ErrNotFound) {
		t.Errorf("route still present: %v", err)
	}
	got, _ := householdstore.New(db).GetByID(ctx, h.ID)
	if got.AssignedCollector != models.Unassigned {
		t.Errorf("AssignedCollector: got %q, want unassigned", got.AssignedCollector)
	}

	if err := svc.DeleteRoute(ctx, r.ID, 5); !errors.Is(err, assignments.ErrRouteNotFound) {
		t.Errorf("second delete: got %v, want ErrRouteNotFound", err)
	}
}

func TestDailyAssignment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	svc := assignments.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c := fixtures.CreateCollector(ctx, "Rajesh", "9000000001", 1, 2)

	none, err := svc.DailyAssignment(ctx, c.ID, today)
	if err != nil {
		t.Fatalf("DailyAssignment failed: %v", err)
	}
	if none != nil {
		t.Errorf("expected nil, got %+v", none)
	}

	first, _ := svc.AssignRoute(ctx, c.ID, 2, today)
	if _, err := svc.AssignRoute(ctx, c.ID, 1, today); err != nil {
		t.Fatalf("AssignRoute failed: %v", err)
	}

	got, err := svc.DailyAssignment(ctx, c.ID, today)
	if err != nil {
		t.Fatalf("DailyAssignment failed: %v", err)
	}
	if got == nil || got.ID != first.ID {
		t.Errorf("got %+v, want first route %s", got, first.ID.Hex())
	}
}
