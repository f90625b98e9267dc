package collectionlogstore_test

import (
	"sync"
	"testing"

	"cloud.google.com/go/civil"
	collectionlogstore "github.com/dalemusser/greenlink/internal/app/store/collectionlogs"
	"github.com/dalemusser/greenlink/internal/domain/models"
	"github.com/dalemusser/greenlink/internal/testutil"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var today = civil.Date{Year: 2026, Month: 10, Day: 15}

func TestStore_UpsertForDay_CreateThenReplace(t *testing.T) {
	db := testutil.SetupTestDBWithSchema(t)
	store := collectionlogstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	key := collectionlogstore.Key{HouseholdID: primitive.NewObjectID(), Day: today}

	first, created, err := store.UpsertForDay(ctx, key, collectionlogstore.Fields{
		CollectorID: "c1", CollectorName: "Rajesh", Status: models.CollectionNotAvailable,
		ResidentName: "Anitha", Location: "10.85,76.27",
	})
	if err != nil {
		t.Fatalf("first UpsertForDay failed: %v", err)
	}
	if !created {
		t.Error("first upsert: expected created")
	}
	if first.PaymentMode != models.PaymentModeNone {
		t.Errorf("PaymentMode: got %q, want none", first.PaymentMode)
	}

	second, created, err := store.UpsertForDay(ctx, key, collectionlogstore.Fields{
		CollectorID: "c2", CollectorName: "Priya", Status: models.CollectionCollected,
		Amount: decimal.NewFromInt(100), PaymentMode: models.PaymentModeOffline,
		ResidentName: "ignored", Location: "ignored",
	})
	if err != nil {
		t.Fatalf("second UpsertForDay failed: %v", err)
	}
	if created {
		t.Error("second upsert: expected update, got create")
	}
	if second.ID != first.ID {
		t.Errorf("ID changed: %s -> %s", first.ID.Hex(), second.ID.Hex())
	}
	if second.CollectorID != "c2" || second.Status != models.CollectionCollected {
		t.Errorf("replaced fields: got (%q, %q)", second.CollectorID, second.Status)
	}
	if !second.AmountCollected.Equal(decimal.NewFromInt(100)) {
		t.Errorf("AmountCollected: got %s", second.AmountCollected)
	}
	if second.ResidentName != "Anitha" || second.Location != "10.85,76.27" {
		t.Errorf("insert-only fields overwritten: got (%q, %q)", second.ResidentName, second.Location)
	}
	if !second.Timestamp.Equal(first.Timestamp) {
		t.Errorf("Timestamp changed: %v -> %v", first.Timestamp, second.Timestamp)
	}

	if n, _ := store.Count(ctx); n != 1 {
		t.Errorf("Count: got %d, want 1", n)
	}
}

func TestStore_UpsertForDay_KeepCollector(t *testing.T) {
	db := testutil.SetupTestDBWithSchema(t)
	store := collectionlogstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	visited := collectionlogstore.Key{HouseholdID: primitive.NewObjectID(), Day: today}
	if _, _, err := store.UpsertForDay(ctx, visited, collectionlogstore.Fields{
		CollectorID: "c1", CollectorName: "Rajesh", Status: models.CollectionCollected,
	}); err != nil {
		t.Fatalf("visit: %v", err)
	}
	paid := collectionlogstore.Fields{
		CollectorID: models.SystemCollector, CollectorName: models.SystemCollectorName,
		Status: models.LogPaid, Amount: decimal.NewFromInt(100),
		PaymentMode: models.PaymentModeOnline, KeepCollector: true,
	}

	l, created, err := store.UpsertForDay(ctx, visited, paid)
	if err != nil {
		t.Fatalf("payment on visited household: %v", err)
	}
	if created {
		t.Error("expected the visit's log to be updated")
	}
	if l.CollectorID != "c1" || l.CollectorName != "Rajesh" {
		t.Errorf("collector overwritten: got (%q, %q)", l.CollectorID, l.CollectorName)
	}
	if l.Status != models.LogPaid || l.PaymentMode != models.PaymentModeOnline {
		t.Errorf("payment fields: got (%q, %q)", l.Status, l.PaymentMode)
	}

	fresh := collectionlogstore.Key{HouseholdID: primitive.NewObjectID(), Day: today}
	l, created, err = store.UpsertForDay(ctx, fresh, paid)
	if err != nil {
		t.Fatalf("payment on unvisited household: %v", err)
	}
	if !created || l.CollectorID != models.SystemCollector || l.CollectorName != models.SystemCollectorName {
		t.Errorf("new log: created=%v collector=(%q, %q)", created, l.CollectorID, l.CollectorName)
	}
}

func TestStore_UpsertForDay_Concurrent(t *testing.T) {
	db := testutil.SetupTestDBWithSchema(t)
	store := collectionlogstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	key := collectionlogstore.Key{HouseholdID: primitive.NewObjectID(), Day: today}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := store.UpsertForDay(ctx, key, collectionlogstore.Fields{
				CollectorID: "c1", Status: models.CollectionCollected,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Errorf("concurrent upsert: %v", err)
		}
	}
	if n, _ := store.Count(ctx); n != 1 {
		t.Errorf("Count: got %d, want 1", n)
	}
}

func TestStore_MarkCounted_OnlyOnce(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := collectionlogstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	l := fixtures.CreateLog(ctx, models.CollectionLog{
		CollectorID: "c1", HouseholdID: primitive.NewObjectID(), Day: today, Status: models.CollectionCollected,
	})

	ok, err := store.MarkCounted(ctx, l.ID)
	if err != nil || !ok {
		t.Fatalf("first MarkCounted: ok=%v err=%v", ok, err)
	}
	ok, err = store.MarkCounted(ctx, l.ID)
	if err != nil || ok {
		t.Errorf("second MarkCounted: ok=%v err=%v, want false/nil", ok, err)
	}
}

func TestStore_FindForDay(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := collectionlogstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	hh := primitive.NewObjectID()
	fixtures.CreateLog(ctx, models.CollectionLog{HouseholdID: hh, Day: today.AddDays(-1), Status: models.CollectionCollected})

	got, err := store.FindForDay(ctx, hh, today)
	if err != nil {
		t.Fatalf("FindForDay failed: %v", err)
	}
	if got != nil {
		t.Errorf("yesterday's log matched today: %+v", got)
	}
	got, _ = store.FindForDay(ctx, hh, today.AddDays(-1))
	if got == nil {
		t.Error("expected yesterday's log")
	}
}

func TestStore_DaySummary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := collectionlogstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, l := range []struct {
		status string
		amount int64
		day    civil.Date
	}{
		{models.CollectionCollected, 100, today},
		{models.LogPaid, 150, today},
		{models.CollectionNotAvailable, 0, today},
		{models.LogSkipped, 0, today},
		{models.CollectionCollected, 100, today.AddDays(-1)},
	} {
		fixtures.CreateLog(ctx, models.CollectionLog{
			HouseholdID: primitive.NewObjectID(), Day: l.day, Status: l.status,
			AmountCollected: decimal.NewFromInt(l.amount),
		})
	}

	got, err := store.DaySummary(ctx, today)
	if err != nil {
		t.Fatalf("DaySummary failed: %v", err)
	}
	if got.Covered != 2 {
		t.Errorf("Covered: got %d, want 2", got.Covered)
	}
	if !got.Revenue.Equal(decimal.NewFromInt(250)) {
		t.Errorf("Revenue: got %s, want 250", got.Revenue)
	}

	empty, err := store.DaySummary(ctx, today.AddDays(5))
	if err != nil {
		t.Fatalf("DaySummary (empty) failed: %v", err)
	}
	if empty.Covered != 0 || !empty.Revenue.IsZero() {
		t.Errorf("empty day: got %+v", empty)
	}
}

func TestStore_RevenueByMonth(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := collectionlogstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, d := range []civil.Date{
		{Year: 2026, Month: 8, Day: 31},
		{Year: 2026, Month: 9, Day: 1},
		{Year: 2026, Month: 9, Day: 30},
		{Year: 2026, Month: 10, Day: 15},
	} {
		fixtures.CreateLog(ctx, models.CollectionLog{
			HouseholdID: primitive.NewObjectID(), Day: d, Status: models.LogPaid,
			AmountCollected: decimal.NewFromInt(50),
		})
	}

	got, err := store.RevenueByMonth(ctx, civil.Date{Year: 2026, Month: 9, Day: 1}, today)
	if err != nil {
		t.Fatalf("RevenueByMonth failed: %v", err)
	}
	want := []struct {
		month   string
		revenue int64
	}{{"2026-09", 100}, {"2026-10", 50}}
	if len(got) != len(want) {
		t.Fatalf("len: got %d (%+v), want %d", len(got), got, len(want))
	}
	for i, w := range want {
		if got[i].Month != w.month || !got[i].Revenue.Equal(decimal.NewFromInt(w.revenue)) {
			t.Errorf("[%d]: got (%s, %s), want (%s, %d)", i, got[i].Month, got[i].Revenue, w.month, w.revenue)
		}
	}
}

func TestStore_CountsByCollector(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := collectionlogstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, l := range []struct{ collector, status string }{
		{"c1", models.CollectionCollected},
		{"c1", models.LogPaid},
		{"c1", models.LogSkipped},
		{"c2", models.CollectionCollected},
		{"c2", models.CollectionNotAvailable},
	} {
		fixtures.CreateLog(ctx, models.CollectionLog{
			CollectorID: l.collector, HouseholdID: primitive.NewObjectID(), Day: today, Status: l.status,
		})
	}

	got, err := store.CountsByCollector(ctx)
	if err != nil {
		t.Fatalf("CountsByCollector failed: %v", err)
	}
	if got["c1"] != 2 || got["c2"] != 1 {
		t.Errorf("got %v, want c1=2 c2=1", got)
	}
}

func TestStore_ListRecent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := collectionlogstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	var last models.CollectionLog
	for i := 0; i < 5; i++ {
		last = fixtures.CreateLog(ctx, models.CollectionLog{
			HouseholdID: primitive.NewObjectID(), Day: today, Status: models.CollectionCollected,
			Timestamp: testutil.TimeAt(i),
		})
	}

	got, err := store.ListRecent(ctx, 3)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len: got %d, want 3", len(got))
	}
	if got[0].ID != last.ID {
		t.Errorf("newest first: got %s, want %s", got[0].ID.Hex(), last.ID.Hex())
	}
}

func TestStore_Insert_RejectsSecondLogForDay(t *testing.T) {
	db := testutil.SetupTestDBWithSchema(t)
	store := collectionlogstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	hid := primitive.NewObjectID()
	l, err := store.Insert(ctx, models.CollectionLog{
		HouseholdID: hid, Day: today, Status: models.LogSkipped,
		CollectorID: "c1", Timestamp: testutil.TimeAt(5),
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if l.PaymentMode != models.PaymentModeNone {
		t.Errorf("PaymentMode: got %q, want none", l.PaymentMode)
	}
	if !l.Timestamp.Equal(testutil.TimeAt(5)) {
		t.Errorf("Timestamp: got %v, want the given time", l.Timestamp)
	}

	_, err = store.Insert(ctx, models.CollectionLog{HouseholdID: hid, Day: today, Status: models.CollectionCollected})
	if err != collectionlogstore.ErrDuplicate {
		t.Fatalf("second Insert: got %v, want ErrDuplicate", err)
	}
}
