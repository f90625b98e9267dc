package collections_test

import (
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	collectionlogstore "github.com/dalemusser/greenlink/internal/app/store/collectionlogs"
	collectorstore "github.com/dalemusser/greenlink/internal/app/store/collectors"
	householdstore "github.com/dalemusser/greenlink/internal/app/store/households"
	routestore "github.com/dalemusser/greenlink/internal/app/store/routes"
	"github.com/dalemusser/greenlink/internal/app/system/reconcile"
	"github.com/dalemusser/greenlink/internal/app/system/servicedate"
	"github.com/dalemusser/greenlink/internal/app/workflows/collections"
	"github.com/dalemusser/greenlink/internal/domain/models"
	"github.com/dalemusser/greenlink/internal/testutil"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	ist   = time.FixedZone("IST", 5*3600+1800)
	today = civil.Date{Year: 2026, Month: 10, Day: 15}
	cal   = servicedate.Fixed(time.Date(2026, 10, 15, 9, 30, 0, 0, ist))
)

func TestEffectivePaymentStatus(t *testing.T) {
	tests := []struct {
		mode, override, want string
	}{
		{models.PaymentModeOffline, "", models.PaymentPaid},
		{models.PaymentModeOffline, models.PaymentOverdue, models.PaymentOverdue},
		{models.PaymentModeOffline, models.PaymentPending, models.PaymentPending},
		{models.PaymentModeNone, models.PaymentOverdue, models.PaymentOverdue},
		{"", "", ""},
		{models.PaymentModeOnline, "", ""},
	}
	for _, tc := range tests {
		if got := collections.EffectivePaymentStatus(tc.mode, tc.override); got != tc.want {
			t.Errorf("EffectivePaymentStatus(%q, %q): got %q, want %q", tc.mode, tc.override, got, tc.want)
		}
	}
}

func TestRecordCollection_CollectedOffline(t *testing.T) {
	db := testutil.SetupTestDBWithSchema(t)
	fixtures := testutil.NewFixtures(t, db)
	svc := collections.New(db, cal, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c := fixtures.CreateCollector(ctx, "Rajesh", "9000000001", 3)
	route := fixtures.CreateRoute(ctx, c, 3, today, models.RouteActive)
	h := fixtures.CreateHousehold(ctx, "Anitha Menon", 3, "9847012345")

	res, err := svc.RecordCollection(ctx, collections.RecordInput{
		HouseholdID:   h.ID,
		Status:        models.CollectionCollected,
		CollectorID:   c.ID.Hex(),
		CollectorName: c.Name,
		Location:      "10.85,76.27",
		PaymentMode:   models.PaymentModeOffline,
		Amount:        decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("RecordCollection failed: %v", err)
	}
	if !res.Created || !res.Counted {
		t.Errorf("result: created=%v counted=%v, want true/true", res.Created, res.Counted)
	}
	if res.Log.ResidentName != "Anitha Menon" {
		t.Errorf("ResidentName: got %q, want looked-up name", res.Log.ResidentName)
	}

	got, _ := householdstore.New(db).GetByID(ctx, h.ID)
	coll, pay := reconcile.DisplayStatus(got, today)
	if coll != models.CollectionCollected || pay != models.PaymentPaid {
		t.Errorf("display status: got (%q, %q), want (collected, paid)", coll, pay)
	}
	if got.PaymentMode != models.PaymentModeOffline {
		t.Errorf("PaymentMode: got %q", got.PaymentMode)
	}

	collector, _ := collectorstore.New(db).GetByID(ctx, c.ID)
	if collector.TotalCollections != 1 {
		t.Errorf("TotalCollections: got %d, want 1", collector.TotalCollections)
	}
	r, _ := routestore.New(db).GetByID(ctx, route.ID)
	if r.CollectedHouses != 1 {
		t.Errorf("CollectedHouses: got %d, want 1", r.CollectedHouses)
	}
}

func TestRecordCollection_RepeatedSameDayCountsOnce(t *testing.T) {
	db := testutil.SetupTestDBWithSchema(t)
	fixtures := testutil.NewFixtures(t, db)
	svc := collections.New(db, cal, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c := fixtures.CreateCollector(ctx, "Rajesh", "9000000001", 3)
	h := fixtures.CreateHousehold(ctx, "Anitha", 3, "9847012345")

	in := collections.RecordInput{
		HouseholdID: h.ID, Status: models.CollectionCollected,
		CollectorID: c.ID.Hex(), CollectorName: c.Name, ResidentName: h.ResidentName,
	}
	statuses := []string{models.CollectionCollected, models.CollectionNotAvailable, models.CollectionCollected}
	for i, s := range statuses {
		in.Status = s
		res, err := svc.RecordCollection(ctx, in)
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if res.Created != (i == 0) {
			t.Errorf("call %d: created=%v", i, res.Created)
		}
	}

	collector, _ := collectorstore.New(db).GetByID(ctx, c.ID)
	if collector.TotalCollections != 1 {
		t.Errorf("TotalCollections: got %d, want 1", collector.TotalCollections)
	}
	if n, _ := collectionlogstore.New(db).Count(ctx); n != 1 {
		t.Errorf("logs: got %d, want 1", n)
	}
}

func TestRecordCollection_NotAvailableKeepsPayment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	svc := collections.New(db, cal, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c := fixtures.CreateCollector(ctx, "Rajesh", "9000000001", 3)
	h := fixtures.CreateHouseholdWith(ctx, models.Household{
		ResidentName: "Anitha", Address: "Ward 3", Ward: 3, Phone: "9847012345",
		PaymentStatus: models.PaymentOverdue, LastCollectionDate: today,
	})

	res, err := svc.RecordCollection(ctx, collections.RecordInput{
		HouseholdID: h.ID, Status: models.CollectionNotAvailable,
		CollectorID: c.ID.Hex(), CollectorName: c.Name, ResidentName: "Anitha",
	})
	if err != nil {
		t.Fatalf("RecordCollection failed: %v", err)
	}
	if res.Counted {
		t.Error("not-available must not credit the collector")
	}
	got, _ := householdstore.New(db).GetByID(ctx, h.ID)
	if got.PaymentStatus != models.PaymentOverdue {
		t.Errorf("PaymentStatus: got %q, want overdue", got.PaymentStatus)
	}
	if got.PaymentMode != models.PaymentModeNone {
		t.Errorf("PaymentMode: got %q, want none", got.PaymentMode)
	}
}

func TestRecordCollection_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := collections.New(db, cal, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := collections.RecordInput{
		HouseholdID: primitive.NewObjectID(), Status: models.CollectionCollected,
		CollectorID: "c1", ResidentName: "x",
	}
	tests := []struct {
		name   string
		mutate func(*collections.RecordInput)
		want   error
	}{
		{"pending status", func(in *collections.RecordInput) { in.Status = models.CollectionPending }, collections.ErrInvalidStatus},
		{"paid log status", func(in *collections.RecordInput) { in.Status = models.LogPaid }, collections.ErrInvalidStatus},
		{"bad mode", func(in *collections.RecordInput) { in.PaymentMode = "cash" }, collections.ErrInvalidPaymentMode},
		{"bad payment status", func(in *collections.RecordInput) { in.PaymentStatus = "late" }, collections.ErrInvalidPaymentStatus},
		{"negative amount", func(in *collections.RecordInput) { in.Amount = decimal.NewFromInt(-1) }, collections.ErrInvalidAmount},
		{"missing household", func(*collections.RecordInput) {}, collections.ErrHouseholdNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := base
			tc.mutate(&in)
			if _, err := svc.RecordCollection(ctx, in); !errors.Is(err, tc.want) {
				t.Errorf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestPayOnline(t *testing.T) {
	db := testutil.SetupTestDBWithSchema(t)
	fixtures := testutil.NewFixtures(t, db)
	svc := collections.New(db, cal, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Collected two days ago: the payment must not revive that status.
	h := fixtures.CreateHouseholdWith(ctx, models.Household{
		ResidentName: "Anitha", Address: "Ward 3", Ward: 3, Phone: "9847012345",
		CollectionStatus: models.CollectionCollected, LastCollectionDate: today.AddDays(-2),
	})
	c := fixtures.CreateCollector(ctx, "Rajesh", "9000000001", 3)

	l, err := svc.PayOnline(ctx, h.ID, h.ResidentName, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("PayOnline failed: %v", err)
	}
	if l.CollectorID != models.SystemCollector || l.CollectorName != models.SystemCollectorName {
		t.Errorf("collector: got (%q, %q)", l.CollectorID, l.CollectorName)
	}
	if l.Status != models.LogPaid || l.PaymentMode != models.PaymentModeOnline || l.Location != models.OnlineGateway {
		t.Errorf("log: status=%q mode=%q location=%q", l.Status, l.PaymentMode, l.Location)
	}
	if l.PaymentRef == "" {
		t.Error("expected a payment reference")
	}

	got, _ := householdstore.New(db).GetByID(ctx, h.ID)
	coll, pay := reconcile.DisplayStatus(got, today)
	if coll != models.CollectionPending || pay != models.PaymentPaid {
		t.Errorf("display status: got (%q, %q), want (pending, paid)", coll, pay)
	}

	collector, _ := collectorstore.New(db).GetByID(ctx, c.ID)
	if collector.TotalCollections != 0 {
		t.Errorf("TotalCollections: got %d, want 0", collector.TotalCollections)
	}
}

func TestPayOnline_AfterCollectionToday(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	svc := collections.New(db, cal, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c := fixtures.CreateCollector(ctx, "Rajesh", "9000000001", 3)
	h := fixtures.CreateHousehold(ctx, "Anitha", 3, "9847012345")

	if _, err := svc.RecordCollection(ctx, collections.RecordInput{
		HouseholdID: h.ID, Status: models.CollectionCollected,
		CollectorID: c.ID.Hex(), CollectorName: c.Name, ResidentName: "Anitha",
	}); err != nil {
		t.Fatalf("RecordCollection failed: %v", err)
	}
	first, _ := collectionlogstore.New(db).FindForDay(ctx, h.ID, today)

	l, err := svc.PayOnline(ctx, h.ID, "Anitha", decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("PayOnline failed: %v", err)
	}
	if l.ID != first.ID {
		t.Errorf("expected the day's log to be rewritten in place")
	}
	if l.CollectorID != c.ID.Hex() || l.CollectorName != c.Name {
		t.Errorf("log collector: got (%q, %q), want the visiting collector", l.CollectorID, l.CollectorName)
	}
	if l.Status != models.LogPaid || l.PaymentMode != models.PaymentModeOnline {
		t.Errorf("log payment: got (%q, %q)", l.Status, l.PaymentMode)
	}

	counts, err := collectionlogstore.New(db).CountsByCollector(ctx)
	if err != nil {
		t.Fatalf("CountsByCollector failed: %v", err)
	}
	if counts[c.ID.Hex()] != 1 || counts[models.SystemCollector] != 0 {
		t.Errorf("recomputed credit: got %v, want 1 for %s", counts, c.ID.Hex())
	}
	stored, _ := collectorstore.New(db).GetByID(ctx, c.ID)
	if stored.TotalCollections != 1 {
		t.Errorf("TotalCollections: got %d, want 1", stored.TotalCollections)
	}

	got, _ := householdstore.New(db).GetByID(ctx, h.ID)
	if coll, pay := reconcile.DisplayStatus(got, today); coll != models.CollectionCollected || pay != models.PaymentPaid {
		t.Errorf("display status: got (%q, %q), want (collected, paid)", coll, pay)
	}
}

func TestPayOnline_Errors(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := collections.New(db, cal, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := svc.PayOnline(ctx, primitive.NewObjectID(), "x", decimal.NewFromInt(10)); !errors.Is(err, collections.ErrHouseholdNotFound) {
		t.Errorf("missing household: got %v, want ErrHouseholdNotFound", err)
	}
	if _, err := svc.PayOnline(ctx, primitive.NewObjectID(), "x", decimal.NewFromInt(-5)); !errors.Is(err, collections.ErrInvalidAmount) {
		t.Errorf("negative amount: got %v, want ErrInvalidAmount", err)
	}
}
