package households_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	uierrors "github.com/dalemusser/greenlink/internal/app/features/errors"
	"github.com/dalemusser/greenlink/internal/app/features/households"
	householdstore "github.com/dalemusser/greenlink/internal/app/store/households"
	"github.com/dalemusser/greenlink/internal/app/system/auditlog"
	"github.com/dalemusser/greenlink/internal/app/system/servicedate"
	"github.com/dalemusser/greenlink/internal/app/system/viewdata"
	"github.com/dalemusser/greenlink/internal/domain/models"
	"github.com/dalemusser/greenlink/internal/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var cal = servicedate.Fixed(time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC))

type env struct {
	h        *households.Handler
	fixtures *testutil.Fixtures
	store    *householdstore.Store
	audit    *observer.ObservedLogs
}

func newEnv(t *testing.T) env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	core, logs := observer.New(zap.InfoLevel)
	audit := auditlog.New(nil, zap.New(core), auditlog.Config{Admin: auditlog.Log})
	h := households.NewHandler(db, cal, uierrors.NewErrorLogger(zap.NewNop()), audit, zap.NewNop())
	return env{h: h, fixtures: testutil.NewFixtures(t, db), store: householdstore.New(db), audit: logs}
}

func adminRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	return testutil.WithUser(testutil.NewJSONRequest(t, method, target, body), testutil.AdminUser())
}

func auditEvents(logs *observer.ObservedLogs) []string {
	var out []string
	for _, e := range logs.FilterMessage("audit event").All() {
		if v, ok := e.ContextMap()["event_type"].(string); ok {
			out = append(out, v)
		}
	}
	return out
}

func TestHandleCreate_Defaults(t *testing.T) {
	e := newEnv(t)

	rec := httptest.NewRecorder()
	e.h.HandleCreate(rec, adminRequest(t, "POST", "/households", map[string]any{
		"resident_name": "  Lakshmi   Menon ",
		"address":       "12 Temple Road, Ward 7, Thrissur",
		"phone":         "+91 98470 12345",
	}))

	testutil.AssertStatus(t, rec, http.StatusCreated)
	var got viewdata.Household
	testutil.DecodeJSON(t, rec, &got)

	if got.ResidentName != "Lakshmi Menon" {
		t.Errorf("resident_name: got %q", got.ResidentName)
	}
	if got.Ward != 7 {
		t.Errorf("ward from address: got %d, want 7", got.Ward)
	}
	if got.Phone != "+919847012345" {
		t.Errorf("phone: got %q", got.Phone)
	}
	if got.MonthlyFee.String() != "100" {
		t.Errorf("monthly_fee: got %s, want 100", got.MonthlyFee)
	}
	if got.PaymentStatus != models.PaymentPending || got.CollectionStatus != models.CollectionPending {
		t.Errorf("statuses: got (%q, %q)", got.PaymentStatus, got.CollectionStatus)
	}
	if got.AssignedCollector != models.Unassigned {
		t.Errorf("assigned_collector: got %q", got.AssignedCollector)
	}
	if got.Lat == nil || *got.Lat != households.DefaultLat || got.Lng == nil || *got.Lng != households.DefaultLng {
		t.Errorf("coordinates: got %v, %v", got.Lat, got.Lng)
	}
	if got.LastCollectionDate != "none" {
		t.Errorf("last_collection_date: got %q", got.LastCollectionDate)
	}
	if evs := auditEvents(e.audit); len(evs) != 1 || evs[0] != "household_created" {
		t.Errorf("audit events: got %v", evs)
	}
}

func TestHandleCreate_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body any
	}{
		{"missing name", map[string]any{"address": "Ward 2", "phone": "9847012345"}},
		{"bad phone", map[string]any{"resident_name": "A", "address": "Ward 2", "phone": "12"}},
		{"no ward anywhere", map[string]any{"resident_name": "A", "address": "Main Road", "phone": "9847012345"}},
		{"ward out of range", map[string]any{"resident_name": "A", "address": "x", "ward": 5000, "phone": "9847012345"}},
		{"negative fee", map[string]any{"resident_name": "A", "address": "Ward 2", "phone": "9847012345", "monthly_fee": -5}},
		{"markup only name", map[string]any{"resident_name": "<b></b>", "address": "Ward 2", "phone": "9847012345"}},
		{"bad payment status", map[string]any{"resident_name": "A", "address": "Ward 2", "phone": "9847012345", "payment_status": "late"}},
		{"unknown field", map[string]any{"resident_name": "A", "address": "Ward 2", "phone": "9847012345", "collection_status": "collected"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t)
			rec := httptest.NewRecorder()
			e.h.HandleCreate(rec, adminRequest(t, "POST", "/households", tc.body))
			testutil.AssertStatus(t, rec, http.StatusBadRequest)
		})
	}
}

func TestServeList_ReconciledAndFiltered(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	e.fixtures.CreateHouseholdWith(ctx, models.Household{
		ResidentName: "Anitha", Address: "Ward 3", Ward: 3, Phone: "9847000001",
		CollectionStatus: models.CollectionCollected, PaymentStatus: models.PaymentPaid,
		LastCollectionDate: cal.Today().AddDays(-2),
	})
	e.fixtures.CreateHousehold(ctx, "Biju", 3, "9847000002")
	e.fixtures.CreateHousehold(ctx, "Chandran", 4, "9847000003")

	rec := httptest.NewRecorder()
	e.h.ServeList(rec, adminRequest(t, "GET", "/households?ward=3", nil))

	testutil.AssertStatus(t, rec, http.StatusOK)
	var got viewdata.List[viewdata.Household]
	testutil.DecodeJSON(t, rec, &got)
	if got.Total != 2 || len(got.Items) != 2 {
		t.Fatalf("ward 3: got total %d, %d items", got.Total, len(got.Items))
	}
	if got.Items[0].ResidentName != "Anitha" {
		t.Fatalf("order: got %q first", got.Items[0].ResidentName)
	}
	if got.Items[0].CollectionStatus != models.CollectionPending || got.Items[0].PaymentStatus != models.PaymentPending {
		t.Errorf("stale statuses were not projected onto today: %+v", got.Items[0])
	}

	rec = httptest.NewRecorder()
	e.h.ServeList(rec, adminRequest(t, "GET", "/households?limit=1&offset=1", nil))
	testutil.DecodeJSON(t, rec, &got)
	if got.Total != 3 || len(got.Items) != 1 || got.Items[0].ResidentName != "Biju" {
		t.Errorf("paged: got total %d, items %+v", got.Total, got.Items)
	}

	rec = httptest.NewRecorder()
	e.h.ServeList(rec, adminRequest(t, "GET", "/households?ward=abc", nil))
	testutil.AssertStatus(t, rec, http.StatusBadRequest)
}

func TestServeWard(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c := e.fixtures.CreateCollector(ctx, "Ravi", "9847100001", 5)
	e.fixtures.CreateHouseholdWith(ctx, models.Household{
		ResidentName: "Devi", Address: "Ward 5", Ward: 5, Phone: "9847000004",
		CollectionStatus: models.CollectionCollected, PaymentStatus: models.PaymentPaid,
		LastCollectionDate: cal.Today(),
	})
	e.fixtures.CreateHousehold(ctx, "Elias", 6, "9847000005")

	req := testutil.WithUser(httptest.NewRequest("GET", "/households/ward/5", nil), testutil.CollectorUser(c))
	req = testutil.WithChiURLParam(req, "ward", "5")
	rec := httptest.NewRecorder()
	e.h.ServeWard(rec, req)

	testutil.AssertStatus(t, rec, http.StatusOK)
	var got viewdata.List[viewdata.Household]
	testutil.DecodeJSON(t, rec, &got)
	if len(got.Items) != 1 || got.Items[0].CollectionStatus != models.CollectionCollected {
		t.Errorf("ward 5: got %+v", got.Items)
	}
}

func TestHandleEdit(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	hh := e.fixtures.CreateHousehold(ctx, "Fathima", 8, "9847000006")

	req := adminRequest(t, "PUT", "/households/"+hh.ID.Hex(), map[string]any{
		"resident_name": "Fathima <i>K</i>",
		"ward":          9,
		"monthly_fee":   "150.50",
	})
	rec := httptest.NewRecorder()
	e.h.HandleEdit(rec, testutil.WithChiURLParam(req, "id", hh.ID.Hex()))

	testutil.AssertStatus(t, rec, http.StatusOK)
	stored, err := e.store.GetByID(ctx, hh.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.ResidentName != "Fathima K" || stored.Ward != 9 || stored.MonthlyFee.String() != "150.5" {
		t.Errorf("stored: got name %q ward %d fee %s", stored.ResidentName, stored.Ward, stored.MonthlyFee)
	}
	if stored.Phone != hh.Phone {
		t.Errorf("phone changed without being sent: %q", stored.Phone)
	}
	if evs := auditEvents(e.audit); len(evs) != 1 || evs[0] != "household_updated" {
		t.Errorf("audit events: got %v", evs)
	}
}

func TestHandleEdit_MarksOverdue(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	hh := e.fixtures.CreateHouseholdWith(ctx, models.Household{
		ResidentName: "Haris", Address: "Ward 4", Ward: 4, Phone: "9847000010",
		CollectionStatus: models.CollectionCollected, PaymentStatus: models.PaymentPending,
		LastCollectionDate: cal.Today(),
	})

	req := adminRequest(t, "PUT", "/households/"+hh.ID.Hex(), map[string]any{"payment_status": "overdue"})
	rec := httptest.NewRecorder()
	e.h.HandleEdit(rec, testutil.WithChiURLParam(req, "id", hh.ID.Hex()))

	testutil.AssertStatus(t, rec, http.StatusOK)
	var got viewdata.Household
	testutil.DecodeJSON(t, rec, &got)
	if got.PaymentStatus != models.PaymentOverdue {
		t.Errorf("response payment_status: got %q, want overdue", got.PaymentStatus)
	}
	stored, err := e.store.GetByID(ctx, hh.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.PaymentStatus != models.PaymentOverdue {
		t.Errorf("stored payment_status: got %q, want overdue", stored.PaymentStatus)
	}
	if stored.CollectionStatus != models.CollectionCollected {
		t.Errorf("collection_status changed: got %q", stored.CollectionStatus)
	}
}

func TestHandleEdit_Errors(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	hh := e.fixtures.CreateHousehold(ctx, "Gopi", 1, "9847000007")
	missing := "64b7f0c2a1b2c3d4e5f60718"

	tests := []struct {
		name string
		id   string
		body any
		want int
	}{
		{"bad id", "xyz", map[string]any{"ward": 2}, http.StatusBadRequest},
		{"empty body", hh.ID.Hex(), map[string]any{}, http.StatusBadRequest},
		{"blank name", hh.ID.Hex(), map[string]any{"resident_name": "  "}, http.StatusBadRequest},
		{"bad ward", hh.ID.Hex(), map[string]any{"ward": 0}, http.StatusBadRequest},
		{"bad payment status", hh.ID.Hex(), map[string]any{"payment_status": "late"}, http.StatusBadRequest},
		{"collection status not editable", hh.ID.Hex(), map[string]any{"collection_status": "collected"}, http.StatusBadRequest},
		{"not found", missing, map[string]any{"ward": 2}, http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := adminRequest(t, "PUT", "/households/"+tc.id, tc.body)
			rec := httptest.NewRecorder()
			e.h.HandleEdit(rec, testutil.WithChiURLParam(req, "id", tc.id))
			testutil.AssertStatus(t, rec, tc.want)
		})
	}
}

func TestHandleDelete(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	hh := e.fixtures.CreateHousehold(ctx, "Hari", 2, "9847000008")

	del := func() *httptest.ResponseRecorder {
		req := adminRequest(t, "DELETE", "/households/"+hh.ID.Hex(), nil)
		rec := httptest.NewRecorder()
		e.h.HandleDelete(rec, testutil.WithChiURLParam(req, "id", hh.ID.Hex()))
		return rec
	}

	testutil.AssertStatus(t, del(), http.StatusNoContent)
	testutil.AssertStatus(t, del(), http.StatusNotFound)
	if evs := auditEvents(e.audit); len(evs) != 1 || evs[0] != "household_deleted" {
		t.Errorf("audit events: got %v", evs)
	}
}
