package reports_test

import (
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	uierrors "github.com/dalemusser/greenlink/internal/app/features/errors"
	"github.com/dalemusser/greenlink/internal/app/features/reports"
	"github.com/dalemusser/greenlink/internal/app/system/servicedate"
	"github.com/dalemusser/greenlink/internal/domain/models"
	"github.com/dalemusser/greenlink/internal/testutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var cal = servicedate.Fixed(time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC))

func setup(t *testing.T) (*reports.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return reports.NewHandler(db, cal, uierrors.NewErrorLogger(zap.NewNop()), zap.NewNop()), testutil.NewFixtures(t, db)
}

func get(h http.HandlerFunc, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, testutil.WithUser(httptest.NewRequest("GET", target, nil), testutil.AdminUser()))
	return rec
}

func TestServeDayAndWeek(t *testing.T) {
	h, fixtures := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fixtures.CreateHousehold(ctx, "Ammu", 1, "9847700001")
	fixtures.CreateHousehold(ctx, "Bala", 1, "9847700002")
	fixtures.CreateLog(ctx, models.CollectionLog{
		CollectorID: "c1", HouseholdID: a.ID, Day: cal.Today(), Status: models.CollectionCollected,
		AmountCollected: decimal.NewFromInt(100),
	})

	rec := get(h.ServeDay, "/reports/day")
	testutil.AssertStatus(t, rec, http.StatusOK)
	var day struct {
		Day     string          `json:"day"`
		Total   int64           `json:"total"`
		Covered int64           `json:"covered"`
		Pending int64           `json:"pending"`
		Revenue decimal.Decimal `json:"revenue"`
	}
	testutil.DecodeJSON(t, rec, &day)
	if day.Day != "2026-10-15" || day.Total != 2 || day.Covered != 1 || day.Pending != 1 || !day.Revenue.Equal(decimal.NewFromInt(100)) {
		t.Errorf("day: got %+v", day)
	}

	rec = get(h.ServeWeek, "/reports/week?date=2026-10-15")
	testutil.AssertStatus(t, rec, http.StatusOK)
	var week []struct {
		Day     string `json:"day"`
		Covered int64  `json:"covered"`
	}
	testutil.DecodeJSON(t, rec, &week)
	if len(week) != 7 || week[0].Day != "2026-10-09" || week[6].Day != "2026-10-15" || week[6].Covered != 1 {
		t.Errorf("week: got %+v", week)
	}

	testutil.AssertStatus(t, get(h.ServeDay, "/reports/day?date=yesterday"), http.StatusBadRequest)
}

func TestServeCoverage(t *testing.T) {
	h, fixtures := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateHouseholdWith(ctx, models.Household{
		ResidentName: "Chinnu", Address: "Ward 2", Ward: 2, Phone: "9847700003",
		CollectionStatus: models.CollectionCollected, PaymentStatus: models.PaymentPaid,
		LastCollectionDate: cal.Today(),
	})
	fixtures.CreateHouseholdWith(ctx, models.Household{
		ResidentName: "Dinesh", Address: "Ward 2", Ward: 2, Phone: "9847700004",
		CollectionStatus: models.CollectionCollected, PaymentStatus: models.PaymentPaid,
		LastCollectionDate: cal.Today().AddDays(-1),
	})

	rec := get(h.ServeCoverage, "/reports/coverage")
	testutil.AssertStatus(t, rec, http.StatusOK)
	var got struct {
		Total   int `json:"total"`
		Covered int `json:"covered"`
		Percent int `json:"percent"`
		Missed  []struct {
			ResidentName     string `json:"resident_name"`
			CollectionStatus string `json:"collection_status"`
		} `json:"missed"`
	}
	testutil.DecodeJSON(t, rec, &got)
	if got.Total != 2 || got.Covered != 1 || got.Percent != 50 {
		t.Errorf("coverage: got %+v", got)
	}
	if len(got.Missed) != 1 || got.Missed[0].ResidentName != "Dinesh" || got.Missed[0].CollectionStatus != models.CollectionPending {
		t.Errorf("missed: got %+v", got.Missed)
	}
}

func TestServeRevenue_SixMonths(t *testing.T) {
	h, _ := setup(t)

	rec := get(h.ServeRevenue, "/reports/revenue")
	testutil.AssertStatus(t, rec, http.StatusOK)
	var got []struct {
		Month string `json:"month"`
	}
	testutil.DecodeJSON(t, rec, &got)
	if len(got) != 6 || got[0].Month != "2026-05" || got[5].Month != "2026-10" {
		t.Errorf("months: got %+v", got)
	}
}

func TestServeExport(t *testing.T) {
	h, fixtures := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	hh := fixtures.CreateHouseholdWith(ctx, models.Household{
		ResidentName: "=Eby", Address: "Ward 9, Kochi", Ward: 9, Phone: "9847700005",
	})

	rec := get(h.ServeExport, "/reports/export.csv")
	testutil.AssertStatus(t, rec, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type: got %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "green-link-report-2026-10-15.csv") {
		t.Errorf("Content-Disposition: got %q", cd)
	}

	records, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want header and one row", len(records))
	}
	want := []string{hh.ID.Hex(), "'=Eby", "Ward 9, Kochi", models.CollectionPending, models.PaymentPending}
	for i := range want {
		if records[1][i] != want[i] {
			t.Errorf("column %d: got %q, want %q", i, records[1][i], want[i])
		}
	}
}
