package audit_test

import (
	"testing"
	"time"

	"github.com/dalemusser/greenlink/internal/app/store/audit"
	"github.com/dalemusser/greenlink/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Log(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	err := store.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    &userID,
		IP:        "192.168.1.1",
		UserAgent: "TestBrowser/1.0",
		Success:   true,
	})
	if err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := store.GetByUser(ctx, userID, 10)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].EventType != audit.EventLoginSuccess {
		t.Errorf("EventType: got %q, want %q", events[0].EventType, audit.EventLoginSuccess)
	}
	if events[0].Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
}

func TestStore_Query_Filters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	actor := primitive.NewObjectID()
	household := primitive.NewObjectID()
	route := primitive.NewObjectID()

	events := []audit.Event{
		{Category: audit.CategoryAdmin, EventType: audit.EventHouseholdCreated, ActorID: &actor, TargetID: &household, Success: true},
		{Category: audit.CategoryAdmin, EventType: audit.EventHouseholdUpdated, ActorID: &actor, TargetID: &household, Success: true},
		{Category: audit.CategoryAdmin, EventType: audit.EventRouteAssigned, ActorID: &actor, TargetID: &route, Success: true},
		{Category: audit.CategoryAuth, EventType: audit.EventLogout, UserID: &actor, Success: true},
	}
	for _, e := range events {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter audit.QueryFilter
		want   int
	}{
		{"all", audit.QueryFilter{}, 4},
		{"admin category", audit.QueryFilter{Category: audit.CategoryAdmin}, 3},
		{"by target", audit.QueryFilter{TargetID: &household}, 2},
		{"by event type", audit.QueryFilter{EventType: audit.EventRouteAssigned}, 1},
		{"limit", audit.QueryFilter{Limit: 2}, 2},
		{"offset", audit.QueryFilter{Offset: 3}, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := store.Query(ctx, tc.filter)
			if err != nil {
				t.Fatalf("Query failed: %v", err)
			}
			if len(got) != tc.want {
				t.Errorf("got %d events, want %d", len(got), tc.want)
			}
		})
	}

	if n, _ := store.Count(ctx, audit.QueryFilter{Category: audit.CategoryAuth}); n != 1 {
		t.Errorf("Count(auth): got %d, want 1", n)
	}
}

func TestStore_GetRecent_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		e := audit.Event{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Category:  audit.CategoryAdmin,
			EventType: audit.EventCollectorCreated,
			Details:   map[string]string{"seq": string(rune('a' + i))},
		}
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	got, err := store.GetRecent(ctx, 2)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len: got %d, want 2", len(got))
	}
	if got[0].Details["seq"] != "c" || got[1].Details["seq"] != "b" {
		t.Errorf("order: got %q, %q; want c, b", got[0].Details["seq"], got[1].Details["seq"])
	}
}

func TestStore_GetFailedLogins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	for _, e := range []audit.Event{
		{Category: audit.CategoryAuth, EventType: audit.EventLoginFailedWrongPassword, Timestamp: now, FailureReason: "wrong password"},
		{Category: audit.CategoryAuth, EventType: audit.EventLoginFailedUserNotFound, Timestamp: now.Add(-2 * time.Hour)},
		{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, Timestamp: now, Success: true},
	} {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	got, err := store.GetFailedLogins(ctx, now.Add(-time.Hour), 10)
	if err != nil {
		t.Fatalf("GetFailedLogins failed: %v", err)
	}
	if len(got) != 1 || got[0].FailureReason != "wrong password" {
		t.Errorf("got %+v, want the one recent failure", got)
	}
}

func TestStore_DeleteBefore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	for _, ts := range []time.Time{now.AddDate(0, 0, -100), now.AddDate(0, 0, -91), now} {
		if err := store.Log(ctx, audit.Event{Timestamp: ts, Category: audit.CategoryAuth, EventType: audit.EventLogout}); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	n, err := store.DeleteBefore(ctx, now.AddDate(0, 0, -90))
	if err != nil {
		t.Fatalf("DeleteBefore failed: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted: got %d, want 2", n)
	}
	if left, _ := store.Count(ctx, audit.QueryFilter{}); left != 1 {
		t.Errorf("remaining: got %d, want 1", left)
	}
}
