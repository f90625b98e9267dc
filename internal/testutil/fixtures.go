package testutil

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dalemusser/greenlink/internal/app/system/collections"
	"github.com/dalemusser/greenlink/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// TestPassword is the password of every account created by Fixtures.
const TestPassword = "password123"

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to insert test %s: %v", coll, err)
	}
}

func (f *Fixtures) hash() string {
	f.t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("bcrypt: %v", err)
	}
	return string(h)
}

// CreateAccount creates a login account with TestPassword.
func (f *Fixtures) CreateAccount(ctx context.Context, id primitive.ObjectID, fullName, email, role, status string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:           id,
		FullName:     fullName,
		Email:        email,
		EmailCI:      text.Fold(email),
		PasswordHash: f.hash(),
		Role:         role,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.insert(ctx, collections.Users, u)
	return u
}

// CreateAdmin creates an active admin account.
func (f *Fixtures) CreateAdmin(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateAccount(ctx, primitive.NewObjectID(), fullName, email, models.RoleAdmin, models.AccountActive)
}

// CreateCollector creates an active collector covering wards, plus its
// login account (same _id, email derived from the phone).
func (f *Fixtures) CreateCollector(ctx context.Context, name, phone string, wards ...int) models.Collector {
	f.t.Helper()

	now := time.Now().UTC()
	c := models.Collector{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Phone:     phone,
		Email:     phone + "@collectors.test",
		Wards:     wards,
		Status:    models.CollectorActive,
		Avatar:    models.AvatarFor(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, collections.Collectors(), c)
	f.CreateAccount(ctx, c.ID, name, c.Email, models.RoleCollector, models.AccountActive)
	return c
}

// CreateHousehold creates a pending, unassigned household in ward.
func (f *Fixtures) CreateHousehold(ctx context.Context, residentName string, ward int, phone string) models.Household {
	f.t.Helper()
	return f.CreateHouseholdWith(ctx, models.Household{
		ResidentName: residentName,
		Address:      "Test Lane, Ward " + strconv.Itoa(ward),
		Ward:         ward,
		Phone:        phone,
	})
}

// CreateHouseholdWith inserts h, filling blank fields with defaults.
func (f *Fixtures) CreateHouseholdWith(ctx context.Context, h models.Household) models.Household {
	f.t.Helper()

	now := time.Now().UTC()
	if h.ID.IsZero() {
		h.ID = primitive.NewObjectID()
	}
	h.ResidentNameCI = text.Fold(h.ResidentName)
	if h.MonthlyFee.IsZero() {
		h.MonthlyFee = decimal.NewFromInt(100)
	}
	if h.PaymentStatus == "" {
		h.PaymentStatus = models.PaymentPending
	}
	if h.CollectionStatus == "" {
		h.CollectionStatus = models.CollectionPending
	}
	if h.AssignedCollector == "" {
		h.AssignedCollector = models.Unassigned
	}
	if h.PaymentMode == "" {
		h.PaymentMode = models.PaymentModeNone
	}
	h.CreatedAt, h.UpdatedAt = now, now
	f.insert(ctx, collections.Households(), h)
	return h
}

// CreateRoute creates a route for collector on ward and day.
func (f *Fixtures) CreateRoute(ctx context.Context, c models.Collector, ward int, day civil.Date, status string) models.Route {
	f.t.Helper()

	now := time.Now().UTC()
	r := models.Route{
		ID:            primitive.NewObjectID(),
		Name:          models.RouteName(c.Name, day),
		CollectorID:   c.ID,
		CollectorName: c.Name,
		Ward:          ward,
		Status:        status,
		StartTime:     models.RouteStartTime(day),
		Day:           day,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	f.insert(ctx, collections.Routes(), r)
	return r
}

// CreateLog inserts l, filling id, timestamps and a zero amount.
func (f *Fixtures) CreateLog(ctx context.Context, l models.CollectionLog) models.CollectionLog {
	f.t.Helper()

	now := time.Now().UTC()
	if l.ID.IsZero() {
		l.ID = primitive.NewObjectID()
	}
	if l.Timestamp.IsZero() {
		l.Timestamp = now
	}
	if l.PaymentMode == "" {
		l.PaymentMode = models.PaymentModeNone
	}
	l.CreatedAt, l.UpdatedAt = now, now
	f.insert(ctx, collections.Logs(), l)
	return l
}

// TimeAt returns a fixed UTC instant i minutes after 2026-10-15 08:00.
// Use it for records whose order matters.
func TimeAt(i int) time.Time {
	return time.Date(2026, 10, 15, 8, i, 0, 0, time.UTC)
}
