// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/greenlink/internal/app/store/audit"
	"github.com/dalemusser/greenlink/internal/app/system/auth"
	"github.com/dalemusser/greenlink/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destinations for a category of events.
const (
	All = "all" // MongoDB + zap
	DB  = "db"  // MongoDB only
	Log = "log" // zap only
	Off = "off"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls sign-in and sign-out events.
	Auth string
	// Admin controls household, collector and route changes.
	Admin string
}

// Logger provides convenience methods for logging audit events.
// It logs to MongoDB (via audit.Store) and/or structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.TargetID != nil {
		fields = append(fields, zap.String("target_id", event.TargetID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// A nil Logger is a no-op so handlers can be tested without one.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = All
	}
	if setting == "" {
		setting = All
	}
	if setting == Off {
		return
	}

	if setting == All || setting == Log {
		l.logToZap(event)
	}
	if (setting == All || setting == DB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func authEvent(r *http.Request, eventType string, userID *primitive.ObjectID, success bool, reason string, details map[string]string) audit.Event {
	return audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     eventType,
		UserID:        userID,
		IP:            ratelimit.ClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       success,
		FailureReason: reason,
		Details:       details,
	}
}

func oidPtr(hex string) *primitive.ObjectID {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return nil
	}
	return &id
}

// --- Authentication Events ---

// LoginSuccess logs a successful sign-in. loginID is the email or phone used.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, role, loginID string) {
	l.Log(ctx, authEvent(r, audit.EventLoginSuccess, &userID, true, "",
		map[string]string{"role": role, "login_id": loginID}))
}

func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, attemptedLoginID string) {
	l.Log(ctx, authEvent(r, audit.EventLoginFailedUserNotFound, nil, false, "user not found",
		map[string]string{"attempted_login_id": attemptedLoginID}))
}

func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID, loginID string) {
	l.Log(ctx, authEvent(r, audit.EventLoginFailedWrongPassword, &userID, false, "wrong password",
		map[string]string{"login_id": loginID}))
}

func (l *Logger) LoginFailedUserDisabled(ctx context.Context, r *http.Request, userID primitive.ObjectID, loginID string) {
	l.Log(ctx, authEvent(r, audit.EventLoginFailedUserDisabled, &userID, false, "user disabled",
		map[string]string{"login_id": loginID}))
}

func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, loginID string) {
	l.Log(ctx, authEvent(r, audit.EventLoginFailedRateLimit, nil, false, "rate limit exceeded",
		map[string]string{"login_id": loginID}))
}

// Logout logs a sign-out. userIDStr comes from the SessionUser.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userIDStr, role string) {
	l.Log(ctx, authEvent(r, audit.EventLogout, oidPtr(userIDStr), true, "",
		map[string]string{"role": role}))
}

// --- Admin Events ---

// adminEvent fills the actor from the signed-in user on r.
func adminEvent(r *http.Request, eventType string, target primitive.ObjectID, details map[string]string) audit.Event {
	e := audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: eventType,
		TargetID:  &target,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details:   details,
	}
	if u, ok := auth.CurrentUser(r); ok {
		e.ActorID = oidPtr(u.ID)
	}
	return e
}

func (l *Logger) HouseholdCreated(ctx context.Context, r *http.Request, id primitive.ObjectID, residentName string, ward int) {
	l.Log(ctx, adminEvent(r, audit.EventHouseholdCreated, id,
		map[string]string{"resident_name": residentName, "ward": strconv.Itoa(ward)}))
}

func (l *Logger) HouseholdUpdated(ctx context.Context, r *http.Request, id primitive.ObjectID, residentName string) {
	l.Log(ctx, adminEvent(r, audit.EventHouseholdUpdated, id,
		map[string]string{"resident_name": residentName}))
}

func (l *Logger) HouseholdDeleted(ctx context.Context, r *http.Request, id primitive.ObjectID) {
	l.Log(ctx, adminEvent(r, audit.EventHouseholdDeleted, id, nil))
}

func (l *Logger) CollectorCreated(ctx context.Context, r *http.Request, id primitive.ObjectID, name string) {
	l.Log(ctx, adminEvent(r, audit.EventCollectorCreated, id, map[string]string{"name": name}))
}

func (l *Logger) CollectorUpdated(ctx context.Context, r *http.Request, id primitive.ObjectID, name string) {
	l.Log(ctx, adminEvent(r, audit.EventCollectorUpdated, id, map[string]string{"name": name}))
}

func (l *Logger) CollectorDeleted(ctx context.Context, r *http.Request, id primitive.ObjectID) {
	l.Log(ctx, adminEvent(r, audit.EventCollectorDeleted, id, nil))
}

// RouteAssigned logs a new route; day is YYYY-MM-DD.
func (l *Logger) RouteAssigned(ctx context.Context, r *http.Request, routeID, collectorID primitive.ObjectID, ward int, day string) {
	l.Log(ctx, adminEvent(r, audit.EventRouteAssigned, routeID, map[string]string{
		"collector_id": collectorID.Hex(),
		"ward":         strconv.Itoa(ward),
		"day":          day,
	}))
}

func (l *Logger) RouteDeleted(ctx context.Context, r *http.Request, routeID primitive.ObjectID, ward int) {
	l.Log(ctx, adminEvent(r, audit.EventRouteDeleted, routeID,
		map[string]string{"ward": strconv.Itoa(ward)}))
}
