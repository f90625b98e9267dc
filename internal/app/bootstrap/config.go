// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/greenlink/internal/app/system/auditlog"
	"github.com/dalemusser/greenlink/internal/app/system/collections"
	"github.com/dalemusser/greenlink/internal/app/system/paging"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// devSessionKey is the default signing key. ValidateConfig rejects it in prod.
const devSessionKey = "dev-only-change-me-please-0123456789ABCDEF"

// minSessionKeyLen is the shortest signing key accepted in prod.
const minSessionKeyLen = 32

// appConfigKeys defines the configuration keys for Green-link.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: GREENLINK_MONGO_URI, GREENLINK_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "green_link", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: devSessionKey, Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "greenlink-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "720h", Desc: "Session cookie lifetime (e.g., 24h, 720h)"},

	{Name: "time_zone", Default: "Asia/Kolkata", Desc: "IANA time zone that defines the service day"},

	// Collection names
	{Name: "households_collection", Default: collections.DefaultHouseholds, Desc: "Households collection name"},
	{Name: "collectors_collection", Default: collections.DefaultCollectors, Desc: "Collectors collection name"},
	{Name: "routes_collection", Default: collections.DefaultRoutes, Desc: "Routes collection name"},
	{Name: "logs_collection", Default: collections.DefaultLogs, Desc: "Collection logs collection name"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: auditlog.All, Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: auditlog.All, Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_retention", Default: "2160h", Desc: "How long audit events are kept (0 keeps them forever)"},

	// Background tasks
	{Name: "route_rollover_interval", Default: "15m", Desc: "How often routes from earlier days are completed"},

	{Name: "list_limit", Default: paging.DefaultLimit, Desc: "Default page size for list endpoints"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, GREENLINK_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "GREENLINK", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 30*24*time.Hour),

		TimeZone: appValues.String("time_zone"),

		Collections: collections.Names{
			Households: appValues.String("households_collection"),
			Collectors: appValues.String("collectors_collection"),
			Routes:     appValues.String("routes_collection"),
			Logs:       appValues.String("logs_collection"),
		},

		AuditLogAuth:   appValues.String("audit_log_auth"),
		AuditLogAdmin:  appValues.String("audit_log_admin"),
		AuditRetention: appValues.Duration("audit_retention", 90*24*time.Hour),

		RouteRolloverInterval: appValues.Duration("route_rollover_interval", 15*time.Minute),

		ListLimit: appValues.Int("list_limit"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// It catches a malformed Mongo URI or unknown time zone before any
// connection is attempted, and refuses the development session key in
// production.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return errors.New("mongo_database is required")
	}
	if _, err := time.LoadLocation(appCfg.TimeZone); err != nil {
		return fmt.Errorf("invalid time_zone %q: %w", appCfg.TimeZone, err)
	}
	for name, v := range map[string]string{
		"audit_log_auth":  appCfg.AuditLogAuth,
		"audit_log_admin": appCfg.AuditLogAdmin,
	} {
		switch v {
		case "", auditlog.All, auditlog.DB, auditlog.Log, auditlog.Off:
		default:
			return fmt.Errorf("%s must be one of all, db, log, off (got %q)", name, v)
		}
	}
	if appCfg.ListLimit < 1 || appCfg.ListLimit > paging.MaxLimit {
		return fmt.Errorf("list_limit must be between 1 and %d", paging.MaxLimit)
	}

	if coreCfg != nil && coreCfg.Env == "prod" {
		if appCfg.SessionKey == devSessionKey || len(appCfg.SessionKey) < minSessionKeyLen {
			return fmt.Errorf("session_key must be at least %d characters and not the development default in prod", minSessionKeyLen)
		}
	}
	return nil
}
