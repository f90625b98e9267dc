// internal/app/bootstrap/appconfig.go
package bootstrap

import (
	"time"

	"github.com/dalemusser/greenlink/internal/app/system/collections"
)

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// Values come from environment variables (GREENLINK_*), configuration
// files, or command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig
// covers the framework side: ports, TLS, log level, CORS and body limits.
// Everything Green-link needs to know about its own domain lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: greenlink-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// TimeZone is the IANA zone that decides what "today" means for
	// routes, collection logs and reports.
	TimeZone string

	// Collections overrides the four configurable collection names.
	Collections collections.Names

	// Audit logging: "all", "db", "log" or "off" per category.
	AuditLogAuth   string
	AuditLogAdmin  string
	AuditRetention time.Duration // zero keeps events forever

	// RouteRolloverInterval is how often stale active routes are closed.
	RouteRolloverInterval time.Duration

	// ListLimit is the default page size for list endpoints.
	ListLimit int
}
