// Package collections holds the MongoDB collection names the stores use.
//
// Names come from configuration (GREENLINK_*_COLLECTION for the server,
// GREENLINK_COLLECTION_* for the maintenance CLI) and are set once with
// Configure during startup. Stores read them when constructed.
package collections

import "sync"

// Default collection names (used if Configure is not called).
const (
	DefaultHouseholds = "households"
	DefaultCollectors = "collectors"
	DefaultRoutes     = "routes"
	DefaultLogs       = "collection_logs"

	// Users and AuditEvents are not configurable.
	Users       = "users"
	AuditEvents = "audit_events"
)

// Names holds the four configurable collection names.
// Blank values are ignored (defaults are kept).
type Names struct {
	Households string
	Collectors string
	Routes     string
	Logs       string
}

var (
	mu      sync.RWMutex
	current = defaults()
)

func defaults() Names {
	return Names{
		Households: DefaultHouseholds,
		Collectors: DefaultCollectors,
		Routes:     DefaultRoutes,
		Logs:       DefaultLogs,
	}
}

// Configure sets collection names. Blank fields keep the current value.
func Configure(n Names) {
	mu.Lock()
	defer mu.Unlock()
	if n.Households != "" {
		current.Households = n.Households
	}
	if n.Collectors != "" {
		current.Collectors = n.Collectors
	}
	if n.Routes != "" {
		current.Routes = n.Routes
	}
	if n.Logs != "" {
		current.Logs = n.Logs
	}
}

// Reset restores the default names. Useful for testing.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	current = defaults()
}

// Current returns the configured names.
func Current() Names {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Households returns the households collection name.
func Households() string { return Current().Households }

// Collectors returns the collectors collection name.
func Collectors() string { return Current().Collectors }

// Routes returns the routes collection name.
func Routes() string { return Current().Routes }

// Logs returns the collection logs collection name.
func Logs() string { return Current().Logs }

// All returns every collection the app owns, configurable ones first.
func All() []string {
	n := Current()
	return []string{n.Households, n.Collectors, n.Routes, n.Logs, Users, AuditEvents}
}
