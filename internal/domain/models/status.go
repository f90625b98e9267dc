// internal/domain/models/status.go
package models

// Sentinels stored in reference fields.
const (
	// Unassigned is the assigned_collector value of a household with no collector.
	Unassigned = "unassigned"
	// SystemCollector is the collector_id of logs written by resident self-service.
	SystemCollector = "SYSTEM"

	SystemCollectorName = "Resident Portal"
	OnlineGateway       = "Online Gateway"
)

// Household payment status.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentOverdue = "overdue"
)

// Household collection status.
const (
	CollectionPending      = "pending"
	CollectionCollected    = "collected"
	CollectionNotAvailable = "not-available"
)

// Payment modes.
const (
	PaymentModeNone    = "none"
	PaymentModeOffline = "offline"
	PaymentModeOnline  = "online"
)

// Collector status.
const (
	CollectorActive   = "active"
	CollectorInactive = "inactive"
)

// Route status.
const (
	RouteActive    = "active"
	RouteCompleted = "completed"
)

// Collection log status. A log also uses CollectionCollected and
// CollectionNotAvailable.
const (
	LogSkipped = "skipped"
	LogPaid    = "paid"
)

// Account roles and status.
const (
	RoleAdmin     = "admin"
	RoleCollector = "collector"
	RoleHousehold = "household"

	AccountActive   = "active"
	AccountDisabled = "disabled"
)

// PaymentStatuses lists the valid household payment statuses.
var PaymentStatuses = []string{PaymentPending, PaymentPaid, PaymentOverdue}

// CollectionStatuses lists the valid household collection statuses.
var CollectionStatuses = []string{CollectionPending, CollectionCollected, CollectionNotAvailable}

// PaymentModes lists the valid payment modes.
var PaymentModes = []string{PaymentModeNone, PaymentModeOffline, PaymentModeOnline}

// LogStatuses lists the valid collection log statuses.
var LogStatuses = []string{CollectionCollected, CollectionNotAvailable, LogSkipped, LogPaid}

// OneOf reports whether v is in set.
func OneOf(v string, set []string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
