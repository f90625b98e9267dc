// internal/app/features/auditlog/types.go
package auditlog

import (
	"time"

	"github.com/dalemusser/greenlink/internal/app/store/audit"
)

// listItem is one audit event with actor and subject names resolved.
type listItem struct {
	ID         string            `json:"id"`
	Timestamp  time.Time         `json:"timestamp"`
	Category   string            `json:"category"`
	EventType  string            `json:"event_type"`
	ActorName  string            `json:"actor_name,omitempty"`  // from ActorID
	TargetName string            `json:"target_name,omitempty"` // from UserID, else TargetID
	IP         string            `json:"ip"`
	Success    bool              `json:"success"`
	Reason     string            `json:"failure_reason,omitempty"`
	Details    map[string]string `json:"details,omitempty"`
}

type listResponse struct {
	Items      []listItem `json:"items"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	TotalPages int        `json:"total_pages"`
	EventTypes []string   `json:"event_types"`
}

// eventTypesForCategory returns the event types for a given category.
// If category is empty, returns all event types.
func eventTypesForCategory(category string) []string {
	authEvents := []string{
		audit.EventLoginSuccess,
		audit.EventLoginFailedUserNotFound,
		audit.EventLoginFailedWrongPassword,
		audit.EventLoginFailedUserDisabled,
		audit.EventLoginFailedRateLimit,
		audit.EventLogout,
	}

	adminEvents := []string{
		audit.EventHouseholdCreated,
		audit.EventHouseholdUpdated,
		audit.EventHouseholdDeleted,
		audit.EventCollectorCreated,
		audit.EventCollectorUpdated,
		audit.EventCollectorDeleted,
		audit.EventRouteAssigned,
		audit.EventRouteDeleted,
	}

	switch category {
	case audit.CategoryAuth:
		return authEvents
	case audit.CategoryAdmin:
		return adminEvents
	case "":
		all := make([]string, 0, len(authEvents)+len(adminEvents))
		all = append(all, authEvents...)
		return append(all, adminEvents...)
	default:
		return nil
	}
}
