// internal/domain/models/route.go
package models

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Route binds one collector to one ward for one day.
// At most one active route exists per (ward, day).
type Route struct {
	ID              primitive.ObjectID `bson:"_id" json:"id"`
	Name            string             `bson:"name" json:"name"`
	CollectorID     primitive.ObjectID `bson:"collector_id" json:"collector_id"`
	CollectorName   string             `bson:"collector_name" json:"collector_name"`
	Ward            int                `bson:"ward" json:"ward"`
	Status          string             `bson:"status" json:"status"` // active | completed
	StartTime       string             `bson:"start_time" json:"start_time"`
	EndTime         string             `bson:"end_time" json:"end_time"`
	TotalHouses     int                `bson:"total_houses" json:"total_houses"`
	CollectedHouses int                `bson:"collected_houses" json:"collected_houses"`
	Day             civil.Date         `bson:"day" json:"day"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// RouteName is the display name of a route.
func RouteName(collectorName string, day civil.Date) string {
	return fmt.Sprintf("Route - %s - %s", collectorName, day)
}

// RouteStartTime is the display start time of a route.
func RouteStartTime(day civil.Date) string {
	return day.String() + " 08:00 AM"
}

// RouteClosedSuffix follows the route's day in the end time of a route
// closed by the day rollover.
const RouteClosedSuffix = " 11:59 PM"

// RouteEndTime is the end time stamped on a route of day that was still
// active when the day ended.
func RouteEndTime(day civil.Date) string {
	return day.String() + RouteClosedSuffix
}
