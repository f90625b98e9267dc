// Package assignments binds collectors to wards for a day.
//
// A route is the record that a collector covers one ward on one day. At
// most one active route exists per (ward, day). Creating a route points
// every household in the ward at the collector; deleting it points them
// back at "unassigned".
package assignments

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/civil"
	collectorstore "github.com/dalemusser/greenlink/internal/app/store/collectors"
	householdstore "github.com/dalemusser/greenlink/internal/app/store/households"
	routestore "github.com/dalemusser/greenlink/internal/app/store/routes"
	"github.com/dalemusser/greenlink/internal/app/system/txn"
	"github.com/dalemusser/greenlink/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	ErrCollectorNotFound   = errors.New("collector not found")
	ErrRouteNotFound       = errors.New("route not found")
	ErrWardAlreadyAssigned = routestore.ErrWardAlreadyAssigned
	ErrInvalidWard         = errors.New("ward must be a positive number")
)

// Service runs the assignment workflow against one database.
type Service struct {
	client     *mongo.Client
	households *householdstore.Store
	collectors *collectorstore.Store
	routes     *routestore.Store
	log        *zap.Logger
}

func New(db *mongo.Database, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		client:     db.Client(),
		households: householdstore.New(db),
		collectors: collectorstore.New(db),
		routes:     routestore.New(db),
		log:        log,
	}
}

// AssignRoute creates the active route for (ward, day) and assigns every
// household in the ward to the collector. A collector whose wards do not
// include ward is still assigned; the mismatch is logged.
func (s *Service) AssignRoute(ctx context.Context, collectorID primitive.ObjectID, ward int, day civil.Date) (models.Route, error) {
	if ward < 1 {
		return models.Route{}, ErrInvalidWard
	}

	c, err := s.collectors.GetByID(ctx, collectorID)
	if err != nil {
		if errors.Is(err, collectorstore.ErrNotFound) {
			return models.Route{}, ErrCollectorNotFound
		}
		return models.Route{}, fmt.Errorf("load collector: %w", err)
	}
	if !c.Covers(ward) {
		s.log.Warn("assigning collector outside their wards",
			zap.String("collector_id", c.ID.Hex()),
			zap.Int("ward", ward),
			zap.Ints("wards", c.Wards))
	}

	existing, err := s.routes.ActiveForWard(ctx, ward, day)
	if err != nil {
		return models.Route{}, fmt.Errorf("check active route: %w", err)
	}
	if existing != nil {
		return models.Route{}, ErrWardAlreadyAssigned
	}

	total, err := s.households.CountByWard(ctx, ward)
	if err != nil {
		return models.Route{}, fmt.Errorf("count households: %w", err)
	}

	route := models.Route{
		Name:          models.RouteName(c.Name, day),
		CollectorID:   c.ID,
		CollectorName: c.Name,
		Ward:          ward,
		Status:        models.RouteActive,
		StartTime:     models.RouteStartTime(day),
		TotalHouses:   int(total),
		Day:           day,
	}

	var created models.Route
	err = txn.Run(ctx, s.client, s.log, func(ctx context.Context) error {
		r, err := s.routes.Create(ctx, route)
		if err != nil {
			return err
		}
		created = r
		n, err := s.households.AssignWard(ctx, ward, c.ID.Hex())
		if err != nil {
			return fmt.Errorf("assign households: %w", err)
		}
		s.log.Info("route assigned",
			zap.String("route_id", r.ID.Hex()),
			zap.String("collector_id", c.ID.Hex()),
			zap.Int("ward", ward),
			zap.String("day", day.String()),
			zap.Int64("households", n))
		return nil
	})
	if err != nil {
		if errors.Is(err, routestore.ErrWardAlreadyAssigned) {
			return models.Route{}, ErrWardAlreadyAssigned
		}
		return models.Route{}, fmt.Errorf("assign route: %w", err)
	}
	return created, nil
}

// DeleteRoute removes the route and unassigns every household in ward.
// A zero ward means the route's own ward.
func (s *Service) DeleteRoute(ctx context.Context, routeID primitive.ObjectID, ward int) error {
	r, err := s.routes.GetByID(ctx, routeID)
	if err != nil {
		if errors.Is(err, routestore.ErrNotFound) {
			return ErrRouteNotFound
		}
		return fmt.Errorf("load route: %w", err)
	}
	if ward == 0 {
		ward = r.Ward
	}

	err = txn.Run(ctx, s.client, s.log, func(ctx context.Context) error {
		if err := s.routes.Delete(ctx, routeID); err != nil {
			return err
		}
		if _, err := s.households.AssignWard(ctx, ward, models.Unassigned); err != nil {
			return fmt.Errorf("unassign households: %w", err)
		}
		return nil
	})
	if errors.Is(err, routestore.ErrNotFound) {
		return ErrRouteNotFound
	}
	if err != nil {
		return fmt.Errorf("delete route: %w", err)
	}
	return nil
}

// DailyAssignment returns the collector's first route on day, or nil.
func (s *Service) DailyAssignment(ctx context.Context, collectorID primitive.ObjectID, day civil.Date) (*models.Route, error) {
	r, err := s.routes.FirstForCollectorOnDay(ctx, collectorID, day)
	if err != nil {
		return nil, fmt.Errorf("daily assignment: %w", err)
	}
	return r, nil
}

// CompleteStaleRoutes closes active routes from days before today so the
// ward is free for a new assignment.
func (s *Service) CompleteStaleRoutes(ctx context.Context, today civil.Date) (int64, error) {
	n, err := s.routes.CompleteBefore(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("complete stale routes: %w", err)
	}
	return n, nil
}
