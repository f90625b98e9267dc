package maint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	collectionlogstore "github.com/dalemusser/greenlink/internal/app/store/collectionlogs"
	routestore "github.com/dalemusser/greenlink/internal/app/store/routes"
	"github.com/dalemusser/greenlink/internal/domain/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PopulateDays is how many days, ending today, PopulateLogs fills.
const PopulateDays = 3

// populateStatuses weights collected three to one against each miss.
var populateStatuses = []string{
	models.CollectionCollected, models.CollectionCollected, models.CollectionCollected,
	models.CollectionNotAvailable, models.LogSkipped,
}

// PopulateReport counts what PopulateLogs wrote.
type PopulateReport struct {
	Routes  int
	Logs    int
	Skipped int
}

// PopulateLogs writes sample routes and collection logs for the last
// PopulateDays days. Each collector gets one route per ward it has
// assigned households in; today's routes stay active, earlier ones are
// completed. About one household in ten is left without a log.
func (t *Tool) PopulateLogs(ctx context.Context) (PopulateReport, error) {
	var rep PopulateReport

	collectors, err := t.collectors.ListByCreation(ctx)
	if err != nil {
		return rep, fmt.Errorf("list collectors: %w", err)
	}
	households, err := t.households.ListAll(ctx)
	if err != nil {
		return rep, fmt.Errorf("list households: %w", err)
	}
	if len(collectors) == 0 || len(households) == 0 {
		t.Log.Warn("no collectors or households found; run seed first")
		return rep, nil
	}
	t.printf("Found %d collectors and %d households.\n", len(collectors), len(households))

	byCollector := map[string][]models.Household{}
	for _, h := range households {
		byCollector[h.AssignedCollector] = append(byCollector[h.AssignedCollector], h)
	}

	for _, day := range t.Cal.DaysBack(PopulateDays) {
		active := day == t.Cal.Today()
		for _, c := range collectors {
			assigned := byCollector[c.ID.Hex()]
			if len(assigned) == 0 {
				continue
			}
			for ward, houses := range groupByWard(assigned) {
				if err := t.populateRoute(ctx, &rep, c, ward, day, active, len(houses)); err != nil {
					return rep, err
				}
				for _, h := range houses {
					if err := t.populateLog(ctx, &rep, c, h, day); err != nil {
						return rep, err
					}
				}
			}
		}
	}

	t.Log.Info("population complete",
		zap.Int("routes", rep.Routes),
		zap.Int("logs", rep.Logs),
		zap.Int("skipped", rep.Skipped))
	t.printf("Created %d routes and %d logs.\n", rep.Routes, rep.Logs)
	return rep, nil
}

func groupByWard(houses []models.Household) map[int][]models.Household {
	out := map[int][]models.Household{}
	for _, h := range houses {
		out[h.Ward] = append(out[h.Ward], h)
	}
	return out
}

func (t *Tool) populateRoute(ctx context.Context, rep *PopulateReport, c models.Collector, ward int, day civil.Date, active bool, total int) error {
	r := models.Route{
		Name:            fmt.Sprintf("%s (Ward %d)", models.RouteName(c.Name, day), ward),
		CollectorID:     c.ID,
		CollectorName:   c.Name,
		Ward:            ward,
		Status:          models.RouteCompleted,
		StartTime:       models.RouteStartTime(day),
		EndTime:         day.String() + " 02:30 PM",
		TotalHouses:     total,
		CollectedHouses: total * 4 / 5,
		Day:             day,
	}
	if active {
		r.Status = models.RouteActive
		r.EndTime = ""
	}
	if _, err := t.routes.Create(ctx, r); err != nil {
		if errors.Is(err, routestore.ErrWardAlreadyAssigned) {
			t.Log.Warn("ward already has an active route; skipped",
				zap.Int("ward", ward), zap.String("day", day.String()), zap.String("collector", c.Name))
			rep.Skipped++
			return nil
		}
		return fmt.Errorf("create route: %w", err)
	}
	rep.Routes++
	return nil
}

func (t *Tool) populateLog(ctx context.Context, rep *PopulateReport, c models.Collector, h models.Household, day civil.Date) error {
	if t.Rand.Float64() > 0.9 {
		return nil
	}
	status := populateStatuses[t.Rand.IntN(len(populateStatuses))]
	amount := decimal.Zero
	if status == models.CollectionCollected {
		amount = h.MonthlyFee
	}
	at := time.Date(day.Year, day.Month, day.Day, 8+t.Rand.IntN(6), 10+t.Rand.IntN(40), 0, 0, t.Cal.Location())

	_, err := t.logs.Insert(ctx, models.CollectionLog{
		CollectorID:     c.ID.Hex(),
		CollectorName:   c.Name,
		HouseholdID:     h.ID,
		ResidentName:    h.ResidentName,
		Day:             day,
		Timestamp:       at.UTC(),
		Location:        h.Address,
		Status:          status,
		AmountCollected: amount,
		PaymentMode:     models.PaymentModeNone,
	})
	if errors.Is(err, collectionlogstore.ErrDuplicate) {
		rep.Skipped++
		return nil
	}
	if err != nil {
		return fmt.Errorf("create log: %w", err)
	}
	rep.Logs++
	return nil
}

// FixAssignments points every household at the first collector, in
// creation order, whose wards include its ward. Households with no such
// collector are reported and left alone. It returns how many changed.
func (t *Tool) FixAssignments(ctx context.Context) (int, error) {
	collectors, err := t.collectors.ListByCreation(ctx)
	if err != nil {
		return 0, fmt.Errorf("list collectors: %w", err)
	}

	updated, seen := 0, 0
	err = t.households.ForEach(ctx, func(h models.Household) error {
		seen++
		c := firstCovering(collectors, h.Ward)
		if c == nil {
			t.Log.Warn("no collector covers ward",
				zap.Int("ward", h.Ward), zap.String("household", h.ResidentName))
			return nil
		}
		if h.AssignedCollector == c.ID.Hex() {
			return nil
		}
		if err := t.households.AssignOne(ctx, h.ID, c.ID.Hex()); err != nil {
			return fmt.Errorf("assign %s: %w", h.ID.Hex(), err)
		}
		t.printf("  %s (Ward %d) -> %s\n", h.ResidentName, h.Ward, c.Name)
		updated++
		return nil
	})
	if err != nil {
		return updated, err
	}

	t.printf("Assignment sync complete: %d of %d households re-assigned.\n", updated, seen)
	return updated, nil
}

// SyncCollectorCounts sets each collector's total to the number of its
// logs with status collected or paid.
func (t *Tool) SyncCollectorCounts(ctx context.Context) (map[string]int64, error) {
	collectors, err := t.collectors.ListByCreation(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collectors: %w", err)
	}
	counts, err := t.logs.CountsByCollector(ctx)
	if err != nil {
		return nil, fmt.Errorf("count logs: %w", err)
	}

	out := make(map[string]int64, len(collectors))
	for _, c := range collectors {
		n := counts[c.ID.Hex()]
		if err := t.collectors.SetTotalCollections(ctx, c.ID, n); err != nil {
			return out, fmt.Errorf("set total for %s: %w", c.Name, err)
		}
		out[c.ID.Hex()] = n
		t.printf("  %s: %d collections\n", c.Name, n)
	}
	t.printf("Sync complete.\n")
	return out, nil
}
