// internal/app/reports/reports.go
//
// Package reports computes the admin dashboard figures: per-day coverage
// and revenue, the weekly series, reconciled coverage with the list of
// missed households, monthly revenue, and the CSV export.
package reports

import (
	"context"
	"fmt"
	"math"

	"cloud.google.com/go/civil"
	collectionlogstore "github.com/dalemusser/greenlink/internal/app/store/collectionlogs"
	householdstore "github.com/dalemusser/greenlink/internal/app/store/households"
	"github.com/dalemusser/greenlink/internal/app/system/reconcile"
	"github.com/dalemusser/greenlink/internal/app/system/servicedate"
	"github.com/dalemusser/greenlink/internal/domain/models"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
)

// maxParallel bounds the concurrent queries of a series.
const maxParallel = 4

// Service reads households and logs to build reports.
type Service struct {
	households *householdstore.Store
	logs       *collectionlogstore.Store
}

func New(db *mongo.Database) *Service {
	return &Service{
		households: householdstore.New(db),
		logs:       collectionlogstore.New(db),
	}
}

// DayStats is the coverage and revenue of one day.
type DayStats struct {
	Day     civil.Date      `json:"day"`
	Total   int64           `json:"total"`
	Covered int64           `json:"covered"`
	Pending int64           `json:"pending"`
	Revenue decimal.Decimal `json:"revenue"`
}

// DayStats counts households served on day from that day's logs.
func (s *Service) DayStats(ctx context.Context, day civil.Date) (DayStats, error) {
	var (
		total   int64
		summary collectionlogstore.DaySummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.households.Count(gctx)
		if err != nil {
			return fmt.Errorf("count households: %w", err)
		}
		total = n
		return nil
	})
	g.Go(func() error {
		sum, err := s.logs.DaySummary(gctx, day)
		if err != nil {
			return fmt.Errorf("summarize %s: %w", day, err)
		}
		summary = sum
		return nil
	})
	if err := g.Wait(); err != nil {
		return DayStats{}, err
	}
	return DayStats{
		Day:     day,
		Total:   total,
		Covered: summary.Covered,
		Pending: max(total-summary.Covered, 0),
		Revenue: summary.Revenue,
	}, nil
}

// WeekSeries returns DayStats for the n days ending on end, oldest first.
func (s *Service) WeekSeries(ctx context.Context, end civil.Date, n int) ([]DayStats, error) {
	days := servicedate.DaysEnding(end, n)
	out := make([]DayStats, len(days))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for i, d := range days {
		g.Go(func() error {
			st, err := s.DayStats(gctx, d)
			if err != nil {
				return err
			}
			out[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// CoverageReport is the reconciled state of every household on one day.
type CoverageReport struct {
	Day     civil.Date         `json:"day"`
	Total   int                `json:"total"`
	Covered int                `json:"covered"`
	Percent int                `json:"percent"`
	Missed  []models.Household `json:"missed"`
}

// Coverage projects every household onto today. A household is covered
// when it reads as collected or paid, and missed while its collection
// reads as pending or not-available.
func (s *Service) Coverage(ctx context.Context, today civil.Date) (CoverageReport, error) {
	rep := CoverageReport{Day: today, Missed: []models.Household{}}
	err := s.households.ForEach(ctx, func(h models.Household) error {
		rep.Total++
		if reconcile.Covered(h, today) {
			rep.Covered++
		}
		if reconcile.Missed(h, today) {
			rep.Missed = append(rep.Missed, reconcile.Apply(h, today))
		}
		return nil
	})
	if err != nil {
		return CoverageReport{}, fmt.Errorf("scan households: %w", err)
	}
	rep.Percent = Percent(rep.Covered, rep.Total)
	return rep, nil
}

// Percent returns part/total as a whole percentage, rounded half away
// from zero. A zero total yields 0.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(total)))
}

// MonthlyRevenue returns collected and paid revenue for the n months
// ending with today's month, oldest first. Months without logs are zero.
func (s *Service) MonthlyRevenue(ctx context.Context, today civil.Date, n int) ([]collectionlogstore.MonthRevenue, error) {
	if n <= 0 {
		return []collectionlogstore.MonthRevenue{}, nil
	}
	first := servicedate.AddMonths(servicedate.MonthStart(today), -(n - 1))
	rows, err := s.logs.RevenueByMonth(ctx, first, today)
	if err != nil {
		return nil, fmt.Errorf("revenue by month: %w", err)
	}
	byMonth := make(map[string]decimal.Decimal, len(rows))
	for _, r := range rows {
		byMonth[r.Month] = r.Revenue
	}

	out := make([]collectionlogstore.MonthRevenue, n)
	for i := range out {
		m := servicedate.AddMonths(first, i)
		key := fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
		out[i] = collectionlogstore.MonthRevenue{Month: key, Revenue: byMonth[key]}
	}
	return out, nil
}

// Rows loads every household and projects it onto today for export.
func (s *Service) Rows(ctx context.Context, today civil.Date) ([]Row, error) {
	rows := []Row{}
	err := s.households.ForEach(ctx, func(h models.Household) error {
		rows = append(rows, RowFor(h, today))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan households: %w", err)
	}
	return rows, nil
}
