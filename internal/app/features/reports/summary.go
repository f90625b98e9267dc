// internal/app/features/reports/summary.go
package reports

import (
	"net/http"

	"github.com/dalemusser/greenlink/internal/app/system/jsonio"
	"github.com/dalemusser/greenlink/internal/app/system/timeouts"
	"github.com/dalemusser/greenlink/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
)

// ServeDay handles GET /reports/day?date=.
func (h *Handler) ServeDay(w http.ResponseWriter, r *http.Request) {
	day, err := h.Cal.ParseOrToday(query.Get(r, "date"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse date", err, "Date must be YYYY-MM-DD.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "day report")
	defer cancel()

	stats, err := h.Reports.DayStats(ctx, day)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "day report", err, "A database error occurred.")
		return
	}
	jsonio.Write(w, http.StatusOK, stats)
}

// ServeWeek handles GET /reports/week?date=: the seven days ending on date.
func (h *Handler) ServeWeek(w http.ResponseWriter, r *http.Request) {
	end, err := h.Cal.ParseOrToday(query.Get(r, "date"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse date", err, "Date must be YYYY-MM-DD.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "week report")
	defer cancel()

	series, err := h.Reports.WeekSeries(ctx, end, weekDays)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "week report", err, "A database error occurred.")
		return
	}
	jsonio.Write(w, http.StatusOK, series)
}

type coverageResponse struct {
	Day     string               `json:"day"`
	Total   int                  `json:"total"`
	Covered int                  `json:"covered"`
	Percent int                  `json:"percent"`
	Missed  []viewdata.Household `json:"missed"`
}

// ServeCoverage handles GET /reports/coverage for today.
func (h *Handler) ServeCoverage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "coverage report")
	defer cancel()

	today := h.Cal.Today()
	rep, err := h.Reports.Coverage(ctx, today)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "coverage report", err, "A database error occurred.")
		return
	}
	jsonio.Write(w, http.StatusOK, coverageResponse{
		Day:     rep.Day.String(),
		Total:   rep.Total,
		Covered: rep.Covered,
		Percent: rep.Percent,
		Missed:  viewdata.Households(rep.Missed, today),
	})
}

// ServeRevenue handles GET /reports/revenue: collected and paid amounts
// for the last six months, oldest first.
func (h *Handler) ServeRevenue(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "revenue report")
	defer cancel()

	months, err := h.Reports.MonthlyRevenue(ctx, h.Cal.Today(), revenueMonths)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "revenue report", err, "A database error occurred.")
		return
	}
	jsonio.Write(w, http.StatusOK, months)
}
