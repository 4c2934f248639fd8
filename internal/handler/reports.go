package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/restodash/api/internal/catalog"
	"github.com/restodash/api/internal/enum"
	"github.com/restodash/api/internal/order"
	"github.com/restodash/api/internal/report"
)

// ReportSource defines the dashboard methods needed by report handlers.
// Satisfied by *service.Dashboard; narrow interface for testability.
type ReportSource interface {
	Orders() ([]order.Order, catalog.Menu)
	SelectedDay() string
}

// ReportsHandler handles report endpoints.
type ReportsHandler struct {
	src ReportSource
	loc *time.Location
}

// NewReportsHandler creates a new ReportsHandler. Dates are read in loc; nil
// means time.Local.
func NewReportsHandler(src ReportSource, loc *time.Location) *ReportsHandler {
	if loc == nil {
		loc = time.Local
	}
	return &ReportsHandler{src: src, loc: loc}
}

// RegisterRoutes registers report endpoints. Mounted at /reports.
func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Summary)
	r.Get("/sales", h.Sales)
}

// --- Response types ---

type periodSalesResponse struct {
	Period string `json:"period"`
	Orders int    `json:"orders"`
	Total  string `json:"total"`
}

type countResponse struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type revenueResponse struct {
	Name  string `json:"name"`
	Total string `json:"total"`
}

type statusResponse struct {
	Cancelled int            `json:"cancelled"`
	Completed int            `json:"completed"`
	ByStatus  map[string]int `json:"byStatus"`
}

type summaryResponse struct {
	Orders    int                   `json:"orders"`
	Revenue   string                `json:"revenue"`
	Sales     []periodSalesResponse `json:"sales"`
	TopDishes []countResponse       `json:"topDishes"`
	Tables    []countResponse       `json:"tables"`
	Employees []revenueResponse     `json:"employees"`
	Status    statusResponse        `json:"status"`
	PeakHours []countResponse       `json:"peakHours"`
}

// --- Handlers ---

// Summary handles GET /reports with every aggregate of the reports view.
func (h *ReportsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	s, ok := h.build(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toSummaryResponse(s))
}

// Sales handles GET /reports/sales, the revenue per day or month only.
func (h *ReportsHandler) Sales(w http.ResponseWriter, r *http.Request) {
	s, ok := h.build(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toPeriodSales(s.Sales))
}

func (h *ReportsHandler) build(w http.ResponseWriter, r *http.Request) (report.Summary, bool) {
	f, err := h.parseFilter(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return report.Summary{}, false
	}
	orders, menu := h.src.Orders()
	return report.Build(orders, menu, f), true
}

func (h *ReportsHandler) parseFilter(r *http.Request) (report.Filter, error) {
	q := r.URL.Query()
	from, to, err := parseDateRange(r, h.loc)
	if err != nil {
		return report.Filter{}, err
	}

	period := q.Get("period")
	switch period {
	case "", enum.PeriodDay, enum.PeriodMonth:
	default:
		return report.Filter{}, fmt.Errorf("invalid period: %q", period)
	}

	status := q.Get("status")
	if status != "" && !enum.IsOrderStatus(status) {
		return report.Filter{}, order.ErrInvalidStatus
	}

	return report.Filter{
		From:       from,
		To:         to,
		Table:      q.Get("table"),
		Dish:       q.Get("dish"),
		Status:     status,
		Employee:   q.Get("employee"),
		Period:     period,
		DefaultDay: h.src.SelectedDay(),
		Location:   h.loc,
	}, nil
}

// parseDateRange reads start_date and end_date (YYYY-MM-DD). Either may be
// omitted for an open bound; end_date is inclusive on the wire and exclusive
// in the returned range.
func parseDateRange(r *http.Request, loc *time.Location) (time.Time, time.Time, error) {
	const layout = "2006-01-02"

	var startDate, endDate time.Time
	if s := r.URL.Query().Get("start_date"); s != "" {
		t, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date format: %w", err)
		}
		startDate = t
	}
	if s := r.URL.Query().Get("end_date"); s != "" {
		t, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date format: %w", err)
		}
		endDate = t.AddDate(0, 0, 1)
	}

	if !startDate.IsZero() && !endDate.IsZero() && !startDate.Before(endDate) {
		return time.Time{}, time.Time{}, errors.New("start_date must not be after end_date")
	}
	return startDate, endDate, nil
}

func toSummaryResponse(s report.Summary) summaryResponse {
	resp := summaryResponse{
		Orders:    s.Orders,
		Revenue:   money(s.Revenue),
		Sales:     toPeriodSales(s.Sales),
		TopDishes: toCounts(s.TopDishes),
		Tables:    toCounts(s.Tables),
		Employees: make([]revenueResponse, len(s.Employees)),
		Status: statusResponse{
			Cancelled: s.Status.Cancelled,
			Completed: s.Status.Completed,
			ByStatus:  s.Status.ByStatus,
		},
		PeakHours: toCounts(s.PeakHours),
	}
	if resp.Status.ByStatus == nil {
		resp.Status.ByStatus = map[string]int{}
	}
	for i, e := range s.Employees {
		resp.Employees[i] = revenueResponse{Name: e.Name, Total: money(e.Total)}
	}
	return resp
}

func toPeriodSales(sales []report.PeriodSales) []periodSalesResponse {
	out := make([]periodSalesResponse, len(sales))
	for i, p := range sales {
		out[i] = periodSalesResponse{Period: p.Period, Orders: p.Orders, Total: money(p.Total)}
	}
	return out
}

func toCounts(counts []report.Count) []countResponse {
	out := make([]countResponse, len(counts))
	for i, c := range counts {
		out[i] = countResponse{Name: c.Name, Count: c.Count}
	}
	return out
}
