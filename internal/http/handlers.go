package http

import (
	"net/http"
	"time"

	"bilancio/internal/calendar"
	"bilancio/internal/core"
	"bilancio/internal/dashboard"
	"bilancio/internal/ledger"
)

type rowJSON struct {
	ID           string `json:"id"`
	Date         string `json:"date"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	Direction    string `json:"direction"`
	Amount       string `json:"amount"`
	AmountCents  int64  `json:"amount_cents"`
	BalanceCents int64  `json:"balance_cents"`
	Projected    bool   `json:"projected"`
}

type reportJSON struct {
	Rows         []rowJSON `json:"rows"`
	OpeningCents int64     `json:"opening_cents"`
	InCents      int64     `json:"in_cents"`
	OutCents     int64     `json:"out_cents"`
	NetCents     int64     `json:"net_cents"`
	FinalCents   int64     `json:"final_cents"`
}

func toRowJSON(r ledger.Row) rowJSON {
	return rowJSON{
		ID:           r.ID,
		Date:         r.Date.ISO(),
		Description:  r.Description,
		Category:     r.Category,
		Direction:    string(r.Direction),
		Amount:       r.Amount.String(),
		AmountCents:  r.Amount.Cents,
		BalanceCents: r.Balance,
		Projected:    r.Projected,
	}
}

func (s *Server) buildReport(r *http.Request, now core.Date) (ledger.Report, ledger.Options, error) {
	window, err := parseWindow(r, now)
	if err != nil {
		return ledger.Report{}, ledger.Options{}, err
	}
	q := r.URL.Query()
	opts := ledger.Options{
		Window:            window,
		IncludeProjection: q.Get("projection") == "true" || q.Get("projection") == "1",
		Filter: ledger.Filter{
			Direction: core.Direction(q.Get("direction")),
			Category:  q.Get("category"),
			Query:     q.Get("q"),
		},
		Now: now,
	}

	key := now.ISO() + "?" + r.URL.RawQuery
	if report, ok := s.reportCache.Get(key); ok {
		return report, opts, nil
	}

	set, err := s.store.ListEntries(r.Context())
	if err != nil {
		return ledger.Report{}, opts, err
	}
	report := ledger.BuildReport(set, opts)
	s.reportCache.Set(key, report)
	return report, opts, nil
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	now := core.DateOf(time.Now())
	report, _, err := s.buildReport(r, now)
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeStoreError(w, err)
		return
	}

	q := r.URL.Query()
	field, ok := parseSortField(q.Get("sort"))
	if !ok {
		writeError(w, http.StatusBadRequest, errUnknownSort)
		return
	}
	rows := ledger.SortRows(report.Rows, field, q.Get("desc") == "true")

	out := reportJSON{
		Rows:         make([]rowJSON, len(rows)),
		OpeningCents: report.Opening,
		InCents:      report.Totals.In.Cents,
		OutCents:     report.Totals.Out.Cents,
		NetCents:     report.Totals.Net,
		FinalCents:   report.Final,
	}
	for i, row := range rows {
		out.Rows[i] = toRowJSON(row)
	}
	writeJSON(w, http.StatusOK, out)
}

type pointJSON struct {
	Date      string  `json:"date"`
	Balance   float64 `json:"balance"`
	Projected bool    `json:"projected"`
}

type seriesJSON struct {
	Points []pointJSON `json:"points"`
	Trend  *trendJSON  `json:"trend,omitempty"`
}

type trendJSON struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

func (s *Server) handleLedgerSeries(w http.ResponseWriter, r *http.Request) {
	now := core.DateOf(time.Now())
	report, _, err := s.buildReport(r, now)
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeStoreError(w, err)
		return
	}

	pts := report.Points()
	if r.URL.Query().Get("smooth") == "true" {
		pts = ledger.Smooth(pts)
	}

	out := seriesJSON{Points: make([]pointJSON, len(pts))}
	for i, p := range pts {
		out.Points[i] = pointJSON{Date: p.Date.ISO(), Balance: p.Balance, Projected: p.Projected}
	}
	if slope, intercept, ok := ledger.Trend(pts); ok {
		out.Trend = &trendJSON{Slope: slope, Intercept: intercept}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleLedgerExport(w http.ResponseWriter, r *http.Request) {
	now := core.DateOf(time.Now())
	report, _, err := s.buildReport(r, now)
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeStoreError(w, err)
		return
	}

	csv, err := ledger.FormatCSV(report.Rows)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="ledger.csv"`)
	_, _ = w.Write([]byte(csv))
}

type bucketJSON struct {
	Date     string    `json:"date"`
	InCents  int64     `json:"in_cents"`
	OutCents int64     `json:"out_cents"`
	NetCents int64     `json:"net_cents"`
	Items    []rowJSON `json:"items"`
}

func toBucketJSON(b calendar.Bucket) bucketJSON {
	out := bucketJSON{
		Date:     b.Date.ISO(),
		InCents:  b.In.Cents,
		OutCents: b.Out.Cents,
		NetCents: b.Net(),
		Items:    make([]rowJSON, len(b.Items)),
	}
	for i, c := range b.Items {
		out.Items[i] = rowJSON{
			ID:          c.ID,
			Date:        c.Date.ISO(),
			Description: c.Description,
			Category:    c.Category,
			Direction:   string(c.Direction),
			Amount:      c.Amount.String(),
			AmountCents: c.Amount.Cents,
			Projected:   c.Projected,
		}
	}
	return out
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	now := core.DateOf(time.Now())
	month, err := parseMonth(r, now)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	set, err := s.store.ListEntries(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}

	q := r.URL.Query()
	buckets := calendar.MonthBuckets(set, month, calendar.Options{
		HideProjected: q.Get("hide_projected") == "true",
	})

	resp := struct {
		Month   string         `json:"month"`
		Buckets []bucketJSON   `json:"buckets"`
		Weeks   [][]bucketJSON `json:"weeks,omitempty"`
	}{
		Month:   month.StartOfMonth().ISO(),
		Buckets: make([]bucketJSON, len(buckets)),
	}
	for i, b := range buckets {
		resp.Buckets[i] = toBucketJSON(b)
	}
	if q.Get("grid") == "true" {
		for _, week := range calendar.Grid(buckets) {
			row := make([]bucketJSON, len(week))
			for i, b := range week {
				if b.IsPadding() {
					row[i] = bucketJSON{}
				} else {
					row[i] = toBucketJSON(b)
				}
			}
			resp.Weeks = append(resp.Weeks, row)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type metricsJSON struct {
	Month        string          `json:"month"`
	ElapsedRatio float64         `json:"elapsed_ratio"`
	Budgets      []budgetUsageJS `json:"budgets"`
	TopCats      []categoryJS    `json:"top_categories"`
	LargestOut   *rowJSON        `json:"largest_out"`
	LargestIn    *rowJSON        `json:"largest_in"`
	Mix          mixJS           `json:"recurring_mix"`
	Delta        deltaJS         `json:"net_delta"`
	ProjectedNet int64           `json:"projected_net_cents"`
	NextOut      *rowJSON        `json:"next_out"`
	NextIn       *rowJSON        `json:"next_in"`
	Alerts       []alertJS       `json:"alerts"`
}

type budgetUsageJS struct {
	Category   string  `json:"category"`
	SpentCents int64   `json:"spent_cents"`
	LimitCents int64   `json:"limit_cents"`
	Pct        float64 `json:"pct"`
	Pace       string  `json:"pace"`
}

type categoryJS struct {
	Category   string  `json:"category"`
	SpentCents int64   `json:"spent_cents"`
	Share      float64 `json:"share"`
}

type mixJS struct {
	RecurringCents int64   `json:"recurring_cents"`
	VariableCents  int64   `json:"variable_cents"`
	Ratio          float64 `json:"ratio"`
}

type deltaJS struct {
	NetCents     int64    `json:"net_cents"`
	PrevNetCents int64    `json:"prev_net_cents"`
	MoMPct       *float64 `json:"mom_pct"`
}

type alertJS struct {
	Kind     string `json:"kind"`
	Category string `json:"category,omitempty"`
	Message  string `json:"message"`
}

func concreteRowJSON(c *core.Concrete) *rowJSON {
	if c == nil {
		return nil
	}
	return &rowJSON{
		ID:          c.ID,
		Date:        c.Date.ISO(),
		Description: c.Description,
		Category:    c.Category,
		Direction:   string(c.Direction),
		Amount:      c.Amount.String(),
		AmountCents: c.Amount.Cents,
		Projected:   c.Projected,
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	now := core.DateOf(time.Now())

	key := "dashboard:" + now.ISO()
	metrics, ok := s.metricsCache.Get(key)
	if !ok {
		set, err := s.store.ListEntries(r.Context())
		if err != nil {
			writeStoreError(w, err)
			return
		}
		budgets, err := s.store.ListBudgets(r.Context())
		if err != nil {
			writeStoreError(w, err)
			return
		}
		metrics = dashboard.Compute(set, budgets, now)
		s.metricsCache.Set(key, metrics)
	}

	out := metricsJSON{
		Month:        metrics.Month.From.ISO(),
		ElapsedRatio: metrics.ElapsedRatio,
		Budgets:      make([]budgetUsageJS, len(metrics.Budgets)),
		TopCats:      make([]categoryJS, len(metrics.TopCategories)),
		LargestOut:   concreteRowJSON(metrics.LargestOut),
		LargestIn:    concreteRowJSON(metrics.LargestIn),
		Mix: mixJS{
			RecurringCents: metrics.Mix.Recurring.Cents,
			VariableCents:  metrics.Mix.Variable.Cents,
			Ratio:          metrics.Mix.Ratio,
		},
		Delta: deltaJS{
			NetCents:     metrics.Delta.Net,
			PrevNetCents: metrics.Delta.PrevNet,
			MoMPct:       metrics.Delta.MoMPct,
		},
		ProjectedNet: metrics.ProjectedNet,
		NextOut:      concreteRowJSON(metrics.NextOut),
		NextIn:       concreteRowJSON(metrics.NextIn),
		Alerts:       make([]alertJS, len(metrics.Alerts)),
	}
	for i, b := range metrics.Budgets {
		out.Budgets[i] = budgetUsageJS{
			Category:   b.Category,
			SpentCents: b.Spent.Cents,
			LimitCents: b.Limit.Cents,
			Pct:        b.Pct,
			Pace:       string(b.Pace),
		}
	}
	for i, c := range metrics.TopCategories {
		out.TopCats[i] = categoryJS{Category: c.Category, SpentCents: c.Spent.Cents, Share: c.Share}
	}
	for i, a := range metrics.Alerts {
		out.Alerts[i] = alertJS{Kind: string(a.Kind), Category: a.Category, Message: a.Message}
	}
	writeJSON(w, http.StatusOK, out)
}
