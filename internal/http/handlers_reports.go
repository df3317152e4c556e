package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"rentledger/internal/analysis"
	"rentledger/internal/core"
	"rentledger/internal/export"
)

type summaryJSON struct {
	Period      string `json:"period"`
	Expected    int64  `json:"expected"`
	Collected   int64  `json:"collected"`
	Unpaid      int64  `json:"unpaid"`
	PaidCount   int    `json:"paidCount"`
	UnpaidCount int    `json:"unpaidCount"`
}

func (s *Server) invalidatePeriodCaches(period core.Period) {
	s.summaryCache.Delete(string(period))
	s.analysisCache.Delete(string(period))
}

func (s *Server) flushPeriodCaches() {
	s.summaryCache.Purge()
	s.analysisCache.Purge()
}

// handleSummary returns the aggregate totals for one period, cached per
// period and invalidated on mutation.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	period, err := periodFromQuery(r)
	if err != nil {
		respondError(w, err)
		return
	}

	summary, found := s.summaryCache.Get(string(period))
	if !found {
		summary, err = s.svc.Summary(r.Context(), period)
		if err != nil {
			respondError(w, err)
			return
		}
		s.summaryCache.Set(string(period), summary)
	} else {
		slog.DebugContext(r.Context(), "Summary cache hit", "period", string(period))
	}

	respondJSON(w, http.StatusOK, summaryJSON{
		Period:      string(period),
		Expected:    summary.Expected.Amount,
		Collected:   summary.Collected.Amount,
		Unpaid:      summary.Unpaid.Amount,
		PaidCount:   summary.PaidCount,
		UnpaidCount: summary.UnpaidCount,
	})
}

// handleExportCSV streams the period report as a CSV download.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	period, err := periodFromQuery(r)
	if err != nil {
		respondError(w, err)
		return
	}

	rooms, err := s.svc.Rooms(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	readings, err := s.svc.ReadingsForPeriod(r.Context(), period)
	if err != nil {
		respondError(w, err)
		return
	}
	settings, err := s.svc.Settings(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName(period)+`"`)
	if err := export.WriteMonthlyReport(w, rooms, readings, settings.Rates); err != nil {
		slog.ErrorContext(r.Context(), "CSV export failed",
			"period", string(period), "error", err)
	}
}

// handleAnalyze runs AI commentary over one period. Responses are cached
// per period; the fallback wrapper guarantees displayable text even when
// the backend is down.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		Period string `json:"period"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	period := core.Period(strings.TrimSpace(req.Period))
	if period == "" {
		period = core.CurrentPeriod()
	}
	if err := period.Validate(); err != nil {
		respondError(w, err)
		return
	}

	if text, found := s.analysisCache.Get(string(period)); found {
		respondJSON(w, http.StatusOK, map[string]string{
			"period":   string(period),
			"analysis": text,
		})
		return
	}

	rooms, err := s.svc.Rooms(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	readings, err := s.svc.ReadingsForPeriod(r.Context(), period)
	if err != nil {
		respondError(w, err)
		return
	}
	settings, err := s.svc.Settings(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	text, err := s.analyzer.Analyze(ctx, analysis.Snapshot{
		Period:   period,
		Rooms:    rooms,
		Readings: readings,
		Rates:    settings.Rates,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	// The fallback message is not worth caching: retry should hit the
	// backend again.
	if text != analysis.FallbackMessage {
		s.analysisCache.Set(string(period), text)
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"period":   string(period),
		"analysis": text,
	})
}
