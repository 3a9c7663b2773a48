package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/riskscope/internal/analysis"
	"github.com/wonny/riskscope/internal/contracts"
	"github.com/wonny/riskscope/internal/drawdown"
	"github.com/wonny/riskscope/pkg/logger"
)

// Runner runs one analysis (satisfied by *analysis.Runner)
type Runner interface {
	Run(ctx context.Context, req analysis.Request) (*analysis.Report, error)
}

// AnalysisHandler handles analysis API endpoints
// ⭐ SSOT: 분석 API 핸들러는 이 구조체에서만
type AnalysisHandler struct {
	runner Runner
	logger *logger.Logger
	now    func() time.Time
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(runner Runner, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		runner: runner,
		logger: log,
		now:    time.Now,
	}
}

// run parses the request, runs the analysis and writes the error response on failure
func (h *AnalysisHandler) run(w http.ResponseWriter, r *http.Request) (*analysis.Report, bool) {
	ticker := mux.Vars(r)["ticker"]
	if ticker == "" {
		respondError(w, http.StatusBadRequest, "ticker is required")
		return nil, false
	}

	req, err := parseRequest(ticker, r.URL.Query(), h.now())
	if err != nil {
		respondError(w, StatusFor(err), err.Error())
		return nil, false
	}

	report, err := h.runner.Run(r.Context(), req)
	if err != nil {
		status := StatusFor(err)
		log := h.logger.WithError(err).WithFields(map[string]interface{}{
			"ticker": ticker,
			"status": status,
		})
		if status >= http.StatusInternalServerError {
			log.Error("Analysis failed")
		} else {
			log.Warn("Analysis rejected")
		}
		respondError(w, status, err.Error())
		return nil, false
	}
	return report, true
}

// GetAnalysis returns the full report
// GET /api/analysis/{ticker}?start=2020-01-01&end=2025-01-01&benchmark=^GSPC&capital=100000
// format=text → plain-text research context
func (h *AnalysisHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	report, ok := h.run(w, r)
	if !ok {
		return
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(analysis.ContextText(report)))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"data":      report,
		"formatted": analysis.FormatMap(report),
	})
}

// GetDrawdowns returns drawdown episodes
// GET /api/analysis/{ticker}/drawdowns?sort=depth|recovery|recent|recovered&limit=10
func (h *AnalysisHandler) GetDrawdowns(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var query func([]contracts.DrawdownEpisode, int) []contracts.DrawdownEpisode
	switch sortBy := r.URL.Query().Get("sort"); sortBy {
	case "", "depth":
		query = drawdown.TopByDepth
	case "recovery":
		query = drawdown.TopByRecoveryTime
	case "recent":
		query = drawdown.RecentByTrough
	case "recovered":
		query = drawdown.RecentRecoveries
	default:
		respondError(w, http.StatusBadRequest, "sort must be one of depth, recovery, recent, recovered")
		return
	}

	report, ok := h.run(w, r)
	if !ok {
		return
	}

	var all []contracts.DrawdownEpisode
	var highlights drawdown.Highlights
	if report.Drawdowns != nil {
		all = report.Drawdowns.Episodes
		highlights = report.Drawdowns.Highlights
	}
	episodes := query(all, limit)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"ticker":     report.Ticker,
		"total":      len(all),
		"count":      len(episodes),
		"episodes":   episodes,
		"highlights": highlights,
		"formatted":  analysis.FormatDrawdowns(report),
	})
}

// GetSimulation returns the buy-and-hold simulation
// GET /api/analysis/{ticker}/simulation?capital=100000&curve=false
func (h *AnalysisHandler) GetSimulation(w http.ResponseWriter, r *http.Request) {
	report, ok := h.run(w, r)
	if !ok {
		return
	}

	if report.Simulation == nil {
		respondError(w, http.StatusUnprocessableEntity, report.Skipped[analysis.CategorySimulation])
		return
	}

	sim := *report.Simulation
	if r.URL.Query().Get("curve") == "false" {
		sim.ValueCurve = nil
	}

	var formatted map[string]string
	for _, s := range analysis.Format(report) {
		if s.Category == analysis.CategorySimulation {
			formatted = s.Map()
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"ticker":    report.Ticker,
		"data":      sim,
		"formatted": formatted,
	})
}
