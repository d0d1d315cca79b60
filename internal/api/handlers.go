package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/finsightlab/market-analysis-service/internal/models"
	"github.com/finsightlab/market-analysis-service/internal/orchestrator"
)

// Default request windows when the query omits them.
const (
	defaultMarketDays    = 30
	defaultSentimentDays = 7
	defaultReportDays    = 30
	defaultReportLimit   = 20
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	orch *orchestrator.Orchestrator
	log  *zap.Logger
}

// NewHandler creates a new Handler
func NewHandler(orch *orchestrator.Orchestrator, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{orch: orch, log: log}
}

// GetMarketData handles GET /api/v1/market-data/{symbol}
func (h *Handler) GetMarketData(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	days := queryInt(r, "days", defaultMarketDays)

	bars, err := h.orch.GetMarketData(r.Context(), symbol, days)
	if err != nil {
		h.respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":      strings.ToUpper(strings.TrimSpace(symbol)),
		"days":        days,
		"market_data": bars,
	})
}

// GetIndicator handles GET /api/v1/indicators/{symbol}/{kind}
func (h *Handler) GetIndicator(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	symbol := vars["symbol"]

	kind, err := models.ParseIndicatorKind(vars["kind"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	days := queryInt(r, "days", defaultMarketDays)
	points, err := h.orch.GetIndicatorSeries(r.Context(), symbol, kind, days, queryParams(r))
	if err != nil {
		h.respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":    strings.ToUpper(strings.TrimSpace(symbol)),
		"indicator": kind,
		"days":      days,
		"points":    points,
	})
}

// RunAnalysis handles GET /api/v1/analysis/{symbol}
func (h *Handler) RunAnalysis(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	days := queryInt(r, "days", defaultMarketDays)

	var kinds []models.IndicatorKind
	if raw := r.URL.Query().Get("indicators"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			kind, err := models.ParseIndicatorKind(part)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			kinds = append(kinds, kind)
		}
	}

	result, err := h.orch.RunTechnicalAnalysis(r.Context(), symbol, days, kinds, queryParams(r))
	if err != nil {
		h.respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetSentiment handles GET /api/v1/sentiment/{symbol}
func (h *Handler) GetSentiment(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	days := queryInt(r, "days", defaultSentimentDays)

	result, err := h.orch.GetSentimentForSymbol(r.Context(), symbol, days)
	if err != nil {
		h.respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// CreateReport handles POST /api/v1/reports
func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title      string   `json:"title"`
		Symbols    []string `json:"symbols"`
		ReportType string   `json:"report_type"`
		Days       int      `json:"days"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ReportType == "" {
		req.ReportType = models.ReportTypeComprehensive
	}
	if req.Days == 0 {
		req.Days = defaultReportDays
	}

	report, err := h.orch.GenerateReport(r.Context(), req.Title, req.Symbols, req.ReportType, req.Days)
	if err != nil {
		h.respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, report)
}

// ListReports handles GET /api/v1/reports
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultReportLimit)

	reports, err := h.orch.ListReports(limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, reports)
}

// GetReport handles GET /api/v1/reports/{id}
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid report id", http.StatusBadRequest)
		return
	}

	report, err := h.orch.GetReport(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// GetReportHTML handles GET /api/v1/reports/{id}/html and serves the
// rendered document directly.
func (h *Handler) GetReportHTML(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid report id", http.StatusBadRequest)
		return
	}

	report, err := h.orch.GetReport(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(report.ContentHTML))
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// respondError maps orchestrator error types to HTTP status codes.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var (
		validation  *orchestrator.ValidationError
		provider    *orchestrator.ProviderError
		persistence *orchestrator.PersistenceError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &validation):
		status = http.StatusBadRequest
	case errors.As(err, &provider):
		status = http.StatusBadGateway
	case errors.As(err, &persistence):
		status = http.StatusInternalServerError
	}

	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.Error(err))
	}
	http.Error(w, err.Error(), status)
}

// queryInt parses an integer query parameter with a default.
func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// queryParams collects numeric query parameters into indicator parameters.
// Non-numeric values are ignored.
func queryParams(r *http.Request) models.IndicatorParams {
	params := models.IndicatorParams{}
	for key, values := range r.URL.Query() {
		if key == "days" || key == "indicators" || len(values) == 0 {
			continue
		}
		if v, err := strconv.ParseFloat(values[0], 64); err == nil {
			params[key] = v
		}
	}
	return params
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
