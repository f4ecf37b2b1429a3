package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"stockquote/internal/batch"
	"stockquote/internal/config"
	"stockquote/internal/quote"
)

const serviceName = "Real-time Stock API"

type quotesResponse struct {
	Success            bool          `json:"success"`
	Timestamp          string        `json:"timestamp"`
	SymbolCount        int           `json:"symbol_count"`
	MarketStatus       string        `json:"market_status,omitempty"`
	Data               []quote.Quote `json:"data"`
	Errors             []string      `json:"errors"`
	Warnings           []string      `json:"warnings"`
	AgentDecisionReady bool          `json:"agent_decision_ready"`
	Error              string        `json:"error,omitempty"`
}

type statusResponse struct {
	Success   bool   `json:"success"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
	Status    string `json:"status"`
}

type APIHandler struct {
	orch   *batch.Orchestrator
	cfg    *config.Config
	logger *slog.Logger
}

func NewAPIHandler(orch *batch.Orchestrator, cfg *config.Config, logger *slog.Logger) *APIHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &APIHandler{orch: orch, cfg: cfg, logger: logger}
}

// handleQuotes serves GET /api/quotes?symbols=a,b,c. Failure is always
// in-band: the body carries success=false and an error message, the HTTP
// status stays 200.
func (h *APIHandler) handleQuotes(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("quotes handler panic", "panic", rec)
			writeJSON(w, quotesResponse{
				Success:   false,
				Timestamp: time.Now().UTC().Format(time.RFC3339),
				Data:      []quote.Quote{},
				Errors:    []string{},
				Warnings:  []string{},
				Error:     fmt.Sprintf("internal error: %v", rec),
			})
		}
	}()

	symbols := splitCSV(r.URL.Query().Get("symbols"))
	if len(symbols) == 0 {
		symbols = []string{h.cfg.Batch.DefaultSymbol}
	}
	if max := h.cfg.Batch.MaxSymbols; max > 0 && len(symbols) > max {
		writeJSON(w, quotesResponse{
			Success:   false,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Data:      []quote.Quote{},
			Errors:    []string{},
			Warnings:  []string{},
			Error:     fmt.Sprintf("too many symbols: %d (max %d)", len(symbols), max),
		})
		return
	}

	res := h.orch.Run(r.Context(), symbols)

	resp := quotesResponse{
		Success:            len(res.Quotes) > 0,
		Timestamp:          time.Now().UTC().Format(time.RFC3339),
		SymbolCount:        len(symbols),
		MarketStatus:       res.MarketStatus,
		Data:               res.Quotes,
		Errors:             res.Errors,
		Warnings:           res.Warnings,
		AgentDecisionReady: len(res.Quotes) > 0 && len(res.Warnings) == 0,
	}
	if resp.Data == nil {
		resp.Data = []quote.Quote{}
	}
	if resp.Errors == nil {
		resp.Errors = []string{}
	}
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}
	writeJSON(w, resp)
}

func (h *APIHandler) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, statusResponse{
		Success:   true,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   serviceName,
		Status:    "online",
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
