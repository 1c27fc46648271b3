package server

import (
	"crypto/subtle"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"rewardledger/internal/ingest"
	"rewardledger/internal/model"
	"rewardledger/internal/query"
)

const maxWebhookBody = 10 << 20

type webhookResponse struct {
	Success   bool `json:"success"`
	Processed int  `json:"processed"`
	Errors    int  `json:"errors"`
}

type historyResponse struct {
	Transactions []model.LedgerRow `json:"transactions"`
	Total        int64             `json:"total"`
	Limit        int               `json:"limit"`
	Offset       int               `json:"offset"`
}

type summaryRequest struct {
	Wallet string `json:"wallet"`
}

type summaryResponse struct {
	Wallet                  string                          `json:"wallet"`
	TransactionCounts       map[model.TransactionType]int64 `json:"transaction_counts"`
	EarningsByPool          map[model.PoolType]int64        `json:"earnings_by_pool"`
	TotalEarnedBaseUnits    int64                           `json:"total_earned_base_units"`
	TotalEarnedDisplayUnits string                          `json:"total_earned_display_units"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleWebhook ingests one webhook delivery. Authentication is checked
// before any body work: a bad token writes nothing. Per-item failures are
// counted in the response, never surfaced as a request failure, so the
// source does not retry an already-mostly-committed batch.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		s.respondError(w, http.StatusUnauthorized, "invalid or missing bearer token")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "read request body")
		return
	}
	defer r.Body.Close()

	notifications, err := ingest.ParseNotifications(body)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary := s.controller.Ingest(r.Context(), notifications)
	s.respondJSON(w, http.StatusOK, webhookResponse{
		Success:   true,
		Processed: summary.Processed,
		Errors:    summary.Errors,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	filter, err := query.ParseHistoryParams(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, total, err := s.store.QueryLedger(r.Context(), filter)
	if err != nil {
		s.logger.Error("ledger query failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "ledger query failed")
		return
	}
	if rows == nil {
		rows = []model.LedgerRow{}
	}
	s.respondJSON(w, http.StatusOK, historyResponse{
		Transactions: rows,
		Total:        total,
		Limit:        filter.Limit,
		Offset:       filter.Offset,
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	var req summaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "decode request body")
		return
	}
	if req.Wallet == "" {
		s.respondError(w, http.StatusBadRequest, "wallet is required")
		return
	}

	summary, err := s.store.WalletSummary(r.Context(), req.Wallet)
	if err != nil {
		s.logger.Error("wallet summary failed", zap.String("wallet", req.Wallet), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "wallet summary failed")
		return
	}
	s.respondJSON(w, http.StatusOK, summaryResponse{
		Wallet:                  summary.Wallet,
		TransactionCounts:       summary.TransactionCounts,
		EarningsByPool:          summary.EarningsByPool,
		TotalEarnedBaseUnits:    summary.TotalEarned,
		TotalEarnedDisplayUnits: query.DisplayUnits(summary.TotalEarned),
	})
}

// handleExport streams the filtered ledger as CSV or JSON, paging through
// the store. Base-unit amounts become display-unit decimals here only.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	req, err := query.ParseExportParams(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	filter := req.Filter
	rows, total, err := s.store.QueryLedger(r.Context(), filter)
	if err != nil {
		s.logger.Error("export query failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "export query failed")
		return
	}
	if total == 0 {
		s.respondError(w, http.StatusNotFound, "no transactions in the requested range")
		return
	}

	filename := query.ExportFilename(req.Kind, req.Format, time.Now())
	if req.Format == query.FormatCSV {
		w.Header().Set("Content-Type", "text/csv")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)

	exporter, err := query.NewExporter(req.Format, w)
	if err != nil {
		s.logger.Error("export setup failed", zap.Error(err))
		return
	}
	for {
		if err := exporter.WriteRows(rows); err != nil {
			s.logger.Error("export write failed", zap.Error(err))
			return
		}
		filter.Offset += len(rows)
		if int64(filter.Offset) >= total || len(rows) == 0 {
			break
		}
		rows, _, err = s.store.QueryLedger(r.Context(), filter)
		if err != nil {
			s.logger.Error("export page failed", zap.Error(err))
			return
		}
	}
	if err := exporter.Close(); err != nil {
		s.logger.Error("export finalize failed", zap.Error(err))
	}
}

func (s *Server) authorized(r *http.Request) bool {
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, prefix) {
		return false
	}
	token := strings.TrimPrefix(header, prefix)
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.WebhookSecret)) == 1
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode response failed", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	s.respondJSON(w, status, errorResponse{Error: msg})
}
