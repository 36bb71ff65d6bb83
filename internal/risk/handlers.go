package risk

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/glorin2500/Sentinel-sub000/internal/history"
	"github.com/glorin2500/Sentinel-sub000/internal/logging"
	"github.com/glorin2500/Sentinel-sub000/internal/metrics"
	"github.com/glorin2500/Sentinel-sub000/internal/pagination"
)

// historyLimit caps how much history is loaded per scan. Bursts and
// familiarity both saturate well below this.
const historyLimit = 500

// HistoryService loads and records scan history for the evaluation pipeline.
type HistoryService interface {
	ListForScan(ctx context.Context, userID, identifier string, limit int) ([]history.Transaction, error)
	Record(ctx context.Context, tx *history.Transaction) error
}

// EventEmitter publishes evaluated verdicts to live subscribers.
type EventEmitter interface {
	VerdictEvaluated(v *Verdict)
}

// Handler provides HTTP endpoints for payee risk scanning.
type Handler struct {
	engine    *Engine
	store     Store
	ref       RefProvider
	history   HistoryService
	events    EventEmitter
	histLimit int
}

// NewHandler creates a risk scan handler.
func NewHandler(engine *Engine, store Store, ref RefProvider, hist HistoryService) *Handler {
	return &Handler{engine: engine, store: store, ref: ref, history: hist, histLimit: historyLimit}
}

// WithHistoryLimit overrides how many prior scans are loaded per evaluation.
func (h *Handler) WithHistoryLimit(n int) *Handler {
	if n > 0 {
		h.histLimit = n
	}
	return h
}

// WithEvents attaches a live event emitter.
func (h *Handler) WithEvents(events EventEmitter) *Handler {
	h.events = events
	return h
}

// RegisterRoutes sets up scan endpoints.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/scan", h.Scan)
	r.GET("/payees/:vpa", h.GetPayee)
	r.GET("/payees/:vpa/verdicts", h.ListVerdicts)
	r.GET("/payees/:vpa/history", h.ListHistory)
}

// ScanRequest is the request body for POST /v1/scan.
type ScanRequest struct {
	Identifier string   `json:"identifier" binding:"required"`
	Amount     *float64 `json:"amount,omitempty"`
	Timestamp  int64    `json:"timestamp,omitempty"` // epoch millis, 0 = now
	UserID     string   `json:"userId,omitempty"`
}

// Scan evaluates a payee and returns the verdict.
// POST /v1/scan
func (h *Handler) Scan(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Request body must contain 'identifier'",
		})
		return
	}

	ctx := c.Request.Context()

	var hist []HistoricalTransaction
	if h.history != nil {
		txs, err := h.history.ListForScan(ctx, req.UserID, req.Identifier, h.histLimit)
		if err != nil {
			// A history outage degrades to a history-less scan rather than
			// failing the request; the identifier checks still run.
			logging.L(ctx).Warn("history load failed, scanning without context",
				"identifier", req.Identifier, "error", err)
		} else {
			hist = make([]HistoricalTransaction, 0, len(txs))
			for _, tx := range txs {
				hist = append(hist, HistoricalTransaction{
					UserID:          tx.UserID,
					Identifier:      tx.Identifier,
					Amount:          tx.Amount,
					TimestampMillis: tx.TimestampMillis,
					Outcome:         Outcome(tx.Outcome),
				})
			}
		}
	}

	verdict, err := h.engine.Evaluate(ctx, &Input{
		UserID:          req.UserID,
		Identifier:      req.Identifier,
		Amount:          req.Amount,
		TimestampMillis: req.Timestamp,
		History:         hist,
	})
	if errors.Is(err, ErrInvalidInput) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_input",
			"message": err.Error(),
		})
		return
	}
	if err != nil {
		// The caller must treat this scan as unscored, never as safe.
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "evaluation_failed",
			"message": "Could not evaluate this payee. Treat the transaction as unscored.",
		})
		return
	}

	metrics.ScansTotal.WithLabelValues(string(verdict.Level)).Inc()
	if verdict.FraudType != "" {
		metrics.BlacklistHitsTotal.Inc()
	}

	if h.history != nil {
		rec := &history.Transaction{
			UserID:          req.UserID,
			Identifier:      strings.ToLower(strings.TrimSpace(req.Identifier)),
			Amount:          req.Amount,
			TimestampMillis: verdict.EvaluatedAt.UnixMilli(),
			Outcome:         string(verdict.Outcome()),
		}
		if req.Timestamp != 0 {
			rec.TimestampMillis = req.Timestamp
		}
		if err := h.history.Record(ctx, rec); err != nil {
			logging.L(ctx).Warn("failed to record scan history",
				"identifier", req.Identifier, "error", err)
		}
	}

	if h.events != nil {
		h.events.VerdictEvaluated(verdict)
	}

	c.JSON(http.StatusOK, verdict)
}

// GetPayee returns reference data status and the latest verdict for a VPA.
// GET /v1/payees/:vpa
func (h *Handler) GetPayee(c *gin.Context) {
	vpa := strings.ToLower(c.Param("vpa"))
	ref := h.ref.Current()

	resp := gin.H{
		"identifier": vpa,
		"trusted":    ref.IsTrusted(vpa),
	}
	if entry, ok := ref.Lookup(vpa); ok {
		resp["blacklisted"] = true
		resp["blacklistEntry"] = entry
	} else {
		resp["blacklisted"] = false
	}

	if h.store != nil {
		verdicts, err := h.store.ListByIdentifier(c.Request.Context(), vpa, 1)
		if err == nil && len(verdicts) > 0 {
			resp["latestVerdict"] = verdicts[0]
		}
	}

	c.JSON(http.StatusOK, resp)
}

// ListVerdicts returns the verdict audit trail for a VPA.
// GET /v1/payees/:vpa/verdicts?limit=&cursor=
func (h *Handler) ListVerdicts(c *gin.Context) {
	vpa := strings.ToLower(c.Param("vpa"))
	limit := parseLimit(c.Query("limit"), 50, 500)

	// Fetch one extra row to detect whether another page exists.
	verdicts, err := h.store.ListByIdentifier(c.Request.Context(), vpa, limit+1,
		WithCursor(c.Query("cursor")))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "query_failed",
			"message": "Failed to load verdicts",
		})
		return
	}

	page, next, hasMore := pagination.ComputePage(verdicts, limit, func(v *Verdict) (time.Time, string) {
		return v.EvaluatedAt, v.ID
	})

	c.JSON(http.StatusOK, gin.H{
		"identifier": vpa,
		"verdicts":   page,
		"count":      len(page),
		"nextCursor": next,
		"hasMore":    hasMore,
	})
}

// ListHistory returns recorded scans for a VPA.
// GET /v1/payees/:vpa/history?limit=
func (h *Handler) ListHistory(c *gin.Context) {
	vpa := strings.ToLower(c.Param("vpa"))
	limit := parseLimit(c.Query("limit"), 50, 500)

	txs, err := h.history.ListForScan(c.Request.Context(), "", vpa, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "query_failed",
			"message": "Failed to load scan history",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"identifier": vpa,
		"scans":      txs,
		"count":      len(txs),
	})
}

func parseLimit(raw string, def, max int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
