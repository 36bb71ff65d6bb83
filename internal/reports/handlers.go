package reports

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/glorin2500/Sentinel-sub000/internal/metrics"
	"github.com/glorin2500/Sentinel-sub000/internal/refdata"
)

// EventEmitter publishes report activity to live subscribers.
type EventEmitter interface {
	ReportFiled(r *Report)
	BlacklistUpdated(e *refdata.BlacklistEntry)
}

// Handler provides HTTP endpoints for fraud reports.
type Handler struct {
	service *Service
	events  EventEmitter
}

// NewHandler creates a reports handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// WithEvents attaches a live event emitter.
func (h *Handler) WithEvents(events EventEmitter) *Handler {
	h.events = events
	return h
}

// RegisterRoutes sets up report endpoints. Admin routes are registered
// separately so the server can protect them.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/reports", h.FileReport)
	r.GET("/reports/:vpa", h.ListReports)
}

// RegisterAdminRoutes sets up report verification endpoints.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.POST("/reports/:id/verify", h.VerifyReport)
}

// FileRequest is the request body for POST /v1/reports.
type FileRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Reason     string `json:"reason" binding:"required"`
	FraudType  string `json:"fraudType,omitempty"`
	Severity   string `json:"severity,omitempty"` // defaults to medium
	ReporterID string `json:"reporterId,omitempty"`
}

// FileReport files a community fraud report.
// POST /v1/reports
func (h *Handler) FileReport(c *gin.Context) {
	var req FileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Request body must contain 'identifier' and 'reason'",
		})
		return
	}

	severity := refdata.Severity(strings.ToLower(req.Severity))
	if req.Severity == "" {
		severity = refdata.SeverityMedium
	}

	report := &Report{
		Identifier: req.Identifier,
		Reason:     req.Reason,
		FraudType:  req.FraudType,
		Severity:   severity,
		ReporterID: req.ReporterID,
	}
	if err := h.service.File(c.Request.Context(), report); err != nil {
		if errors.Is(err, ErrInvalidReport) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_report",
				"message": err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "report_failed",
			"message": "Failed to file report",
		})
		return
	}

	metrics.ReportsFiledTotal.Inc()
	if h.events != nil {
		h.events.ReportFiled(report)
	}
	c.JSON(http.StatusCreated, report)
}

// ListReports returns all reports filed against a VPA.
// GET /v1/reports/:vpa
func (h *Handler) ListReports(c *gin.Context) {
	vpa := strings.ToLower(c.Param("vpa"))

	reports, err := h.service.ListByIdentifier(c.Request.Context(), vpa)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "query_failed",
			"message": "Failed to load reports",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"identifier": vpa,
		"reports":    reports,
		"count":      len(reports),
	})
}

// VerifyReport marks a report verified and promotes it to the blacklist.
// POST /v1/admin/reports/:id/verify
func (h *Handler) VerifyReport(c *gin.Context) {
	entry, err := h.service.Verify(c.Request.Context(), c.Param("id"))
	if errors.Is(err, ErrReportNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "report_not_found",
			"message": "No report with that ID",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "verify_failed",
			"message": "Failed to verify report",
		})
		return
	}

	metrics.ReportsVerifiedTotal.Inc()
	if entry != nil && h.events != nil {
		h.events.BlacklistUpdated(entry)
	}

	resp := gin.H{"verified": true}
	if entry != nil {
		resp["blacklistEntry"] = entry
	}
	c.JSON(http.StatusOK, resp)
}
