package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/almlcv/sharanga-backend-sub001/internal/service/reporting"
)

// ReportHandler exposes the read-only production reports.
type ReportHandler struct {
	svc    *reporting.Service
	logger *zap.Logger
}

// NewReportHandler constructs the HTTP handler adapter.
func NewReportHandler(svc *reporting.Service, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{svc: svc, logger: logger}
}

// Daily returns the daily production report.
func (h *ReportHandler) Daily(c *gin.Context) {
	date, err := requireQuery(c, "date")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	report, err := h.svc.DailyProductionReport(c.Request.Context(), date)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Monthly returns the monthly production report.
func (h *ReportHandler) Monthly(c *gin.Context) {
	year, month, err := yearMonth(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	report, err := h.svc.MonthlyProductionReport(c.Request.Context(), year, month)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Plan returns the monthly production plan sheet.
func (h *ReportHandler) Plan(c *gin.Context) {
	year, month, err := yearMonth(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	report, err := h.svc.MonthlyPlanReport(c.Request.Context(), year, month)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
