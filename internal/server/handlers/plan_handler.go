package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/almlcv/sharanga-backend-sub001/internal/domain/models"
	"github.com/almlcv/sharanga-backend-sub001/internal/service/plans"
)

// PlanHandler exposes monthly production plans.
type PlanHandler struct {
	svc    *plans.Service
	logger *zap.Logger
}

// NewPlanHandler constructs the HTTP handler adapter.
func NewPlanHandler(svc *plans.Service, logger *zap.Logger) *PlanHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanHandler{svc: svc, logger: logger}
}

// Upsert creates or replaces a part's plan for a month.
func (h *PlanHandler) Upsert(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req models.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}
	plan, err := h.svc.Upsert(c.Request.Context(), p, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// List returns the plans of a month.
func (h *PlanHandler) List(c *gin.Context) {
	year, month, err := yearMonth(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	list, err := h.svc.List(c.Request.Context(), year, month)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"month": models.MonthKey(year, month), "plans": list})
}

// Daily returns the per-variant daily targets of a month.
func (h *PlanHandler) Daily(c *gin.Context) {
	year, month, err := yearMonth(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	list, err := h.svc.DailyPlan(c.Request.Context(), year, month)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"month": models.MonthKey(year, month), "variants": list})
}
