package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/almlcv/sharanga-backend-sub001/internal/domain/models"
	"github.com/almlcv/sharanga-backend-sub001/internal/service/fgstock"
)

// StockHandler exposes the FG stock ledger.
type StockHandler struct {
	svc    *fgstock.Service
	logger *zap.Logger
}

// stockRow is a ledger row as served, with production measured against the
// row's daily target.
type stockRow struct {
	models.FGStockDocument
	VarianceVsTarget *int `json:"variance_vs_target"`
}

func newStockRow(doc models.FGStockDocument) stockRow {
	return stockRow{FGStockDocument: doc, VarianceVsTarget: doc.VarianceVsTarget()}
}

// NewStockHandler constructs the HTTP handler adapter.
func NewStockHandler(svc *fgstock.Service, logger *zap.Logger) *StockHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockHandler{svc: svc, logger: logger}
}

// Get returns the ledger row of a variant for a date, creating it if needed.
func (h *StockHandler) Get(c *gin.Context) {
	date, err := requireQuery(c, "date")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	variant, err := requireQuery(c, "variant_name")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	doc, err := h.svc.GetOrCreate(c.Request.Context(), date, variant)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, newStockRow(*doc))
}

// Daily returns every active variant's row for a date.
func (h *StockHandler) Daily(c *gin.Context) {
	date, err := requireQuery(c, "date")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	rows, err := h.svc.DailySnapshot(c.Request.Context(), date, c.Query("part"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	out := make([]stockRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, newStockRow(row))
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "count": len(out), "stocks": out})
}

// Monthly returns the per-variant summary of a month.
func (h *StockHandler) Monthly(c *gin.Context) {
	year, month, err := yearMonth(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	summaries, err := h.svc.MonthlySummary(c.Request.Context(), year, month, c.Query("part"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"year": year, "month": month, "variants": summaries})
}

// Inspection sets the inspected quantity of a row.
func (h *StockHandler) Inspection(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req models.InspectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}
	doc, err := h.svc.RecordInspection(c.Request.Context(), p, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Dispatch removes finished goods from a row.
func (h *StockHandler) Dispatch(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req models.DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}
	doc, err := h.svc.RecordDispatch(c.Request.Context(), p, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}
