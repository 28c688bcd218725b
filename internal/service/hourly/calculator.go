package hourly

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/almlcv/sharanga-backend-sub001/internal/domain/models"
)

var gramsPerKg = decimal.NewFromInt(1000)

// Calculator derives downtime and weight figures from entry data. It never fails:
// malformed input is logged and contributes zero.
type Calculator struct {
	logger *zap.Logger
}

// NewCalculator builds a calculator.
func NewCalculator(logger *zap.Logger) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{logger: logger}
}

// DowntimeMinutes returns max(0, end-start) in minutes for two HH:MM clocks.
func (c *Calculator) DowntimeMinutes(start, end string) float64 {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" || end == "" {
		return 0
	}

	from, err := time.Parse("15:04", start)
	if err != nil {
		c.logger.Warn("invalid downtime start, using 0", zap.String("start", start), zap.String("end", end), zap.Error(err))
		return 0
	}
	to, err := time.Parse("15:04", end)
	if err != nil {
		c.logger.Warn("invalid downtime end, using 0", zap.String("start", start), zap.String("end", end), zap.Error(err))
		return 0
	}

	minutes := to.Sub(from).Minutes()
	if minutes < 0 {
		return 0
	}
	return minutes
}

// RecalculateTotals rebuilds the derived totals of doc from its entries. The
// manual lumps and runner weight totals are carried over untouched.
func (c *Calculator) RecalculateTotals(doc *models.HourlyProductionDocument) {
	totals := models.DocumentTotals{
		TotalRunnerWeightKgs: doc.Totals.TotalRunnerWeightKgs,
		TotalLumpsKgs:        doc.Totals.TotalLumpsKgs,
	}

	weighable := doc.PartWeight >= 0
	if !weighable {
		c.logger.Error("negative part weight, skipping weight totals",
			zap.String("document_id", doc.ID.Hex()),
			zap.Float64("part_weight", doc.PartWeight))
	}
	partWeightKg := decimal.NewFromFloat(doc.PartWeight).Div(gramsPerKg)

	downtime := decimal.Zero
	okWeight := decimal.Zero
	rejectedWeight := decimal.Zero

	for idx, entry := range doc.Entries {
		if entry.PlanQty < 0 || entry.ActualQty < 0 || entry.OKQty < 0 || entry.RejectedQty < 0 {
			c.logger.Error("skip entry with negative quantities",
				zap.String("document_id", doc.ID.Hex()),
				zap.Int("index", idx),
				zap.String("time_slot", entry.TimeSlot))
			continue
		}

		totals.TotalPlanQty += entry.PlanQty
		totals.TotalActualQty += entry.ActualQty
		totals.TotalOKQty += entry.OKQty
		totals.TotalRejectedQty += entry.RejectedQty
		downtime = downtime.Add(decimal.NewFromFloat(entry.DowntimeMinutes))

		if weighable {
			okWeight = okWeight.Add(partWeightKg.Mul(decimal.NewFromInt(int64(entry.OKQty))))
			rejectedWeight = rejectedWeight.Add(partWeightKg.Mul(decimal.NewFromInt(int64(entry.RejectedQty))))
		}
	}

	totals.TotalDowntimeMinutes = downtime.Round(2).InexactFloat64()
	totals.TotalOKWeightKgs = okWeight.Round(2).InexactFloat64()
	totals.TotalRejectedWeightKgs = rejectedWeight.Round(2).InexactFloat64()

	doc.Totals = totals

	c.logger.Debug("recalculated totals",
		zap.String("document_id", doc.ID.Hex()),
		zap.Int("ok_qty", totals.TotalOKQty),
		zap.Int("rejected_qty", totals.TotalRejectedQty),
		zap.Float64("ok_weight_kgs", totals.TotalOKWeightKgs))
}
