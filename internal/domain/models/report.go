package models

// PartProductionSummary is one part line of the daily production report. LH and RH
// documents of the same part are combined.
type PartProductionSummary struct {
	PartDescription string `json:"part_description"`
	Schedule        *int   `json:"schedule"`

	PlanQty     int `json:"plan_qty"`
	ActualQty   int `json:"actual_qty"`
	OKQty       int `json:"ok_qty"`
	RejectedQty int `json:"rejected_qty"`

	LHOKQty       int `json:"lh_ok_qty"`
	LHRejectedQty int `json:"lh_rejected_qty"`
	RHOKQty       int `json:"rh_ok_qty"`
	RHRejectedQty int `json:"rh_rejected_qty"`

	CurrentStock int `json:"current_stock"`
	Dispatched   int `json:"dispatched"`
	Balance      int `json:"balance"`

	DailyTarget         *int     `json:"daily_target"`
	ProjectedDays       *float64 `json:"projected_days"`
	RejectionRatePct    float64  `json:"rejection_rate_pct"`
	LastMonthProduction *int     `json:"last_month_production"`
}

// DailyProductionReport aggregates production, stock and plan for a date.
type DailyProductionReport struct {
	Date            string                  `json:"date"`
	Parts           []PartProductionSummary `json:"parts"`
	TotalParts      int                     `json:"total_parts"`
	TotalProduction int                     `json:"total_production"`
	TotalRejected   int                     `json:"total_rejected"`
	TotalDispatch   int                     `json:"total_dispatch"`
}

// MonthlyProductionSummary is one part line of the monthly production report.
type MonthlyProductionSummary struct {
	PartDescription    string   `json:"part_description"`
	Month              string   `json:"month"`
	MonthlySchedule    *int     `json:"monthly_schedule"`
	TotalProduction    int      `json:"total_production"`
	PlanAchievementPct *float64 `json:"plan_achievement_pct"`
	TotalOKQty         int      `json:"total_ok_qty"`
	TotalRejectedQty   int      `json:"total_rejected_qty"`
	RejectionRatePct   float64  `json:"rejection_rate_pct"`
	OpeningStock       int      `json:"opening_stock"`
	ClosingStock       int      `json:"closing_stock"`
	TotalDispatched    int      `json:"total_dispatched"`
	AvgDailyProduction float64  `json:"avg_daily_production"`
	AvgDailyDispatch   float64  `json:"avg_daily_dispatch"`
	WorkingDays        int      `json:"working_days_in_month"`
	DaysProduced       int      `json:"days_produced"`
}

// MonthlyProductionReport aggregates a month of production per part.
type MonthlyProductionReport struct {
	Year                    int                        `json:"year"`
	Month                   int                        `json:"month"`
	Parts                   []MonthlyProductionSummary `json:"parts"`
	TotalParts              int                        `json:"total_parts"`
	TotalProduction         int                        `json:"total_production"`
	TotalRejected           int                        `json:"total_rejected"`
	OverallRejectionRatePct float64                    `json:"overall_rejection_rate_pct"`
}

// ProductionPlanRow is one variant line of the monthly plan sheet.
type ProductionPlanRow struct {
	Customer         string      `json:"customer"`
	MachineNumber    string      `json:"machine_number"`
	BinCapacity      *int        `json:"bin_capacity"`
	PartName         string      `json:"part_name"`
	MonthPlan        int         `json:"month_plan"`
	OpeningStock     int         `json:"opening_stock"`
	BalanceToProduce int         `json:"balance_to_produce"`
	ProdPlan         int         `json:"prod_plan"`
	DailyQuantities  map[int]int `json:"daily_quantities"`
	PartDescription  string      `json:"part_description"`
	Side             string      `json:"side,omitempty"`
	PartNumber       string      `json:"part_number,omitempty"`
}

// ProductionPlanReport is the month-at-a-glance production plan sheet.
type ProductionPlanReport struct {
	Month          string              `json:"month"`
	MonthName      string              `json:"month_name"`
	Rows           []ProductionPlanRow `json:"rows"`
	TotalParts     int                 `json:"total_parts"`
	TotalMonthPlan int                 `json:"total_month_plan"`
	TotalProdPlan  int                 `json:"total_prod_plan"`
	DaysInMonth    int                 `json:"days_in_month"`
}

// StockMonthlySummary is the per-variant ledger roll-up for a month.
type StockMonthlySummary struct {
	VariantName        string   `json:"variant_name"`
	PartDescription    string   `json:"part_description"`
	Side               string   `json:"side,omitempty"`
	OpeningStockMonth  int      `json:"opening_stock_month"`
	ClosingStockMonth  int      `json:"closing_stock_month"`
	TotalProduction    int      `json:"total_production"`
	TotalDispatched    int      `json:"total_dispatched"`
	TotalInspection    int      `json:"total_inspection"`
	MonthlySchedule    *int     `json:"monthly_schedule"`
	AchievementPct     *float64 `json:"achievement_pct"`
	AvgDailyProduction float64  `json:"avg_daily_production"`
	DaysRecorded       int      `json:"days_recorded"`
}
