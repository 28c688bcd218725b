package models

// InitializeDocumentRequest opens a new hourly production sheet.
type InitializeDocumentRequest struct {
	Date            string   `json:"date" binding:"required"`
	Side            string   `json:"side"`
	PartNumber      string   `json:"part_number" binding:"required"`
	PartDescription string   `json:"part_description" binding:"required"`
	OperatorName    []string `json:"operator_name"`
	CustomerName    string   `json:"customer_name"`
	NoOfCavity      *int     `json:"no_of_cavity"`
	CycleTime       *float64 `json:"cycle_time"`
	PartWeight      float64  `json:"part_weight"`
	RunnerWeight    float64  `json:"runner_weight"`
	RMMB            string   `json:"rm_mb"`
	LotNo           string   `json:"lot_no"`
	LotNoProduction string   `json:"lot_no_production"`
}

// HourlyEntryInput is one submitted time slot.
type HourlyEntryInput struct {
	TimeSlot        string  `json:"time_slot" binding:"required"`
	PlanQty         int     `json:"plan_qty"`
	ActualQty       int     `json:"actual_qty"`
	OKQty           int     `json:"ok_qty"`
	RejectedQty     int     `json:"rejected_qty"`
	RejectionReason string  `json:"rejection_reason"`
	DowntimeCode    string  `json:"downtime_code"`
	DowntimeFrom    string  `json:"downtime_from"`
	DowntimeTo      string  `json:"downtime_to"`
	LumpsKgs        float64 `json:"lumps_kgs"`
}

// SubmitEntriesRequest carries a batch of entries for one document.
type SubmitEntriesRequest struct {
	DocumentID string             `json:"document_id" binding:"required"`
	Entries    []HourlyEntryInput `json:"entries" binding:"required"`
}

// ReviewStatusRequest is the admin decision on a late document.
type ReviewStatusRequest struct {
	DocumentID string       `json:"document_id" binding:"required"`
	Action     ReviewAction `json:"action" binding:"required"`
	Remarks    string       `json:"remarks"`
}

// SignDocumentRequest adds the caller's signature.
type SignDocumentRequest struct {
	DocumentID    string        `json:"document_id" binding:"required"`
	SignatureType SignatureType `json:"signature_type" binding:"required"`
}

// UpdateDetailsRequest patches the manual totals of a document.
type UpdateDetailsRequest struct {
	DocumentID           string   `json:"document_id" binding:"required"`
	TotalLumpsKgs        *float64 `json:"total_lumps_kgs"`
	TotalRunnerWeightKgs *float64 `json:"total_runner_weight_kgs"`
}

// InspectionRequest sets the absolute inspected quantity of a ledger row.
type InspectionRequest struct {
	Date          string `json:"date" binding:"required"`
	VariantName   string `json:"variant_name" binding:"required"`
	InspectionQty int    `json:"inspection_qty"`
	Remarks       string `json:"remarks" binding:"required"`
}

// DispatchRequest removes finished goods from a ledger row.
type DispatchRequest struct {
	Date          string `json:"date" binding:"required"`
	VariantName   string `json:"variant_name" binding:"required"`
	DispatchedQty int    `json:"dispatched_qty"`
	Remarks       string `json:"remarks"`
}

// PlanRequest creates or replaces the schedule of a part for a month.
type PlanRequest struct {
	Year                   int      `json:"year" binding:"required"`
	Month                  int      `json:"month" binding:"required"`
	ItemDescription        string   `json:"item_description" binding:"required"`
	Schedule               int      `json:"schedule"`
	DispatchQuantityPerDay *float64 `json:"dispatch_quantity_per_day"`
	DayStockToKept         *int     `json:"day_stock_to_kept"`
	RespPerson             string   `json:"resp_person"`
}
