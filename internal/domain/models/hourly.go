package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultDocNo is the template id stamped on every hourly production sheet.
// It repeats across documents; records are told apart by their ObjectID.
const DefaultDocNo = "RI/PRD/R/70A"

// DocumentStatus is the entry gate of an hourly production document.
type DocumentStatus string

const (
	DocumentOpen            DocumentStatus = "OPEN"
	DocumentPendingApproval DocumentStatus = "PENDING_APPROVAL"
	DocumentApproved        DocumentStatus = "APPROVED"
	DocumentBlocked         DocumentStatus = "BLOCKED"
)

// EntryStatus tracks a single hourly row.
type EntryStatus string

const (
	EntryDraft     EntryStatus = "DRAFT"
	EntrySubmitted EntryStatus = "SUBMITTED"
	EntryFinal     EntryStatus = "FINAL"
)

// ReviewAction is the admin decision on a PENDING_APPROVAL document.
type ReviewAction string

const (
	ReviewApprove ReviewAction = "APPROVE"
	ReviewReject  ReviewAction = "REJECT"
)

// SignatureType selects which signature list a signer is added to.
type SignatureType string

const (
	SignatureOperator       SignatureType = "OPERATOR"
	SignatureProductionHead SignatureType = "PRODUCTION_HEAD"
)

// VerificationRecord is a digital signature on a document.
type VerificationRecord struct {
	UserID     string    `bson:"user_id" json:"user_id"`
	UserName   string    `bson:"user_name" json:"user_name"`
	VerifiedAt time.Time `bson:"verified_at" json:"verified_at"`
}

// DocumentApprovalRecord captures the admin review of a late document.
type DocumentApprovalRecord struct {
	ApprovedBy     string    `bson:"approved_by" json:"approved_by"`
	ApprovedByName string    `bson:"approved_by_name" json:"approved_by_name"`
	ApprovedAt     time.Time `bson:"approved_at" json:"approved_at"`
	Action         string    `bson:"action" json:"action"`
	Remarks        string    `bson:"remarks,omitempty" json:"remarks,omitempty"`
}

// DocumentTotals aggregates the entries of a document. Everything except the two
// manual fields is rebuilt from entries on every submission.
type DocumentTotals struct {
	TotalPlanQty           int     `bson:"total_plan_qty" json:"total_plan_qty"`
	TotalActualQty         int     `bson:"total_actual_qty" json:"total_actual_qty"`
	TotalOKQty             int     `bson:"total_ok_qty" json:"total_ok_qty"`
	TotalRejectedQty       int     `bson:"total_rejected_qty" json:"total_rejected_qty"`
	TotalDowntimeMinutes   float64 `bson:"total_downtime_minutes" json:"total_downtime_minutes"`
	TotalOKWeightKgs       float64 `bson:"total_ok_weight_kgs" json:"total_ok_weight_kgs"`
	TotalRejectedWeightKgs float64 `bson:"total_rejected_weight_kgs" json:"total_rejected_weight_kgs"`
	TotalRunnerWeightKgs   float64 `bson:"total_runner_weight_kgs" json:"total_runner_weight_kgs"`
	TotalLumpsKgs          float64 `bson:"total_lumps_kgs" json:"total_lumps_kgs"`
}

// HourlyProductionEntry is one time slot row of the sheet.
type HourlyProductionEntry struct {
	TimeSlot            string      `bson:"time_slot" json:"time_slot"`
	PlanQty             int         `bson:"plan_qty" json:"plan_qty"`
	ActualQty           int         `bson:"actual_qty" json:"actual_qty"`
	OKQty               int         `bson:"ok_qty" json:"ok_qty"`
	RejectedQty         int         `bson:"rejected_qty" json:"rejected_qty"`
	RejectionReason     string      `bson:"rejection_reason,omitempty" json:"rejection_reason,omitempty"`
	DowntimeCode        string      `bson:"downtime_code,omitempty" json:"downtime_code,omitempty"`
	DowntimeFrom        string      `bson:"downtime_from,omitempty" json:"downtime_from,omitempty"`
	DowntimeTo          string      `bson:"downtime_to,omitempty" json:"downtime_to,omitempty"`
	DowntimeMinutes     float64     `bson:"downtime_minutes" json:"downtime_minutes"`
	LumpsKgs            float64     `bson:"lumps_kgs" json:"lumps_kgs"`
	ShiftName           string      `bson:"shift_name,omitempty" json:"shift_name,omitempty"`
	ShiftDefinitionID   string      `bson:"shift_definition_id,omitempty" json:"shift_definition_id,omitempty"`
	ProductionTimestamp *time.Time  `bson:"production_timestamp,omitempty" json:"production_timestamp,omitempty"`
	SubmissionTimestamp *time.Time  `bson:"submission_timestamp,omitempty" json:"submission_timestamp,omitempty"`
	Status              EntryStatus `bson:"status" json:"status"`
}

// HourlyProductionDocument is a day's production tracking sheet for one part/side.
type HourlyProductionDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Date      string             `bson:"date" json:"date"`
	DocNo     string             `bson:"doc_no" json:"doc_no"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`

	DocumentStatus   DocumentStatus          `bson:"document_status" json:"document_status"`
	DocumentApproval *DocumentApprovalRecord `bson:"document_approval,omitempty" json:"document_approval,omitempty"`

	Side            string   `bson:"side,omitempty" json:"side,omitempty"`
	PartNumber      string   `bson:"part_number" json:"part_number"`
	PartDescription string   `bson:"part_description" json:"part_description"`
	OperatorName    []string `bson:"operator_name" json:"operator_name"`
	CustomerName    string   `bson:"customer_name,omitempty" json:"customer_name,omitempty"`

	NoOfCavity   *int     `bson:"no_of_cavity,omitempty" json:"no_of_cavity,omitempty"`
	CycleTime    *float64 `bson:"cycle_time,omitempty" json:"cycle_time,omitempty"`
	PartWeight   float64  `bson:"part_weight" json:"part_weight"`
	RunnerWeight float64  `bson:"runner_weight" json:"runner_weight"`

	RMMB            string `bson:"rm_mb,omitempty" json:"rm_mb,omitempty"`
	LotNo           string `bson:"lot_no,omitempty" json:"lot_no,omitempty"`
	LotNoProduction string `bson:"lot_no_production,omitempty" json:"lot_no_production,omitempty"`

	Entries []HourlyProductionEntry `bson:"entries" json:"entries"`
	Totals  DocumentTotals          `bson:"totals" json:"totals"`

	OperatorSignatures       []VerificationRecord `bson:"operator_signatures" json:"operator_signatures"`
	ProductionHeadSignatures []VerificationRecord `bson:"production_head_signatures" json:"production_head_signatures"`

	IsFinalized bool       `bson:"is_finalized" json:"is_finalized"`
	FinalizedAt *time.Time `bson:"finalized_at,omitempty" json:"finalized_at,omitempty"`
}

// VariantName is the ledger key this document feeds.
func (d HourlyProductionDocument) VariantName() string {
	return VariantName(d.PartDescription, d.Side)
}

// EntryIndex returns the position of the entry for timeSlot, or -1.
func (d HourlyProductionDocument) EntryIndex(timeSlot string) int {
	for i := range d.Entries {
		if d.Entries[i].TimeSlot == timeSlot {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so callers can transform a loaded document without
// aliasing the stored slices.
func (d HourlyProductionDocument) Clone() HourlyProductionDocument {
	out := d
	out.OperatorName = append([]string(nil), d.OperatorName...)
	out.Entries = append([]HourlyProductionEntry(nil), d.Entries...)
	out.OperatorSignatures = append([]VerificationRecord(nil), d.OperatorSignatures...)
	out.ProductionHeadSignatures = append([]VerificationRecord(nil), d.ProductionHeadSignatures...)
	if d.DocumentApproval != nil {
		approval := *d.DocumentApproval
		out.DocumentApproval = &approval
	}
	return out
}

var downtimeCodes = map[string]string{
	"m/c bd":                         "M/C BD",
	"m/c bd (machine breakdown)":     "M/C BD",
	"tool bd":                        "Tool BD",
	"power failure":                  "Power failure",
	"quality issue":                  "Quality issue",
	"material shortage":              "Material shortage",
	"mc/tool maintenance":            "MC/Tool Maintenance",
	"rm loading":                     "RM Loading",
	"new operator":                   "New Operator",
	"operator on leave / permission": "Operator on leave / Permission",
	"setting":                        "Setting",
	"no manpower":                    "No manpower",
	"trial":                          "Trial",
	"startup":                        "Startup",
	"mold change":                    "Mold change",
	"molding change":                 "Mold change",
	"other":                          "Other",
}

// CanonicalDowntimeCode maps free-form downtime spellings to the known codes.
// Unknown non-empty codes collapse to "Other".
func CanonicalDowntimeCode(code string) string {
	norm := strings.ToLower(strings.TrimSpace(code))
	if norm == "" {
		return ""
	}
	if canonical, ok := downtimeCodes[norm]; ok {
		return canonical
	}
	return "Other"
}
