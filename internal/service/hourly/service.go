package hourly

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/almlcv/sharanga-backend-sub001/internal/domain/models"
	"github.com/almlcv/sharanga-backend-sub001/internal/service/shifts"
)

// Repository persists hourly production documents.
type Repository interface {
	InsertDocument(ctx context.Context, doc *models.HourlyProductionDocument) error
	FindDocumentByID(ctx context.Context, id primitive.ObjectID) (*models.HourlyProductionDocument, error)
	ReplaceDocument(ctx context.Context, doc *models.HourlyProductionDocument) error
	FindDocumentsByDate(ctx context.Context, date string) ([]models.HourlyProductionDocument, error)
	FindDocumentsByStatus(ctx context.Context, status models.DocumentStatus) ([]models.HourlyProductionDocument, error)
}

// StockSyncer is called after entries are committed. Its failures never fail the
// submission.
type StockSyncer interface {
	SyncFromProduction(ctx context.Context, doc models.HourlyProductionDocument, userID string) error
}

// Option customises a Service.
type Option func(*Service)

// WithClock overrides the wall clock used for gate decisions and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithStockSyncer registers the post-commit ledger sync.
func WithStockSyncer(syncer StockSyncer) Option {
	return func(s *Service) {
		s.syncer = syncer
	}
}

// Service owns the hourly production document lifecycle.
type Service struct {
	repo     Repository
	resolver *shifts.Resolver
	calc     *Calculator
	syncer   StockSyncer
	now      func() time.Time
	logger   *zap.Logger
}

// NewService wires a document engine.
func NewService(repo Repository, resolver *shifts.Resolver, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		repo:     repo,
		resolver: resolver,
		calc:     NewCalculator(logger.Named("calculator")),
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize creates a document whose status is decided by the gate.
func (s *Service) Initialize(ctx context.Context, req models.InitializeDocumentRequest) (*models.HourlyProductionDocument, error) {
	side, err := models.NormalizeSide(req.Side)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.PartNumber) == "" {
		return nil, models.Errorf(models.ErrValidation, "part_number is required")
	}
	if strings.TrimSpace(req.PartDescription) == "" {
		return nil, models.Errorf(models.ErrValidation, "part_description is required")
	}
	if req.PartWeight < 0 || req.RunnerWeight < 0 {
		return nil, models.Errorf(models.ErrValidation, "part and runner weights must not be negative")
	}

	loc := s.resolver.Location()
	day, err := shifts.ParseDate(req.Date, loc)
	if err != nil {
		return nil, err
	}

	shiftEnd, err := s.resolver.LastShiftEnd(ctx, req.Date)
	if err != nil {
		return nil, err
	}

	now := s.now().In(loc)
	decision, err := DetermineStatus(day, shiftEnd, now)
	if err != nil {
		s.logger.Warn("document initialization refused by gate",
			zap.String("date", req.Date),
			zap.Duration("age", decision.Age),
			zap.Error(err))
		return nil, err
	}

	operators := req.OperatorName
	if operators == nil {
		operators = []string{}
	}

	doc := &models.HourlyProductionDocument{
		Date:                     day.Format("2006-01-02"),
		DocNo:                    models.DefaultDocNo,
		CreatedAt:                now,
		DocumentStatus:           decision.Status,
		Side:                     side,
		PartNumber:               strings.TrimSpace(req.PartNumber),
		PartDescription:          strings.TrimSpace(req.PartDescription),
		OperatorName:             operators,
		CustomerName:             req.CustomerName,
		NoOfCavity:               req.NoOfCavity,
		CycleTime:                req.CycleTime,
		PartWeight:               req.PartWeight,
		RunnerWeight:             req.RunnerWeight,
		RMMB:                     req.RMMB,
		LotNo:                    req.LotNo,
		LotNoProduction:          req.LotNoProduction,
		Entries:                  []models.HourlyProductionEntry{},
		OperatorSignatures:       []models.VerificationRecord{},
		ProductionHeadSignatures: []models.VerificationRecord{},
	}

	if err := s.repo.InsertDocument(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("document initialized",
		zap.String("document_id", doc.ID.Hex()),
		zap.String("date", doc.Date),
		zap.String("status", string(doc.DocumentStatus)),
		zap.String("side", doc.Side))
	return doc, nil
}

type preparedEntry struct {
	input        models.HourlyEntryInput
	downtime     float64
	productionTS time.Time
	shift        shifts.Info
}

// SubmitEntries validates the whole batch before applying any of it.
func (s *Service) SubmitEntries(ctx context.Context, principal models.Principal, docID string, inputs []models.HourlyEntryInput) (*models.HourlyProductionDocument, error) {
	doc, err := s.load(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc.IsFinalized {
		return nil, models.Errorf(models.ErrFinalized, "document %s is finalized and locked", doc.ID.Hex())
	}
	if err := CheckAcceptsEntries(doc.DocumentStatus); err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, models.Errorf(models.ErrValidation, "no entries submitted")
	}

	calendar, err := s.resolver.Calendar(ctx)
	if err != nil {
		return nil, err
	}

	prepared := make([]preparedEntry, 0, len(inputs))
	for _, in := range inputs {
		p, err := s.prepareEntry(doc, calendar, in)
		if err != nil {
			return nil, err
		}
		prepared = append(prepared, p)
	}

	now := s.now().In(s.resolver.Location())
	updated := doc.Clone()
	for _, p := range prepared {
		applyEntry(&updated, p, now)
	}
	s.calc.RecalculateTotals(&updated)

	if err := s.repo.ReplaceDocument(ctx, &updated); err != nil {
		return nil, err
	}

	s.logger.Info("entries submitted",
		zap.String("document_id", updated.ID.Hex()),
		zap.Int("entries", len(prepared)),
		zap.String("user_id", principal.EmpID))

	if s.syncer != nil {
		if err := s.syncer.SyncFromProduction(ctx, updated, principal.EmpID); err != nil {
			s.logger.Error("fg stock sync failed after submission",
				zap.String("document_id", updated.ID.Hex()),
				zap.String("variant", updated.VariantName()),
				zap.Error(err))
		}
	}

	return &updated, nil
}

func (s *Service) prepareEntry(doc *models.HourlyProductionDocument, calendar *shifts.Calendar, in models.HourlyEntryInput) (preparedEntry, error) {
	slot, err := shifts.CanonicalTimeSlot(in.TimeSlot)
	if err != nil {
		return preparedEntry{}, err
	}
	in.TimeSlot = slot
	if in.PlanQty < 0 || in.ActualQty < 0 || in.OKQty < 0 || in.RejectedQty < 0 {
		return preparedEntry{}, models.Errorf(models.ErrValidation, "time slot %s: quantities must not be negative", in.TimeSlot)
	}
	if in.OKQty+in.RejectedQty > in.ActualQty {
		return preparedEntry{}, models.Errorf(models.ErrValidation,
			"time slot %s: ok_qty (%d) + rejected_qty (%d) exceeds actual_qty (%d)",
			in.TimeSlot, in.OKQty, in.RejectedQty, in.ActualQty)
	}
	if in.LumpsKgs < 0 {
		return preparedEntry{}, models.Errorf(models.ErrValidation, "time slot %s: lumps_kgs must not be negative", in.TimeSlot)
	}

	productionTS, err := calendar.ProductionTimestamp(doc.Date, in.TimeSlot)
	if err != nil {
		return preparedEntry{}, err
	}

	if idx := doc.EntryIndex(in.TimeSlot); idx >= 0 && doc.Entries[idx].Status == models.EntryFinal {
		return preparedEntry{}, models.Errorf(models.ErrFinalized, "entry for time slot %s is finalized and cannot be edited", in.TimeSlot)
	}

	shift, err := calendar.ActiveShift(productionTS)
	if err != nil {
		return preparedEntry{}, err
	}

	return preparedEntry{
		input:        in,
		downtime:     s.calc.DowntimeMinutes(in.DowntimeFrom, in.DowntimeTo),
		productionTS: productionTS,
		shift:        shift,
	}, nil
}

func applyEntry(doc *models.HourlyProductionDocument, p preparedEntry, now time.Time) {
	productionTS := p.productionTS
	submittedAt := now
	entry := models.HourlyProductionEntry{
		TimeSlot:            p.input.TimeSlot,
		PlanQty:             p.input.PlanQty,
		ActualQty:           p.input.ActualQty,
		OKQty:               p.input.OKQty,
		RejectedQty:         p.input.RejectedQty,
		RejectionReason:     p.input.RejectionReason,
		DowntimeCode:        models.CanonicalDowntimeCode(p.input.DowntimeCode),
		DowntimeFrom:        p.input.DowntimeFrom,
		DowntimeTo:          p.input.DowntimeTo,
		DowntimeMinutes:     p.downtime,
		LumpsKgs:            p.input.LumpsKgs,
		ShiftName:           p.shift.Name,
		ShiftDefinitionID:   p.shift.SettingID,
		ProductionTimestamp: &productionTS,
		SubmissionTimestamp: &submittedAt,
		Status:              models.EntrySubmitted,
	}

	if idx := doc.EntryIndex(entry.TimeSlot); idx >= 0 {
		doc.Entries[idx] = entry
		return
	}
	doc.Entries = append(doc.Entries, entry)
}

// ReviewStatus approves or rejects a PENDING_APPROVAL document.
func (s *Service) ReviewStatus(ctx context.Context, principal models.Principal, docID string, action models.ReviewAction, remarks string) (*models.HourlyProductionDocument, error) {
	if err := principal.RequireAnyRole(models.RoleAdmin); err != nil {
		return nil, err
	}

	var next models.DocumentStatus
	var label string
	switch models.ReviewAction(strings.ToUpper(string(action))) {
	case models.ReviewApprove:
		next, label = models.DocumentApproved, "APPROVED"
	case models.ReviewReject:
		next, label = models.DocumentBlocked, "REJECTED"
	default:
		return nil, models.Errorf(models.ErrValidation, "invalid action %q: must be APPROVE or REJECT", action)
	}

	doc, err := s.load(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc.IsFinalized {
		return nil, models.Errorf(models.ErrFinalized, "document %s is finalized and locked", doc.ID.Hex())
	}
	if doc.DocumentStatus != models.DocumentPendingApproval {
		return nil, models.Errorf(models.ErrInvalidState,
			"only PENDING_APPROVAL documents can be reviewed, current status: %s", doc.DocumentStatus)
	}

	if strings.TrimSpace(remarks) == "" {
		remarks = "Document " + strings.ToLower(label) + " by admin"
	}

	updated := doc.Clone()
	updated.DocumentStatus = next
	updated.DocumentApproval = &models.DocumentApprovalRecord{
		ApprovedBy:     principal.EmpID,
		ApprovedByName: principal.DisplayName(),
		ApprovedAt:     s.now().In(s.resolver.Location()),
		Action:         label,
		Remarks:        remarks,
	}

	if err := s.repo.ReplaceDocument(ctx, &updated); err != nil {
		return nil, err
	}

	s.logger.Info("document reviewed",
		zap.String("document_id", updated.ID.Hex()),
		zap.String("action", label),
		zap.String("user_id", principal.EmpID))
	return &updated, nil
}

// Sign records the caller's signature of the requested type.
func (s *Service) Sign(ctx context.Context, principal models.Principal, docID string, sigType models.SignatureType) (*models.HourlyProductionDocument, error) {
	switch sigType {
	case models.SignatureOperator:
		if err := principal.RequireAnyRole(models.RoleOperator); err != nil {
			return nil, err
		}
	case models.SignatureProductionHead:
		if err := principal.RequireAnyRole(models.RoleProductionHead); err != nil {
			return nil, err
		}
	default:
		return nil, models.Errorf(models.ErrValidation, "invalid signature type %q", sigType)
	}
	if principal.EmpID == "" {
		return nil, models.Errorf(models.ErrValidation, "user information incomplete, cannot create signature")
	}

	doc, err := s.load(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc.IsFinalized {
		return nil, models.Errorf(models.ErrFinalized, "document %s is finalized and locked", doc.ID.Hex())
	}

	updated := doc.Clone()
	list := &updated.OperatorSignatures
	if sigType == models.SignatureProductionHead {
		list = &updated.ProductionHeadSignatures
	}
	for _, sig := range *list {
		if sig.UserID == principal.EmpID {
			return nil, models.Errorf(models.ErrAlreadySigned, "user %s has already signed as %s", principal.EmpID, sigType)
		}
	}
	*list = append(*list, models.VerificationRecord{
		UserID:     principal.EmpID,
		UserName:   principal.DisplayName(),
		VerifiedAt: s.now().In(s.resolver.Location()),
	})

	if err := s.repo.ReplaceDocument(ctx, &updated); err != nil {
		return nil, err
	}

	s.logger.Info("document signed",
		zap.String("document_id", updated.ID.Hex()),
		zap.String("signature_type", string(sigType)),
		zap.String("user_id", principal.EmpID))
	return &updated, nil
}

// Finalize locks the document and turns every open entry FINAL.
func (s *Service) Finalize(ctx context.Context, principal models.Principal, docID string) (*models.HourlyProductionDocument, error) {
	if err := principal.RequireAnyRole(models.RoleAdmin, models.RoleProductionHead); err != nil {
		return nil, err
	}

	doc, err := s.load(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc.IsFinalized {
		return nil, models.Errorf(models.ErrFinalized, "document %s is already finalized", doc.ID.Hex())
	}

	updated := doc.Clone()
	finalized := 0
	for i := range updated.Entries {
		switch updated.Entries[i].Status {
		case models.EntryDraft, models.EntrySubmitted:
			updated.Entries[i].Status = models.EntryFinal
			finalized++
		}
	}
	finalizedAt := s.now().In(s.resolver.Location())
	updated.IsFinalized = true
	updated.FinalizedAt = &finalizedAt

	if err := s.repo.ReplaceDocument(ctx, &updated); err != nil {
		return nil, err
	}

	s.logger.Info("document finalized",
		zap.String("document_id", updated.ID.Hex()),
		zap.Int("entries_finalized", finalized),
		zap.String("user_id", principal.EmpID))
	return &updated, nil
}

// UpdateDetails patches the manually entered lumps and runner weight totals.
func (s *Service) UpdateDetails(ctx context.Context, docID string, lumpsKgs, runnerWeightKgs *float64) (*models.HourlyProductionDocument, error) {
	if lumpsKgs != nil && *lumpsKgs < 0 {
		return nil, models.Errorf(models.ErrValidation, "total_lumps_kgs must not be negative")
	}
	if runnerWeightKgs != nil && *runnerWeightKgs < 0 {
		return nil, models.Errorf(models.ErrValidation, "total_runner_weight_kgs must not be negative")
	}

	doc, err := s.load(ctx, docID)
	if err != nil {
		return nil, err
	}
	if lumpsKgs == nil && runnerWeightKgs == nil {
		return doc, nil
	}
	if doc.IsFinalized {
		return nil, models.Errorf(models.ErrFinalized, "document %s is finalized and locked", doc.ID.Hex())
	}

	updated := doc.Clone()
	if lumpsKgs != nil {
		updated.Totals.TotalLumpsKgs = *lumpsKgs
	}
	if runnerWeightKgs != nil {
		updated.Totals.TotalRunnerWeightKgs = *runnerWeightKgs
	}

	if err := s.repo.ReplaceDocument(ctx, &updated); err != nil {
		return nil, err
	}

	s.logger.Info("document details updated", zap.String("document_id", updated.ID.Hex()))
	return &updated, nil
}

// List returns the documents of a date. A shift filter trims entries in the
// returned copies only.
func (s *Service) List(ctx context.Context, date, shiftName string) ([]models.HourlyProductionDocument, error) {
	if _, err := shifts.ParseDate(date, s.resolver.Location()); err != nil {
		return nil, err
	}

	docs, err := s.repo.FindDocumentsByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	shiftName = strings.TrimSpace(shiftName)
	out := make([]models.HourlyProductionDocument, 0, len(docs))
	for _, doc := range docs {
		view := doc.Clone()
		if shiftName != "" {
			filtered := make([]models.HourlyProductionEntry, 0, len(view.Entries))
			for _, e := range view.Entries {
				if strings.EqualFold(e.ShiftName, shiftName) {
					filtered = append(filtered, e)
				}
			}
			view.Entries = filtered
		}
		out = append(out, view)
	}
	return out, nil
}

// PendingApproval is the admin inbox of late documents, newest first.
func (s *Service) PendingApproval(ctx context.Context, principal models.Principal) ([]models.HourlyProductionDocument, error) {
	if err := principal.RequireAnyRole(models.RoleAdmin); err != nil {
		return nil, err
	}
	docs, err := s.repo.FindDocumentsByStatus(ctx, models.DocumentPendingApproval)
	if err != nil {
		return nil, err
	}
	s.logger.Info("pending documents retrieved", zap.String("user_id", principal.EmpID), zap.Int("count", len(docs)))
	return docs, nil
}

// Get loads one document.
func (s *Service) Get(ctx context.Context, docID string) (*models.HourlyProductionDocument, error) {
	return s.load(ctx, docID)
}

func (s *Service) load(ctx context.Context, docID string) (*models.HourlyProductionDocument, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(docID))
	if err != nil {
		return nil, models.Errorf(models.ErrValidation, "invalid document id %q", docID)
	}
	return s.repo.FindDocumentByID(ctx, id)
}
