package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/almlcv/sharanga-backend-sub001/internal/domain/models"
	"github.com/almlcv/sharanga-backend-sub001/internal/service/hourly"
)

// HourlyHandler exposes the hourly production document lifecycle.
type HourlyHandler struct {
	svc    *hourly.Service
	logger *zap.Logger
}

// NewHourlyHandler constructs the HTTP handler adapter.
func NewHourlyHandler(svc *hourly.Service, logger *zap.Logger) *HourlyHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HourlyHandler{svc: svc, logger: logger}
}

// Initialize creates a document for a date, part and side.
func (h *HourlyHandler) Initialize(c *gin.Context) {
	var req models.InitializeDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}
	doc, err := h.svc.Initialize(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// SubmitEntries upserts a batch of hourly entries.
func (h *HourlyHandler) SubmitEntries(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req models.SubmitEntriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}
	doc, err := h.svc.SubmitEntries(c.Request.Context(), p, req.DocumentID, req.Entries)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// ReviewStatus approves or rejects a late document.
func (h *HourlyHandler) ReviewStatus(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req models.ReviewStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}
	doc, err := h.svc.ReviewStatus(c.Request.Context(), p, req.DocumentID, req.Action, req.Remarks)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Sign adds the caller's signature.
func (h *HourlyHandler) Sign(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req models.SignDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}
	doc, err := h.svc.Sign(c.Request.Context(), p, req.DocumentID, req.SignatureType)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Finalize locks a document.
func (h *HourlyHandler) Finalize(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	doc, err := h.svc.Finalize(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// UpdateDetails patches the manual lumps and runner weight totals.
func (h *HourlyHandler) UpdateDetails(c *gin.Context) {
	var req models.UpdateDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}
	doc, err := h.svc.UpdateDetails(c.Request.Context(), req.DocumentID, req.TotalLumpsKgs, req.TotalRunnerWeightKgs)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// List returns the documents of a date, optionally trimmed to one shift.
func (h *HourlyHandler) List(c *gin.Context) {
	date, err := requireQuery(c, "date")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	docs, err := h.svc.List(c.Request.Context(), date, c.Query("shift"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "count": len(docs), "documents": docs})
}

// PendingApproval lists documents waiting for admin review.
func (h *HourlyHandler) PendingApproval(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	docs, err := h.svc.PendingApproval(c.Request.Context(), p)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(docs), "documents": docs})
}

// Get returns one document.
func (h *HourlyHandler) Get(c *gin.Context) {
	doc, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}
