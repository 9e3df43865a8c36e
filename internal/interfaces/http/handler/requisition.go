package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	procurementapp "github.com/procurex/backend/internal/application/procurement"
)

// RequisitionHandler handles purchase requisition HTTP requests
type RequisitionHandler struct {
	BaseHandler
	requisitionService *procurementapp.RequisitionService
}

// NewRequisitionHandler creates a new requisition handler
func NewRequisitionHandler(requisitionService *procurementapp.RequisitionService) *RequisitionHandler {
	return &RequisitionHandler{
		requisitionService: requisitionService,
	}
}

// Create records a new requisition, optionally submitting it for approval
func (h *RequisitionHandler) Create(c *gin.Context) {
	var req procurementapp.CreateRequisitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	requisition, err := h.requisitionService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, requisition)
}

// ListAll returns the paginated requisition list
func (h *RequisitionHandler) ListAll(c *gin.Context) {
	filter := procurementapp.RequisitionListFilter{}
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	requisitions, total, err := h.requisitionService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, requisitions, total, page, pageSize)
}

// Get returns a single requisition with its items
func (h *RequisitionHandler) Get(c *gin.Context) {
	requisitionID, err := uuid.Parse(c.Query("id"))
	if err != nil {
		h.BadRequest(c, "Invalid requisition ID format")
		return
	}

	requisition, err := h.requisitionService.GetByID(c.Request.Context(), requisitionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, requisition)
}

// Approve records the approval decision for a pending requisition
func (h *RequisitionHandler) Approve(c *gin.Context) {
	requisitionID, err := uuid.Parse(c.Query("id"))
	if err != nil {
		h.BadRequest(c, "Invalid requisition ID format")
		return
	}

	var req procurementapp.ApproveRequisitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	requisition, err := h.requisitionService.Decide(c.Request.Context(), requisitionID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, requisition)
}

// DocumentUploadRequest asks for a presigned upload slot for a supporting
// document
type DocumentUploadRequest struct {
	FileName    string `json:"file_name" binding:"required,min=1,max=255"`
	ContentType string `json:"content_type" binding:"required,min=1,max=100"`
}

// RequestDocumentUpload returns a presigned URL for uploading a supporting
// document before the requisition is created
func (h *RequisitionHandler) RequestDocumentUpload(c *gin.Context) {
	var req DocumentUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	slot, err := h.requisitionService.RequestDocumentUpload(c.Request.Context(), req.FileName, req.ContentType)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, slot)
}

// DocumentDownloadURL returns a presigned download URL for a requisition's
// supporting document
func (h *RequisitionHandler) DocumentDownloadURL(c *gin.Context) {
	requisitionID, err := uuid.Parse(c.Query("id"))
	if err != nil {
		h.BadRequest(c, "Invalid requisition ID format")
		return
	}

	url, err := h.requisitionService.DocumentDownloadURL(c.Request.Context(), requisitionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, gin.H{"download_url": url})
}
