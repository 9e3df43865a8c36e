package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	procurementapp "github.com/procurex/backend/internal/application/procurement"
)

// VendorHandler handles vendor HTTP requests
type VendorHandler struct {
	BaseHandler
	vendorService *procurementapp.VendorService
}

// NewVendorHandler creates a new vendor handler
func NewVendorHandler(vendorService *procurementapp.VendorService) *VendorHandler {
	return &VendorHandler{
		vendorService: vendorService,
	}
}

// Create registers a new vendor
func (h *VendorHandler) Create(c *gin.Context) {
	var req procurementapp.CreateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	vendor, err := h.vendorService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, vendor)
}

// ListAll returns the paginated vendor list
func (h *VendorHandler) ListAll(c *gin.Context) {
	filter := procurementapp.VendorListFilter{}
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	vendors, total, err := h.vendorService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, vendors, total, page, pageSize)
}

// Get returns a single vendor
func (h *VendorHandler) Get(c *gin.Context) {
	vendorID, err := uuid.Parse(c.Query("id"))
	if err != nil {
		h.BadRequest(c, "Invalid vendor ID format")
		return
	}

	vendor, err := h.vendorService.GetByID(c.Request.Context(), vendorID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, vendor)
}
