package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	procurementapp "github.com/procurex/backend/internal/application/procurement"
)

// PurchaseReceiveHandler handles goods receipt HTTP requests. Vendor and item
// lookups on the receives surface read through the order service because they
// are order-scoped.
type PurchaseReceiveHandler struct {
	BaseHandler
	receiveService *procurementapp.PurchaseReceiveService
	orderService   *procurementapp.PurchaseOrderService
}

// NewPurchaseReceiveHandler creates a new purchase receive handler
func NewPurchaseReceiveHandler(
	receiveService *procurementapp.PurchaseReceiveService,
	orderService *procurementapp.PurchaseOrderService,
) *PurchaseReceiveHandler {
	return &PurchaseReceiveHandler{
		receiveService: receiveService,
		orderService:   orderService,
	}
}

// Create records a new goods receipt against an order
func (h *PurchaseReceiveHandler) Create(c *gin.Context) {
	var req procurementapp.CreateReceiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	receive, err := h.receiveService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, receive)
}

// Update amends an existing goods receipt
func (h *PurchaseReceiveHandler) Update(c *gin.Context) {
	var req procurementapp.UpdateReceiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	receive, err := h.receiveService.Update(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, receive)
}

// Cancel cancels the outstanding remainder of the receive's order. The
// receives surface exposes the same cancellation as the orders surface.
func (h *PurchaseReceiveHandler) Cancel(c *gin.Context) {
	orderID, err := uuid.Parse(c.Query("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req procurementapp.CancelOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	order, err := h.orderService.Cancel(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// ListAll returns the paginated receive list
func (h *PurchaseReceiveHandler) ListAll(c *gin.Context) {
	filter := procurementapp.ReceiveListFilter{}
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	receives, total, err := h.receiveService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, receives, total, page, pageSize)
}

// Get returns a single receive with its lines grouped by vendor
func (h *PurchaseReceiveHandler) Get(c *gin.Context) {
	receiveID, err := uuid.Parse(c.Query("id"))
	if err != nil {
		h.BadRequest(c, "Invalid receive ID format")
		return
	}

	receive, err := h.receiveService.GetByID(c.Request.Context(), receiveID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, receive)
}

// GetVendors returns the vendors an order was dispatched to
func (h *PurchaseReceiveHandler) GetVendors(c *gin.Context) {
	orderID, err := uuid.Parse(c.Query("purchase_order_id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	vendors, err := h.orderService.VendorsForOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, vendors)
}

// GetPurchaseItems returns the receivable items for an (order, vendor) pair
func (h *PurchaseReceiveHandler) GetPurchaseItems(c *gin.Context) {
	orderID, err := uuid.Parse(c.Query("purchase_order_id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	vendorID, err := uuid.Parse(c.Query("vendor_id"))
	if err != nil {
		h.BadRequest(c, "Invalid vendor ID format")
		return
	}

	items, err := h.orderService.ItemsForOrderVendor(c.Request.Context(), orderID, vendorID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, items)
}
