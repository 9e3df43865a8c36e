package procurement

import (
	"time"

	"github.com/google/uuid"
	"github.com/procurex/backend/internal/domain/procurement"
	"github.com/shopspring/decimal"
)

// ==================== Requisition DTOs ====================

// CreateRequisitionItemInput is one line of a requisition intake request
type CreateRequisitionItemInput struct {
	ItemID           uuid.UUID       `json:"item_id" binding:"required"`
	RequiredQuantity decimal.Decimal `json:"required_quantity" binding:"required"`
	Price            decimal.Decimal `json:"price" binding:"required"`
	VendorIDs        []uuid.UUID     `json:"vendor_ids"`
}

// CreateRequisitionRequest represents a requisition intake request
type CreateRequisitionRequest struct {
	Items       []CreateRequisitionItemInput `json:"items" binding:"required,min=1"`
	DocumentKey string                       `json:"document_key"`
	Submit      bool                         `json:"submit"`
}

// ApproveRequisitionRequest carries the approval decision
type ApproveRequisitionRequest struct {
	Decision string `json:"decision" binding:"required,oneof=ACCEPTED REJECTED"`
}

// RequisitionListFilter represents filter options for the requisition list
type RequisitionListFilter struct {
	Search   string `form:"requisition_number"`
	Status   string `form:"status"`
	Page     int    `form:"currentPage"`
	PageSize int    `form:"perPage"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PurchaseItemResponse represents a requisition line
type PurchaseItemResponse struct {
	ID               uuid.UUID       `json:"id"`
	ItemID           uuid.UUID       `json:"item_id"`
	AvailableStock   decimal.Decimal `json:"available_stock"`
	RequiredQuantity decimal.Decimal `json:"required_quantity"`
	Price            decimal.Decimal `json:"price"`
	VendorIDs        []uuid.UUID     `json:"preferred_vendor_ids"`
}

// RequisitionResponse represents a requisition with its lines
type RequisitionResponse struct {
	ID                uuid.UUID              `json:"id"`
	RequisitionNumber string                 `json:"requisition_number"`
	Status            string                 `json:"status"`
	TotalAmount       decimal.Decimal        `json:"total_amount"`
	DocumentURL       string                 `json:"document_url,omitempty"`
	Items             []PurchaseItemResponse `json:"items"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

// ToPurchaseItemResponse converts a requisition line to its response form
func ToPurchaseItemResponse(item *procurement.PurchaseItem) PurchaseItemResponse {
	return PurchaseItemResponse{
		ID:               item.ID,
		ItemID:           item.ItemID,
		AvailableStock:   item.AvailableStock,
		RequiredQuantity: item.RequiredQuantity,
		Price:            item.Price,
		VendorIDs:        item.PreferredVendorIDs(),
	}
}

// ToRequisitionResponse converts a requisition to its response form
func ToRequisitionResponse(req *procurement.PurchaseRequisition) RequisitionResponse {
	items := make([]PurchaseItemResponse, len(req.Items))
	for i := range req.Items {
		items[i] = ToPurchaseItemResponse(&req.Items[i])
	}
	return RequisitionResponse{
		ID:                req.ID,
		RequisitionNumber: req.RequisitionNumber,
		Status:            req.Status.String(),
		TotalAmount:       req.TotalAmount,
		DocumentURL:       req.DocumentURL,
		Items:             items,
		CreatedAt:         req.CreatedAt,
		UpdatedAt:         req.UpdatedAt,
	}
}

// ==================== Purchase Order DTOs ====================

// OrderListFilter represents filter options for the order list
type OrderListFilter struct {
	Search   string `form:"purchase_order_number"`
	Status   string `form:"status"`
	Page     int    `form:"currentPage"`
	PageSize int    `form:"perPage"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// DispatchOrderRequest asks for an order to be sent to vendors
type DispatchOrderRequest struct {
	VendorIDs []uuid.UUID `json:"vendorIds" binding:"required,min=1"`
}

// CancelOrderRequest cancels a non-terminal order
type CancelOrderRequest struct {
	PurchaseItemIDs []uuid.UUID `json:"purchase_item_ids"`
	Reason          string      `json:"reason"`
}

// VendorResponse represents a vendor
type VendorResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	Address         string    `json:"address,omitempty"`
	POSendingStatus bool      `json:"po_sending_status"`
}

// ToVendorResponse converts a vendor to its response form
func ToVendorResponse(vendor *procurement.Vendor) VendorResponse {
	return VendorResponse{
		ID:              vendor.ID,
		Name:            vendor.Name,
		Email:           vendor.Email,
		Phone:           vendor.Phone,
		Address:         vendor.Address,
		POSendingStatus: vendor.POSendingStatus,
	}
}

// OrderResponse represents a purchase order with embedded requisition detail
type OrderResponse struct {
	ID                  uuid.UUID            `json:"id"`
	PurchaseOrderNumber string               `json:"purchase_order_number"`
	RequisitionID       uuid.UUID            `json:"purchase_requisition_id"`
	Status              string               `json:"status"`
	Requisition         *RequisitionResponse `json:"requisition,omitempty"`
	PreferredVendors    []VendorResponse     `json:"preferred_vendors,omitempty"`
	IssuedAt            *time.Time           `json:"issued_at,omitempty"`
	CancelledAt         *time.Time           `json:"cancelled_at,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

// ToOrderResponse converts an order to its response form
func ToOrderResponse(order *procurement.PurchaseOrder) OrderResponse {
	return OrderResponse{
		ID:                  order.ID,
		PurchaseOrderNumber: order.OrderNumber,
		RequisitionID:       order.RequisitionID,
		Status:              order.Status.String(),
		IssuedAt:            order.IssuedAt,
		CancelledAt:         order.CancelledAt,
		CreatedAt:           order.CreatedAt,
		UpdatedAt:           order.UpdatedAt,
	}
}

// DispatchResult reports which vendors an order was sent to
type DispatchResult struct {
	OrderID           uuid.UUID   `json:"order_id"`
	Status            string      `json:"status"`
	DispatchedVendors []uuid.UUID `json:"dispatched_vendors"`
}

// ==================== Receive DTOs ====================

// ReceiveLineInput is one delivery line in a receive request. When VendorID
// is nil the line applies once per vendor in the request-level vendor list.
type ReceiveLineInput struct {
	PurchaseItemID   uuid.UUID       `json:"item_id" binding:"required"`
	VendorID         *uuid.UUID      `json:"vendor_id"`
	QuantityReceived decimal.Decimal `json:"quantity_received" binding:"required"`
	Rate             decimal.Decimal `json:"rate"`
}

// CreateReceiveRequest records one receive event against an order
type CreateReceiveRequest struct {
	OrderID      uuid.UUID          `json:"purchase_order_id" binding:"required"`
	VendorIDs    []uuid.UUID        `json:"vendor_ids"`
	Items        []ReceiveLineInput `json:"items" binding:"required,min=1"`
	ReceivedDate time.Time          `json:"received_date"`
	Description  string             `json:"description"`
}

// UpdateReceiveRequest amends an existing receive event
type UpdateReceiveRequest struct {
	ReceiveID    uuid.UUID          `json:"purchase_receive_id" binding:"required"`
	VendorIDs    []uuid.UUID        `json:"vendor_ids"`
	Items        []ReceiveLineInput `json:"items" binding:"required,min=1"`
	ReceivedDate time.Time          `json:"received_date"`
	Description  string             `json:"description"`
}

// ReceiveListFilter represents filter options for the receive list
type ReceiveListFilter struct {
	Search   string `form:"purchase_received_number"`
	Page     int    `form:"currentPage"`
	PageSize int    `form:"perPage"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ReceiveLineResponse represents one recorded delivery line
type ReceiveLineResponse struct {
	ID                uuid.UUID       `json:"id"`
	VendorID          uuid.UUID       `json:"vendor_id"`
	PurchaseItemID    uuid.UUID       `json:"item_id"`
	TotalQuantity     decimal.Decimal `json:"total_quantity"`
	QuantityReceived  decimal.Decimal `json:"quantity_received"`
	Rate              decimal.Decimal `json:"rate"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
}

// ReceiveResponse represents a receive event with its lines
type ReceiveResponse struct {
	ID                    uuid.UUID             `json:"id"`
	PurchaseReceiveNumber string                `json:"purchase_received_number"`
	OrderID               uuid.UUID             `json:"purchase_order_id"`
	OrderStatus           string                `json:"order_status,omitempty"`
	ReceivedDate          time.Time             `json:"received_date"`
	Description           string                `json:"description,omitempty"`
	Items                 []ReceiveLineResponse `json:"items"`
	CreatedAt             time.Time             `json:"created_at"`
	UpdatedAt             time.Time             `json:"updated_at"`
}

// ReceiveDetailResponse groups the lines of one receive event by vendor
type ReceiveDetailResponse struct {
	ReceiveResponse
	Vendors []ReceiveVendorGroup `json:"vendors"`
}

// ReceiveVendorGroup is the set of lines one vendor delivered in an event
type ReceiveVendorGroup struct {
	VendorID uuid.UUID             `json:"vendor_id"`
	Items    []ReceiveLineResponse `json:"items"`
}

// ToReceiveLineResponse converts a delivery line to its response form
func ToReceiveLineResponse(line *procurement.PurchaseReceiveItem) ReceiveLineResponse {
	return ReceiveLineResponse{
		ID:                line.ID,
		VendorID:          line.VendorID,
		PurchaseItemID:    line.PurchaseItemID,
		TotalQuantity:     line.TotalQuantity,
		QuantityReceived:  line.QuantityReceived,
		Rate:              line.Rate,
		RemainingQuantity: line.RemainingQuantity,
	}
}

// ToReceiveResponse converts a receive event to its response form
func ToReceiveResponse(receive *procurement.PurchaseReceive) ReceiveResponse {
	items := make([]ReceiveLineResponse, len(receive.Lines))
	for i := range receive.Lines {
		items[i] = ToReceiveLineResponse(&receive.Lines[i])
	}
	return ReceiveResponse{
		ID:                    receive.ID,
		PurchaseReceiveNumber: receive.ReceiveNumber,
		OrderID:               receive.OrderID,
		ReceivedDate:          receive.ReceivedDate,
		Description:           receive.Description,
		Items:                 items,
		CreatedAt:             receive.CreatedAt,
		UpdatedAt:             receive.UpdatedAt,
	}
}

// ToReceiveDetailResponse converts a receive event to its grouped detail form
func ToReceiveDetailResponse(receive *procurement.PurchaseReceive) ReceiveDetailResponse {
	detail := ReceiveDetailResponse{ReceiveResponse: ToReceiveResponse(receive)}
	groups := make(map[uuid.UUID]*ReceiveVendorGroup)
	for _, vendorID := range receive.VendorIDs() {
		group := &ReceiveVendorGroup{VendorID: vendorID}
		groups[vendorID] = group
	}
	for i := range receive.Lines {
		line := &receive.Lines[i]
		groups[line.VendorID].Items = append(groups[line.VendorID].Items, ToReceiveLineResponse(line))
	}
	for _, vendorID := range receive.VendorIDs() {
		detail.Vendors = append(detail.Vendors, *groups[vendorID])
	}
	return detail
}

// ==================== Vendor DTOs ====================

// CreateVendorRequest creates a vendor
type CreateVendorRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=200"`
	Email   string `json:"email" binding:"omitempty,email"`
	Phone   string `json:"phone" binding:"omitempty,max=50"`
	Address string `json:"address" binding:"omitempty,max=500"`
}

// VendorListFilter represents filter options for the vendor list
type VendorListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"currentPage"`
	PageSize int    `form:"perPage"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}
