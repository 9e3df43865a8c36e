package procurement

import (
	"github.com/google/uuid"
	"github.com/procurex/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypePurchaseOrder       = "PurchaseOrder"
	AggregateTypePurchaseRequisition = "PurchaseRequisition"
	AggregateTypePurchaseReceive     = "PurchaseReceive"
)

// Event type constants
const (
	EventTypeRequisitionApproved    = "RequisitionApproved"
	EventTypePurchaseOrderPromoted  = "PurchaseOrderPromoted"
	EventTypePurchaseOrderIssued    = "PurchaseOrderIssued"
	EventTypeGoodsReceived          = "GoodsReceived"
	EventTypePurchaseOrderCancelled = "PurchaseOrderCancelled"
)

// RequisitionApprovedEvent is raised when a requisition passes approval
type RequisitionApprovedEvent struct {
	shared.BaseDomainEvent
	RequisitionID     uuid.UUID       `json:"requisition_id"`
	RequisitionNumber string          `json:"requisition_number"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
}

// NewRequisitionApprovedEvent creates a new RequisitionApprovedEvent
func NewRequisitionApprovedEvent(req *PurchaseRequisition) *RequisitionApprovedEvent {
	return &RequisitionApprovedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeRequisitionApproved, AggregateTypePurchaseRequisition, req.ID),
		RequisitionID:     req.ID,
		RequisitionNumber: req.RequisitionNumber,
		TotalAmount:       req.TotalAmount,
	}
}

// EventType returns the event type name
func (e *RequisitionApprovedEvent) EventType() string {
	return EventTypeRequisitionApproved
}

// PurchaseOrderPromotedEvent is raised when the promoter materializes an
// order for an accepted requisition
type PurchaseOrderPromotedEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
	RequisitionID uuid.UUID `json:"requisition_id"`
}

// NewPurchaseOrderPromotedEvent creates a new PurchaseOrderPromotedEvent
func NewPurchaseOrderPromotedEvent(order *PurchaseOrder) *PurchaseOrderPromotedEvent {
	return &PurchaseOrderPromotedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderPromoted, AggregateTypePurchaseOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		RequisitionID:   order.RequisitionID,
	}
}

// EventType returns the event type name
func (e *PurchaseOrderPromotedEvent) EventType() string {
	return EventTypePurchaseOrderPromoted
}

// PurchaseOrderIssuedEvent is raised when an order is dispatched to vendors
type PurchaseOrderIssuedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID   `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	VendorIDs   []uuid.UUID `json:"vendor_ids"`
}

// NewPurchaseOrderIssuedEvent creates a new PurchaseOrderIssuedEvent
func NewPurchaseOrderIssuedEvent(order *PurchaseOrder) *PurchaseOrderIssuedEvent {
	return &PurchaseOrderIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderIssued, AggregateTypePurchaseOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		VendorIDs:       order.LinkedVendorIDs(),
	}
}

// EventType returns the event type name
func (e *PurchaseOrderIssuedEvent) EventType() string {
	return EventTypePurchaseOrderIssued
}

// ReceivedLineInfo describes one applied delivery line in an event payload
type ReceivedLineInfo struct {
	PurchaseItemID    uuid.UUID       `json:"purchase_item_id"`
	VendorID          uuid.UUID       `json:"vendor_id"`
	QuantityReceived  decimal.Decimal `json:"quantity_received"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
	Rate              decimal.Decimal `json:"rate"`
}

// GoodsReceivedEvent is raised when a receive event is recorded
type GoodsReceivedEvent struct {
	shared.BaseDomainEvent
	ReceiveID     uuid.UUID           `json:"receive_id"`
	ReceiveNumber string              `json:"receive_number"`
	OrderID       uuid.UUID           `json:"order_id"`
	OrderStatus   PurchaseOrderStatus `json:"order_status"`
	Lines         []ReceivedLineInfo  `json:"lines"`
}

// NewGoodsReceivedEvent creates a new GoodsReceivedEvent
func NewGoodsReceivedEvent(receive *PurchaseReceive, orderStatus PurchaseOrderStatus) *GoodsReceivedEvent {
	lines := make([]ReceivedLineInfo, len(receive.Lines))
	for i, line := range receive.Lines {
		lines[i] = ReceivedLineInfo{
			PurchaseItemID:    line.PurchaseItemID,
			VendorID:          line.VendorID,
			QuantityReceived:  line.QuantityReceived,
			RemainingQuantity: line.RemainingQuantity,
			Rate:              line.Rate,
		}
	}

	return &GoodsReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeGoodsReceived, AggregateTypePurchaseReceive, receive.ID),
		ReceiveID:       receive.ID,
		ReceiveNumber:   receive.ReceiveNumber,
		OrderID:         receive.OrderID,
		OrderStatus:     orderStatus,
		Lines:           lines,
	}
}

// EventType returns the event type name
func (e *GoodsReceivedEvent) EventType() string {
	return EventTypeGoodsReceived
}

// PurchaseOrderCancelledEvent is raised when an order is cancelled
type PurchaseOrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Reason      string    `json:"reason,omitempty"`
}

// NewPurchaseOrderCancelledEvent creates a new PurchaseOrderCancelledEvent
func NewPurchaseOrderCancelledEvent(order *PurchaseOrder) *PurchaseOrderCancelledEvent {
	return &PurchaseOrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCancelled, AggregateTypePurchaseOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		Reason:          order.CancelReason,
	}
}

// EventType returns the event type name
func (e *PurchaseOrderCancelledEvent) EventType() string {
	return EventTypePurchaseOrderCancelled
}
