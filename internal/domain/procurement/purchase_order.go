package procurement

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/procurex/backend/internal/domain/shared"
)

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft             PurchaseOrderStatus = "DRAFT"
	PurchaseOrderStatusIssued            PurchaseOrderStatus = "ISSUED"
	PurchaseOrderStatusPartiallyReceived PurchaseOrderStatus = "PARTIALLY RECEIVED"
	PurchaseOrderStatusFullyDelivered    PurchaseOrderStatus = "FULLY DELIVERED"
	PurchaseOrderStatusCancelled         PurchaseOrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusDraft, PurchaseOrderStatusIssued, PurchaseOrderStatusPartiallyReceived,
		PurchaseOrderStatusFullyDelivered, PurchaseOrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PurchaseOrderStatus
func (s PurchaseOrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	switch s {
	case PurchaseOrderStatusDraft:
		return target == PurchaseOrderStatusIssued || target == PurchaseOrderStatusPartiallyReceived ||
			target == PurchaseOrderStatusFullyDelivered || target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusIssued:
		return target == PurchaseOrderStatusPartiallyReceived || target == PurchaseOrderStatusFullyDelivered ||
			target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusPartiallyReceived:
		return target == PurchaseOrderStatusIssued || target == PurchaseOrderStatusPartiallyReceived ||
			target == PurchaseOrderStatusFullyDelivered || target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusFullyDelivered, PurchaseOrderStatusCancelled:
		return false
	}
	return false
}

// CanReceive returns true if deliveries may still be recorded in this status
func (s PurchaseOrderStatus) CanReceive() bool {
	return s != PurchaseOrderStatusFullyDelivered && s != PurchaseOrderStatusCancelled
}

// CanDispatch returns true if the order may be sent to vendors in this
// status. Partially received orders may be dispatched again, for example to
// route the remaining quantity through another vendor.
func (s PurchaseOrderStatus) CanDispatch() bool {
	return s != PurchaseOrderStatusFullyDelivered && s != PurchaseOrderStatusCancelled
}

// PreferredVendorLink is one denormalized (order, item, vendor) assignment.
// The triple is unique; re-denormalizing an order is a no-op for existing
// triples.
type PreferredVendorLink struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key"`
	OrderID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_order_item_vendor,priority:1"`
	PurchaseItemID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_order_item_vendor,priority:2"`
	VendorID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_order_item_vendor,priority:3"`
	CreatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PreferredVendorLink) TableName() string {
	return "purchase_order_preferred_vendors"
}

// PurchaseOrder is the aggregate root for the order state machine. It exists
// only while its requisition remains ACCEPTED; the promoter deletes orders
// whose requisition has since changed.
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	OrderNumber   string                `gorm:"type:varchar(50);not null;uniqueIndex"`
	RequisitionID uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex"`
	Status        PurchaseOrderStatus   `gorm:"type:varchar(30);not null;default:'DRAFT'"`
	VendorLinks   []PreferredVendorLink `gorm:"foreignKey:OrderID;references:ID"`
	IssuedAt      *time.Time
	CancelledAt   *time.Time
	CancelReason  string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// NewPurchaseOrder materializes an order for an accepted requisition
func NewPurchaseOrder(orderNumber string, requisitionID uuid.UUID) (*PurchaseOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot exceed 50 characters")
	}
	if requisitionID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REQUISITION", "Requisition ID cannot be empty")
	}

	order := &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		RequisitionID:     requisitionID,
		Status:            PurchaseOrderStatusDraft,
		VendorLinks:       make([]PreferredVendorLink, 0),
	}

	order.AddDomainEvent(NewPurchaseOrderPromotedEvent(order))

	return order, nil
}

// LinkVendor records an (item, vendor) assignment on the order. Duplicate
// triples are ignored so denormalization replays are idempotent.
func (o *PurchaseOrder) LinkVendor(purchaseItemID, vendorID uuid.UUID) bool {
	for _, link := range o.VendorLinks {
		if link.PurchaseItemID == purchaseItemID && link.VendorID == vendorID {
			return false
		}
	}
	o.VendorLinks = append(o.VendorLinks, PreferredVendorLink{
		ID:             uuid.New(),
		OrderID:        o.ID,
		PurchaseItemID: purchaseItemID,
		VendorID:       vendorID,
		CreatedAt:      time.Now(),
	})
	return true
}

// HasVendorLinks reports whether any vendor assignment exists on the order
func (o *PurchaseOrder) HasVendorLinks() bool {
	return len(o.VendorLinks) > 0
}

// IsVendorLinked reports whether the vendor appears in any assignment
func (o *PurchaseOrder) IsVendorLinked(vendorID uuid.UUID) bool {
	for _, link := range o.VendorLinks {
		if link.VendorID == vendorID {
			return true
		}
	}
	return false
}

// LinkedVendorIDs returns the distinct vendor ids assigned to the order
func (o *PurchaseOrder) LinkedVendorIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(o.VendorLinks))
	ids := make([]uuid.UUID, 0, len(o.VendorLinks))
	for _, link := range o.VendorLinks {
		if _, ok := seen[link.VendorID]; ok {
			continue
		}
		seen[link.VendorID] = struct{}{}
		ids = append(ids, link.VendorID)
	}
	return ids
}

// Issue marks the order dispatched to vendors
func (o *PurchaseOrder) Issue() error {
	if !o.Status.CanDispatch() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot dispatch order in %s status", o.Status))
	}
	if !o.HasVendorLinks() {
		return shared.NewDomainError("NO_VENDORS", "Order has no preferred vendor assignments")
	}

	now := time.Now()
	o.Status = PurchaseOrderStatusIssued
	o.IssuedAt = &now
	o.UpdatedAt = now

	o.AddDomainEvent(NewPurchaseOrderIssuedEvent(o))

	return nil
}

// RecordDeliveryProgress moves the order to PARTIALLY RECEIVED or FULLY
// DELIVERED depending on whether every requisition line has been satisfied.
func (o *PurchaseOrder) RecordDeliveryProgress(allDelivered bool) error {
	target := PurchaseOrderStatusPartiallyReceived
	if allDelivered {
		target = PurchaseOrderStatusFullyDelivered
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot record delivery for order in %s status", o.Status))
	}

	o.Status = target
	o.UpdatedAt = time.Now()

	return nil
}

// Cancel transitions a non-terminal order to CANCELLED
func (o *PurchaseOrder) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(PurchaseOrderStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}

	now := time.Now()
	o.Status = PurchaseOrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.UpdatedAt = now

	o.AddDomainEvent(NewPurchaseOrderCancelledEvent(o))

	return nil
}

// IsDraft returns true if the order has not been dispatched
func (o *PurchaseOrder) IsDraft() bool {
	return o.Status == PurchaseOrderStatusDraft
}

// IsIssued returns true if the order has been dispatched to vendors
func (o *PurchaseOrder) IsIssued() bool {
	return o.Status == PurchaseOrderStatusIssued
}

// IsCancelled returns true if the order is cancelled
func (o *PurchaseOrder) IsCancelled() bool {
	return o.Status == PurchaseOrderStatusCancelled
}

// IsTerminal returns true if no further mutation is allowed
func (o *PurchaseOrder) IsTerminal() bool {
	return o.Status == PurchaseOrderStatusFullyDelivered || o.Status == PurchaseOrderStatusCancelled
}
