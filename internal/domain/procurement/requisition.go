package procurement

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/procurex/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RequisitionStatus represents the status of a purchase requisition
type RequisitionStatus string

const (
	RequisitionStatusDraft    RequisitionStatus = "DRAFT"
	RequisitionStatusPending  RequisitionStatus = "PENDING"
	RequisitionStatusAccepted RequisitionStatus = "ACCEPTED"
	RequisitionStatusRejected RequisitionStatus = "REJECTED"
)

// IsValid checks if the status is a valid RequisitionStatus
func (s RequisitionStatus) IsValid() bool {
	switch s {
	case RequisitionStatusDraft, RequisitionStatusPending, RequisitionStatusAccepted, RequisitionStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of RequisitionStatus
func (s RequisitionStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s RequisitionStatus) CanTransitionTo(target RequisitionStatus) bool {
	switch s {
	case RequisitionStatusDraft:
		return target == RequisitionStatusPending || target == RequisitionStatusRejected
	case RequisitionStatusPending:
		return target == RequisitionStatusAccepted || target == RequisitionStatusRejected
	case RequisitionStatusAccepted:
		// Reverted when its materialized order is deleted.
		return target == RequisitionStatusRejected
	case RequisitionStatusRejected:
		return false
	}
	return false
}

// PurchaseItemVendor is a preference entry linking a requisition line to an
// eligible vendor. Position preserves the order the vendors were supplied in.
type PurchaseItemVendor struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key"`
	PurchaseItemID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_purchase_item_vendor,priority:1"`
	VendorID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_purchase_item_vendor,priority:2"`
	Position       int       `gorm:"not null;default:0"`
	CreatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseItemVendor) TableName() string {
	return "purchase_item_vendors"
}

// ReceiptApplication is the outcome of applying one delivery line to a
// requisition line: the quantity owed before the delivery, the quantity
// delivered, and the remainder still owed afterwards.
type ReceiptApplication struct {
	TotalQuantity     decimal.Decimal
	QuantityReceived  decimal.Decimal
	RemainingQuantity decimal.Decimal
}

// PurchaseItem is a requisition line. RequiredQuantity is the quantity still
// owed; it only ever decreases as deliveries are applied, except when a
// cancellation forces it to zero.
type PurchaseItem struct {
	ID               uuid.UUID            `gorm:"type:uuid;primary_key"`
	RequisitionID    uuid.UUID            `gorm:"type:uuid;not null;index"`
	ItemID           uuid.UUID            `gorm:"type:uuid;not null"`
	AvailableStock   decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	RequiredQuantity decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Price            decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Vendors          []PurchaseItemVendor `gorm:"foreignKey:PurchaseItemID;references:ID"`
	CreatedAt        time.Time            `gorm:"not null"`
	UpdatedAt        time.Time            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseItem) TableName() string {
	return "purchase_items"
}

// NewPurchaseItem creates a new requisition line
func NewPurchaseItem(requisitionID, itemID uuid.UUID, requiredQuantity, price decimal.Decimal, vendorIDs []uuid.UUID) (*PurchaseItem, error) {
	if itemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}
	if requiredQuantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Required quantity must be positive")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	now := time.Now()
	line := &PurchaseItem{
		ID:               uuid.New(),
		RequisitionID:    requisitionID,
		ItemID:           itemID,
		AvailableStock:   decimal.Zero,
		RequiredQuantity: requiredQuantity,
		Price:            price,
		Vendors:          make([]PurchaseItemVendor, 0, len(vendorIDs)),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	for pos, vendorID := range vendorIDs {
		if vendorID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_VENDOR", "Vendor ID cannot be empty")
		}
		if line.HasPreferredVendor(vendorID) {
			continue
		}
		line.Vendors = append(line.Vendors, PurchaseItemVendor{
			ID:             uuid.New(),
			PurchaseItemID: line.ID,
			VendorID:       vendorID,
			Position:       pos,
			CreatedAt:      now,
		})
	}

	return line, nil
}

// PreferredVendorIDs returns the vendor ids in preference order
func (i *PurchaseItem) PreferredVendorIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(i.Vendors))
	for idx, v := range i.Vendors {
		ids[idx] = v.VendorID
	}
	return ids
}

// HasPreferredVendor reports whether the vendor is eligible for this line
func (i *PurchaseItem) HasPreferredVendor(vendorID uuid.UUID) bool {
	for _, v := range i.Vendors {
		if v.VendorID == vendorID {
			return true
		}
	}
	return false
}

// HasOutstanding reports whether any quantity is still owed on this line
func (i *PurchaseItem) HasOutstanding() bool {
	return i.RequiredQuantity.GreaterThan(decimal.Zero)
}

// ApplyReceipt records a delivery of quantity against this line. The
// application snapshots the quantity owed before the delivery, then moves the
// delivered quantity from owed to on-hand. Applications within one receive
// event are sequential, so a second vendor delivering against the same line
// sees the first vendor's deduction.
func (i *PurchaseItem) ApplyReceipt(quantity decimal.Decimal) (ReceiptApplication, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return ReceiptApplication{}, shared.NewDomainError("INVALID_QUANTITY", "Received quantity must be positive")
	}
	if quantity.GreaterThan(i.RequiredQuantity) {
		return ReceiptApplication{}, shared.NewDomainError("QUANTITY_EXCEEDED",
			fmt.Sprintf("Cannot receive %s, only %s remaining", quantity.String(), i.RequiredQuantity.String()))
	}

	app := ReceiptApplication{
		TotalQuantity:     i.RequiredQuantity,
		QuantityReceived:  quantity,
		RemainingQuantity: i.RequiredQuantity.Sub(quantity),
	}

	i.AvailableStock = i.AvailableStock.Add(quantity)
	i.RequiredQuantity = app.RemainingQuantity
	i.UpdatedAt = time.Now()

	return app, nil
}

// ZeroRemaining forces the owed quantity to zero. Used by cancellation.
func (i *PurchaseItem) ZeroRemaining() {
	i.RequiredQuantity = decimal.Zero
	i.UpdatedAt = time.Now()
}

// Amount returns the line amount (required quantity * price)
func (i *PurchaseItem) Amount() decimal.Decimal {
	return i.RequiredQuantity.Mul(i.Price)
}

// PurchaseRequisition is the aggregate root for an internal purchase request.
// Its lines carry the quantity ledger that receive and cancel operations
// mutate after the requisition has been promoted to an order.
type PurchaseRequisition struct {
	shared.BaseAggregateRoot
	RequisitionNumber string            `gorm:"type:varchar(50);not null;uniqueIndex"`
	Status            RequisitionStatus `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	Items             []PurchaseItem    `gorm:"foreignKey:RequisitionID;references:ID"`
	TotalAmount       decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	DocumentURL       string            `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (PurchaseRequisition) TableName() string {
	return "purchase_requisitions"
}

// NewPurchaseRequisition creates a new requisition in DRAFT status
func NewPurchaseRequisition(requisitionNumber string) (*PurchaseRequisition, error) {
	if requisitionNumber == "" {
		return nil, shared.NewDomainError("INVALID_REQUISITION_NUMBER", "Requisition number cannot be empty")
	}
	if len(requisitionNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_REQUISITION_NUMBER", "Requisition number cannot exceed 50 characters")
	}

	return &PurchaseRequisition{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		RequisitionNumber: requisitionNumber,
		Status:            RequisitionStatusDraft,
		Items:             make([]PurchaseItem, 0),
		TotalAmount:       decimal.Zero,
	}, nil
}

// AddItem adds a line to the requisition. Only allowed before approval.
func (r *PurchaseRequisition) AddItem(itemID uuid.UUID, requiredQuantity, price decimal.Decimal, vendorIDs []uuid.UUID) (*PurchaseItem, error) {
	if r.Status != RequisitionStatusDraft && r.Status != RequisitionStatusPending {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a requisition awaiting or past approval")
	}
	for _, existing := range r.Items {
		if existing.ItemID == itemID {
			return nil, shared.NewDomainError("DUPLICATE_ITEM", "Item already exists on requisition")
		}
	}

	line, err := NewPurchaseItem(r.ID, itemID, requiredQuantity, price, vendorIDs)
	if err != nil {
		return nil, err
	}

	r.Items = append(r.Items, *line)
	r.recalculateTotal()
	r.UpdatedAt = time.Now()

	return &r.Items[len(r.Items)-1], nil
}

// AttachDocument records the uploaded document location
func (r *PurchaseRequisition) AttachDocument(url string) {
	r.DocumentURL = url
	r.UpdatedAt = time.Now()
}

// Submit moves the requisition into the approval queue
func (r *PurchaseRequisition) Submit() error {
	if !r.Status.CanTransitionTo(RequisitionStatusPending) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot submit requisition in %s status", r.Status))
	}
	if len(r.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot submit requisition without items")
	}

	r.Status = RequisitionStatusPending
	r.UpdatedAt = time.Now()

	return nil
}

// Approve accepts a pending requisition, making it eligible for promotion
func (r *PurchaseRequisition) Approve() error {
	if !r.Status.CanTransitionTo(RequisitionStatusAccepted) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve requisition in %s status", r.Status))
	}

	r.Status = RequisitionStatusAccepted
	r.UpdatedAt = time.Now()

	r.AddDomainEvent(NewRequisitionApprovedEvent(r))

	return nil
}

// Reject marks the requisition rejected. Also used to revert an ACCEPTED
// requisition when its draft order is deleted.
func (r *PurchaseRequisition) Reject() error {
	if !r.Status.CanTransitionTo(RequisitionStatusRejected) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject requisition in %s status", r.Status))
	}

	r.Status = RequisitionStatusRejected
	r.UpdatedAt = time.Now()

	return nil
}

// GetItem returns a line by its primary key
func (r *PurchaseRequisition) GetItem(purchaseItemID uuid.UUID) *PurchaseItem {
	for idx := range r.Items {
		if r.Items[idx].ID == purchaseItemID {
			return &r.Items[idx]
		}
	}
	return nil
}

// HasOutstandingItems reports whether any line still has quantity owed
func (r *PurchaseRequisition) HasOutstandingItems() bool {
	for idx := range r.Items {
		if r.Items[idx].HasOutstanding() {
			return true
		}
	}
	return false
}

// AllItemsDelivered reports whether every line has been fully received.
// Order status recomputation aggregates over all lines, not just the lines
// touched by the latest receive event.
func (r *PurchaseRequisition) AllItemsDelivered() bool {
	return len(r.Items) > 0 && !r.HasOutstandingItems()
}

// ZeroOutstanding forces the owed quantity to zero on the given lines, or on
// every line when ids is empty. Returns how many lines were touched.
func (r *PurchaseRequisition) ZeroOutstanding(ids []uuid.UUID) int {
	touched := 0
	if len(ids) == 0 {
		for idx := range r.Items {
			if r.Items[idx].HasOutstanding() {
				r.Items[idx].ZeroRemaining()
				touched++
			}
		}
	} else {
		for _, id := range ids {
			if line := r.GetItem(id); line != nil {
				line.ZeroRemaining()
				touched++
			}
		}
	}
	if touched > 0 {
		r.UpdatedAt = time.Now()
	}
	return touched
}

// IsAccepted returns true if the requisition has been approved
func (r *PurchaseRequisition) IsAccepted() bool {
	return r.Status == RequisitionStatusAccepted
}

// recalculateTotal recomputes the requisition total from its lines
func (r *PurchaseRequisition) recalculateTotal() {
	total := decimal.Zero
	for idx := range r.Items {
		total = total.Add(r.Items[idx].Amount())
	}
	r.TotalAmount = total
}
