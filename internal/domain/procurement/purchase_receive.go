package procurement

import (
	"time"

	"github.com/google/uuid"
	"github.com/procurex/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PurchaseReceiveItem is one delivery line from one vendor for one
// requisition line within one receive event. TotalQuantity snapshots the
// quantity owed before the line was applied; RemainingQuantity is the
// remainder afterwards. Lines are history; later events always work from the
// requisition line's current required quantity.
type PurchaseReceiveItem struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key"`
	ReceiveID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	VendorID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	PurchaseItemID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	TotalQuantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QuantityReceived  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Rate              decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RemainingQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt         time.Time       `gorm:"not null"`
	UpdatedAt         time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseReceiveItem) TableName() string {
	return "purchase_receive_items"
}

// PurchaseReceive is the aggregate root for one receive event against an
// order. An order accumulates many receives over time as partial deliveries
// arrive.
type PurchaseReceive struct {
	shared.BaseAggregateRoot
	ReceiveNumber string                `gorm:"type:varchar(50);not null;uniqueIndex"`
	OrderID       uuid.UUID             `gorm:"type:uuid;not null;index"`
	ReceivedDate  time.Time             `gorm:"not null"`
	Description   string                `gorm:"type:varchar(500)"`
	Lines         []PurchaseReceiveItem `gorm:"foreignKey:ReceiveID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseReceive) TableName() string {
	return "purchase_receives"
}

// NewPurchaseReceive creates a new receive event header
func NewPurchaseReceive(receiveNumber string, orderID uuid.UUID, receivedDate time.Time, description string) (*PurchaseReceive, error) {
	if receiveNumber == "" {
		return nil, shared.NewDomainError("INVALID_RECEIVE_NUMBER", "Receive number cannot be empty")
	}
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if receivedDate.IsZero() {
		receivedDate = time.Now()
	}

	return &PurchaseReceive{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ReceiveNumber:     receiveNumber,
		OrderID:           orderID,
		ReceivedDate:      receivedDate,
		Description:       description,
		Lines:             make([]PurchaseReceiveItem, 0),
	}, nil
}

// AddLine appends a delivery line from an applied receipt
func (p *PurchaseReceive) AddLine(vendorID, purchaseItemID uuid.UUID, rate decimal.Decimal, app ReceiptApplication) *PurchaseReceiveItem {
	now := time.Now()
	line := PurchaseReceiveItem{
		ID:                uuid.New(),
		ReceiveID:         p.ID,
		VendorID:          vendorID,
		PurchaseItemID:    purchaseItemID,
		TotalQuantity:     app.TotalQuantity,
		QuantityReceived:  app.QuantityReceived,
		Rate:              rate,
		RemainingQuantity: app.RemainingQuantity,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	p.Lines = append(p.Lines, line)
	p.UpdatedAt = now
	return &p.Lines[len(p.Lines)-1]
}

// UpsertLine replaces the line matching (vendor, item) with the new receipt
// snapshot, or appends one when no match exists. Used by the update variant
// of receive processing.
func (p *PurchaseReceive) UpsertLine(vendorID, purchaseItemID uuid.UUID, rate decimal.Decimal, app ReceiptApplication) *PurchaseReceiveItem {
	for idx := range p.Lines {
		if p.Lines[idx].VendorID == vendorID && p.Lines[idx].PurchaseItemID == purchaseItemID {
			p.Lines[idx].TotalQuantity = app.TotalQuantity
			p.Lines[idx].QuantityReceived = app.QuantityReceived
			p.Lines[idx].Rate = rate
			p.Lines[idx].RemainingQuantity = app.RemainingQuantity
			p.Lines[idx].UpdatedAt = time.Now()
			p.UpdatedAt = p.Lines[idx].UpdatedAt
			return &p.Lines[idx]
		}
	}
	return p.AddLine(vendorID, purchaseItemID, rate, app)
}

// UpdateHeader updates the mutable header fields
func (p *PurchaseReceive) UpdateHeader(receivedDate time.Time, description string) {
	if !receivedDate.IsZero() {
		p.ReceivedDate = receivedDate
	}
	p.Description = description
	p.UpdatedAt = time.Now()
}

// LineFor returns the line matching (vendor, item), or nil
func (p *PurchaseReceive) LineFor(vendorID, purchaseItemID uuid.UUID) *PurchaseReceiveItem {
	for idx := range p.Lines {
		if p.Lines[idx].VendorID == vendorID && p.Lines[idx].PurchaseItemID == purchaseItemID {
			return &p.Lines[idx]
		}
	}
	return nil
}

// VendorIDs returns the distinct vendors that delivered in this event
func (p *PurchaseReceive) VendorIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(p.Lines))
	ids := make([]uuid.UUID, 0, len(p.Lines))
	for _, line := range p.Lines {
		if _, ok := seen[line.VendorID]; ok {
			continue
		}
		seen[line.VendorID] = struct{}{}
		ids = append(ids, line.VendorID)
	}
	return ids
}
