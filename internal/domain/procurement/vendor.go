package procurement

import (
	"time"

	"github.com/procurex/backend/internal/domain/shared"
)

// Vendor is a supplier eligible to fulfill requisition lines.
// POSendingStatus flips when an order is dispatched to the vendor.
type Vendor struct {
	shared.BaseAggregateRoot
	Name            string `gorm:"type:varchar(200);not null"`
	Email           string `gorm:"type:varchar(200)"`
	Phone           string `gorm:"type:varchar(50)"`
	Address         string `gorm:"type:varchar(500)"`
	POSendingStatus bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Vendor) TableName() string {
	return "vendors"
}

// NewVendor creates a new vendor
func NewVendor(name, email, phone, address string) (*Vendor, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_VENDOR_NAME", "Vendor name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_VENDOR_NAME", "Vendor name cannot exceed 200 characters")
	}

	return &Vendor{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Email:             email,
		Phone:             phone,
		Address:           address,
	}, nil
}

// MarkDispatched flips the sending flag when an order is sent to this vendor
func (v *Vendor) MarkDispatched() {
	if v.POSendingStatus {
		return
	}
	v.POSendingStatus = true
	v.UpdatedAt = time.Now()
}
