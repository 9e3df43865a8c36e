package procurement

import (
	"context"

	"github.com/google/uuid"
	"github.com/procurex/backend/internal/domain/shared"
)

// TxRunner runs a function inside one database transaction. Repositories
// called with the context passed to fn participate in that transaction, so a
// multi-aggregate workflow commits or rolls back as a unit.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// PurchaseRequisitionRepository defines the interface for requisition persistence
type PurchaseRequisitionRepository interface {
	// FindByID finds a requisition with its items and vendor preferences
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseRequisition, error)

	// FindByIDForUpdate finds a requisition and row-locks its items for the
	// duration of the surrounding transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*PurchaseRequisition, error)

	// FindAll finds requisitions with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]PurchaseRequisition, error)

	// FindByStatus finds requisitions in the given status
	FindByStatus(ctx context.Context, status RequisitionStatus) ([]PurchaseRequisition, error)

	// Save creates or updates a requisition and its items
	Save(ctx context.Context, req *PurchaseRequisition) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, req *PurchaseRequisition) error

	// SaveItems persists only the given requisition lines
	SaveItems(ctx context.Context, items []*PurchaseItem) error

	// Count counts requisitions with optional filters
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// GenerateRequisitionNumber generates a unique requisition number
	GenerateRequisitionNumber(ctx context.Context) (string, error)
}

// PurchaseOrderRepository defines the interface for purchase order persistence
type PurchaseOrderRepository interface {
	// FindByID finds a purchase order with its vendor links
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)

	// FindByRequisitionID finds the order materialized for a requisition
	FindByRequisitionID(ctx context.Context, requisitionID uuid.UUID) (*PurchaseOrder, error)

	// FindAll finds purchase orders with filtering; Search matches the order number
	FindAll(ctx context.Context, filter shared.Filter) ([]PurchaseOrder, error)

	// FindStale finds orders whose requisition is no longer ACCEPTED
	FindStale(ctx context.Context) ([]PurchaseOrder, error)

	// Save creates or updates a purchase order and its vendor links
	Save(ctx context.Context, order *PurchaseOrder) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, order *PurchaseOrder) error

	// UpsertVendorLinks inserts the given (order, item, vendor) triples,
	// ignoring triples that already exist
	UpsertVendorLinks(ctx context.Context, links []PreferredVendorLink) error

	// Delete removes an order together with its vendor links
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts purchase orders with optional filters
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// ExistsByOrderNumber checks if an order number is already taken
	ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error)

	// GenerateOrderNumber generates a unique order number
	GenerateOrderNumber(ctx context.Context) (string, error)
}

// PurchaseReceiveRepository defines the interface for receive persistence
type PurchaseReceiveRepository interface {
	// FindByID finds a receive event with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseReceive, error)

	// FindAll finds receive events with filtering; Search matches the receive number
	FindAll(ctx context.Context, filter shared.Filter) ([]PurchaseReceive, error)

	// FindByOrderID finds all receive events recorded against an order
	FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]PurchaseReceive, error)

	// Save creates or updates a receive event and its lines
	Save(ctx context.Context, receive *PurchaseReceive) error

	// Delete removes a receive event with its lines
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByOrderID removes all receive events for an order
	DeleteByOrderID(ctx context.Context, orderID uuid.UUID) error

	// Count counts receive events with optional filters
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// GenerateReceiveNumber generates a unique receive number
	GenerateReceiveNumber(ctx context.Context) (string, error)
}

// VendorRepository defines the interface for vendor persistence
type VendorRepository interface {
	// FindByID finds a vendor by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Vendor, error)

	// FindByIDs finds the vendors for the given ids; missing ids are simply
	// absent from the result
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Vendor, error)

	// FindAll finds vendors with filtering; Search matches the vendor name
	FindAll(ctx context.Context, filter shared.Filter) ([]Vendor, error)

	// Save creates or updates a vendor
	Save(ctx context.Context, vendor *Vendor) error

	// Count counts vendors with optional filters
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
