package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/procurex/backend/internal/domain/procurement"
	"github.com/procurex/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// passthroughTx runs the function directly, without a real transaction
type passthroughTx struct{}

func (passthroughTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// MockPurchaseOrderRepository is a mock implementation of PurchaseOrderRepository
type MockPurchaseOrderRepository struct {
	mock.Mock
}

func (m *MockPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindByRequisitionID(ctx context.Context, requisitionID uuid.UUID) (*procurement.PurchaseOrder, error) {
	args := m.Called(ctx, requisitionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]procurement.PurchaseOrder, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindStale(ctx context.Context) ([]procurement.PurchaseOrder, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) Save(ctx context.Context, order *procurement.PurchaseOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) SaveWithLock(ctx context.Context, order *procurement.PurchaseOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) UpsertVendorLinks(ctx context.Context, links []procurement.PreferredVendorLink) error {
	args := m.Called(ctx, links)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPurchaseOrderRepository) ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error) {
	args := m.Called(ctx, orderNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockPurchaseOrderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockPurchaseRequisitionRepository is a mock implementation of PurchaseRequisitionRepository
type MockPurchaseRequisitionRepository struct {
	mock.Mock
}

func (m *MockPurchaseRequisitionRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.PurchaseRequisition, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.PurchaseRequisition), args.Error(1)
}

func (m *MockPurchaseRequisitionRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*procurement.PurchaseRequisition, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.PurchaseRequisition), args.Error(1)
}

func (m *MockPurchaseRequisitionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]procurement.PurchaseRequisition, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.PurchaseRequisition), args.Error(1)
}

func (m *MockPurchaseRequisitionRepository) FindByStatus(ctx context.Context, status procurement.RequisitionStatus) ([]procurement.PurchaseRequisition, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.PurchaseRequisition), args.Error(1)
}

func (m *MockPurchaseRequisitionRepository) Save(ctx context.Context, req *procurement.PurchaseRequisition) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockPurchaseRequisitionRepository) SaveWithLock(ctx context.Context, req *procurement.PurchaseRequisition) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockPurchaseRequisitionRepository) SaveItems(ctx context.Context, items []*procurement.PurchaseItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *MockPurchaseRequisitionRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPurchaseRequisitionRepository) GenerateRequisitionNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockPurchaseReceiveRepository is a mock implementation of PurchaseReceiveRepository
type MockPurchaseReceiveRepository struct {
	mock.Mock
}

func (m *MockPurchaseReceiveRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.PurchaseReceive, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.PurchaseReceive), args.Error(1)
}

func (m *MockPurchaseReceiveRepository) FindAll(ctx context.Context, filter shared.Filter) ([]procurement.PurchaseReceive, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.PurchaseReceive), args.Error(1)
}

func (m *MockPurchaseReceiveRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]procurement.PurchaseReceive, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.PurchaseReceive), args.Error(1)
}

func (m *MockPurchaseReceiveRepository) Save(ctx context.Context, receive *procurement.PurchaseReceive) error {
	args := m.Called(ctx, receive)
	return args.Error(0)
}

func (m *MockPurchaseReceiveRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPurchaseReceiveRepository) DeleteByOrderID(ctx context.Context, orderID uuid.UUID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockPurchaseReceiveRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPurchaseReceiveRepository) GenerateReceiveNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockVendorRepository is a mock implementation of VendorRepository
type MockVendorRepository struct {
	mock.Mock
}

func (m *MockVendorRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.Vendor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.Vendor), args.Error(1)
}

func (m *MockVendorRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]procurement.Vendor, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.Vendor), args.Error(1)
}

func (m *MockVendorRepository) FindAll(ctx context.Context, filter shared.Filter) ([]procurement.Vendor, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.Vendor), args.Error(1)
}

func (m *MockVendorRepository) Save(ctx context.Context, vendor *procurement.Vendor) error {
	args := m.Called(ctx, vendor)
	return args.Error(0)
}

func (m *MockVendorRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}
