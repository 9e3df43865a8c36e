package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	procurementapp "github.com/procurex/backend/internal/application/procurement"
	"github.com/procurex/backend/internal/domain/procurement"
	"github.com/procurex/backend/internal/domain/shared"
	"github.com/procurex/backend/internal/interfaces/http/dto"
)

type orderTestDeps struct {
	orderRepo   *MockPurchaseOrderRepository
	reqRepo     *MockPurchaseRequisitionRepository
	receiveRepo *MockPurchaseReceiveRepository
	vendorRepo  *MockVendorRepository
}

func setupOrderRouter() (*gin.Engine, orderTestDeps) {
	gin.SetMode(gin.TestMode)
	deps := orderTestDeps{
		orderRepo:   new(MockPurchaseOrderRepository),
		reqRepo:     new(MockPurchaseRequisitionRepository),
		receiveRepo: new(MockPurchaseReceiveRepository),
		vendorRepo:  new(MockVendorRepository),
	}
	service := procurementapp.NewPurchaseOrderService(
		deps.orderRepo, deps.reqRepo, deps.receiveRepo, deps.vendorRepo, passthroughTx{})
	handler := NewPurchaseOrderHandler(service)

	router := gin.New()
	router.GET("/orders/get/all", handler.ListAll)
	router.PUT("/orders/send/vendor", handler.SendVendor)
	router.GET("/orders/get/purchase/order", handler.Search)
	router.GET("/orders/get", handler.Get)
	router.DELETE("/orders/delete", handler.Delete)
	router.DELETE("/orders/cancel", handler.Cancel)
	return router, deps
}

// acceptedRequisition builds an ACCEPTED requisition with one 10-unit line
// preferring the given vendors
func acceptedRequisition(t *testing.T, vendorIDs ...uuid.UUID) *procurement.PurchaseRequisition {
	t.Helper()
	req, err := procurement.NewPurchaseRequisition("REQ-2026-00010")
	require.NoError(t, err)
	_, err = req.AddItem(uuid.New(), decimal.NewFromInt(10), decimal.NewFromInt(3), vendorIDs)
	require.NoError(t, err)
	require.NoError(t, req.Submit())
	require.NoError(t, req.Approve())
	req.ClearDomainEvents()
	return req
}

func linkedOrder(t *testing.T, req *procurement.PurchaseRequisition, vendorIDs ...uuid.UUID) *procurement.PurchaseOrder {
	t.Helper()
	order, err := procurement.NewPurchaseOrder("PO-2026-00010", req.ID)
	require.NoError(t, err)
	for _, vendorID := range vendorIDs {
		order.LinkVendor(req.Items[0].ID, vendorID)
	}
	order.ClearDomainEvents()
	return order
}

func testVendor(t *testing.T, id uuid.UUID) procurement.Vendor {
	t.Helper()
	vendor, err := procurement.NewVendor("Acme Supply", "po@acme.test", "", "")
	require.NoError(t, err)
	vendor.ID = id
	return *vendor
}

func TestPurchaseOrderHandler_ListAll(t *testing.T) {
	router, deps := setupOrderRouter()

	vendorID := uuid.New()
	requisition := acceptedRequisition(t, vendorID)
	order := linkedOrder(t, requisition, vendorID)

	deps.orderRepo.On("FindStale", mock.Anything).Return([]procurement.PurchaseOrder{}, nil)
	deps.reqRepo.On("FindByStatus", mock.Anything, procurement.RequisitionStatusAccepted).
		Return([]procurement.PurchaseRequisition{*requisition}, nil)
	deps.orderRepo.On("FindByRequisitionID", mock.Anything, requisition.ID).Return(order, nil)
	deps.orderRepo.On("UpsertVendorLinks", mock.Anything, mock.Anything).Return(nil)
	deps.orderRepo.On("FindAll", mock.Anything, mock.Anything).
		Return([]procurement.PurchaseOrder{*order}, nil)
	deps.orderRepo.On("Count", mock.Anything, mock.Anything).Return(int64(1), nil)
	deps.vendorRepo.On("FindByIDs", mock.Anything, mock.Anything).
		Return([]procurement.Vendor{testVendor(t, vendorID)}, nil)
	deps.reqRepo.On("FindByID", mock.Anything, requisition.ID).Return(requisition, nil)

	req := httptest.NewRequest(http.MethodGet, "/orders/get/all", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)
	deps.orderRepo.AssertExpectations(t)
}

func TestPurchaseOrderHandler_Get(t *testing.T) {
	t.Run("returns order detail", func(t *testing.T) {
		router, deps := setupOrderRouter()

		vendorID := uuid.New()
		requisition := acceptedRequisition(t, vendorID)
		order := linkedOrder(t, requisition, vendorID)

		deps.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		deps.vendorRepo.On("FindByIDs", mock.Anything, mock.Anything).
			Return([]procurement.Vendor{testVendor(t, vendorID)}, nil)
		deps.reqRepo.On("FindByID", mock.Anything, requisition.ID).Return(requisition, nil)

		req := httptest.NewRequest(http.MethodGet, "/orders/get?id="+order.ID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "PO-2026-00010", data["purchase_order_number"])
		assert.NotNil(t, data["requisition"])
	})

	t.Run("rejects malformed id", func(t *testing.T) {
		router, _ := setupOrderRouter()

		req := httptest.NewRequest(http.MethodGet, "/orders/get?id=nope", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("maps missing order to 404", func(t *testing.T) {
		router, deps := setupOrderRouter()

		orderID := uuid.New()
		deps.orderRepo.On("FindByID", mock.Anything, orderID).Return(nil, shared.ErrNotFound)

		req := httptest.NewRequest(http.MethodGet, "/orders/get?id="+orderID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPurchaseOrderHandler_SendVendor(t *testing.T) {
	t.Run("dispatches to linked vendors", func(t *testing.T) {
		router, deps := setupOrderRouter()

		vendorID := uuid.New()
		requisition := acceptedRequisition(t, vendorID)
		order := linkedOrder(t, requisition, vendorID)

		deps.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		deps.vendorRepo.On("FindByIDs", mock.Anything, []uuid.UUID{vendorID}).
			Return([]procurement.Vendor{testVendor(t, vendorID)}, nil)
		deps.vendorRepo.On("Save", mock.Anything, mock.AnythingOfType("*procurement.Vendor")).Return(nil)
		deps.orderRepo.On("SaveWithLock", mock.Anything, order).Return(nil)

		payload := fmt.Sprintf(`{"vendorIds":[%q]}`, vendorID)
		req := httptest.NewRequest(http.MethodPut, "/orders/send/vendor?id="+order.ID.String(),
			bytes.NewBufferString(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "ISSUED", data["status"])
		deps.orderRepo.AssertExpectations(t)
		deps.vendorRepo.AssertExpectations(t)
	})

	t.Run("rejects empty vendor list", func(t *testing.T) {
		router, _ := setupOrderRouter()

		req := httptest.NewRequest(http.MethodPut, "/orders/send/vendor?id="+uuid.NewString(),
			bytes.NewBufferString(`{"vendorIds":[]}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPurchaseOrderHandler_Cancel(t *testing.T) {
	t.Run("cancels outstanding remainder", func(t *testing.T) {
		router, deps := setupOrderRouter()

		vendorID := uuid.New()
		requisition := acceptedRequisition(t, vendorID)
		order := linkedOrder(t, requisition, vendorID)

		deps.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		deps.reqRepo.On("FindByIDForUpdate", mock.Anything, requisition.ID).Return(requisition, nil)
		deps.reqRepo.On("SaveWithLock", mock.Anything, requisition).Return(nil)
		deps.orderRepo.On("SaveWithLock", mock.Anything, order).Return(nil)

		req := httptest.NewRequest(http.MethodDelete, "/orders/cancel?id="+order.ID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "CANCELLED", data["status"])
		assert.False(t, requisition.Items[0].HasOutstanding())
	})

	t.Run("cancelling a cancelled order is a state violation", func(t *testing.T) {
		router, deps := setupOrderRouter()

		vendorID := uuid.New()
		requisition := acceptedRequisition(t, vendorID)
		order := linkedOrder(t, requisition, vendorID)
		require.NoError(t, order.Cancel("vendor shut down"))

		deps.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		req := httptest.NewRequest(http.MethodDelete, "/orders/cancel?id="+order.ID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeInvalidState, resp.Error.Code)
	})

	t.Run("nothing outstanding is a state violation", func(t *testing.T) {
		router, deps := setupOrderRouter()

		vendorID := uuid.New()
		requisition := acceptedRequisition(t, vendorID)
		requisition.Items[0].ZeroRemaining()
		order := linkedOrder(t, requisition, vendorID)

		deps.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		deps.reqRepo.On("FindByIDForUpdate", mock.Anything, requisition.ID).Return(requisition, nil)

		req := httptest.NewRequest(http.MethodDelete, "/orders/cancel?id="+order.ID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeNothingOutstanding, resp.Error.Code)
		deps.reqRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
		deps.orderRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}

func TestPurchaseOrderHandler_Delete(t *testing.T) {
	t.Run("deletes draft order and rejects requisition", func(t *testing.T) {
		router, deps := setupOrderRouter()

		vendorID := uuid.New()
		requisition := acceptedRequisition(t, vendorID)
		order := linkedOrder(t, requisition, vendorID)

		deps.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		deps.receiveRepo.On("DeleteByOrderID", mock.Anything, order.ID).Return(nil)
		deps.orderRepo.On("Delete", mock.Anything, order.ID).Return(nil)
		deps.reqRepo.On("FindByIDForUpdate", mock.Anything, requisition.ID).Return(requisition, nil)
		deps.reqRepo.On("SaveWithLock", mock.Anything, requisition).Return(nil)

		req := httptest.NewRequest(http.MethodDelete, "/orders/delete?id="+order.ID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, procurement.RequisitionStatusRejected, requisition.Status)
		deps.orderRepo.AssertExpectations(t)
		deps.receiveRepo.AssertExpectations(t)
	})

	t.Run("refuses to delete an issued order", func(t *testing.T) {
		router, deps := setupOrderRouter()

		vendorID := uuid.New()
		requisition := acceptedRequisition(t, vendorID)
		order := linkedOrder(t, requisition, vendorID)
		require.NoError(t, order.Issue())

		deps.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		req := httptest.NewRequest(http.MethodDelete, "/orders/delete?id="+order.ID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		deps.orderRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
