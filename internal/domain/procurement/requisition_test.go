package procurement

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestRequisition(t *testing.T) *PurchaseRequisition {
	req, err := NewPurchaseRequisition("REQ-2026-00001")
	require.NoError(t, err)
	return req
}

func addTestItem(t *testing.T, req *PurchaseRequisition, quantity float64, vendorIDs ...uuid.UUID) *PurchaseItem {
	line, err := req.AddItem(uuid.New(), decimal.NewFromFloat(quantity), decimal.NewFromFloat(12.5), vendorIDs)
	require.NoError(t, err)
	return line
}

func TestRequisitionStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     RequisitionStatus
		to       RequisitionStatus
		canTrans bool
	}{
		{RequisitionStatusDraft, RequisitionStatusPending, true},
		{RequisitionStatusDraft, RequisitionStatusRejected, true},
		{RequisitionStatusDraft, RequisitionStatusAccepted, false},
		{RequisitionStatusPending, RequisitionStatusAccepted, true},
		{RequisitionStatusPending, RequisitionStatusRejected, true},
		{RequisitionStatusPending, RequisitionStatusDraft, false},
		{RequisitionStatusAccepted, RequisitionStatusRejected, true},
		{RequisitionStatusAccepted, RequisitionStatusPending, false},
		{RequisitionStatusRejected, RequisitionStatusPending, false},
		{RequisitionStatusRejected, RequisitionStatusAccepted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestNewPurchaseRequisition(t *testing.T) {
	t.Run("creates draft requisition", func(t *testing.T) {
		req := createTestRequisition(t)
		assert.Equal(t, RequisitionStatusDraft, req.Status)
		assert.True(t, req.TotalAmount.IsZero())
		assert.Empty(t, req.Items)
	})

	t.Run("rejects empty number", func(t *testing.T) {
		_, err := NewPurchaseRequisition("")
		require.Error(t, err)
	})
}

func TestPurchaseRequisition_AddItem(t *testing.T) {
	t.Run("adds line with vendor preferences", func(t *testing.T) {
		req := createTestRequisition(t)
		v1, v2 := uuid.New(), uuid.New()
		line := addTestItem(t, req, 10, v1, v2)

		assert.Equal(t, req.ID, line.RequisitionID)
		assert.Equal(t, []uuid.UUID{v1, v2}, line.PreferredVendorIDs())
		assert.True(t, line.HasPreferredVendor(v1))
		assert.False(t, line.HasPreferredVendor(uuid.New()))
		assert.True(t, req.TotalAmount.Equal(decimal.NewFromFloat(125)))
	})

	t.Run("rejects duplicate item", func(t *testing.T) {
		req := createTestRequisition(t)
		itemID := uuid.New()
		_, err := req.AddItem(itemID, decimal.NewFromInt(5), decimal.NewFromInt(1), nil)
		require.NoError(t, err)
		_, err = req.AddItem(itemID, decimal.NewFromInt(3), decimal.NewFromInt(1), nil)
		require.Error(t, err)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		req := createTestRequisition(t)
		_, err := req.AddItem(uuid.New(), decimal.Zero, decimal.NewFromInt(1), nil)
		require.Error(t, err)
	})

	t.Run("rejects items after approval", func(t *testing.T) {
		req := createTestRequisition(t)
		addTestItem(t, req, 5)
		require.NoError(t, req.Submit())
		require.NoError(t, req.Approve())
		_, err := req.AddItem(uuid.New(), decimal.NewFromInt(1), decimal.NewFromInt(1), nil)
		require.Error(t, err)
	})
}

func TestPurchaseRequisition_ApprovalFlow(t *testing.T) {
	t.Run("submit approve", func(t *testing.T) {
		req := createTestRequisition(t)
		addTestItem(t, req, 10)
		require.NoError(t, req.Submit())
		assert.Equal(t, RequisitionStatusPending, req.Status)
		require.NoError(t, req.Approve())
		assert.True(t, req.IsAccepted())
	})

	t.Run("submit without items fails", func(t *testing.T) {
		req := createTestRequisition(t)
		require.Error(t, req.Submit())
	})

	t.Run("approve draft fails", func(t *testing.T) {
		req := createTestRequisition(t)
		require.Error(t, req.Approve())
	})

	t.Run("accepted can be reverted to rejected", func(t *testing.T) {
		req := createTestRequisition(t)
		addTestItem(t, req, 10)
		require.NoError(t, req.Submit())
		require.NoError(t, req.Approve())
		require.NoError(t, req.Reject())
		assert.Equal(t, RequisitionStatusRejected, req.Status)
		require.Error(t, req.Reject())
	})
}

func TestPurchaseItem_ApplyReceipt(t *testing.T) {
	t.Run("moves quantity from owed to on-hand", func(t *testing.T) {
		req := createTestRequisition(t)
		line := addTestItem(t, req, 10)

		app, err := line.ApplyReceipt(decimal.NewFromInt(4))
		require.NoError(t, err)
		assert.True(t, app.TotalQuantity.Equal(decimal.NewFromInt(10)))
		assert.True(t, app.QuantityReceived.Equal(decimal.NewFromInt(4)))
		assert.True(t, app.RemainingQuantity.Equal(decimal.NewFromInt(6)))
		assert.True(t, line.RequiredQuantity.Equal(decimal.NewFromInt(6)))
		assert.True(t, line.AvailableStock.Equal(decimal.NewFromInt(4)))
	})

	t.Run("sequential applications see prior deductions", func(t *testing.T) {
		req := createTestRequisition(t)
		line := addTestItem(t, req, 10)

		_, err := line.ApplyReceipt(decimal.NewFromInt(4))
		require.NoError(t, err)
		app, err := line.ApplyReceipt(decimal.NewFromInt(6))
		require.NoError(t, err)
		assert.True(t, app.TotalQuantity.Equal(decimal.NewFromInt(6)))
		assert.True(t, app.RemainingQuantity.IsZero())
		assert.False(t, line.HasOutstanding())
	})

	t.Run("rejects over-receive with no mutation", func(t *testing.T) {
		req := createTestRequisition(t)
		line := addTestItem(t, req, 10)

		_, err := line.ApplyReceipt(decimal.NewFromInt(11))
		require.Error(t, err)
		assert.True(t, line.RequiredQuantity.Equal(decimal.NewFromInt(10)))
		assert.True(t, line.AvailableStock.IsZero())
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		req := createTestRequisition(t)
		line := addTestItem(t, req, 10)
		_, err := line.ApplyReceipt(decimal.Zero)
		require.Error(t, err)
	})
}

func TestPurchaseRequisition_Ledger(t *testing.T) {
	t.Run("all items delivered", func(t *testing.T) {
		req := createTestRequisition(t)
		id1 := addTestItem(t, req, 10).ID
		id2 := addTestItem(t, req, 5).ID

		assert.True(t, req.HasOutstandingItems())
		assert.False(t, req.AllItemsDelivered())

		_, err := req.GetItem(id1).ApplyReceipt(decimal.NewFromInt(10))
		require.NoError(t, err)
		assert.False(t, req.AllItemsDelivered())

		_, err = req.GetItem(id2).ApplyReceipt(decimal.NewFromInt(5))
		require.NoError(t, err)
		assert.True(t, req.AllItemsDelivered())
	})

	t.Run("zero outstanding on all lines", func(t *testing.T) {
		req := createTestRequisition(t)
		addTestItem(t, req, 10)
		addTestItem(t, req, 5)

		touched := req.ZeroOutstanding(nil)
		assert.Equal(t, 2, touched)
		assert.False(t, req.HasOutstandingItems())
	})

	t.Run("zero outstanding on named lines", func(t *testing.T) {
		req := createTestRequisition(t)
		l1 := addTestItem(t, req, 10)
		l2 := addTestItem(t, req, 5)

		touched := req.ZeroOutstanding([]uuid.UUID{l1.ID})
		assert.Equal(t, 1, touched)
		assert.False(t, req.GetItem(l1.ID).HasOutstanding())
		assert.True(t, req.GetItem(l2.ID).HasOutstanding())
	})

	t.Run("unknown line ids touch nothing", func(t *testing.T) {
		req := createTestRequisition(t)
		addTestItem(t, req, 10)
		assert.Equal(t, 0, req.ZeroOutstanding([]uuid.UUID{uuid.New()}))
	})
}
