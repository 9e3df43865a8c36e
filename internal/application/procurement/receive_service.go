package procurement

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/procurex/backend/internal/domain/procurement"
	"github.com/procurex/backend/internal/domain/shared"
)

// resolvedLine is one (vendor, item) delivery to apply, in input order
type resolvedLine struct {
	vendorID uuid.UUID
	input    ReceiveLineInput
}

// PurchaseReceiveService records deliveries against purchase orders and
// keeps the quantity ledger and order status consistent.
type PurchaseReceiveService struct {
	receiveRepo     procurement.PurchaseReceiveRepository
	orderRepo       procurement.PurchaseOrderRepository
	requisitionRepo procurement.PurchaseRequisitionRepository
	vendorRepo      procurement.VendorRepository
	tx              procurement.TxRunner
	eventPublisher  shared.EventPublisher
}

// NewPurchaseReceiveService creates a new PurchaseReceiveService
func NewPurchaseReceiveService(
	receiveRepo procurement.PurchaseReceiveRepository,
	orderRepo procurement.PurchaseOrderRepository,
	requisitionRepo procurement.PurchaseRequisitionRepository,
	vendorRepo procurement.VendorRepository,
	tx procurement.TxRunner,
) *PurchaseReceiveService {
	return &PurchaseReceiveService{
		receiveRepo:     receiveRepo,
		orderRepo:       orderRepo,
		requisitionRepo: requisitionRepo,
		vendorRepo:      vendorRepo,
		tx:              tx,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PurchaseReceiveService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create records one receive event. Everything runs in a single transaction
// with the requisition lines row-locked: the header and one line per
// (item, vendor) pair are inserted, each line moves its quantity from owed to
// on-hand sequentially in input order, and the order status is recomputed by
// aggregating the remainder over every line on the order's requisition.
func (s *PurchaseReceiveService) Create(ctx context.Context, req CreateReceiveRequest) (*ReceiveResponse, error) {
	lines, err := resolveLines(req.Items, req.VendorIDs)
	if err != nil {
		return nil, err
	}

	var receive *procurement.PurchaseReceive
	var order *procurement.PurchaseOrder
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orderRepo.FindByID(ctx, req.OrderID)
		if err != nil {
			return err
		}
		if !order.Status.CanReceive() {
			return shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("Cannot receive goods for order in %s status", order.Status))
		}

		requisition, err := s.requisitionRepo.FindByIDForUpdate(ctx, order.RequisitionID)
		if err != nil {
			return err
		}

		number, err := s.receiveRepo.GenerateReceiveNumber(ctx)
		if err != nil {
			return err
		}
		receive, err = procurement.NewPurchaseReceive(number, order.ID, req.ReceivedDate, req.Description)
		if err != nil {
			return err
		}

		if err := s.applyLines(receive, order, requisition, lines, false); err != nil {
			return err
		}

		if err := order.RecordDeliveryProgress(requisition.AllItemsDelivered()); err != nil {
			return err
		}

		if err := s.receiveRepo.Save(ctx, receive); err != nil {
			return err
		}
		if err := s.requisitionRepo.SaveWithLock(ctx, requisition); err != nil {
			return err
		}
		return s.orderRepo.SaveWithLock(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, procurement.NewGoodsReceivedEvent(receive, order.Status))

	response := ToReceiveResponse(receive)
	response.OrderStatus = order.Status.String()
	return &response, nil
}

// Update amends an existing receive event: header fields are replaced, each
// (vendor, item) pair updates its matching line or inserts a new one, and the
// ledger and order status are re-applied exactly as on create.
func (s *PurchaseReceiveService) Update(ctx context.Context, req UpdateReceiveRequest) (*ReceiveResponse, error) {
	lines, err := resolveLines(req.Items, req.VendorIDs)
	if err != nil {
		return nil, err
	}

	var receive *procurement.PurchaseReceive
	var order *procurement.PurchaseOrder
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		receive, err = s.receiveRepo.FindByID(ctx, req.ReceiveID)
		if err != nil {
			return err
		}
		order, err = s.orderRepo.FindByID(ctx, receive.OrderID)
		if err != nil {
			return err
		}
		if !order.Status.CanReceive() {
			return shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("Cannot amend receives for order in %s status", order.Status))
		}

		requisition, err := s.requisitionRepo.FindByIDForUpdate(ctx, order.RequisitionID)
		if err != nil {
			return err
		}

		receive.UpdateHeader(req.ReceivedDate, req.Description)

		if err := s.applyLines(receive, order, requisition, lines, true); err != nil {
			return err
		}

		if err := order.RecordDeliveryProgress(requisition.AllItemsDelivered()); err != nil {
			return err
		}

		if err := s.receiveRepo.Save(ctx, receive); err != nil {
			return err
		}
		if err := s.requisitionRepo.SaveWithLock(ctx, requisition); err != nil {
			return err
		}
		return s.orderRepo.SaveWithLock(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, procurement.NewGoodsReceivedEvent(receive, order.Status))

	response := ToReceiveResponse(receive)
	response.OrderStatus = order.Status.String()
	return &response, nil
}

// GetByID returns one receive event with its lines grouped by vendor
func (s *PurchaseReceiveService) GetByID(ctx context.Context, id uuid.UUID) (*ReceiveDetailResponse, error) {
	receive, err := s.receiveRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := ToReceiveDetailResponse(receive)
	return &detail, nil
}

// List returns the receive page matching the filter. Search matches the
// receive number.
func (s *PurchaseReceiveService) List(ctx context.Context, filter ReceiveListFilter) ([]ReceiveResponse, int64, error) {
	domainFilter := buildFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search)

	receives, err := s.receiveRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.receiveRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ReceiveResponse, len(receives))
	for i := range receives {
		responses[i] = ToReceiveResponse(&receives[i])
	}
	return responses, total, nil
}

// ListByOrder returns every receive event recorded against an order
func (s *PurchaseReceiveService) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]ReceiveResponse, error) {
	receives, err := s.receiveRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	responses := make([]ReceiveResponse, len(receives))
	for i := range receives {
		responses[i] = ToReceiveResponse(&receives[i])
	}
	return responses, nil
}

// applyLines validates and applies each delivery line. upsert selects
// between appending lines (create) and replacing matching lines (update).
func (s *PurchaseReceiveService) applyLines(
	receive *procurement.PurchaseReceive,
	order *procurement.PurchaseOrder,
	requisition *procurement.PurchaseRequisition,
	lines []resolvedLine,
	upsert bool,
) error {
	for _, line := range lines {
		item := requisition.GetItem(line.input.PurchaseItemID)
		if item == nil {
			return shared.NewDomainError("NOT_FOUND",
				fmt.Sprintf("Purchase item %s not found on this order", line.input.PurchaseItemID))
		}
		if !order.IsVendorLinked(line.vendorID) {
			return shared.ErrVendorNotLinked
		}

		app, err := item.ApplyReceipt(line.input.QuantityReceived)
		if err != nil {
			return err
		}
		if upsert {
			receive.UpsertLine(line.vendorID, item.ID, line.input.Rate, app)
		} else {
			receive.AddLine(line.vendorID, item.ID, line.input.Rate, app)
		}
	}
	return nil
}

// publish sends an event when a publisher is configured
func (s *PurchaseReceiveService) publish(ctx context.Context, event shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	_ = s.eventPublisher.Publish(ctx, event)
}

// resolveLines expands the request into ordered (vendor, item) pairs. A line
// with an explicit vendor applies once; a line without one applies once per
// vendor in the request-level list, sequentially, so a later application
// works from the remainder the earlier one left.
func resolveLines(items []ReceiveLineInput, vendorIDs []uuid.UUID) ([]resolvedLine, error) {
	lines := make([]resolvedLine, 0, len(items))
	for _, input := range items {
		if input.VendorID != nil {
			lines = append(lines, resolvedLine{vendorID: *input.VendorID, input: input})
			continue
		}
		if len(vendorIDs) == 0 {
			return nil, shared.NewDomainError("INVALID_INPUT", "No vendor given for item "+input.PurchaseItemID.String())
		}
		for _, vendorID := range vendorIDs {
			lines = append(lines, resolvedLine{vendorID: vendorID, input: input})
		}
	}
	return lines, nil
}
