package procurement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/procurex/backend/internal/domain/procurement"
	"github.com/procurex/backend/internal/domain/shared"
)

// PurchaseOrderService handles the purchase order lifecycle: promotion of
// accepted requisitions, dispatch to vendors, cancellation and deletion.
type PurchaseOrderService struct {
	orderRepo       procurement.PurchaseOrderRepository
	requisitionRepo procurement.PurchaseRequisitionRepository
	receiveRepo     procurement.PurchaseReceiveRepository
	vendorRepo      procurement.VendorRepository
	tx              procurement.TxRunner
	eventPublisher  shared.EventPublisher
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(
	orderRepo procurement.PurchaseOrderRepository,
	requisitionRepo procurement.PurchaseRequisitionRepository,
	receiveRepo procurement.PurchaseReceiveRepository,
	vendorRepo procurement.VendorRepository,
	tx procurement.TxRunner,
) *PurchaseOrderService {
	return &PurchaseOrderService{
		orderRepo:       orderRepo,
		requisitionRepo: requisitionRepo,
		receiveRepo:     receiveRepo,
		vendorRepo:      vendorRepo,
		tx:              tx,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PurchaseOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SyncOrders reconciles orders against the current requisition set: orders
// whose requisition is no longer ACCEPTED are deleted, accepted requisitions
// without an order get one, and vendor preferences are re-denormalized for
// every surviving order. The whole reconciliation runs in one transaction.
// Returns the resulting order page with embedded detail.
func (s *PurchaseOrderService) SyncOrders(ctx context.Context, filter OrderListFilter) ([]OrderResponse, int64, error) {
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		stale, err := s.orderRepo.FindStale(ctx)
		if err != nil {
			return err
		}
		for i := range stale {
			if err := s.receiveRepo.DeleteByOrderID(ctx, stale[i].ID); err != nil {
				return err
			}
			if err := s.orderRepo.Delete(ctx, stale[i].ID); err != nil {
				return err
			}
		}

		accepted, err := s.requisitionRepo.FindByStatus(ctx, procurement.RequisitionStatusAccepted)
		if err != nil {
			return err
		}

		for i := range accepted {
			req := &accepted[i]

			order, err := s.orderRepo.FindByRequisitionID(ctx, req.ID)
			if err != nil {
				if !errors.Is(err, shared.ErrNotFound) {
					return err
				}
				number, err := s.orderRepo.GenerateOrderNumber(ctx)
				if err != nil {
					return err
				}
				order, err = procurement.NewPurchaseOrder(number, req.ID)
				if err != nil {
					return err
				}
				if err := s.orderRepo.Save(ctx, order); err != nil {
					return err
				}
				s.publishEvents(ctx, order)
			}

			links := buildVendorLinks(order.ID, req)
			if len(links) > 0 {
				if err := s.orderRepo.UpsertVendorLinks(ctx, links); err != nil {
					return err
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return s.List(ctx, filter)
}

// List returns the order page matching the filter, with embedded requisition
// and vendor detail. Search matches the order number.
func (s *PurchaseOrderService) List(ctx context.Context, filter OrderListFilter) ([]OrderResponse, int64, error) {
	domainFilter := buildFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search)
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	orders, err := s.orderRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orderRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses, err := s.assembleOrderResponses(ctx, orders)
	if err != nil {
		return nil, 0, err
	}
	return responses, total, nil
}

// GetByID returns one order with embedded requisition and vendor detail
func (s *PurchaseOrderService) GetByID(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	responses, err := s.assembleOrderResponses(ctx, []procurement.PurchaseOrder{*order})
	if err != nil {
		return nil, err
	}
	return &responses[0], nil
}

// Dispatch sends the order to the given vendors: every vendor that exists,
// is requested, and is linked to the order gets its sending flag flipped, and
// the order moves to ISSUED even when only a subset of the requested vendors
// matched the link table.
func (s *PurchaseOrderService) Dispatch(ctx context.Context, orderID uuid.UUID, req DispatchOrderRequest) (*DispatchResult, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.HasVendorLinks() {
		return nil, shared.NewDomainError("NO_VENDORS", "Order has no preferred vendor assignments")
	}

	vendors, err := s.vendorRepo.FindByIDs(ctx, req.VendorIDs)
	if err != nil {
		return nil, err
	}
	if len(vendors) != len(dedupe(req.VendorIDs)) {
		return nil, shared.NewDomainError("INVALID_INPUT",
			fmt.Sprintf("Unknown vendor ids: %s", strings.Join(missingIDs(req.VendorIDs, vendors), ", ")))
	}

	var dispatched []uuid.UUID
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		dispatched = dispatched[:0]
		for i := range vendors {
			if !order.IsVendorLinked(vendors[i].ID) {
				continue
			}
			vendors[i].MarkDispatched()
			if err := s.vendorRepo.Save(ctx, &vendors[i]); err != nil {
				return err
			}
			dispatched = append(dispatched, vendors[i].ID)
		}
		if err := order.Issue(); err != nil {
			return err
		}
		return s.orderRepo.SaveWithLock(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order)

	return &DispatchResult{
		OrderID:           order.ID,
		Status:            order.Status.String(),
		DispatchedVendors: dispatched,
	}, nil
}

// Cancel transitions a non-terminal order to CANCELLED and zeroes the owed
// quantity on the named requisition lines, or on all lines when none are
// named. The order must still have at least one outstanding line; the check
// happens before any write so a failed cancel leaves no partial state.
func (s *PurchaseOrderService) Cancel(ctx context.Context, orderID uuid.UUID, req CancelOrderRequest) (*OrderResponse, error) {
	var order *procurement.PurchaseOrder
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orderRepo.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order.IsTerminal() {
			return shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("Cannot cancel order in %s status", order.Status))
		}

		requisition, err := s.requisitionRepo.FindByIDForUpdate(ctx, order.RequisitionID)
		if err != nil {
			return err
		}
		if !requisition.HasOutstandingItems() {
			return shared.ErrNothingOutstanding
		}

		if touched := requisition.ZeroOutstanding(req.PurchaseItemIDs); touched == 0 {
			return shared.NewDomainError("INVALID_INPUT", "No given item belongs to this order")
		}

		if err := order.Cancel(req.Reason); err != nil {
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

	s.publishEvents(ctx, order)

	response := ToOrderResponse(order)
	return &response, nil
}

// Delete removes a DRAFT order together with its vendor links and receives,
// and reverts the requisition to REJECTED.
func (s *PurchaseOrderService) Delete(ctx context.Context, orderID uuid.UUID) error {
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		order, err := s.orderRepo.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if !order.IsDraft() {
			return shared.NewDomainError("INVALID_STATE", "Only draft orders can be deleted")
		}

		if err := s.receiveRepo.DeleteByOrderID(ctx, order.ID); err != nil {
			return err
		}
		if err := s.orderRepo.Delete(ctx, order.ID); err != nil {
			return err
		}

		requisition, err := s.requisitionRepo.FindByIDForUpdate(ctx, order.RequisitionID)
		if err != nil {
			return err
		}
		if requisition.Status == procurement.RequisitionStatusRejected {
			return nil
		}
		if err := requisition.Reject(); err != nil {
			return err
		}
		return s.requisitionRepo.SaveWithLock(ctx, requisition)
	})
}

// VendorsForOrder returns the vendors linked to an order via its preference
// triples
func (s *PurchaseOrderService) VendorsForOrder(ctx context.Context, orderID uuid.UUID) ([]VendorResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	vendors, err := s.vendorRepo.FindByIDs(ctx, order.LinkedVendorIDs())
	if err != nil {
		return nil, err
	}
	responses := make([]VendorResponse, len(vendors))
	for i := range vendors {
		responses[i] = ToVendorResponse(&vendors[i])
	}
	return responses, nil
}

// ItemsForOrderVendor returns the requisition lines a vendor may deliver
// against on an order
func (s *PurchaseOrderService) ItemsForOrderVendor(ctx context.Context, orderID, vendorID uuid.UUID) ([]PurchaseItemResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.IsVendorLinked(vendorID) {
		return nil, shared.ErrVendorNotLinked
	}

	requisition, err := s.requisitionRepo.FindByID(ctx, order.RequisitionID)
	if err != nil {
		return nil, err
	}

	linked := make(map[uuid.UUID]struct{})
	for _, link := range order.VendorLinks {
		if link.VendorID == vendorID {
			linked[link.PurchaseItemID] = struct{}{}
		}
	}

	items := make([]PurchaseItemResponse, 0, len(linked))
	for i := range requisition.Items {
		if _, ok := linked[requisition.Items[i].ID]; ok {
			items = append(items, ToPurchaseItemResponse(&requisition.Items[i]))
		}
	}
	return items, nil
}

// assembleOrderResponses attaches requisition and vendor detail to each order
func (s *PurchaseOrderService) assembleOrderResponses(ctx context.Context, orders []procurement.PurchaseOrder) ([]OrderResponse, error) {
	vendorIDs := make([]uuid.UUID, 0)
	for i := range orders {
		vendorIDs = append(vendorIDs, orders[i].LinkedVendorIDs()...)
	}
	vendors, err := s.vendorRepo.FindByIDs(ctx, dedupe(vendorIDs))
	if err != nil {
		return nil, err
	}
	vendorsByID := make(map[uuid.UUID]*procurement.Vendor, len(vendors))
	for i := range vendors {
		vendorsByID[vendors[i].ID] = &vendors[i]
	}

	responses := make([]OrderResponse, len(orders))
	for i := range orders {
		order := &orders[i]
		response := ToOrderResponse(order)

		requisition, err := s.requisitionRepo.FindByID(ctx, order.RequisitionID)
		if err != nil {
			return nil, err
		}
		reqResponse := ToRequisitionResponse(requisition)
		response.Requisition = &reqResponse

		for _, vendorID := range order.LinkedVendorIDs() {
			if vendor, ok := vendorsByID[vendorID]; ok {
				response.PreferredVendors = append(response.PreferredVendors, ToVendorResponse(vendor))
			}
		}
		responses[i] = response
	}
	return responses, nil
}

// publishEvents drains and publishes the pending events of the aggregates
func (s *PurchaseOrderService) publishEvents(ctx context.Context, aggregates ...shared.AggregateRoot) {
	if s.eventPublisher == nil {
		return
	}
	for _, aggregate := range aggregates {
		events := aggregate.GetDomainEvents()
		if len(events) == 0 {
			continue
		}
		// Event delivery is best effort; the state change has already
		// committed.
		_ = s.eventPublisher.Publish(ctx, events...)
		aggregate.ClearDomainEvents()
	}
}

// buildVendorLinks denormalizes a requisition's item vendor preferences into
// (order, item, vendor) triples
func buildVendorLinks(orderID uuid.UUID, req *procurement.PurchaseRequisition) []procurement.PreferredVendorLink {
	links := make([]procurement.PreferredVendorLink, 0)
	for i := range req.Items {
		item := &req.Items[i]
		for _, vendorID := range item.PreferredVendorIDs() {
			links = append(links, procurement.PreferredVendorLink{
				ID:             uuid.New(),
				OrderID:        orderID,
				PurchaseItemID: item.ID,
				VendorID:       vendorID,
				CreatedAt:      time.Now(),
			})
		}
	}
	return links
}

// buildFilter normalizes pagination inputs into a domain filter
func buildFilter(page, pageSize int, orderBy, orderDir, search string) shared.Filter {
	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}
	if orderBy != "" {
		filter.OrderBy = orderBy
	}
	if orderDir != "" {
		filter.OrderDir = orderDir
	}
	filter.Search = search
	return filter
}

// dedupe returns the distinct ids preserving first-seen order
func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// missingIDs lists the requested ids that no vendor row matched
func missingIDs(requested []uuid.UUID, found []procurement.Vendor) []string {
	have := make(map[uuid.UUID]struct{}, len(found))
	for i := range found {
		have[found[i].ID] = struct{}{}
	}
	missing := make([]string, 0)
	for _, id := range dedupe(requested) {
		if _, ok := have[id]; !ok {
			missing = append(missing, id.String())
		}
	}
	return missing
}
