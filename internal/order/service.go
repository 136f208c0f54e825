package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oranba/product-catalog/internal/catalog"
	"github.com/oranba/product-catalog/internal/inventory"
	"github.com/oranba/product-catalog/internal/telemetry"
	"github.com/oranba/product-catalog/pkg/logger"
)

// Service coordinates the only multi-entity operations in the system: order
// creation (order + items + inventory debits, all-or-nothing) and status
// updates (validated by the state machine, one transaction per change).
type Service struct {
	stores    catalog.Stores
	ledger    *inventory.Ledger
	logger    logger.Logger
	metrics   *telemetry.Instruments
	newNumber NumberGenerator
}

// NewService wires the order lifecycle service.
func NewService(stores catalog.Stores, ledger *inventory.Ledger, log logger.Logger, metrics *telemetry.Instruments) *Service {
	if log == nil {
		log = logger.NoOp{}
	}
	if metrics == nil {
		metrics = telemetry.NewInstruments("catalog-orders")
	}
	return &Service{
		stores:    stores,
		ledger:    ledger,
		logger:    log,
		metrics:   metrics,
		newNumber: NewNumber,
	}
}

// Create places a new order. The draft carries customer, addresses, and line
// items (product + quantity); everything else is server-assigned. The whole
// operation runs in one transaction: the order row, every item with its price
// snapshot, and every inventory debit either all commit or none do.
func (s *Service) Create(ctx context.Context, draft *catalog.Order) (*catalog.Order, error) {
	defer s.metrics.Time(ctx, telemetry.MetricOrderCreateTime)()

	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	o := &catalog.Order{
		OrderNumber:     s.newNumber(),
		CustomerID:      draft.CustomerID,
		Status:          catalog.StatusCreated,
		TotalAmount:     decimal.Zero,
		ShippingAddress: draft.ShippingAddress,
		BillingAddress:  draft.BillingAddress,
	}

	err := s.stores.InTx(ctx, func(tx catalog.Stores) error {
		if err := tx.Orders().Save(ctx, o); err != nil {
			return err
		}

		total := decimal.Zero
		items := make([]catalog.OrderItem, 0, len(draft.Items))
		for _, line := range draft.Items {
			// The debit locks the product row, so the price snapshot
			// and the quantity check see the same committed state.
			p, err := s.ledger.Adjust(ctx, tx, line.ProductID, -line.Quantity)
			if err != nil {
				return err
			}
			item := catalog.OrderItem{
				OrderID:      o.ID,
				ProductID:    line.ProductID,
				Quantity:     line.Quantity,
				PriceAtOrder: p.Price,
			}
			if err := tx.OrderItems().Save(ctx, &item); err != nil {
				return err
			}
			items = append(items, item)
			total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}

		o.TotalAmount = total
		if err := tx.Orders().Save(ctx, o); err != nil {
			return err
		}
		o.Items = items
		return nil
	})
	if err != nil {
		s.logger.Warn("Order creation failed", logger.Fields{
			"customer_id": draft.CustomerID,
			"error":       err,
		})
		return nil, err
	}

	s.logger.Info("Order created", logger.Fields{
		"order_id":     o.ID,
		"order_number": o.OrderNumber,
		"customer_id":  o.CustomerID,
		"items":        len(o.Items),
		"total":        o.TotalAmount,
	})
	return o, nil
}

func validateDraft(draft *catalog.Order) error {
	const op = "order.Create"
	if draft == nil {
		return catalog.InvalidArgument(op, catalog.KindOrder, "order body is required")
	}
	if draft.ID != 0 {
		return catalog.InvalidArgument(op, catalog.KindOrder,
			"order identity is server-assigned, got id %d", draft.ID)
	}
	if draft.CustomerID <= 0 {
		return catalog.InvalidArgument(op, catalog.KindOrder, "customer id is required")
	}
	if len(draft.Items) == 0 {
		return catalog.InvalidArgument(op, catalog.KindOrder, "order needs at least one item")
	}
	for i, line := range draft.Items {
		if line.ID != 0 {
			return catalog.InvalidArgument(op, catalog.KindOrder,
				"item identity is server-assigned, got id %d on line %d", line.ID, i)
		}
		if line.ProductID <= 0 {
			return catalog.InvalidArgument(op, catalog.KindOrder,
				"product id is required on line %d", i)
		}
		if line.Quantity <= 0 {
			return catalog.InvalidArgument(op, catalog.KindOrder,
				"quantity must be positive on line %d, got %d", i, line.Quantity)
		}
	}
	return nil
}

// UpdateStatus moves an order to the requested status after the state machine
// accepts the transition. Validation and the write share one transaction, so
// two concurrent transitions from the same prior state cannot both commit.
func (s *Service) UpdateStatus(ctx context.Context, orderID int64, next catalog.OrderStatus) (*catalog.Order, error) {
	defer s.metrics.Time(ctx, telemetry.MetricStatusUpdateTime)()

	if !next.Valid() {
		return nil, catalog.InvalidArgument("order.UpdateStatus", catalog.KindOrder,
			"unknown order status %q", string(next))
	}

	var updated *catalog.Order
	err := s.stores.InTx(ctx, func(tx catalog.Stores) error {
		o, err := tx.Orders().GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := ValidateTransition(o.Status, next); err != nil {
			return err
		}
		previous := o.Status
		o.Status = next
		if err := tx.Orders().Save(ctx, o); err != nil {
			return err
		}
		s.logger.Info("Order status updated", logger.Fields{
			"order_id": o.ID,
			"from":     previous,
			"to":       next,
		})
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.attachItems(ctx, updated)
}

// Find returns an order with its items.
func (s *Service) Find(ctx context.Context, orderID int64) (*catalog.Order, error) {
	defer s.metrics.Time(ctx, telemetry.MetricOrderFindTime)()

	o, err := s.stores.Orders().Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.attachItems(ctx, o)
}

func (s *Service) attachItems(ctx context.Context, o *catalog.Order) (*catalog.Order, error) {
	items, err := s.stores.OrderItems().ListByOrder(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

// List returns a page of orders matching the filter. Customer and status may
// combine; the date range combines with neither, and must be a complete pair.
func (s *Service) List(ctx context.Context, filter catalog.OrderFilter, page catalog.PageRequest) (catalog.Page[catalog.Order], error) {
	defer s.metrics.Time(ctx, telemetry.MetricOrderFindTime)()

	const op = "order.List"
	hasRange := filter.CreatedFrom != nil || filter.CreatedTo != nil
	if hasRange && (filter.CreatedFrom == nil || filter.CreatedTo == nil) {
		return catalog.Page[catalog.Order]{}, catalog.InvalidArgument(op, catalog.KindOrder,
			"date range filter needs both start and end")
	}
	if hasRange && (filter.CustomerID != nil || filter.Status != nil) {
		return catalog.Page[catalog.Order]{}, catalog.InvalidArgument(op, catalog.KindOrder,
			"date range filter cannot combine with customer or status filters")
	}
	if hasRange && filter.CreatedTo.Before(*filter.CreatedFrom) {
		return catalog.Page[catalog.Order]{}, catalog.InvalidArgument(op, catalog.KindOrder,
			"date range end precedes start")
	}
	return s.stores.Orders().List(ctx, filter, page)
}

// ByCustomer returns a page of the customer's orders.
func (s *Service) ByCustomer(ctx context.Context, customerID int64, page catalog.PageRequest) (catalog.Page[catalog.Order], error) {
	return s.List(ctx, catalog.OrderFilter{CustomerID: &customerID}, page)
}

// ByStatus returns a page of orders in the given status. The status arrives
// as a wire string; unknown values fail with InvalidArgument.
func (s *Service) ByStatus(ctx context.Context, status string, page catalog.PageRequest) (catalog.Page[catalog.Order], error) {
	st, err := catalog.ParseOrderStatus(status)
	if err != nil {
		return catalog.Page[catalog.Order]{}, err
	}
	return s.List(ctx, catalog.OrderFilter{Status: &st}, page)
}

// InDateRange returns a page of orders created between from and to.
func (s *Service) InDateRange(ctx context.Context, from, to time.Time, page catalog.PageRequest) (catalog.Page[catalog.Order], error) {
	return s.List(ctx, catalog.OrderFilter{CreatedFrom: &from, CreatedTo: &to}, page)
}

// Metrics aggregates order counts: one entry per status plus TOTAL.
func (s *Service) Metrics(ctx context.Context) (map[string]int64, error) {
	out := make(map[string]int64, len(catalog.OrderStatuses)+1)
	for _, st := range catalog.OrderStatuses {
		n, err := s.stores.Orders().CountByStatus(ctx, st)
		if err != nil {
			return nil, err
		}
		out[string(st)] = n
	}
	total, err := s.stores.Orders().Count(ctx)
	if err != nil {
		return nil, err
	}
	out["TOTAL"] = total
	return out, nil
}
