// Package inventory implements the inventory ledger: per-product quantity
// bookkeeping with a strict reject-on-negative policy.
package inventory

import (
	"context"
	"fmt"

	"github.com/oranba/product-catalog/internal/catalog"
	"github.com/oranba/product-catalog/internal/telemetry"
	"github.com/oranba/product-catalog/pkg/logger"
)

// Ledger adjusts product quantities. It specifies policy only; atomicity
// comes from running Adjust against a transaction-bound Stores view, where
// the read takes a row lock held until commit.
type Ledger struct {
	logger  logger.Logger
	metrics *telemetry.Instruments
}

// NewLedger creates a ledger. Both arguments may be nil.
func NewLedger(log logger.Logger, metrics *telemetry.Instruments) *Ledger {
	if log == nil {
		log = logger.NoOp{}
	}
	if metrics == nil {
		metrics = telemetry.NewInstruments("catalog-inventory")
	}
	return &Ledger{logger: log, metrics: metrics}
}

// Adjust applies delta to the product's quantity and returns the updated
// product. Positive delta restocks, negative consumes. When the result would
// be negative the adjustment is rejected in full with ErrInsufficientStock
// and the stored quantity is unchanged.
//
// The stores argument must be bound to the transaction that will commit the
// write: the check runs against the value read under that transaction's row
// lock, so two concurrent debits on the same product serialize and can never
// both succeed past zero.
func (l *Ledger) Adjust(ctx context.Context, stores catalog.Stores, productID int64, delta int) (*catalog.Product, error) {
	defer l.metrics.Time(ctx, telemetry.MetricInventoryUpdateTime)()

	p, err := stores.Products().GetForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}

	newQty := p.Inventory + delta
	if newQty < 0 {
		l.logger.Warn("Inventory adjustment rejected", logger.Fields{
			"product_id": productID,
			"current":    p.Inventory,
			"delta":      delta,
		})
		return nil, &catalog.Error{
			Op:      "inventory.Adjust",
			Kind:    catalog.KindProduct,
			ID:      fmt.Sprintf("%d", productID),
			Message: fmt.Sprintf("insufficient stock for product %d: have %d, need %d", productID, p.Inventory, -delta),
			Err:     catalog.ErrInsufficientStock,
		}
	}

	p.Inventory = newQty
	if err := stores.Products().Save(ctx, p); err != nil {
		return nil, err
	}

	l.logger.Info("Inventory adjusted", logger.Fields{
		"product_id": productID,
		"delta":      delta,
		"quantity":   newQty,
	})
	return p, nil
}

// ListBelow returns active products whose inventory is at or below threshold.
func (l *Ledger) ListBelow(ctx context.Context, stores catalog.Stores, threshold int) ([]catalog.Product, error) {
	if threshold < 0 {
		return nil, catalog.InvalidArgument("inventory.ListBelow", catalog.KindProduct,
			"threshold must not be negative, got %d", threshold)
	}
	return stores.Products().ListLowInventory(ctx, threshold)
}
