// Package order implements the order lifecycle: the status state machine,
// collision-free order number generation, and the service coordinating
// atomic order creation and validated status updates.
package order

import (
	"fmt"

	"github.com/oranba/product-catalog/internal/catalog"
)

// transitions is the directed graph of legal status changes. DELIVERED and
// CANCELLED are terminal. There are no self loops.
var transitions = map[catalog.OrderStatus][]catalog.OrderStatus{
	catalog.StatusCreated:   {catalog.StatusPaid, catalog.StatusCancelled},
	catalog.StatusPaid:      {catalog.StatusShipped, catalog.StatusCancelled},
	catalog.StatusShipped:   {catalog.StatusDelivered, catalog.StatusCancelled},
	catalog.StatusDelivered: {},
	catalog.StatusCancelled: {},
}

// ValidateTransition reports whether an order may move from current to next.
// Pure and storage-free. Every pair outside the transition table, including
// next==current and anything out of a terminal state, is rejected with a
// message naming both states.
func ValidateTransition(current, next catalog.OrderStatus) error {
	allowed, known := transitions[current]
	if known {
		for _, s := range allowed {
			if s == next {
				return nil
			}
		}
	}
	return &catalog.Error{
		Op:      "order.ValidateTransition",
		Kind:    catalog.KindOrder,
		Message: fmt.Sprintf("invalid status transition from %s to %s", current, next),
		Err:     catalog.ErrInvalidTransition,
	}
}
