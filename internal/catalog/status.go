package catalog

import "fmt"

// OrderStatus is the lifecycle state of an order. Stored as its string form.
type OrderStatus string

const (
	StatusCreated   OrderStatus = "CREATED"
	StatusPaid      OrderStatus = "PAID"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// OrderStatuses lists every known status in declaration order. Used for
// metrics aggregation and input validation.
var OrderStatuses = []OrderStatus{
	StatusCreated,
	StatusPaid,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

// ParseOrderStatus converts a wire string into an OrderStatus. Unknown values
// fail with ErrInvalidArgument.
func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, st := range OrderStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", &Error{
		Op:      "catalog.ParseOrderStatus",
		Kind:    KindOrder,
		Message: fmt.Sprintf("unknown order status %q", s),
		Err:     ErrInvalidArgument,
	}
}

// Valid reports whether the status is one of the known states.
func (s OrderStatus) Valid() bool {
	for _, st := range OrderStatuses {
		if st == s {
			return true
		}
	}
	return false
}

func (s OrderStatus) String() string { return string(s) }
