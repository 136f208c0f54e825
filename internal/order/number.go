package order

import (
	"strings"

	"github.com/google/uuid"
)

// NumberPrefix is the order number prefix expected by downstream systems.
const NumberPrefix = "ORD-"

// NumberGenerator produces order numbers. The store additionally enforces a
// uniqueness constraint on the column, so a generator collision surfaces as a
// storage error instead of a silent duplicate.
type NumberGenerator func() string

// NewNumber returns a collision-free order number: the ORD- prefix followed
// by an uppercase random UUID. A timestamp-derived token is not unique under
// concurrent creation, which is why the number is random rather than
// time-based.
func NewNumber() string {
	return NumberPrefix + strings.ToUpper(uuid.NewString())
}
