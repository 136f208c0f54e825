package catalog

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Pagination bounds. MaxPage*MaxPageSize stays well inside int range, so an
// offset computed from a normalized request can never overflow.
const (
	DefaultPageSize = 20
	MaxPageSize     = 500
	MaxPage         = 1_000_000
)

// PageRequest selects a page of results. Page is zero-based; Size defaults to
// 20 at the transport when unset.
type PageRequest struct {
	Page int
	Size int
}

// Normalize applies the default size, clamps a negative page to zero, and
// rejects out-of-range values with ErrInvalidArgument so an absurd page
// number surfaces as a client error rather than an overflowed offset.
func (p PageRequest) Normalize() (PageRequest, error) {
	const op = "catalog.PageRequest"
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		return p, InvalidArgument(op, KindStorage,
			"page size %d exceeds maximum %d", p.Size, MaxPageSize)
	}
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Page > MaxPage {
		return p, InvalidArgument(op, KindStorage,
			"page %d exceeds maximum %d", p.Page, MaxPage)
	}
	return p, nil
}

// Page is one page of results plus the total match count.
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
}

// ProductFilter narrows product listings. Nil fields are ignored.
type ProductFilter struct {
	Name       string
	CategoryID *int64
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
}

// OrderFilter narrows order listings. Nil fields are ignored. CustomerID and
// Status may be combined; the date range combines with neither.
type OrderFilter struct {
	CustomerID  *int64
	Status      *OrderStatus
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// ProductStore is the collaborator contract for product persistence.
// Get returns ErrNotFound (wrapped) when the id is unknown. Save is
// insert-or-update and fills generated identity and timestamps on the value.
type ProductStore interface {
	Get(ctx context.Context, id int64) (*Product, error)
	// GetForUpdate reads the row with an exclusive row lock when called
	// inside a transaction, so a read-check-write sequence on inventory
	// cannot interleave with a concurrent one on the same product.
	GetForUpdate(ctx context.Context, id int64) (*Product, error)
	Save(ctx context.Context, p *Product) error
	List(ctx context.Context, filter ProductFilter, page PageRequest) (Page[Product], error)
	// ListLowInventory returns active products with inventory at or below
	// the threshold.
	ListLowInventory(ctx context.Context, threshold int) ([]Product, error)
}

// CategoryStore is the collaborator contract for category persistence.
type CategoryStore interface {
	Get(ctx context.Context, id int64) (*Category, error)
	Save(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]Category, error)
	// ListByParent returns children of the given parent; a nil parent
	// selects root categories.
	ListByParent(ctx context.Context, parentID *int64) ([]Category, error)
	// ListHierarchy returns all categories ordered parents-first.
	ListHierarchy(ctx context.Context) ([]Category, error)
}

// OrderStore is the collaborator contract for order persistence.
type OrderStore interface {
	Get(ctx context.Context, id int64) (*Order, error)
	// GetForUpdate locks the order row inside a transaction so concurrent
	// status transitions from the same prior state serialize.
	GetForUpdate(ctx context.Context, id int64) (*Order, error)
	Save(ctx context.Context, o *Order) error
	List(ctx context.Context, filter OrderFilter, page PageRequest) (Page[Order], error)
	CountByStatus(ctx context.Context, status OrderStatus) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// OrderItemStore is the collaborator contract for order line items.
type OrderItemStore interface {
	Save(ctx context.Context, item *OrderItem) error
	ListByOrder(ctx context.Context, orderID int64) ([]OrderItem, error)
}

// Stores aggregates the collaborator stores behind one transaction boundary.
// InTx runs fn against a Stores view bound to a single transaction; fn
// returning an error rolls every write back, so multi-entity operations are
// all-or-nothing. Implementations must make InTx reentrant-safe by running
// nested calls in the surrounding transaction.
type Stores interface {
	Products() ProductStore
	Categories() CategoryStore
	Orders() OrderStore
	OrderItems() OrderItemStore
	InTx(ctx context.Context, fn func(tx Stores) error) error
	Ping(ctx context.Context) error
}

// Clock supplies time for timestamping. Real deployments use SystemClock;
// tests substitute a fixed clock.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
