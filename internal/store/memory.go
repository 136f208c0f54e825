// Package store provides the persistence implementations of the catalog
// collaborator contracts: a GORM/PostgreSQL backend for production and an
// in-memory backend with transactional rollback for development and tests.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/oranba/product-catalog/internal/catalog"
)

// Memory is an in-memory catalog.Stores implementation. Transactions take a
// single mutex for their whole extent and roll back by restoring a snapshot,
// which gives the same observable semantics as the SQL backend: writes inside
// a failed InTx are never visible, and concurrent transactions serialize.
type Memory struct {
	mu    sync.Mutex
	data  *memData
	clock catalog.Clock
}

type memData struct {
	products   map[int64]catalog.Product
	categories map[int64]catalog.Category
	orders     map[int64]catalog.Order
	items      map[int64]catalog.OrderItem

	nextProduct  int64
	nextCategory int64
	nextOrder    int64
	nextItem     int64
}

// NewMemory creates an empty in-memory store.
func NewMemory(clock catalog.Clock) *Memory {
	if clock == nil {
		clock = catalog.SystemClock{}
	}
	return &Memory{
		data: &memData{
			products:   make(map[int64]catalog.Product),
			categories: make(map[int64]catalog.Category),
			orders:     make(map[int64]catalog.Order),
			items:      make(map[int64]catalog.OrderItem),
		},
		clock: clock,
	}
}

func (d *memData) clone() *memData {
	c := &memData{
		products:     make(map[int64]catalog.Product, len(d.products)),
		categories:   make(map[int64]catalog.Category, len(d.categories)),
		orders:       make(map[int64]catalog.Order, len(d.orders)),
		items:        make(map[int64]catalog.OrderItem, len(d.items)),
		nextProduct:  d.nextProduct,
		nextCategory: d.nextCategory,
		nextOrder:    d.nextOrder,
		nextItem:     d.nextItem,
	}
	for k, v := range d.products {
		c.products[k] = v
	}
	for k, v := range d.categories {
		c.categories[k] = v
	}
	for k, v := range d.orders {
		v.Items = nil
		c.orders[k] = v
	}
	for k, v := range d.items {
		c.items[k] = v
	}
	return c
}

func (m *Memory) Products() catalog.ProductStore {
	return &memProducts{m: m, locking: true}
}

func (m *Memory) Categories() catalog.CategoryStore {
	return &memCategories{m: m, locking: true}
}

func (m *Memory) Orders() catalog.OrderStore {
	return &memOrders{m: m, locking: true}
}

func (m *Memory) OrderItems() catalog.OrderItemStore {
	return &memItems{m: m, locking: true}
}

// InTx serializes the transaction under the store mutex and restores a
// snapshot when fn fails, so partial writes never become visible.
func (m *Memory) InTx(ctx context.Context, fn func(tx catalog.Stores) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.data.clone()
	if err := fn(&memTx{m: m}); err != nil {
		*m.data = *snapshot
		return err
	}
	return nil
}

// Ping always succeeds for the in-memory backend.
func (m *Memory) Ping(ctx context.Context) error { return nil }

// memTx is the transaction-bound view. Its sub-stores skip locking because
// InTx already holds the store mutex for the transaction's whole extent.
type memTx struct {
	m *Memory
}

func (t *memTx) Products() catalog.ProductStore     { return &memProducts{m: t.m} }
func (t *memTx) Categories() catalog.CategoryStore  { return &memCategories{m: t.m} }
func (t *memTx) Orders() catalog.OrderStore         { return &memOrders{m: t.m} }
func (t *memTx) OrderItems() catalog.OrderItemStore { return &memItems{m: t.m} }
func (t *memTx) Ping(ctx context.Context) error     { return nil }

// InTx joins the surrounding transaction.
func (t *memTx) InTx(ctx context.Context, fn func(tx catalog.Stores) error) error {
	return fn(t)
}

type memProducts struct {
	m       *Memory
	locking bool
}

func (s *memProducts) lock() func() {
	if !s.locking {
		return func() {}
	}
	s.m.mu.Lock()
	return s.m.mu.Unlock
}

func (s *memProducts) Get(ctx context.Context, id int64) (*catalog.Product, error) {
	defer s.lock()()
	p, ok := s.m.data.products[id]
	if !ok {
		return nil, catalog.NotFound("store.Products.Get", catalog.KindProduct, id)
	}
	cp := p
	return &cp, nil
}

// GetForUpdate matches Get here; exclusivity comes from the transaction-wide
// mutex held by InTx.
func (s *memProducts) GetForUpdate(ctx context.Context, id int64) (*catalog.Product, error) {
	return s.Get(ctx, id)
}

func (s *memProducts) Save(ctx context.Context, p *catalog.Product) error {
	defer s.lock()()
	now := s.m.clock.Now()
	if p.ID == 0 {
		s.m.data.nextProduct++
		p.ID = s.m.data.nextProduct
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	s.m.data.products[p.ID] = *p
	return nil
}

func (s *memProducts) List(ctx context.Context, filter catalog.ProductFilter, page catalog.PageRequest) (catalog.Page[catalog.Product], error) {
	defer s.lock()()

	var matched []catalog.Product
	for _, p := range s.m.data.products {
		if filter.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Name)) {
			continue
		}
		if filter.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *filter.CategoryID) {
			continue
		}
		if filter.MinPrice != nil && p.Price.LessThan(*filter.MinPrice) {
			continue
		}
		if filter.MaxPrice != nil && p.Price.GreaterThan(*filter.MaxPrice) {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return paginate(matched, page)
}

func (s *memProducts) ListLowInventory(ctx context.Context, threshold int) ([]catalog.Product, error) {
	defer s.lock()()
	var low []catalog.Product
	for _, p := range s.m.data.products {
		if p.IsActive && p.Inventory <= threshold {
			low = append(low, p)
		}
	}
	sort.Slice(low, func(i, j int) bool { return low[i].ID < low[j].ID })
	return low, nil
}

type memCategories struct {
	m       *Memory
	locking bool
}

func (s *memCategories) lock() func() {
	if !s.locking {
		return func() {}
	}
	s.m.mu.Lock()
	return s.m.mu.Unlock
}

func (s *memCategories) Get(ctx context.Context, id int64) (*catalog.Category, error) {
	defer s.lock()()
	c, ok := s.m.data.categories[id]
	if !ok {
		return nil, catalog.NotFound("store.Categories.Get", catalog.KindCategory, id)
	}
	cp := c
	return &cp, nil
}

func (s *memCategories) Save(ctx context.Context, c *catalog.Category) error {
	defer s.lock()()
	now := s.m.clock.Now()
	if c.ID == 0 {
		s.m.data.nextCategory++
		c.ID = s.m.data.nextCategory
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	s.m.data.categories[c.ID] = *c
	return nil
}

func (s *memCategories) Delete(ctx context.Context, id int64) error {
	defer s.lock()()
	if _, ok := s.m.data.categories[id]; !ok {
		return catalog.NotFound("store.Categories.Delete", catalog.KindCategory, id)
	}
	delete(s.m.data.categories, id)
	return nil
}

func (s *memCategories) List(ctx context.Context) ([]catalog.Category, error) {
	defer s.lock()()
	return s.all(), nil
}

func (s *memCategories) all() []catalog.Category {
	out := make([]catalog.Category, 0, len(s.m.data.categories))
	for _, c := range s.m.data.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memCategories) ListByParent(ctx context.Context, parentID *int64) ([]catalog.Category, error) {
	defer s.lock()()
	var out []catalog.Category
	for _, c := range s.m.data.categories {
		switch {
		case parentID == nil && c.ParentCategoryID == nil:
			out = append(out, c)
		case parentID != nil && c.ParentCategoryID != nil && *c.ParentCategoryID == *parentID:
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListHierarchy orders parents before children: by parent id (roots first),
// then name, matching the SQL backend's ordering.
func (s *memCategories) ListHierarchy(ctx context.Context) ([]catalog.Category, error) {
	defer s.lock()()
	out := s.all()
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := int64(0), int64(0)
		if out[i].ParentCategoryID != nil {
			pi = *out[i].ParentCategoryID
		}
		if out[j].ParentCategoryID != nil {
			pj = *out[j].ParentCategoryID
		}
		if pi != pj {
			return pi < pj
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

type memOrders struct {
	m       *Memory
	locking bool
}

func (s *memOrders) lock() func() {
	if !s.locking {
		return func() {}
	}
	s.m.mu.Lock()
	return s.m.mu.Unlock
}

func (s *memOrders) Get(ctx context.Context, id int64) (*catalog.Order, error) {
	defer s.lock()()
	o, ok := s.m.data.orders[id]
	if !ok {
		return nil, catalog.NotFound("store.Orders.Get", catalog.KindOrder, id)
	}
	cp := o
	return &cp, nil
}

func (s *memOrders) GetForUpdate(ctx context.Context, id int64) (*catalog.Order, error) {
	return s.Get(ctx, id)
}

func (s *memOrders) Save(ctx context.Context, o *catalog.Order) error {
	defer s.lock()()
	now := s.m.clock.Now()
	if o.ID == 0 {
		for _, existing := range s.m.data.orders {
			if existing.OrderNumber == o.OrderNumber {
				return catalog.StorageError("store.Orders.Save",
					&catalog.Error{Message: "duplicate order number " + o.OrderNumber})
			}
		}
		s.m.data.nextOrder++
		o.ID = s.m.data.nextOrder
		o.CreatedAt = now
	}
	o.UpdatedAt = now
	stored := *o
	stored.Items = nil
	s.m.data.orders[o.ID] = stored
	return nil
}

func (s *memOrders) List(ctx context.Context, filter catalog.OrderFilter, page catalog.PageRequest) (catalog.Page[catalog.Order], error) {
	defer s.lock()()

	var matched []catalog.Order
	for _, o := range s.m.data.orders {
		if filter.CustomerID != nil && o.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		if filter.CreatedFrom != nil && o.CreatedAt.Before(*filter.CreatedFrom) {
			continue
		}
		if filter.CreatedTo != nil && o.CreatedAt.After(*filter.CreatedTo) {
			continue
		}
		matched = append(matched, o)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return paginate(matched, page)
}

func (s *memOrders) CountByStatus(ctx context.Context, status catalog.OrderStatus) (int64, error) {
	defer s.lock()()
	var n int64
	for _, o := range s.m.data.orders {
		if o.Status == status {
			n++
		}
	}
	return n, nil
}

func (s *memOrders) Count(ctx context.Context) (int64, error) {
	defer s.lock()()
	return int64(len(s.m.data.orders)), nil
}

type memItems struct {
	m       *Memory
	locking bool
}

func (s *memItems) lock() func() {
	if !s.locking {
		return func() {}
	}
	s.m.mu.Lock()
	return s.m.mu.Unlock
}

func (s *memItems) Save(ctx context.Context, item *catalog.OrderItem) error {
	defer s.lock()()
	if item.ID == 0 {
		s.m.data.nextItem++
		item.ID = s.m.data.nextItem
		item.CreatedAt = s.m.clock.Now()
	}
	s.m.data.items[item.ID] = *item
	return nil
}

func (s *memItems) ListByOrder(ctx context.Context, orderID int64) ([]catalog.OrderItem, error) {
	defer s.lock()()
	var out []catalog.OrderItem
	for _, it := range s.m.data.items {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func paginate[T any](items []T, page catalog.PageRequest) (catalog.Page[T], error) {
	page, err := page.Normalize()
	if err != nil {
		return catalog.Page[T]{}, err
	}
	total := int64(len(items))
	start := page.Page * page.Size
	if start > len(items) {
		start = len(items)
	}
	end := start + page.Size
	if end > len(items) {
		end = len(items)
	}
	return catalog.Page[T]{
		Items: append([]T(nil), items[start:end]...),
		Total: total,
		Page:  page.Page,
		Size:  page.Size,
	}, nil
}
