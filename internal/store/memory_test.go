package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oranba/product-catalog/internal/catalog"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func seedProduct(t *testing.T, m *Memory, name string, price int64, inventory int) *catalog.Product {
	t.Helper()
	p := &catalog.Product{
		Name:      name,
		Price:     decimal.NewFromInt(price),
		IsActive:  true,
		Inventory: inventory,
	}
	if err := m.Products().Save(context.Background(), p); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func TestMemory_ProductSaveAssignsIdentity(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory(fixedClock{now})

	p := seedProduct(t, m, "widget", 10, 5)
	if p.ID == 0 {
		t.Fatal("Save did not assign an identity")
	}
	if !p.CreatedAt.Equal(now) || !p.UpdatedAt.Equal(now) {
		t.Errorf("timestamps = %v/%v, want %v", p.CreatedAt, p.UpdatedAt, now)
	}

	got, err := m.Products().Get(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Name != "widget" || got.Inventory != 5 {
		t.Errorf("stored product = %+v", got)
	}
}

func TestMemory_GetUnknownIsNotFound(t *testing.T) {
	m := NewMemory(nil)
	_, err := m.Products().Get(context.Background(), 42)
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("Get(42) error = %v, want ErrNotFound", err)
	}
	_, err = m.Orders().Get(context.Background(), 42)
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("Orders.Get(42) error = %v, want ErrNotFound", err)
	}
}

func TestMemory_InTxRollsBackAllWrites(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(nil)
	p := seedProduct(t, m, "widget", 10, 5)

	sentinel := errors.New("abort")
	err := m.InTx(ctx, func(tx catalog.Stores) error {
		got, err := tx.Products().GetForUpdate(ctx, p.ID)
		if err != nil {
			return err
		}
		got.Inventory = 0
		if err := tx.Products().Save(ctx, got); err != nil {
			return err
		}
		o := &catalog.Order{OrderNumber: "ORD-X", CustomerID: 1, Status: catalog.StatusCreated}
		if err := tx.Orders().Save(ctx, o); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("InTx error = %v, want sentinel", err)
	}

	got, _ := m.Products().Get(ctx, p.ID)
	if got.Inventory != 5 {
		t.Errorf("inventory after rollback = %d, want 5", got.Inventory)
	}
	if n, _ := m.Orders().Count(ctx); n != 0 {
		t.Errorf("order count after rollback = %d, want 0", n)
	}
}

func TestMemory_InTxCommits(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(nil)
	p := seedProduct(t, m, "widget", 10, 5)

	err := m.InTx(ctx, func(tx catalog.Stores) error {
		got, err := tx.Products().GetForUpdate(ctx, p.ID)
		if err != nil {
			return err
		}
		got.Inventory = 3
		return tx.Products().Save(ctx, got)
	})
	if err != nil {
		t.Fatalf("InTx failed: %v", err)
	}

	got, _ := m.Products().Get(ctx, p.ID)
	if got.Inventory != 3 {
		t.Errorf("inventory after commit = %d, want 3", got.Inventory)
	}
}

func TestMemory_NestedInTxJoins(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(nil)
	p := seedProduct(t, m, "widget", 10, 5)

	sentinel := errors.New("abort")
	err := m.InTx(ctx, func(tx catalog.Stores) error {
		return tx.InTx(ctx, func(inner catalog.Stores) error {
			got, err := inner.Products().GetForUpdate(ctx, p.ID)
			if err != nil {
				return err
			}
			got.Inventory = 0
			if err := inner.Products().Save(ctx, got); err != nil {
				return err
			}
			return sentinel
		})
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("nested InTx error = %v, want sentinel", err)
	}
	got, _ := m.Products().Get(ctx, p.ID)
	if got.Inventory != 5 {
		t.Errorf("inventory after nested rollback = %d, want 5", got.Inventory)
	}
}

func TestMemory_ProductListFilters(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(nil)
	catID := int64(1)

	a := seedProduct(t, m, "Blue Widget", 10, 5)
	a.CategoryID = &catID
	m.Products().Save(ctx, a)
	seedProduct(t, m, "Red Gadget", 30, 5)
	seedProduct(t, m, "blue gadget", 50, 5)

	byName, err := m.Products().List(ctx, catalog.ProductFilter{Name: "blue"}, catalog.PageRequest{})
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(byName.Items) != 2 {
		t.Errorf("name filter matched %d, want 2 (case-insensitive contains)", len(byName.Items))
	}

	byCat, _ := m.Products().List(ctx, catalog.ProductFilter{CategoryID: &catID}, catalog.PageRequest{})
	if len(byCat.Items) != 1 || byCat.Items[0].ID != a.ID {
		t.Errorf("category filter = %+v, want just product %d", byCat.Items, a.ID)
	}

	min := decimal.NewFromInt(20)
	max := decimal.NewFromInt(40)
	byPrice, _ := m.Products().List(ctx, catalog.ProductFilter{MinPrice: &min, MaxPrice: &max}, catalog.PageRequest{})
	if len(byPrice.Items) != 1 || byPrice.Items[0].Name != "Red Gadget" {
		t.Errorf("price filter = %+v, want just Red Gadget", byPrice.Items)
	}
}

func TestMemory_Pagination(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(nil)
	for i := 0; i < 25; i++ {
		seedProduct(t, m, "p", 1, 1)
	}

	first, err := m.Products().List(ctx, catalog.ProductFilter{}, catalog.PageRequest{Page: 0, Size: 20})
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(first.Items) != 20 || first.Total != 25 {
		t.Errorf("page 0 = %d items total %d, want 20/25", len(first.Items), first.Total)
	}

	second, _ := m.Products().List(ctx, catalog.ProductFilter{}, catalog.PageRequest{Page: 1, Size: 20})
	if len(second.Items) != 5 {
		t.Errorf("page 1 = %d items, want 5", len(second.Items))
	}

	far, _ := m.Products().List(ctx, catalog.ProductFilter{}, catalog.PageRequest{Page: 9, Size: 20})
	if len(far.Items) != 0 || far.Total != 25 {
		t.Errorf("page past the end = %d items total %d, want 0/25", len(far.Items), far.Total)
	}
}

func TestMemory_PaginationBounds(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(nil)
	seedProduct(t, m, "p", 1, 1)

	// A page number large enough that page*size overflows int must be
	// rejected, not turned into a negative slice bound.
	_, err := m.Products().List(ctx, catalog.ProductFilter{}, catalog.PageRequest{Page: 1 << 61, Size: 20})
	if !errors.Is(err, catalog.ErrInvalidArgument) {
		t.Errorf("List(page=1<<61) = %v, want ErrInvalidArgument", err)
	}

	_, err = m.Products().List(ctx, catalog.ProductFilter{}, catalog.PageRequest{Page: catalog.MaxPage + 1, Size: 20})
	if !errors.Is(err, catalog.ErrInvalidArgument) {
		t.Errorf("List(page=MaxPage+1) = %v, want ErrInvalidArgument", err)
	}

	_, err = m.Products().List(ctx, catalog.ProductFilter{}, catalog.PageRequest{Size: catalog.MaxPageSize + 1})
	if !errors.Is(err, catalog.ErrInvalidArgument) {
		t.Errorf("List(size=MaxPageSize+1) = %v, want ErrInvalidArgument", err)
	}

	// The boundary itself is legal.
	atMax, err := m.Products().List(ctx, catalog.ProductFilter{}, catalog.PageRequest{Page: catalog.MaxPage, Size: catalog.MaxPageSize})
	if err != nil {
		t.Fatalf("List at the boundary failed: %v", err)
	}
	if len(atMax.Items) != 0 || atMax.Total != 1 {
		t.Errorf("boundary page = %d items total %d, want 0/1", len(atMax.Items), atMax.Total)
	}
}

func TestMemory_ListLowInventory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(nil)

	low := seedProduct(t, m, "low", 1, 3)
	seedProduct(t, m, "plenty", 1, 100)
	inactive := seedProduct(t, m, "inactive", 1, 0)
	inactive.IsActive = false
	m.Products().Save(ctx, inactive)
	edge := seedProduct(t, m, "edge", 1, 10)

	got, err := m.Products().ListLowInventory(ctx, 10)
	if err != nil {
		t.Fatalf("ListLowInventory() failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListLowInventory returned %d products, want 2 (low, edge)", len(got))
	}
	if got[0].ID != low.ID || got[1].ID != edge.ID {
		t.Errorf("ListLowInventory = %+v", got)
	}
}

func TestMemory_OrderFiltersAndCounts(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory(fixedClock{base})

	save := func(customer int64, status catalog.OrderStatus, number string) {
		o := &catalog.Order{OrderNumber: number, CustomerID: customer, Status: status}
		if err := m.Orders().Save(ctx, o); err != nil {
			t.Fatalf("seed order: %v", err)
		}
	}
	save(1, catalog.StatusCreated, "ORD-A")
	save(1, catalog.StatusPaid, "ORD-B")
	save(2, catalog.StatusCreated, "ORD-C")

	cust := int64(1)
	st := catalog.StatusCreated
	page, err := m.Orders().List(ctx, catalog.OrderFilter{CustomerID: &cust, Status: &st}, catalog.PageRequest{})
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].OrderNumber != "ORD-A" {
		t.Errorf("combined filter = %+v, want just ORD-A", page.Items)
	}

	from := base.Add(-time.Hour)
	to := base.Add(time.Hour)
	inRange, _ := m.Orders().List(ctx, catalog.OrderFilter{CreatedFrom: &from, CreatedTo: &to}, catalog.PageRequest{})
	if len(inRange.Items) != 3 {
		t.Errorf("date range matched %d, want 3", len(inRange.Items))
	}

	if n, _ := m.Orders().CountByStatus(ctx, catalog.StatusCreated); n != 2 {
		t.Errorf("CountByStatus(CREATED) = %d, want 2", n)
	}
	if n, _ := m.Orders().Count(ctx); n != 3 {
		t.Errorf("Count() = %d, want 3", n)
	}
}

func TestMemory_DuplicateOrderNumberRejected(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(nil)

	if err := m.Orders().Save(ctx, &catalog.Order{OrderNumber: "ORD-A", CustomerID: 1, Status: catalog.StatusCreated}); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	err := m.Orders().Save(ctx, &catalog.Order{OrderNumber: "ORD-A", CustomerID: 2, Status: catalog.StatusCreated})
	if err == nil {
		t.Fatal("duplicate order number accepted")
	}
}

func TestMemory_CategoryHierarchyOrdering(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(nil)

	root := &catalog.Category{Name: "Electronics"}
	m.Categories().Save(ctx, root)
	child := &catalog.Category{Name: "Phones", ParentCategoryID: &root.ID}
	m.Categories().Save(ctx, child)
	root2 := &catalog.Category{Name: "Apparel"}
	m.Categories().Save(ctx, root2)

	got, err := m.Categories().ListHierarchy(ctx)
	if err != nil {
		t.Fatalf("ListHierarchy() failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ListHierarchy returned %d, want 3", len(got))
	}
	// Roots first (by name), then children grouped under parent ids.
	if got[0].Name != "Apparel" || got[1].Name != "Electronics" || got[2].Name != "Phones" {
		t.Errorf("hierarchy order = %s, %s, %s", got[0].Name, got[1].Name, got[2].Name)
	}

	roots, _ := m.Categories().ListByParent(ctx, nil)
	if len(roots) != 2 {
		t.Errorf("ListByParent(nil) = %d roots, want 2", len(roots))
	}
	children, _ := m.Categories().ListByParent(ctx, &root.ID)
	if len(children) != 1 || children[0].Name != "Phones" {
		t.Errorf("ListByParent(root) = %+v", children)
	}
}
