package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/oranba/product-catalog/internal/catalog"
	"github.com/oranba/product-catalog/internal/store"
)

func seed(t *testing.T, stores catalog.Stores, inventory int) *catalog.Product {
	t.Helper()
	p := &catalog.Product{
		Name:      "widget",
		Price:     decimal.NewFromInt(10),
		IsActive:  true,
		Inventory: inventory,
	}
	if err := stores.Products().Save(context.Background(), p); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

// adjust runs one ledger adjustment in its own transaction, the way the
// product service invokes it.
func adjust(stores catalog.Stores, ledger *Ledger, id int64, delta int) (*catalog.Product, error) {
	var out *catalog.Product
	err := stores.InTx(context.Background(), func(tx catalog.Stores) error {
		p, err := ledger.Adjust(context.Background(), tx, id, delta)
		if err != nil {
			return err
		}
		out = p
		return nil
	})
	return out, err
}

func TestAdjust_RestockAndConsume(t *testing.T) {
	stores := store.NewMemory(nil)
	ledger := NewLedger(nil, nil)
	p := seed(t, stores, 5)

	got, err := adjust(stores, ledger, p.ID, -3)
	if err != nil {
		t.Fatalf("Adjust(-3) failed: %v", err)
	}
	if got.Inventory != 2 {
		t.Errorf("inventory after -3 = %d, want 2", got.Inventory)
	}

	got, err = adjust(stores, ledger, p.ID, 10)
	if err != nil {
		t.Fatalf("Adjust(+10) failed: %v", err)
	}
	if got.Inventory != 12 {
		t.Errorf("inventory after +10 = %d, want 12", got.Inventory)
	}
}

func TestAdjust_RejectsNegativeResult(t *testing.T) {
	stores := store.NewMemory(nil)
	ledger := NewLedger(nil, nil)
	p := seed(t, stores, 5)

	// First debit succeeds, second would go negative and is rejected in
	// full.
	if _, err := adjust(stores, ledger, p.ID, -3); err != nil {
		t.Fatalf("Adjust(-3) failed: %v", err)
	}
	_, err := adjust(stores, ledger, p.ID, -3)
	if !errors.Is(err, catalog.ErrInsufficientStock) {
		t.Fatalf("Adjust(-3) on 2 = %v, want ErrInsufficientStock", err)
	}

	got, _ := stores.Products().Get(context.Background(), p.ID)
	if got.Inventory != 2 {
		t.Errorf("inventory after rejection = %d, want unchanged 2", got.Inventory)
	}
}

func TestAdjust_ExactDrainToZero(t *testing.T) {
	stores := store.NewMemory(nil)
	ledger := NewLedger(nil, nil)
	p := seed(t, stores, 4)

	got, err := adjust(stores, ledger, p.ID, -4)
	if err != nil {
		t.Fatalf("Adjust(-4) failed: %v", err)
	}
	if got.Inventory != 0 {
		t.Errorf("inventory = %d, want 0", got.Inventory)
	}
}

func TestAdjust_UnknownProduct(t *testing.T) {
	stores := store.NewMemory(nil)
	ledger := NewLedger(nil, nil)

	_, err := adjust(stores, ledger, 99, -1)
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("Adjust on unknown product = %v, want ErrNotFound", err)
	}
}

func TestAdjust_ConcurrentDebitsNeverGoNegative(t *testing.T) {
	stores := store.NewMemory(nil)
	ledger := NewLedger(nil, nil)
	p := seed(t, stores, 5)

	// Two simultaneous debits of 4 against stock 5: exactly one may win.
	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := adjust(stores, ledger, p.ID, -4)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, rejected int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, catalog.ErrInsufficientStock):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || rejected != 1 {
		t.Errorf("concurrent debits: %d succeeded, %d rejected, want 1/1", ok, rejected)
	}

	got, _ := stores.Products().Get(context.Background(), p.ID)
	if got.Inventory != 1 {
		t.Errorf("final inventory = %d, want 1", got.Inventory)
	}
	if got.Inventory < 0 {
		t.Error("inventory went negative")
	}
}

func TestListBelow(t *testing.T) {
	stores := store.NewMemory(nil)
	ledger := NewLedger(nil, nil)
	seed(t, stores, 3)
	seed(t, stores, 50)

	got, err := ledger.ListBelow(context.Background(), stores, 10)
	if err != nil {
		t.Fatalf("ListBelow() failed: %v", err)
	}
	if len(got) != 1 || got[0].Inventory != 3 {
		t.Errorf("ListBelow(10) = %+v, want only the low product", got)
	}

	if _, err := ledger.ListBelow(context.Background(), stores, -1); !errors.Is(err, catalog.ErrInvalidArgument) {
		t.Errorf("ListBelow(-1) = %v, want ErrInvalidArgument", err)
	}
}
