package cache

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestKey_Deterministic(t *testing.T) {
	catID := int64(3)
	min := decimal.NewFromInt(10)

	a := Key(RegionProducts, "list", "widget", &catID, &min, nil, 0, 20)
	b := Key(RegionProducts, "list", "widget", &catID, &min, nil, 0, 20)
	if a != b {
		t.Errorf("same arguments produced different keys: %q vs %q", a, b)
	}

	want := "products:list:widget:3:10:-:0:20"
	if a != want {
		t.Errorf("Key() = %q, want %q", a, want)
	}
}

func TestKey_NilNormalization(t *testing.T) {
	var catID *int64
	var min *decimal.Decimal
	var at *time.Time

	got := Key(RegionProducts, "list", "", catID, min, at)
	want := "products:list::-:-:-"
	if got != want {
		t.Errorf("Key() = %q, want %q", got, want)
	}
}

func TestKey_StringArgsCannotAlias(t *testing.T) {
	// A string containing the joiner or the nil marker must not produce the
	// same key as a different argument list.
	if Key(RegionProducts, "list", "foo:-") == Key(RegionProducts, "list", "foo", nil) {
		t.Error(`"foo:-" aliased with ("foo", nil)`)
	}
	if Key(RegionProducts, "list", "a:b") == Key(RegionProducts, "list", "a", "b") {
		t.Error(`"a:b" aliased with ("a", "b")`)
	}
	if Key(RegionProducts, "list", "-") == Key(RegionProducts, "list", nil) {
		t.Error(`"-" aliased with nil`)
	}

	// Escaping is deterministic: equal strings still map to equal keys.
	if Key(RegionProducts, "list", "a:b") != Key(RegionProducts, "list", "a:b") {
		t.Error("escaping broke determinism")
	}
}

func TestKey_DistinguishesArguments(t *testing.T) {
	one, two := int64(1), int64(2)
	if Key(RegionCategories, "byParent", &one) == Key(RegionCategories, "byParent", &two) {
		t.Error("different arguments must produce different keys")
	}
	if Key(RegionProducts, "get", 1) == Key(RegionProductDetails, "get", 1) {
		t.Error("different regions must produce different keys")
	}
}

func TestMemory_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(nil)

	if _, ok, _ := m.Get(ctx, "missing"); ok {
		t.Error("Get on empty cache reported a hit")
	}

	if err := m.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	val, ok, err := m.Get(ctx, "k")
	if err != nil || !ok || val != "v" {
		t.Errorf("Get() = (%q, %v, %v), want (v, true, nil)", val, ok, err)
	}

	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Error("Get after Delete reported a hit")
	}
}

func TestMemory_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(nil)

	if err := m.Set(ctx, "k", "v", 10*time.Millisecond); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if _, ok, _ := m.Get(ctx, "k"); !ok {
		t.Fatal("entry expired before its TTL")
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Error("entry still readable after TTL")
	}
}

func TestMemory_DeletePrefix(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(nil)

	m.Set(ctx, "products:list:a", "1", 0)
	m.Set(ctx, "products:get:1", "2", 0)
	m.Set(ctx, "categories:all", "3", 0)

	if err := m.DeletePrefix(ctx, RegionPrefix(RegionProducts)); err != nil {
		t.Fatalf("DeletePrefix() failed: %v", err)
	}

	if _, ok, _ := m.Get(ctx, "products:list:a"); ok {
		t.Error("products entry survived region eviction")
	}
	if _, ok, _ := m.Get(ctx, "products:get:1"); ok {
		t.Error("products entry survived region eviction")
	}
	if _, ok, _ := m.Get(ctx, "categories:all"); !ok {
		t.Error("categories entry was evicted by a products eviction")
	}
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(nil)

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(n int) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				key := Key(RegionProducts, "get", n)
				m.Set(ctx, key, "v", 0)
				m.Get(ctx, key)
				m.DeletePrefix(ctx, RegionPrefix(RegionProducts))
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
