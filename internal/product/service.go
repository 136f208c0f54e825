// Package product implements the product side of the catalog: CRUD with
// logical deletion, cached reads with explicit invalidation, and the
// inventory endpoints wrapping the ledger.
package product

import (
	"context"
	"encoding/json"
	"time"

	"github.com/oranba/product-catalog/internal/cache"
	"github.com/oranba/product-catalog/internal/catalog"
	"github.com/oranba/product-catalog/internal/inventory"
	"github.com/oranba/product-catalog/internal/telemetry"
	"github.com/oranba/product-catalog/pkg/logger"
)

// Service exposes product operations. Reads go through the query cache;
// every write evicts the affected region(s) before returning.
type Service struct {
	stores  catalog.Stores
	ledger  *inventory.Ledger
	cache   cache.Store
	ttl     time.Duration
	logger  logger.Logger
	metrics *telemetry.Instruments
}

// NewService wires the product service. A nil cache disables caching.
func NewService(stores catalog.Stores, ledger *inventory.Ledger, c cache.Store, ttl time.Duration, log logger.Logger, metrics *telemetry.Instruments) *Service {
	if log == nil {
		log = logger.NoOp{}
	}
	if metrics == nil {
		metrics = telemetry.NewInstruments("catalog-products")
	}
	return &Service{
		stores:  stores,
		ledger:  ledger,
		cache:   c,
		ttl:     ttl,
		logger:  log,
		metrics: metrics,
	}
}

// Get returns a product by id, cached under the productDetails region.
func (s *Service) Get(ctx context.Context, id int64) (*catalog.Product, error) {
	defer s.metrics.Time(ctx, telemetry.MetricProductFindTime)()

	key := cache.Key(cache.RegionProductDetails, "get", id)
	var cached catalog.Product
	if s.readCache(ctx, key, &cached) {
		return &cached, nil
	}

	p, err := s.stores.Products().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, key, p)
	return p, nil
}

// Create persists a new product and evicts the products listing region.
func (s *Service) Create(ctx context.Context, p *catalog.Product) (*catalog.Product, error) {
	const op = "product.Create"
	if p == nil {
		return nil, catalog.InvalidArgument(op, catalog.KindProduct, "product body is required")
	}
	if p.ID != 0 {
		return nil, catalog.InvalidArgument(op, catalog.KindProduct,
			"product identity is server-assigned, got id %d", p.ID)
	}
	if p.Name == "" {
		return nil, catalog.InvalidArgument(op, catalog.KindProduct, "product name is required")
	}
	if p.Price.IsNegative() {
		return nil, catalog.InvalidArgument(op, catalog.KindProduct, "price must not be negative")
	}
	if p.Inventory < 0 {
		return nil, catalog.InvalidArgument(op, catalog.KindProduct, "inventory must not be negative")
	}
	if p.CategoryID != nil {
		if _, err := s.stores.Categories().Get(ctx, *p.CategoryID); err != nil {
			return nil, err
		}
	}

	p.IsActive = true
	if err := s.stores.Products().Save(ctx, p); err != nil {
		return nil, err
	}

	s.evict(ctx, cache.RegionPrefix(cache.RegionProducts))
	s.logger.Info("Product created", logger.Fields{
		"product_id": p.ID,
		"name":       p.Name,
	})
	return p, nil
}

// Update replaces the mutable fields of an existing product. Inventory is
// not updatable through this path; it moves only through the ledger.
func (s *Service) Update(ctx context.Context, id int64, in *catalog.Product) (*catalog.Product, error) {
	const op = "product.Update"
	if in == nil {
		return nil, catalog.InvalidArgument(op, catalog.KindProduct, "product body is required")
	}
	if in.Name == "" {
		return nil, catalog.InvalidArgument(op, catalog.KindProduct, "product name is required")
	}
	if in.Price.IsNegative() {
		return nil, catalog.InvalidArgument(op, catalog.KindProduct, "price must not be negative")
	}
	if in.CategoryID != nil {
		if _, err := s.stores.Categories().Get(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
	}

	p, err := s.stores.Products().Get(ctx, id)
	if err != nil {
		return nil, err
	}

	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	p.CategoryID = in.CategoryID
	p.ImageURL = in.ImageURL
	p.IsActive = in.IsActive

	if err := s.stores.Products().Save(ctx, p); err != nil {
		return nil, err
	}

	s.evict(ctx,
		cache.RegionPrefix(cache.RegionProducts),
		cache.Key(cache.RegionProductDetails, "get", id))
	s.logger.Info("Product updated", logger.Fields{"product_id": id})
	return p, nil
}

// Delete deactivates a product. The row stays; listings and order history
// keep referring to it.
func (s *Service) Delete(ctx context.Context, id int64) error {
	p, err := s.stores.Products().Get(ctx, id)
	if err != nil {
		return err
	}
	p.IsActive = false
	if err := s.stores.Products().Save(ctx, p); err != nil {
		return err
	}

	s.evict(ctx,
		cache.RegionPrefix(cache.RegionProducts),
		cache.Key(cache.RegionProductDetails, "get", id))
	s.logger.Info("Product deactivated", logger.Fields{"product_id": id})
	return nil
}

// List returns a filtered, paginated product listing, cached under the
// products region.
func (s *Service) List(ctx context.Context, filter catalog.ProductFilter, page catalog.PageRequest) (catalog.Page[catalog.Product], error) {
	defer s.metrics.Time(ctx, telemetry.MetricProductFindTime)()

	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MaxPrice.LessThan(*filter.MinPrice) {
		return catalog.Page[catalog.Product]{}, catalog.InvalidArgument(
			"product.List", catalog.KindProduct, "max price precedes min price")
	}

	key := cache.Key(cache.RegionProducts, "list",
		filter.Name, filter.CategoryID, filter.MinPrice, filter.MaxPrice, page.Page, page.Size)
	var cached catalog.Page[catalog.Product]
	if s.readCache(ctx, key, &cached) {
		return cached, nil
	}

	result, err := s.stores.Products().List(ctx, filter, page)
	if err != nil {
		return catalog.Page[catalog.Product]{}, err
	}
	s.writeCache(ctx, key, result)
	return result, nil
}

// ByCategory returns a page of products in the category.
func (s *Service) ByCategory(ctx context.Context, categoryID int64, page catalog.PageRequest) (catalog.Page[catalog.Product], error) {
	return s.List(ctx, catalog.ProductFilter{CategoryID: &categoryID}, page)
}

// AdjustInventory applies a quantity change through the ledger in its own
// transaction and evicts the product caches.
func (s *Service) AdjustInventory(ctx context.Context, id int64, delta int) (*catalog.Product, error) {
	var updated *catalog.Product
	err := s.stores.InTx(ctx, func(tx catalog.Stores) error {
		p, err := s.ledger.Adjust(ctx, tx, id, delta)
		if err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.evict(ctx,
		cache.RegionPrefix(cache.RegionProducts),
		cache.Key(cache.RegionProductDetails, "get", id))
	return updated, nil
}

// LowInventory returns active products at or below the threshold.
func (s *Service) LowInventory(ctx context.Context, threshold int) ([]catalog.Product, error) {
	return s.ledger.ListBelow(ctx, s.stores, threshold)
}

func (s *Service) readCache(ctx context.Context, key string, out interface{}) bool {
	if s.cache == nil {
		return false
	}
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		// A broken cache must not break reads.
		s.logger.Warn("Cache read failed", logger.Fields{"key": key, "error": err})
		return false
	}
	if !ok {
		s.metrics.RecordCounter(ctx, telemetry.MetricCacheMisses, 1)
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		s.logger.Warn("Cache entry corrupt", logger.Fields{"key": key, "error": err})
		return false
	}
	s.metrics.RecordCounter(ctx, telemetry.MetricCacheHits, 1)
	return true
}

func (s *Service) writeCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), s.ttl); err != nil {
		s.logger.Warn("Cache write failed", logger.Fields{"key": key, "error": err})
	}
}

func (s *Service) evict(ctx context.Context, prefixThenKeys ...string) {
	if s.cache == nil {
		return
	}
	// First entry is a region prefix, the rest are exact keys.
	if err := s.cache.DeletePrefix(ctx, prefixThenKeys[0]); err != nil {
		s.logger.Warn("Cache eviction failed", logger.Fields{"prefix": prefixThenKeys[0], "error": err})
	}
	if len(prefixThenKeys) > 1 {
		if err := s.cache.Delete(ctx, prefixThenKeys[1:]...); err != nil {
			s.logger.Warn("Cache eviction failed", logger.Fields{"error": err})
		}
	}
}
