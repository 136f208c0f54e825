// Package category implements category management: CRUD over the category
// tree, cached reads, and write-time acyclicity validation of parent links.
package category

import (
	"context"
	"encoding/json"
	"time"

	"github.com/oranba/product-catalog/internal/cache"
	"github.com/oranba/product-catalog/internal/catalog"
	"github.com/oranba/product-catalog/internal/telemetry"
	"github.com/oranba/product-catalog/pkg/logger"
)

// maxAncestorDepth bounds the parent walk during cycle validation. A chain
// deeper than this is treated as a cycle rather than walked forever.
const maxAncestorDepth = 32

// Service exposes category operations. All reads share the categories cache
// region; every write evicts the whole region.
type Service struct {
	stores  catalog.Stores
	cache   cache.Store
	ttl     time.Duration
	logger  logger.Logger
	metrics *telemetry.Instruments
}

// NewService wires the category service. A nil cache disables caching.
func NewService(stores catalog.Stores, c cache.Store, ttl time.Duration, log logger.Logger, metrics *telemetry.Instruments) *Service {
	if log == nil {
		log = logger.NoOp{}
	}
	if metrics == nil {
		metrics = telemetry.NewInstruments("catalog-categories")
	}
	return &Service{stores: stores, cache: c, ttl: ttl, logger: log, metrics: metrics}
}

// Get returns a category by id.
func (s *Service) Get(ctx context.Context, id int64) (*catalog.Category, error) {
	defer s.metrics.Time(ctx, telemetry.MetricCategoryFindTime)()

	key := cache.Key(cache.RegionCategories, "get", id)
	var cached catalog.Category
	if s.readCache(ctx, key, &cached) {
		return &cached, nil
	}

	c, err := s.stores.Categories().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, key, c)
	return c, nil
}

// Create persists a new category after validating its parent link.
func (s *Service) Create(ctx context.Context, c *catalog.Category) (*catalog.Category, error) {
	const op = "category.Create"
	if c == nil {
		return nil, catalog.InvalidArgument(op, catalog.KindCategory, "category body is required")
	}
	if c.ID != 0 {
		return nil, catalog.InvalidArgument(op, catalog.KindCategory,
			"category identity is server-assigned, got id %d", c.ID)
	}
	if c.Name == "" {
		return nil, catalog.InvalidArgument(op, catalog.KindCategory, "category name is required")
	}
	if c.ParentCategoryID != nil {
		if _, err := s.stores.Categories().Get(ctx, *c.ParentCategoryID); err != nil {
			return nil, err
		}
	}

	if err := s.stores.Categories().Save(ctx, c); err != nil {
		return nil, err
	}

	s.evictAll(ctx)
	s.logger.Info("Category created", logger.Fields{
		"category_id": c.ID,
		"name":        c.Name,
	})
	return c, nil
}

// Update replaces a category's fields. Re-parenting runs the cycle check so
// a category can never become its own ancestor.
func (s *Service) Update(ctx context.Context, id int64, in *catalog.Category) (*catalog.Category, error) {
	const op = "category.Update"
	if in == nil {
		return nil, catalog.InvalidArgument(op, catalog.KindCategory, "category body is required")
	}
	if in.Name == "" {
		return nil, catalog.InvalidArgument(op, catalog.KindCategory, "category name is required")
	}

	c, err := s.stores.Categories().Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.ParentCategoryID != nil {
		if err := s.validateParent(ctx, id, *in.ParentCategoryID); err != nil {
			return nil, err
		}
	}

	c.Name = in.Name
	c.Description = in.Description
	c.ParentCategoryID = in.ParentCategoryID

	if err := s.stores.Categories().Save(ctx, c); err != nil {
		return nil, err
	}

	s.evictAll(ctx)
	s.logger.Info("Category updated", logger.Fields{"category_id": id})
	return c, nil
}

// validateParent walks the ancestor chain from the proposed parent and
// rejects the link when it reaches the category being updated or exceeds the
// depth bound.
func (s *Service) validateParent(ctx context.Context, id, parentID int64) error {
	const op = "category.Update"
	if parentID == id {
		return catalog.InvalidArgument(op, catalog.KindCategory,
			"category %d cannot be its own parent", id)
	}

	current := parentID
	for depth := 0; depth < maxAncestorDepth; depth++ {
		parent, err := s.stores.Categories().Get(ctx, current)
		if err != nil {
			return err
		}
		if parent.ParentCategoryID == nil {
			return nil
		}
		current = *parent.ParentCategoryID
		if current == id {
			return catalog.InvalidArgument(op, catalog.KindCategory,
				"re-parenting category %d under %d would create a cycle", id, parentID)
		}
	}
	return catalog.InvalidArgument(op, catalog.KindCategory,
		"ancestor chain of category %d exceeds depth %d", parentID, maxAncestorDepth)
}

// Delete removes a category.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.stores.Categories().Delete(ctx, id); err != nil {
		return err
	}
	s.evictAll(ctx)
	s.logger.Info("Category deleted", logger.Fields{"category_id": id})
	return nil
}

// List returns all categories.
func (s *Service) List(ctx context.Context) ([]catalog.Category, error) {
	defer s.metrics.Time(ctx, telemetry.MetricCategoryFindTime)()
	return s.cachedList(ctx, cache.Key(cache.RegionCategories, "all"), func() ([]catalog.Category, error) {
		return s.stores.Categories().List(ctx)
	})
}

// ByParent returns the children of a parent category.
func (s *Service) ByParent(ctx context.Context, parentID int64) ([]catalog.Category, error) {
	defer s.metrics.Time(ctx, telemetry.MetricCategoryFindTime)()
	return s.cachedList(ctx, cache.Key(cache.RegionCategories, "byParent", parentID), func() ([]catalog.Category, error) {
		return s.stores.Categories().ListByParent(ctx, &parentID)
	})
}

// Roots returns categories without a parent.
func (s *Service) Roots(ctx context.Context) ([]catalog.Category, error) {
	defer s.metrics.Time(ctx, telemetry.MetricCategoryFindTime)()
	return s.cachedList(ctx, cache.Key(cache.RegionCategories, "root"), func() ([]catalog.Category, error) {
		return s.stores.Categories().ListByParent(ctx, nil)
	})
}

// Hierarchy returns all categories ordered parents-first.
func (s *Service) Hierarchy(ctx context.Context) ([]catalog.Category, error) {
	defer s.metrics.Time(ctx, telemetry.MetricCategoryFindTime)()
	return s.cachedList(ctx, cache.Key(cache.RegionCategories, "hierarchy"), func() ([]catalog.Category, error) {
		return s.stores.Categories().ListHierarchy(ctx)
	})
}

func (s *Service) cachedList(ctx context.Context, key string, load func() ([]catalog.Category, error)) ([]catalog.Category, error) {
	var cached []catalog.Category
	if s.readCache(ctx, key, &cached) {
		return cached, nil
	}
	out, err := load()
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, key, out)
	return out, nil
}

func (s *Service) readCache(ctx context.Context, key string, out interface{}) bool {
	if s.cache == nil {
		return false
	}
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
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

func (s *Service) evictAll(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePrefix(ctx, cache.RegionPrefix(cache.RegionCategories)); err != nil {
		s.logger.Warn("Cache eviction failed", logger.Fields{"error": err})
	}
}
