package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oranba/product-catalog/internal/catalog"
)

type gormProducts struct {
	db *gorm.DB
}

func (s *gormProducts) Get(ctx context.Context, id int64) (*catalog.Product, error) {
	var p catalog.Product
	err := s.db.WithContext(ctx).First(&p, id).Error
	if err != nil {
		return nil, translate("store.Products.Get", catalog.KindProduct, id, err)
	}
	return &p, nil
}

// GetForUpdate takes a FOR UPDATE row lock. Only meaningful inside InTx; the
// lock is held until the transaction commits or rolls back.
func (s *gormProducts) GetForUpdate(ctx context.Context, id int64) (*catalog.Product, error) {
	var p catalog.Product
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, id).Error
	if err != nil {
		return nil, translate("store.Products.GetForUpdate", catalog.KindProduct, id, err)
	}
	return &p, nil
}

func (s *gormProducts) Save(ctx context.Context, p *catalog.Product) error {
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return translate("store.Products.Save", catalog.KindProduct, p.ID, err)
	}
	return nil
}

func (s *gormProducts) List(ctx context.Context, filter catalog.ProductFilter, page catalog.PageRequest) (catalog.Page[catalog.Product], error) {
	q := s.db.WithContext(ctx).Model(&catalog.Product{})
	if filter.Name != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.CategoryID != nil {
		q = q.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.MinPrice != nil {
		q = q.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("price <= ?", *filter.MaxPrice)
	}
	return listPage[catalog.Product](q, page, "store.Products.List", catalog.KindProduct)
}

func (s *gormProducts) ListLowInventory(ctx context.Context, threshold int) ([]catalog.Product, error) {
	var out []catalog.Product
	err := s.db.WithContext(ctx).
		Where("inventory <= ? AND is_active = ?", threshold, true).
		Order("id").
		Find(&out).Error
	if err != nil {
		return nil, catalog.StorageError("store.Products.ListLowInventory", err)
	}
	return out, nil
}

type gormCategories struct {
	db *gorm.DB
}

func (s *gormCategories) Get(ctx context.Context, id int64) (*catalog.Category, error) {
	var c catalog.Category
	err := s.db.WithContext(ctx).First(&c, id).Error
	if err != nil {
		return nil, translate("store.Categories.Get", catalog.KindCategory, id, err)
	}
	return &c, nil
}

func (s *gormCategories) Save(ctx context.Context, c *catalog.Category) error {
	if err := s.db.WithContext(ctx).Save(c).Error; err != nil {
		return translate("store.Categories.Save", catalog.KindCategory, c.ID, err)
	}
	return nil
}

func (s *gormCategories) Delete(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&catalog.Category{}, id)
	if res.Error != nil {
		return translate("store.Categories.Delete", catalog.KindCategory, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return catalog.NotFound("store.Categories.Delete", catalog.KindCategory, id)
	}
	return nil
}

func (s *gormCategories) List(ctx context.Context) ([]catalog.Category, error) {
	var out []catalog.Category
	if err := s.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, catalog.StorageError("store.Categories.List", err)
	}
	return out, nil
}

func (s *gormCategories) ListByParent(ctx context.Context, parentID *int64) ([]catalog.Category, error) {
	q := s.db.WithContext(ctx)
	if parentID == nil {
		q = q.Where("parent_category_id IS NULL")
	} else {
		q = q.Where("parent_category_id = ?", *parentID)
	}
	var out []catalog.Category
	if err := q.Order("id").Find(&out).Error; err != nil {
		return nil, catalog.StorageError("store.Categories.ListByParent", err)
	}
	return out, nil
}

// ListHierarchy returns all categories parents-first: roots sort as parent 0,
// children group under their parent id, ties break by name.
func (s *gormCategories) ListHierarchy(ctx context.Context) ([]catalog.Category, error) {
	var out []catalog.Category
	err := s.db.WithContext(ctx).
		Order("COALESCE(parent_category_id, 0), name").
		Find(&out).Error
	if err != nil {
		return nil, catalog.StorageError("store.Categories.ListHierarchy", err)
	}
	return out, nil
}

type gormOrders struct {
	db *gorm.DB
}

func (s *gormOrders) Get(ctx context.Context, id int64) (*catalog.Order, error) {
	var o catalog.Order
	err := s.db.WithContext(ctx).First(&o, id).Error
	if err != nil {
		return nil, translate("store.Orders.Get", catalog.KindOrder, id, err)
	}
	return &o, nil
}

func (s *gormOrders) GetForUpdate(ctx context.Context, id int64) (*catalog.Order, error) {
	var o catalog.Order
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&o, id).Error
	if err != nil {
		return nil, translate("store.Orders.GetForUpdate", catalog.KindOrder, id, err)
	}
	return &o, nil
}

func (s *gormOrders) Save(ctx context.Context, o *catalog.Order) error {
	// Items persist through OrderItemStore; the gorm:"-" tag on Items
	// keeps Save from cascading.
	if err := s.db.WithContext(ctx).Save(o).Error; err != nil {
		return translate("store.Orders.Save", catalog.KindOrder, o.ID, err)
	}
	return nil
}

func (s *gormOrders) List(ctx context.Context, filter catalog.OrderFilter, page catalog.PageRequest) (catalog.Page[catalog.Order], error) {
	q := s.db.WithContext(ctx).Model(&catalog.Order{})
	if filter.CustomerID != nil {
		q = q.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.CreatedFrom != nil {
		q = q.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		q = q.Where("created_at <= ?", *filter.CreatedTo)
	}
	return listPage[catalog.Order](q, page, "store.Orders.List", catalog.KindOrder)
}

func (s *gormOrders) CountByStatus(ctx context.Context, status catalog.OrderStatus) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&catalog.Order{}).
		Where("status = ?", status).
		Count(&n).Error
	if err != nil {
		return 0, catalog.StorageError("store.Orders.CountByStatus", err)
	}
	return n, nil
}

func (s *gormOrders) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&catalog.Order{}).Count(&n).Error; err != nil {
		return 0, catalog.StorageError("store.Orders.Count", err)
	}
	return n, nil
}

type gormItems struct {
	db *gorm.DB
}

func (s *gormItems) Save(ctx context.Context, item *catalog.OrderItem) error {
	if err := s.db.WithContext(ctx).Save(item).Error; err != nil {
		return translate("store.OrderItems.Save", catalog.KindOrder, item.OrderID, err)
	}
	return nil
}

func (s *gormItems) ListByOrder(ctx context.Context, orderID int64) ([]catalog.OrderItem, error) {
	var out []catalog.OrderItem
	err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id").
		Find(&out).Error
	if err != nil {
		return nil, catalog.StorageError("store.OrderItems.ListByOrder", err)
	}
	return out, nil
}

// listPage runs the filtered query twice: once for the total count, once for
// the requested page ordered by id.
func listPage[T any](q *gorm.DB, page catalog.PageRequest, op, kind string) (catalog.Page[T], error) {
	page, err := page.Normalize()
	if err != nil {
		return catalog.Page[T]{}, err
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return catalog.Page[T]{}, catalog.StorageError(op, err)
	}

	var items []T
	err = q.Order("id").
		Offset(page.Page * page.Size).
		Limit(page.Size).
		Find(&items).Error
	if err != nil {
		return catalog.Page[T]{}, catalog.StorageError(op, err)
	}

	return catalog.Page[T]{Items: items, Total: total, Page: page.Page, Size: page.Size}, nil
}
