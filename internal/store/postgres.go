package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/oranba/product-catalog/internal/catalog"
	"github.com/oranba/product-catalog/pkg/logger"
)

// Options configures the PostgreSQL backend.
type Options struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Logger          logger.Logger
}

// Gorm is the GORM-backed catalog.Stores implementation.
type Gorm struct {
	db     *gorm.DB
	logger logger.Logger
}

// Open connects to PostgreSQL, migrates the schema, and configures the pool.
func Open(opts Options) (*Gorm, error) {
	log := opts.Logger
	if log == nil {
		log = logger.NoOp{}
	}

	db, err := gorm.Open(postgres.Open(opts.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := db.AutoMigrate(
		&catalog.Category{},
		&catalog.Product{},
		&catalog.Order{},
		&catalog.OrderItem{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	log.Info("Connected to PostgreSQL", logger.Fields{
		"max_open_conns": opts.MaxOpenConns,
	})
	return &Gorm{db: db, logger: log}, nil
}

func (g *Gorm) Products() catalog.ProductStore     { return &gormProducts{db: g.db} }
func (g *Gorm) Categories() catalog.CategoryStore  { return &gormCategories{db: g.db} }
func (g *Gorm) Orders() catalog.OrderStore         { return &gormOrders{db: g.db} }
func (g *Gorm) OrderItems() catalog.OrderItemStore { return &gormItems{db: g.db} }

// InTx runs fn in one database transaction; any error rolls back every write.
// GORM turns nested calls into savepoints, so joining a surrounding
// transaction is safe.
func (g *Gorm) InTx(ctx context.Context, fn func(tx catalog.Stores) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Gorm{db: tx, logger: g.logger})
	})
}

// Ping checks database connectivity.
func (g *Gorm) Ping(ctx context.Context) error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return catalog.StorageError("store.Ping", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return catalog.StorageError("store.Ping", err)
	}
	return nil
}

// Close closes the connection pool.
func (g *Gorm) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// translate maps driver errors into the catalog taxonomy.
func translate(op, kind string, id int64, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return catalog.NotFound(op, kind, id)
	}
	return catalog.StorageError(op, err)
}
