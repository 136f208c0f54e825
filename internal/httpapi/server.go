// Package httpapi exposes the catalog services over HTTP/JSON. Routes mirror
// the service operations one-to-one; handlers parse, delegate, and translate
// domain errors to status codes. No business logic lives here.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/oranba/product-catalog/internal/cache"
	"github.com/oranba/product-catalog/internal/catalog"
	"github.com/oranba/product-catalog/internal/category"
	"github.com/oranba/product-catalog/internal/order"
	"github.com/oranba/product-catalog/internal/product"
	"github.com/oranba/product-catalog/pkg/logger"
)

// Server holds the wired services and builds the router.
type Server struct {
	products   *product.Service
	categories *category.Service
	orders     *order.Service

	stores catalog.Stores
	cache  cache.Store
	logger logger.Logger

	// lowStockThreshold is the default for the low-inventory listing when
	// the request carries no threshold parameter.
	lowStockThreshold int

	started time.Time
}

// Options collects the server's collaborators.
type Options struct {
	Products   *product.Service
	Categories *category.Service
	Orders     *order.Service
	Stores     catalog.Stores
	Cache      cache.Store
	Logger     logger.Logger

	LowStockThreshold int
}

// NewServer wires the HTTP surface.
func NewServer(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logger.NoOp{}
	}
	threshold := opts.LowStockThreshold
	if threshold <= 0 {
		threshold = 10
	}
	return &Server{
		products:          opts.Products,
		categories:        opts.Categories,
		orders:            opts.Orders,
		stores:            opts.Stores,
		cache:             opts.Cache,
		logger:            log,
		lowStockThreshold: threshold,
		started:           time.Now(),
	}
}

// Router builds the chi router with all API routes mounted.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", s.handleListProducts)
			r.Post("/", s.handleCreateProduct)
			r.Get("/low-inventory", s.handleLowInventory)
			r.Get("/category/{categoryId}", s.handleProductsByCategory)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetProduct)
				r.Put("/", s.handleUpdateProduct)
				r.Delete("/", s.handleDeleteProduct)
				r.Put("/inventory", s.handleAdjustInventory)
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.handleListCategories)
			r.Post("/", s.handleCreateCategory)
			r.Get("/root", s.handleRootCategories)
			r.Get("/hierarchy", s.handleCategoryHierarchy)
			r.Get("/parent/{parentId}", s.handleSubcategories)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetCategory)
				r.Put("/", s.handleUpdateCategory)
				r.Delete("/", s.handleDeleteCategory)
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", s.handleListOrders)
			r.Post("/", s.handleCreateOrder)
			r.Get("/metrics", s.handleOrderMetrics)
			r.Get("/date-range", s.handleOrdersInDateRange)
			r.Get("/customer/{customerId}", s.handleOrdersByCustomer)
			r.Get("/status/{status}", s.handleOrdersByStatus)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetOrder)
				r.Put("/status", s.handleUpdateOrderStatus)
			})
		})
	})

	return r
}

// requestLogger logs each request with its status and latency.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("Request handled", logger.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start),
			"request_id": middleware.GetReqID(r.Context()),
		})
	})
}

// handleStatus reports service health: the store and, when configured, the
// cache are pinged with a short deadline.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{
		"service": "UP",
		"uptime":  time.Since(s.started).Round(time.Second).String(),
	}
	code := http.StatusOK

	if err := s.stores.Ping(ctx); err != nil {
		status["database"] = "DOWN"
		code = http.StatusServiceUnavailable
	} else {
		status["database"] = "UP"
	}

	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			status["cache"] = "DOWN"
		} else {
			status["cache"] = "UP"
		}
	}

	writeJSON(w, code, status)
}
