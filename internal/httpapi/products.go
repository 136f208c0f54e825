package httpapi

import (
	"net/http"

	"github.com/oranba/product-catalog/internal/catalog"
)

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	page, err := pageRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var filter catalog.ProductFilter
	filter.Name = r.URL.Query().Get("name")
	if filter.CategoryID, err = queryInt64(r, "categoryId"); err != nil {
		writeError(w, err)
		return
	}
	if filter.MinPrice, err = queryDecimal(r, "minPrice"); err != nil {
		writeError(w, err)
		return
	}
	if filter.MaxPrice, err = queryDecimal(r, "maxPrice"); err != nil {
		writeError(w, err)
		return
	}

	result, err := s.products.List(r.Context(), filter, page)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := s.products.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var in catalog.Product
	if err := decodeBody(r, catalog.KindProduct, &in); err != nil {
		writeError(w, err)
		return
	}
	created, err := s.products.Create(r.Context(), &in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var in catalog.Product
	if err := decodeBody(r, catalog.KindProduct, &in); err != nil {
		writeError(w, err)
		return
	}
	updated, err := s.products.Update(r.Context(), id, &in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.products.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleProductsByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := pathID(r, "categoryId")
	if err != nil {
		writeError(w, err)
		return
	}
	page, err := pageRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := s.products.ByCategory(r.Context(), categoryID, page)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleAdjustInventory applies a signed quantityChange to a product's
// inventory. A debit past zero is rejected in full with 409.
func (s *Server) handleAdjustInventory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	raw := r.URL.Query().Get("quantityChange")
	if raw == "" {
		writeError(w, catalog.InvalidArgument("http.parse", catalog.KindProduct,
			"quantityChange is required"))
		return
	}
	delta, err := queryInt(r, "quantityChange", 0)
	if err != nil {
		writeError(w, err)
		return
	}
	updated, err := s.products.AdjustInventory(r.Context(), id, delta)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleLowInventory(w http.ResponseWriter, r *http.Request) {
	threshold, err := queryInt(r, "threshold", s.lowStockThreshold)
	if err != nil {
		writeError(w, err)
		return
	}
	low, err := s.products.LowInventory(r.Context(), threshold)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, low)
}
