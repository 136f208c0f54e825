package httpapi

import (
	"net/http"

	"github.com/oranba/product-catalog/internal/catalog"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	out, err := s.categories.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	c, err := s.categories.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var in catalog.Category
	if err := decodeBody(r, catalog.KindCategory, &in); err != nil {
		writeError(w, err)
		return
	}
	created, err := s.categories.Create(r.Context(), &in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var in catalog.Category
	if err := decodeBody(r, catalog.KindCategory, &in); err != nil {
		writeError(w, err)
		return
	}
	updated, err := s.categories.Update(r.Context(), id, &in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.categories.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSubcategories(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "parentId")
	if err != nil {
		writeError(w, err)
		return
	}
	out, err := s.categories.ByParent(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRootCategories(w http.ResponseWriter, r *http.Request) {
	out, err := s.categories.Roots(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCategoryHierarchy(w http.ResponseWriter, r *http.Request) {
	out, err := s.categories.Hierarchy(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
