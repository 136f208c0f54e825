package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/oranba/product-catalog/internal/catalog"
)

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var in catalog.Order
	if err := decodeBody(r, catalog.KindOrder, &in); err != nil {
		writeError(w, err)
		return
	}
	created, err := s.orders.Create(r.Context(), &in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	o, err := s.orders.Find(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	page, err := pageRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var filter catalog.OrderFilter
	if filter.CustomerID, err = queryInt64(r, "customerId"); err != nil {
		writeError(w, err)
		return
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		st, err := catalog.ParseOrderStatus(raw)
		if err != nil {
			writeError(w, err)
			return
		}
		filter.Status = &st
	}
	if filter.CreatedFrom, err = queryTime(r, "startDate"); err != nil {
		writeError(w, err)
		return
	}
	if filter.CreatedTo, err = queryTime(r, "endDate"); err != nil {
		writeError(w, err)
		return
	}

	result, err := s.orders.List(r.Context(), filter, page)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type statusChange struct {
	Status string `json:"status"`
}

func (s *Server) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var in statusChange
	if err := decodeBody(r, catalog.KindOrder, &in); err != nil {
		writeError(w, err)
		return
	}
	next, err := catalog.ParseOrderStatus(in.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	updated, err := s.orders.UpdateStatus(r.Context(), id, next)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleOrdersByCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := pathID(r, "customerId")
	if err != nil {
		writeError(w, err)
		return
	}
	page, err := pageRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := s.orders.ByCustomer(r.Context(), customerID, page)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleOrdersByStatus(w http.ResponseWriter, r *http.Request) {
	page, err := pageRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := s.orders.ByStatus(r.Context(), chi.URLParam(r, "status"), page)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleOrdersInDateRange(w http.ResponseWriter, r *http.Request) {
	page, err := pageRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	from, err := queryTime(r, "startDate")
	if err != nil {
		writeError(w, err)
		return
	}
	to, err := queryTime(r, "endDate")
	if err != nil {
		writeError(w, err)
		return
	}
	if from == nil || to == nil {
		writeError(w, catalog.InvalidArgument("http.parse", catalog.KindOrder,
			"startDate and endDate are both required"))
		return
	}
	result, err := s.orders.InDateRange(r.Context(), *from, *to, page)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleOrderMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := s.orders.Metrics(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}
