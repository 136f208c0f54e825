package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/oranba/product-catalog/internal/catalog"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError translates the domain error taxonomy to HTTP status codes. The
// message reaches the client verbatim; domain errors carry no internals.
func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, catalog.ErrInvalidArgument),
		errors.Is(err, catalog.ErrInvalidTransition):
		code = http.StatusBadRequest
	case errors.Is(err, catalog.ErrInsufficientStock):
		code = http.StatusConflict
	case errors.Is(err, catalog.ErrStorageUnavailable):
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, errorBody{Error: err.Error()})
}

func decodeBody(r *http.Request, kind string, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return catalog.InvalidArgument("http.decode", kind,
			"malformed request body: %v", err)
	}
	return nil
}
