package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/oranba/product-catalog/internal/catalog"
)

const defaultPageSize = catalog.DefaultPageSize

// dateLayouts are accepted for date-range parameters, most specific first.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, catalog.InvalidArgument("http.parse", catalog.KindStorage,
			"invalid %s %q", name, raw)
	}
	return id, nil
}

func pageRequest(r *http.Request) (catalog.PageRequest, error) {
	page := catalog.PageRequest{Size: defaultPageSize}
	q := r.URL.Query()

	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > catalog.MaxPage {
			return page, catalog.InvalidArgument("http.parse", catalog.KindStorage,
				"invalid page %q", raw)
		}
		page.Page = n
	}
	if raw := q.Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > catalog.MaxPageSize {
			return page, catalog.InvalidArgument("http.parse", catalog.KindStorage,
				"invalid size %q", raw)
		}
		page.Size = n
	}
	return page, nil
}

func queryInt64(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, catalog.InvalidArgument("http.parse", catalog.KindStorage,
			"invalid %s %q", name, raw)
	}
	return &n, nil
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, catalog.InvalidArgument("http.parse", catalog.KindStorage,
			"invalid %s %q", name, raw)
	}
	return n, nil
}

func queryDecimal(r *http.Request, name string) (*decimal.Decimal, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, catalog.InvalidArgument("http.parse", catalog.KindStorage,
			"invalid %s %q", name, raw)
	}
	return &d, nil
}

func queryTime(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, catalog.InvalidArgument("http.parse", catalog.KindStorage,
		"invalid %s %q, expected an RFC 3339 timestamp", name, raw)
}
