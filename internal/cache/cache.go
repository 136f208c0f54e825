// Package cache provides the explicit query cache used by the catalog read
// paths: a string-valued store with TTLs, deterministic keys derived from the
// operation and its arguments, and prefix-based invalidation per cache region.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Cache regions. Writes to an entity family evict the matching region(s).
const (
	RegionProducts       = "products"
	RegionProductDetails = "productDetails"
	RegionCategories     = "categories"
)

// Store is the cache backend contract. Get reports a miss with ok=false;
// backend failures surface as errors so callers can fall through to the
// source of truth.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// DeletePrefix removes every key beginning with prefix. Used to evict
	// a whole region, e.g. DeletePrefix(ctx, "products:").
	DeletePrefix(ctx context.Context, prefix string) error
	Ping(ctx context.Context) error
	Close() error
}

// Key builds a deterministic cache key from a region, an operation name, and
// the operation's normalized arguments: "<region>:<op>:<arg1>:<arg2>...".
// Nil pointers normalize to "-"; string arguments are escaped so the joiner
// and the nil marker can never be forged, and two distinct argument lists can
// never alias to one key.
func Key(region, op string, args ...interface{}) string {
	parts := make([]string, 0, len(args)+2)
	parts = append(parts, region, op)
	for _, a := range args {
		parts = append(parts, normalizeArg(a))
	}
	return strings.Join(parts, ":")
}

// RegionPrefix is the DeletePrefix argument covering a whole region.
func RegionPrefix(region string) string { return region + ":" }

// argEscaper keeps string arguments injective in key position: ":" and "-"
// are reserved for the joiner and the nil marker.
var argEscaper = strings.NewReplacer("%", "%25", ":", "%3A", "-", "%2D")

func normalizeArg(a interface{}) string {
	switch v := a.(type) {
	case nil:
		return "-"
	case *int64:
		if v == nil {
			return "-"
		}
		return fmt.Sprintf("%d", *v)
	case *decimal.Decimal:
		if v == nil {
			return "-"
		}
		return v.String()
	case decimal.Decimal:
		return v.String()
	case *time.Time:
		if v == nil {
			return "-"
		}
		return v.UTC().Format(time.RFC3339)
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case string:
		return argEscaper.Replace(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
