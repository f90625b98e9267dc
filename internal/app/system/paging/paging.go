// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultLimit is the list size when ?limit= is absent.
const DefaultLimit = 100

// MaxLimit caps ?limit= on every list endpoint.
const MaxLimit = 500

var defaultLimit atomic.Int64

func init() { defaultLimit.Store(DefaultLimit) }

// SetDefaultLimit changes the list size used when ?limit= is absent.
// Values outside 1..MaxLimit are ignored.
func SetDefaultLimit(n int) {
	if n > 0 && n <= MaxLimit {
		defaultLimit.Store(int64(n))
	}
}

// Page is a limit/offset window.
type Page struct {
	Limit  int64 `json:"limit"`
	Offset int64 `json:"offset"`
}

// Parse reads ?limit= and ?offset=. Missing or invalid values fall back to
// the default limit and offset 0; limit is capped at MaxLimit.
func Parse(r *http.Request) Page {
	p := Page{Limit: defaultLimit.Load()}
	if n, err := strconv.ParseInt(query.Get(r, "limit"), 10, 64); err == nil && n > 0 {
		p.Limit = min(n, MaxLimit)
	}
	if n, err := strconv.ParseInt(query.Get(r, "offset"), 10, 64); err == nil && n > 0 {
		p.Offset = n
	}
	return p
}

// Default returns the first page at the default limit.
func Default() Page { return Page{Limit: defaultLimit.Load()} }

// Apply sets skip and limit on a Find.
func (p Page) Apply(find *options.FindOptions) *options.FindOptions {
	if p.Limit <= 0 {
		p.Limit = defaultLimit.Load()
	}
	find.SetLimit(p.Limit)
	if p.Offset > 0 {
		find.SetSkip(p.Offset)
	}
	return find
}
