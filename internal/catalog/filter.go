// Package catalog filters and orders product lists in memory.
package catalog

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/flicky/coffeebar-pos/internal/model"
)

type SortKey string

const (
	SortDefault   SortKey = "default"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortNameAsc   SortKey = "name_asc"
	SortNameDesc  SortKey = "name_desc"
)

// ParseSortKey maps unknown or empty values to SortDefault.
func ParseSortKey(s string) SortKey {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortPriceAsc, SortPriceDesc, SortNameAsc, SortNameDesc:
		return k
	default:
		return SortDefault
	}
}

// Matches reports whether query occurs in the product name, description or
// category name, ignoring case. An empty query matches everything.
func Matches(p model.Product, query string) bool {
	q := strings.ToLower(query)
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Description), q) ||
		strings.Contains(strings.ToLower(p.CategoryName), q)
}

// Apply returns a new slice with the matching products in the requested
// order. The input slice is left untouched.
func Apply(products []model.Product, query string, key SortKey) []model.Product {
	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if Matches(p, query) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, Less(key, out))
	return out
}

// Less returns the comparator for key over ps. Names compare by collation
// order without regard to case.
func Less(key SortKey, ps []model.Product) func(i, j int) bool {
	switch key {
	case SortPriceAsc:
		return func(i, j int) bool { return ps[i].Price.LessThan(ps[j].Price) }
	case SortPriceDesc:
		return func(i, j int) bool { return ps[i].Price.GreaterThan(ps[j].Price) }
	case SortNameAsc:
		c := newNameCollator()
		return func(i, j int) bool { return c.CompareString(ps[i].Name, ps[j].Name) < 0 }
	case SortNameDesc:
		c := newNameCollator()
		return func(i, j int) bool { return c.CompareString(ps[i].Name, ps[j].Name) > 0 }
	default:
		return func(i, j int) bool { return ps[i].ID < ps[j].ID }
	}
}

// A Collator is not safe for concurrent use, so each comparator gets its own.
func newNameCollator() *collate.Collator {
	return collate.New(language.Und, collate.IgnoreCase)
}

// Index resolves products by id.
type Index map[int64]model.Product

func NewIndex(products []model.Product) Index {
	idx := make(Index, len(products))
	for _, p := range products {
		idx[p.ID] = p
	}
	return idx
}

func (idx Index) Resolve(id int64) (model.Product, bool) {
	p, ok := idx[id]
	return p, ok
}
