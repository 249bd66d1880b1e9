// Package view derives presentation values from raw store slices: filtered
// and sorted order sequences, aggregate totals, URL query mapping and
// currency formatting. Everything here is a pure computation over its inputs;
// no rendering concern leaks in.
package view

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/lisenok-cargo/cargomanager/internal/models/order"
	"github.com/shopspring/decimal"
)

// StatusAny matches every order status in a Filter.
const StatusAny order.Status = "all"

// Sort selects the ordering of a filtered list.
type Sort string

const (
	SortNone       Sort = ""
	SortDateAsc    Sort = "date-asc"
	SortDateDesc   Sort = "date-desc"
	SortAmountAsc  Sort = "amount-asc"
	SortAmountDesc Sort = "amount-desc"
)

// Filter describes one projection of the order list.
type Filter struct {
	// Search keeps orders whose id, name or client name contains the
	// term, case-insensitively. Empty means no text filtering.
	Search string
	// Status keeps orders in exactly this state; StatusAny keeps all.
	Status order.Status
	// Sort orders the remainder; an unrecognized value keeps the
	// incoming order.
	Sort Sort
}

// Apply computes the filtered, stably sorted sequence. The input is never
// mutated; the result is always a fresh slice.
func Apply(orders []order.Order, f Filter) []order.Order {
	result := make([]order.Order, len(orders))
	copy(result, orders)

	if f.Search != "" {
		term := strings.ToLower(f.Search)
		kept := result[:0]
		for _, o := range result {
			if strings.Contains(strconv.Itoa(o.ID), term) ||
				strings.Contains(strings.ToLower(o.Name), term) ||
				(o.ClientName != "" && strings.Contains(strings.ToLower(o.ClientName), term)) {
				kept = append(kept, o)
			}
		}
		result = kept
	}

	if f.Status != "" && f.Status != StatusAny {
		kept := result[:0]
		for _, o := range result {
			if o.Status == f.Status {
				kept = append(kept, o)
			}
		}
		result = kept
	}

	switch f.Sort {
	case SortDateAsc:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].CreatedDate.Before(result[j].CreatedDate)
		})
	case SortDateDesc:
		sort.SliceStable(result, func(i, j int) bool {
			return result[j].CreatedDate.Before(result[i].CreatedDate)
		})
	case SortAmountAsc:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].TotalCNY.LessThan(result[j].TotalCNY)
		})
	case SortAmountDesc:
		sort.SliceStable(result, func(i, j int) bool {
			return result[j].TotalCNY.LessThan(result[i].TotalCNY)
		})
	}

	return result
}

// Projector memoizes Apply: the cached result is reused while both the
// filter and the order slice stay the same. Purely a performance measure;
// recomputing is always correct.
type Projector struct {
	mu         sync.Mutex
	haveLast   bool
	lastOrders []order.Order
	lastFilter Filter
	lastResult []order.Order
}

// Apply returns the memoized projection, recomputing on any input change.
func (p *Projector) Apply(orders []order.Order, f Filter) []order.Order {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.haveLast && f == p.lastFilter && sameSlice(orders, p.lastOrders) {
		return p.lastResult
	}

	p.haveLast = true
	p.lastOrders = orders
	p.lastFilter = f
	p.lastResult = Apply(orders, f)
	return p.lastResult
}

// sameSlice reports whether both slices share length and backing array.
func sameSlice(a, b []order.Order) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}

// StatusFromQuery maps the orders route query string onto a status filter:
// status=active selects in-progress orders, status=done delivered ones,
// anything else all of them. One-directional: the URL always wins over a
// manually chosen filter.
func StatusFromQuery(rawQuery string) order.Status {
	params, err := url.ParseQuery(rawQuery)
	if err != nil {
		return StatusAny
	}

	switch params.Get("status") {
	case "active":
		return order.INPROGRESS
	case "done":
		return order.DELIVERED
	default:
		return StatusAny
	}
}

// Summary aggregates the full, unfiltered order list.
type Summary struct {
	ByStatus map[order.Status]int
	TotalCNY decimal.Decimal
	Total    int
}

// Summarize computes order counts and the CNY grand total.
func Summarize(orders []order.Order) Summary {
	s := Summary{
		Total:    len(orders),
		ByStatus: make(map[order.Status]int),
	}

	for _, o := range orders {
		s.ByStatus[o.Status]++
		s.TotalCNY = s.TotalCNY.Add(o.TotalCNY)
	}

	return s
}
