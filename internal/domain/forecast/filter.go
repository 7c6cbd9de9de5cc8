package forecast

import (
	"sort"

	"github.com/stocksense/backend/internal/domain/shared"
)

// Horizon selects the prediction window used for filtering and ranking.
type Horizon string

const (
	HorizonAll  Horizon = "all"
	Horizon7d   Horizon = "7d"
	Horizon30d  Horizon = "30d"
	Horizon60d  Horizon = "60d"
	Horizon180d Horizon = "180d"
)

// ParseHorizon validates a request-level filter value.
func ParseHorizon(s string) (Horizon, error) {
	switch Horizon(s) {
	case HorizonAll, Horizon7d, Horizon30d, Horizon60d, Horizon180d:
		return Horizon(s), nil
	case "":
		return HorizonAll, nil
	}
	return "", shared.NewDomainError("INVALID_INPUT", "unknown forecast horizon: "+s)
}

func needRestock(m MergedItem, h Horizon) bool {
	switch h {
	case Horizon7d:
		return m.NeedRestock7d
	case Horizon30d:
		return m.NeedRestock30d
	case Horizon60d:
		return m.NeedRestock60d
	case Horizon180d:
		return m.NeedRestock180d
	}
	return true
}

func restockQty(m MergedItem, h Horizon) float64 {
	switch h {
	case Horizon30d:
		return m.RestockQty30d
	case Horizon60d:
		return m.RestockQty60d
	case Horizon180d:
		return m.RestockQty180d
	}
	// 7d ranking is also used for the unfiltered view.
	return m.RestockQty7d
}

// FilterByHorizon keeps only items flagged for restock in the given
// window. HorizonAll passes everything through.
func FilterByHorizon(items []MergedItem, h Horizon) []MergedItem {
	if h == HorizonAll {
		return items
	}
	out := make([]MergedItem, 0, len(items))
	for _, m := range items {
		if needRestock(m, h) {
			out = append(out, m)
		}
	}
	return out
}

// SortByRestockQty orders items by descending restock quantity for the
// horizon, so the most urgent purchases surface first. Stable so equal
// quantities keep their merge order.
func SortByRestockQty(items []MergedItem, h Horizon) {
	sort.SliceStable(items, func(i, j int) bool {
		return restockQty(items[i], h) > restockQty(items[j], h)
	})
}

// Paginate slices a sorted view into one page. page is 1-based; an
// out-of-range page yields an empty slice with the totals intact.
func Paginate(items []MergedItem, page, limit int) (pageItems []MergedItem, totalItems, totalPages int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	totalItems = len(items)
	totalPages = (totalItems + limit - 1) / limit

	start := (page - 1) * limit
	if start >= totalItems {
		return []MergedItem{}, totalItems, totalPages
	}
	end := start + limit
	if end > totalItems {
		end = totalItems
	}
	return items[start:end], totalItems, totalPages
}
