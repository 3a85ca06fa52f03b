package analytics

import "sort"

// UsageTotal aggregates one item's consumption inside a window.
type UsageTotal struct {
	ItemID        int64 `json:"item_id"`
	TotalQuantity int64 `json:"total_quantity"`
	EventCount    int64 `json:"event_count"`
}

// RankTopUsage sorts totals by quantity descending and returns the first n.
// Equal totals are ordered by item id ascending so rankings are stable.
func RankTopUsage(totals []UsageTotal, n int) []UsageTotal {
	ranked := make([]UsageTotal, len(totals))
	copy(ranked, totals)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].TotalQuantity != ranked[j].TotalQuantity {
			return ranked[i].TotalQuantity > ranked[j].TotalQuantity
		}
		return ranked[i].ItemID < ranked[j].ItemID
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
