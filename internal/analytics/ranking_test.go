package analytics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRankTopUsage(t *testing.T) {
	totals := []UsageTotal{
		{ItemID: 3, TotalQuantity: 10, EventCount: 2},
		{ItemID: 1, TotalQuantity: 25, EventCount: 5},
		{ItemID: 2, TotalQuantity: 25, EventCount: 3},
		{ItemID: 4, TotalQuantity: 1, EventCount: 1},
	}
	ranked := RankTopUsage(totals, 3)
	require.Len(t, ranked, 3)
	// Equal totals rank the lower item id first.
	require.Equal(t, int64(1), ranked[0].ItemID)
	require.Equal(t, int64(2), ranked[1].ItemID)
	require.Equal(t, int64(3), ranked[2].ItemID)
}

func TestRankTopUsageDoesNotMutateInput(t *testing.T) {
	totals := []UsageTotal{
		{ItemID: 1, TotalQuantity: 1},
		{ItemID: 2, TotalQuantity: 9},
	}
	_ = RankTopUsage(totals, 2)
	require.Equal(t, int64(1), totals[0].ItemID)
}

func TestRankTopUsageShortList(t *testing.T) {
	ranked := RankTopUsage([]UsageTotal{{ItemID: 7, TotalQuantity: 4}}, 10)
	require.Len(t, ranked, 1)
}
