package analytics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDistributeEmpty(t *testing.T) {
	require.Nil(t, Distribute(nil))
}

func TestDistributeZeroTotal(t *testing.T) {
	out := Distribute([]CategoryCount{{Category: "BCG", Count: 0}})
	require.Len(t, out, 1)
	require.Equal(t, 0.0, out[0].Percentage)
}

func TestDistributePercentagesSumToHundred(t *testing.T) {
	cases := [][]CategoryCount{
		{{"BCG", 1}, {"Polio", 1}, {"MMR", 1}},
		{{"BCG", 1}, {"Polio", 2}, {"MMR", 4}},
		{{"A", 7}, {"B", 13}, {"C", 29}, {"D", 3}, {"E", 1}},
		{{"solo", 42}},
	}
	for _, counts := range cases {
		out := Distribute(counts)
		var sum float64
		for _, s := range out {
			sum += s.Percentage
		}
		require.InDelta(t, 100.0, sum, 1e-9, "counts %v", counts)
	}
}

func TestDistributeThirds(t *testing.T) {
	out := Distribute([]CategoryCount{{"A", 1}, {"B", 1}, {"C", 1}})
	require.Len(t, out, 3)
	// One slice takes the leftover tenth; ties resolve to the smallest
	// category name so the result is deterministic.
	require.Equal(t, "A", out[0].Category)
	require.Equal(t, 33.4, out[0].Percentage)
	require.Equal(t, 33.3, out[1].Percentage)
	require.Equal(t, 33.3, out[2].Percentage)
}

func TestDistributeOrdering(t *testing.T) {
	out := Distribute([]CategoryCount{{"Polio", 2}, {"BCG", 5}, {"MMR", 2}})
	require.Equal(t, "BCG", out[0].Category)
	require.Equal(t, "MMR", out[1].Category)
	require.Equal(t, "Polio", out[2].Category)
}
