package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestProviderOverride(t *testing.T) {
	base := Fixed(time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC))
	p := NewProvider(base, nil, nil)
	ctx := context.Background()

	require.Equal(t, time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC), p.Now())

	sim := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	p.Set(ctx, sim)
	require.Equal(t, sim, p.Now())
	got, ok := p.Simulated()
	require.True(t, ok)
	require.Equal(t, sim, got)

	p.Clear(ctx)
	_, ok = p.Simulated()
	require.False(t, ok)
	require.Equal(t, base.Now(), p.Now())
}

func TestToday(t *testing.T) {
	p := NewProvider(Fixed(time.Date(2025, 3, 10, 23, 59, 59, 0, time.UTC)), nil, nil)
	require.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), p.Today())
}

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("plus7", 7*3600)
	local := time.Date(2025, 3, 11, 2, 0, 0, 0, loc)
	require.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), DateOf(local))
}
