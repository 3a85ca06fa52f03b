package analytics

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/clinistock/clinistock/internal/catalog"
	"github.com/clinistock/clinistock/internal/clock"
	"github.com/clinistock/clinistock/internal/shared"
)

// Service derives read-only reporting views from the batch and usage
// ledgers. Nothing here mutates state; results are cached with explicit
// invalidation tied to ledger mutation events.
type Service struct {
	repo  SnapshotPort
	cache *Cache
	clk   clock.Clock
	group singleflight.Group
}

// NewService builds Service. cache may be nil, in which case every query
// recomputes from the snapshot.
func NewService(repo SnapshotPort, cache *Cache, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.System{}
	}
	return &Service{repo: repo, cache: cache, clk: clk}
}

// CategoryDistribution reports how current batches spread over categories,
// optionally narrowed to one item kind. Percentages sum to 100.
func (s *Service) CategoryDistribution(ctx context.Context, kind catalog.Kind) ([]CategorySlice, error) {
	if kind != "" && !kind.Valid() {
		return nil, shared.NewValidationError("kind", "must be VACCINE, MEDICATION or SUPPLY")
	}
	loader := func(ctx context.Context) (interface{}, error) {
		counts, err := s.repo.BatchCategoryCounts(ctx, kind)
		if err != nil {
			return nil, err
		}
		return Distribute(counts), nil
	}
	var slices []CategorySlice
	if err := s.fetch(ctx, keyDistribution(string(kind)), &slices, loader); err != nil {
		return nil, err
	}
	return slices, nil
}

// TopUsage ranks items by total quantity used inside the window.
func (s *Service) TopUsage(ctx context.Context, n int, from, to time.Time) ([]UsageTotal, error) {
	if n <= 0 {
		return nil, shared.NewValidationError("n", "must be > 0")
	}
	if to.Before(from) {
		return nil, shared.NewValidationError("window", "end must not precede start")
	}
	loader := func(ctx context.Context) (interface{}, error) {
		totals, err := s.repo.UsageTotals(ctx, clock.DateOf(from), clock.DateOf(to))
		if err != nil {
			return nil, err
		}
		return RankTopUsage(totals, n), nil
	}
	var ranked []UsageTotal
	if err := s.fetch(ctx, keyTopUsage(n, from, to), &ranked, loader); err != nil {
		return nil, err
	}
	return ranked, nil
}

// Trend returns the fixed-length usage series for the bucket kind, anchored
// at the provider clock's current date.
func (s *Service) Trend(ctx context.Context, bucket Bucket) ([]TrendPoint, error) {
	ref := s.clk.Now()
	from, to, err := TrendWindow(bucket, ref)
	if err != nil {
		return nil, err
	}
	loader := func(ctx context.Context) (interface{}, error) {
		counts, err := s.repo.UsageCountsByDate(ctx, from, to)
		if err != nil {
			return nil, err
		}
		return BuildTrend(bucket, ref, counts)
	}
	var points []TrendPoint
	if err := s.fetch(ctx, keyTrend(bucket, clock.DateOf(ref)), &points, loader); err != nil {
		return nil, err
	}
	return points, nil
}

// fetch funnels concurrent identical queries through singleflight before
// consulting the versioned cache.
func (s *Service) fetch(ctx context.Context, keyBase string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	key, err := s.cache.BuildKey(ctx, keyBase)
	if err != nil {
		return err
	}
	_, err, _ = s.group.Do(key, func() (interface{}, error) {
		return nil, s.cache.FetchJSON(ctx, key, dest, loader)
	})
	return err
}
