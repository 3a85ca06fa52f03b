package analytics

import (
	"context"
	"log/slog"

	"github.com/clinistock/clinistock/internal/inventory"
)

// CacheBumper invalidates cached analytics whenever the batch ledger
// mutates. It satisfies inventory.IntegrationHandler.
type CacheBumper struct {
	cache  *Cache
	logger *slog.Logger
}

func NewCacheBumper(cache *Cache, logger *slog.Logger) *CacheBumper {
	if logger == nil {
		logger = slog.Default()
	}
	return &CacheBumper{cache: cache, logger: logger}
}

func (b *CacheBumper) HandleBatchMutated(ctx context.Context, evt inventory.BatchMutatedEvent) error {
	if err := b.cache.Bump(ctx); err != nil {
		b.logger.Warn("analytics cache bump failed",
			slog.String("mutation", evt.Kind),
			slog.Int64("batch_id", evt.BatchID),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}
