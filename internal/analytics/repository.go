package analytics

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinistock/clinistock/internal/catalog"
)

// SnapshotPort loads the raw rows the aggregator folds into reporting views.
type SnapshotPort interface {
	BatchCategoryCounts(ctx context.Context, kind catalog.Kind) ([]CategoryCount, error)
	UsageTotals(ctx context.Context, from, to time.Time) ([]UsageTotal, error)
	UsageCountsByDate(ctx context.Context, from, to time.Time) ([]DateCount, error)
}

// Repository reads snapshots from PostgreSQL. Disposed batches never appear:
// disposal deletes the batch row, so the live tables are the snapshot.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) BatchCategoryCounts(ctx context.Context, kind catalog.Kind) ([]CategoryCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT i.category, COUNT(*)
		FROM batches b
		JOIN inventory_items i ON i.id = b.item_id
		WHERE $1 = '' OR i.kind = $1
		GROUP BY i.category
		ORDER BY COUNT(*) DESC, i.category ASC`, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var counts []CategoryCount
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (r *Repository) UsageTotals(ctx context.Context, from, to time.Time) ([]UsageTotal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT l.item_id, COALESCE(SUM(l.quantity), 0), COUNT(DISTINCT l.entry_id)
		FROM usage_lines l
		JOIN usage_entries e ON e.id = l.entry_id
		WHERE e.usage_date >= $1 AND e.usage_date <= $2
		GROUP BY l.item_id`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var totals []UsageTotal
	for rows.Next() {
		var t UsageTotal
		if err := rows.Scan(&t.ItemID, &t.TotalQuantity, &t.EventCount); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

func (r *Repository) UsageCountsByDate(ctx context.Context, from, to time.Time) ([]DateCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT usage_date, COUNT(*)
		FROM usage_entries
		WHERE usage_date >= $1 AND usage_date <= $2
		GROUP BY usage_date
		ORDER BY usage_date ASC`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var counts []DateCount
	for rows.Next() {
		var c DateCount
		if err := rows.Scan(&c.Date, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
