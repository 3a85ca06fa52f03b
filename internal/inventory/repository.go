package inventory

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinistock/clinistock/internal/platform/db"
	"github.com/clinistock/clinistock/internal/shared"
)

// RepositoryPort abstracts ledger persistence for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetBatch(ctx context.Context, batchID int64) (Batch, error)
	ListByItem(ctx context.Context, itemID int64) ([]Batch, error)
	SumRemaining(ctx context.Context, itemID int64) (int64, error)
	ListExpiringBetween(ctx context.Context, from, to time.Time) ([]Batch, error)
	ListExpiredBefore(ctx context.Context, before time.Time) ([]Batch, error)
	ListDisposals(ctx context.Context, limit int) ([]DisposalRecord, error)
}

// TxRepository exposes the mutations that must run inside one transaction.
type TxRepository interface {
	GetBatchesForUpdate(ctx context.Context, itemID int64) ([]Batch, error)
	GetBatchForUpdate(ctx context.Context, batchID int64) (Batch, error)
	InsertBatch(ctx context.Context, b Batch) (int64, error)
	UpdateBatchRemaining(ctx context.Context, batchID, remaining int64) error
	DeleteBatch(ctx context.Context, batchID int64) error
	InsertDisposal(ctx context.Context, rec DisposalRecord) (int64, error)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository persists the batch ledger in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// NewTxLedger wraps an open pgx transaction so other ledgers (usage) can
// join the batch ledger inside the same transaction boundary.
func NewTxLedger(tx pgx.Tx) TxRepository {
	return &txRepo{q: tx}
}

type txRepo struct {
	q querier
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{q: tx})
	})
}

const batchColumns = `id, item_id, batch_number, lot_number, qty_received, qty_remaining, expiry_date, received_at, unit_cost, supplier, created_at`

func scanBatch(row pgx.Row) (Batch, error) {
	var b Batch
	err := row.Scan(&b.ID, &b.ItemID, &b.BatchNumber, &b.LotNumber, &b.QtyReceived,
		&b.QtyRemaining, &b.ExpiryDate, &b.ReceivedAt, &b.UnitCost, &b.Supplier, &b.CreatedAt)
	return b, err
}

func collectBatches(rows pgx.Rows) ([]Batch, error) {
	defer rows.Close()
	var batches []Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

func (r *Repository) GetBatch(ctx context.Context, batchID int64) (Batch, error) {
	return getBatch(ctx, r.pool, batchID, "")
}

func getBatch(ctx context.Context, q querier, batchID int64, suffix string) (Batch, error) {
	b, err := scanBatch(q.QueryRow(ctx, `SELECT `+batchColumns+` FROM batches WHERE id = $1`+suffix, batchID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Batch{}, shared.NewNotFoundError("batch", strconv.FormatInt(batchID, 10))
		}
		return Batch{}, err
	}
	return b, nil
}

func (r *Repository) ListByItem(ctx context.Context, itemID int64) ([]Batch, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+batchColumns+` FROM batches WHERE item_id = $1 ORDER BY expiry_date ASC, id ASC`, itemID)
	if err != nil {
		return nil, err
	}
	return collectBatches(rows)
}

func (r *Repository) SumRemaining(ctx context.Context, itemID int64) (int64, error) {
	var sum int64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(qty_remaining), 0) FROM batches WHERE item_id = $1`, itemID).Scan(&sum)
	return sum, err
}

func (r *Repository) ListExpiringBetween(ctx context.Context, from, to time.Time) ([]Batch, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+batchColumns+` FROM batches WHERE expiry_date >= $1 AND expiry_date <= $2 ORDER BY expiry_date ASC, id ASC`, from, to)
	if err != nil {
		return nil, err
	}
	return collectBatches(rows)
}

func (r *Repository) ListExpiredBefore(ctx context.Context, before time.Time) ([]Batch, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+batchColumns+` FROM batches WHERE expiry_date < $1 ORDER BY expiry_date ASC, id ASC`, before)
	if err != nil {
		return nil, err
	}
	return collectBatches(rows)
}

func (r *Repository) ListDisposals(ctx context.Context, limit int) ([]DisposalRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, code, batch_id, item_id, batch_number, lot_number, qty_remaining, expiry_date, unit_cost, supplier, reason, disposed_at, disposed_by
		FROM disposal_records ORDER BY disposed_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []DisposalRecord
	for rows.Next() {
		var rec DisposalRecord
		if err := rows.Scan(&rec.ID, &rec.Code, &rec.BatchID, &rec.ItemID, &rec.BatchNumber,
			&rec.LotNumber, &rec.QtyRemaining, &rec.ExpiryDate, &rec.UnitCost, &rec.Supplier,
			&rec.Reason, &rec.DisposedAt, &rec.DisposedBy); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *txRepo) GetBatchesForUpdate(ctx context.Context, itemID int64) ([]Batch, error) {
	rows, err := r.q.Query(ctx, `SELECT `+batchColumns+` FROM batches WHERE item_id = $1 ORDER BY expiry_date ASC, id ASC FOR UPDATE`, itemID)
	if err != nil {
		return nil, err
	}
	return collectBatches(rows)
}

func (r *txRepo) GetBatchForUpdate(ctx context.Context, batchID int64) (Batch, error) {
	return getBatch(ctx, r.q, batchID, ` FOR UPDATE`)
}

func (r *txRepo) InsertBatch(ctx context.Context, b Batch) (int64, error) {
	var id int64
	err := r.q.QueryRow(ctx, `
		INSERT INTO batches (item_id, batch_number, lot_number, qty_received, qty_remaining, expiry_date, received_at, unit_cost, supplier, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		b.ItemID, b.BatchNumber, b.LotNumber, b.QtyReceived, b.QtyRemaining,
		b.ExpiryDate, b.ReceivedAt, b.UnitCost, b.Supplier, b.CreatedAt,
	).Scan(&id)
	return id, err
}

func (r *txRepo) UpdateBatchRemaining(ctx context.Context, batchID, remaining int64) error {
	tag, err := r.q.Exec(ctx, `UPDATE batches SET qty_remaining = $2 WHERE id = $1`, batchID, remaining)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.NewNotFoundError("batch", strconv.FormatInt(batchID, 10))
	}
	return nil
}

func (r *txRepo) DeleteBatch(ctx context.Context, batchID int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM batches WHERE id = $1`, batchID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.NewNotFoundError("batch", strconv.FormatInt(batchID, 10))
	}
	return nil
}

func (r *txRepo) InsertDisposal(ctx context.Context, rec DisposalRecord) (int64, error) {
	var id int64
	err := r.q.QueryRow(ctx, `
		INSERT INTO disposal_records (code, batch_id, item_id, batch_number, lot_number, qty_remaining, expiry_date, unit_cost, supplier, reason, disposed_at, disposed_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`,
		rec.Code, rec.BatchID, rec.ItemID, rec.BatchNumber, rec.LotNumber, rec.QtyRemaining,
		rec.ExpiryDate, rec.UnitCost, rec.Supplier, rec.Reason, rec.DisposedAt, rec.DisposedBy,
	).Scan(&id)
	return id, err
}
