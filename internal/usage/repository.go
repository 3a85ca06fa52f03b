package usage

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinistock/clinistock/internal/inventory"
	"github.com/clinistock/clinistock/internal/platform/db"
)

// RepositoryPort abstracts usage ledger persistence.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListEntries(ctx context.Context, filter ListFilter) ([]Entry, error)
}

// TxRepository exposes the writes of one usage transaction. Ledger returns a
// batch ledger view bound to the same database transaction so debits and the
// entry they belong to commit or roll back together.
type TxRepository interface {
	InsertEntry(ctx context.Context, e Entry) (int64, error)
	InsertLine(ctx context.Context, entryID int64, line Line) (int64, error)
	InsertAllocations(ctx context.Context, lineID int64, allocs []inventory.Allocation) error
	Ledger() inventory.TxRepository
}

// Repository persists usage entries in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type txRepo struct {
	tx     pgx.Tx
	ledger inventory.TxRepository
}

// WithTx executes the callback inside a repeatable-read transaction shared
// with the batch ledger.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx, ledger: inventory.NewTxLedger(tx)})
	})
}

func (r *txRepo) Ledger() inventory.TxRepository { return r.ledger }

func (r *txRepo) InsertEntry(ctx context.Context, e Entry) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `
		INSERT INTO usage_entries (code, usage_date, notes, recorded_at, recorded_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		e.Code, e.UsageDate, e.Notes, e.RecordedAt, e.RecordedBy,
	).Scan(&id)
	return id, err
}

func (r *txRepo) InsertLine(ctx context.Context, entryID int64, line Line) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `
		INSERT INTO usage_lines (entry_id, item_id, quantity, batch_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		entryID, line.ItemID, line.Quantity, line.BatchID,
	).Scan(&id)
	return id, err
}

func (r *txRepo) InsertAllocations(ctx context.Context, lineID int64, allocs []inventory.Allocation) error {
	for _, a := range allocs {
		_, err := r.tx.Exec(ctx, `
			INSERT INTO usage_allocations (line_id, batch_id, quantity)
			VALUES ($1, $2, $3)`,
			lineID, a.BatchID, a.Quantity,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// ListEntries returns entries in the window newest first, lines included.
func (r *Repository) ListEntries(ctx context.Context, filter ListFilter) ([]Entry, error) {
	query := `SELECT id, code, usage_date, notes, recorded_at, recorded_by FROM usage_entries WHERE 1=1`
	args := []interface{}{}
	argCount := 0
	clause := func(cond string, value interface{}) {
		argCount++
		query += ` AND ` + cond + `$` + strconv.Itoa(argCount)
		args = append(args, value)
	}
	if !filter.From.IsZero() {
		clause(`usage_date >= `, filter.From)
	}
	if !filter.To.IsZero() {
		clause(`usage_date <= `, filter.To)
	}
	if filter.ItemID != 0 {
		clause(`id IN (SELECT entry_id FROM usage_lines WHERE item_id = `, filter.ItemID)
		query += `)`
	}
	query += ` ORDER BY usage_date DESC, id DESC`
	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	argCount++
	query += ` LIMIT $` + strconv.Itoa(argCount)
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	index := map[int64]int{}
	var ids []int64
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Code, &e.UsageDate, &e.Notes, &e.RecordedAt, &e.RecordedBy); err != nil {
			return nil, err
		}
		index[e.ID] = len(entries)
		entries = append(entries, e)
		ids = append(ids, e.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return entries, nil
	}

	lineRows, err := r.pool.Query(ctx, `
		SELECT id, entry_id, item_id, quantity, batch_id
		FROM usage_lines WHERE entry_id = ANY($1) ORDER BY id ASC`, ids)
	if err != nil {
		return nil, err
	}
	defer lineRows.Close()
	for lineRows.Next() {
		var line Line
		var entryID int64
		if err := lineRows.Scan(&line.ID, &entryID, &line.ItemID, &line.Quantity, &line.BatchID); err != nil {
			return nil, err
		}
		i := index[entryID]
		entries[i].Lines = append(entries[i].Lines, line)
	}
	return entries, lineRows.Err()
}
