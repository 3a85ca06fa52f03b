package catalog

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinistock/clinistock/internal/shared"
)

// Repository persists catalog items in PostgreSQL.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Item, int, error)
	Get(ctx context.Context, id int64) (Item, error)
	Create(ctx context.Context, item Item) (Item, error)
	Update(ctx context.Context, id int64, item Item) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the pgx-backed Repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const itemColumns = `id, code, name, kind, category, unit, minimum_stock, unit_cost, manufacturer, dosage_form, storage_temp, is_active, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Item, int, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM inventory_items WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	clause := func(cond string, value interface{}) {
		argCount++
		frag := ` AND ` + cond + `$` + strconv.Itoa(argCount)
		query += frag
		countQuery += frag
		args = append(args, value)
	}

	if filters.Kind != "" {
		clause(`kind = `, string(filters.Kind))
	}
	if filters.Category != "" {
		clause(`category = `, filters.Category)
	}
	if filters.Search != "" {
		argCount++
		frag := ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR code ILIKE $` + strconv.Itoa(argCount) + `)`
		query += frag
		countQuery += frag
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.IsActive != nil {
		clause(`is_active = `, *filters.IsActive)
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY name ASC`
	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)
		offset := (filters.Page - 1) * filters.Limit
		if offset < 0 {
			offset = 0
		}
		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		args = append(args, offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	return items, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Item, error) {
	row := r.db.QueryRow(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE id = $1`, id)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, shared.NewNotFoundError("item", strconv.FormatInt(id, 10))
		}
		return Item{}, err
	}
	return item, nil
}

func (r *repository) Create(ctx context.Context, item Item) (Item, error) {
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, `
		INSERT INTO inventory_items (code, name, kind, category, unit, minimum_stock, unit_cost, manufacturer, dosage_form, storage_temp, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
		RETURNING id`,
		item.Code, item.Name, string(item.Kind), item.Category, item.Unit, item.MinimumStock, item.UnitCost,
		item.Manufacturer, item.DosageForm, item.StorageTemp, item.IsActive, now,
	).Scan(&item.ID)
	if err != nil {
		return Item{}, err
	}
	item.CreatedAt = now
	item.UpdatedAt = now
	return item, nil
}

func (r *repository) Update(ctx context.Context, id int64, item Item) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE inventory_items
		SET code=$2, name=$3, kind=$4, category=$5, unit=$6, minimum_stock=$7, unit_cost=$8,
		    manufacturer=$9, dosage_form=$10, storage_temp=$11, is_active=$12, updated_at=NOW()
		WHERE id=$1`,
		id, item.Code, item.Name, string(item.Kind), item.Category, item.Unit, item.MinimumStock,
		item.UnitCost, item.Manufacturer, item.DosageForm, item.StorageTemp, item.IsActive,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.NewNotFoundError("item", strconv.FormatInt(id, 10))
	}
	return nil
}

func scanItem(row pgx.Row) (Item, error) {
	var item Item
	var kind string
	err := row.Scan(&item.ID, &item.Code, &item.Name, &kind, &item.Category, &item.Unit,
		&item.MinimumStock, &item.UnitCost, &item.Manufacturer, &item.DosageForm,
		&item.StorageTemp, &item.IsActive, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return Item{}, err
	}
	item.Kind = Kind(kind)
	return item, nil
}
