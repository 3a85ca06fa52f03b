package catalog

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clinistock/clinistock/internal/shared"
)

type memoryRepo struct {
	items  map[int64]Item
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: make(map[int64]Item)}
}

func (r *memoryRepo) List(ctx context.Context, filters ListFilters) ([]Item, int, error) {
	var out []Item
	for _, item := range r.items {
		if filters.Kind != "" && item.Kind != filters.Kind {
			continue
		}
		out = append(out, item)
	}
	return out, len(out), nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Item, error) {
	item, ok := r.items[id]
	if !ok {
		return Item{}, shared.NewNotFoundError("item", strconv.FormatInt(id, 10))
	}
	return item, nil
}

func (r *memoryRepo) Create(ctx context.Context, item Item) (Item, error) {
	r.nextID++
	item.ID = r.nextID
	r.items[item.ID] = item
	return item, nil
}

func (r *memoryRepo) Update(ctx context.Context, id int64, item Item) error {
	if _, ok := r.items[id]; !ok {
		return shared.NewNotFoundError("item", strconv.FormatInt(id, 10))
	}
	item.ID = id
	r.items[id] = item
	return nil
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, Item{Name: "BCG", Kind: KindVaccine, Unit: "dose"})
	require.Error(t, err)
	require.True(t, shared.IsValidation(err))

	_, err = svc.Create(ctx, Item{Code: "VAC-BCG", Name: "BCG", Kind: "GADGET", Unit: "dose"})
	require.Error(t, err)

	_, err = svc.Create(ctx, Item{Code: "VAC-BCG", Name: "BCG", Kind: KindVaccine, Unit: "dose", MinimumStock: -1})
	require.Error(t, err)

	item, err := svc.Create(ctx, Item{Code: "VAC-BCG", Name: "BCG", Kind: KindVaccine, Unit: "dose", MinimumStock: 10, IsActive: true})
	require.NoError(t, err)
	require.NotZero(t, item.ID)
}

func TestGetUnknownItem(t *testing.T) {
	svc := NewService(newMemoryRepo())
	_, err := svc.Get(context.Background(), 42)
	require.True(t, shared.IsNotFound(err))
}
