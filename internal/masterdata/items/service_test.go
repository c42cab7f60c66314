package items

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-dms/meridian-dms/internal/masterdata/shared"
	"github.com/meridian-dms/meridian-dms/internal/platform/httpx"
)

type memoryItemRepo struct {
	items  map[int64]Item
	nextID int64
}

func newMemoryItemRepo() *memoryItemRepo {
	return &memoryItemRepo{items: make(map[int64]Item)}
}

func (r *memoryItemRepo) List(ctx context.Context, filters shared.ListFilters) ([]Item, int, error) {
	var out []Item
	for _, it := range r.items {
		out = append(out, it)
	}
	return out, len(out), nil
}

func (r *memoryItemRepo) Get(ctx context.Context, id int64) (Item, error) {
	it, ok := r.items[id]
	if !ok {
		return Item{}, httpx.ErrNotFound
	}
	return it, nil
}

func (r *memoryItemRepo) Create(ctx context.Context, item Item) (Item, error) {
	r.nextID++
	item.ID = r.nextID
	r.items[item.ID] = item
	return item, nil
}

func (r *memoryItemRepo) Update(ctx context.Context, id int64, item Item) error {
	if _, ok := r.items[id]; !ok {
		return httpx.ErrNotFound
	}
	item.ID = id
	r.items[id] = item
	return nil
}

func (r *memoryItemRepo) SoftDelete(ctx context.Context, id int64) error {
	if _, ok := r.items[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func TestCreateDerivesPrices(t *testing.T) {
	svc := NewService(newMemoryItemRepo())

	created, err := svc.Create(context.Background(), Item{
		Code:       "I1",
		Name:       "Sugar 1kg",
		UnitPrice:  100,
		Discount1:  10,
		Discount2:  5,
		SupplierID: 1,
		// client-supplied derived prices must be ignored
		SecondPrice:    1,
		WholesalePrice: 1,
	})
	require.NoError(t, err)
	require.Equal(t, 90.0, created.SecondPrice)
	require.Equal(t, 85.5, created.WholesalePrice)
}

func TestCreateRejectsDiscountOutOfRange(t *testing.T) {
	svc := NewService(newMemoryItemRepo())

	_, err := svc.Create(context.Background(), Item{Code: "I1", Name: "Sugar", UnitPrice: 10, Discount1: 120, SupplierID: 1})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Create(context.Background(), Item{Code: "I1", Name: "Sugar", UnitPrice: 10, Discount2: -5, SupplierID: 1})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateRecomputesPrices(t *testing.T) {
	repo := newMemoryItemRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), Item{Code: "I1", Name: "Sugar", UnitPrice: 100, SupplierID: 1})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, Item{
		Code: "I1", Name: "Sugar", UnitPrice: 200, Discount1: 50, Discount2: 10, SupplierID: 1,
	})
	require.NoError(t, err)
	require.Equal(t, 100.0, updated.SecondPrice)
	require.Equal(t, 90.0, updated.WholesalePrice)
}
