package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/deskboard/internal/apperror"
	"github.com/sakif/deskboard/internal/model"
)

const uid = "acc-ann"

func lamp() model.ProductInput {
	return model.ProductInput{
		Name:         "Desk Lamp",
		Category:     "Lighting",
		Price:        24.99,
		Stock:        12,
		Description:  "LED, warm white",
		Manufacturer: "Lumen Co",
		SKU:          "DL-100",
	}
}

func TestProductCreate_RecordCarriesItsID(t *testing.T) {
	store := newTestStore(t)
	svc := NewProductService(store, discardLogger())
	ctx := context.Background()

	p, err := svc.Save(ctx, uid, "", lamp())
	require.NoError(t, err)
	require.Len(t, p.ID, 20)
	assert.False(t, p.CreatedAt.IsZero())

	snap, err := store.Get(ctx, "users/"+uid+"/products/"+p.ID+"/id")
	require.NoError(t, err)
	assert.Equal(t, p.ID, snap.Value)

	got, err := svc.Get(ctx, uid, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Desk Lamp", got.Name)
	assert.Equal(t, 24.99, got.Price)
	assert.Equal(t, 12, got.Stock)
}

func TestProductValidation(t *testing.T) {
	store := newTestStore(t)
	svc := NewProductService(store, discardLogger())

	tests := []struct {
		name  string
		edit  func(*model.ProductInput)
		field string
	}{
		{"blank name", func(in *model.ProductInput) { in.Name = "  " }, "name"},
		{"negative price", func(in *model.ProductInput) { in.Price = -1 }, "price"},
		{"negative stock", func(in *model.ProductInput) { in.Stock = -3 }, "stock"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := lamp()
			tt.edit(&in)
			_, err := svc.Create(context.Background(), uid, in)
			var appErr *apperror.AppError
			require.ErrorAs(t, err, &appErr)
			assert.ErrorIs(t, err, apperror.ErrValidation)
			assert.Equal(t, tt.field, appErr.Field)
		})
	}
	assert.Zero(t, store.calls.Load())
}

func TestProductUpdate_EditsInPlace(t *testing.T) {
	svc := NewProductService(newTestStore(t), discardLogger())
	ctx := context.Background()

	p, err := svc.Create(ctx, uid, lamp())
	require.NoError(t, err)

	in := lamp()
	in.Stock = 0
	in.Category = "Office"
	updated, err := svc.Save(ctx, uid, p.ID, in)
	require.NoError(t, err)
	assert.True(t, p.CreatedAt.Equal(updated.CreatedAt))
	assert.False(t, updated.UpdatedAt.Before(p.UpdatedAt))

	list, err := svc.List(ctx, uid)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 0, list[0].Stock)
	assert.Equal(t, "Office", list[0].Category)
	assert.Equal(t, p.ID, list[0].ID)
}

func TestProduct_MissingIsNotFound(t *testing.T) {
	svc := NewProductService(newTestStore(t), discardLogger())
	ctx := context.Background()

	_, err := svc.Get(ctx, uid, "nope")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = svc.Update(ctx, uid, "nope", lamp())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, uid, "nope"), apperror.ErrNotFound)
}

func TestProducts_ArePerUser(t *testing.T) {
	svc := NewProductService(newTestStore(t), discardLogger())
	ctx := context.Background()

	p, err := svc.Create(ctx, uid, lamp())
	require.NoError(t, err)

	others, err := svc.List(ctx, "acc-bob")
	require.NoError(t, err)
	assert.Empty(t, others)

	_, err = svc.Get(ctx, "acc-bob", p.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCategories_UniqueNonEmptyFirstSeenOrder(t *testing.T) {
	products := []model.Product{
		{Category: "Office"},
		{Category: ""},
		{Category: "Lighting"},
		{Category: "Office"},
	}
	assert.Equal(t, []string{"Office", "Lighting"}, Categories(products))
	assert.Equal(t, []string{}, Categories(nil))
}

func TestProductDelete_LastOfCategoryDropsCategory(t *testing.T) {
	svc := NewProductService(newTestStore(t), discardLogger())
	ctx := context.Background()

	a := lamp()
	a.Category = "Lighting"
	b := lamp()
	b.Name = "Stapler"
	b.Category = "Office"

	pa, err := svc.Create(ctx, uid, a)
	require.NoError(t, err)
	_, err = svc.Create(ctx, uid, b)
	require.NoError(t, err)

	catalog, err := svc.Catalog(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, []string{"Lighting", "Office"}, catalog.Categories)

	require.NoError(t, svc.Delete(ctx, uid, pa.ID))

	catalog, err = svc.Catalog(ctx, uid)
	require.NoError(t, err)
	require.Len(t, catalog.Products, 1)
	assert.Equal(t, "Stapler", catalog.Products[0].Name)
	assert.Equal(t, []string{"Office"}, catalog.Categories)
}

func TestProductWatch_EmitsCatalog(t *testing.T) {
	svc := NewProductService(newTestStore(t), discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := svc.Watch(ctx, uid)
	require.NoError(t, err)
	first := receiveWithin(t, ch)
	assert.Empty(t, first.Products)
	assert.Empty(t, first.Categories)

	p, err := svc.Create(ctx, uid, lamp())
	require.NoError(t, err)
	next := receiveWithin(t, ch)
	require.Len(t, next.Products, 1)
	assert.Equal(t, []string{"Lighting"}, next.Categories)

	require.NoError(t, svc.Delete(ctx, uid, p.ID))
	last := receiveWithin(t, ch)
	assert.Empty(t, last.Products)
	assert.Empty(t, last.Categories)
}
