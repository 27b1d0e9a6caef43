package service

import (
	"context"
	"testing"

	"gestionstock/internal/dto"
	"gestionstock/internal/model"
	"gestionstock/internal/store"
	"gestionstock/internal/store/memstore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_CRUD(t *testing.T) {
	ctx := context.Background()
	svc := NewCatalogService(memstore.New())

	p, err := svc.Create(ctx, dto.ProductRequest{
		Name: "  Lait  ", BuyPrice: dec("3"), SellPriceGros: dec("3.5"), SellPriceDetail: dec("4"), Stock: 24,
	})
	require.NoError(t, err)
	assert.Equal(t, "Lait", p.Name)
	assert.NotEqual(t, uuid.Nil, p.ID)

	updated, err := svc.Update(ctx, p.ID, dto.ProductRequest{
		Name: "Lait 1L", BuyPrice: dec("3"), SellPriceGros: dec("3.5"), SellPriceDetail: dec("4.5"), Stock: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, 20, updated.Stock)
	assert.True(t, updated.SellPriceDetail.Equal(dec("4.5")))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, p.ID))
	_, err = svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCatalog_Validation(t *testing.T) {
	svc := NewCatalogService(memstore.New())
	cases := map[string]dto.ProductRequest{
		"blank name":     {Name: "  "},
		"negative price": {Name: "X", BuyPrice: dec("-1")},
		"negative stock": {Name: "X", Stock: -1},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), req)
			assert.True(t, IsValidation(err))
		})
	}

	_, err := svc.Update(context.Background(), uuid.New(), dto.ProductRequest{Name: "X"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDirectory_CRUD(t *testing.T) {
	ctx := context.Background()
	svc := NewDirectoryService(memstore.New())

	c, err := svc.Create(ctx, dto.ClientRequest{Name: "Amal", Phone: "0611", Address: "Rabat"})
	require.NoError(t, err)
	assert.Equal(t, model.ClientDetail, c.Type, "type defaults to Detail")

	c, err = svc.Update(ctx, c.ID, dto.ClientRequest{Name: "Amal", Phone: "0611", Address: "Rabat", Type: "Gros"})
	require.NoError(t, err)
	assert.Equal(t, model.ClientGros, c.Type)

	require.NoError(t, svc.Delete(ctx, c.ID))
	assert.ErrorIs(t, svc.Delete(ctx, c.ID), store.ErrNotFound)
}

func TestDirectory_Validation(t *testing.T) {
	svc := NewDirectoryService(memstore.New())
	cases := map[string]dto.ClientRequest{
		"blank name":   {Phone: "1", Address: "a"},
		"no phone":     {Name: "A", Address: "a"},
		"no address":   {Name: "A", Phone: "1"},
		"unknown type": {Name: "A", Phone: "1", Address: "a", Type: "VIP"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), req)
			assert.True(t, IsValidation(err))
		})
	}
}
