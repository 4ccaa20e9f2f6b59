package catalog

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Seed(t *testing.T) {
	s := NewMemoryStore(SeedProducts()...)

	products, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, int64(1), products[0].ID)
	assert.Equal(t, "Laptop Pro", products[0].Name)
	assert.True(t, products[0].Price.Equal(decimal.NewFromInt(1200)))
	assert.Equal(t, PlaceholderImage, products[2].ImageURL)

	created, err := s.Create(context.Background(), Product{Name: "Monitor", Price: decimal.NewFromInt(300)})
	require.NoError(t, err)
	assert.Equal(t, int64(4), created.ID)
}

func TestMemoryStore_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(SeedProducts()...)

	name := "Laptop Pro 2"
	before, after, err := s.Update(ctx, 1, ProductUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Laptop Pro", before.Name)
	assert.Equal(t, "Laptop Pro 2", after.Name)
	assert.True(t, after.Price.Equal(before.Price))

	_, _, err = s.Update(ctx, 99, ProductUpdate{Name: &name})
	assert.ErrorIs(t, err, ErrProductNotFound)

	deleted, err := s.Delete(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Laptop Pro 2", deleted.Name)

	_, err = s.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
	_, err = s.Delete(ctx, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProduct_PriceIsJSONNumber(t *testing.T) {
	raw, err := json.Marshal(Product{ID: 2, Name: "B", Price: decimal.RequireFromString("5.005")})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"price":5.005`)
}
