package adapter

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	productdomain "ecommerce/internal/service/product/domain"
	productinfra "ecommerce/internal/service/product/infrastructure"
)

func TestCatalogAdapterMapsProducts(t *testing.T) {
	ctx := context.Background()
	repo := productinfra.NewMemoryProductRepository()
	a, err := repo.Create(ctx, &productdomain.Product{Code: "A", Price: decimal.NewFromInt(10)})
	require.NoError(t, err)

	found, missing, err := NewCatalogRepositoryAdapter(repo).GetByIDs(ctx, []string{a.ProductID, "ghost"})

	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, a.ProductID, found[0].ProductID)
	assert.Equal(t, "A", found[0].Code)
	assert.True(t, found[0].Price.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, []string{"ghost"}, missing)
}
