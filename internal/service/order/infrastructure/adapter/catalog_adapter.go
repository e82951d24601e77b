package adapter

import (
	"context"

	"ecommerce/internal/service/order/port"
	productdomain "ecommerce/internal/service/product/domain"
)

// CatalogRepositoryAdapter 实现了 port.ProductCatalog 接口，直接读取商品表。
type CatalogRepositoryAdapter struct {
	products productdomain.ProductRepository
}

// NewCatalogRepositoryAdapter 创建一个新的商品目录适配器。
func NewCatalogRepositoryAdapter(products productdomain.ProductRepository) *CatalogRepositoryAdapter {
	return &CatalogRepositoryAdapter{products: products}
}

func (a *CatalogRepositoryAdapter) GetByIDs(ctx context.Context, ids []string) ([]port.CatalogProduct, []string, error) {
	found, missing, err := a.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	out := make([]port.CatalogProduct, len(found))
	for i, p := range found {
		out[i] = port.CatalogProduct{ProductID: p.ProductID, Code: p.Code, Price: p.Price}
	}
	return out, missing, nil
}
