package port

import (
	"context"

	"github.com/shopspring/decimal"
)

// CatalogProduct 是下单时需要的商品信息。
type CatalogProduct struct {
	ProductID string
	Code      string
	Price     decimal.Decimal
}

// ProductCatalog 是商品目录的出站端口。
type ProductCatalog interface {
	// GetByIDs 批量解析商品，missing 为未找到的 ID。
	GetByIDs(ctx context.Context, ids []string) (found []CatalogProduct, missing []string, err error)
}
