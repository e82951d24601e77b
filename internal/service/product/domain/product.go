// internal/service/product/domain/product.go
package domain

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ErrProductNotFound 商品不存在，可用 errors.Is 判断。
var ErrProductNotFound = errors.New("Product not found")

// NotFoundError 携带未命中的商品 ID。
type NotFoundError struct {
	ProductID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Product with ID: %s not found", e.ProductID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrProductNotFound }

// Product 是目录中的商品聚合，ProductID 由服务端生成。
type Product struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Code        string          `json:"code"`
	Price       decimal.Decimal `json:"price"`
	Model       string          `json:"model"`
	ProductURL  string          `json:"productUrl"`
}

// ProductRepository 定义了商品目录的持久化接口。
type ProductRepository interface {
	GetAll(ctx context.Context) ([]*Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	// GetByIDs 批量查询，found 保持请求顺序，missing 为未命中的 ID，重复 ID 只查询一次。
	GetByIDs(ctx context.Context, ids []string) (found []*Product, missing []string, err error)
	// Create 总是重新生成 ProductID。
	Create(ctx context.Context, p *Product) (*Product, error)
	// Update 仅在商品存在时替换可变字段。
	Update(ctx context.Context, id string, p *Product) (*Product, error)
	// Delete 返回被删除前的完整记录。
	Delete(ctx context.Context, id string) (*Product, error)
}

// DistinctIDs 去重并保持首次出现的顺序。
func DistinctIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
