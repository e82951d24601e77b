// internal/service/order/domain/repository.go
package domain

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"ecommerce/internal/pkg/outbox"
)

// ErrOrderNotFound 订单不存在，可用 errors.Is 判断
var ErrOrderNotFound = errors.New("order not found")

// NotFoundError 携带未命中的订单号
type NotFoundError struct {
	OrderKey string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Order with ID: %s not found", e.OrderKey)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrOrderNotFound }

// OrderRepository 定义了订单聚合的持久化接口。
// 它位于领域层，但由基础设施层实现。
type OrderRepository interface {
	// Create 分配订单号和创建时间后写入订单；intent 非空时在同一事务内写入 outbox。
	Create(ctx context.Context, order *Order, intent EventIntent) (*outbox.Entry, error)

	GetAll(ctx context.Context) ([]*Order, error)

	// GetByCustomer 返回该客户的全部订单。
	GetByCustomer(ctx context.Context, customerKey string) ([]*Order, error)

	GetOne(ctx context.Context, customerKey, orderKey string) (*Order, error)

	// Delete 删除并返回删除前的订单；intent 非空时在同一事务内写入 outbox。
	Delete(ctx context.Context, customerKey, orderKey string, intent EventIntent) (*Order, *outbox.Entry, error)
}
