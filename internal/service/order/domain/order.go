// internal/service/order/domain/order.go
package domain

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"ecommerce/internal/shared"
)

var ErrEmptyOrder = errors.New("order must contain at least one product")

// Shipping 配送信息
type Shipping struct {
	Kind    shared.ShippingKind `json:"kind"`
	Carrier shared.Carrier      `json:"carrier"`
}

// Billing 账单信息，TotalPrice 只在创建时计算一次
type Billing struct {
	PaymentMethod shared.PaymentMethod `json:"paymentMethod"`
	TotalPrice    decimal.Decimal      `json:"totalPrice"`
}

// LineItem 是下单时商品的快照
type LineItem struct {
	Code  string          `json:"code"`
	Price decimal.Decimal `json:"price"`
}

// Order 是订单聚合的根实体，以 (CustomerKey, OrderKey) 唯一标识
type Order struct {
	CustomerKey string
	OrderKey    string
	CreatedAt   time.Time
	Shipping    Shipping
	Billing     Billing
	Products    []LineItem
}

// 工厂函数: NewOrder 校验枚举并计算总价，OrderKey 和 CreatedAt 由仓储在持久化时生成
func NewOrder(customerKey string, payment shared.PaymentMethod, shipping Shipping, items []LineItem) (*Order, error) {
	if customerKey == "" {
		return nil, errors.New("order requires a customer key")
	}
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	if err := payment.Validate(); err != nil {
		return nil, err
	}
	if err := shipping.Kind.Validate(); err != nil {
		return nil, err
	}
	if err := shipping.Carrier.Validate(); err != nil {
		return nil, err
	}

	total := decimal.Zero
	products := make([]LineItem, len(items))
	for i, item := range items {
		total = total.Add(item.Price)
		products[i] = item
	}

	return &Order{
		CustomerKey: customerKey,
		Shipping:    shipping,
		Billing:     Billing{PaymentMethod: payment, TotalPrice: total},
		Products:    products,
	}, nil
}

// ProductCodes 返回下单商品的编码
func (o *Order) ProductCodes() []string {
	codes := make([]string, len(o.Products))
	for i, p := range o.Products {
		codes[i] = p.Code
	}
	return codes
}

// Stamp 在持久化前分配订单号和创建时间，时间截断到毫秒以保证读写一致
func (o *Order) Stamp(orderKey string, now time.Time) {
	o.OrderKey = orderKey
	o.CreatedAt = now.UTC().Truncate(time.Millisecond)
}
