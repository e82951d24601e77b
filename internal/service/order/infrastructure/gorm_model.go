package infrastructure

import (
	"time"

	"github.com/shopspring/decimal"

	"ecommerce/internal/service/order/domain"
	"ecommerce/internal/shared"
)

// OrderModel 对应数据库中的订单表，(customer_key, order_key) 为联合主键
type OrderModel struct {
	CustomerKey   string               `gorm:"primaryKey;type:varchar(255)"`
	OrderKey      string               `gorm:"primaryKey;type:char(36)"`
	CreatedAt     time.Time            `gorm:"type:datetime(3);not null;autoCreateTime:false"`
	ShippingKind  shared.ShippingKind  `gorm:"type:varchar(16);not null"`
	Carrier       shared.Carrier       `gorm:"type:varchar(16);not null"`
	PaymentMethod shared.PaymentMethod `gorm:"type:varchar(16);not null"`
	TotalPrice    decimal.Decimal      `gorm:"type:decimal(12,2);not null"`
	Products      []LineItemModel      `gorm:"type:json;serializer:json"`
}

type LineItemModel struct {
	Code  string          `json:"code"`
	Price decimal.Decimal `json:"price"`
}

// ToDomainOrder 将数据库模型转换为领域模型
func ToDomainOrder(m *OrderModel) *domain.Order {
	if m == nil {
		return nil
	}
	products := make([]domain.LineItem, len(m.Products))
	for i, p := range m.Products {
		products[i] = domain.LineItem{Code: p.Code, Price: p.Price}
	}
	return &domain.Order{
		CustomerKey: m.CustomerKey,
		OrderKey:    m.OrderKey,
		CreatedAt:   m.CreatedAt.UTC(),
		Shipping:    domain.Shipping{Kind: m.ShippingKind, Carrier: m.Carrier},
		Billing:     domain.Billing{PaymentMethod: m.PaymentMethod, TotalPrice: m.TotalPrice},
		Products:    products,
	}
}

// FromDomainOrder 将领域模型转换为数据库模型
func FromDomainOrder(o *domain.Order) *OrderModel {
	if o == nil {
		return nil
	}
	products := make([]LineItemModel, len(o.Products))
	for i, p := range o.Products {
		products[i] = LineItemModel{Code: p.Code, Price: p.Price}
	}
	return &OrderModel{
		CustomerKey:   o.CustomerKey,
		OrderKey:      o.OrderKey,
		CreatedAt:     o.CreatedAt,
		ShippingKind:  o.Shipping.Kind,
		Carrier:       o.Shipping.Carrier,
		PaymentMethod: o.Billing.PaymentMethod,
		TotalPrice:    o.Billing.TotalPrice,
		Products:      products,
	}
}
