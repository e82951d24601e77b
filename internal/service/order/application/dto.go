// internal/service/order/application/dto.go
package application

import (
	"github.com/shopspring/decimal"

	"ecommerce/internal/service/order/domain"
	"ecommerce/internal/shared"
)

// CreateOrderRequest 是创建订单用例的输入数据，binding 标签承担网关层的结构校验
type CreateOrderRequest struct {
	CustomerEmail string               `json:"customerEmail" binding:"required,email"`
	ProductIDs    []string             `json:"productIds" binding:"required,min=1,dive,required"`
	Payment       shared.PaymentMethod `json:"payment" binding:"required,oneof=CASH DEBIT_CARD CREDIT_CARD PIX"`
	Shipping      ShippingRequest      `json:"shipping" binding:"required"`
}

type ShippingRequest struct {
	Kind    shared.ShippingKind `json:"kind" binding:"required,oneof=ECONOMIC URGENT"`
	Carrier shared.Carrier      `json:"carrier" binding:"required,oneof=CORREIOS SEDEX"`
}

// OrderResponse 是返回给调用方的订单视图，createdAt 为毫秒时间戳
type OrderResponse struct {
	CustomerKey string             `json:"customerKey"`
	OrderKey    string             `json:"orderKey"`
	CreatedAt   int64              `json:"createdAt"`
	Shipping    domain.Shipping    `json:"shipping"`
	Billing     domain.Billing     `json:"billing"`
	Products    []LineItemResponse `json:"products"`
}

type LineItemResponse struct {
	Code  string          `json:"code"`
	Price decimal.Decimal `json:"price"`
}

// ToOrderResponse 将领域模型转换为响应 DTO
func ToOrderResponse(o *domain.Order) *OrderResponse {
	if o == nil {
		return nil
	}
	products := make([]LineItemResponse, len(o.Products))
	for i, p := range o.Products {
		products[i] = LineItemResponse{Code: p.Code, Price: p.Price}
	}
	return &OrderResponse{
		CustomerKey: o.CustomerKey,
		OrderKey:    o.OrderKey,
		CreatedAt:   o.CreatedAt.UnixMilli(),
		Shipping:    o.Shipping,
		Billing:     o.Billing,
		Products:    products,
	}
}

func ToOrderResponses(orders []*domain.Order) []*OrderResponse {
	out := make([]*OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = ToOrderResponse(o)
	}
	return out
}
