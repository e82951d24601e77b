package domain

import (
	"ecommerce/internal/pkg/eventbus"
)

type OrderEventKind string

const (
	OrderCreated OrderEventKind = "ORDER_CREATED"
	OrderUpdated OrderEventKind = "ORDER_UPDATED"
	OrderDeleted OrderEventKind = "ORDER_DELETED"
)

// OrderEvent 是订单生命周期事件的载荷
type OrderEvent struct {
	CustomerKey  string   `json:"customerKey"`
	OrderKey     string   `json:"orderKey"`
	Billing      Billing  `json:"billing"`
	Shipping     Shipping `json:"shipping"`
	RequestID    string   `json:"requestId"`
	ProductCodes []string `json:"productCodes"`
}

func NewOrderEvent(o *Order, requestID string) OrderEvent {
	return OrderEvent{
		CustomerKey:  o.CustomerKey,
		OrderKey:     o.OrderKey,
		Billing:      o.Billing,
		Shipping:     o.Shipping,
		RequestID:    requestID,
		ProductCodes: o.ProductCodes(),
	}
}

// EventIntent 在仓储事务内根据已落库的订单生成待发布的事件
type EventIntent func(o *Order) (eventbus.Envelope, error)

// IntentFor 生成指定类型的 EventIntent
func IntentFor(kind OrderEventKind, requestID string) EventIntent {
	return func(o *Order) (eventbus.Envelope, error) {
		return eventbus.NewEnvelope(string(kind), NewOrderEvent(o, requestID))
	}
}
