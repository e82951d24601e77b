package domain

import "github.com/shopspring/decimal"

type ProductEventKind string

const (
	ProductCreated ProductEventKind = "PRODUCT_CREATED"
	ProductUpdated ProductEventKind = "PRODUCT_UPDATED"
	ProductDeleted ProductEventKind = "PRODUCT_DELETED"
)

// ProductEvent 是商品变更后投递给审计服务的事件。
type ProductEvent struct {
	RequestID    string           `json:"requestId"`
	EventKind    ProductEventKind `json:"eventKind"`
	ProductID    string           `json:"productId"`
	ProductCode  string           `json:"productCode"`
	ProductPrice decimal.Decimal  `json:"productPrice"`
	Email        string           `json:"email"`
}

// NewProductEvent 根据商品快照构造事件。
func NewProductEvent(kind ProductEventKind, p *Product, requestID, email string) ProductEvent {
	return ProductEvent{
		RequestID:    requestID,
		EventKind:    kind,
		ProductID:    p.ProductID,
		ProductCode:  p.Code,
		ProductPrice: p.Price,
		Email:        email,
	}
}
