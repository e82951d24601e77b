// internal/shared/enums.go
package shared

import (
	"github.com/pkg/errors"
)

// ErrInvalidEnum 表示枚举取值不在允许范围内。
var ErrInvalidEnum = errors.New("invalid enum value")

// PaymentMethod 支付方式，订单和事件共用这一份定义。
type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "CASH"
	PaymentDebitCard  PaymentMethod = "DEBIT_CARD"
	PaymentCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentPix        PaymentMethod = "PIX"
)

// ShippingKind 配送时效。
type ShippingKind string

const (
	ShippingEconomic ShippingKind = "ECONOMIC"
	ShippingUrgent   ShippingKind = "URGENT"
)

// Carrier 承运商。
type Carrier string

const (
	CarrierCorreios Carrier = "CORREIOS"
	CarrierSedex    Carrier = "SEDEX"
)

func (p PaymentMethod) Validate() error {
	switch p {
	case PaymentCash, PaymentDebitCard, PaymentCreditCard, PaymentPix:
		return nil
	}
	return errors.Wrapf(ErrInvalidEnum, "payment method %q", string(p))
}

func (k ShippingKind) Validate() error {
	switch k {
	case ShippingEconomic, ShippingUrgent:
		return nil
	}
	return errors.Wrapf(ErrInvalidEnum, "shipping kind %q", string(k))
}

func (c Carrier) Validate() error {
	switch c {
	case CarrierCorreios, CarrierSedex:
		return nil
	}
	return errors.Wrapf(ErrInvalidEnum, "carrier %q", string(c))
}
