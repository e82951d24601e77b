package domain

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecommerce/internal/shared"
)

var economic = Shipping{Kind: shared.ShippingEconomic, Carrier: shared.CarrierCorreios}

func TestNewOrderComputesTotal(t *testing.T) {
	items := []LineItem{
		{Code: "A", Price: decimal.NewFromInt(10)},
		{Code: "B", Price: decimal.RequireFromString("20.35")},
	}

	order, err := NewOrder("alice@example.com", shared.PaymentPix, economic, items)

	require.NoError(t, err)
	assert.True(t, order.Billing.TotalPrice.Equal(decimal.RequireFromString("30.35")))
	assert.Equal(t, []string{"A", "B"}, order.ProductCodes())
	assert.Empty(t, order.OrderKey)
}

func TestNewOrderValidation(t *testing.T) {
	items := []LineItem{{Code: "A", Price: decimal.NewFromInt(1)}}

	_, err := NewOrder("", shared.PaymentPix, economic, items)
	assert.Error(t, err)

	_, err = NewOrder("a@b.c", shared.PaymentPix, economic, nil)
	assert.True(t, errors.Is(err, ErrEmptyOrder))

	_, err = NewOrder("a@b.c", "CHEQUE", economic, items)
	assert.True(t, errors.Is(err, shared.ErrInvalidEnum))

	_, err = NewOrder("a@b.c", shared.PaymentCash, Shipping{Kind: "DRONE", Carrier: shared.CarrierSedex}, items)
	assert.True(t, errors.Is(err, shared.ErrInvalidEnum))
}

func TestStampTruncatesToMillis(t *testing.T) {
	o := &Order{}
	o.Stamp("o-1", time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.FixedZone("BRT", -3*3600)))

	assert.Equal(t, "o-1", o.OrderKey)
	assert.Equal(t, 123000000, o.CreatedAt.Nanosecond())
	assert.Equal(t, time.UTC, o.CreatedAt.Location())
}

func TestIntentForBuildsEnvelope(t *testing.T) {
	o, err := NewOrder("alice@example.com", shared.PaymentCreditCard, economic, []LineItem{
		{Code: "A", Price: decimal.NewFromInt(10)},
		{Code: "B", Price: decimal.NewFromInt(20)},
	})
	require.NoError(t, err)
	o.Stamp("o-1", time.Now())

	env, err := IntentFor(OrderCreated, "req-1")(o)
	require.NoError(t, err)
	assert.Equal(t, "ORDER_CREATED", env.EventKind)

	var ev OrderEvent
	require.NoError(t, env.Decode(&ev))
	assert.Equal(t, "alice@example.com", ev.CustomerKey)
	assert.Equal(t, "o-1", ev.OrderKey)
	assert.Equal(t, "req-1", ev.RequestID)
	assert.Equal(t, []string{"A", "B"}, ev.ProductCodes)
	assert.True(t, ev.Billing.TotalPrice.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, economic, ev.Shipping)
}

func TestNotFoundError(t *testing.T) {
	err := error(&NotFoundError{OrderKey: "o-9"})
	assert.Equal(t, "Order with ID: o-9 not found", err.Error())
	assert.True(t, errors.Is(errors.Wrap(err, "get"), ErrOrderNotFound))
}
