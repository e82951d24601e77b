package domain

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var receivedAt = time.UnixMilli(1_767_225_600_123)

func TestNewOrderRecordsOnePerProductCode(t *testing.T) {
	ev := OrderEvent{
		CustomerKey:  "alice@example.com",
		OrderKey:     "o-1",
		RequestID:    "req-1",
		ProductCodes: []string{"COD-A", "COD-B"},
	}

	records, err := NewOrderRecords("ORDER_CREATED", ev, "msg-9", receivedAt)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "#order_COD-A", records[0].PartitionKey)
	assert.Equal(t, "#order_COD-B", records[1].PartitionKey)
	for _, r := range records {
		assert.Equal(t, "ORDER_CREATED#1767225600123", r.SortKey)
		assert.Equal(t, "alice@example.com", r.Email)
		assert.Equal(t, int64(1767225600123), r.CreatedAt)
		assert.Equal(t, int64(1767225600+300), r.TTL)
		assert.Equal(t, "req-1", r.RequestID)
		assert.JSONEq(t, `{"orderKey":"o-1","productCodes":["COD-A","COD-B"],"messageId":"msg-9"}`, string(r.Info))
	}
}

func TestNewProductRecord(t *testing.T) {
	ev := ProductEvent{
		RequestID:    "req-2",
		ProductID:    "p-1",
		ProductCode:  "COD-A",
		ProductPrice: decimal.RequireFromString("19.90"),
		Email:        "admin@example.com",
	}

	r, err := NewProductRecord("PRODUCT_UPDATED", ev, receivedAt)
	require.NoError(t, err)

	assert.Equal(t, "#product_COD-A", r.PartitionKey)
	assert.Equal(t, "PRODUCT_UPDATED#1767225600123", r.SortKey)
	assert.Equal(t, "admin@example.com", r.Email)
	assert.JSONEq(t, `{"productId":"p-1","price":19.9}`, string(r.Info))
	assert.True(t, receivedAt.Add(300*time.Second).Truncate(time.Second).Equal(r.ExpiresAt()))
}

func TestUnknownKindsAreRejected(t *testing.T) {
	_, err := NewOrderRecords("PRODUCT_CREATED", OrderEvent{}, "", receivedAt)
	assert.True(t, errors.Is(err, ErrUnknownEventKind))

	_, err = NewProductRecord("ORDER_CREATED", ProductEvent{}, receivedAt)
	assert.True(t, errors.Is(err, ErrUnknownEventKind))
}
