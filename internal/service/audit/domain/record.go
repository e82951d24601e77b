// internal/service/audit/domain/record.go
package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// RetentionSeconds 审计记录的保留时长，过期后由存储自行清理
const RetentionSeconds = 5 * 60

var (
	ErrUnknownEventKind = errors.New("unknown event kind")
	ErrRecordNotFound   = errors.New("audit record not found")
)

// Record 是事件日志中的一条审计记录，写入后不再修改
type Record struct {
	PartitionKey string          `json:"pk"`
	SortKey      string          `json:"sk"`
	Email        string          `json:"email"`
	CreatedAt    int64           `json:"createdAt"`
	RequestID    string          `json:"requestId"`
	EventKind    string          `json:"eventKind"`
	Info         json.RawMessage `json:"info"`
	TTL          int64           `json:"ttl"`
}

// ExpiresAt TTL 对应的绝对时间
func (r Record) ExpiresAt() time.Time {
	return time.Unix(r.TTL, 0)
}

// RecordStore 只追加写入，过期由存储负责
type RecordStore interface {
	Put(ctx context.Context, r Record) error
	Get(ctx context.Context, pk, sk string) (*Record, error)
	ListByPartition(ctx context.Context, pk string) ([]Record, error)
}

// OrderEvent 是审计侧关心的订单事件字段
type OrderEvent struct {
	CustomerKey  string   `json:"customerKey"`
	OrderKey     string   `json:"orderKey"`
	RequestID    string   `json:"requestId"`
	ProductCodes []string `json:"productCodes"`
}

// ProductEvent 是审计侧关心的商品事件字段
type ProductEvent struct {
	RequestID    string          `json:"requestId"`
	ProductID    string          `json:"productId"`
	ProductCode  string          `json:"productCode"`
	ProductPrice decimal.Decimal `json:"productPrice"`
	Email        string          `json:"email"`
}

type orderInfo struct {
	OrderKey     string   `json:"orderKey"`
	ProductCodes []string `json:"productCodes"`
	MessageID    string   `json:"messageId"`
}

type productInfo struct {
	ProductID string          `json:"productId"`
	Price     decimal.Decimal `json:"price"`
}

var (
	orderKinds   = map[string]bool{"ORDER_CREATED": true, "ORDER_UPDATED": true, "ORDER_DELETED": true}
	productKinds = map[string]bool{"PRODUCT_CREATED": true, "PRODUCT_UPDATED": true, "PRODUCT_DELETED": true}
)

func IsOrderKind(kind string) bool   { return orderKinds[kind] }
func IsProductKind(kind string) bool { return productKinds[kind] }

// NewOrderRecords 为订单中的每个商品编码生成一条记录
func NewOrderRecords(kind string, ev OrderEvent, messageID string, now time.Time) ([]Record, error) {
	if !IsOrderKind(kind) {
		return nil, errors.Wrap(ErrUnknownEventKind, kind)
	}
	info, err := json.Marshal(orderInfo{OrderKey: ev.OrderKey, ProductCodes: ev.ProductCodes, MessageID: messageID})
	if err != nil {
		return nil, errors.Wrap(err, "marshal order info")
	}

	records := make([]Record, 0, len(ev.ProductCodes))
	for _, code := range ev.ProductCodes {
		records = append(records, newRecord("#order_"+code, kind, ev.CustomerKey, ev.RequestID, info, now))
	}
	return records, nil
}

func NewProductRecord(kind string, ev ProductEvent, now time.Time) (Record, error) {
	if !IsProductKind(kind) {
		return Record{}, errors.Wrap(ErrUnknownEventKind, kind)
	}
	info, err := json.Marshal(productInfo{ProductID: ev.ProductID, Price: ev.ProductPrice})
	if err != nil {
		return Record{}, errors.Wrap(err, "marshal product info")
	}
	return newRecord("#product_"+ev.ProductCode, kind, ev.Email, ev.RequestID, info, now), nil
}

func newRecord(pk, kind, email, requestID string, info json.RawMessage, now time.Time) Record {
	ms := now.UnixMilli()
	return Record{
		PartitionKey: pk,
		SortKey:      fmt.Sprintf("%s#%d", kind, ms),
		Email:        email,
		CreatedAt:    ms,
		RequestID:    requestID,
		EventKind:    kind,
		Info:         info,
		TTL:          ms/1000 + RetentionSeconds,
	}
}
