// internal/pkg/outbox/entry.go
package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ecommerce/internal/pkg/eventbus"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPublished Status = "PUBLISHED"
)

// Entry 是与业务数据同事务写入的一条待发布事件。
type Entry struct {
	ID           uuid.UUID
	AggregateKey string // 作为消息 key，保证同一客户的事件有序
	AggregateID  string
	EventKind    string
	Payload      string
	Status       Status
	Attempts     int
	CreatedAt    time.Time
	PublishedAt  *time.Time
}

// NewEntry 由 Envelope 生成一条 PENDING 记录。
func NewEntry(aggregateKey, aggregateID string, env eventbus.Envelope, now time.Time) *Entry {
	return &Entry{
		ID:           uuid.New(),
		AggregateKey: aggregateKey,
		AggregateID:  aggregateID,
		EventKind:    env.EventKind,
		Payload:      env.Payload,
		Status:       StatusPending,
		CreatedAt:    now.UTC(),
	}
}

func (e *Entry) Envelope() eventbus.Envelope {
	return eventbus.Envelope{EventKind: e.EventKind, Payload: e.Payload}
}

// Store 是 outbox 的读取和状态更新接口，写入发生在业务仓储的事务内。
type Store interface {
	// Pending 返回创建时间早于 olderThan 的 PENDING 记录，按创建时间升序。
	Pending(ctx context.Context, olderThan time.Time, limit int) ([]*Entry, error)
	MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkAttempt(ctx context.Context, id uuid.UUID) error
}
