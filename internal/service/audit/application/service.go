// internal/service/audit/application/service.go
package application

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"ecommerce/internal/pkg/eventbus"
	"ecommerce/internal/pkg/logger"
	"ecommerce/internal/service/audit/domain"
)

// AuditService 把收到的事件写入事件日志，是日志唯一的写入方
type AuditService struct {
	store  domain.RecordStore
	tracer trace.Tracer
	now    func() time.Time
}

func NewAuditService(store domain.RecordStore, tracer trace.Tracer) *AuditService {
	return &AuditService{store: store, tracer: tracer, now: time.Now}
}

// HandleEnvelope 根据事件类型生成审计记录并逐条写入，返回已写入的记录。
// 过期时间以接收时间为基准。
func (s *AuditService) HandleEnvelope(ctx context.Context, env eventbus.Envelope, messageID string) ([]domain.Record, error) {
	ctx, span := s.tracer.Start(ctx, "app.HandleEnvelope", trace.WithAttributes(
		attribute.String("event.kind", env.EventKind),
		attribute.String("messaging.message_id", messageID),
	))
	defer span.End()

	records, err := s.buildRecords(env, messageID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to build audit records")
		return nil, err
	}

	written := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if err := s.store.Put(ctx, r); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to write audit record")
			return written, err
		}
		written = append(written, r)
	}

	span.SetAttributes(attribute.Int("audit.records", len(written)))
	logger.Ctx(ctx).Info().
		Str("event_kind", env.EventKind).
		Str("message_id", messageID).
		Int("records", len(written)).
		Msg("event recorded")
	return written, nil
}

func (s *AuditService) buildRecords(env eventbus.Envelope, messageID string) ([]domain.Record, error) {
	now := s.now()
	switch {
	case domain.IsOrderKind(env.EventKind):
		var ev domain.OrderEvent
		if err := env.Decode(&ev); err != nil {
			return nil, err
		}
		return domain.NewOrderRecords(env.EventKind, ev, messageID, now)
	case domain.IsProductKind(env.EventKind):
		var ev domain.ProductEvent
		if err := env.Decode(&ev); err != nil {
			return nil, err
		}
		r, err := domain.NewProductRecord(env.EventKind, ev, now)
		if err != nil {
			return nil, err
		}
		return []domain.Record{r}, nil
	default:
		return nil, errors.Wrap(domain.ErrUnknownEventKind, env.EventKind)
	}
}
