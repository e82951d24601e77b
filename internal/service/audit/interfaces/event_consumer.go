// internal/service/audit/interfaces/event_consumer.go
package interfaces

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ecommerce/internal/pkg/eventbus"
	"ecommerce/internal/pkg/logger"
	"ecommerce/internal/pkg/mq"
	"ecommerce/internal/service/audit/application"
)

const fetchRetryDelay = time.Second

// EventConsumerAdapter 是一个驱动适配器，它监听 Kafka 订单事件并驱动审计服务。
type EventConsumerAdapter struct {
	reader mq.Reader
	topic  string
	appSvc *application.AuditService
}

func NewEventConsumerAdapter(reader mq.Reader, topic string, appSvc *application.AuditService) *EventConsumerAdapter {
	return &EventConsumerAdapter{reader: reader, topic: topic, appSvc: appSvc}
}

// Run 持续消费直到 ctx 结束。这是一个长期运行的方法。
func (a *EventConsumerAdapter) Run(ctx context.Context) error {
	logger.Ctx(ctx).Info().Str("topic", a.topic).Msg("✅ Kafka event consumer started.")
	for {
		// 使用 FetchMessage 而不是 ReadMessage，处理完成后再显式提交
		msg, err := a.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Ctx(ctx).Info().Msg("🛑 Kafka event consumer shutting down.")
				return nil
			}
			logger.Ctx(ctx).Error().Err(err).Msg("could not read message, retrying")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(fetchRetryDelay): // 避免快速失败循环
			}
			continue
		}

		a.processMessage(ctx, msg)

		// 无论处理结果如何都提交 offset，失败只记录日志
		if err := a.reader.CommitMessages(ctx, msg); err != nil {
			logger.Ctx(ctx).Error().Err(err).Int64("offset", msg.Offset).Msg("failed to commit message")
		}
	}
}

// Close 关闭底层 reader，在 Run 返回后调用。
func (a *EventConsumerAdapter) Close() error {
	return a.reader.Close()
}

func (a *EventConsumerAdapter) processMessage(parentCtx context.Context, msg kafka.Message) {
	ctx := mq.ExtractTraceContext(parentCtx, msg)
	messageID := MessageID(msg)

	ctx, span := otel.Tracer("events-service").Start(ctx, "kafka.consume "+a.topic,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", a.topic),
			attribute.String("messaging.message_id", messageID),
			attribute.String("event.kind", mq.HeaderValue(msg, eventbus.HeaderEventKind)),
		))
	defer span.End()

	l := logger.Ctx(ctx).With().Str("message_id", messageID).Logger()

	env, err := eventbus.DecodeEnvelope(msg.Value)
	if err != nil {
		span.RecordError(err)
		l.Error().Err(err).Msg("failed to decode envelope, message skipped")
		return
	}
	if _, err := a.appSvc.HandleEnvelope(ctx, env, messageID); err != nil {
		span.RecordError(err)
		l.Error().Err(err).Str("event_kind", env.EventKind).Msg("failed to record event")
	}
}

// MessageID 用 topic/partition/offset 唯一标识一条 Kafka 消息
func MessageID(msg kafka.Message) string {
	return fmt.Sprintf("%s-%d-%d", msg.Topic, msg.Partition, msg.Offset)
}
