// internal/pkg/mq/kafka.go
package mq

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
)

// Writer 是 kafka.Writer 的最小接口，便于在测试中替换。
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Reader 是 kafka.Reader 的最小接口。
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaWriter 创建按 key 哈希分区的同步 writer，同一聚合的事件落在同一分区。
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
		// 只尝试一次，重试交给 outbox 调度器
		MaxAttempts:            1,
	}
}

// NewKafkaReader 创建一个消费组 reader，offset 由调用方显式提交。
func NewKafkaReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0,
		StartOffset:    kafka.FirstOffset,
	})
}

// ProduceMessage 写入一条消息，并把当前 trace 上下文注入到消息头中。
func ProduceMessage(ctx context.Context, w Writer, key, value []byte, headers ...kafka.Header) error {
	carrier := KafkaHeaderCarrier(headers)
	otel.GetTextMapPropagator().Inject(ctx, &carrier)

	return w.WriteMessages(ctx, kafka.Message{
		Key:     key,
		Value:   value,
		Headers: carrier,
		Time:    time.Now(),
	})
}

// ExtractTraceContext 从消息头中恢复上游的 trace 上下文。
func ExtractTraceContext(ctx context.Context, msg kafka.Message) context.Context {
	carrier := KafkaHeaderCarrier(msg.Headers)
	return otel.GetTextMapPropagator().Extract(ctx, &carrier)
}

// HeaderValue 返回指定消息头的值。
func HeaderValue(msg kafka.Message, key string) string {
	carrier := KafkaHeaderCarrier(msg.Headers)
	return carrier.Get(key)
}
