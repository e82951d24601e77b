// internal/pkg/eventbus/emitter.go
package eventbus

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"ecommerce/internal/pkg/logger"
	"ecommerce/internal/pkg/metrics"
)

// Policy 决定投递失败时是否把错误交还给调用方。
type Policy int

const (
	// PropagateErrors 投递失败时返回错误。
	PropagateErrors Policy = iota
	// SwallowErrors 投递失败只记录日志。
	SwallowErrors
)

func (p Policy) String() string {
	if p == SwallowErrors {
		return "swallow-errors"
	}
	return "propagate-errors"
}

// ParsePolicy 解析配置中的策略名称。
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "propagate-errors":
		return PropagateErrors, nil
	case "swallow-errors":
		return SwallowErrors, nil
	}
	return 0, errors.Errorf("unknown delivery policy %q", s)
}

// Transport 把一个 Envelope 发送出去，只尝试一次。
type Transport interface {
	Name() string
	Send(ctx context.Context, key string, env Envelope) error
}

// Emitter 是订单和商品事件共用的投递入口，二者只在传输方式和失败策略上不同。
type Emitter struct {
	transport Transport
	policy    Policy
}

func NewEmitter(transport Transport, policy Policy) *Emitter {
	return &Emitter{transport: transport, policy: policy}
}

func (e *Emitter) Policy() Policy { return e.policy }

// Deliver 发送一次事件。delivered 表示传输层是否确认；err 只在 PropagateErrors 策略下非空。
func (e *Emitter) Deliver(ctx context.Context, key string, env Envelope) (delivered bool, err error) {
	ctx, span := otel.Tracer("eventbus").Start(ctx, "eventbus.Deliver")
	defer span.End()
	span.SetAttributes(
		attribute.String("event.kind", env.EventKind),
		attribute.String("event.transport", e.transport.Name()),
		attribute.String("event.policy", e.policy.String()),
	)

	sendErr := e.transport.Send(ctx, key, env)
	if sendErr == nil {
		metrics.EventsEmitted.WithLabelValues(env.EventKind, e.transport.Name(), "delivered").Inc()
		return true, nil
	}

	metrics.EventsEmitted.WithLabelValues(env.EventKind, e.transport.Name(), "failed").Inc()
	span.RecordError(sendErr)
	span.SetStatus(codes.Error, "event delivery failed")

	logger.Ctx(ctx).Error().Err(sendErr).
		Str("event_kind", env.EventKind).
		Str("transport", e.transport.Name()).
		Str("policy", e.policy.String()).
		Msg("event delivery failed")

	if e.policy == SwallowErrors {
		return false, nil
	}
	return false, errors.Wrapf(sendErr, "deliver %s via %s", env.EventKind, e.transport.Name())
}
