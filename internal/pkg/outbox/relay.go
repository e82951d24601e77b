// internal/pkg/outbox/relay.go
package outbox

import (
	"context"
	"time"

	"ecommerce/internal/pkg/eventbus"
	"ecommerce/internal/pkg/logger"
	"ecommerce/internal/pkg/metrics"
)

// Relay 把一条 outbox 记录交给 Emitter，成功后标记为已发布。
type Relay struct {
	store   Store
	emitter *eventbus.Emitter
	now     func() time.Time
}

func NewRelay(store Store, emitter *eventbus.Emitter) *Relay {
	return &Relay{store: store, emitter: emitter, now: time.Now}
}

// Deliver 尝试发送一次。返回的 error 遵循 Emitter 的策略。
func (r *Relay) Deliver(ctx context.Context, e *Entry) (bool, error) {
	delivered, err := r.emitter.Deliver(ctx, e.AggregateKey, e.Envelope())
	if !delivered {
		if markErr := r.store.MarkAttempt(ctx, e.ID); markErr != nil {
			logger.Ctx(ctx).Warn().Err(markErr).Str("outbox_id", e.ID.String()).Msg("failed to record outbox attempt")
		}
		return false, err
	}

	if markErr := r.store.MarkPublished(ctx, e.ID, r.now()); markErr != nil {
		// 已发送但状态未落库，调度器会再次发送，消费者按至少一次处理
		logger.Ctx(ctx).Warn().Err(markErr).Str("outbox_id", e.ID.String()).Msg("failed to mark outbox entry published")
	}
	return true, nil
}

// Dispatcher 周期性扫描仍为 PENDING 的记录并重新投递。
// grace 之内的记录留给请求内的即时投递，避免重复发送。
type Dispatcher struct {
	store    Store
	relay    *Relay
	interval time.Duration
	grace    time.Duration
	batch    int
	now      func() time.Time
}

func NewDispatcher(store Store, relay *Relay, interval, grace time.Duration, batch int) *Dispatcher {
	return &Dispatcher{store: store, relay: relay, interval: interval, grace: grace, batch: batch, now: time.Now}
}

// Run 阻塞直到 ctx 结束。
func (d *Dispatcher) Run(ctx context.Context) error {
	logger.Ctx(ctx).Info().Dur("interval", d.interval).Dur("grace", d.grace).Msg("✅ Outbox dispatcher started.")
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Ctx(ctx).Info().Msg("🛑 Outbox dispatcher shutting down.")
			return nil
		case <-ticker.C:
			if _, err := d.Sweep(ctx); err != nil {
				logger.Ctx(ctx).Error().Err(err).Msg("outbox sweep failed")
			}
		}
	}
}

// Sweep 处理一批到期的 PENDING 记录，返回成功发布的条数。
func (d *Dispatcher) Sweep(ctx context.Context) (int, error) {
	entries, err := d.store.Pending(ctx, d.now().Add(-d.grace), d.batch)
	if err != nil {
		return 0, err
	}
	metrics.OutboxPending.Set(float64(len(entries)))

	published := 0
	for _, e := range entries {
		if ctx.Err() != nil {
			break
		}
		ok, err := d.relay.Deliver(ctx, e)
		if err != nil {
			logger.Ctx(ctx).Warn().Err(err).
				Str("outbox_id", e.ID.String()).
				Int("attempts", e.Attempts+1).
				Msg("outbox entry still pending")
		}
		if ok {
			published++
		}
	}
	return published, nil
}
