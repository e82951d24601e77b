package infrastructure

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"ecommerce/internal/pkg/outbox"
	"ecommerce/internal/service/order/domain"
)

// MemoryOrderRepository 是进程内实现；订单和 outbox 记录在同一把锁下写入
type MemoryOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]map[string]domain.Order
	outbox *outbox.MemoryStore
	now    func() time.Time
}

func NewMemoryOrderRepository(store *outbox.MemoryStore) *MemoryOrderRepository {
	return &MemoryOrderRepository{
		orders: make(map[string]map[string]domain.Order),
		outbox: store,
		now:    time.Now,
	}
}

func (r *MemoryOrderRepository) Create(_ context.Context, order *domain.Order, intent domain.EventIntent) (*outbox.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	order.Stamp(uuid.NewString(), now)

	var entry *outbox.Entry
	if intent != nil {
		env, err := intent(order)
		if err != nil {
			return nil, err
		}
		entry = outbox.NewEntry(order.CustomerKey, order.OrderKey, env, now)
	}

	byKey, ok := r.orders[order.CustomerKey]
	if !ok {
		byKey = make(map[string]domain.Order)
		r.orders[order.CustomerKey] = byKey
	}
	byKey[order.OrderKey] = cloneOrder(order)
	if entry != nil {
		r.outbox.Append(entry)
	}
	return entry, nil
}

func (r *MemoryOrderRepository) GetAll(_ context.Context) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Order
	for _, byKey := range r.orders {
		out = append(out, collect(byKey)...)
	}
	sortByCreatedAt(out)
	if out == nil {
		out = []*domain.Order{}
	}
	return out, nil
}

func (r *MemoryOrderRepository) GetByCustomer(_ context.Context, customerKey string) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := collect(r.orders[customerKey])
	sortByCreatedAt(out)
	return out, nil
}

func (r *MemoryOrderRepository) GetOne(_ context.Context, customerKey, orderKey string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[customerKey][orderKey]
	if !ok {
		return nil, &domain.NotFoundError{OrderKey: orderKey}
	}
	cp := cloneOrder(&o)
	return &cp, nil
}

func (r *MemoryOrderRepository) Delete(_ context.Context, customerKey, orderKey string, intent domain.EventIntent) (*domain.Order, *outbox.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[customerKey][orderKey]
	if !ok {
		return nil, nil, &domain.NotFoundError{OrderKey: orderKey}
	}
	prior := cloneOrder(&o)

	var entry *outbox.Entry
	if intent != nil {
		env, err := intent(&prior)
		if err != nil {
			return nil, nil, err
		}
		entry = outbox.NewEntry(customerKey, orderKey, env, r.now())
	}

	delete(r.orders[customerKey], orderKey)
	if entry != nil {
		r.outbox.Append(entry)
	}
	return &prior, entry, nil
}

func cloneOrder(o *domain.Order) domain.Order {
	cp := *o
	cp.Products = append([]domain.LineItem(nil), o.Products...)
	return cp
}

func collect(byKey map[string]domain.Order) []*domain.Order {
	out := make([]*domain.Order, 0, len(byKey))
	for _, o := range byKey {
		cp := cloneOrder(&o)
		out = append(out, &cp)
	}
	return out
}

func sortByCreatedAt(orders []*domain.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].OrderKey < orders[j].OrderKey
		}
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})
}
