// internal/service/order/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"ecommerce/internal/pkg/outbox"
	"ecommerce/internal/service/order/domain"
)

// GormOrderRepository 是 OrderRepository 的 GORM 实现，订单与 outbox 记录在同一事务中提交
type GormOrderRepository struct {
	db     *gorm.DB
	table  string
	outbox *outbox.GormStore
	now    func() time.Time
}

func NewGormOrderRepository(db *gorm.DB, table string, store *outbox.GormStore) *GormOrderRepository {
	return &GormOrderRepository{db: db, table: table, outbox: store, now: time.Now}
}

// Migrate 创建或更新订单表和 outbox 表
func (r *GormOrderRepository) Migrate() error {
	if err := r.db.Table(r.table).AutoMigrate(&OrderModel{}); err != nil {
		return err
	}
	return r.outbox.Migrate()
}

func (r *GormOrderRepository) Create(ctx context.Context, order *domain.Order, intent domain.EventIntent) (*outbox.Entry, error) {
	now := r.now()
	order.Stamp(uuid.NewString(), now)

	var entry *outbox.Entry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table(r.table).Create(FromDomainOrder(order)).Error; err != nil {
			return errors.Wrap(err, "insert order")
		}
		var err error
		entry, err = r.appendIntent(tx, order, intent, now)
		return err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create order for %s", order.CustomerKey)
	}
	return entry, nil
}

func (r *GormOrderRepository) GetAll(ctx context.Context) ([]*domain.Order, error) {
	var models []OrderModel
	if err := r.db.WithContext(ctx).Table(r.table).Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "scan orders")
	}
	return toDomainOrders(models), nil
}

func (r *GormOrderRepository) GetByCustomer(ctx context.Context, customerKey string) ([]*domain.Order, error) {
	var models []OrderModel
	err := r.db.WithContext(ctx).Table(r.table).
		Where("customer_key = ?", customerKey).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrapf(err, "query orders of %s", customerKey)
	}
	return toDomainOrders(models), nil
}

func (r *GormOrderRepository) GetOne(ctx context.Context, customerKey, orderKey string) (*domain.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).Table(r.table).
		Where("customer_key = ? AND order_key = ?", customerKey, orderKey).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &domain.NotFoundError{OrderKey: orderKey}
		}
		return nil, errors.Wrapf(err, "get order %s", orderKey)
	}
	return ToDomainOrder(&model), nil
}

func (r *GormOrderRepository) Delete(ctx context.Context, customerKey, orderKey string, intent domain.EventIntent) (*domain.Order, *outbox.Entry, error) {
	var (
		prior *domain.Order
		entry *outbox.Entry
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model OrderModel
		err := tx.Table(r.table).
			Where("customer_key = ? AND order_key = ?", customerKey, orderKey).
			First(&model).Error
		if err != nil {
			return err
		}
		err = tx.Table(r.table).
			Where("customer_key = ? AND order_key = ?", customerKey, orderKey).
			Delete(&OrderModel{}).Error
		if err != nil {
			return errors.Wrap(err, "delete order")
		}
		prior = ToDomainOrder(&model)
		entry, err = r.appendIntent(tx, prior, intent, r.now())
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, &domain.NotFoundError{OrderKey: orderKey}
		}
		return nil, nil, errors.Wrapf(err, "delete order %s", orderKey)
	}
	return prior, entry, nil
}

func (r *GormOrderRepository) appendIntent(tx *gorm.DB, order *domain.Order, intent domain.EventIntent, now time.Time) (*outbox.Entry, error) {
	if intent == nil {
		return nil, nil
	}
	env, err := intent(order)
	if err != nil {
		return nil, err
	}
	entry := outbox.NewEntry(order.CustomerKey, order.OrderKey, env, now)
	if err := r.outbox.AppendTx(tx, entry); err != nil {
		return nil, errors.Wrap(err, "append outbox entry")
	}
	return entry, nil
}

func toDomainOrders(models []OrderModel) []*domain.Order {
	out := make([]*domain.Order, 0, len(models))
	for i := range models {
		out = append(out, ToDomainOrder(&models[i]))
	}
	return out
}
