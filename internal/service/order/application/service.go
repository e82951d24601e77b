// internal/service/order/application/service.go
package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"ecommerce/internal/pkg/logger"
	"ecommerce/internal/pkg/outbox"
	"ecommerce/internal/pkg/requestinfo"
	"ecommerce/internal/service/order/domain"
	"ecommerce/internal/service/order/port"
)

// ErrInvalidOrder 表示请求通过了结构校验但无法构成合法订单
var ErrInvalidOrder = errors.New("invalid order")

// MissingProductsError 表示请求中有商品不存在，整个订单被拒绝
type MissingProductsError struct {
	ProductIDs []string
}

func (e *MissingProductsError) Error() string {
	return fmt.Sprintf("products not found: %s", strings.Join(e.ProductIDs, ","))
}

// OrderApplicationService 只关注订单业务流程编排
type OrderApplicationService struct {
	orderRepo domain.OrderRepository
	catalog   port.ProductCatalog
	relay     *outbox.Relay
	tracer    trace.Tracer
}

func NewOrderApplicationService(orderRepo domain.OrderRepository, catalog port.ProductCatalog, relay *outbox.Relay, tracer trace.Tracer) *OrderApplicationService {
	return &OrderApplicationService{orderRepo: orderRepo, catalog: catalog, relay: relay, tracer: tracer}
}

// CreateOrder 校验商品、计算总价、持久化订单和事件，并立即投递事件。
func (s *OrderApplicationService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "app.CreateOrder", trace.WithAttributes(
		attribute.String("order.customer_key", req.CustomerEmail),
		attribute.Int("order.product_count", len(req.ProductIDs)),
	))
	defer span.End()

	// 1. 批量解析商品，缺任何一个都拒绝整单
	products, missing, err := s.catalog.GetByIDs(ctx, req.ProductIDs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to resolve products")
		return nil, errors.Wrap(err, "resolve products")
	}
	if len(missing) > 0 {
		span.AddEvent("Some products not found", trace.WithAttributes(attribute.StringSlice("product.missing", missing)))
		logger.Ctx(ctx).Warn().Strs("missing_product_ids", missing).Msg("order rejected, some products not found")
		return nil, &MissingProductsError{ProductIDs: missing}
	}
	// 重复 id 只解析出一个商品，解析数少于请求数时同样拒绝
	if len(products) < len(req.ProductIDs) {
		dups := duplicateIDs(req.ProductIDs)
		span.AddEvent("Duplicate products in order", trace.WithAttributes(attribute.StringSlice("product.duplicated", dups)))
		logger.Ctx(ctx).Warn().Strs("duplicated_product_ids", dups).Msg("order rejected, duplicated product ids")
		return nil, &MissingProductsError{ProductIDs: dups}
	}

	// 2. 使用领域工厂函数创建订单实体
	items := make([]domain.LineItem, len(products))
	for i, p := range products {
		items[i] = domain.LineItem{Code: p.Code, Price: p.Price}
	}
	order, err := domain.NewOrder(req.CustomerEmail, req.Payment,
		domain.Shipping{Kind: req.Shipping.Kind, Carrier: req.Shipping.Carrier}, items)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidOrder, err.Error())
	}

	// 3. 订单与 ORDER_CREATED 事件在同一事务中写入
	requestID := requestinfo.FromContext(ctx).APIRequestID
	entry, err := s.orderRepo.Create(ctx, order, domain.IntentFor(domain.OrderCreated, requestID))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to save order")
		return nil, err
	}
	span.SetAttributes(attribute.String("order.key", order.OrderKey))
	span.AddEvent("Order saved with pending ORDER_CREATED event.")

	// 4. 即时投递；失败时订单和 outbox 记录已落库，由调度器补发
	if err := s.publish(ctx, entry); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to publish order event")
		return nil, err
	}

	logger.Ctx(ctx).Info().
		Str("order_key", order.OrderKey).
		Str("customer_key", order.CustomerKey).
		Str("total_price", order.Billing.TotalPrice.String()).
		Msg("order created")
	return order, nil
}

// DeleteOrder 删除订单并投递 ORDER_DELETED，返回删除前的订单。
func (s *OrderApplicationService) DeleteOrder(ctx context.Context, customerKey, orderKey string) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "app.DeleteOrder", trace.WithAttributes(attribute.String("order.key", orderKey)))
	defer span.End()

	requestID := requestinfo.FromContext(ctx).APIRequestID
	prior, entry, err := s.orderRepo.Delete(ctx, customerKey, orderKey, domain.IntentFor(domain.OrderDeleted, requestID))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := s.publish(ctx, entry); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to publish order event")
		return nil, err
	}
	return prior, nil
}

// ListOrders customerKey 为空时返回全部订单。
func (s *OrderApplicationService) ListOrders(ctx context.Context, customerKey string) ([]*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "app.ListOrders")
	defer span.End()
	if customerKey == "" {
		return s.orderRepo.GetAll(ctx)
	}
	return s.orderRepo.GetByCustomer(ctx, customerKey)
}

func (s *OrderApplicationService) GetOrder(ctx context.Context, customerKey, orderKey string) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "app.GetOrder", trace.WithAttributes(attribute.String("order.key", orderKey)))
	defer span.End()
	return s.orderRepo.GetOne(ctx, customerKey, orderKey)
}

// duplicateIDs 按首次重复出现的顺序返回重复的 id
func duplicateIDs(ids []string) []string {
	seen := make(map[string]int, len(ids))
	var dups []string
	for _, id := range ids {
		seen[id]++
		if seen[id] == 2 {
			dups = append(dups, id)
		}
	}
	return dups
}

func (s *OrderApplicationService) publish(ctx context.Context, entry *outbox.Entry) error {
	if entry == nil {
		return nil
	}
	_, err := s.relay.Deliver(ctx, entry)
	return err
}
