// internal/service/product/application/service.go
package application

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"ecommerce/internal/pkg/eventbus"
	"ecommerce/internal/pkg/logger"
	"ecommerce/internal/pkg/requestinfo"
	"ecommerce/internal/service/product/domain"
)

// CatalogService 负责商品的查询和管理，变更成功后通知审计服务。
type CatalogService struct {
	repo    domain.ProductRepository
	emitter *eventbus.Emitter
	tracer  trace.Tracer
}

func NewCatalogService(repo domain.ProductRepository, emitter *eventbus.Emitter, tracer trace.Tracer) *CatalogService {
	return &CatalogService{repo: repo, emitter: emitter, tracer: tracer}
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "app.ListProducts")
	defer span.End()
	return s.repo.GetAll(ctx)
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "app.GetProduct", trace.WithAttributes(attribute.String("product.id", id)))
	defer span.End()
	return s.repo.GetByID(ctx, id)
}

// CreateProduct 写入商品并发送 PRODUCT_CREATED。
func (s *CatalogService) CreateProduct(ctx context.Context, input *domain.Product, email string) (*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "app.CreateProduct")
	defer span.End()

	created, err := s.repo.Create(ctx, input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create product")
		return nil, err
	}
	span.SetAttributes(attribute.String("product.id", created.ProductID))

	if err := s.notify(ctx, domain.ProductCreated, created, email); err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateProduct 仅在商品存在时更新，并发送 PRODUCT_UPDATED。
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, input *domain.Product, email string) (*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "app.UpdateProduct", trace.WithAttributes(attribute.String("product.id", id)))
	defer span.End()

	updated, err := s.repo.Update(ctx, id, input)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := s.notify(ctx, domain.ProductUpdated, updated, email); err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteProduct 删除商品，返回删除前的记录，并发送 PRODUCT_DELETED。
func (s *CatalogService) DeleteProduct(ctx context.Context, id string, email string) (*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "app.DeleteProduct", trace.WithAttributes(attribute.String("product.id", id)))
	defer span.End()

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := s.notify(ctx, domain.ProductDeleted, deleted, email); err != nil {
		return nil, err
	}
	return deleted, nil
}

// notify 的返回值遵循 emitter 的策略；默认配置下商品事件失败只记日志。
func (s *CatalogService) notify(ctx context.Context, kind domain.ProductEventKind, p *domain.Product, email string) error {
	info := requestinfo.FromContext(ctx)
	env, err := eventbus.NewEnvelope(string(kind), domain.NewProductEvent(kind, p, info.APIRequestID, email))
	if err != nil {
		return err
	}

	delivered, err := s.emitter.Deliver(ctx, p.ProductID, env)
	if delivered {
		logger.Ctx(ctx).Info().Str("product_id", p.ProductID).Str("event_kind", string(kind)).Msg("product event delivered")
	}
	return err
}
