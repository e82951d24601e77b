// cmd/products-service/main.go
package main

import (
	"context"

	"github.com/pkg/errors"

	"ecommerce/internal/pkg/bootstrap"
	"ecommerce/internal/pkg/config"
	"ecommerce/internal/pkg/database"
	"ecommerce/internal/pkg/eventbus"
	"ecommerce/internal/pkg/httpclient"
	"ecommerce/internal/pkg/logger"
	"ecommerce/internal/service/product/application"
	"ecommerce/internal/service/product/domain"
	"ecommerce/internal/service/product/infrastructure"
	"ecommerce/internal/service/product/interfaces"
)

const serviceName = "products-service"

// main 函数是应用的"组装根" (Composition Root)
func main() {
	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName:      serviceName,
		DefaultPort:      8081,
		RegisterHandlers: registerHandlers,
	})
}

func registerHandlers(ctx context.Context, app *bootstrap.AppCtx) error {
	cfg := app.Config

	// 1. 商品存储
	repo, err := newProductRepository(ctx, app)
	if err != nil {
		return err
	}

	// 2. 商品事件通过 invoke 传输直接调用事件函数
	policy, err := eventbus.ParsePolicy(cfg.Events.ProductDelivery)
	if err != nil {
		return errors.Wrap(err, "product delivery policy")
	}
	transport := eventbus.NewInvokeTransport(httpclient.NewClient(app.Tracer), cfg.Events.FunctionsBaseURL, cfg.Events.ProductEventsFunction)
	emitter := eventbus.NewEmitter(transport, policy)

	// 3. 注册路由
	svc := application.NewCatalogService(repo, emitter, app.Tracer)
	interfaces.NewProductHandler(svc).RegisterRoutes(app.Engine)

	logger.Ctx(ctx).Info().
		Str("driver", cfg.Store.Driver).
		Str("transport", transport.Name()).
		Str("policy", policy.String()).
		Msg("product routes registered")
	return nil
}

func newProductRepository(ctx context.Context, app *bootstrap.AppCtx) (domain.ProductRepository, error) {
	cfg := app.Config
	if cfg.Store.Driver == config.DriverMemory {
		return infrastructure.NewMemoryProductRepository(), nil
	}

	db, err := database.Open(ctx, cfg.Store.MySQL)
	if err != nil {
		return nil, err
	}
	app.OnShutdown(database.Closer(db))

	repo := infrastructure.NewGormProductRepository(db, cfg.Store.ProductsTable)
	if err := repo.Migrate(); err != nil {
		return nil, errors.Wrap(err, "migrate products table")
	}
	return repo, nil
}
