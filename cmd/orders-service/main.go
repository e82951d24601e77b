// cmd/orders-service/main.go
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
	"ecommerce/internal/pkg/mq"
	"ecommerce/internal/pkg/outbox"
	"ecommerce/internal/service/order/application"
	orderdomain "ecommerce/internal/service/order/domain"
	orderinfra "ecommerce/internal/service/order/infrastructure"
	"ecommerce/internal/service/order/infrastructure/adapter"
	"ecommerce/internal/service/order/interfaces"
	productapp "ecommerce/internal/service/product/application"
	productdomain "ecommerce/internal/service/product/domain"
	productinfra "ecommerce/internal/service/product/infrastructure"
	productif "ecommerce/internal/service/product/interfaces"
)

const serviceName = "orders-service"

// stores 是按存储驱动组装出的仓储集合
type stores struct {
	orders   orderdomain.OrderRepository
	products productdomain.ProductRepository
	outbox   outbox.Store
}

func main() {
	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName:      serviceName,
		DefaultPort:      8082,
		RegisterHandlers: registerHandlers,
	})
}

func registerHandlers(ctx context.Context, app *bootstrap.AppCtx) error {
	cfg := app.Config

	// 1. 初始化存储
	st, err := newStores(ctx, app)
	if err != nil {
		return err
	}

	// 2. 订单事件写入 Kafka 主题
	policy, err := eventbus.ParsePolicy(cfg.Events.OrderDelivery)
	if err != nil {
		return errors.Wrap(err, "order delivery policy")
	}
	kafkaWriter := mq.NewKafkaWriter(cfg.Infra.Kafka.Brokers, cfg.Infra.Kafka.OrderEventsTopic)
	app.OnShutdown(kafkaWriter.Close)
	transport := eventbus.NewTopicTransport(kafkaWriter, cfg.Infra.Kafka.OrderEventsTopic)
	relay := outbox.NewRelay(st.outbox, eventbus.NewEmitter(transport, policy))

	// 3. 订单用例和路由
	svc := application.NewOrderApplicationService(st.orders, adapter.NewCatalogRepositoryAdapter(st.products), relay, app.Tracer)
	interfaces.NewOrderHandler(svc).RegisterRoutes(app.Engine)

	// 4. outbox 调度器补发即时投递失败的事件
	dispatcher := outbox.NewDispatcher(st.outbox, relay, cfg.Events.OutboxInterval, cfg.Events.OutboxGrace, cfg.Events.OutboxBatch)
	app.Go("outbox-dispatcher", dispatcher.Run)

	// 内存驱动下商品只存在于本进程，同时挂载商品路由以便下单
	if cfg.Store.Driver == config.DriverMemory {
		if err := mountProductRoutes(app, st.products); err != nil {
			return err
		}
	}

	logger.Ctx(ctx).Info().
		Str("driver", cfg.Store.Driver).
		Str("transport", transport.Name()).
		Str("policy", policy.String()).
		Msg("order routes registered")
	return nil
}

func newStores(ctx context.Context, app *bootstrap.AppCtx) (*stores, error) {
	cfg := app.Config
	if cfg.Store.Driver == config.DriverMemory {
		box := outbox.NewMemoryStore()
		return &stores{
			orders:   orderinfra.NewMemoryOrderRepository(box),
			products: productinfra.NewMemoryProductRepository(),
			outbox:   box,
		}, nil
	}

	db, err := database.Open(ctx, cfg.Store.MySQL)
	if err != nil {
		return nil, err
	}
	app.OnShutdown(database.Closer(db))

	box := outbox.NewGormStore(db, cfg.Store.OutboxTable)
	orders := orderinfra.NewGormOrderRepository(db, cfg.Store.OrdersTable, box)
	if err := orders.Migrate(); err != nil {
		return nil, errors.Wrap(err, "migrate orders tables")
	}
	// 商品表由 products-service 维护，这里只读
	products := productinfra.NewGormProductRepository(db, cfg.Store.ProductsTable)
	return &stores{orders: orders, products: products, outbox: box}, nil
}

func mountProductRoutes(app *bootstrap.AppCtx, repo productdomain.ProductRepository) error {
	cfg := app.Config
	policy, err := eventbus.ParsePolicy(cfg.Events.ProductDelivery)
	if err != nil {
		return errors.Wrap(err, "product delivery policy")
	}
	transport := eventbus.NewInvokeTransport(httpclient.NewClient(app.Tracer), cfg.Events.FunctionsBaseURL, cfg.Events.ProductEventsFunction)
	svc := productapp.NewCatalogService(repo, eventbus.NewEmitter(transport, policy), app.Tracer)
	productif.NewProductHandler(svc).RegisterRoutes(app.Engine)
	return nil
}
