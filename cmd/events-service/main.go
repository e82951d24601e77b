// cmd/events-service/main.go
package main

import (
	"context"

	"ecommerce/internal/pkg/bootstrap"
	"ecommerce/internal/pkg/mq"
	"ecommerce/internal/pkg/redis"
	"ecommerce/internal/service/audit/application"
	"ecommerce/internal/service/audit/infrastructure"
	"ecommerce/internal/service/audit/interfaces"
)

const serviceName = "events-service"

func main() {
	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName:      serviceName,
		DefaultPort:      8083,
		RegisterHandlers: registerHandlers,
	})
}

func registerHandlers(ctx context.Context, app *bootstrap.AppCtx) error {
	cfg := app.Config

	// 1. 事件日志存储
	redisClient, err := redis.NewClient(ctx, cfg.Infra.Redis.Addrs)
	if err != nil {
		return err
	}
	app.OnShutdown(redisClient.Close)
	svc := application.NewAuditService(infrastructure.NewRedisStore(redisClient, cfg.Infra.Redis.EventsTable), app.Tracer)

	// 2. 同步调用入口，供商品服务使用
	interfaces.NewInvokeHandler(svc, cfg.Events.ProductEventsFunction).RegisterRoutes(app.Engine)

	// 3. 订阅订单事件主题
	reader := mq.NewKafkaReader(cfg.Infra.Kafka.Brokers, cfg.Infra.Kafka.OrderEventsTopic, cfg.Infra.Kafka.GroupID)
	consumer := interfaces.NewEventConsumerAdapter(reader, cfg.Infra.Kafka.OrderEventsTopic, svc)
	app.OnShutdown(consumer.Close)
	app.Go("order-events-consumer", consumer.Run)
	return nil
}
