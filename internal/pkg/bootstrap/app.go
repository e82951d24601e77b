// internal/pkg/bootstrap/app.go
package bootstrap

import (
	"context"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"ecommerce/internal/pkg/config"
	"ecommerce/internal/pkg/logger"
	"ecommerce/internal/pkg/metrics"
	"ecommerce/internal/pkg/requestinfo"
	"ecommerce/internal/pkg/tracing"
	"ecommerce/internal/shared"
)

// AppCtx 是服务注册路由和后台任务时拿到的上下文。
type AppCtx struct {
	Engine *gin.Engine
	Config *config.Config
	Tracer trace.Tracer

	workers []worker
	closers []func() error
}

type worker struct {
	name string
	run  func(ctx context.Context) error
}

// Go 注册一个随服务生命周期运行的后台任务，ctx 结束时应返回。
func (a *AppCtx) Go(name string, run func(ctx context.Context) error) {
	a.workers = append(a.workers, worker{name: name, run: run})
}

// OnShutdown 注册关停时执行的清理函数，按注册的逆序执行。
func (a *AppCtx) OnShutdown(fn func() error) {
	a.closers = append(a.closers, fn)
}

// AppInfo 包含了启动一个微服务所需的所有特定信息。
type AppInfo struct {
	ServiceName string
	DefaultPort int
	// RegisterHandlers 允许每个服务构建依赖并注册自己的路由和后台任务
	RegisterHandlers func(ctx context.Context, app *AppCtx) error
}

// StartService 封装了所有微服务的通用启动和优雅关停逻辑。
func StartService(info AppInfo) {
	if err := Run(info); err != nil {
		zerolog.DefaultContextLogger.Fatal().Err(err).Msg("service exited with error")
	}
}

// Run 启动服务并阻塞到收到退出信号或任意后台任务失败。
func Run(info AppInfo) error {
	shared.UseNumericDecimalJSON()

	// 1. 读取配置，初始化日志
	cfg, err := config.Load(info.ServiceName, info.DefaultPort)
	if err != nil {
		logger.Init(info.ServiceName, "info")
		return errors.Wrap(err, "load config")
	}
	base := logger.Init(cfg.Service.Name, cfg.Service.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = base.WithContext(ctx)

	// 2. 初始化 Tracer
	tp, err := tracing.InitTracerProvider(cfg.Service.Name, cfg.Infra.Jaeger.Endpoint, cfg.Infra.Jaeger.Enabled)
	if err != nil {
		return errors.Wrap(err, "init tracer provider")
	}

	// 3. 构建路由并让服务注册自己的依赖
	app := &AppCtx{
		Engine: NewEngine(cfg.Service.Name),
		Config: cfg,
		Tracer: otel.Tracer(cfg.Service.Name),
	}
	if info.RegisterHandlers != nil {
		if err := info.RegisterHandlers(ctx, app); err != nil {
			return errors.Wrap(err, "register handlers")
		}
	}

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Service.Port),
		Handler:      app.Engine,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// 4. HTTP Server 和后台任务共享同一个生命周期
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Ctx(gctx).Info().Int("port", cfg.Service.Port).Msgf("✅ %s listening", cfg.Service.Name)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrapf(err, "listen on %s", server.Addr)
		}
		return nil
	})
	for _, w := range app.workers {
		w := w
		g.Go(func() error {
			if err := w.run(gctx); err != nil {
				return errors.Wrapf(err, "worker %s", w.name)
			}
			return nil
		})
	}

	// 5. 优雅关停
	g.Go(func() error {
		<-gctx.Done()
		logger.Ctx(ctx).Info().Msgf("Shutting down service %s...", cfg.Service.Name)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Ctx(ctx).Error().Err(err).Msg("Error shutting down http server")
		}
		return nil
	})

	runErr := g.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			logger.Ctx(ctx).Error().Err(err).Msg("Error during cleanup")
		}
	}
	// 关闭 Tracer Provider，确保所有缓冲的 trace 都被发送出去
	if err := tracing.Shutdown(shutdownCtx, tp); err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("Error shutting down tracer provider")
	}

	logger.Ctx(ctx).Info().Msgf("Service %s gracefully shut down.", cfg.Service.Name)
	return runErr
}

// NewEngine 创建带有通用中间件、健康检查和指标端点的 gin 引擎。
func NewEngine(serviceName string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(
		gin.Recovery(),
		tracing.Middleware(serviceName),
		requestinfo.Middleware(),
		metrics.Middleware(),
		errorLogger(),
	)
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

// errorLogger 记录 handler 通过 c.Error 挂上的下游错误。
func errorLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		for _, e := range c.Errors {
			logger.Ctx(c.Request.Context()).Error().Err(e.Err).
				Int("status", c.Writer.Status()).
				Str("route", c.FullPath()).
				Msg("request failed")
		}
	}
}
