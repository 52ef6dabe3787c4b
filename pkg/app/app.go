// Package app 提供应用程序的初始化、路由装配和生命周期管理.
package app

import (
	contextPkg "context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yeisme/tmfvault/pkg/configs"
	"github.com/yeisme/tmfvault/pkg/context"
	"github.com/yeisme/tmfvault/pkg/internal/jobs"
	"github.com/yeisme/tmfvault/pkg/internal/model"
	"github.com/yeisme/tmfvault/pkg/internal/router"
	"github.com/yeisme/tmfvault/pkg/internal/storage"
	"github.com/yeisme/tmfvault/pkg/log"
	"github.com/yeisme/tmfvault/pkg/metrics"
	"github.com/yeisme/tmfvault/pkg/middleware"
	"github.com/yeisme/tmfvault/pkg/rule"
	"github.com/yeisme/tmfvault/pkg/scheduler"
	"github.com/yeisme/tmfvault/pkg/tracing"
)

const shutdownTimeout = 10 * time.Second

// App 聚合 HTTP 引擎、存储和后台调度器.
type App struct {
	Engine    *gin.Engine
	config    *configs.AppConfig
	manager   *storage.Manager
	scheduler *scheduler.Scheduler
}

// NewApp 按配置装配应用. 任何初始化失败都是致命错误.
func NewApp(configPath string) *App {
	ctx := contextPkg.Background()

	// 初始化配置
	if err := configs.InitConfig(configPath); err != nil {
		fmt.Printf("Error initializing config: %v\n", err)
		os.Exit(1)
	}

	config := configs.GetConfig()

	log.Init()

	// 认证开启但没有签名密钥，拒绝启动而不是签发不安全令牌
	if config.Auth.Enabled && config.Auth.Secret == "" {
		fmt.Println("Error: auth is enabled but auth.secret is empty")
		os.Exit(1)
	}

	// 请求体校验使用 rule 标签
	rule.Engine()

	// 初始化追踪
	if err := tracing.InitTracer(config.Tracing); err != nil {
		fmt.Printf("Error initializing tracing: %v\n", err)
		os.Exit(1)
	}

	// 初始化监控
	if err := metrics.InitMetrics(config.Metrics); err != nil {
		fmt.Printf("Error initializing metrics: %v\n", err)
		os.Exit(1)
	}

	manager, err := storage.Init(ctx)
	if err != nil {
		fmt.Printf("Error initializing storage: %v\n", err)
		os.Exit(1)
	}

	if err := manager.GetDBClient().AutoMigrate(model.AllModels()...); err != nil {
		fmt.Printf("Error migrating database schema: %v\n", err)
		os.Exit(1)
	}

	l := log.Logger()
	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	if !config.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.StorageMiddleware(manager),
		middleware.CORSMiddleware(config.Server),
		middleware.GinLoggerMiddleware(),
		middleware.TracingMiddleware(),
		middleware.PrometheusMiddleware(),
		middleware.RateLimitMiddleware(config.RateLimit),
		middleware.CircuitBreakerMiddleware(config.CircuitBreaker),
		middleware.AuthMiddleware(config.Auth),
	)

	router.RegisterAll(engine)
	router.RegisterSwaggerRoute(engine)

	app := &App{
		Engine:  engine,
		config:  config,
		manager: manager,
	}

	if config.Metrics.Enabled {
		app.startMetricsServer()
	}

	if config.Jobs.ReconcileEnabled {
		app.startScheduler(context.WithStorageManager(ctx, manager))
	}

	return app
}

// Run 启动 HTTP 服务并阻塞到收到终止信号.
func (a *App) Run() error {
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port),
		Handler:           a.Engine,
		ReadHeaderTimeout: a.config.Server.GetTimeoutDuration(),
	}

	errCh := make(chan error, 1)

	go func() {
		log.Logger().Info().Str("addr", srv.Addr).Msg("http server listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Logger().Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := contextPkg.WithTimeout(contextPkg.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Logger().Error().Err(err).Msg("http server shutdown failed")
	}

	a.close(ctx)

	return nil
}

// startMetricsServer 在独立端口暴露 /metrics 和可选 pprof.
func (a *App) startMetricsServer() {
	debugEngine := gin.New()
	debugEngine.Use(gin.Recovery())

	if err := metrics.StartMetricsServer(a.config.Metrics, debugEngine); err != nil {
		log.Logger().Error().Err(err).Msg("register metrics endpoints failed")
		return
	}

	go func() {
		if err := debugEngine.Run(a.config.Metrics.Endpoint); err != nil {
			log.Logger().Error().Err(err).Msg("metrics server stopped")
		}
	}()
}

// startScheduler 启动后台对账任务.
func (a *App) startScheduler(ctx contextPkg.Context) {
	s, err := scheduler.NewScheduler()
	if err != nil {
		log.Logger().Error().Err(err).Msg("create scheduler failed")
		return
	}

	err = s.AddInterval(ctx, "reconcile-document-references", a.config.Jobs.ReconcileInterval,
		func(ctx contextPkg.Context) {
			if _, err := jobs.ReconcileOrphans(ctx); err != nil {
				log.Logger().Error().Err(err).Msg("reconciliation run failed")
			}
		})
	if err != nil {
		log.Logger().Error().Err(err).Msg("schedule reconciliation job failed")
		return
	}

	s.Start()
	a.scheduler = s
}

// close 释放后台调度器和存储资源.
func (a *App) close(ctx contextPkg.Context) {
	if a.scheduler != nil {
		if err := a.scheduler.Stop(); err != nil {
			log.Logger().Error().Err(err).Msg("scheduler shutdown failed")
		}
	}

	if err := tracing.ShutdownTracer(ctx); err != nil {
		log.Logger().Error().Err(err).Msg("tracer shutdown failed")
	}

	if err := a.manager.Close(); err != nil {
		log.Logger().Error().Err(err).Msg("storage shutdown failed")
	}
}
