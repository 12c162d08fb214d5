// LoanApplicationService 主程序
// 功能：贷款申请的创建、审批与按状态分页查询，自动审批的负债能力决策经 Kafka 回流
// 架构：DDD 分层 + Gin + GORM + Redis + Kafka
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/wyfcoding/loanapplication/internal/loanapplication/application"
	"github.com/wyfcoding/loanapplication/internal/loanapplication/domain"
	"github.com/wyfcoding/loanapplication/internal/loanapplication/infrastructure/client"
	"github.com/wyfcoding/loanapplication/internal/loanapplication/infrastructure/clock"
	"github.com/wyfcoding/loanapplication/internal/loanapplication/infrastructure/messaging"
	"github.com/wyfcoding/loanapplication/internal/loanapplication/infrastructure/persistence/mysql"
	"github.com/wyfcoding/loanapplication/internal/loanapplication/infrastructure/persistence/redis"
	"github.com/wyfcoding/loanapplication/internal/loanapplication/interfaces/consumer"
	httphandler "github.com/wyfcoding/loanapplication/internal/loanapplication/interfaces/http"
	"github.com/wyfcoding/loanapplication/pkg/cache"
	"github.com/wyfcoding/loanapplication/pkg/config"
	"github.com/wyfcoding/loanapplication/pkg/db"
	"github.com/wyfcoding/loanapplication/pkg/logger"
	"github.com/wyfcoding/loanapplication/pkg/metrics"
	"github.com/wyfcoding/loanapplication/pkg/middleware"
	"github.com/wyfcoding/loanapplication/pkg/mq"
	"github.com/wyfcoding/loanapplication/pkg/ratelimit"
	"go.uber.org/multierr"
)

func main() {
	configPath := flag.String("config", "configs/loanapplication/config.toml", "config file path")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Starting LoanApplicationService",
		"service", cfg.ServiceName,
		"version", cfg.Version,
		"environment", cfg.Environment,
	)

	if err := run(ctx, cfg); err != nil {
		logger.Fatal(ctx, "LoanApplicationService exited with error", "error", err)
	}
	logger.Info(context.Background(), "LoanApplicationService stopped")
}

func run(ctx context.Context, cfg *config.Config) (err error) {
	var closers []func() error
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			err = multierr.Append(err, closers[i]())
		}
	}()

	// 3. 指标
	m := metrics.New(cfg.ServiceName)
	if err := m.Register(prometheus.DefaultRegisterer); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	// 4. 数据库
	database, err := db.Init(ctx, db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		return err
	}
	closers = append(closers, database.Close)

	if cfg.Database.AutoMigrate {
		if err := mysql.AutoMigrate(database.DB); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		if err := mysql.SeedStates(ctx, database.DB); err != nil {
			return fmt.Errorf("seed states: %w", err)
		}
	}

	// 5. Redis
	redisCache, err := cache.New(ctx, cache.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxPoolSize:  cfg.Redis.MaxPoolSize,
		ConnTimeout:  cfg.Redis.ConnTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		return err
	}
	closers = append(closers, redisCache.Close)

	// 6. Kafka
	mqCfg := mq.Config{
		Brokers:        cfg.Kafka.Brokers,
		GroupID:        cfg.Kafka.GroupID,
		SessionTimeout: cfg.Kafka.SessionTimeout,
		MaxAttempts:    cfg.Kafka.MaxAttempts,
		WriteBackoff:   cfg.Kafka.WriteBackoff,
	}
	producer := mq.NewProducer(mqCfg)
	closers = append(closers, producer.Close)

	// 7. 仓储与外部依赖
	var loanTypes domain.LoanTypeRepository = mysql.NewLoanTypeRepository(database.DB)
	if cfg.Cache.LoanTypeTTL > 0 {
		loanTypes = redis.NewCachedLoanTypeRepository(loanTypes, redisCache, time.Duration(cfg.Cache.LoanTypeTTL)*time.Second)
	}
	apps := mysql.NewLoanApplicationRepository(database.DB)
	states := mysql.NewStateRepository(database.DB)

	users := client.NewUserClient(client.Config{
		BaseURL:            cfg.UserService.BaseURL,
		Timeout:            time.Duration(cfg.UserService.Timeout) * time.Millisecond,
		BreakerFailures:    uint32(cfg.UserService.BreakerFailures),
		BreakerOpenTimeout: time.Duration(cfg.UserService.BreakerOpenSeconds) * time.Second,
	})
	sender := messaging.NewKafkaNotificationSender(producer, cfg.Kafka.CapacityTopic, cfg.Kafka.NotificationTopic, m)

	businessClock, err := clock.New(cfg.Business.Timezone)
	if err != nil {
		return err
	}

	// 8. 应用服务
	svc := application.NewLoanApplicationService(
		application.NewLoanApplicationCommandService(apps, loanTypes, users, sender, businessClock, m),
		application.NewLoanApplicationQueryService(apps, states, users),
	)

	// 9. 启动服务
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errCh := make(chan error, 3)

	httpServer := newHTTPServer(cfg, svc, m, ratelimit.NewRedisRateLimiter(redisCache.Client()))
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info(runCtx, "Starting HTTP server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metricsServer = metrics.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, prometheus.DefaultGatherer)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := metricsServer.Start(); err != nil {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	if cfg.Kafka.ConsumerEnabled {
		decisions := mq.NewConsumer(mqCfg, cfg.Kafka.DecisionTopic, mq.NewDeadLetterQueue(producer, cfg.Kafka.DeadLetterTopic))
		closers = append(closers, decisions.Close)

		handler := consumer.NewDecisionHandler(svc, m)
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Info(runCtx, "Starting decision consumer", "topic", cfg.Kafka.DecisionTopic)
			if err := decisions.Run(runCtx, handler.Handle); err != nil {
				errCh <- fmt.Errorf("decision consumer: %w", err)
			}
		}()
	}

	// 10. 优雅关停
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info(context.Background(), "Shutting down LoanApplicationService")
	case runErr = <-errCh:
		logger.Error(context.Background(), "Component failed, shutting down", "error", runErr)
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownTimeout)*time.Second)
	defer shutdownCancel()

	runErr = multierr.Append(runErr, httpServer.Shutdown(shutdownCtx))
	if metricsServer != nil {
		runErr = multierr.Append(runErr, metricsServer.Shutdown(shutdownCtx))
	}
	wg.Wait()
	return runErr
}

func newHTTPServer(cfg *config.Config, svc httphandler.LoanApplicationService, m *metrics.Metrics, limiter ratelimit.RateLimiter) *http.Server {
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.GinRecoveryMiddleware())
	router.Use(middleware.GinLoggingMiddleware())
	router.Use(middleware.GinMetricsMiddleware(m))
	router.Use(middleware.RateLimitMiddleware(limiter, cfg.RateLimit))

	var submitGuards []gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		submitGuards = append(submitGuards, middleware.SubmissionRateLimitMiddleware(limiter, ratelimit.PerMinute(cfg.RateLimit.SubmissionsPerMinute, 0)))
	}
	handler := httphandler.NewLoanApplicationHandler(svc, middleware.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Enabled), submitGuards...)
	handler.RegisterRoutes(&router.RouterGroup)

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   cfg.ServiceName,
			"timestamp": time.Now().Unix(),
		})
	})

	return &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}
}
