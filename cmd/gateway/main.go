package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"massa_gateway/internal/app/port"
	"massa_gateway/internal/app/service"
	"massa_gateway/internal/client"
	"massa_gateway/internal/domain/entity"
	"massa_gateway/internal/infrastructure/configloader"
	"massa_gateway/internal/infrastructure/coursestore"
	rpcclient "massa_gateway/internal/infrastructure/network/client"
	networkdefinition "massa_gateway/internal/infrastructure/network/definition"
	"massa_gateway/internal/infrastructure/restapi"
	"massa_gateway/internal/pkg/logger"
	"massa_gateway/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfgPath := configloader.PathFromEnv()
	cfg, err := configloader.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration from %s: %v\n", cfgPath, err)
		os.Exit(1)
	}

	zapLogger, err := logger.New(cfg.Logging.Level, cfg.Server.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize zap logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = zapLogger.Sync() }()
	logger.Init(zapLogger)

	if !cfg.Server.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	zapLogger.Info("Configuration loaded", zap.String("path", cfgPath), zap.String("logLevel", cfg.Logging.Level))

	var (
		m              *metrics.Metrics
		metricsHandler http.Handler
	)
	if !cfg.Metrics.Disabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.New(reg)
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
		zapLogger.Info("Prometheus metrics endpoint enabled", zap.String("path", cfg.Metrics.Path))
	}

	networks := networkdefinition.NewNetworkDefinitionProvider(logger.NewSlogAdapter("component", "networks"), map[entity.NetworkSelector]string{
		entity.Mainnet:  cfg.Networks.MainnetRPCURL,
		entity.Buildnet: cfg.Networks.BuildnetRPCURL,
	})
	rpc := rpcclient.NewMassaClient(networks, rpcclient.Options{
		CallTimeout:         time.Duration(cfg.RpcClient.CallTimeoutMs) * time.Millisecond,
		RateLimit:           cfg.RpcClient.RateLimit,
		BurstLimit:          cfg.RpcClient.BurstLimit,
		MaxIdleConnsPerHost: cfg.RpcClient.MaxIdleConnsPerHost,
	}, m, logger.NewSlogAdapter("component", "rpc"))

	courses, closeCourses := openCourseStore(cfg.CourseStore, zapLogger)
	defer closeCourses()

	goalsClient := client.NewGoalsClient(
		time.Duration(cfg.Goals.RequestTimeoutMillis)*time.Millisecond,
		cfg.Goals.MaxResponseBytes,
		zapLogger,
	)

	handler := restapi.NewFunctionHandler(
		service.NewBalanceService(rpc, logger.NewSlogAdapter("service", "balance")),
		service.NewDatastoreService(rpc, logger.NewSlogAdapter("service", "datastore")),
		service.NewGoalService(courses, goalsClient, m, logger.NewSlogAdapter("service", "goals")),
	)
	router := restapi.SetupRouter(handler, restapi.RouterOptions{
		Logger:            zapLogger.Named("http"),
		Metrics:           m,
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		MetricsPath:       cfg.Metrics.Path,
		MetricsHandler:    metricsHandler,
		EnablePprof:       cfg.Server.Development,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		zapLogger.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Server exiting")
}

// openCourseStore connects to the course database. Without a DSN, or when the
// connection cannot be opened, course lookups fail instead of the process.
func openCourseStore(cfg configloader.CourseStoreConfig, zapLogger *zap.Logger) (port.CourseRepository, func()) {
	if cfg.DSN == "" {
		return coursestore.Unconfigured{}, func() {}
	}

	db, err := coursestore.Open(cfg.DSN)
	if err != nil {
		zapLogger.Error("Failed to open course store, course lookups will fail", zap.Error(err))
		return coursestore.Unconfigured{}, func() {}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		zapLogger.Warn("Course store is not reachable yet", zap.Error(err))
	}

	repo := coursestore.NewPostgresRepository(db)
	ttl := time.Duration(cfg.CacheTTLMinutes) * time.Minute
	zapLogger.Info("Course store ready", zap.Duration("cacheTTL", ttl))
	return coursestore.NewCachedRepository(repo, ttl), func() {
		if err := repo.Close(); err != nil {
			zapLogger.Warn("Failed to close course store", zap.Error(err))
		}
	}
}
