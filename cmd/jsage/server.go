package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/jsonsage/api/handlers"
	"github.com/BaSui01/jsonsage/config"
	"github.com/BaSui01/jsonsage/internal/metrics"
	"github.com/BaSui01/jsonsage/internal/server"
	"github.com/BaSui01/jsonsage/internal/telemetry"
	"github.com/BaSui01/jsonsage/internal/tlsutil"
	"github.com/BaSui01/jsonsage/llm"
	"github.com/BaSui01/jsonsage/pipeline"
)

// skipAuthPaths 探针与版本端点不需要 API Key
var skipAuthPaths = []string{"/health", "/healthz", "/ready", "/version"}

// =============================================================================
// 🖥️ Server 结构
// =============================================================================

// Server 是 jsage serve 的主服务器
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	provider  llm.Provider
	facade    *pipeline.Facade
	registry  *prometheus.Registry
	collector *metrics.Collector

	httpManager    *server.Manager
	metricsManager *server.Manager
}

// NewServer 装配指标、管道门面与 handlers，不启动监听
func NewServer(a *app, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector("jsonsage", reg, logger)

	provider := a.newProvider(cfg, logger)
	facade, err := a.buildFacade(cfg, provider, logger, collector)
	if err != nil {
		return nil, err
	}
	collector.WatchCacheSize(facade.Cache().Len)

	return &Server{
		cfg:       cfg,
		logger:    logger,
		provider:  provider,
		facade:    facade,
		registry:  reg,
		collector: collector,
	}, nil
}

// Handler 构建 API 路由与中间件链。ctx 控制限流器的后台清理。
func (s *Server) Handler(ctx context.Context) http.Handler {
	health := handlers.NewHealthHandler(Version, s.logger)
	if hc, ok := s.provider.(llm.HealthChecker); ok {
		health.RegisterCheck(handlers.NewProviderHealthCheck(s.provider.Name(), hc))
	}
	health.RegisterCheck(handlers.NewFuncHealthCheck("cache", func(context.Context) error {
		if n, limit := s.facade.Cache().Len(), s.cfg.Cache.MaxSize; n > limit {
			return fmt.Errorf("cache holds %d entries, limit %d", n, limit)
		}
		return nil
	}))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", health.HandleHealth)
	mux.HandleFunc("GET /healthz", health.HandleHealth)
	mux.HandleFunc("GET /ready", health.HandleReady)
	mux.HandleFunc("GET /version", health.HandleVersion(BuildTime, GitCommit))
	handlers.NewSchemaHandler(s.facade, s.logger).Register(mux)

	chain := []Middleware{
		Recovery(s.logger),
		RequestID(),
		OTelTracing(),
		SecurityHeaders(),
		RequestLogger(s.logger),
		MetricsMiddleware(s.collector),
	}
	if s.cfg.Server.RateLimitRPS > 0 {
		chain = append(chain, RateLimiter(ctx, s.cfg.Server.RateLimitRPS, s.cfg.Server.RateLimitBurst, s.logger))
	}
	if len(s.cfg.Server.APIKeys) > 0 {
		chain = append(chain, APIKeyAuth(s.cfg.Server.APIKeys, skipAuthPaths, s.logger))
	}
	if s.cfg.Server.MaxBodyBytes > 0 {
		chain = append(chain, BodyLimit(s.cfg.Server.MaxBodyBytes))
	}
	return Chain(mux, chain...)
}

// MetricsHandler 暴露 Prometheus 指标
func (s *Server) MetricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry}))
	return mux
}

// =============================================================================
// 🚀 启动与关闭
// =============================================================================

// Start 启动 API 与指标服务器（非阻塞）
func (s *Server) Start(ctx context.Context) error {
	tlsCfg, err := tlsutil.ServerTLSConfig(s.cfg.Server.TLSCertFile, s.cfg.Server.TLSKeyFile)
	if err != nil {
		return err
	}

	s.httpManager = server.NewManager("api", s.Handler(ctx), server.Config{
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.HTTPPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		IdleTimeout:     2 * s.cfg.Server.ReadTimeout,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
		TLS:             tlsCfg,
	}, s.logger)
	if err := s.httpManager.Start(); err != nil {
		return err
	}

	if s.cfg.Server.MetricsPort > 0 {
		mcfg := server.DefaultConfig()
		mcfg.Addr = fmt.Sprintf(":%d", s.cfg.Server.MetricsPort)
		s.metricsManager = server.NewManager("metrics", s.MetricsHandler(), mcfg, s.logger)
		if err := s.metricsManager.Start(); err != nil {
			_ = s.httpManager.Shutdown(context.Background())
			return err
		}
	}

	go s.facade.RunCleanup(ctx, s.cfg.Cache.CleanupInterval)

	s.logger.Info("all servers started",
		zap.String("addr", s.httpManager.Addr()),
		zap.Int("metrics_port", s.cfg.Server.MetricsPort),
		zap.Bool("tls", tlsCfg != nil),
		zap.Bool("auth", len(s.cfg.Server.APIKeys) > 0),
	)
	return nil
}

// Wait 阻塞到 ctx 结束或任一服务器出错，然后关闭全部服务器
func (s *Server) Wait(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.httpManager.Wait(gctx) })
	if s.metricsManager != nil {
		g.Go(func() error { return s.metricsManager.Wait(gctx) })
	}
	return g.Wait()
}

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runServe(cmd.Context())
		},
	}
}

func (a *app) runServe(parent context.Context) (err error) {
	cfg, logger, err := a.load(true)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	if err := cfg.RequireCredential(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Init(ctx, cfg.Telemetry, Version, logger)
	if err != nil {
		logger.Warn("telemetry disabled", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		err = errors.Join(err, tel.Shutdown(shutdownCtx))
	}()

	srv, err := NewServer(a, cfg, logger)
	if err != nil {
		return err
	}
	if err := srv.Start(ctx); err != nil {
		return err
	}
	err = srv.Wait(ctx)
	logger.Info("server stopped")
	return err
}
