// Package http 提供薪资预测HTTP接口
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"salarypredict/config"
	"salarypredict/monitoring"
)

// Server HTTP服务器
type Server struct {
	server *http.Server
	config config.HTTPConfig
	logger *zap.Logger
}

// Deps 路由依赖，Hub和Metrics为nil时不注册对应路由
type Deps struct {
	Handlers *Handlers
	Hub      *monitoring.Hub
	Metrics  *monitoring.Metrics
	Logger   *zap.Logger
}

// NewRouter 创建路由并注册中间件链和所有处理器
func NewRouter(cfg config.HTTPConfig, deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}
	r.Use(RecoveryMiddleware)
	r.Use(SecurityHeadersMiddleware)
	r.Use(CORSMiddleware(cfg.AllowedOrigins))

	// 长连接和指标采集不受请求超时限制
	if deps.Hub != nil {
		r.Get("/api/ws/predictions", deps.Hub.ServeWS)
	}
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	h := deps.Handlers
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
		r.Use(RequestSizeMiddleware(cfg.MaxBodyBytes))

		r.Get("/api/health", h.handleHealth)
		r.Get("/api/model", h.handleModel)
		r.Get("/api/employees", h.handleEmployees)
		r.Get("/api/dashboard", h.handleDashboard)
		r.Post("/predict", h.handlePredict)
	})

	return r
}

func NewServer(cfg config.HTTPConfig, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           NewRouter(cfg, deps),
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       120 * time.Second,
		},
		config: cfg,
		logger: logger,
	}
}

// Start 启动服务器，阻塞直到Stop
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server",
		zap.String("addr", s.server.Addr),
		zap.String("ws_endpoint", "/api/ws/predictions"),
	)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop 在宽限期内优雅关闭服务器
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownGrace)
	defer cancel()

	s.logger.Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

func (s *Server) Addr() string {
	return s.server.Addr
}
