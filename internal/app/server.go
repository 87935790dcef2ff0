package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/hitoshi/bookshelf/internal/auth"
	"github.com/hitoshi/bookshelf/internal/config"
	"github.com/hitoshi/bookshelf/internal/handler"
	"github.com/hitoshi/bookshelf/internal/library"
	"github.com/hitoshi/bookshelf/internal/metrics"
	"github.com/hitoshi/bookshelf/internal/middleware"
	"github.com/hitoshi/bookshelf/internal/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 30 * time.Second

// Server はプロセス全体で共有するハンドルをまとめたAPIサーバー。
// DB接続、HTTPサーバー、レートリミッター、メトリクスレジストリを保持する。
type Server struct {
	db          *sql.DB
	httpServer  *http.Server
	rateLimiter *middleware.RateLimiter
	registry    *prometheus.Registry
	logger      *slog.Logger
}

// NewServer は設定とDB接続から全依存関係をワイヤリングしてServerを生成する。
// DB接続の所有権はServerに移り、Closeで閉じられる。
func NewServer(cfg *config.Config, db *sql.DB, logger *slog.Logger) *Server {
	// 1. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	bookRepo := repository.NewPostgresBookRepo(db)

	// 2. メトリクスの初期化（無効時はnilのまま）
	var (
		registry      *prometheus.Registry
		authMetrics   auth.MetricsRecorder
		bookMetrics   library.MetricsRecorder
		httpMetrics   middleware.HTTPMetricsRecorder
		metricsSource prometheus.Gatherer
	)
	if cfg.MetricsEnabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		collector := metrics.NewCollector(registry)
		authMetrics = collector
		bookMetrics = collector
		httpMetrics = collector
		metricsSource = registry
	}

	// 3. ドメインサービスの初期化
	oauthProvider := auth.NewGoogleOAuthProvider(auth.GoogleOAuthConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
	})
	authService := auth.NewService(oauthProvider, userRepo, authMetrics)
	libraryService := library.NewService(bookRepo, bookMetrics)

	// 4. ルーターの構築
	rateLimiter := middleware.NewRateLimiter(
		middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitLibraryInsert),
	)

	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            logger,
		IdentityResolver:  auth.NewBearerStrategy(authService),
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		HSTS:              cfg.CookieSecure,

		Metrics:         httpMetrics,
		MetricsGatherer: metricsSource,

		HealthChecker: db,

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			BaseURL:      cfg.BaseURL,
			CookieDomain: cfg.CookieDomain,
			CookieSecure: cfg.CookieSecure,
		},

		LibraryService: libraryService,
		MaxBodyBytes:   cfg.MaxBodyBytes,

		StaticFS: os.DirFS(cfg.StaticDir),
	})

	return &Server{
		db: db,
		httpServer: &http.Server{
			Addr:         ":" + cfg.ServerPort,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		rateLimiter: rateLimiter,
		registry:    registry,
		logger:      logger,
	}
}

// Handler はルーティング済みのHTTPハンドラーを返す。
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run はHTTPサーバーを起動し、ctxがキャンセルされるとグレースフルシャットダウンする。
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server starting", slog.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("API server stopped gracefully")
	return nil
}

// Close はレートリミッターのクリーンアップを停止し、DB接続を閉じる。
func (s *Server) Close() error {
	s.rateLimiter.Stop()
	return s.db.Close()
}
