package handler

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/bookshelf/internal/metrics"
	"github.com/hitoshi/bookshelf/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	IdentityResolver  middleware.IdentityResolver
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	HSTS              bool

	// メトリクス（nilの場合は無効）
	Metrics         middleware.HTTPMetricsRecorder
	MetricsGatherer prometheus.Gatherer

	// ヘルスチェック
	HealthChecker HealthChecker

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 書籍
	LibraryService LibraryServiceInterface
	MaxBodyBytes   int64

	// ビルド済みクライアント
	StaticFS fs.FS
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → Metrics → SecurityHeaders → CORS
//
// 認証が必要なルートにはさらに AuthGate → RateLimit(General) を適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware(deps.HSTS))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	userHandler := NewUserHandler()
	libraryHandler := NewLibraryHandler(deps.LibraryService, deps.MaxBodyBytes)

	// --- 認証不要のルート ---

	if deps.HealthChecker != nil {
		r.Get("/health", NewHealthHandler(deps.HealthChecker).Check)
	}
	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	r.Route("/api", func(r chi.Router) {
		// OAuthフロー
		r.Get("/auth/google", authHandler.Login)
		r.Get("/auth/google/callback", authHandler.Callback)
		r.Get("/auth/logout", authHandler.Logout)
		r.Post("/auth/logout", authHandler.Logout)

		// --- 認証が必要なルート ---
		// ミドルウェアスタック: AuthGate → RateLimit(General)
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewAuthGate(deps.IdentityResolver))
			r.Use(deps.RateLimiter.GeneralMiddleware())

			r.Get("/me", userHandler.Me)

			r.Get("/library", libraryHandler.List)
			// POST /api/library - 書籍登録（登録専用レート制限を追加）
			r.With(deps.RateLimiter.LibraryInsertMiddleware()).Post("/library", libraryHandler.Insert)
		})

		r.NotFound(apiNotFound)
		r.MethodNotAllowed(apiMethodNotAllowed)
	})

	// APIに該当しないパスはビルド済みクライアントを返す
	if deps.StaticFS != nil {
		static := NewStaticHandler(deps.StaticFS)
		r.NotFound(static.ServeHTTP)
		r.MethodNotAllowed(static.ServeHTTP)
	}

	return r
}
