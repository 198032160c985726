package rest

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	authapp "respa-server/internal/application/auth"
	"respa-server/internal/infrastructure/config"
	otelinfra "respa-server/internal/infrastructure/observability/otel"
	"respa-server/internal/presentation/rest/handler"
	restmiddleware "respa-server/internal/presentation/rest/middleware"
)

// Router REST APIルーター
type Router struct {
	echo               *echo.Echo
	authHandler        *handler.AuthHandler
	reservationHandler *handler.ReservationHandler
	purchaseHandler    *handler.PurchaseHandler
	adminHandler       *handler.AdminHandler
}

// NewRouter 新しいRouterを作成
func NewRouter(
	cfg *config.Config,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
	authService *authapp.AuthApplicationService,
	reservationService handler.ReservationService,
	purchaseService handler.PurchaseService,
	sweeper handler.Sweeper,
	templates handler.TemplateService,
) (*Router, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Server.IdleTimeout = cfg.Server.IdleTimeout

	// エラーレスポンスはエラーハンドリングミドルウェアで書き込む
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
		}
		_ = c.JSON(code, restmiddleware.ErrorResponse{
			Error:   "error",
			Message: http.StatusText(code),
		})
	}

	setupMiddleware(e, logger, metrics)

	r := &Router{
		echo:               e,
		authHandler:        handler.NewAuthHandler(authService),
		reservationHandler: handler.NewReservationHandler(reservationService),
		purchaseHandler:    handler.NewPurchaseHandler(purchaseService),
		adminHandler:       handler.NewAdminHandler(sweeper, templates),
	}
	r.setupRoutes(cfg, logger, authService)

	SetupSwagger(e)

	return r, nil
}

// setupMiddleware ミドルウェアを設定
func setupMiddleware(e *echo.Echo, logger *otelinfra.Logger, metrics *otelinfra.Metrics) {
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-API-Key"},
	}))

	e.Use(middleware.RequestID())
	e.Use(restmiddleware.SecurityHeadersMiddleware())
	e.Use(restmiddleware.TracingMiddleware())
	e.Use(restmiddleware.LoggingMiddleware(logger))
	e.Use(restmiddleware.MetricsMiddleware(metrics))
	e.Use(restmiddleware.ErrorHandlerMiddleware(logger))
}

// setupRoutes ルーティングを設定
func (r *Router) setupRoutes(cfg *config.Config, logger *otelinfra.Logger, authService *authapp.AuthApplicationService) {
	e := r.echo

	// ヘルスチェック（認証不要）
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// 決済サービスからの支払い通知。チェックサムで検証するため認証不要
	e.POST("/v1/purchase/notify", r.purchaseHandler.Notify)

	api := e.Group("/api/v1")

	// トークン発行は管理APIキーで保護
	api.POST("/auth/token", r.authHandler.GenerateToken, restmiddleware.APIKeyMiddleware(&cfg.AdminAPI, logger))

	authGroup := api.Group("", restmiddleware.AuthMiddleware(authService, logger))
	authGroup.POST("/reservations", r.reservationHandler.CreateReservation)
	authGroup.GET("/reservations/:id", r.reservationHandler.GetReservation)
	authGroup.POST("/reservations/:id/state", r.reservationHandler.SetState)
	authGroup.GET("/purchases/:id", r.purchaseHandler.GetPurchase)

	admin := api.Group("/admin", restmiddleware.APIKeyMiddleware(&cfg.AdminAPI, logger))
	admin.POST("/sweep", r.adminHandler.Sweep)
	admin.PUT("/notification-templates/:type", r.adminHandler.UpdateTemplate)
}

// Start サーバーを起動
func (r *Router) Start(address string) error {
	return r.echo.Start(address)
}

// Shutdown 処理中のリクエストを待ってサーバーを停止
func (r *Router) Shutdown(ctx context.Context) error {
	return r.echo.Shutdown(ctx)
}
