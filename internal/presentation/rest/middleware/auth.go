package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"respa-server/internal/application/auth"
	otelinfra "respa-server/internal/infrastructure/observability/otel"
)

const (
	// ContextKeyUserID 認証済みユーザーIDのコンテキストキー
	ContextKeyUserID = "user_id"
	// ContextKeyIsStaff スタッフ権限のコンテキストキー
	ContextKeyIsStaff = "is_staff"
)

// TokenParser ベアラートークンの検証
type TokenParser interface {
	ParseToken(tokenString string) (*auth.Claims, error)
}

// AuthMiddleware JWT認証ミドルウェア
func AuthMiddleware(parser TokenParser, logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn(ctx, "Missing authorization header", nil)
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Error:   "unauthorized",
					Message: "Missing authorization header",
				})
			}

			scheme, tokenString, ok := strings.Cut(authHeader, " ")
			if !ok || scheme != "Bearer" || tokenString == "" {
				logger.Warn(ctx, "Invalid authorization header format", nil)
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Error:   "unauthorized",
					Message: "Invalid authorization header format",
				})
			}

			claims, err := parser.ParseToken(tokenString)
			if err != nil {
				logger.Warn(ctx, "Invalid token", map[string]interface{}{
					"error": err.Error(),
				})
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Error:   "unauthorized",
					Message: err.Error(),
				})
			}

			c.Set(ContextKeyUserID, claims.UserID)
			c.Set(ContextKeyIsStaff, claims.IsStaff)
			return next(c)
		}
	}
}

// UserID 認証済みユーザーIDを返す
func UserID(c echo.Context) (string, bool) {
	userID, ok := c.Get(ContextKeyUserID).(string)
	return userID, ok && userID != ""
}

// IsStaff 認証済みユーザーがスタッフかどうかを返す
func IsStaff(c echo.Context) bool {
	isStaff, _ := c.Get(ContextKeyIsStaff).(bool)
	return isStaff
}
