package interceptor

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"respa-server/internal/application/auth"
	otelinfra "respa-server/internal/infrastructure/observability/otel"
)

type contextKey string

const (
	userIDKey  contextKey = "user_id"
	isStaffKey contextKey = "is_staff"
)

// TokenParser ベアラートークンの検証
type TokenParser interface {
	ParseToken(tokenString string) (*auth.Claims, error)
}

// AuthInterceptor JWT認証インターセプター
func AuthInterceptor(parser TokenParser, logger *otelinfra.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			logger.Warn(ctx, "Missing metadata", nil)
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		authHeaders := md.Get("authorization")
		if len(authHeaders) == 0 {
			logger.Warn(ctx, "Missing authorization header", nil)
			return nil, status.Error(codes.Unauthenticated, "missing authorization header")
		}

		scheme, tokenString, ok := strings.Cut(authHeaders[0], " ")
		if !ok || scheme != "Bearer" || tokenString == "" {
			logger.Warn(ctx, "Invalid authorization header format", nil)
			return nil, status.Error(codes.Unauthenticated, "invalid authorization header format")
		}

		claims, err := parser.ParseToken(tokenString)
		if err != nil {
			logger.Warn(ctx, "Invalid token", map[string]interface{}{
				"error":  err.Error(),
				"method": info.FullMethod,
			})
			return nil, status.Error(codes.Unauthenticated, "invalid or expired token")
		}

		ctx = context.WithValue(ctx, userIDKey, claims.UserID)
		ctx = context.WithValue(ctx, isStaffKey, claims.IsStaff)
		return handler(ctx, req)
	}
}

// ForService 指定したサービスのメソッドにだけインターセプターを適用
func ForService(serviceName string, next grpc.UnaryServerInterceptor) grpc.UnaryServerInterceptor {
	prefix := "/" + serviceName + "/"
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if !strings.HasPrefix(info.FullMethod, prefix) {
			return handler(ctx, req)
		}
		return next(ctx, req, info, handler)
	}
}

// UserIDFromContext 認証済みユーザーIDを返す
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// IsStaffFromContext 認証済みユーザーがスタッフかどうかを返す
func IsStaffFromContext(ctx context.Context) bool {
	isStaff, _ := ctx.Value(isStaffKey).(bool)
	return isStaff
}
