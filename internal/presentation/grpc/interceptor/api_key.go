package interceptor

import (
	"context"
	"crypto/subtle"
	"net"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"respa-server/internal/infrastructure/config"
	otelinfra "respa-server/internal/infrastructure/observability/otel"
)

// APIKeyInterceptor APIキー認証インターセプター
func APIKeyInterceptor(cfg *config.AdminAPIConfig, logger *otelinfra.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if !cfg.Enabled {
			logger.Warn(ctx, "Admin API is disabled", nil)
			return nil, status.Error(codes.PermissionDenied, "admin API is disabled")
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			logger.Warn(ctx, "Missing metadata", nil)
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		apiKeys := md.Get("x-api-key")
		if len(apiKeys) == 0 || apiKeys[0] == "" {
			logger.Warn(ctx, "Missing X-API-Key metadata", nil)
			return nil, status.Error(codes.Unauthenticated, "missing X-API-Key metadata")
		}

		if subtle.ConstantTimeCompare([]byte(apiKeys[0]), []byte(cfg.APIKey)) != 1 {
			logger.Warn(ctx, "Invalid API key", map[string]interface{}{
				"method": info.FullMethod,
			})
			return nil, status.Error(codes.Unauthenticated, "invalid API key")
		}

		if len(cfg.AllowedIPs) > 0 {
			clientIP := clientIPFromContext(ctx, md)
			if !isIPAllowed(clientIP, cfg.AllowedIPs) {
				logger.Warn(ctx, "IP address not allowed", map[string]interface{}{
					"ip": clientIP,
				})
				return nil, status.Error(codes.PermissionDenied, "IP address not allowed")
			}
		}

		return handler(ctx, req)
	}
}

// clientIPFromContext プロキシのメタデータ、なければ接続元アドレスからIPを取得
func clientIPFromContext(ctx context.Context, md metadata.MD) string {
	if forwardedFor := md.Get("x-forwarded-for"); len(forwardedFor) > 0 {
		first, _, _ := strings.Cut(forwardedFor[0], ",")
		return strings.TrimSpace(first)
	}
	if realIP := md.Get("x-real-ip"); len(realIP) > 0 {
		return realIP[0]
	}
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		host, _, err := net.SplitHostPort(p.Addr.String())
		if err == nil {
			return host
		}
		return p.Addr.String()
	}
	return ""
}

// isIPAllowed IPアドレスが許可リスト（IPまたはCIDR）に含まれているかチェック
func isIPAllowed(ip string, allowedIPs []string) bool {
	parsed := net.ParseIP(ip)
	for _, allowed := range allowedIPs {
		if ip == allowed {
			return true
		}
		if _, network, err := net.ParseCIDR(allowed); err == nil && parsed != nil && network.Contains(parsed) {
			return true
		}
	}
	return false
}
