package interceptor

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"

	"respa-server/internal/application/auth"
	"respa-server/internal/infrastructure/config"
	otelinfra "respa-server/internal/infrastructure/observability/otel"
)

const testMethod = "/respa.v1.ReservationService/GetReservation"

func newTestLogger() *otelinfra.Logger {
	return otelinfra.NewLogger(noop.NewTracerProvider().Tracer("test"), otelinfra.WithOutput(io.Discard))
}

func newTestAuthService() *auth.AuthApplicationService {
	return auth.NewAuthApplicationService(&config.JWTConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
		Issuer:     "test-issuer",
	}, newTestLogger())
}

func newTestToken(t *testing.T, s *auth.AuthApplicationService, userID string, isStaff bool) string {
	t.Helper()
	resp, err := s.GenerateToken(context.Background(), &auth.GenerateTokenRequest{UserID: userID, IsStaff: isStaff})
	require.NoError(t, err)
	return resp.Token
}

func successHandler(ctx context.Context, req interface{}) (interface{}, error) {
	return "success", nil
}

func testInfo(method string) *grpc.UnaryServerInfo {
	return &grpc.UnaryServerInfo{FullMethod: method}
}
