package middleware

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	otelinfra "respa-server/internal/infrastructure/observability/otel"
)

func newTestLogger() *otelinfra.Logger {
	return otelinfra.NewLogger(noop.NewTracerProvider().Tracer("test"), otelinfra.WithOutput(io.Discard))
}

func newTestMetrics(t *testing.T) *otelinfra.Metrics {
	t.Helper()
	metrics, err := otelinfra.NewMetrics("test-meter")
	require.NoError(t, err)
	return metrics
}
