package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"respa-server/internal/infrastructure/config"
)

func TestInitTracer(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.OpenTelemetryConfig
		wantErr string
	}{
		{
			name: "正常系: 無効",
			cfg:  config.OpenTelemetryConfig{Enabled: false},
		},
		{
			name: "正常系: stdout",
			cfg:  config.OpenTelemetryConfig{Enabled: true, TraceExporter: "stdout", ServiceName: "respa-server"},
		},
		{
			name:    "異常系: 未対応のエクスポーター",
			cfg:     config.OpenTelemetryConfig{Enabled: true, TraceExporter: "zipkin", ServiceName: "respa-server"},
			wantErr: "unsupported trace exporter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shutdown, err := InitTracer(&tt.cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, shutdown)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, shutdown)
			assert.NoError(t, shutdown(context.Background()))
		})
	}
}

func TestInitTracer_OTLP(t *testing.T) {
	cfg := &config.OpenTelemetryConfig{
		Enabled:        true,
		TraceExporter:  "otlp",
		OTLPEndpoint:   "localhost:4318",
		OTLPInsecure:   true,
		ServiceName:    "respa-server",
		ServiceVersion: "1.0.0",
	}

	// エクスポーターは遅延接続のため初期化は成功する
	shutdown, err := InitTracer(cfg)
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}

func TestTracer(t *testing.T) {
	tracer := Tracer("test-tracer")
	assert.NotNil(t, tracer)

	_, span := tracer.Start(context.Background(), "test-span")
	assert.NotNil(t, span)
	span.End()
}
