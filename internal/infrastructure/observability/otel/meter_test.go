package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"respa-server/internal/infrastructure/config"
)

func TestInitMeter(t *testing.T) {
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
			cfg:  config.OpenTelemetryConfig{Enabled: true, MetricsExporter: "stdout", ServiceName: "respa-server"},
		},
		{
			name:    "異常系: 未対応のエクスポーター",
			cfg:     config.OpenTelemetryConfig{Enabled: true, MetricsExporter: "prometheus", ServiceName: "respa-server"},
			wantErr: "unsupported metrics exporter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shutdown, err := InitMeter(&tt.cfg)
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

func TestMeter(t *testing.T) {
	meter := Meter("test-meter")
	require.NotNil(t, meter)

	counter, err := meter.Int64Counter("test_total")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)
}
