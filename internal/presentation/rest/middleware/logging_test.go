package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace/noop"

	otelinfra "respa-server/internal/infrastructure/observability/otel"
)

func TestLoggingMiddleware(t *testing.T) {
	tests := []struct {
		name        string
		handler     echo.HandlerFunc
		wantMessage string
		wantErr     bool
	}{
		{
			name: "正常系: 完了ログ",
			handler: func(c echo.Context) error {
				c.Set(ContextKeyUserID, "user-1")
				return c.String(http.StatusOK, "ok")
			},
			wantMessage: "HTTP request completed",
		},
		{
			name: "異常系: 失敗ログ",
			handler: func(c echo.Context) error {
				return errors.New("handler failed")
			},
			wantMessage: "HTTP request failed",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := otelinfra.NewLogger(noop.NewTracerProvider().Tracer("test"), otelinfra.WithOutput(&buf))

			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/reservations/1", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetPath("/api/v1/reservations/:id")

			err := LoggingMiddleware(logger)(tt.handler)(c)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Contains(t, buf.String(), `"user_id":"user-1"`)
			}
			assert.Contains(t, buf.String(), tt.wantMessage)
			assert.Contains(t, buf.String(), "/api/v1/reservations/:id")
		})
	}
}
