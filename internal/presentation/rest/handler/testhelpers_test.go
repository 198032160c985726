package handler

import (
	"io"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/trace/noop"

	otelinfra "respa-server/internal/infrastructure/observability/otel"
	restmiddleware "respa-server/internal/presentation/rest/middleware"
)

// newTestEcho エラーハンドリングミドルウェア付きのEchoを作成
func newTestEcho(mw ...echo.MiddlewareFunc) *echo.Echo {
	logger := otelinfra.NewLogger(noop.NewTracerProvider().Tracer("test"), otelinfra.WithOutput(io.Discard))
	e := echo.New()
	e.Use(restmiddleware.ErrorHandlerMiddleware(logger))
	e.Use(mw...)
	return e
}

func serve(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}
