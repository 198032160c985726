package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"respa-server/internal/domain/notification"
	"respa-server/internal/domain/purchase"
	"respa-server/internal/domain/reservation"
	"respa-server/internal/domain/resource"
	"respa-server/internal/infrastructure/ceepos"
	otelinfra "respa-server/internal/infrastructure/observability/otel"
)

// ErrorResponse エラーレスポンス
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// errorMapping ドメインエラーとHTTPレスポンスの対応
type errorMapping struct {
	target error
	status int
	code   string
	log    string
}

var errorMappings = []errorMapping{
	{reservation.ErrReservationNotFound, http.StatusNotFound, "reservation_not_found", "Reservation not found"},
	{resource.ErrResourceNotFound, http.StatusNotFound, "resource_not_found", "Resource not found"},
	{purchase.ErrPurchaseNotFound, http.StatusNotFound, "purchase_not_found", "Purchase not found"},
	{notification.ErrTemplateNotFound, http.StatusNotFound, "template_not_found", "Notification template not found"},
	{purchase.ErrInvalidNotificationHash, http.StatusBadRequest, "invalid_notification_hash", "Invalid payment notification hash"},
	{purchase.ErrCallbackAlreadyReturned, http.StatusConflict, "callback_already_returned", "Payment callback already returned"},
	{purchase.ErrAlreadyFinished, http.StatusConflict, "purchase_already_finished", "Purchase already finished"},
	{reservation.ErrOverlappingReservation, http.StatusConflict, "overlapping_reservation", "Overlapping reservation"},
	{reservation.ErrInvalidStateTransition, http.StatusBadRequest, "invalid_state", "Invalid state transition"},
	{reservation.ErrEndBeforeBegin, http.StatusBadRequest, "invalid_reservation", "Invalid reservation period"},
	{reservation.ErrTooShort, http.StatusBadRequest, "invalid_reservation", "Reservation too short"},
	{reservation.ErrInvalidReservation, http.StatusBadRequest, "invalid_reservation", "Invalid reservation"},
	{resource.ErrInvalidAccessCode, http.StatusBadRequest, "invalid_access_code", "Invalid access code"},
	{notification.ErrInvalidTemplate, http.StatusBadRequest, "invalid_template", "Invalid notification template"},
}

// ErrorHandlerMiddleware エラーハンドリングミドルウェア
func ErrorHandlerMiddleware(logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}
			return handleError(c, err, logger)
		}
	}
}

// handleError エラーを処理して適切なHTTPレスポンスを返す
func handleError(c echo.Context, err error, logger *otelinfra.Logger) error {
	ctx := c.Request().Context()

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			logger.Warn(ctx, m.log, map[string]interface{}{
				"error": err.Error(),
			})
			return c.JSON(m.status, ErrorResponse{
				Error:   m.code,
				Message: err.Error(),
			})
		}
	}

	// 決済サービスのエラー
	var ceeposErr *ceepos.Error
	if errors.As(err, &ceeposErr) {
		logger.Error(ctx, "Payment service error", err, map[string]interface{}{
			"path": c.Request().URL.Path,
		})
		return c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "payment_service_error",
			Message: ceeposErr.Message,
		})
	}

	// EchoのHTTPエラー
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		logger.Warn(ctx, "HTTP error", map[string]interface{}{
			"status_code": httpErr.Code,
			"message":     httpErr.Message,
		})
		message, ok := httpErr.Message.(string)
		if !ok {
			message = http.StatusText(httpErr.Code)
		}
		return c.JSON(httpErr.Code, ErrorResponse{
			Error:   http.StatusText(httpErr.Code),
			Message: message,
		})
	}

	// 予期しないエラー
	logger.Error(ctx, "Internal server error", err, map[string]interface{}{
		"path": c.Request().URL.Path,
	})
	return c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_server_error",
		Message: "An unexpected error occurred",
	})
}
