package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	purchaseapp "respa-server/internal/application/purchase"
	"respa-server/internal/infrastructure/ceepos"
	restmiddleware "respa-server/internal/presentation/rest/middleware"
)

// notificationFields 支払い通知の必須項目
var notificationFields = []string{"Id", "Status", "Reference", "Hash"}

// PurchaseService 購入ユースケース
type PurchaseService interface {
	HandleNotification(ctx context.Context, req *purchaseapp.NotificationRequest) error
	GetPurchase(ctx context.Context, purchaseID int64) (*purchaseapp.PurchaseResponse, error)
}

// PurchaseHandler 購入関連ハンドラー
type PurchaseHandler struct {
	purchaseService PurchaseService
}

// NewPurchaseHandler 新しいPurchaseHandlerを作成
func NewPurchaseHandler(purchaseService PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{
		purchaseService: purchaseService,
	}
}

// Notify 決済サービスからの支払い通知ハンドラー
// @Summary 支払い通知を受信
// @Description Ceeposからの支払い結果通知。チェックサムを検証し、支払い済みなら購入を成功として記録します
// @Tags purchases
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "受信成功"
// @Failure 400 {object} ErrorResponse "項目不足またはチェックサム不一致"
// @Failure 404 {object} ErrorResponse "購入が見つからない"
// @Failure 409 {object} ErrorResponse "決済結果が記録済み"
// @Router /v1/purchase/notify [post]
func (h *PurchaseHandler) Notify(c echo.Context) error {
	var body map[string]json.RawMessage
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	values := make(map[string]string, len(notificationFields))
	for _, name := range notificationFields {
		raw, ok := body[name]
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, name+" is required")
		}
		var v ceepos.Value
		if err := json.Unmarshal(raw, &v); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s must be a string or number", name))
		}
		values[name] = v.String()
	}

	err := h.purchaseService.HandleNotification(c.Request().Context(), &purchaseapp.NotificationRequest{
		ID:        values["Id"],
		Status:    values["Status"],
		Reference: values["Reference"],
		Hash:      values["Hash"],
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{})
}

// GetPurchase 購入取得ハンドラー
// @Summary 購入を取得
// @Tags purchases
// @Produce json
// @Security Bearer
// @Param id path int true "購入ID"
// @Success 200 {object} PurchaseResponse "購入取得成功"
// @Failure 403 {object} ErrorResponse "スタッフ権限がない"
// @Failure 404 {object} ErrorResponse "購入が見つからない"
// @Router /purchases/{id} [get]
func (h *PurchaseHandler) GetPurchase(c echo.Context) error {
	if !restmiddleware.IsStaff(c) {
		return echo.NewHTTPError(http.StatusForbidden, "staff permission required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	resp, err := h.purchaseService.GetPurchase(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPurchaseResponse(resp))
}
