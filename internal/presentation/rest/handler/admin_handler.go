package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"respa-server/internal/application/notify"
	"respa-server/internal/application/sweeper"
)

// Sweeper 期限切れ購入の掃除
type Sweeper interface {
	SweepOnce(ctx context.Context) (*sweeper.SweepResult, error)
}

// TemplateService 通知テンプレート管理
type TemplateService interface {
	UpdateTemplate(ctx context.Context, req *notify.UpdateTemplateRequest) (*notify.TemplateResponse, error)
}

// AdminHandler 管理API用ハンドラー
type AdminHandler struct {
	sweeper   Sweeper
	templates TemplateService
}

// NewAdminHandler 新しいAdminHandlerを作成
func NewAdminHandler(sweeper Sweeper, templates TemplateService) *AdminHandler {
	return &AdminHandler{
		sweeper:   sweeper,
		templates: templates,
	}
}

// Sweep 期限切れ購入の掃除を一度実行する
// @Summary 期限切れ購入を掃除（管理API）
// @Tags admin
// @Produce json
// @Param X-API-Key header string true "APIキー"
// @Success 200 {object} SweepResponse "実行結果"
// @Failure 401 {object} ErrorResponse "認証エラー"
// @Router /admin/sweep [post]
func (h *AdminHandler) Sweep(c echo.Context) error {
	result, err := h.sweeper.SweepOnce(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SweepResponse{
		Locked:   result.Locked,
		Checked:  result.Checked,
		Expired:  result.Expired,
		Skipped:  result.Skipped,
		Orphaned: result.Orphaned,
	})
}

// UpdateTemplate 通知テンプレートを登録または更新
// @Summary 通知テンプレートを更新（管理API）
// @Tags admin
// @Accept json
// @Produce json
// @Param X-API-Key header string true "APIキー"
// @Param type path string true "通知種類" example(reservation_confirmed)
// @Param request body UpdateTemplateRequest true "通知テンプレート"
// @Success 200 {object} TemplateResponse "更新成功"
// @Failure 400 {object} ErrorResponse "無効なテンプレート"
// @Router /admin/notification-templates/{type} [put]
func (h *AdminHandler) UpdateTemplate(c echo.Context) error {
	var reqBody UpdateTemplateRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	resp, err := h.templates.UpdateTemplate(c.Request().Context(), &notify.UpdateTemplateRequest{
		Type:         c.Param("type"),
		Translations: reqBody.Translations,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, TemplateResponse{
		Type:         resp.Type,
		Translations: resp.Translations,
		UpdatedAt:    resp.UpdatedAt,
	})
}
