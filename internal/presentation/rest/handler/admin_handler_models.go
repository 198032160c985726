package handler

import (
	"respa-server/internal/domain/notification"
)

// UpdateTemplateRequest 通知テンプレート更新リクエスト
// @Description 言語コードごとの件名と本文。本文はGoのtext/template形式
type UpdateTemplateRequest struct {
	Translations map[string]notification.Translation `json:"translations"`
}

// TemplateResponse 通知テンプレートレスポンス
// @Description 通知テンプレートレスポンス
type TemplateResponse struct {
	Type         string                              `json:"type" example:"reservation_confirmed"`
	Translations map[string]notification.Translation `json:"translations"`
	UpdatedAt    string                              `json:"updated_at" example:"2017-01-01T12:00:00Z"`
}

// SweepResponse 掃除結果レスポンス
// @Description 期限切れ購入の掃除結果
type SweepResponse struct {
	Locked   bool `json:"locked" example:"false"`
	Checked  int  `json:"checked" example:"3"`
	Expired  int  `json:"expired" example:"1"`
	Skipped  int  `json:"skipped" example:"0"`
	Orphaned int  `json:"orphaned" example:"0"`
}
