package notify

import (
	"respa-server/internal/domain/notification"
	"respa-server/internal/domain/purchase"
	"respa-server/internal/domain/reservation"
	"respa-server/internal/domain/resource"
	"respa-server/internal/domain/user"
)

// MailRequest 予約に関する通知メールの送信依頼
type MailRequest struct {
	Type        notification.NotificationType
	Reservation *reservation.Reservation
	Resource    *resource.Resource
	// Purchase 決済リンクを含める場合のみ
	Purchase *purchase.Purchase
	// Recipient 指定がなければ予約者に送る
	Recipient *user.User
}

// UpdateTemplateRequest 通知テンプレート更新リクエスト
type UpdateTemplateRequest struct {
	Type         string
	Translations map[string]notification.Translation
}

// TemplateResponse 通知テンプレートレスポンス
type TemplateResponse struct {
	Type         string
	Translations map[string]notification.Translation
	UpdatedAt    string
}
