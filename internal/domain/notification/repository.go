package notification

import (
	"context"
)

// TemplateRepository 通知テンプレートリポジトリインターフェース
type TemplateRepository interface {
	// FindByType 通知種類でテンプレートを取得
	FindByType(ctx context.Context, t NotificationType) (*Template, error)
	// Save テンプレートを保存
	Save(ctx context.Context, tmpl *Template) error
}
