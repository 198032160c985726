package notification

import "errors"

var (
	// ErrTemplateNotFound 通知テンプレートが見つからないエラー
	ErrTemplateNotFound = errors.New("notification template not found")
	// ErrTemplateRender 通知テンプレートの描画エラー
	ErrTemplateRender = errors.New("notification template could not be rendered")
	// ErrInvalidTemplate 無効な通知テンプレートエラー
	ErrInvalidTemplate = errors.New("invalid notification template")
)
