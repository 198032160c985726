package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"respa-server/internal/domain/notification"
)

// NotificationTemplateRepository MySQL実装のTemplateRepository
type NotificationTemplateRepository struct {
	db *DB
}

// NewNotificationTemplateRepository 新しいNotificationTemplateRepositoryを作成
func NewNotificationTemplateRepository(db *DB) *NotificationTemplateRepository {
	return &NotificationTemplateRepository{db: db}
}

// FindByType 通知種類でテンプレートを取得
func (r *NotificationTemplateRepository) FindByType(ctx context.Context, t notification.NotificationType) (*notification.Template, error) {
	query := `
		SELECT type, translations, updated_at
		FROM notification_templates
		WHERE type = ?
	`

	var (
		dbType           string
		translationsJSON []byte
		updatedAt        time.Time
	)
	err := r.db.conn(ctx).QueryRowContext(ctx, query, t.String()).Scan(&dbType, &translationsJSON, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notification.ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find notification template: %w", err)
	}

	nt, err := notification.NewNotificationType(dbType)
	if err != nil {
		return nil, err
	}

	var translations map[string]notification.Translation
	if err := json.Unmarshal(translationsJSON, &translations); err != nil {
		return nil, fmt.Errorf("failed to unmarshal translations: %w", err)
	}

	return notification.RestoreTemplate(nt, translations, updatedAt), nil
}

// Save テンプレートを保存
func (r *NotificationTemplateRepository) Save(ctx context.Context, tmpl *notification.Template) error {
	query := `
		INSERT INTO notification_templates (type, translations, updated_at)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE
			translations = VALUES(translations),
			updated_at = VALUES(updated_at)
	`

	translationsJSON, err := json.Marshal(tmpl.Translations())
	if err != nil {
		return fmt.Errorf("failed to marshal translations: %w", err)
	}

	if _, err := r.db.conn(ctx).ExecContext(ctx, query, tmpl.Type().String(), string(translationsJSON), tmpl.UpdatedAt()); err != nil {
		return fmt.Errorf("failed to save notification template: %w", err)
	}
	return nil
}
