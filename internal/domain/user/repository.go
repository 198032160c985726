package user

import (
	"context"
)

// UserRepository ユーザーリポジトリインターフェース
type UserRepository interface {
	// FindByID ユーザーIDでユーザーを取得
	FindByID(ctx context.Context, userID string) (*User, error)
	// FindApproversByResourceID リソースの予約を承認できるユーザーを取得
	FindApproversByResourceID(ctx context.Context, resourceID int64, limit int) ([]*User, error)
}
