package resource

import (
	"context"
)

// ResourceRepository リソースリポジトリインターフェース
type ResourceRepository interface {
	// FindByID リソースIDでリソースを取得
	FindByID(ctx context.Context, resourceID int64) (*Resource, error)
	// LockByID トランザクション終了までリソース行を排他ロックする
	LockByID(ctx context.Context, resourceID int64) error
}
