package transaction

import (
	"context"
)

// TransactionManager トランザクション管理インターフェース
type TransactionManager interface {
	// WithTransaction トランザクション内で関数を実行。fnに渡すcontextを使うリポジトリ操作は同じトランザクションに参加する
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
