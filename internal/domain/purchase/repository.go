package purchase

import (
	"context"
)

// PurchaseRepository 購入リポジトリインターフェース
type PurchaseRepository interface {
	// Create 購入を新規作成し、採番されたIDを設定する
	Create(ctx context.Context, p *Purchase) error
	// Save 購入を更新
	Save(ctx context.Context, p *Purchase) error
	// FindByID 購入IDで購入を取得
	FindByID(ctx context.Context, purchaseID int64) (*Purchase, error)
	// FindByIDAndReference 購入IDと決済参照番号で購入を取得
	FindByIDAndReference(ctx context.Context, purchaseID int64, reference string) (*Purchase, error)
	// FindByIDAndReferenceForUpdate FindByIDAndReferenceと同じ条件で取得し、トランザクション終了まで行をロックする
	FindByIDAndReferenceForUpdate(ctx context.Context, purchaseID int64, reference string) (*Purchase, error)
	// FindByStatus 決済ステータスで購入を取得
	FindByStatus(ctx context.Context, status PaymentStatus) ([]*Purchase, error)
}
