package reservation

import (
	"context"
	"time"
)

// ReservationRepository 予約リポジトリインターフェース
type ReservationRepository interface {
	// Create 予約を新規作成し、採番されたIDを設定する
	Create(ctx context.Context, r *Reservation) error
	// Save 予約を更新
	Save(ctx context.Context, r *Reservation) error
	// FindByID 予約IDで予約を取得
	FindByID(ctx context.Context, reservationID int64) (*Reservation, error)
	// FindByPurchaseID 購入IDで予約を取得
	FindByPurchaseID(ctx context.Context, purchaseID int64) (*Reservation, error)
	// FindOverlapping 期間が重なる有効な予約を取得
	FindOverlapping(ctx context.Context, resourceID int64, begin, end time.Time, excludeID int64) ([]*Reservation, error)
	// Delete 予約を削除
	Delete(ctx context.Context, reservationID int64) error
}
