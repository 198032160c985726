package purchase

import "errors"

var (
	// ErrPurchaseNotFound 購入が見つからないエラー
	ErrPurchaseNotFound = errors.New("purchase not found")
	// ErrInvalidPurchase 無効な購入エラー
	ErrInvalidPurchase = errors.New("invalid purchase")
	// ErrCallbackAlreadyReturned 決済結果が既に記録されているエラー
	ErrCallbackAlreadyReturned = errors.New("callback has already returned")
	// ErrAlreadyFinished 購入処理が既に完了しているエラー
	ErrAlreadyFinished = errors.New("purchase process has already finished")
	// ErrInvalidNotificationHash 支払い通知のチェックサム不一致エラー
	ErrInvalidNotificationHash = errors.New("failed to validate notification hash")
)
