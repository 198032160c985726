package reservation

import "errors"

var (
	// ErrReservationNotFound 予約が見つからないエラー
	ErrReservationNotFound = errors.New("reservation not found")
	// ErrInvalidReservation 無効な予約エラー
	ErrInvalidReservation = errors.New("invalid reservation")
	// ErrInvalidStateTransition 無効な状態遷移エラー
	ErrInvalidStateTransition = errors.New("invalid state transition")
	// ErrEndBeforeBegin 終了が開始以前のエラー
	ErrEndBeforeBegin = errors.New("you must end the reservation after it has begun")
	// ErrOverlappingReservation 予約が重複しているエラー
	ErrOverlappingReservation = errors.New("the resource is already reserved for some of the period")
	// ErrTooShort 予約時間が最短予約時間より短いエラー
	ErrTooShort = errors.New("reservation is shorter than the minimum period")
	// ErrTooManyApprovers 通知対象の承認者が多すぎるエラー
	ErrTooManyApprovers = errors.New("refusing to notify more than 100 users")
)
