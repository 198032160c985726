package reservation

import (
	"time"

	"respa-server/internal/domain/reservation"
)

// CreateReservationRequest 予約作成リクエスト
type CreateReservationRequest struct {
	ResourceID int64
	Begin      time.Time
	End        time.Time
	UserID     *string
	Comments   string
	AccessCode string
	Event      reservation.EventInfo
	Reserver   reservation.Reserver
	OriginID   string
}

// SetStateRequest 予約状態変更リクエスト
type SetStateRequest struct {
	ReservationID int64
	State         string
	UserID        *string
}

// ReservationResponse 予約レスポンス
type ReservationResponse struct {
	ReservationID int64
	ResourceID    int64
	Begin         time.Time
	End           time.Time
	State         string
	UserID        *string
	ApproverID    *string
	PurchaseID    *int64
	AccessCode    string
	Comments      string
	Event         reservation.EventInfo
	Reserver      reservation.Reserver
	// PaymentAddress 決済が開始された場合のみ
	PaymentAddress string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewReservationResponse エンティティからレスポンスを作成
func NewReservationResponse(r *reservation.Reservation) *ReservationResponse {
	return &ReservationResponse{
		ReservationID: r.ReservationID(),
		ResourceID:    r.ResourceID(),
		Begin:         r.Begin(),
		End:           r.End(),
		State:         r.State().String(),
		UserID:        r.UserID(),
		ApproverID:    r.ApproverID(),
		PurchaseID:    r.PurchaseID(),
		AccessCode:    r.AccessCode(),
		Comments:      r.Comments(),
		Event:         r.Event(),
		Reserver:      r.Reserver(),
		CreatedAt:     r.CreatedAt(),
		UpdatedAt:     r.UpdatedAt(),
	}
}
