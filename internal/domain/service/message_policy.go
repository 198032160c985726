package service

import (
	"respa-server/internal/domain/notification"
	"respa-server/internal/domain/reservation"
	"respa-server/internal/domain/resource"
)

// MessagePlan 状態遷移後に行う副作用の一覧
type MessagePlan struct {
	// RequestPayment 購入を作成して決済を開始する
	RequestPayment bool
	// Notifications 予約者に送る通知
	Notifications []notification.NotificationType
	// NotifyApprovers 承認者全員に承認依頼を送る
	NotifyApprovers bool
	// EmitCancelled キャンセルイベントを発行する
	EmitCancelled bool
}

// PlanMessages 遷移先の状態とリソース設定から送るべき通知を決定
func PlanMessages(newState reservation.State, r *reservation.Reservation, rsc *resource.Resource, actingUserID *string) MessagePlan {
	var plan MessagePlan

	switch newState {
	case reservation.StateRequested:
		plan.Notifications = []notification.NotificationType{notification.TypeReservationRequested}
		plan.NotifyApprovers = true

	case reservation.StateConfirmed:
		manual := rsc.NeedManualConfirmation()
		// 決済が必要な場合は支払い完了まで確定通知を送らない
		if rsc.RequiresPayment() && !r.HasPurchase() && manual {
			plan.RequestPayment = true
			plan.Notifications = []notification.NotificationType{notification.TypeReservationRequestedPayment}
			return plan
		}
		if rsc.CeeposPaymentRequired() && !manual {
			return plan
		}
		if !manual {
			plan.Notifications = append(plan.Notifications, notification.TypeReservationConfirmed)
		}

		if manual {
			plan.Notifications = append(plan.Notifications, notification.TypeReservationConfirmed)
		} else if rsc.IsAccessCodeEnabled() {
			plan.Notifications = append(plan.Notifications, notification.TypeReservationCreatedWithAccessCode)
		}

	case reservation.StateDenied:
		plan.Notifications = []notification.NotificationType{notification.TypeReservationDenied}

	case reservation.StateCancelled:
		if !sameUser(actingUserID, r.UserID()) {
			plan.Notifications = []notification.NotificationType{notification.TypeReservationCancelled}
		}
		plan.EmitCancelled = true
	}

	return plan
}

// sameUser ユーザーIDが等しいか。どちらも未設定の場合も等しいとみなす
func sameUser(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
