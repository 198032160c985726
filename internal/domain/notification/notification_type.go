package notification

import (
	"fmt"
)

// NotificationType 通知テンプレートの種類を表す値オブジェクト
type NotificationType string

const (
	TypeReservationRequested                 NotificationType = "reservation_requested"
	TypeReservationRequestedOfficial         NotificationType = "reservation_requested_official"
	TypeReservationCancelled                 NotificationType = "reservation_cancelled"
	TypeReservationConfirmed                 NotificationType = "reservation_confirmed"
	TypeReservationDenied                    NotificationType = "reservation_denied"
	TypeReservationCreatedWithAccessCode     NotificationType = "reservation_created_with_access_code"
	TypeCateringOrderCreated                 NotificationType = "catering_order_created"
	TypeCateringOrderModified                NotificationType = "catering_order_modified"
	TypeCateringOrderDeleted                 NotificationType = "catering_order_deleted"
	TypeReservationCommentCreated            NotificationType = "reservation_comment_created"
	TypeCateringOrderCommentCreated          NotificationType = "catering_order_comment_created"
	TypeReservationRequestedPayment          NotificationType = "reservation_requested_payment"
	TypeReservationFailedPayment             NotificationType = "reservation_failed_payment"
	TypeReservationPaymentSuccessful         NotificationType = "reservation_payment_successful"
	TypeReservationPaymentSuccessfulOfficial NotificationType = "reservation_payment_successful_official"
)

// AllTypes 全ての通知テンプレートの種類
var AllTypes = []NotificationType{
	TypeReservationRequested,
	TypeReservationRequestedOfficial,
	TypeReservationCancelled,
	TypeReservationConfirmed,
	TypeReservationDenied,
	TypeReservationCreatedWithAccessCode,
	TypeCateringOrderCreated,
	TypeCateringOrderModified,
	TypeCateringOrderDeleted,
	TypeReservationCommentCreated,
	TypeCateringOrderCommentCreated,
	TypeReservationRequestedPayment,
	TypeReservationFailedPayment,
	TypeReservationPaymentSuccessful,
	TypeReservationPaymentSuccessfulOfficial,
}

// NewNotificationType 新しいNotificationTypeを作成
func NewNotificationType(s string) (NotificationType, error) {
	t := NotificationType(s)
	if !t.Valid() {
		return "", fmt.Errorf("invalid notification type: %s", s)
	}
	return t, nil
}

// String 文字列表現を返す
func (t NotificationType) String() string {
	return string(t)
}

// Valid 有効な通知種類かどうかを返す
func (t NotificationType) Valid() bool {
	for _, v := range AllTypes {
		if v == t {
			return true
		}
	}
	return false
}

// OwnerCopy リソース管理者に送る控えの種類を返す。控えを送らない場合はfalse
func (t NotificationType) OwnerCopy() (NotificationType, bool) {
	switch t {
	case TypeReservationRequested:
		return TypeReservationRequestedOfficial, true
	case TypeReservationPaymentSuccessful:
		return TypeReservationPaymentSuccessfulOfficial, true
	case TypeReservationRequestedPayment:
		return "", false
	default:
		return t, true
	}
}
