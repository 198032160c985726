package purchase

import (
	"fmt"
	"strconv"
)

// PaymentStatus 決済ステータスを表す値オブジェクト
type PaymentStatus int

const (
	PaymentStatusNotPaid    PaymentStatus = 0 // 未払い
	PaymentStatusPaid       PaymentStatus = 1 // 支払い済み
	PaymentStatusInProgress PaymentStatus = 2 // 処理中
)

// NewPaymentStatus 新しいPaymentStatusを作成
func NewPaymentStatus(v int) (PaymentStatus, error) {
	s := PaymentStatus(v)
	if !s.Valid() {
		return 0, fmt.Errorf("invalid payment status: %d", v)
	}
	return s, nil
}

// ParsePaymentStatus 文字列からPaymentStatusを作成
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid payment status: %s", s)
	}
	return NewPaymentStatus(v)
}

// Int 整数表現を返す
func (s PaymentStatus) Int() int {
	return int(s)
}

// String 文字列表現を返す
func (s PaymentStatus) String() string {
	return strconv.Itoa(int(s))
}

// Valid 有効な決済ステータスかどうかを返す
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusNotPaid, PaymentStatusPaid, PaymentStatusInProgress:
		return true
	default:
		return false
	}
}
