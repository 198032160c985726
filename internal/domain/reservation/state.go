package reservation

import (
	"fmt"
)

// State 予約状態を表す値オブジェクト
type State string

const (
	StateCreated   State = "created"   // 作成済み
	StateCancelled State = "cancelled" // キャンセル
	StateConfirmed State = "confirmed" // 確定
	StateDenied    State = "denied"    // 却下
	StateRequested State = "requested" // 承認待ち
	StatePending   State = "pending"   // 保留
)

// DefaultState 既定の予約状態
const DefaultState = StateConfirmed

// NewState 新しいStateを作成
func NewState(s string) (State, error) {
	st := State(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid reservation state: %s", s)
	}
	return st, nil
}

// String 文字列表現を返す
func (s State) String() string {
	return string(s)
}

// Valid 有効な予約状態かどうかを返す
func (s State) Valid() bool {
	switch s {
	case StateCreated, StateCancelled, StateConfirmed, StateDenied, StateRequested, StatePending:
		return true
	default:
		return false
	}
}

// Settable SetStateで遷移できる状態かどうかを返す
func (s State) Settable() bool {
	switch s {
	case StateRequested, StateConfirmed, StateDenied, StateCancelled:
		return true
	default:
		return false
	}
}

// IsCurrent キャンセル・却下されていない状態かどうかを返す
func (s State) IsCurrent() bool {
	return s != StateCancelled && s != StateDenied
}
