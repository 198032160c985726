package reservation

import (
	"time"

	"github.com/google/uuid"
)

// EventType 予約ドメインイベントの種類
type EventType string

const (
	EventReservationModified  EventType = "reservation_modified"
	EventReservationConfirmed EventType = "reservation_confirmed"
	EventReservationCancelled EventType = "reservation_cancelled"
)

// String 文字列表現を返す
func (t EventType) String() string {
	return string(t)
}

// Event 予約ドメインイベント
type Event struct {
	EventID       string    `json:"event_id"`
	Type          EventType `json:"type"`
	ReservationID int64     `json:"reservation_id"`
	ResourceID    int64     `json:"resource_id"`
	State         State     `json:"state"`
	UserID        string    `json:"user_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewEvent 新しいEventを作成
func NewEvent(t EventType, r *Reservation, actingUserID *string) Event {
	e := Event{
		EventID:       uuid.New().String(),
		Type:          t,
		ReservationID: r.ReservationID(),
		ResourceID:    r.ResourceID(),
		State:         r.State(),
		OccurredAt:    time.Now().UTC(),
	}
	if actingUserID != nil {
		e.UserID = *actingUserID
	}
	return e
}
