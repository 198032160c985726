package reservation

import (
	"context"
)

// EventPublisher 予約ドメインイベントの発行インターフェース
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
