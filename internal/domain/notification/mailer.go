package notification

import (
	"context"
)

// Message 送信するメール
type Message struct {
	To       string
	Subject  string
	Body     string
	HTMLBody string
}

// Mailer メール送信インターフェース
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}
