package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"respa-server/internal/domain/reservation"
	"respa-server/internal/infrastructure/config"
	otelinfra "respa-server/internal/infrastructure/observability/otel"
)

// ExchangeType 予約イベント用のExchange種別
const ExchangeType = "topic"

// channel Publisherが利用するAMQPチャネルの操作
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher 予約イベントをRabbitMQに発行する
type Publisher struct {
	conn     *amqp.Connection
	ch       channel
	exchange string
	logger   *otelinfra.Logger
}

// Connect RabbitMQに接続し、Exchangeを宣言したPublisherを返す
func Connect(cfg *config.RabbitMQConfig, logger *otelinfra.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("could not connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("could not open channel: %w", err)
	}

	p, err := newPublisher(ch, cfg.Exchange, logger)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, exchange string, logger *otelinfra.Logger) (*Publisher, error) {
	err := ch.ExchangeDeclare(
		exchange,     // name
		ExchangeType, // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("could not declare exchange: %w", err)
	}
	return &Publisher{ch: ch, exchange: exchange, logger: logger}, nil
}

// Publish イベントを発行。ルーティングキーは reservation.<イベント種別>
func (p *Publisher) Publish(ctx context.Context, event reservation.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("could not marshal event: %w", err)
	}

	routingKey := "reservation." + event.Type.String()
	err = p.ch.PublishWithContext(ctx,
		p.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.EventID,
			Timestamp:    event.OccurredAt,
			Type:         event.Type.String(),
			Body:         body,
		},
	)
	if err != nil {
		p.logger.Error(ctx, "Failed to publish reservation event", err, map[string]interface{}{
			"event_type":     event.Type.String(),
			"reservation_id": event.ReservationID,
		})
		return fmt.Errorf("could not publish event: %w", err)
	}

	p.logger.Debug(ctx, "Reservation event published", map[string]interface{}{
		"event_id":       event.EventID,
		"event_type":     event.Type.String(),
		"reservation_id": event.ReservationID,
	})
	return nil
}

// Close チャネルと接続を閉じる
func (p *Publisher) Close() error {
	if err := p.ch.Close(); err != nil {
		return err
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// NoopPublisher イベントを破棄する
type NoopPublisher struct{}

// Publish 何もしない
func (NoopPublisher) Publish(context.Context, reservation.Event) error {
	return nil
}
