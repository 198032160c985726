package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics メトリクス定義
type Metrics struct {
	// リクエスト数
	RequestCount metric.Int64Counter

	// レスポンス時間
	ResponseTime metric.Float64Histogram

	// エラー数
	ErrorCount metric.Int64Counter

	// 決済サービスへの要求数
	PaymentRequestCount metric.Int64Counter

	// 送信した通知メール数
	NotificationCount metric.Int64Counter

	// 予約の状態遷移数
	StateTransitionCount metric.Int64Counter

	// 期限切れで処理した購入数
	SweptPurchaseCount metric.Int64Counter
}

// NewMetrics 新しいMetricsを作成
func NewMetrics(meterName string) (*Metrics, error) {
	meter := otel.Meter(meterName)

	requestCount, err := meter.Int64Counter(
		"requests_total",
		metric.WithDescription("Total number of requests"),
	)
	if err != nil {
		return nil, err
	}

	responseTime, err := meter.Float64Histogram(
		"response_time_seconds",
		metric.WithDescription("Response time in seconds"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"errors_total",
		metric.WithDescription("Total number of errors"),
	)
	if err != nil {
		return nil, err
	}

	paymentRequestCount, err := meter.Int64Counter(
		"payment_requests_total",
		metric.WithDescription("Total number of payment provider calls by action and outcome"),
	)
	if err != nil {
		return nil, err
	}

	notificationCount, err := meter.Int64Counter(
		"notifications_sent_total",
		metric.WithDescription("Total number of notification mails by type and outcome"),
	)
	if err != nil {
		return nil, err
	}

	stateTransitionCount, err := meter.Int64Counter(
		"reservation_state_transitions_total",
		metric.WithDescription("Total number of reservation state transitions"),
	)
	if err != nil {
		return nil, err
	}

	sweptPurchaseCount, err := meter.Int64Counter(
		"swept_purchases_total",
		metric.WithDescription("Total number of expired purchases handled by the sweeper"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		RequestCount:         requestCount,
		ResponseTime:         responseTime,
		ErrorCount:           errorCount,
		PaymentRequestCount:  paymentRequestCount,
		NotificationCount:    notificationCount,
		StateTransitionCount: stateTransitionCount,
		SweptPurchaseCount:   sweptPurchaseCount,
	}, nil
}

// RecordRequest リクエストを記録
func (m *Metrics) RecordRequest(ctx context.Context, method, path string) {
	m.RequestCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// RecordResponseTime レスポンス時間を記録
func (m *Metrics) RecordResponseTime(ctx context.Context, method, path string, duration float64) {
	m.ResponseTime.Record(ctx, duration,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// RecordError エラーを記録
func (m *Metrics) RecordError(ctx context.Context, errorType string) {
	m.ErrorCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("error_type", errorType),
		),
	)
}

// RecordPaymentRequest 決済サービスへの要求を記録
func (m *Metrics) RecordPaymentRequest(ctx context.Context, action, outcome string) {
	m.PaymentRequestCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("action", action),
			attribute.String("outcome", outcome),
		),
	)
}

// RecordNotification 通知メールの送信を記録
func (m *Metrics) RecordNotification(ctx context.Context, notificationType, outcome string) {
	m.NotificationCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("notification_type", notificationType),
			attribute.String("outcome", outcome),
		),
	)
}

// RecordStateTransition 予約の状態遷移を記録
func (m *Metrics) RecordStateTransition(ctx context.Context, from, to string) {
	m.StateTransitionCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("from", from),
			attribute.String("to", to),
		),
	)
}

// RecordSweptPurchase 期限切れ購入の処理結果を記録
func (m *Metrics) RecordSweptPurchase(ctx context.Context, outcome string) {
	m.SweptPurchaseCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("outcome", outcome),
		),
	)
}
