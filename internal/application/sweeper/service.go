package sweeper

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"respa-server/internal/domain/purchase"
	"respa-server/internal/domain/reservation"
	"respa-server/internal/domain/resource"
	"respa-server/internal/infrastructure/ceepos"
	otelinfra "respa-server/internal/infrastructure/observability/otel"
)

// LockKey 掃除処理の排他ロックキー
const LockKey = "respa:sweeper:lock"

// Locker インスタンス間の排他ロック
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// PaymentService 購入の取消と失敗記録
type PaymentService interface {
	CancelPayment(ctx context.Context, p *purchase.Purchase) error
	MarkFailure(ctx context.Context, p *purchase.Purchase) error
}

// Options 掃除処理の設定
type Options struct {
	// Expiration 決済開始からの有効期限
	Expiration time.Duration
	// LongExpiration 手動承認が必要なリソースの有効期限
	LongExpiration time.Duration
	LockTTL        time.Duration
}

// SweeperApplicationService 支払われなかった予約を削除するサービス
type SweeperApplicationService struct {
	purchaseRepo    purchase.PurchaseRepository
	reservationRepo reservation.ReservationRepository
	resourceRepo    resource.ResourceRepository
	payments        PaymentService
	locker          Locker
	opts            Options
	logger          *otelinfra.Logger
	metrics         *otelinfra.Metrics
	tracer          trace.Tracer
	now             func() time.Time
}

// NewSweeperApplicationService 新しいSweeperApplicationServiceを作成。lockerがnilの場合は排他しない
func NewSweeperApplicationService(
	purchaseRepo purchase.PurchaseRepository,
	reservationRepo reservation.ReservationRepository,
	resourceRepo resource.ResourceRepository,
	payments PaymentService,
	locker Locker,
	opts Options,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *SweeperApplicationService {
	return &SweeperApplicationService{
		purchaseRepo:    purchaseRepo,
		reservationRepo: reservationRepo,
		resourceRepo:    resourceRepo,
		payments:        payments,
		locker:          locker,
		opts:            opts,
		logger:          logger,
		metrics:         metrics,
		tracer:          otel.Tracer("sweeper-service"),
		now:             time.Now,
	}
}

// Run intervalごとに掃除を実行する。ctxがキャンセルされると戻る
func (s *SweeperApplicationService) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info(ctx, "Sweeper started", map[string]interface{}{
		"interval": interval.String(),
	})

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(context.Background(), "Sweeper stopped", nil)
			return nil
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				s.logger.Error(ctx, "Sweep failed", err, nil)
			}
		}
	}
}

// SweepOnce 期限切れの進行中購入を取り消し、予約を削除する
func (s *SweeperApplicationService) SweepOnce(ctx context.Context) (*SweepResult, error) {
	ctx, span := s.tracer.Start(ctx, "SweeperApplicationService.SweepOnce")
	defer span.End()

	result := &SweepResult{}

	if s.locker != nil {
		ok, err := s.locker.TryLock(ctx, LockKey, s.opts.LockTTL)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return nil, err
		}
		if !ok {
			result.Locked = true
			s.logger.Debug(ctx, "Sweep skipped, lock held by another instance", nil)
			return result, nil
		}
		defer func() {
			if err := s.locker.Unlock(context.WithoutCancel(ctx), LockKey); err != nil {
				s.logger.Warn(ctx, "Failed to release sweeper lock", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}()
	}

	purchases, err := s.purchaseRepo.FindByStatus(ctx, purchase.PaymentStatusInProgress)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	now := s.now()
	for _, p := range purchases {
		result.Checked++
		s.sweep(ctx, p, now, result)
	}

	span.SetAttributes(
		attribute.Int("checked", result.Checked),
		attribute.Int("expired", result.Expired),
		attribute.Int("skipped", result.Skipped),
	)
	if result.Expired > 0 || result.Skipped > 0 {
		s.logger.Info(ctx, "Sweep finished", map[string]interface{}{
			"checked":  result.Checked,
			"expired":  result.Expired,
			"skipped":  result.Skipped,
			"orphaned": result.Orphaned,
		})
	}
	return result, nil
}

func (s *SweeperApplicationService) sweep(ctx context.Context, p *purchase.Purchase, now time.Time, result *SweepResult) {
	fields := map[string]interface{}{"purchase_id": p.PurchaseID()}

	r, err := s.reservationRepo.FindByPurchaseID(ctx, p.PurchaseID())
	if errors.Is(err, reservation.ErrReservationNotFound) {
		result.Orphaned++
		return
	}
	if err != nil {
		s.skip(ctx, "Failed to find reservation for purchase", err, fields, result)
		return
	}
	fields["reservation_id"] = r.ReservationID()

	rsc, err := s.resourceRepo.FindByID(ctx, r.ResourceID())
	if err != nil {
		s.skip(ctx, "Failed to find resource for reservation", err, fields, result)
		return
	}

	expiration := s.opts.Expiration
	if rsc.NeedManualConfirmation() {
		expiration = s.opts.LongExpiration
	}
	if !p.IsExpired(now, expiration) {
		return
	}

	// 取消に失敗した購入は次回の実行で再試行する
	if err := s.payments.CancelPayment(ctx, p); err != nil {
		message := "Failed to cancel payment"
		var cerr *ceepos.Error
		if errors.As(err, &cerr) {
			message = "Payment service refused cancellation"
		}
		s.skip(ctx, message, err, fields, result)
		return
	}
	if err := s.payments.MarkFailure(ctx, p); err != nil {
		s.skip(ctx, "Failed to mark purchase failed", err, fields, result)
		return
	}
	if err := s.reservationRepo.Delete(ctx, r.ReservationID()); err != nil {
		s.skip(ctx, "Failed to delete expired reservation", err, fields, result)
		return
	}

	result.Expired++
	s.metrics.RecordSweptPurchase(ctx, "expired")
	s.logger.Info(ctx, "Expired reservation removed", fields)
}

func (s *SweeperApplicationService) skip(ctx context.Context, message string, err error, fields map[string]interface{}, result *SweepResult) {
	result.Skipped++
	s.metrics.RecordSweptPurchase(ctx, "skipped")
	s.logger.Error(ctx, message, err, fields)
}
