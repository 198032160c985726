package purchase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"respa-server/internal/application/notify"
	"respa-server/internal/domain/notification"
	"respa-server/internal/domain/purchase"
	"respa-server/internal/domain/reservation"
	"respa-server/internal/domain/resource"
	"respa-server/internal/domain/transaction"
	"respa-server/internal/infrastructure/ceepos"
	otelinfra "respa-server/internal/infrastructure/observability/otel"
)

// PaymentGateway 決済サービスとの通信
type PaymentGateway interface {
	InitializePayment(ctx context.Context, req *ceepos.PaymentRequest) (*ceepos.PaymentRequestAck, error)
	CancelPayment(ctx context.Context, cancel *ceepos.PaymentCancellation) (*ceepos.CancellationAck, error)
}

// NotificationVerifier 支払い通知のチェックサム検証
type NotificationVerifier interface {
	VerifyNotification(id, status, reference, hash string) bool
}

// ReservationMailer 予約に関する通知メールの送信
type ReservationMailer interface {
	SendReservationMail(ctx context.Context, req *notify.MailRequest) error
}

// PurchaseApplicationService 購入アプリケーションサービス
type PurchaseApplicationService struct {
	purchaseRepo        purchase.PurchaseRepository
	reservationRepo     reservation.ReservationRepository
	resourceRepo        resource.ResourceRepository
	txManager           transaction.TransactionManager
	gateway             PaymentGateway
	verifier            NotificationVerifier
	mailer              ReservationMailer
	logger              *otelinfra.Logger
	metrics             *otelinfra.Metrics
	tracer              trace.Tracer
	notificationAddress string
	now                 func() time.Time
}

// NewPurchaseApplicationService 新しいPurchaseApplicationServiceを作成
func NewPurchaseApplicationService(
	purchaseRepo purchase.PurchaseRepository,
	reservationRepo reservation.ReservationRepository,
	resourceRepo resource.ResourceRepository,
	txManager transaction.TransactionManager,
	gateway PaymentGateway,
	verifier NotificationVerifier,
	mailer ReservationMailer,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
	notificationAddress string,
) *PurchaseApplicationService {
	return &PurchaseApplicationService{
		purchaseRepo:        purchaseRepo,
		reservationRepo:     reservationRepo,
		resourceRepo:        resourceRepo,
		txManager:           txManager,
		gateway:             gateway,
		verifier:            verifier,
		mailer:              mailer,
		logger:              logger,
		metrics:             metrics,
		tracer:              otel.Tracer("purchase-service"),
		notificationAddress: notificationAddress,
		now:                 time.Now,
	}
}

// CreatePurchase 予約の料金で購入を作成
func (s *PurchaseApplicationService) CreatePurchase(ctx context.Context, r *reservation.Reservation, rsc *resource.Resource) (*purchase.Purchase, error) {
	ctx, span := s.tracer.Start(ctx, "PurchaseApplicationService.CreatePurchase")
	defer span.End()

	price := rsc.PriceFor(r.Begin(), r.End())
	span.SetAttributes(
		attribute.Int64("resource_id", rsc.ResourceID()),
		attribute.String("price_vat", price.StringFixed(2)),
	)

	p, err := purchase.NewPurchase(rsc.ProductCode(), price, purchase.DefaultVATPercent, rsc.Name())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}
	if err := s.purchaseRepo.Create(ctx, p); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to create purchase: %w", err)
	}

	s.logger.Info(ctx, "Purchase created", map[string]interface{}{
		"purchase_id":   p.PurchaseID(),
		"purchase_code": p.PurchaseCode(),
		"price_vat":     price.StringFixed(2),
	})
	return p, nil
}

// RequestPayment 決済を開始し、決済ページのURLを返す
func (s *PurchaseApplicationService) RequestPayment(ctx context.Context, p *purchase.Purchase) (string, error) {
	ctx, span := s.tracer.Start(ctx, "PurchaseApplicationService.RequestPayment")
	defer span.End()

	span.SetAttributes(attribute.Int64("purchase_id", p.PurchaseID()))

	req := ceepos.NewPaymentRequest(p.PurchaseID(), s.notificationAddress)
	req.AddProduct(ceepos.NewProduct(p.PurchaseCode(), p.PriceCents()))

	ack, err := s.gateway.InitializePayment(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return "", fmt.Errorf("failed to initialize payment: %w", err)
	}

	status, err := purchase.NewPaymentStatus(ack.Status)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return "", err
	}
	p.ApplyPaymentRequest(ack.PaymentAddress, status, ack.Reference)

	if err := s.purchaseRepo.Save(ctx, p); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return "", fmt.Errorf("failed to save purchase: %w", err)
	}

	s.logger.Info(ctx, "Payment requested", map[string]interface{}{
		"purchase_id": p.PurchaseID(),
		"status":      status.Int(),
		"reference":   ack.Reference,
	})
	return p.PaymentAddress(), nil
}

// CancelPayment 決済を取り消す
func (s *PurchaseApplicationService) CancelPayment(ctx context.Context, p *purchase.Purchase) error {
	ctx, span := s.tracer.Start(ctx, "PurchaseApplicationService.CancelPayment")
	defer span.End()

	span.SetAttributes(attribute.Int64("purchase_id", p.PurchaseID()))

	ack, err := s.gateway.CancelPayment(ctx, ceepos.NewPaymentCancellation(p.PurchaseID()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to cancel payment: %w", err)
	}

	status, err := purchase.NewPaymentStatus(ack.Status)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}
	p.ApplyCancellation(ack.Reference, status)

	if err := s.purchaseRepo.Save(ctx, p); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to save purchase: %w", err)
	}

	s.logger.Info(ctx, "Payment cancelled", map[string]interface{}{
		"purchase_id": p.PurchaseID(),
		"reference":   ack.Reference,
	})
	return nil
}

// HandleNotification 決済サービスからの支払い通知を処理
func (s *PurchaseApplicationService) HandleNotification(ctx context.Context, req *NotificationRequest) error {
	ctx, span := s.tracer.Start(ctx, "PurchaseApplicationService.HandleNotification")
	defer span.End()

	span.SetAttributes(
		attribute.String("purchase_id", req.ID),
		attribute.String("status", req.Status),
	)

	if !s.verifier.VerifyNotification(req.ID, req.Status, req.Reference, req.Hash) {
		err := purchase.ErrInvalidNotificationHash
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Warn(ctx, "Rejected payment notification", map[string]interface{}{
			"purchase_id": req.ID,
			"reference":   req.Reference,
		})
		return err
	}

	id, err := strconv.ParseInt(req.ID, 10, 64)
	if err != nil {
		err := fmt.Errorf("%w: id %q", purchase.ErrPurchaseNotFound, req.ID)
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}

	paid := req.Status == strconv.Itoa(purchase.PaymentStatusPaid.Int())

	// 同じ購入への通知が同時に届いても成功の記録は1回だけになるよう行をロックする
	var p *purchase.Purchase
	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		found, err := s.purchaseRepo.FindByIDAndReferenceForUpdate(ctx, id, req.Reference)
		if err != nil {
			return err
		}
		p = found

		s.logger.Info(ctx, "Payment notification received", map[string]interface{}{
			"purchase_id": id,
			"status":      req.Status,
		})
		if !paid {
			return nil
		}
		return s.recordSuccess(ctx, p)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}

	if paid {
		s.metrics.RecordPaymentRequest(ctx, "notification", "paid")
		s.notifyReservation(ctx, p, notification.TypeReservationPaymentSuccessful)
	}
	return nil
}

// MarkSuccess 決済成功を記録し、予約者に通知する
func (s *PurchaseApplicationService) MarkSuccess(ctx context.Context, p *purchase.Purchase) error {
	ctx, span := s.tracer.Start(ctx, "PurchaseApplicationService.MarkSuccess")
	defer span.End()

	if err := s.recordSuccess(ctx, p); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}

	s.metrics.RecordPaymentRequest(ctx, "notification", "paid")
	s.notifyReservation(ctx, p, notification.TypeReservationPaymentSuccessful)
	return nil
}

func (s *PurchaseApplicationService) recordSuccess(ctx context.Context, p *purchase.Purchase) error {
	if err := p.SetSuccess(s.now()); err != nil {
		return err
	}
	if err := s.purchaseRepo.Save(ctx, p); err != nil {
		return fmt.Errorf("failed to save purchase: %w", err)
	}
	return nil
}

// MarkFailure 決済失敗を記録し、予約者に通知する
func (s *PurchaseApplicationService) MarkFailure(ctx context.Context, p *purchase.Purchase) error {
	ctx, span := s.tracer.Start(ctx, "PurchaseApplicationService.MarkFailure")
	defer span.End()

	if err := p.SetFailure(s.now()); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}
	if err := s.purchaseRepo.Save(ctx, p); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to save purchase: %w", err)
	}

	s.notifyReservation(ctx, p, notification.TypeReservationFailedPayment)
	return nil
}

// MarkFinished 購入処理の完了を記録
func (s *PurchaseApplicationService) MarkFinished(ctx context.Context, p *purchase.Purchase) error {
	if err := p.SetFinished(s.now()); err != nil {
		return err
	}
	if err := s.purchaseRepo.Save(ctx, p); err != nil {
		return fmt.Errorf("failed to save purchase: %w", err)
	}
	return nil
}

// GetPurchase 購入を取得
func (s *PurchaseApplicationService) GetPurchase(ctx context.Context, purchaseID int64) (*PurchaseResponse, error) {
	ctx, span := s.tracer.Start(ctx, "PurchaseApplicationService.GetPurchase")
	defer span.End()

	p, err := s.purchaseRepo.FindByID(ctx, purchaseID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}
	return NewPurchaseResponse(p), nil
}

// notifyReservation 購入に紐づく予約の予約者に通知する。送信の失敗は記録のみ
func (s *PurchaseApplicationService) notifyReservation(ctx context.Context, p *purchase.Purchase, t notification.NotificationType) {
	fields := map[string]interface{}{
		"purchase_id":       p.PurchaseID(),
		"notification_type": t.String(),
	}

	r, err := s.reservationRepo.FindByPurchaseID(ctx, p.PurchaseID())
	if err != nil {
		if errors.Is(err, reservation.ErrReservationNotFound) {
			s.logger.Warn(ctx, "Purchase has no reservation", fields)
			return
		}
		s.logger.Error(ctx, "Failed to find reservation for purchase", err, fields)
		return
	}

	rsc, err := s.resourceRepo.FindByID(ctx, r.ResourceID())
	if err != nil {
		s.logger.Error(ctx, "Failed to find resource for purchase", err, fields)
		return
	}

	err = s.mailer.SendReservationMail(ctx, &notify.MailRequest{
		Type:        t,
		Reservation: r,
		Resource:    rsc,
		Purchase:    p,
	})
	if err != nil {
		s.logger.Error(ctx, "Failed to send purchase notification", err, fields)
	}
}
