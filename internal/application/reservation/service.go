package reservation

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"respa-server/internal/application/notify"
	"respa-server/internal/domain/purchase"
	"respa-server/internal/domain/reservation"
	"respa-server/internal/domain/resource"
	"respa-server/internal/domain/service"
	"respa-server/internal/domain/transaction"
	otelinfra "respa-server/internal/infrastructure/observability/otel"
)

// PaymentService 予約の決済処理
type PaymentService interface {
	CreatePurchase(ctx context.Context, r *reservation.Reservation, rsc *resource.Resource) (*purchase.Purchase, error)
	RequestPayment(ctx context.Context, p *purchase.Purchase) (string, error)
}

// Notifier 予約に関する通知メールの送信
type Notifier interface {
	SendReservationMail(ctx context.Context, req *notify.MailRequest) error
	NotifyApprovers(ctx context.Context, r *reservation.Reservation, rsc *resource.Resource, p *purchase.Purchase) error
}

// ReservationApplicationService 予約アプリケーションサービス
type ReservationApplicationService struct {
	reservationRepo reservation.ReservationRepository
	resourceRepo    resource.ResourceRepository
	purchaseRepo    purchase.PurchaseRepository
	availability    *service.AvailabilityService
	txManager       transaction.TransactionManager
	payments        PaymentService
	notifier        Notifier
	publisher       reservation.EventPublisher
	logger          *otelinfra.Logger
	metrics         *otelinfra.Metrics
	tracer          trace.Tracer
}

// NewReservationApplicationService 新しいReservationApplicationServiceを作成
func NewReservationApplicationService(
	reservationRepo reservation.ReservationRepository,
	resourceRepo resource.ResourceRepository,
	purchaseRepo purchase.PurchaseRepository,
	txManager transaction.TransactionManager,
	payments PaymentService,
	notifier Notifier,
	publisher reservation.EventPublisher,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *ReservationApplicationService {
	return &ReservationApplicationService{
		reservationRepo: reservationRepo,
		resourceRepo:    resourceRepo,
		purchaseRepo:    purchaseRepo,
		availability:    service.NewAvailabilityService(reservationRepo),
		txManager:       txManager,
		payments:        payments,
		notifier:        notifier,
		publisher:       publisher,
		logger:          logger,
		metrics:         metrics,
		tracer:          otel.Tracer("reservation-service"),
	}
}

// Create 予約を作成し、リソースの設定に応じた初期状態に遷移させる
func (s *ReservationApplicationService) Create(ctx context.Context, req *CreateReservationRequest) (*ReservationResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ReservationApplicationService.Create")
	defer span.End()

	span.SetAttributes(attribute.Int64("resource_id", req.ResourceID))

	rsc, err := s.resourceRepo.FindByID(ctx, req.ResourceID)
	if err != nil {
		s.fail(span, err)
		return nil, err
	}

	r, err := reservation.NewReservation(req.ResourceID, req.Begin, req.End, req.UserID, reservation.StateCreated)
	if err != nil {
		s.fail(span, err)
		return nil, err
	}
	r.SetComments(req.Comments)
	r.SetEvent(req.Event)
	r.SetReserver(req.Reserver)
	r.SetOriginID(req.OriginID)
	r.SetAccessCode(req.AccessCode)

	if err := r.Validate(rsc); err != nil {
		s.fail(span, err)
		return nil, err
	}
	if err := r.PrepareAccessCode(rsc); err != nil {
		s.fail(span, err)
		return nil, fmt.Errorf("failed to prepare access code: %w", err)
	}

	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		// 同じリソースへの同時作成はリソース行のロックで直列化する
		if err := s.resourceRepo.LockByID(ctx, rsc.ResourceID()); err != nil {
			return err
		}
		if err := s.availability.CheckCollision(ctx, r); err != nil {
			return err
		}
		return s.reservationRepo.Create(ctx, r)
	})
	if err != nil {
		s.fail(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int64("reservation_id", r.ReservationID()))
	s.logger.Info(ctx, "Reservation created", map[string]interface{}{
		"reservation_id": r.ReservationID(),
		"resource_id":    rsc.ResourceID(),
		"begin":          r.Begin(),
		"end":            r.End(),
	})

	var paymentAddress string
	// 手動承認のないリソースは作成と同時に決済を開始する
	if rsc.RequiresPayment() && !rsc.NeedManualConfirmation() {
		_, address, err := s.startPayment(ctx, r, rsc)
		if err != nil {
			err = errors.Join(err, s.discard(ctx, r))
			s.fail(span, err)
			return nil, err
		}
		paymentAddress = address
	}

	target := reservation.StateConfirmed
	if rsc.NeedManualConfirmation() {
		target = reservation.StateRequested
	}
	if err := s.transition(ctx, r, rsc, target, req.UserID); err != nil {
		s.fail(span, err)
		return nil, err
	}

	resp := NewReservationResponse(r)
	resp.PaymentAddress = paymentAddress
	return resp, nil
}

// SetState 予約状態を変更する
func (s *ReservationApplicationService) SetState(ctx context.Context, req *SetStateRequest) (*ReservationResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ReservationApplicationService.SetState")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("reservation_id", req.ReservationID),
		attribute.String("state", req.State),
	)

	newState, err := reservation.NewState(req.State)
	if err != nil {
		err = fmt.Errorf("%w: %v", reservation.ErrInvalidStateTransition, err)
		s.fail(span, err)
		return nil, err
	}

	r, err := s.reservationRepo.FindByID(ctx, req.ReservationID)
	if err != nil {
		s.fail(span, err)
		return nil, err
	}
	rsc, err := s.resourceRepo.FindByID(ctx, r.ResourceID())
	if err != nil {
		s.fail(span, err)
		return nil, err
	}

	if err := s.transition(ctx, r, rsc, newState, req.UserID); err != nil {
		s.fail(span, err)
		return nil, err
	}
	return NewReservationResponse(r), nil
}

// Get 予約を取得
func (s *ReservationApplicationService) Get(ctx context.Context, reservationID int64) (*ReservationResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ReservationApplicationService.Get")
	defer span.End()

	r, err := s.reservationRepo.FindByID(ctx, reservationID)
	if err != nil {
		s.fail(span, err)
		return nil, err
	}
	return NewReservationResponse(r), nil
}

// SendMessages 遷移先の状態に応じて決済の開始と通知の送信を行う
func (s *ReservationApplicationService) SendMessages(ctx context.Context, newState reservation.State, r *reservation.Reservation, rsc *resource.Resource, actingUserID *string) error {
	ctx, span := s.tracer.Start(ctx, "ReservationApplicationService.SendMessages")
	defer span.End()

	plan := service.PlanMessages(newState, r, rsc, actingUserID)
	span.SetAttributes(
		attribute.String("state", newState.String()),
		attribute.Int("notifications", len(plan.Notifications)),
		attribute.Bool("request_payment", plan.RequestPayment),
	)

	var p *purchase.Purchase
	var err error
	if plan.RequestPayment {
		if p, _, err = s.startPayment(ctx, r, rsc); err != nil {
			s.fail(span, err)
			return err
		}
	} else if len(plan.Notifications) > 0 || plan.NotifyApprovers {
		if p, err = s.purchaseOf(ctx, r); err != nil {
			s.fail(span, err)
			return err
		}
	}

	for _, t := range plan.Notifications {
		err = s.notifier.SendReservationMail(ctx, &notify.MailRequest{
			Type:        t,
			Reservation: r,
			Resource:    rsc,
			Purchase:    p,
		})
		if err != nil {
			s.logger.Error(ctx, "Failed to send reservation notification", err, map[string]interface{}{
				"reservation_id":    r.ReservationID(),
				"notification_type": t.String(),
			})
		}
	}

	if plan.NotifyApprovers {
		if err := s.notifier.NotifyApprovers(ctx, r, rsc, p); err != nil {
			s.fail(span, err)
			return err
		}
	}

	if plan.EmitCancelled {
		s.publish(ctx, reservation.NewEvent(reservation.EventReservationCancelled, r, actingUserID))
	}
	return nil
}

// transition 状態を遷移させて保存し、変化があれば通知を送る
func (s *ReservationApplicationService) transition(ctx context.Context, r *reservation.Reservation, rsc *resource.Resource, newState reservation.State, actingUserID *string) error {
	oldState := r.State()
	changed, events, err := r.SetState(newState, actingUserID)
	if err != nil {
		return err
	}

	if changed {
		if err := s.reservationRepo.Save(ctx, r); err != nil {
			return fmt.Errorf("failed to save reservation: %w", err)
		}
		s.metrics.RecordStateTransition(ctx, oldState.String(), newState.String())
		s.logger.Info(ctx, "Reservation state changed", map[string]interface{}{
			"reservation_id": r.ReservationID(),
			"from":           oldState.String(),
			"to":             newState.String(),
		})
	}

	for _, t := range events {
		s.publish(ctx, reservation.NewEvent(t, r, actingUserID))
	}

	if !changed {
		return nil
	}
	return s.SendMessages(ctx, newState, r, rsc, actingUserID)
}

// startPayment 購入を作成して決済を開始し、予約に紐づける
func (s *ReservationApplicationService) startPayment(ctx context.Context, r *reservation.Reservation, rsc *resource.Resource) (*purchase.Purchase, string, error) {
	p, err := s.payments.CreatePurchase(ctx, r, rsc)
	if err != nil {
		return nil, "", err
	}
	address, err := s.payments.RequestPayment(ctx, p)
	if err != nil {
		return nil, "", err
	}

	r.SetPurchase(p.PurchaseID())
	if err := s.reservationRepo.Save(ctx, r); err != nil {
		return nil, "", fmt.Errorf("failed to save reservation: %w", err)
	}
	return p, address, nil
}

// discard 決済を開始できなかった予約を削除し、枠を解放する
func (s *ReservationApplicationService) discard(ctx context.Context, r *reservation.Reservation) error {
	fields := map[string]interface{}{
		"reservation_id": r.ReservationID(),
		"resource_id":    r.ResourceID(),
	}
	if err := s.reservationRepo.Delete(ctx, r.ReservationID()); err != nil {
		s.logger.Error(ctx, "Failed to delete reservation after payment failure", err, fields)
		return fmt.Errorf("failed to delete reservation: %w", err)
	}
	s.logger.Warn(ctx, "Reservation deleted after payment failure", fields)
	return nil
}

func (s *ReservationApplicationService) purchaseOf(ctx context.Context, r *reservation.Reservation) (*purchase.Purchase, error) {
	if !r.HasPurchase() {
		return nil, nil
	}
	p, err := s.purchaseRepo.FindByID(ctx, *r.PurchaseID())
	if err != nil {
		return nil, fmt.Errorf("failed to find purchase: %w", err)
	}
	return p, nil
}

// publish イベントを発行する。失敗は記録のみ
func (s *ReservationApplicationService) publish(ctx context.Context, e reservation.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Error(ctx, "Failed to publish reservation event", err, map[string]interface{}{
			"reservation_id": e.ReservationID,
			"event_type":     e.Type.String(),
		})
	}
}

func (s *ReservationApplicationService) fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(otelcodes.Error, err.Error())
}
