package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"respa-server/internal/domain/notification"
	"respa-server/internal/domain/purchase"
	"respa-server/internal/domain/reservation"
	"respa-server/internal/domain/resource"
	"respa-server/internal/domain/user"
	otelinfra "respa-server/internal/infrastructure/observability/otel"
)

// MaxApprovers 承認依頼を送る承認者の上限
const MaxApprovers = 100

// NotificationApplicationService 通知メールアプリケーションサービス
type NotificationApplicationService struct {
	templates       *templateCache
	templateRepo    notification.TemplateRepository
	userRepo        user.UserRepository
	mailer          notification.Mailer
	logger          *otelinfra.Logger
	metrics         *otelinfra.Metrics
	tracer          trace.Tracer
	defaultLanguage string
	location        *time.Location
}

// NewNotificationApplicationService 新しいNotificationApplicationServiceを作成
func NewNotificationApplicationService(
	templateRepo notification.TemplateRepository,
	userRepo user.UserRepository,
	mailer notification.Mailer,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
	defaultLanguage string,
	location *time.Location,
) *NotificationApplicationService {
	return &NotificationApplicationService{
		templates:       newTemplateCache(templateRepo, DefaultTemplateTTL),
		templateRepo:    templateRepo,
		userRepo:        userRepo,
		mailer:          mailer,
		logger:          logger,
		metrics:         metrics,
		tracer:          otel.Tracer("notification-service"),
		defaultLanguage: defaultLanguage,
		location:        location,
	}
}

// SendReservationMail 予約に関する通知を送り、種類に応じてリソース管理者にも控えを送る
func (s *NotificationApplicationService) SendReservationMail(ctx context.Context, req *MailRequest) error {
	ctx, span := s.tracer.Start(ctx, "NotificationApplicationService.SendReservationMail")
	defer span.End()

	r := req.Reservation
	span.SetAttributes(
		attribute.String("notification_type", req.Type.String()),
		attribute.Int64("reservation_id", r.ReservationID()),
	)

	owner, err := s.reservationUser(ctx, r)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}

	var email string
	languageUser := req.Recipient
	if req.Recipient != nil {
		email = req.Recipient.Email()
	} else {
		if r.Reserver().EmailAddress == "" && owner == nil {
			s.skip(ctx, req.Type, r, "no recipient")
			return nil
		}
		email = r.Reserver().EmailAddress
		if email == "" {
			email = owner.Email()
		}
		languageUser = owner
	}
	if email == "" {
		s.skip(ctx, req.Type, r, "recipient has no email")
		return nil
	}

	language := s.defaultLanguage
	if languageUser != nil && languageUser.PreferredLanguage() != "" {
		language = languageUser.PreferredLanguage()
	}

	data := BuildContext(language, r, req.Resource, req.Purchase, owner, s.location)

	sent, err := s.deliver(ctx, req.Type, language, email, data, r)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}
	if !sent {
		return nil
	}

	copyType, ok := req.Type.OwnerCopy()
	if !ok {
		return nil
	}
	ownerEmail := req.Resource.OwnerEmail()
	if ownerEmail == "" {
		s.skip(ctx, copyType, r, "resource has no owner email")
		return nil
	}
	if _, err := s.deliver(ctx, copyType, language, ownerEmail, data, r); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}
	return nil
}

// NotifyApprovers リソースの承認者全員に承認依頼を送る
func (s *NotificationApplicationService) NotifyApprovers(ctx context.Context, r *reservation.Reservation, rsc *resource.Resource, p *purchase.Purchase) error {
	ctx, span := s.tracer.Start(ctx, "NotificationApplicationService.NotifyApprovers")
	defer span.End()

	approvers, err := s.userRepo.FindApproversByResourceID(ctx, rsc.ResourceID(), MaxApprovers+1)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to find approvers: %w", err)
	}
	if len(approvers) > MaxApprovers {
		err := fmt.Errorf("%w (reservation %d)", reservation.ErrTooManyApprovers, r.ReservationID())
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}

	span.SetAttributes(attribute.Int("approver_count", len(approvers)))

	var errs []error
	for _, approver := range approvers {
		err := s.SendReservationMail(ctx, &MailRequest{
			Type:        notification.TypeReservationRequestedOfficial,
			Reservation: r,
			Resource:    rsc,
			Purchase:    p,
			Recipient:   approver,
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// UpdateTemplate 通知テンプレートを登録または更新
func (s *NotificationApplicationService) UpdateTemplate(ctx context.Context, req *UpdateTemplateRequest) (*TemplateResponse, error) {
	ctx, span := s.tracer.Start(ctx, "NotificationApplicationService.UpdateTemplate")
	defer span.End()

	span.SetAttributes(attribute.String("notification_type", req.Type))

	t, err := notification.NewNotificationType(req.Type)
	if err != nil {
		err = fmt.Errorf("%w: %v", notification.ErrInvalidTemplate, err)
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	tmpl, err := notification.NewTemplate(t, req.Translations)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	if err := s.templateRepo.Save(ctx, tmpl); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to save notification template: %w", err)
	}
	s.templates.invalidate(t)

	s.logger.Info(ctx, "Notification template updated", map[string]interface{}{
		"notification_type": t.String(),
		"languages":         len(req.Translations),
	})

	return &TemplateResponse{
		Type:         t.String(),
		Translations: tmpl.Translations(),
		UpdatedAt:    tmpl.UpdatedAt().Format(time.RFC3339),
	}, nil
}

// deliver テンプレートを描画して送信し、送信したかどうかを返す
// テンプレートがないか描画できなければログを出して送信しない
func (s *NotificationApplicationService) deliver(ctx context.Context, t notification.NotificationType, language, to string, data map[string]interface{}, r *reservation.Reservation) (bool, error) {
	tmpl, err := s.templates.get(ctx, t)
	if err != nil {
		if errors.Is(err, notification.ErrTemplateNotFound) {
			s.logger.Error(ctx, "Notification template missing", err, map[string]interface{}{
				"notification_type": t.String(),
				"reservation_id":    r.ReservationID(),
			})
			s.metrics.RecordNotification(ctx, t.String(), "skipped")
			return false, nil
		}
		return false, fmt.Errorf("failed to load notification template: %w", err)
	}

	rendered, err := tmpl.Render(language, s.defaultLanguage, data)
	if err != nil {
		s.logger.Error(ctx, "Failed to render notification", err, map[string]interface{}{
			"notification_type": t.String(),
			"language":          language,
			"reservation_id":    r.ReservationID(),
		})
		s.metrics.RecordNotification(ctx, t.String(), "skipped")
		return false, nil
	}

	err = s.mailer.Send(ctx, &notification.Message{
		To:       to,
		Subject:  rendered.Subject,
		Body:     rendered.Body,
		HTMLBody: rendered.HTMLBody,
	})
	if err != nil {
		s.metrics.RecordNotification(ctx, t.String(), "failed")
		return false, fmt.Errorf("failed to send %s notification: %w", t, err)
	}

	s.metrics.RecordNotification(ctx, t.String(), "sent")
	s.logger.Info(ctx, "Notification sent", map[string]interface{}{
		"notification_type": t.String(),
		"reservation_id":    r.ReservationID(),
		"language":          language,
	})
	return true, nil
}

func (s *NotificationApplicationService) reservationUser(ctx context.Context, r *reservation.Reservation) (*user.User, error) {
	if r.UserID() == nil {
		return nil, nil
	}
	u, err := s.userRepo.FindByID(ctx, *r.UserID())
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find reservation user: %w", err)
	}
	return u, nil
}

func (s *NotificationApplicationService) skip(ctx context.Context, t notification.NotificationType, r *reservation.Reservation, reason string) {
	s.metrics.RecordNotification(ctx, t.String(), "skipped")
	s.logger.Debug(ctx, "Notification skipped", map[string]interface{}{
		"notification_type": t.String(),
		"reservation_id":    r.ReservationID(),
		"reason":            reason,
	})
}
