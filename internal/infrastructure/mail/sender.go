package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gomail "github.com/wneessen/go-mail"

	"respa-server/internal/domain/notification"
	"respa-server/internal/infrastructure/config"
	otelinfra "respa-server/internal/infrastructure/observability/otel"
)

type sendFunc func(ctx context.Context, msg *gomail.Msg) error

// SMTPSender SMTPでメールを送信する
type SMTPSender struct {
	cfg    *config.MailConfig
	logger *otelinfra.Logger
	send   sendFunc
	now    func() time.Time
}

// NewSMTPSender 新しいSMTPSenderを作成
func NewSMTPSender(cfg *config.MailConfig, logger *otelinfra.Logger) *SMTPSender {
	s := &SMTPSender{cfg: cfg, logger: logger, now: time.Now}
	s.send = s.dialAndSend
	return s
}

// Send メールを送信
func (s *SMTPSender) Send(ctx context.Context, msg *notification.Message) error {
	m, err := s.compose(msg)
	if err != nil {
		return err
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	if err := s.send(ctx, m); err != nil {
		s.logger.Error(ctx, "Failed to send mail", err, map[string]interface{}{
			"to":      msg.To,
			"subject": msg.Subject,
		})
		return fmt.Errorf("failed to send mail: %w", err)
	}

	s.logger.Info(ctx, "Mail sent", map[string]interface{}{
		"to":      msg.To,
		"subject": msg.Subject,
	})
	return nil
}

// compose 本文はUTF-8のquoted-printableで符号化する
func (s *SMTPSender) compose(msg *notification.Message) (*gomail.Msg, error) {
	m := gomail.NewMsg(gomail.WithCharset(gomail.CharsetUTF8), gomail.WithEncoding(gomail.EncodingQP))
	if err := m.From(s.cfg.SenderAddress()); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetDateWithValue(s.now())
	m.SetMessageIDWithValue(uuid.New().String() + "@" + s.cfg.SiteDomain)

	m.SetBodyString(gomail.TypeTextPlain, msg.Body)
	if msg.HTMLBody != "" {
		m.AddAlternativeString(gomail.TypeTextHTML, msg.HTMLBody)
	}
	return m, nil
}

func (s *SMTPSender) dialAndSend(ctx context.Context, m *gomail.Msg) error {
	client, err := gomail.NewClient(s.cfg.Host, s.clientOptions()...)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, m)
}

func (s *SMTPSender) clientOptions() []gomail.Option {
	policy, ssl := tlsMode(s.cfg)
	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
		gomail.WithTLSPolicy(policy),
	}
	if ssl {
		opts = append(opts, gomail.WithSSL())
	}
	if s.cfg.Timeout > 0 {
		opts = append(opts, gomail.WithTimeout(s.cfg.Timeout))
	}
	if s.cfg.User != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.User),
			gomail.WithPassword(s.cfg.Password),
		)
	}
	return opts
}

// tlsMode UseTLSはSTARTTLS、UseSSLは接続時からのTLS
func tlsMode(cfg *config.MailConfig) (gomail.TLSPolicy, bool) {
	switch {
	case cfg.UseSSL:
		return gomail.NoTLS, true
	case cfg.UseTLS:
		return gomail.TLSMandatory, false
	default:
		return gomail.NoTLS, false
	}
}

// NoopSender 送信せずにログだけを出力する
type NoopSender struct {
	logger *otelinfra.Logger
}

// NewNoopSender 新しいNoopSenderを作成
func NewNoopSender(logger *otelinfra.Logger) *NoopSender {
	return &NoopSender{logger: logger}
}

// Send ログを出力
func (s *NoopSender) Send(ctx context.Context, msg *notification.Message) error {
	s.logger.Info(ctx, "Mail delivery disabled, message dropped", map[string]interface{}{
		"to":      msg.To,
		"subject": msg.Subject,
	})
	return nil
}

// NewSender 設定に応じたSenderを作成
func NewSender(cfg *config.MailConfig, logger *otelinfra.Logger) notification.Mailer {
	if !cfg.Enabled {
		return NewNoopSender(logger)
	}
	return NewSMTPSender(cfg, logger)
}
