package notify

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"respa-server/internal/domain/notification"
	"respa-server/internal/domain/user"
	otelinfra "respa-server/internal/infrastructure/observability/otel"
)

// MockTemplateRepository モック通知テンプレートリポジトリ
type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) FindByType(ctx context.Context, t notification.NotificationType) (*notification.Template, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notification.Template), args.Error(1)
}

func (m *MockTemplateRepository) Save(ctx context.Context, tmpl *notification.Template) error {
	args := m.Called(ctx, tmpl)
	return args.Error(0)
}

// MockUserRepository モックユーザーリポジトリ
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, userID string) (*user.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) FindApproversByResourceID(ctx context.Context, resourceID int64, limit int) ([]*user.User, error) {
	args := m.Called(ctx, resourceID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*user.User), args.Error(1)
}

// MockMailer モックメール送信
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg *notification.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func newTestService(t *testing.T, templateRepo *MockTemplateRepository, userRepo *MockUserRepository, mailer *MockMailer) *NotificationApplicationService {
	t.Helper()
	logger := otelinfra.NewLogger(otel.Tracer("test"), otelinfra.WithOutput(io.Discard))
	metrics, err := otelinfra.NewMetrics("test")
	require.NoError(t, err)
	return NewNotificationApplicationService(templateRepo, userRepo, mailer, logger, metrics, "fi", nil)
}
