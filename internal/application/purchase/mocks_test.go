package purchase

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"respa-server/internal/application/notify"
	"respa-server/internal/domain/purchase"
	"respa-server/internal/domain/reservation"
	"respa-server/internal/domain/resource"
	"respa-server/internal/infrastructure/ceepos"
	otelinfra "respa-server/internal/infrastructure/observability/otel"
)

// MockPurchaseRepository モック購入リポジトリ
type MockPurchaseRepository struct {
	mock.Mock
}

func (m *MockPurchaseRepository) Create(ctx context.Context, p *purchase.Purchase) error {
	args := m.Called(ctx, p)
	if args.Error(0) == nil {
		p.AssignID(args.Get(1).(int64))
	}
	return args.Error(0)
}

func (m *MockPurchaseRepository) Save(ctx context.Context, p *purchase.Purchase) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPurchaseRepository) FindByID(ctx context.Context, purchaseID int64) (*purchase.Purchase, error) {
	args := m.Called(ctx, purchaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchase.Purchase), args.Error(1)
}

func (m *MockPurchaseRepository) FindByIDAndReference(ctx context.Context, purchaseID int64, reference string) (*purchase.Purchase, error) {
	args := m.Called(ctx, purchaseID, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchase.Purchase), args.Error(1)
}

func (m *MockPurchaseRepository) FindByIDAndReferenceForUpdate(ctx context.Context, purchaseID int64, reference string) (*purchase.Purchase, error) {
	args := m.Called(ctx, purchaseID, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchase.Purchase), args.Error(1)
}

func (m *MockPurchaseRepository) FindByStatus(ctx context.Context, status purchase.PaymentStatus) ([]*purchase.Purchase, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*purchase.Purchase), args.Error(1)
}

// MockReservationRepository モック予約リポジトリ
type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) Create(ctx context.Context, r *reservation.Reservation) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockReservationRepository) Save(ctx context.Context, r *reservation.Reservation) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockReservationRepository) FindByID(ctx context.Context, reservationID int64) (*reservation.Reservation, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) FindByPurchaseID(ctx context.Context, purchaseID int64) (*reservation.Reservation, error) {
	args := m.Called(ctx, purchaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) FindOverlapping(ctx context.Context, resourceID int64, begin, end time.Time, excludeID int64) ([]*reservation.Reservation, error) {
	args := m.Called(ctx, resourceID, begin, end, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) Delete(ctx context.Context, reservationID int64) error {
	return m.Called(ctx, reservationID).Error(0)
}

// MockResourceRepository モックリソースリポジトリ
type MockResourceRepository struct {
	mock.Mock
}

func (m *MockResourceRepository) FindByID(ctx context.Context, resourceID int64) (*resource.Resource, error) {
	args := m.Called(ctx, resourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*resource.Resource), args.Error(1)
}

func (m *MockResourceRepository) LockByID(ctx context.Context, resourceID int64) error {
	return m.Called(ctx, resourceID).Error(0)
}

// MockTransactionManager モックトランザクションマネージャー
type MockTransactionManager struct {
	active bool
	calls  int
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	m.active = true
	defer func() { m.active = false }()
	// 実際のトランザクションは使わず、関数を直接実行
	return fn(ctx)
}

// MockPaymentGateway モック決済サービス
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) InitializePayment(ctx context.Context, req *ceepos.PaymentRequest) (*ceepos.PaymentRequestAck, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ceepos.PaymentRequestAck), args.Error(1)
}

func (m *MockPaymentGateway) CancelPayment(ctx context.Context, cancel *ceepos.PaymentCancellation) (*ceepos.CancellationAck, error) {
	args := m.Called(ctx, cancel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ceepos.CancellationAck), args.Error(1)
}

// MockMailer モック通知メール送信
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendReservationMail(ctx context.Context, req *notify.MailRequest) error {
	return m.Called(ctx, req).Error(0)
}

type testDeps struct {
	purchases    *MockPurchaseRepository
	reservations *MockReservationRepository
	resources    *MockResourceRepository
	txManager    *MockTransactionManager
	gateway      *MockPaymentGateway
	mailer       *MockMailer
}

func newTestDeps() *testDeps {
	return &testDeps{
		purchases:    new(MockPurchaseRepository),
		reservations: new(MockReservationRepository),
		resources:    new(MockResourceRepository),
		txManager:    new(MockTransactionManager),
		gateway:      new(MockPaymentGateway),
		mailer:       new(MockMailer),
	}
}

func (d *testDeps) assert(t *testing.T) {
	d.purchases.AssertExpectations(t)
	d.reservations.AssertExpectations(t)
	d.resources.AssertExpectations(t)
	d.gateway.AssertExpectations(t)
	d.mailer.AssertExpectations(t)
}

var testNow = time.Date(2017, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, d *testDeps) *PurchaseApplicationService {
	t.Helper()
	logger := otelinfra.NewLogger(otel.Tracer("test"), otelinfra.WithOutput(io.Discard))
	metrics, err := otelinfra.NewMetrics("test")
	require.NoError(t, err)

	signer := ceepos.NewSigner("2.1.2", "respa", 3, "secret")
	s := NewPurchaseApplicationService(d.purchases, d.reservations, d.resources, d.txManager, d.gateway, signer, d.mailer, logger, metrics, "https://respa.example.com/v1/purchase/notify")
	s.now = func() time.Time { return testNow }
	return s
}
