package reservation

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"respa-server/internal/application/notify"
	"respa-server/internal/domain/notification"
	"respa-server/internal/domain/purchase"
	"respa-server/internal/domain/reservation"
	"respa-server/internal/domain/resource"
	otelinfra "respa-server/internal/infrastructure/observability/otel"
)

// MockReservationRepository モック予約リポジトリ
type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) Create(ctx context.Context, r *reservation.Reservation) error {
	args := m.Called(ctx, r)
	if args.Error(0) == nil {
		r.AssignID(args.Get(1).(int64))
	}
	return args.Error(0)
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

// MockPurchaseRepository モック購入リポジトリ
type MockPurchaseRepository struct {
	mock.Mock
}

func (m *MockPurchaseRepository) Create(ctx context.Context, p *purchase.Purchase) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPurchaseRepository) Save(ctx context.Context, p *purchase.Purchase) error {
	return m.Called(ctx, p).Error(0)
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

// MockTransactionManager モックトランザクションマネージャー
type MockTransactionManager struct {
	mock.Mock
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Called(ctx, fn)
	// 実際のトランザクションは使わず、関数を直接実行
	return fn(ctx)
}

// MockPaymentService モック決済サービス
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) CreatePurchase(ctx context.Context, r *reservation.Reservation, rsc *resource.Resource) (*purchase.Purchase, error) {
	args := m.Called(ctx, r, rsc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchase.Purchase), args.Error(1)
}

func (m *MockPaymentService) RequestPayment(ctx context.Context, p *purchase.Purchase) (string, error) {
	args := m.Called(ctx, p)
	return args.String(0), args.Error(1)
}

// MockNotifier モック通知サービス
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendReservationMail(ctx context.Context, req *notify.MailRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockNotifier) NotifyApprovers(ctx context.Context, r *reservation.Reservation, rsc *resource.Resource, p *purchase.Purchase) error {
	return m.Called(ctx, r, rsc, p).Error(0)
}

// MockEventPublisher モックイベント発行
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, e reservation.Event) error {
	return m.Called(ctx, e).Error(0)
}

type testDeps struct {
	reservations *MockReservationRepository
	resources    *MockResourceRepository
	purchases    *MockPurchaseRepository
	txManager    *MockTransactionManager
	payments     *MockPaymentService
	notifier     *MockNotifier
	publisher    *MockEventPublisher
}

func newTestDeps() *testDeps {
	return &testDeps{
		reservations: new(MockReservationRepository),
		resources:    new(MockResourceRepository),
		purchases:    new(MockPurchaseRepository),
		txManager:    new(MockTransactionManager),
		payments:     new(MockPaymentService),
		notifier:     new(MockNotifier),
		publisher:    new(MockEventPublisher),
	}
}

func (d *testDeps) assert(t *testing.T) {
	d.reservations.AssertExpectations(t)
	d.resources.AssertExpectations(t)
	d.purchases.AssertExpectations(t)
	d.payments.AssertExpectations(t)
	d.notifier.AssertExpectations(t)
	d.publisher.AssertExpectations(t)
}

func newTestService(t *testing.T, d *testDeps) *ReservationApplicationService {
	t.Helper()
	logger := otelinfra.NewLogger(otel.Tracer("test"), otelinfra.WithOutput(io.Discard))
	metrics, err := otelinfra.NewMetrics("test")
	require.NoError(t, err)

	return NewReservationApplicationService(
		d.reservations,
		d.resources,
		d.purchases,
		d.txManager,
		d.payments,
		d.notifier,
		d.publisher,
		logger,
		metrics,
	)
}

var (
	testBegin = time.Date(2017, 1, 1, 12, 0, 0, 0, time.UTC)
	testEnd   = testBegin.Add(2 * time.Hour)
)

func strPtr(s string) *string {
	return &s
}

func int64Ptr(v int64) *int64 {
	return &v
}

func newTestResource(manual, paid bool) *resource.Resource {
	p := resource.Params{
		ResourceID:             1,
		Name:                   "Studio",
		NeedManualConfirmation: manual,
		MinPricePerHour:        decimal.NewFromInt(10),
	}
	if paid {
		p.CeeposPaymentRequired = true
		p.ProductCode = "TEST1"
	}
	return resource.MustNewResource(p)
}

func newTestReservation(state reservation.State, purchaseID *int64) *reservation.Reservation {
	return reservation.Restore(reservation.Snapshot{
		ReservationID: 10,
		ResourceID:    1,
		Begin:         testBegin,
		End:           testEnd,
		UserID:        strPtr("user-1"),
		State:         state,
		PurchaseID:    purchaseID,
	})
}

// mailOf SendReservationMailの引数を通知種類で照合する
func mailOf(t notification.NotificationType) interface{} {
	return mock.MatchedBy(func(req *notify.MailRequest) bool {
		return req.Type == t
	})
}

// eventOf Publishの引数をイベント種類で照合する
func eventOf(t reservation.EventType) interface{} {
	return mock.MatchedBy(func(e reservation.Event) bool {
		return e.Type == t
	})
}
