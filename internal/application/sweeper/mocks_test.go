package sweeper

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"respa-server/internal/domain/purchase"
	"respa-server/internal/domain/reservation"
	"respa-server/internal/domain/resource"
	otelinfra "respa-server/internal/infrastructure/observability/otel"
)

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

// MockPaymentService モック決済サービス
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) CancelPayment(ctx context.Context, p *purchase.Purchase) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPaymentService) MarkFailure(ctx context.Context, p *purchase.Purchase) error {
	return m.Called(ctx, p).Error(0)
}

// MockLocker モック排他ロック
type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockLocker) Unlock(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type testDeps struct {
	purchases    *MockPurchaseRepository
	reservations *MockReservationRepository
	resources    *MockResourceRepository
	payments     *MockPaymentService
	locker       *MockLocker
}

func newTestDeps() *testDeps {
	return &testDeps{
		purchases:    new(MockPurchaseRepository),
		reservations: new(MockReservationRepository),
		resources:    new(MockResourceRepository),
		payments:     new(MockPaymentService),
		locker:       new(MockLocker),
	}
}

func (d *testDeps) assert(t *testing.T) {
	d.purchases.AssertExpectations(t)
	d.reservations.AssertExpectations(t)
	d.resources.AssertExpectations(t)
	d.payments.AssertExpectations(t)
	d.locker.AssertExpectations(t)
}

var (
	testNow     = time.Date(2017, 1, 1, 12, 0, 0, 0, time.UTC)
	testOptions = Options{Expiration: 15 * time.Minute, LongExpiration: 24 * time.Hour, LockTTL: 50 * time.Second}
)

func newTestService(t *testing.T, d *testDeps, locker Locker) *SweeperApplicationService {
	t.Helper()
	logger := otelinfra.NewLogger(otel.Tracer("test"), otelinfra.WithOutput(io.Discard))
	metrics, err := otelinfra.NewMetrics("test")
	require.NoError(t, err)

	s := NewSweeperApplicationService(d.purchases, d.reservations, d.resources, d.payments, locker, testOptions, logger, metrics)
	s.now = func() time.Time { return testNow }
	return s
}

// newInProgressPurchase startedだけ前に決済を開始した購入
func newInProgressPurchase(id int64, started time.Duration) *purchase.Purchase {
	status := purchase.PaymentStatusInProgress
	return purchase.Restore(purchase.State{
		PurchaseID:     id,
		PurchaseCode:   "TEST1",
		VATPercent:     24,
		ProcessStarted: testNow.Add(-started),
		Status:         &status,
	})
}

func newTestReservation(id, purchaseID int64) *reservation.Reservation {
	return reservation.Restore(reservation.Snapshot{
		ReservationID: id,
		ResourceID:    1,
		Begin:         testNow.Add(24 * time.Hour),
		End:           testNow.Add(26 * time.Hour),
		State:         reservation.StateConfirmed,
		PurchaseID:    &purchaseID,
	})
}

func newTestResource(manual bool) *resource.Resource {
	return resource.MustNewResource(resource.Params{
		ResourceID:             1,
		Name:                   "Studio",
		NeedManualConfirmation: manual,
		CeeposPaymentRequired:  true,
		ProductCode:            "TEST1",
	})
}
