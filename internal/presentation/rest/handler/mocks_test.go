package handler

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"

	"respa-server/internal/application/notify"
	purchaseapp "respa-server/internal/application/purchase"
	reservationapp "respa-server/internal/application/reservation"
	"respa-server/internal/application/sweeper"
	restmiddleware "respa-server/internal/presentation/rest/middleware"
)

// MockReservationService モック予約サービス
type MockReservationService struct {
	mock.Mock
}

func (m *MockReservationService) Create(ctx context.Context, req *reservationapp.CreateReservationRequest) (*reservationapp.ReservationResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservationapp.ReservationResponse), args.Error(1)
}

func (m *MockReservationService) Get(ctx context.Context, reservationID int64) (*reservationapp.ReservationResponse, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservationapp.ReservationResponse), args.Error(1)
}

func (m *MockReservationService) SetState(ctx context.Context, req *reservationapp.SetStateRequest) (*reservationapp.ReservationResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservationapp.ReservationResponse), args.Error(1)
}

// MockPurchaseService モック購入サービス
type MockPurchaseService struct {
	mock.Mock
}

func (m *MockPurchaseService) HandleNotification(ctx context.Context, req *purchaseapp.NotificationRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockPurchaseService) GetPurchase(ctx context.Context, purchaseID int64) (*purchaseapp.PurchaseResponse, error) {
	args := m.Called(ctx, purchaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchaseapp.PurchaseResponse), args.Error(1)
}

// MockSweeper モック掃除サービス
type MockSweeper struct {
	mock.Mock
}

func (m *MockSweeper) SweepOnce(ctx context.Context) (*sweeper.SweepResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sweeper.SweepResult), args.Error(1)
}

// MockTemplateService モック通知テンプレートサービス
type MockTemplateService struct {
	mock.Mock
}

func (m *MockTemplateService) UpdateTemplate(ctx context.Context, req *notify.UpdateTemplateRequest) (*notify.TemplateResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notify.TemplateResponse), args.Error(1)
}

// withUser 認証済みユーザーを設定するテスト用ミドルウェア
func withUser(userID string, isStaff bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(restmiddleware.ContextKeyUserID, userID)
			c.Set(restmiddleware.ContextKeyIsStaff, isStaff)
			return next(c)
		}
	}
}

func strPtr(s string) *string {
	return &s
}

func int64Ptr(v int64) *int64 {
	return &v
}
