package handler

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	reservationapp "respa-server/internal/application/reservation"
	"respa-server/internal/domain/reservation"
	"respa-server/internal/presentation/grpc/interceptor"
)

// ReservationService 予約アプリケーションサービス
type ReservationService interface {
	Get(ctx context.Context, reservationID int64) (*reservationapp.ReservationResponse, error)
	SetState(ctx context.Context, req *reservationapp.SetStateRequest) (*reservationapp.ReservationResponse, error)
}

// ReservationHandler gRPC予約サービスハンドラー
type ReservationHandler struct {
	reservationService ReservationService
}

// NewReservationHandler 新しいReservationHandlerを作成
func NewReservationHandler(reservationService ReservationService) *ReservationHandler {
	return &ReservationHandler{
		reservationService: reservationService,
	}
}

// GetReservation 予約取得
func (h *ReservationHandler) GetReservation(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	if req.GetValue() <= 0 {
		return nil, status.Error(codes.InvalidArgument, "reservation_id must be a positive integer")
	}

	resp, err := h.reservationService.Get(ctx, req.GetValue())
	if err != nil {
		return nil, handleError(err)
	}

	userID, _ := interceptor.UserIDFromContext(ctx)
	return reservationStruct(resp, userID, interceptor.IsStaffFromContext(ctx))
}

// SetReservationState 予約状態変更。スタッフ以外は自分の予約のキャンセルのみ
func (h *ReservationHandler) SetReservationState(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, ok := interceptor.UserIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "user_id not found in token")
	}

	fields := req.GetFields()
	id := int64(fields["reservation_id"].GetNumberValue())
	if id <= 0 {
		return nil, status.Error(codes.InvalidArgument, "reservation_id must be a positive integer")
	}
	state := fields["state"].GetStringValue()
	if state == "" {
		return nil, status.Error(codes.InvalidArgument, "state is required")
	}

	isStaff := interceptor.IsStaffFromContext(ctx)
	if !isStaff {
		current, err := h.reservationService.Get(ctx, id)
		if err != nil {
			return nil, handleError(err)
		}
		if current.UserID == nil || *current.UserID != userID || state != reservation.StateCancelled.String() {
			return nil, status.Error(codes.PermissionDenied, "not allowed to change the state of this reservation")
		}
	}

	resp, err := h.reservationService.SetState(ctx, &reservationapp.SetStateRequest{
		ReservationID: id,
		State:         state,
		UserID:        &userID,
	})
	if err != nil {
		return nil, handleError(err)
	}
	return reservationStruct(resp, userID, isStaff)
}

// reservationStruct 個人情報とアクセスコードは予約者本人かスタッフにのみ含める
func reservationStruct(r *reservationapp.ReservationResponse, viewerID string, isStaff bool) (*structpb.Struct, error) {
	m := map[string]interface{}{
		"id":          r.ReservationID,
		"resource_id": r.ResourceID,
		"begin":       r.Begin.Format(time.RFC3339),
		"end":         r.End.Format(time.RFC3339),
		"state":       r.State,
	}
	if r.UserID != nil {
		m["user_id"] = *r.UserID
	}
	if r.ApproverID != nil {
		m["approver_id"] = *r.ApproverID
	}
	isOwner := r.UserID != nil && viewerID != "" && *r.UserID == viewerID
	if isStaff || isOwner {
		if r.PurchaseID != nil {
			m["purchase_id"] = *r.PurchaseID
		}
		optional := map[string]string{
			"access_code":            r.AccessCode,
			"comments":               r.Comments,
			"event_subject":          r.Event.Subject,
			"event_description":      r.Event.Description,
			"reserver_name":          r.Reserver.Name,
			"reserver_email_address": r.Reserver.EmailAddress,
			"payment_address":        r.PaymentAddress,
		}
		for k, v := range optional {
			if v != "" {
				m[k] = v
			}
		}
	}

	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode reservation")
	}
	return s, nil
}
