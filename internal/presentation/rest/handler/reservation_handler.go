package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	reservationapp "respa-server/internal/application/reservation"
	"respa-server/internal/domain/reservation"
	restmiddleware "respa-server/internal/presentation/rest/middleware"
)

// ReservationService 予約ユースケース
type ReservationService interface {
	Create(ctx context.Context, req *reservationapp.CreateReservationRequest) (*reservationapp.ReservationResponse, error)
	Get(ctx context.Context, reservationID int64) (*reservationapp.ReservationResponse, error)
	SetState(ctx context.Context, req *reservationapp.SetStateRequest) (*reservationapp.ReservationResponse, error)
}

// ReservationHandler 予約関連ハンドラー
type ReservationHandler struct {
	reservationService ReservationService
}

// NewReservationHandler 新しいReservationHandlerを作成
func NewReservationHandler(reservationService ReservationService) *ReservationHandler {
	return &ReservationHandler{
		reservationService: reservationService,
	}
}

// CreateReservation 予約作成ハンドラー
// @Summary 予約を作成
// @Description リソースを予約します。手動承認が必要なリソースは承認待ち、有料リソースは決済URLを返します
// @Tags reservations
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body CreateReservationRequest true "予約作成リクエスト"
// @Success 201 {object} ReservationResponse "予約作成成功"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Failure 404 {object} ErrorResponse "リソースが見つからない"
// @Failure 409 {object} ErrorResponse "予約の重複"
// @Router /reservations [post]
func (h *ReservationHandler) CreateReservation(c echo.Context) error {
	userID, ok := restmiddleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "user_id not found in token")
	}

	var reqBody CreateReservationRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if reqBody.ResourceID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "resource_id is required")
	}
	if reqBody.Begin.IsZero() || reqBody.End.IsZero() {
		return echo.NewHTTPError(http.StatusBadRequest, "begin and end are required")
	}

	resp, err := h.reservationService.Create(c.Request().Context(), &reservationapp.CreateReservationRequest{
		ResourceID: reqBody.ResourceID,
		Begin:      reqBody.Begin,
		End:        reqBody.End,
		UserID:     &userID,
		Comments:   reqBody.Comments,
		AccessCode: reqBody.AccessCode,
		Event:      reqBody.event(),
		Reserver:   reqBody.reserver(),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, newReservationResponse(resp, userID, restmiddleware.IsStaff(c)))
}

// GetReservation 予約取得ハンドラー
// @Summary 予約を取得
// @Tags reservations
// @Produce json
// @Security Bearer
// @Param id path int true "予約ID"
// @Success 200 {object} ReservationResponse "予約取得成功"
// @Failure 404 {object} ErrorResponse "予約が見つからない"
// @Router /reservations/{id} [get]
func (h *ReservationHandler) GetReservation(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	resp, err := h.reservationService.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}

	userID, _ := restmiddleware.UserID(c)
	return c.JSON(http.StatusOK, newReservationResponse(resp, userID, restmiddleware.IsStaff(c)))
}

// SetState 予約状態変更ハンドラー
// @Summary 予約状態を変更
// @Description スタッフは任意の状態に、予約者本人はキャンセルのみ変更できます
// @Tags reservations
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "予約ID"
// @Param request body SetStateRequest true "予約状態変更リクエスト"
// @Success 200 {object} ReservationResponse "状態変更成功"
// @Failure 400 {object} ErrorResponse "無効な状態"
// @Failure 403 {object} ErrorResponse "権限がない"
// @Failure 404 {object} ErrorResponse "予約が見つからない"
// @Router /reservations/{id}/state [post]
func (h *ReservationHandler) SetState(c echo.Context) error {
	userID, ok := restmiddleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "user_id not found in token")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var reqBody SetStateRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if reqBody.State == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "state is required")
	}

	ctx := c.Request().Context()
	isStaff := restmiddleware.IsStaff(c)
	if !isStaff {
		current, err := h.reservationService.Get(ctx, id)
		if err != nil {
			return err
		}
		if !isOwner(current, userID) || reqBody.State != reservation.StateCancelled.String() {
			return echo.NewHTTPError(http.StatusForbidden, "not allowed to change the state of this reservation")
		}
	}

	resp, err := h.reservationService.SetState(ctx, &reservationapp.SetStateRequest{
		ReservationID: id,
		State:         reqBody.State,
		UserID:        &userID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newReservationResponse(resp, userID, isStaff))
}

// parseID パスパラメータの数値IDを取得
func parseID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be a positive integer")
	}
	return id, nil
}
