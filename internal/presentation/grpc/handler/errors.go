package handler

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"respa-server/internal/domain/purchase"
	"respa-server/internal/domain/reservation"
	"respa-server/internal/domain/resource"
	"respa-server/internal/infrastructure/ceepos"
)

// handleError ドメインエラーをgRPCステータスに変換
func handleError(err error) error {
	switch {
	case errors.Is(err, reservation.ErrReservationNotFound),
		errors.Is(err, resource.ErrResourceNotFound),
		errors.Is(err, purchase.ErrPurchaseNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, reservation.ErrInvalidStateTransition),
		errors.Is(err, reservation.ErrInvalidReservation),
		errors.Is(err, reservation.ErrEndBeforeBegin),
		errors.Is(err, reservation.ErrTooShort),
		errors.Is(err, resource.ErrInvalidAccessCode):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, reservation.ErrOverlappingReservation):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, purchase.ErrCallbackAlreadyReturned),
		errors.Is(err, purchase.ErrAlreadyFinished):
		return status.Error(codes.FailedPrecondition, err.Error())
	}

	var ceeposErr *ceepos.Error
	if errors.As(err, &ceeposErr) {
		return status.Error(codes.Unavailable, err.Error())
	}
	return status.Error(codes.Internal, "internal server error")
}
