package service

import (
	"context"
	"fmt"

	"respa-server/internal/domain/reservation"
)

// AvailabilityService リソースの空き状況に関するドメインサービス
type AvailabilityService struct {
	reservationRepo reservation.ReservationRepository
}

// NewAvailabilityService 新しいAvailabilityServiceを作成
func NewAvailabilityService(reservationRepo reservation.ReservationRepository) *AvailabilityService {
	return &AvailabilityService{
		reservationRepo: reservationRepo,
	}
}

// CheckCollision 予約期間が既存の有効な予約と重ならないか確認
func (s *AvailabilityService) CheckCollision(ctx context.Context, r *reservation.Reservation) error {
	overlapping, err := s.reservationRepo.FindOverlapping(ctx, r.ResourceID(), r.Begin(), r.End(), r.ReservationID())
	if err != nil {
		return fmt.Errorf("failed to find overlapping reservations: %w", err)
	}

	for _, other := range overlapping {
		// 取り消された予約は枠を占有しない
		if other.State().IsCurrent() && other.Overlaps(r.Begin(), r.End()) {
			return reservation.ErrOverlappingReservation
		}
	}
	return nil
}
