package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"respa-server/internal/application/sweeper"
)

// Sweeper 期限切れ購入の掃除
type Sweeper interface {
	SweepOnce(ctx context.Context) (*sweeper.SweepResult, error)
}

// AdminHandler gRPC管理サービスハンドラー
type AdminHandler struct {
	sweeper Sweeper
}

// NewAdminHandler 新しいAdminHandlerを作成
func NewAdminHandler(sweeper Sweeper) *AdminHandler {
	return &AdminHandler{sweeper: sweeper}
}

// SweepExpiredPurchases 期限切れの購入を1回掃除
func (h *AdminHandler) SweepExpiredPurchases(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	result, err := h.sweeper.SweepOnce(ctx)
	if err != nil {
		return nil, handleError(err)
	}

	s, err := structpb.NewStruct(map[string]interface{}{
		"locked":   result.Locked,
		"checked":  result.Checked,
		"expired":  result.Expired,
		"skipped":  result.Skipped,
		"orphaned": result.Orphaned,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode sweep result")
	}
	return s, nil
}
