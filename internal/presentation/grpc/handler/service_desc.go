package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	// ReservationServiceName 予約サービスの完全修飾名
	ReservationServiceName = "respa.v1.ReservationService"
	// AdminServiceName 管理サービスの完全修飾名
	AdminServiceName = "respa.v1.AdminService"
)

// ReservationServer 予約サービスのサーバーAPI
type ReservationServer interface {
	GetReservation(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	SetReservationState(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// AdminServer 管理サービスのサーバーAPI
type AdminServer interface {
	SweepExpiredPurchases(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// ReservationServiceDesc 予約サービスの定義
var ReservationServiceDesc = grpc.ServiceDesc{
	ServiceName: ReservationServiceName,
	HandlerType: (*ReservationServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetReservation",
			Handler:    reservationServiceGetReservationHandler,
		},
		{
			MethodName: "SetReservationState",
			Handler:    reservationServiceSetReservationStateHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "respa/v1/reservation.proto",
}

// AdminServiceDesc 管理サービスの定義
var AdminServiceDesc = grpc.ServiceDesc{
	ServiceName: AdminServiceName,
	HandlerType: (*AdminServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "SweepExpiredPurchases",
			Handler:    adminServiceSweepExpiredPurchasesHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "respa/v1/admin.proto",
}

// RegisterReservationServiceServer 予約サービスを登録
func RegisterReservationServiceServer(s grpc.ServiceRegistrar, srv ReservationServer) {
	s.RegisterService(&ReservationServiceDesc, srv)
}

// RegisterAdminServiceServer 管理サービスを登録
func RegisterAdminServiceServer(s grpc.ServiceRegistrar, srv AdminServer) {
	s.RegisterService(&AdminServiceDesc, srv)
}

func reservationServiceGetReservationHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReservationServer).GetReservation(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + ReservationServiceName + "/GetReservation",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ReservationServer).GetReservation(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

func reservationServiceSetReservationStateHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReservationServer).SetReservationState(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + ReservationServiceName + "/SetReservationState",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ReservationServer).SetReservationState(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func adminServiceSweepExpiredPurchasesHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AdminServer).SweepExpiredPurchases(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + AdminServiceName + "/SweepExpiredPurchases",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AdminServer).SweepExpiredPurchases(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}
