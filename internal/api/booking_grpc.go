package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// BookingServiceName is the fully qualified gRPC service name.
const BookingServiceName = "stayfinder.booking.v1.BookingService"

// Messages are google.protobuf.Struct values whose keys mirror the HTTP JSON bodies.
type BookingServiceServer interface {
	RequestBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	CancelBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	GetReservation(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

type structCall func(srv BookingServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)

func structHandler(method string, call structCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(BookingServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + BookingServiceName + "/" + method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(BookingServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var bookingServiceDesc = grpc.ServiceDesc{
	ServiceName: BookingServiceName,
	HandlerType: (*BookingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "RequestBooking",
			Handler: structHandler("RequestBooking", func(s BookingServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return s.RequestBooking(ctx, in)
			}),
		},
		{
			MethodName: "CancelBooking",
			Handler: structHandler("CancelBooking", func(s BookingServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return s.CancelBooking(ctx, in)
			}),
		},
		{
			MethodName: "GetReservation",
			Handler: structHandler("GetReservation", func(s BookingServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return s.GetReservation(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "stayfinder/booking/v1/booking.proto",
}

func RegisterBookingServiceServer(s grpc.ServiceRegistrar, srv BookingServiceServer) {
	s.RegisterService(&bookingServiceDesc, srv)
}

// BookingClient calls BookingService over an established connection.
type BookingClient struct {
	cc grpc.ClientConnInterface
}

func NewBookingClient(cc grpc.ClientConnInterface) *BookingClient {
	return &BookingClient{cc: cc}
}

func (c *BookingClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+BookingServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingClient) RequestBooking(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "RequestBooking", in, opts...)
}

func (c *BookingClient) CancelBooking(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "CancelBooking", in, opts...)
}

func (c *BookingClient) GetReservation(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetReservation", in, opts...)
}
