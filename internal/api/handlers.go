package api

import (
	"context"
	"encoding/json"
	"strings"

	"stayfinder/internal/domain"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// BookingGRPCService adapts the booking workflow to the Struct-based gRPC service.
type BookingGRPCService struct {
	bookings domain.BookingService
}

func NewBookingGRPCService(bookings domain.BookingService) *BookingGRPCService {
	return &BookingGRPCService{bookings: bookings}
}

func (s *BookingGRPCService) RequestBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}

	listingID := stringField(in, "propertyId")
	if listingID == "" {
		return nil, status.Error(codes.InvalidArgument, "propertyId is required")
	}
	guests, err := intField(in, "guests")
	if err != nil {
		return nil, err
	}

	result, err := s.bookings.RequestBooking(ctx, domain.BookingRequest{
		ListingID:   listingID,
		RequesterID: caller,
		CheckIn:     stringField(in, "checkIn"),
		CheckOut:    stringField(in, "checkOut"),
		Guests:      guests,
	})
	if err != nil {
		return nil, grpcError(err)
	}
	return toStruct(result)
}

func (s *BookingGRPCService) CancelBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	id := stringField(in, "id")
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	reservation, err := s.bookings.CancelBooking(ctx, id, caller)
	if err != nil {
		return nil, grpcError(err)
	}
	return structpb.NewStruct(map[string]any{"success": true, "status": reservation.Status})
}

func (s *BookingGRPCService) GetReservation(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	id := stringField(in, "id")
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	detail, err := s.bookings.GetReservation(ctx, id, caller)
	if err != nil {
		return nil, grpcError(err)
	}
	return toStruct(detail)
}

func callerFrom(ctx context.Context) (string, error) {
	identity, ok := IdentityFromContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "access token required")
	}
	return identity.ID, nil
}

func stringField(in *structpb.Struct, key string) string {
	v, ok := in.GetFields()[key]
	if !ok {
		return ""
	}
	return strings.TrimSpace(v.GetStringValue())
}

func intField(in *structpb.Struct, key string) (int, error) {
	v, ok := in.GetFields()[key]
	if !ok {
		return 0, nil
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok || n.NumberValue != float64(int(n.NumberValue)) {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be an integer", key)
	}
	return int(n.NumberValue), nil
}

// toStruct converts v through its JSON form so gRPC replies share the HTTP field names.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, internalErrorMessage)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, status.Error(codes.Internal, internalErrorMessage)
	}
	return out, nil
}
