package api

import (
	"errors"
	"net/http"

	"stayfinder/internal/domain"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const internalErrorMessage = "internal server error"

var errRateLimited = errors.New("rate limit exceeded")

type errorMapping struct {
	target error
	http   int
	grpc   codes.Code
}

// Order matters: refinements of ErrConflict come before it.
var errorTable = []errorMapping{
	{domain.ErrNotFound, http.StatusNotFound, codes.NotFound},
	{domain.ErrInvalidRange, http.StatusBadRequest, codes.InvalidArgument},
	{domain.ErrCapacityExceeded, http.StatusUnprocessableEntity, codes.InvalidArgument},
	{domain.ErrDoubleBooked, http.StatusConflict, codes.AlreadyExists},
	{domain.ErrForbidden, http.StatusForbidden, codes.PermissionDenied},
	{domain.ErrConflict, http.StatusConflict, codes.FailedPrecondition},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, codes.Unauthenticated},
	{domain.ErrInvalidToken, http.StatusUnauthorized, codes.Unauthenticated},
	{domain.ErrTooManyAttempts, http.StatusTooManyRequests, codes.ResourceExhausted},
	{errRateLimited, http.StatusTooManyRequests, codes.ResourceExhausted},
	{domain.ErrInvalidInput, http.StatusBadRequest, codes.InvalidArgument},
}

func lookupError(err error) (errorMapping, bool) {
	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			return m, true
		}
	}
	return errorMapping{}, false
}

// httpError returns the status code and client-facing message for err.
// Unknown errors are reported as 500 without leaking their text.
func httpError(err error) (int, string) {
	if m, ok := lookupError(err); ok {
		return m.http, err.Error()
	}
	return http.StatusInternalServerError, internalErrorMessage
}

func grpcError(err error) error {
	if m, ok := lookupError(err); ok {
		return status.Error(m.grpc, err.Error())
	}
	return status.Error(codes.Internal, internalErrorMessage)
}
