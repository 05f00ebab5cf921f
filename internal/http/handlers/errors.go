// Package handlers defines the HTTP-layer error codes used across all API
// endpoints and the mapping from service errors to status codes.
//
// Codes are lowercase snake_case and stable; clients branch on them rather
// than on the human-readable error text.
//
// Example response:
//
//	{
//	  "success": false,
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "conflict",
//	  "error": "request already responded to"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/tbourn/go-match-gateway/internal/services"
)

const (
	ErrCodeBadRequest = "bad_request"
	ErrCodeForbidden  = "forbidden"
	ErrCodeNotFound   = "not_found"
	ErrCodeConflict   = "conflict"
	ErrCodeInternal   = "internal_error"

	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeTooLarge         = "payload_too_large"

	// Domain-specific:
	ErrCodeStore      = "store_error"
	ErrCodeStorageOff = "storage_unavailable"
	ErrCodeKeyReused  = "idempotency_key_reused"
)

// errorStatus classifies a service error into an HTTP status and code.
func errorStatus(err error) (int, string) {
	var se *services.StoreError
	switch {
	case errors.Is(err, services.ErrMissingFields),
		errors.Is(err, services.ErrMissingUser),
		errors.Is(err, services.ErrSelfRequest),
		errors.Is(err, services.ErrInvalidMessageType),
		errors.Is(err, services.ErrNoMessageIDs),
		errors.Is(err, services.ErrEmptyPrompt),
		errors.Is(err, services.ErrEmptyUpload):
		return http.StatusBadRequest, ErrCodeBadRequest

	case errors.Is(err, services.ErrRequestNotFound),
		errors.Is(err, services.ErrMatchNotFound),
		errors.Is(err, services.ErrProfileNotFound),
		errors.Is(err, services.ErrMessageNotFound):
		return http.StatusNotFound, ErrCodeNotFound

	case errors.Is(err, services.ErrNotRecipient),
		errors.Is(err, services.ErrNotParticipant):
		return http.StatusForbidden, ErrCodeForbidden

	case errors.Is(err, services.ErrRequestResolved),
		errors.Is(err, services.ErrProfileExists):
		return http.StatusConflict, ErrCodeConflict

	case errors.Is(err, services.ErrStorageDisabled):
		return http.StatusServiceUnavailable, ErrCodeStorageOff

	case errors.As(err, &se):
		return http.StatusBadRequest, ErrCodeStore
	}
	return http.StatusInternalServerError, ErrCodeInternal
}
