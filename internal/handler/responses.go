package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/osse101/FarmState_Go/internal/domain"
	"github.com/osse101/FarmState_Go/internal/logger"
)

// ValidationErrorResponse lists the fields that failed validation
type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// Get a buffer from the pool to reduce allocations
	buf := getBuffer()
	defer putBuffer(buf)

	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		// Headers are already sent
		slog.Error(LogMsgEncodeFailed, "error", err)
		return
	}

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error(LogMsgWriteFailed, "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, domain.APIError{Error: message})
}

// respondServiceError maps a ledger error to its HTTP form. Rejections are
// returned whole so the client can route them to the matching session state.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := mapServiceError(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error(LogMsgServiceFailed, "path", r.URL.Path, "error", err)
	} else {
		logger.FromContext(r.Context()).Debug(LogMsgServiceFailed, "path", r.URL.Path, "status", status, "error", err)
	}
	respondJSON(w, status, body)
}

func mapServiceError(err error) (int, domain.APIError) {
	if rejection, ok := domain.AsRejection(err); ok {
		return rejectionStatus(rejection.Reason), domain.APIError{Error: rejection.Message, Rejection: rejection}
	}

	switch {
	case errors.Is(err, domain.ErrFarmNotFound):
		return http.StatusNotFound, domain.APIError{Error: ErrMsgFarmNotFound}
	case errors.Is(err, domain.ErrListingNotFound):
		return http.StatusNotFound, domain.APIError{Error: ErrMsgListingNotFound}
	case errors.Is(err, domain.ErrFarmExists):
		return http.StatusConflict, domain.APIError{Error: ErrMsgFarmExists}
	case errors.Is(err, domain.ErrUnknownOperation):
		return http.StatusBadRequest, domain.APIError{Error: ErrMsgUnknownOperation}
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest, domain.APIError{Error: ErrMsgInvalidAmount}
	case errors.Is(err, domain.ErrBatchTooLarge):
		return http.StatusBadRequest, domain.APIError{Error: ErrMsgBatchTooLarge}
	}
	return http.StatusInternalServerError, domain.APIError{Error: ErrMsgGenericServerError}
}

func rejectionStatus(reason domain.RejectionReason) int {
	switch reason {
	case domain.RejectStaleVersion:
		return http.StatusConflict
	case domain.RejectInvalidAction:
		return http.StatusUnprocessableEntity
	case domain.RejectRateLimited:
		return http.StatusTooManyRequests
	case domain.RejectHoarding, domain.RejectSwarming:
		return http.StatusForbidden
	case domain.RejectUnauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusBadRequest
}
