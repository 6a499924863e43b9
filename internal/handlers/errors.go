package handlers

import (
	"errors"
	"net/http"
	"planboard/internal/logger"
	"planboard/internal/service"

	"go.uber.org/zap"
)

func handleBusinessError(w http.ResponseWriter, err error) bool {
	var businessErr *service.BusinessError
	if !errors.As(err, &businessErr) {
		return false
	}
	statusCode := mapBusinessErrorToHTTP(businessErr.Code)

	logger.Warn("HTTP: business error",
		zap.String("error_code", businessErr.Code),
		zap.String("message", businessErr.Message),
		zap.Int("http_status", statusCode))

	payload := []Payload{
		toPayload("error", businessErr.Code),
		toPayload("message", businessErr.Message),
	}
	if len(businessErr.Details) > 0 {
		payload = append(payload, toPayload("details", businessErr.Details))
	}
	responseWithJSON(w, statusCode, payload...)
	return true
}

// handleError answers with the mapped status for business errors and 500 otherwise.
func handleError(w http.ResponseWriter, err error, operation string) {
	if handleBusinessError(w, err) {
		return
	}
	logger.Error("HTTP: service error", err, zap.String("operation", operation))
	responseWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotFound, service.CodeNotShared:
		return http.StatusNotFound
	case service.CodeValidation:
		return http.StatusBadRequest
	case service.CodeForbidden:
		return http.StatusForbidden
	case service.CodeVersionConflict:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
