package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"family-store/internal/model"
	"family-store/internal/session"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Str("code", code).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: message, Code: code})
}

// writeServiceError maps a service error onto a status code. Domain errors
// keep their message; anything else is reported as an internal error.
func writeServiceError(w http.ResponseWriter, err error, fallback string, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		writeError(w, domainStatus(domainErr), domainErr.Code, domainErr.Message, logger)
		return
	}

	if errors.Is(err, session.ErrClosed) {
		writeError(w, http.StatusServiceUnavailable, model.ErrCodeInternalError, "service is shutting down", logger)
		return
	}

	logger.Error().Err(err).Msg(fallback)
	writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, fallback, logger)
}

func domainStatus(err *model.DomainError) int {
	switch err {
	case model.ErrProductNotFound, model.ErrReceiptNotFound:
		return http.StatusNotFound
	case model.ErrCustomProductsDisabled:
		return http.StatusForbidden
	case model.ErrSubmissionInProgress:
		return http.StatusConflict
	case model.ErrSubmissionFailed:
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

// decodeJSON reads the request body into v. An empty body leaves v untouched
// when allowEmpty is set.
func decodeJSON(r *http.Request, v interface{}, allowEmpty bool) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if allowEmpty && errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
