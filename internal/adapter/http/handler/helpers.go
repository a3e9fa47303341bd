package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/iho/gobalance/internal/adapter/http/dto"
	"github.com/iho/gobalance/internal/adapter/http/middleware"
	"github.com/iho/gobalance/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeValidationError writes the field messages of verr.
func writeValidationError(w http.ResponseWriter, status int, verr *domain.ValidationError) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:  "validation failed",
		Fields: verr.Fields,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
// ConsistencyError wraps ErrAccountNotFound and must be matched first.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrConsistency):
		return http.StatusInternalServerError
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrTransactionNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrAttachmentNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrTokenMissing),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrAttachmentsDisabled):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with the status mapDomainError picks. Server
// errors are logged and their details withheld from the client.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapDomainError(err)

	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeValidationError(w, status, verr)
	case status == http.StatusNotFound:
		writeError(w, status, "Not found", err.Error())
	case status >= http.StatusInternalServerError && status != http.StatusNotImplemented:
		zerolog.Ctx(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeError(w, status, "internal server error", "")
	default:
		writeError(w, status, http.StatusText(status), err.Error())
	}
}

// decodeJSON decodes the request body into req and runs its validation
// tags. It writes the error response itself and reports whether the
// handler may continue.
func decodeJSON(w http.ResponseWriter, r *http.Request, req any, validationStatus int) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}

	if err := dto.Validate(req); err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			writeValidationError(w, validationStatus, verr)
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}

	return true
}

// currentUser returns the authenticated user or writes a 401.
func currentUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not Authorized", "")
		return nil, false
	}
	return user, true
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
