package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/vendorrisk/golang_services/internal/campaign_service/domain"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// jsonError writes the error envelope and logs it at a level matching the status.
func jsonError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, message string, statusCode int, details any) {
	level := slog.LevelWarn
	if statusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logger.Log(r.Context(), level, "API error response", "status_code", statusCode, "message", message, "path", r.URL.Path)
	writeJSON(w, statusCode, ErrorResponse{Error: message, Details: details})
}

// writeServiceError maps application errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var fieldErr *domain.RequiredFieldError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		jsonError(w, r, logger, err.Error(), http.StatusNotFound, nil)
	case errors.As(err, &fieldErr):
		jsonError(w, r, logger, domain.ErrValidation.Error(), http.StatusBadRequest, map[string][]string{fieldErr.Field: {"required"}})
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrImportHashRequired):
		jsonError(w, r, logger, err.Error(), http.StatusBadRequest, nil)
	case errors.Is(err, domain.ErrCampaignAlreadySent),
		errors.Is(err, domain.ErrImportHashExists),
		errors.Is(err, domain.ErrDuplicateEntry):
		jsonError(w, r, logger, err.Error(), http.StatusConflict, nil)
	case errors.Is(err, domain.ErrAccessDenied):
		jsonError(w, r, logger, err.Error(), http.StatusForbidden, nil)
	default:
		logger.ErrorContext(r.Context(), "unhandled service error", "error", err)
		jsonError(w, r, logger, "internal server error", http.StatusInternalServerError, nil)
	}
}

// decodeAndValidate reads the JSON body into dst and runs struct validation.
// It writes the 400 response itself and reports whether the handler may proceed.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, logger *slog.Logger, validate *validator.Validate, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		jsonError(w, r, logger, "invalid request body", http.StatusBadRequest, err.Error())
		return false
	}
	if err := validate.Struct(dst); err != nil {
		jsonError(w, r, logger, domain.ErrValidation.Error(), http.StatusBadRequest, validationDetails(err))
		return false
	}
	return true
}

func validationDetails(err error) map[string][]string {
	fields := map[string][]string{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fe.Field()] = append(fields[fe.Field()], fe.Tag())
		}
	}
	return fields
}

func pathID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}

func queryUUID(r *http.Request, key string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// queryIDs accepts both ids=a&ids=b and ids=a,b.
func queryIDs(r *http.Request, key string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, v := range r.URL.Query()[key] {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := uuid.Parse(part)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func queryInt(r *http.Request, key string, fallback int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
