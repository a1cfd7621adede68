package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/blooddonorconnect/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/blooddonorconnect/backend/pkg/errors"
)

// ErrorResponse is the JSON body of every failed REST call.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// respondWithJSON encodes before writing the status, so a payload that
// cannot be encoded becomes a 500 instead of an empty success.
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		log.Error().Err(err).Int("status", statusCode).Msg("failed to encode response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error","code":"INTERNAL"}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(buf.Bytes())
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, ErrorResponse{Error: message})
}

// respondWithAppError maps an application error onto an HTTP status.
// Internal failures are logged and reported without their cause.
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("unhandled error")
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	status := statusForError(appErr)
	if status == http.StatusInternalServerError {
		observability.LoggerFromContext(r.Context()).Error().Err(appErr).Str("path", r.URL.Path).Msg("request failed")
		respondWithJSON(w, status, ErrorResponse{Error: "internal server error", Code: string(apperrors.CodeInternal)})
		return
	}

	respondWithJSON(w, status, ErrorResponse{
		Error:   appErr.Message,
		Code:    string(appErr.Code),
		Details: appErr.Details,
	})
}

func statusForError(appErr *apperrors.AppError) int {
	switch appErr.Type {
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case apperrors.ErrorTypeAmbiguous:
		return http.StatusConflict
	case apperrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case apperrors.ErrorTypeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.NewValidationError("invalid request body: " + err.Error())
	}
	return nil
}

// queryInt reads a non-negative integer query parameter. Missing values
// yield def.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, apperrors.NewValidationError(name + " must be a non-negative integer")
	}
	return v, nil
}

// queryFloat reads an optional float query parameter.
func queryFloat(r *http.Request, name string) (*float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperrors.NewValidationError(name + " must be a number")
	}
	return &v, nil
}
