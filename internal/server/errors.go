package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"firerisk/pkg/types"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusFor maps a domain error to the HTTP status and public message the
// caller sees. Internal details only reach the logs.
func statusFor(err error) (int, errorBody) {
	var ve *types.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, errorBody{Error: "validation_error", Message: ve.Message}
	case errors.Is(err, types.ErrAssessmentNotFound):
		return http.StatusNotFound, errorBody{Error: "not_found", Message: "Assessment not found"}
	case errors.Is(err, types.ErrDatabaseUnavailable):
		return http.StatusServiceUnavailable, errorBody{Error: "database_unavailable", Message: "Database unavailable"}
	case errors.Is(err, types.ErrExternalService):
		return http.StatusBadGateway, errorBody{Error: "external_service_error", Message: "Upstream service failed"}
	default:
		return http.StatusInternalServerError, errorBody{Error: "internal_error", Message: "Internal server error"}
	}
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("failed to encode json response")
	}
}

func (s *Service) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := statusFor(err)

	entry := s.logger.WithError(err).WithField("path", r.URL.Path)
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Info("request rejected")
	}

	s.writeJSON(w, status, body)
}
