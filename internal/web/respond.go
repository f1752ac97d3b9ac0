package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/vbonduro/labinv/internal/apperrors"
	"github.com/vbonduro/labinv/internal/domain"
	"github.com/vbonduro/labinv/internal/location"
	"github.com/vbonduro/labinv/internal/service"
)

const maxJSONBody = 1 << 20

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

// writeServiceError maps service errors onto HTTP statuses. Anything that is
// not a validation or not-found error is logged and reported as a 500.
func (s *Server) writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperrors.ErrZoneMismatch):
		s.writeError(w, http.StatusBadRequest, "zone_mismatch", err.Error())
	case errors.Is(err, apperrors.ErrValidation):
		s.writeError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, apperrors.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, service.ErrVisionDisabled):
		s.writeError(w, http.StatusServiceUnavailable, "vision_disabled", err.Error())
	default:
		s.logger.Error(op+" failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal_error", op+" failed")
	}
}

// decodeJSON reads a size-limited JSON body into v, writing a 400 on failure.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_json", fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// pathID parses the {id} path value, writing a 400 on failure.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request, kind string) (int64, bool) {
	id, err := parseID(r)
	if err != nil || id <= 0 {
		s.writeError(w, http.StatusBadRequest, "invalid_id", "invalid "+kind+" id")
		return 0, false
	}
	return id, true
}

// pathSection parses the {section} path value, writing a 400 on failure.
func (s *Server) pathSection(w http.ResponseWriter, r *http.Request) (domain.Section, bool) {
	section, err := location.ParseSection(r.PathValue("section"))
	if err != nil {
		s.writeServiceError(w, "parse section", err)
		return "", false
	}
	return section, true
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c io.Closer, label string, logger *zap.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", zap.String("label", label), zap.Error(err))
	}
}
