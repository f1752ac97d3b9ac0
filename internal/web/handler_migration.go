package web

import (
	"net/http"
	"strings"
)

func (s *Server) handleMigrationSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.svc.Reconciler.Summary(r.Context(), strings.TrimSpace(r.URL.Query().Get("zone")))
	if err != nil {
		s.writeServiceError(w, "migration summary", err)
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleLegacyGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.svc.Reconciler.GroupLegacyRecords(r.Context(), r.PathValue("zone"))
	if err != nil {
		s.writeServiceError(w, "group legacy records", err)
		return
	}
	s.writeJSON(w, http.StatusOK, groups)
}

type migrateRequest struct {
	RecordIDs []int64 `json:"record_ids"`
	RegionID  int64   `json:"region_id"`
}

func (s *Server) handleMigrate(w http.ResponseWriter, r *http.Request) {
	var req migrateRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if len(req.RecordIDs) == 0 {
		s.writeError(w, http.StatusBadRequest, "validation_error", "record_ids: at least one id is required")
		return
	}
	result, err := s.svc.Reconciler.Migrate(r.Context(), req.RecordIDs, req.RegionID)
	if err != nil {
		s.writeServiceError(w, "migrate records", err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}
