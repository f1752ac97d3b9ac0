package web

import (
	"net/http"
	"strings"

	"github.com/vbonduro/labinv/internal/domain"
	"github.com/vbonduro/labinv/internal/store"
)

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	filter := store.RecordFilter{
		Search: strings.TrimSpace(r.URL.Query().Get("q")),
		Zone:   strings.TrimSpace(r.URL.Query().Get("zone")),
	}
	records, err := s.svc.Records.ListRecords(r.Context(), filter)
	if err != nil {
		s.writeServiceError(w, "list records", err)
		return
	}
	if records == nil {
		records = []*domain.Record{}
	}
	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var rec domain.Record
	if !s.decodeJSON(w, r, &rec) {
		return
	}
	rec.ID = 0
	created, err := s.svc.Records.CreateRecord(r.Context(), &rec)
	if err != nil {
		s.writeServiceError(w, "create record", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "record")
	if !ok {
		return
	}
	rec, err := s.svc.Records.GetRecord(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, "get record", err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "record")
	if !ok {
		return
	}
	var rec domain.Record
	if !s.decodeJSON(w, r, &rec) {
		return
	}
	rec.ID = id
	updated, err := s.svc.Records.UpdateRecord(r.Context(), &rec)
	if err != nil {
		s.writeServiceError(w, "update record", err)
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "record")
	if !ok {
		return
	}
	if err := s.svc.Records.DeleteRecord(r.Context(), id); err != nil {
		s.writeServiceError(w, "delete record", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type idsRequest struct {
	IDs []int64 `json:"ids"`
}

func (s *Server) handleBulkDelete(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 {
		s.writeError(w, http.StatusBadRequest, "validation_error", "ids: at least one id is required")
		return
	}
	s.writeJSON(w, http.StatusOK, s.svc.Records.BulkDelete(r.Context(), req.IDs))
}

type assignRequest struct {
	RegionID int64 `json:"region_id"`
}

func (s *Server) handleAssignRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "record")
	if !ok {
		return
	}
	var req assignRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	rec, err := s.svc.Layouts.AssignRecord(r.Context(), id, req.RegionID)
	if err != nil {
		s.writeServiceError(w, "assign record", err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleUnassignRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "record")
	if !ok {
		return
	}
	rec, err := s.svc.Layouts.UnassignRecord(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, "unassign record", err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}
