package web

import (
	"net/http"

	"github.com/vbonduro/labinv/internal/domain"
)

func (s *Server) handleListFridges(w http.ResponseWriter, r *http.Request) {
	fridges, err := s.svc.Fridges.ListFridges(r.Context())
	if err != nil {
		s.writeServiceError(w, "list fridges", err)
		return
	}
	s.writeJSON(w, http.StatusOK, fridges)
}

func (s *Server) handleFridgesByZone(w http.ResponseWriter, r *http.Request) {
	fridges, err := s.svc.Fridges.FridgesByZone(r.Context(), r.PathValue("zone"))
	if err != nil {
		s.writeServiceError(w, "list fridges by zone", err)
		return
	}
	s.writeJSON(w, http.StatusOK, fridges)
}

func (s *Server) handleCreateFridge(w http.ResponseWriter, r *http.Request) {
	var f domain.Fridge
	if !s.decodeJSON(w, r, &f) {
		return
	}
	f.ID = 0
	created, err := s.svc.Fridges.CreateFridge(r.Context(), &f)
	if err != nil {
		s.writeServiceError(w, "create fridge", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetFridge(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "fridge")
	if !ok {
		return
	}
	f, err := s.svc.Fridges.GetFridge(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, "get fridge", err)
		return
	}
	s.writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleUpdateFridge(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "fridge")
	if !ok {
		return
	}
	var f domain.Fridge
	if !s.decodeJSON(w, r, &f) {
		return
	}
	f.ID = id
	updated, err := s.svc.Fridges.UpdateFridge(r.Context(), &f)
	if err != nil {
		s.writeServiceError(w, "update fridge", err)
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteFridge(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "fridge")
	if !ok {
		return
	}
	n, err := s.svc.Fridges.DeleteFridge(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, "delete fridge", err)
		return
	}
	s.writeJSON(w, http.StatusOK, unassignedResponse{RecordsUnassigned: n})
}
