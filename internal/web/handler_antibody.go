package web

import (
	"net/http"

	"github.com/vbonduro/labinv/internal/domain"
)

func (s *Server) handleListPrimaries(w http.ResponseWriter, r *http.Request) {
	antibodies, err := s.svc.Antibodies.ListPrimaries(r.Context())
	if err != nil {
		s.writeServiceError(w, "list primary antibodies", err)
		return
	}
	s.writeJSON(w, http.StatusOK, antibodies)
}

func (s *Server) handleCreatePrimary(w http.ResponseWriter, r *http.Request) {
	var a domain.PrimaryAntibody
	if !s.decodeJSON(w, r, &a) {
		return
	}
	a.ID = 0
	created, err := s.svc.Antibodies.CreatePrimary(r.Context(), &a)
	if err != nil {
		s.writeServiceError(w, "create primary antibody", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetPrimary(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "antibody")
	if !ok {
		return
	}
	a, err := s.svc.Antibodies.GetPrimary(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, "get primary antibody", err)
		return
	}
	s.writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleUpdatePrimary(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "antibody")
	if !ok {
		return
	}
	var a domain.PrimaryAntibody
	if !s.decodeJSON(w, r, &a) {
		return
	}
	a.ID = id
	updated, err := s.svc.Antibodies.UpdatePrimary(r.Context(), &a)
	if err != nil {
		s.writeServiceError(w, "update primary antibody", err)
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeletePrimary(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "antibody")
	if !ok {
		return
	}
	if err := s.svc.Antibodies.DeletePrimary(r.Context(), id); err != nil {
		s.writeServiceError(w, "delete primary antibody", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleMatchSecondaries lists the secondaries that can detect a primary.
func (s *Server) handleMatchSecondaries(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "antibody")
	if !ok {
		return
	}
	matches, err := s.svc.Antibodies.MatchSecondaries(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, "match secondary antibodies", err)
		return
	}
	s.writeJSON(w, http.StatusOK, matches)
}

func (s *Server) handleListSecondaries(w http.ResponseWriter, r *http.Request) {
	antibodies, err := s.svc.Antibodies.ListSecondaries(r.Context())
	if err != nil {
		s.writeServiceError(w, "list secondary antibodies", err)
		return
	}
	s.writeJSON(w, http.StatusOK, antibodies)
}

func (s *Server) handleCreateSecondary(w http.ResponseWriter, r *http.Request) {
	var a domain.SecondaryAntibody
	if !s.decodeJSON(w, r, &a) {
		return
	}
	a.ID = 0
	created, err := s.svc.Antibodies.CreateSecondary(r.Context(), &a)
	if err != nil {
		s.writeServiceError(w, "create secondary antibody", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetSecondary(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "antibody")
	if !ok {
		return
	}
	a, err := s.svc.Antibodies.GetSecondary(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, "get secondary antibody", err)
		return
	}
	s.writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleUpdateSecondary(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "antibody")
	if !ok {
		return
	}
	var a domain.SecondaryAntibody
	if !s.decodeJSON(w, r, &a) {
		return
	}
	a.ID = id
	updated, err := s.svc.Antibodies.UpdateSecondary(r.Context(), &a)
	if err != nil {
		s.writeServiceError(w, "update secondary antibody", err)
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteSecondary(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "antibody")
	if !ok {
		return
	}
	if err := s.svc.Antibodies.DeleteSecondary(r.Context(), id); err != nil {
		s.writeServiceError(w, "delete secondary antibody", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
