package web

import (
	"io"
	"net/http"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/vbonduro/labinv/internal/domain"
	"github.com/vbonduro/labinv/internal/service"
)

func (s *Server) handleListSchematics(w http.ResponseWriter, r *http.Request) {
	schematics, err := s.svc.Schematics.ListSchematics(r.Context())
	if err != nil {
		s.writeServiceError(w, "list schematics", err)
		return
	}
	s.writeJSON(w, http.StatusOK, schematics)
}

func (s *Server) handleCreateSchematic(w http.ResponseWriter, r *http.Request) {
	var in service.SchematicInput
	if !s.decodeJSON(w, r, &in) {
		return
	}
	sc, err := s.svc.Schematics.CreateSchematic(r.Context(), in)
	if err != nil {
		s.writeServiceError(w, "create schematic", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, sc)
}

// handleFindSchematic returns the schematic of a zone section. The optional
// fridge_id query parameter selects a fridge's own schematic.
func (s *Server) handleFindSchematic(w http.ResponseWriter, r *http.Request) {
	section, ok := s.pathSection(w, r)
	if !ok {
		return
	}
	var fridgeID *int64
	if raw := r.URL.Query().Get("fridge_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			s.writeError(w, http.StatusBadRequest, "invalid_id", "invalid fridge id")
			return
		}
		fridgeID = &id
	}
	view, err := s.svc.Schematics.FindSchematic(r.Context(), r.PathValue("zone"), section, fridgeID)
	if err != nil {
		s.writeServiceError(w, "find schematic", err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleGetSchematic(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "schematic")
	if !ok {
		return
	}
	view, err := s.svc.Schematics.GetSchematic(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, "get schematic", err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleDeleteSchematic(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "schematic")
	if !ok {
		return
	}
	n, err := s.svc.Schematics.DeleteSchematic(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, "delete schematic", err)
		return
	}
	s.writeJSON(w, http.StatusOK, unassignedResponse{RecordsUnassigned: n})
}

type compartmentsRequest struct {
	Compartments []service.CompartmentInput `json:"compartments"`
}

type compartmentsResponse struct {
	*service.SchematicView
	RecordsUnassigned int `json:"records_unassigned"`
}

func (s *Server) handleSaveCompartments(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "schematic")
	if !ok {
		return
	}
	var req compartmentsRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	view, n, err := s.svc.Schematics.SaveCompartments(r.Context(), id, req.Compartments)
	if err != nil {
		s.writeServiceError(w, "save compartments", err)
		return
	}
	s.writeJSON(w, http.StatusOK, compartmentsResponse{SchematicView: view, RecordsUnassigned: n})
}

// handleUploadReference accepts a multipart image field.
func (s *Server) handleUploadReference(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "schematic")
	if !ok {
		return
	}
	imageData, mimeType, ok := s.readImageUpload(w, r)
	if !ok {
		return
	}
	sc, err := s.svc.Schematics.UploadReferencePhoto(r.Context(), id, imageData, mimeType)
	if err != nil {
		s.writeServiceError(w, "upload reference photo", err)
		return
	}
	s.writeJSON(w, http.StatusOK, sc)
}

func (s *Server) handleReferencePhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "schematic")
	if !ok {
		return
	}
	reader, mimeType, err := s.svc.Schematics.ReferencePhoto(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, "get reference photo", err)
		return
	}
	defer closeWithLog(reader, "photo reader", s.logger)

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write photo failed", zap.Int64("schematic_id", id), zap.Error(err))
	}
}

type compartmentCount struct {
	CompartmentID int64                `json:"compartment_id"`
	Count         int                  `json:"count"`
	Tier          domain.OccupancyTier `json:"tier"`
}

func (s *Server) handleCompartmentOccupancy(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "schematic")
	if !ok {
		return
	}
	counts, err := s.svc.Occupancy.CompartmentOccupancy(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, "compartment occupancy", err)
		return
	}
	out := make([]compartmentCount, 0, len(counts))
	for compartmentID, n := range counts {
		out = append(out, compartmentCount{CompartmentID: compartmentID, Count: n, Tier: domain.TierFor(n)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompartmentID < out[j].CompartmentID })
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCompartmentRecords(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "compartment")
	if !ok {
		return
	}
	records, err := s.svc.Schematics.CompartmentRecords(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, "compartment records", err)
		return
	}
	if records == nil {
		records = []*domain.Record{}
	}
	s.writeJSON(w, http.StatusOK, records)
}

type assignCompartmentRequest struct {
	CompartmentID int64 `json:"compartment_id"`
}

func (s *Server) handleAssignCompartment(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "record")
	if !ok {
		return
	}
	var req assignCompartmentRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	rec, err := s.svc.Schematics.AssignRecordToCompartment(r.Context(), id, req.CompartmentID)
	if err != nil {
		s.writeServiceError(w, "assign record to compartment", err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}
