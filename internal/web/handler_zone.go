package web

import (
	"net/http"
	"strconv"

	"github.com/vbonduro/labinv/internal/domain"
)

func (s *Server) handleListZones(w http.ResponseWriter, r *http.Request) {
	zones, err := s.svc.Zones.ListZones(r.Context())
	if err != nil {
		s.writeServiceError(w, "list zones", err)
		return
	}
	s.writeJSON(w, http.StatusOK, zones)
}

func (s *Server) handleCreateZone(w http.ResponseWriter, r *http.Request) {
	var z domain.Zone
	if !s.decodeJSON(w, r, &z) {
		return
	}
	created, err := s.svc.Zones.CreateZone(r.Context(), &z)
	if err != nil {
		s.writeServiceError(w, "create zone", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetZone(w http.ResponseWriter, r *http.Request) {
	zone, err := s.svc.Zones.GetZone(r.Context(), r.PathValue("key"))
	if err != nil {
		s.writeServiceError(w, "get zone", err)
		return
	}
	s.writeJSON(w, http.StatusOK, zone)
}

func (s *Server) handleUpdateZone(w http.ResponseWriter, r *http.Request) {
	var z domain.Zone
	if !s.decodeJSON(w, r, &z) {
		return
	}
	z.Key = r.PathValue("key")
	updated, err := s.svc.Zones.UpdateZone(r.Context(), &z)
	if err != nil {
		s.writeServiceError(w, "update zone", err)
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

type cellResponse struct {
	Row    int                  `json:"row"`
	Column int                  `json:"column"`
	Count  int                  `json:"count"`
	Tier   domain.OccupancyTier `json:"tier"`
}

type gridResponse struct {
	Zone     string         `json:"temperature_zone"`
	Section  domain.Section `json:"section"`
	Rows     int            `json:"rows"`
	Columns  int            `json:"columns"`
	Cells    []cellResponse `json:"cells"`
	Overflow int            `json:"overflow"`
}

// handleGridOccupancy returns every cell of the grid, empty ones included,
// in row-major order.
func (s *Server) handleGridOccupancy(w http.ResponseWriter, r *http.Request) {
	section, ok := s.pathSection(w, r)
	if !ok {
		return
	}
	occ, err := s.svc.Occupancy.GridOccupancy(r.Context(), r.PathValue("key"), section)
	if err != nil {
		s.writeServiceError(w, "grid occupancy", err)
		return
	}

	resp := gridResponse{
		Zone:     occ.Zone,
		Section:  occ.Section,
		Rows:     occ.Rows,
		Columns:  occ.Columns,
		Cells:    make([]cellResponse, 0, occ.Rows*occ.Columns),
		Overflow: occ.Overflow,
	}
	for row := 0; row < occ.Rows; row++ {
		for col := 0; col < occ.Columns; col++ {
			n := occ.Count(row, col)
			resp.Cells = append(resp.Cells, cellResponse{Row: row, Column: col, Count: n, Tier: domain.TierFor(n)})
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRecordsAtCell(w http.ResponseWriter, r *http.Request) {
	section, ok := s.pathSection(w, r)
	if !ok {
		return
	}
	row, rerr := strconv.Atoi(r.PathValue("row"))
	col, cerr := strconv.Atoi(r.PathValue("column"))
	if rerr != nil || cerr != nil {
		s.writeError(w, http.StatusBadRequest, "validation_error", "row and column must be integers")
		return
	}
	records, err := s.svc.Records.RecordsAtCell(r.Context(), r.PathValue("key"), section, row, col)
	if err != nil {
		s.writeServiceError(w, "records at cell", err)
		return
	}
	if records == nil {
		records = []*domain.Record{}
	}
	s.writeJSON(w, http.StatusOK, records)
}
