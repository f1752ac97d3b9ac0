package web

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/vbonduro/labinv/internal/calc"
)

func (s *Server) handleDilution(w http.ResponseWriter, r *http.Request) {
	var in calc.DilutionInput
	if !s.decodeJSON(w, r, &in) {
		return
	}
	result, err := calc.Dilution(in)
	if err != nil {
		s.writeServiceError(w, "dilution", err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

type actualConcentrationRequest struct {
	MediaVolume decimal.Decimal  `json:"media_volume"`
	Components  []calc.Component `json:"components"`
}

func (s *Server) handleActualConcentration(w http.ResponseWriter, r *http.Request) {
	var req actualConcentrationRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	results, err := calc.ActualConcentration(req.MediaVolume, req.Components)
	if err != nil {
		s.writeServiceError(w, "actual concentration", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"media_volume": req.MediaVolume,
		"results":      results,
	})
}
