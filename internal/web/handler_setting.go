package web

import "net/http"

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.svc.Settings.AllSettings(r.Context())
	if err != nil {
		s.writeServiceError(w, "get settings", err)
		return
	}
	s.writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var values map[string]string
	if !s.decodeJSON(w, r, &values) {
		return
	}
	settings, err := s.svc.Settings.UpdateSettings(r.Context(), values)
	if err != nil {
		s.writeServiceError(w, "update settings", err)
		return
	}
	s.writeJSON(w, http.StatusOK, settings)
}

type settingResponse struct {
	Key   string  `json:"key"`
	Value *string `json:"value"`
}

// handleGetSetting answers with a null value for a key that was never set.
func (s *Server) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	value, err := s.svc.Settings.GetSetting(r.Context(), key)
	if err != nil {
		s.writeServiceError(w, "get setting", err)
		return
	}
	s.writeJSON(w, http.StatusOK, settingResponse{Key: key, Value: value})
}
