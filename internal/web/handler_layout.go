package web

import (
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/vbonduro/labinv/internal/domain"
	"github.com/vbonduro/labinv/internal/location"
	"github.com/vbonduro/labinv/internal/service"
)

// multipartOverhead allows for form fields and boundaries on top of the photo.
const multipartOverhead = 1 << 20

// allowedImageTypes is the set of MIME types accepted for uploaded photos.
// http.DetectContentType recognises JPEG, PNG and GIF by magic bytes but has
// no WebP signature, so WebP is checked by isWebP.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// isWebP reports whether data is a WebP image (RIFF container with "WEBP" at
// offset 8).
func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

// allowedImageMIME returns the detected MIME type and true if the data is an
// accepted image format, or ("", false) otherwise.
func allowedImageMIME(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", true
	}
	mime := http.DetectContentType(data)
	if allowedImageTypes[mime] {
		return mime, true
	}
	return "", false
}

func (s *Server) handleListLayouts(w http.ResponseWriter, r *http.Request) {
	layouts, err := s.svc.Layouts.ListLayouts(r.Context())
	if err != nil {
		s.writeServiceError(w, "list layouts", err)
		return
	}
	if layouts == nil {
		layouts = []*domain.Layout{}
	}
	s.writeJSON(w, http.StatusOK, layouts)
}

// readImageUpload parses a size-limited multipart form and returns its image
// field with the detected MIME type. It writes the error response itself and
// reports false on failure.
func (s *Server) readImageUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxPhotoBytes+multipartOverhead)
	if err := r.ParseMultipartForm(s.maxPhotoBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "too_large", "photo exceeds the upload limit")
			return nil, "", false
		}
		s.writeError(w, http.StatusBadRequest, "invalid_form", "failed to parse form")
		return nil, "", false
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "validation_error", "image: file required")
		return nil, "", false
	}
	defer closeWithLog(file, "upload file", s.logger)

	imageData, err := io.ReadAll(file)
	if err != nil {
		s.logger.Error("read upload failed", zap.String("path", r.URL.Path), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal_error", "failed to read file")
		return nil, "", false
	}
	if int64(len(imageData)) > s.maxPhotoBytes {
		s.writeError(w, http.StatusRequestEntityTooLarge, "too_large", "photo exceeds the upload limit")
		return nil, "", false
	}

	mimeType, ok := allowedImageMIME(imageData)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "validation_error", "image: unsupported format")
		return nil, "", false
	}
	return imageData, mimeType, true
}

// handleUploadLayout accepts multipart fields zone, section and image.
func (s *Server) handleUploadLayout(w http.ResponseWriter, r *http.Request) {
	imageData, mimeType, ok := s.readImageUpload(w, r)
	if !ok {
		return
	}
	section, err := location.ParseSection(r.FormValue("section"))
	if err != nil {
		s.writeServiceError(w, "upload layout", err)
		return
	}

	layout, err := s.svc.Layouts.UploadLayoutPhoto(r.Context(), r.FormValue("zone"), section, imageData, mimeType)
	if err != nil {
		s.writeServiceError(w, "upload layout", err)
		return
	}
	s.writeJSON(w, http.StatusOK, layout)
}

type regionView struct {
	*domain.Region
	Count int                  `json:"count"`
	Tier  domain.OccupancyTier `json:"tier"`
}

type layoutView struct {
	Configured bool           `json:"configured"`
	Layout     *domain.Layout `json:"layout"`
	Regions    []regionView   `json:"regions"`
}

// handleGetLayoutView returns the layout of a zone section with each region's
// record count.
func (s *Server) handleGetLayoutView(w http.ResponseWriter, r *http.Request) {
	section, ok := s.pathSection(w, r)
	if !ok {
		return
	}
	listing, err := s.svc.Layouts.ListRegions(r.Context(), r.PathValue("zone"), section)
	if err != nil {
		s.writeServiceError(w, "get layout", err)
		return
	}

	view := layoutView{Configured: listing.Configured, Layout: listing.Layout, Regions: []regionView{}}
	if listing.Configured {
		counts, err := s.svc.Occupancy.RegionOccupancy(r.Context(), listing.Layout.ID)
		if err != nil {
			s.writeServiceError(w, "region occupancy", err)
			return
		}
		for _, region := range listing.Regions {
			n := counts[region.ID]
			view.Regions = append(view.Regions, regionView{Region: region, Count: n, Tier: domain.TierFor(n)})
		}
	}
	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleLayoutPhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "layout")
	if !ok {
		return
	}
	reader, mimeType, err := s.svc.Layouts.LayoutPhoto(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, "get layout photo", err)
		return
	}
	defer closeWithLog(reader, "photo reader", s.logger)

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write photo failed", zap.Int64("layout_id", id), zap.Error(err))
	}
}

type unassignedResponse struct {
	RecordsUnassigned int `json:"records_unassigned"`
}

func (s *Server) handleDeleteLayout(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "layout")
	if !ok {
		return
	}
	n, err := s.svc.Layouts.DeleteLayout(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, "delete layout", err)
		return
	}
	s.writeJSON(w, http.StatusOK, unassignedResponse{RecordsUnassigned: n})
}

func (s *Server) handleCreateRegion(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "layout")
	if !ok {
		return
	}
	var in service.RegionInput
	if !s.decodeJSON(w, r, &in) {
		return
	}
	region, err := s.svc.Layouts.CreateRegion(r.Context(), id, in)
	if err != nil {
		s.writeServiceError(w, "create region", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, region)
}

func (s *Server) handleSuggestRegions(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "layout")
	if !ok {
		return
	}
	regions, err := s.svc.Layouts.SuggestRegions(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, "suggest regions", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"regions": regions})
}

func (s *Server) handleUpdateRegion(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "region")
	if !ok {
		return
	}
	var in service.RegionInput
	if !s.decodeJSON(w, r, &in) {
		return
	}
	region, err := s.svc.Layouts.UpdateRegion(r.Context(), id, in)
	if err != nil {
		s.writeServiceError(w, "update region", err)
		return
	}
	s.writeJSON(w, http.StatusOK, region)
}

func (s *Server) handleDeleteRegion(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "region")
	if !ok {
		return
	}
	n, err := s.svc.Layouts.DeleteRegion(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, "delete region", err)
		return
	}
	s.writeJSON(w, http.StatusOK, unassignedResponse{RecordsUnassigned: n})
}

func (s *Server) handleRegionRecords(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "region")
	if !ok {
		return
	}
	records, err := s.svc.Layouts.RegionRecords(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, "region records", err)
		return
	}
	if records == nil {
		records = []*domain.Record{}
	}
	s.writeJSON(w, http.StatusOK, records)
}
