// Package web serves the labinv JSON API.
package web

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/vbonduro/labinv/internal/service"
)

// Services bundles the application services the handlers call.
type Services struct {
	Records    *service.RecordService
	Zones      *service.ZoneService
	Layouts    *service.LayoutService
	Occupancy  *service.OccupancyService
	Reconciler *service.Reconciler
	Fridges    *service.FridgeService
	Schematics *service.SchematicService
	Antibodies *service.AntibodyService
	Settings   *service.SettingService
}

type Server struct {
	svc           Services
	mux           *http.ServeMux
	maxPhotoBytes int64
	logger        *zap.Logger
}

func NewServer(svc Services, maxPhotoBytes int64, logger *zap.Logger) *Server {
	s := &Server{
		svc:           svc,
		mux:           http.NewServeMux(),
		maxPhotoBytes: maxPhotoBytes,
		logger:        logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("GET /api/records", s.handleListRecords)
	s.mux.HandleFunc("POST /api/records", s.handleCreateRecord)
	s.mux.HandleFunc("GET /api/records/{id}", s.handleGetRecord)
	s.mux.HandleFunc("PUT /api/records/{id}", s.handleUpdateRecord)
	s.mux.HandleFunc("DELETE /api/records/{id}", s.handleDeleteRecord)
	s.mux.HandleFunc("POST /api/records/bulk-delete", s.handleBulkDelete)
	s.mux.HandleFunc("POST /api/records/{id}/region", s.handleAssignRecord)
	s.mux.HandleFunc("DELETE /api/records/{id}/region", s.handleUnassignRecord)
	s.mux.HandleFunc("POST /api/records/{id}/compartment", s.handleAssignCompartment)
	s.mux.HandleFunc("DELETE /api/records/{id}/compartment", s.handleUnassignRecord)

	s.mux.HandleFunc("GET /api/zones", s.handleListZones)
	s.mux.HandleFunc("POST /api/zones", s.handleCreateZone)
	s.mux.HandleFunc("GET /api/zones/{key}", s.handleGetZone)
	s.mux.HandleFunc("PUT /api/zones/{key}", s.handleUpdateZone)
	s.mux.HandleFunc("GET /api/zones/{key}/grid/{section}", s.handleGridOccupancy)
	s.mux.HandleFunc("GET /api/zones/{key}/grid/{section}/{row}/{column}", s.handleRecordsAtCell)

	s.mux.HandleFunc("GET /api/layouts", s.handleListLayouts)
	s.mux.HandleFunc("POST /api/layouts", s.handleUploadLayout)
	s.mux.HandleFunc("GET /api/layouts/{zone}/{section}", s.handleGetLayoutView)
	s.mux.HandleFunc("GET /api/layouts/id/{id}/photo", s.handleLayoutPhoto)
	s.mux.HandleFunc("DELETE /api/layouts/id/{id}", s.handleDeleteLayout)
	s.mux.HandleFunc("POST /api/layouts/id/{id}/regions", s.handleCreateRegion)
	s.mux.HandleFunc("POST /api/layouts/id/{id}/suggestions", s.handleSuggestRegions)

	s.mux.HandleFunc("PUT /api/regions/{id}", s.handleUpdateRegion)
	s.mux.HandleFunc("DELETE /api/regions/{id}", s.handleDeleteRegion)
	s.mux.HandleFunc("GET /api/regions/{id}/records", s.handleRegionRecords)

	s.mux.HandleFunc("GET /api/fridges", s.handleListFridges)
	s.mux.HandleFunc("POST /api/fridges", s.handleCreateFridge)
	s.mux.HandleFunc("GET /api/fridges/{id}", s.handleGetFridge)
	s.mux.HandleFunc("PUT /api/fridges/{id}", s.handleUpdateFridge)
	s.mux.HandleFunc("DELETE /api/fridges/{id}", s.handleDeleteFridge)
	s.mux.HandleFunc("GET /api/fridges/by-zone/{zone}", s.handleFridgesByZone)

	s.mux.HandleFunc("GET /api/schematics", s.handleListSchematics)
	s.mux.HandleFunc("POST /api/schematics", s.handleCreateSchematic)
	s.mux.HandleFunc("GET /api/schematics/{zone}/{section}", s.handleFindSchematic)
	s.mux.HandleFunc("GET /api/schematics/id/{id}", s.handleGetSchematic)
	s.mux.HandleFunc("DELETE /api/schematics/id/{id}", s.handleDeleteSchematic)
	s.mux.HandleFunc("PUT /api/schematics/id/{id}/compartments", s.handleSaveCompartments)
	s.mux.HandleFunc("POST /api/schematics/id/{id}/reference", s.handleUploadReference)
	s.mux.HandleFunc("GET /api/schematics/id/{id}/reference", s.handleReferencePhoto)
	s.mux.HandleFunc("GET /api/schematics/id/{id}/occupancy", s.handleCompartmentOccupancy)
	s.mux.HandleFunc("GET /api/compartments/{id}/records", s.handleCompartmentRecords)

	s.mux.HandleFunc("GET /api/antibodies/primary", s.handleListPrimaries)
	s.mux.HandleFunc("POST /api/antibodies/primary", s.handleCreatePrimary)
	s.mux.HandleFunc("GET /api/antibodies/primary/{id}", s.handleGetPrimary)
	s.mux.HandleFunc("PUT /api/antibodies/primary/{id}", s.handleUpdatePrimary)
	s.mux.HandleFunc("DELETE /api/antibodies/primary/{id}", s.handleDeletePrimary)
	s.mux.HandleFunc("GET /api/antibodies/primary/{id}/matches", s.handleMatchSecondaries)
	s.mux.HandleFunc("GET /api/antibodies/secondary", s.handleListSecondaries)
	s.mux.HandleFunc("POST /api/antibodies/secondary", s.handleCreateSecondary)
	s.mux.HandleFunc("GET /api/antibodies/secondary/{id}", s.handleGetSecondary)
	s.mux.HandleFunc("PUT /api/antibodies/secondary/{id}", s.handleUpdateSecondary)
	s.mux.HandleFunc("DELETE /api/antibodies/secondary/{id}", s.handleDeleteSecondary)

	s.mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	s.mux.HandleFunc("PUT /api/settings", s.handleUpdateSettings)
	s.mux.HandleFunc("GET /api/settings/{key}", s.handleGetSetting)

	s.mux.HandleFunc("GET /api/migration/summary", s.handleMigrationSummary)
	s.mux.HandleFunc("GET /api/migration/{zone}/groups", s.handleLegacyGroups)
	s.mux.HandleFunc("POST /api/migration/migrate", s.handleMigrate)

	s.mux.HandleFunc("GET /export/csv", s.handleExportCSV)
	s.mux.HandleFunc("GET /export/xlsx", s.handleExportXLSX)
	s.mux.HandleFunc("POST /import/csv", s.handleImportCSV)

	s.mux.HandleFunc("POST /api/calculator/dilution", s.handleDilution)
	s.mux.HandleFunc("POST /api/calculator/actual-concentration", s.handleActualConcentration)
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; img-src 'self'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(s.mux)).ServeHTTP(w, r)
}

// NewHTTPServer wraps the server with the timeouts used in production.
func (s *Server) NewHTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
