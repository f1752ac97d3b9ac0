package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/vbonduro/labinv/internal/domain"
	"github.com/vbonduro/labinv/internal/store"
	"github.com/vbonduro/labinv/internal/transfer"
)

const maxImportBytes = 10 << 20

func (s *Server) exportRecords(w http.ResponseWriter, r *http.Request) ([]*domain.Record, bool) {
	records, err := s.svc.Records.ListRecords(r.Context(), store.RecordFilter{})
	if err != nil {
		s.writeServiceError(w, "export records", err)
		return nil, false
	}
	return records, true
}

func exportFilename(ext string) string {
	return fmt.Sprintf("inventory_export_%s.%s", time.Now().Format("20060102_150405"), ext)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	records, ok := s.exportRecords(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename("csv")+`"`)
	if err := transfer.WriteCSV(w, records); err != nil {
		s.logger.Error("write csv export failed", zap.Error(err))
	}
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	records, ok := s.exportRecords(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename("xlsx")+`"`)
	if err := transfer.WriteXLSX(w, records); err != nil {
		s.logger.Error("write xlsx export failed", zap.Error(err))
	}
}

// handleImportCSV accepts a multipart "file" field and an optional
// skip_duplicates flag.
func (s *Server) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "too_large", "file exceeds the import limit")
			return
		}
		s.writeError(w, http.StatusBadRequest, "invalid_form", "failed to parse form")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "validation_error", "file: CSV file required")
		return
	}
	defer closeWithLog(file, "import file", s.logger)

	skip, _ := strconv.ParseBool(r.FormValue("skip_duplicates"))

	rows, err := transfer.ReadCSV(file)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	result, err := s.svc.Records.ImportRecords(r.Context(), rows, skip)
	if err != nil {
		s.writeServiceError(w, "import records", err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}
