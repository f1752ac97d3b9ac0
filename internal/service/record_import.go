package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vbonduro/labinv/internal/apperrors"
	"github.com/vbonduro/labinv/internal/domain"
	"github.com/vbonduro/labinv/internal/store"
	"github.com/vbonduro/labinv/internal/transfer"
)

// ImportResult summarises an import. Errors and Warnings are per-row messages.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// ImportRecords validates rows and inserts the valid ones in a single
// transaction. A row whose location no longer fits the zone configuration is
// imported without a location and reported as a warning. Any storage failure
// rolls back the whole import.
func (s *RecordService) ImportRecords(ctx context.Context, rows []transfer.Row, skipDuplicates bool) (*ImportResult, error) {
	result := &ImportResult{Errors: []string{}, Warnings: []string{}}

	valid := make([]transfer.Row, 0, len(rows))
	for _, row := range rows {
		if row.Err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", row.Line, row.Err))
			continue
		}
		warning, err := s.validateImported(ctx, row.Record)
		if err != nil {
			if errors.Is(err, apperrors.ErrValidation) {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", row.Line, err))
				continue
			}
			return nil, fmt.Errorf("failed to validate row %d: %w", row.Line, err)
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Row %d: %s", row.Line, warning))
		}
		valid = append(valid, row)
	}

	err := s.records.InTx(ctx, func(tx *store.RecordStore) error {
		for _, row := range valid {
			if skipDuplicates {
				exists, err := tx.ExistsByName(ctx, row.Record.Name)
				if err != nil {
					return err
				}
				if exists {
					result.Skipped++
					continue
				}
			}
			if _, err := tx.Create(ctx, row.Record); err != nil {
				return fmt.Errorf("row %d: %w", row.Line, err)
			}
			result.Imported++
		}
		return nil
	})
	if err != nil {
		s.logger.Error("import rolled back", zap.Error(err))
		return nil, fmt.Errorf("import rolled back: %w", err)
	}

	s.logger.Info("import complete",
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}

// validateImported runs the write-time checks, dropping the location (and an
// unknown zone) rather than rejecting the row when only the location is bad.
func (s *RecordService) validateImported(ctx context.Context, rec *domain.Record) (string, error) {
	err := s.validate(ctx, rec)
	if err == nil {
		return "", nil
	}
	var verr *apperrors.ValidationError
	isNameErr := errors.As(err, &verr) && verr.Field == "name"
	if isNotFound(err) || (errors.Is(err, apperrors.ErrValidation) && !isNameErr) {
		loc := rec.Location
		rec.Location = domain.Unassigned()
		if zerr := s.validate(ctx, rec); zerr != nil {
			rec.Zone = ""
		}
		return fmt.Sprintf("location %s dropped: %v", loc, err), nil
	}
	return "", err
}
