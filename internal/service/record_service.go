package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/vbonduro/labinv/internal/apperrors"
	"github.com/vbonduro/labinv/internal/domain"
	"github.com/vbonduro/labinv/internal/location"
	"github.com/vbonduro/labinv/internal/store"
)

const maxRecordNameLen = 200

type RecordService struct {
	records    recordRepository
	zones      zoneRepository
	regions    regionRepository
	layouts    layoutRepository
	schematics schematicRepository
	logger     *zap.Logger
}

func NewRecordService(
	records recordRepository,
	zones zoneRepository,
	regions regionRepository,
	layouts layoutRepository,
	schematics schematicRepository,
	logger *zap.Logger,
) *RecordService {
	return &RecordService{
		records:    records,
		zones:      zones,
		regions:    regions,
		layouts:    layouts,
		schematics: schematics,
		logger:     logger,
	}
}

// BatchResult reports a best-effort operation over many ids.
type BatchResult struct {
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Failures  map[int64]string `json:"failures,omitempty"`
}

func (b *BatchResult) fail(id int64, err error) {
	if b.Failures == nil {
		b.Failures = make(map[int64]string)
	}
	b.Failed++
	b.Failures[id] = err.Error()
}

func (s *RecordService) CreateRecord(ctx context.Context, rec *domain.Record) (*domain.Record, error) {
	if err := s.validate(ctx, rec); err != nil {
		return nil, err
	}
	created, err := s.records.Create(ctx, rec)
	if err != nil {
		return nil, err
	}
	s.logger.Info("record created", zap.Int64("record_id", created.ID), zap.Stringer("location", created.Location))
	return created, nil
}

func (s *RecordService) GetRecord(ctx context.Context, id int64) (*domain.Record, error) {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, apperrors.NotFound("record", id)
	}
	return rec, nil
}

func (s *RecordService) ListRecords(ctx context.Context, filter store.RecordFilter) ([]*domain.Record, error) {
	return s.records.List(ctx, filter)
}

// UpdateRecord replaces the stored record with rec, revalidating its location.
func (s *RecordService) UpdateRecord(ctx context.Context, rec *domain.Record) (*domain.Record, error) {
	if err := s.validate(ctx, rec); err != nil {
		return nil, err
	}
	if err := s.records.Update(ctx, rec); err != nil {
		return nil, err
	}
	return s.GetRecord(ctx, rec.ID)
}

func (s *RecordService) DeleteRecord(ctx context.Context, id int64) error {
	if err := s.records.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("record deleted", zap.Int64("record_id", id))
	return nil
}

// BulkDelete deletes each id independently. Missing ids count as failures.
func (s *RecordService) BulkDelete(ctx context.Context, ids []int64) *BatchResult {
	result := &BatchResult{}
	for _, id := range dedupe(ids) {
		if err := s.records.Delete(ctx, id); err != nil {
			result.fail(id, err)
			continue
		}
		result.Succeeded++
	}
	s.logger.Info("bulk delete complete", zap.Int("succeeded", result.Succeeded), zap.Int("failed", result.Failed))
	return result
}

// RecordsAtCell lists grid-addressed records in one cell. The cell is not
// checked against the zone's current dimensions so stale cells stay reachable.
func (s *RecordService) RecordsAtCell(ctx context.Context, zoneKey string, section domain.Section, row, column int) ([]*domain.Record, error) {
	zone, err := s.zones.GetByKey(ctx, zoneKey)
	if err != nil {
		return nil, err
	}
	if zone == nil {
		return nil, apperrors.NotFound("zone", zoneKey)
	}
	if err := location.CheckSection(zone, section); err != nil {
		return nil, err
	}
	return s.records.ListByGridCell(ctx, zoneKey, section, row, column)
}

// validate normalises rec and checks its location against the current zone,
// region and schematic configuration. A region or compartment location
// adopts the zone it belongs to.
func (s *RecordService) validate(ctx context.Context, rec *domain.Record) error {
	rec.Name = strings.TrimSpace(rec.Name)
	if rec.Name == "" {
		return apperrors.Invalid("name", "is required")
	}
	if len(rec.Name) > maxRecordNameLen {
		return apperrors.Invalid("name", "must be at most %d characters", maxRecordNameLen)
	}
	rec.Zone = strings.TrimSpace(rec.Zone)

	if regionID, ok := rec.Location.RegionID(); ok {
		layout, err := regionPlacement(ctx, s.zones, s.regions, s.layouts, regionID)
		if err != nil {
			return err
		}
		return adoptZone(rec, layout.Zone, "region", regionID)
	}
	if compartmentID, ok := rec.Location.CompartmentID(); ok {
		sc, err := compartmentPlacement(ctx, s.zones, s.schematics, compartmentID)
		if err != nil {
			return err
		}
		return adoptZone(rec, sc.Zone, "compartment", compartmentID)
	}

	pos, isGrid := rec.Location.Grid()
	if rec.Zone == "" {
		if isGrid {
			return apperrors.Invalid("temperature_zone", "is required for a grid location")
		}
		return nil
	}
	zone, err := s.zones.GetByKey(ctx, rec.Zone)
	if err != nil {
		return err
	}
	if zone == nil {
		return apperrors.Invalid("temperature_zone", "unknown zone %q", rec.Zone)
	}
	if isGrid {
		if _, err := location.ValidateGrid(zone, pos.Section, pos.Row, pos.Column); err != nil {
			return err
		}
	}
	return nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func isNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}
