package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vbonduro/labinv/internal/apperrors"
	"github.com/vbonduro/labinv/internal/domain"
	"github.com/vbonduro/labinv/internal/store"
)

type MigrationStatus string

const (
	StatusMigrated      MigrationStatus = "migrated"
	StatusNotFound      MigrationStatus = "not_found"
	StatusRejected      MigrationStatus = "rejected"
	StatusNotApplicable MigrationStatus = "not_applicable"
	StatusFailed        MigrationStatus = "failed"
)

// LegacyGroup is the set of records sharing one exact grid address.
type LegacyGroup struct {
	Section domain.Section   `json:"section"`
	Row     int              `json:"row"`
	Column  int              `json:"column"`
	Records []*domain.Record `json:"records"`
}

func (g LegacyGroup) RecordIDs() []int64 {
	ids := make([]int64, len(g.Records))
	for i, rec := range g.Records {
		ids[i] = rec.ID
	}
	return ids
}

type MigrationOutcome struct {
	RecordID int64           `json:"record_id"`
	Status   MigrationStatus `json:"status"`
	Error    string          `json:"error,omitempty"`
	Err      error           `json:"-"`
}

type MigrationResult struct {
	RegionID      int64              `json:"region_id"`
	Outcomes      []MigrationOutcome `json:"outcomes"`
	Migrated      int                `json:"migrated"`
	Rejected      int                `json:"rejected"`
	NotApplicable int                `json:"not_applicable"`
	NotFound      int                `json:"not_found"`
	Failed        int                `json:"failed"`
}

func (r *MigrationResult) add(id int64, status MigrationStatus, err error) {
	out := MigrationOutcome{RecordID: id, Status: status, Err: err}
	if err != nil {
		out.Error = err.Error()
	}
	r.Outcomes = append(r.Outcomes, out)
	switch status {
	case StatusMigrated:
		r.Migrated++
	case StatusRejected:
		r.Rejected++
	case StatusNotApplicable:
		r.NotApplicable++
	case StatusNotFound:
		r.NotFound++
	case StatusFailed:
		r.Failed++
	}
}

// MigrationSummary classifies records by addressing scheme.
type MigrationSummary struct {
	Zone            string `json:"temperature_zone,omitempty"`
	WithRegion      int    `json:"with_region"`
	WithCompartment int    `json:"with_compartment"`
	LegacyOnly      int    `json:"legacy_only"`
	Unassigned      int    `json:"unassigned"`
}

// Reconciler moves grid-addressed records onto regions. The move is one way.
type Reconciler struct {
	records recordRepository
	zones   zoneRepository
	regions regionRepository
	layouts layoutRepository
	logger  *zap.Logger
}

func NewReconciler(
	records recordRepository,
	zones zoneRepository,
	regions regionRepository,
	layouts layoutRepository,
	logger *zap.Logger,
) *Reconciler {
	return &Reconciler{records: records, zones: zones, regions: regions, layouts: layouts, logger: logger}
}

// GroupLegacyRecords groups the zone's grid-only records by exact
// (section, row, column). No mapping to regions is inferred.
func (r *Reconciler) GroupLegacyRecords(ctx context.Context, zoneKey string) ([]LegacyGroup, error) {
	recs, err := r.records.ListLegacy(ctx, zoneKey)
	if err != nil {
		return nil, err
	}

	groups := []LegacyGroup{}
	for _, rec := range recs {
		pos, ok := rec.Location.Grid()
		if !ok {
			continue
		}
		n := len(groups)
		if n > 0 && groups[n-1].Section == pos.Section && groups[n-1].Row == pos.Row && groups[n-1].Column == pos.Column {
			groups[n-1].Records = append(groups[n-1].Records, rec)
			continue
		}
		groups = append(groups, LegacyGroup{
			Section: pos.Section,
			Row:     pos.Row,
			Column:  pos.Column,
			Records: []*domain.Record{rec},
		})
	}
	return groups, nil
}

// Migrate assigns each record to targetRegionID and clears its grid address.
// Records are independent: each id gets its own outcome and one failure does
// not stop the batch. A missing target region, or one whose section the zone
// no longer has, aborts before any write.
func (r *Reconciler) Migrate(ctx context.Context, recordIDs []int64, targetRegionID int64) (*MigrationResult, error) {
	layout, err := regionPlacement(ctx, r.zones, r.regions, r.layouts, targetRegionID)
	if err != nil {
		return nil, err
	}

	r.logger.Info("migration started",
		zap.Int64("region_id", targetRegionID),
		zap.String("zone", layout.Zone),
		zap.Int("records", len(recordIDs)),
	)

	result := &MigrationResult{RegionID: targetRegionID, Outcomes: []MigrationOutcome{}}
	for _, id := range dedupe(recordIDs) {
		status, err := r.migrateOne(ctx, id, targetRegionID, layout)
		if err != nil && status == StatusFailed {
			r.logger.Error("record migration failed", zap.Int64("record_id", id), zap.Error(err))
		}
		result.add(id, status, err)
	}

	r.logger.Info("migration complete",
		zap.Int64("region_id", targetRegionID),
		zap.Int("migrated", result.Migrated),
		zap.Int("rejected", result.Rejected),
		zap.Int("not_applicable", result.NotApplicable),
		zap.Int("not_found", result.NotFound),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

func (r *Reconciler) migrateOne(ctx context.Context, id, regionID int64, layout *domain.Layout) (MigrationStatus, error) {
	rec, err := r.records.GetByID(ctx, id)
	if err != nil {
		return StatusFailed, err
	}
	if rec == nil {
		return StatusNotFound, apperrors.NotFound("record", id)
	}
	if rec.Zone == "" {
		// Only grid records migrate and those always carry a zone.
		return StatusNotApplicable, nil
	}
	if rec.Zone != layout.Zone {
		return StatusRejected, fmt.Errorf("record %d is in %q, region %d is in %q: %w",
			id, rec.Zone, regionID, layout.Zone, apperrors.ErrZoneMismatch)
	}
	if rec.Location.Kind() != domain.LocationGrid {
		return StatusNotApplicable, nil
	}

	moved, err := r.records.MoveLegacyToRegion(ctx, id, regionID)
	if err != nil {
		return StatusFailed, err
	}
	if !moved {
		// Changed or deleted since it was read.
		return StatusNotApplicable, nil
	}
	return StatusMigrated, nil
}

// Summary counts records by addressing scheme. An empty zoneKey covers all records.
func (r *Reconciler) Summary(ctx context.Context, zoneKey string) (*MigrationSummary, error) {
	counts, err := r.records.CountLocations(ctx, zoneKey)
	if err != nil {
		return nil, err
	}
	return summaryFrom(zoneKey, counts), nil
}

func summaryFrom(zoneKey string, c store.LocationCounts) *MigrationSummary {
	return &MigrationSummary{
		Zone:            zoneKey,
		WithRegion:      c.WithRegion,
		WithCompartment: c.WithCompartment,
		LegacyOnly:      c.LegacyOnly,
		Unassigned:      c.Unassigned,
	}
}
