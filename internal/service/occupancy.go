package service

import (
	"context"

	"github.com/vbonduro/labinv/internal/apperrors"
	"github.com/vbonduro/labinv/internal/domain"
	"github.com/vbonduro/labinv/internal/location"
)

// GridOccupancy is the per-cell record count of one zone section, computed
// at call time. Records addressed outside the current grid are counted in
// Overflow only.
type GridOccupancy struct {
	Zone     string
	Section  domain.Section
	Rows     int
	Columns  int
	Cells    map[domain.Cell]int
	Overflow int
}

// Count returns the number of records in a cell (zero when empty).
func (g *GridOccupancy) Count(row, column int) int {
	return g.Cells[domain.Cell{Row: row, Column: column}]
}

// OccupancyService aggregates record counts for grid cells, regions and
// compartments. It keeps no state; every call reads the store.
type OccupancyService struct {
	zones      zoneRepository
	layouts    layoutRepository
	schematics schematicRepository
	records    recordRepository
}

func NewOccupancyService(
	zones zoneRepository,
	layouts layoutRepository,
	schematics schematicRepository,
	records recordRepository,
) *OccupancyService {
	return &OccupancyService{zones: zones, layouts: layouts, schematics: schematics, records: records}
}

func (s *OccupancyService) GridOccupancy(ctx context.Context, zoneKey string, section domain.Section) (*GridOccupancy, error) {
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
	rows, columns, _ := zone.Dimensions(section)

	counts, err := s.records.CountByGridCell(ctx, zoneKey, section)
	if err != nil {
		return nil, err
	}

	occ := &GridOccupancy{
		Zone:    zoneKey,
		Section: section,
		Rows:    rows,
		Columns: columns,
		Cells:   make(map[domain.Cell]int, len(counts)),
	}
	for _, c := range counts {
		if !location.InBounds(zone, section, c.Row, c.Column) {
			occ.Overflow += c.Count
			continue
		}
		occ.Cells[domain.Cell{Row: c.Row, Column: c.Column}] = c.Count
	}
	return occ, nil
}

// RegionOccupancy maps every region of the layout to its record count.
func (s *OccupancyService) RegionOccupancy(ctx context.Context, layoutID int64) (map[int64]int, error) {
	layout, err := s.layouts.GetByID(ctx, layoutID)
	if err != nil {
		return nil, err
	}
	if layout == nil {
		return nil, apperrors.NotFound("layout", layoutID)
	}
	return s.records.CountByRegion(ctx, layoutID)
}

// CompartmentOccupancy maps every compartment of the schematic to its record count.
func (s *OccupancyService) CompartmentOccupancy(ctx context.Context, schematicID int64) (map[int64]int, error) {
	sc, err := s.schematics.GetByID(ctx, schematicID)
	if err != nil {
		return nil, err
	}
	if sc == nil {
		return nil, apperrors.NotFound("schematic", schematicID)
	}
	return s.records.CountByCompartment(ctx, schematicID)
}
