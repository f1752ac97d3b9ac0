package service

import (
	"context"
	"fmt"

	"github.com/vbonduro/labinv/internal/apperrors"
	"github.com/vbonduro/labinv/internal/domain"
	"github.com/vbonduro/labinv/internal/location"
)

func layoutForRegion(ctx context.Context, regions regionRepository, layouts layoutRepository, regionID int64) (*domain.Layout, error) {
	region, err := regions.GetByID(ctx, regionID)
	if err != nil {
		return nil, err
	}
	if region == nil {
		return nil, apperrors.NotFound("region", regionID)
	}
	layout, err := layouts.GetByID(ctx, region.LayoutID)
	if err != nil {
		return nil, err
	}
	if layout == nil {
		return nil, apperrors.NotFound("layout", region.LayoutID)
	}
	return layout, nil
}

// regionPlacement returns the layout holding regionID once its zone is known
// to still have the layout's section.
func regionPlacement(ctx context.Context, zones zoneRepository, regions regionRepository, layouts layoutRepository, regionID int64) (*domain.Layout, error) {
	layout, err := layoutForRegion(ctx, regions, layouts, regionID)
	if err != nil {
		return nil, err
	}
	if _, err := placementZone(ctx, zones, layout.Zone, layout.Section); err != nil {
		return nil, err
	}
	return layout, nil
}

// compartmentPlacement is regionPlacement for schematic compartments.
func compartmentPlacement(ctx context.Context, zones zoneRepository, schematics schematicRepository, compartmentID int64) (*domain.Schematic, error) {
	comp, err := schematics.GetCompartment(ctx, compartmentID)
	if err != nil {
		return nil, err
	}
	if comp == nil {
		return nil, apperrors.NotFound("compartment", compartmentID)
	}
	sc, err := schematics.GetByID(ctx, comp.SchematicID)
	if err != nil {
		return nil, err
	}
	if sc == nil {
		return nil, apperrors.NotFound("schematic", comp.SchematicID)
	}
	if _, err := placementZone(ctx, zones, sc.Zone, sc.Section); err != nil {
		return nil, err
	}
	return sc, nil
}

func placementZone(ctx context.Context, zones zoneRepository, zoneKey string, section domain.Section) (*domain.Zone, error) {
	zone, err := zones.GetByKey(ctx, zoneKey)
	if err != nil {
		return nil, err
	}
	if zone == nil {
		return nil, apperrors.NotFound("zone", zoneKey)
	}
	if err := location.CheckSection(zone, section); err != nil {
		return nil, err
	}
	return zone, nil
}

// adoptZone gives a zoneless record the zone of its new place and rejects a
// record that already sits in another zone.
func adoptZone(rec *domain.Record, zone, kind string, id int64) error {
	if rec.Zone == "" {
		rec.Zone = zone
		return nil
	}
	if rec.Zone != zone {
		return fmt.Errorf("%s %d is in %s, record %d is in %s: %w", kind, id, zone, rec.ID, rec.Zone, apperrors.ErrZoneMismatch)
	}
	return nil
}
