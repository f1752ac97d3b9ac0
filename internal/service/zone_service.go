package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/vbonduro/labinv/internal/apperrors"
	"github.com/vbonduro/labinv/internal/domain"
	"github.com/vbonduro/labinv/internal/location"
)

type ZoneService struct {
	zones      zoneRepository
	layouts    layoutRepository
	schematics schematicRepository
	logger     *zap.Logger
}

func NewZoneService(zones zoneRepository, layouts layoutRepository, schematics schematicRepository, logger *zap.Logger) *ZoneService {
	return &ZoneService{zones: zones, layouts: layouts, schematics: schematics, logger: logger}
}

func (s *ZoneService) ListZones(ctx context.Context) ([]*domain.Zone, error) {
	return s.zones.List(ctx)
}

func (s *ZoneService) GetZone(ctx context.Context, key string) (*domain.Zone, error) {
	zone, err := s.zones.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if zone == nil {
		return nil, apperrors.NotFound("zone", key)
	}
	return zone, nil
}

func (s *ZoneService) CreateZone(ctx context.Context, z *domain.Zone) (*domain.Zone, error) {
	normaliseZone(z)
	if err := location.ValidateZoneConfig(z); err != nil {
		return nil, err
	}
	existing, err := s.zones.GetByKey(ctx, z.Key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Invalid("key", "zone %s already exists", z.Key)
	}
	created, err := s.zones.Create(ctx, z)
	if err != nil {
		return nil, err
	}
	s.logger.Info("zone created", zap.String("zone", created.Key))
	return created, nil
}

// UpdateZone changes a zone's label and dimensions. Records outside a shrunk
// grid are left in place and show up as occupancy overflow. The door cannot
// be removed while a door layout or door schematic exists.
func (s *ZoneService) UpdateZone(ctx context.Context, z *domain.Zone) (*domain.Zone, error) {
	normaliseZone(z)
	if err := location.ValidateZoneConfig(z); err != nil {
		return nil, err
	}
	existing, err := s.GetZone(ctx, z.Key)
	if err != nil {
		return nil, err
	}
	if existing.HasDoor && !z.HasDoor {
		if err := s.checkDoorUnused(ctx, z.Key); err != nil {
			return nil, err
		}
	}
	if err := s.zones.Update(ctx, z); err != nil {
		return nil, err
	}
	s.logger.Info("zone updated",
		zap.String("zone", z.Key),
		zap.Int("body_rows", z.BodyRows),
		zap.Int("body_columns", z.BodyColumns),
		zap.Bool("has_door", z.HasDoor),
	)
	return s.GetZone(ctx, z.Key)
}

func normaliseZone(z *domain.Zone) {
	z.Key = strings.TrimSpace(z.Key)
	z.Label = strings.TrimSpace(z.Label)
	if z.Key == domain.UltraColdZone {
		z.HasDoor = false
	}
	if !z.HasDoor {
		z.DoorRows, z.DoorColumns = 0, 0
	}
}

func (s *ZoneService) checkDoorUnused(ctx context.Context, zoneKey string) error {
	layout, err := s.layouts.GetByZoneSection(ctx, zoneKey, domain.SectionDoor)
	if err != nil {
		return err
	}
	if layout != nil {
		return apperrors.Invalid("has_door", "zone %s has a door layout (id %d); delete it first", zoneKey, layout.ID)
	}
	n, err := s.schematics.CountBySection(ctx, zoneKey, domain.SectionDoor)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperrors.Invalid("has_door", "zone %s has %d door schematic(s); delete them first", zoneKey, n)
	}
	return nil
}
