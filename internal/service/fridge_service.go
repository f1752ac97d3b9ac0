package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/vbonduro/labinv/internal/apperrors"
	"github.com/vbonduro/labinv/internal/domain"
)

const maxFridgeNameLen = 100

type FridgeService struct {
	fridges    fridgeRepository
	zones      zoneRepository
	schematics schematicRepository
	logger     *zap.Logger
}

func NewFridgeService(fridges fridgeRepository, zones zoneRepository, schematics schematicRepository, logger *zap.Logger) *FridgeService {
	return &FridgeService{fridges: fridges, zones: zones, schematics: schematics, logger: logger}
}

func (s *FridgeService) ListFridges(ctx context.Context) ([]*domain.Fridge, error) {
	return s.fridges.List(ctx)
}

// FridgesByZone lists the fridges held at one temperature zone.
func (s *FridgeService) FridgesByZone(ctx context.Context, zoneKey string) ([]*domain.Fridge, error) {
	if _, err := s.zone(ctx, zoneKey); err != nil {
		return nil, err
	}
	return s.fridges.ListByZone(ctx, zoneKey)
}

func (s *FridgeService) GetFridge(ctx context.Context, id int64) (*domain.Fridge, error) {
	f, err := s.fridges.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, apperrors.NotFound("fridge", id)
	}
	return f, nil
}

func (s *FridgeService) CreateFridge(ctx context.Context, f *domain.Fridge) (*domain.Fridge, error) {
	if err := s.validate(ctx, f); err != nil {
		return nil, err
	}
	created, err := s.fridges.Create(ctx, f)
	if err != nil {
		return nil, err
	}
	s.logger.Info("fridge created", zap.Int64("fridge_id", created.ID), zap.String("zone", created.Zone))
	return created, nil
}

// UpdateFridge replaces the fridge's fields. Its zone is fixed once a
// schematic has been drawn for it.
func (s *FridgeService) UpdateFridge(ctx context.Context, f *domain.Fridge) (*domain.Fridge, error) {
	if err := s.validate(ctx, f); err != nil {
		return nil, err
	}
	existing, err := s.GetFridge(ctx, f.ID)
	if err != nil {
		return nil, err
	}
	if existing.Zone != f.Zone {
		schematics, err := s.schematics.ListByFridge(ctx, f.ID)
		if err != nil {
			return nil, err
		}
		if len(schematics) > 0 {
			return nil, apperrors.Invalid("temperature_zone", "fridge %d has schematics in %s", f.ID, existing.Zone)
		}
	}
	if err := s.fridges.Update(ctx, f); err != nil {
		return nil, err
	}
	return s.GetFridge(ctx, f.ID)
}

// DeleteFridge removes the fridge and its schematics. Records placed in its
// compartments become unassigned.
func (s *FridgeService) DeleteFridge(ctx context.Context, id int64) (int, error) {
	unassigned, err := s.fridges.Delete(ctx, id)
	if err != nil {
		return 0, err
	}
	s.logger.Info("fridge deleted", zap.Int64("fridge_id", id), zap.Int("records_unassigned", unassigned))
	return unassigned, nil
}

func (s *FridgeService) validate(ctx context.Context, f *domain.Fridge) error {
	f.Name = strings.TrimSpace(f.Name)
	f.Zone = strings.TrimSpace(f.Zone)
	if f.Name == "" {
		return apperrors.Invalid("name", "is required")
	}
	if len(f.Name) > maxFridgeNameLen {
		return apperrors.Invalid("name", "must be at most %d characters", maxFridgeNameLen)
	}
	if f.Zone == "" {
		return apperrors.Invalid("temperature_zone", "is required")
	}
	zone, err := s.zones.GetByKey(ctx, f.Zone)
	if err != nil {
		return err
	}
	if zone == nil {
		return apperrors.Invalid("temperature_zone", "unknown zone %q", f.Zone)
	}
	return nil
}

func (s *FridgeService) zone(ctx context.Context, key string) (*domain.Zone, error) {
	zone, err := s.zones.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if zone == nil {
		return nil, apperrors.NotFound("zone", key)
	}
	return zone, nil
}
