package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"

	"go.uber.org/zap"
	_ "golang.org/x/image/webp"

	"github.com/vbonduro/labinv/internal/apperrors"
	"github.com/vbonduro/labinv/internal/domain"
	"github.com/vbonduro/labinv/internal/location"
	"github.com/vbonduro/labinv/internal/photostore"
	"github.com/vbonduro/labinv/internal/vision"
)

const maxRegionNameLen = 100

// ErrVisionDisabled is returned by SuggestRegions when no vision backend is configured.
var ErrVisionDisabled = errors.New("region suggestions are not configured")

// RegionListing is the region view of one zone section. Configured is false
// when no layout photo has been uploaded yet.
type RegionListing struct {
	Layout     *domain.Layout
	Regions    []*domain.Region
	Configured bool
}

// RegionInput carries the editable fields of a region.
type RegionInput struct {
	Name   string `json:"name"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type LayoutService struct {
	zones     zoneRepository
	layouts   layoutRepository
	regions   regionRepository
	records   recordRepository
	photoStg  photostore.PhotoStore
	suggester vision.RegionSuggester
	logger    *zap.Logger
}

// NewLayoutService builds the service. suggester may be nil.
func NewLayoutService(
	zones zoneRepository,
	layouts layoutRepository,
	regions regionRepository,
	records recordRepository,
	photoStg photostore.PhotoStore,
	suggester vision.RegionSuggester,
	logger *zap.Logger,
) *LayoutService {
	return &LayoutService{
		zones:     zones,
		layouts:   layouts,
		regions:   regions,
		records:   records,
		photoStg:  photoStg,
		suggester: suggester,
		logger:    logger,
	}
}

func (s *LayoutService) ListLayouts(ctx context.Context) ([]*domain.Layout, error) {
	return s.layouts.List(ctx)
}

func (s *LayoutService) GetLayout(ctx context.Context, layoutID int64) (*domain.Layout, error) {
	layout, err := s.layouts.GetByID(ctx, layoutID)
	if err != nil {
		return nil, err
	}
	if layout == nil {
		return nil, apperrors.NotFound("layout", layoutID)
	}
	return layout, nil
}

// ListRegions returns the layout and regions of a zone section.
func (s *LayoutService) ListRegions(ctx context.Context, zoneKey string, section domain.Section) (*RegionListing, error) {
	if _, err := s.sectionZone(ctx, zoneKey, section); err != nil {
		return nil, err
	}
	layout, err := s.layouts.GetByZoneSection(ctx, zoneKey, section)
	if err != nil {
		return nil, err
	}
	if layout == nil {
		return &RegionListing{Regions: []*domain.Region{}}, nil
	}
	regions, err := s.regions.ListByLayout(ctx, layout.ID)
	if err != nil {
		return nil, err
	}
	return &RegionListing{Layout: layout, Regions: regions, Configured: true}, nil
}

// UploadLayoutPhoto stores a photo for a zone section. The first upload
// creates the layout; later uploads replace the photo and keep the layout id
// and its regions.
func (s *LayoutService) UploadLayoutPhoto(ctx context.Context, zoneKey string, section domain.Section, imageData []byte, mimeType string) (*domain.Layout, error) {
	s.logger.Info("upload layout photo started",
		zap.String("zone", zoneKey),
		zap.String("section", string(section)),
		zap.String("mime_type", mimeType),
		zap.Int("bytes", len(imageData)),
	)
	if _, err := s.sectionZone(ctx, zoneKey, section); err != nil {
		return nil, err
	}
	if len(imageData) == 0 {
		return nil, apperrors.Invalid("photo", "is empty")
	}

	width, height := imageSize(imageData)
	if width == 0 {
		s.logger.Debug("could not decode photo dimensions", zap.String("mime_type", mimeType))
	}

	storageKey, err := s.photoStg.Save(ctx, fmt.Sprintf("layout_%s_%s", zoneKey, section), mimeType, bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to save photo: %w", err)
	}
	s.logger.Debug("photo saved", zap.String("storage_key", storageKey))

	existing, err := s.layouts.GetByZoneSection(ctx, zoneKey, section)
	if err != nil {
		s.discardPhoto(ctx, storageKey)
		return nil, err
	}

	if existing == nil {
		layout, err := s.layouts.Create(ctx, &domain.Layout{
			Zone:        zoneKey,
			Section:     section,
			PhotoKey:    storageKey,
			MimeType:    mimeType,
			PhotoWidth:  width,
			PhotoHeight: height,
		})
		if err != nil {
			s.discardPhoto(ctx, storageKey)
			return nil, fmt.Errorf("failed to create layout: %w", err)
		}
		s.logger.Info("layout created", zap.Int64("layout_id", layout.ID))
		return layout, nil
	}

	if err := s.layouts.ReplacePhoto(ctx, existing.ID, storageKey, mimeType, width, height); err != nil {
		s.discardPhoto(ctx, storageKey)
		return nil, fmt.Errorf("failed to replace layout photo: %w", err)
	}
	s.discardPhoto(ctx, existing.PhotoKey)
	s.logger.Info("layout photo replaced", zap.Int64("layout_id", existing.ID))
	return s.GetLayout(ctx, existing.ID)
}

// LayoutPhoto opens the stored photo of a layout. The caller closes the reader.
func (s *LayoutService) LayoutPhoto(ctx context.Context, layoutID int64) (io.ReadCloser, string, error) {
	layout, err := s.GetLayout(ctx, layoutID)
	if err != nil {
		return nil, "", err
	}
	rc, _, err := s.photoStg.Get(ctx, layout.PhotoKey)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open layout photo: %w", err)
	}
	return rc, layout.MimeType, nil
}

// DeleteLayout removes the layout, its regions and its photo. Records in
// those regions become unassigned.
func (s *LayoutService) DeleteLayout(ctx context.Context, layoutID int64) (int, error) {
	layout, err := s.GetLayout(ctx, layoutID)
	if err != nil {
		return 0, err
	}
	unassigned, err := s.layouts.Delete(ctx, layoutID)
	if err != nil {
		return 0, err
	}
	s.discardPhoto(ctx, layout.PhotoKey)
	s.logger.Info("layout deleted", zap.Int64("layout_id", layoutID), zap.Int("records_unassigned", unassigned))
	return unassigned, nil
}

func (s *LayoutService) CreateRegion(ctx context.Context, layoutID int64, in RegionInput) (*domain.Region, error) {
	if err := validateRegion(&in); err != nil {
		return nil, err
	}
	layout, err := s.GetLayout(ctx, layoutID)
	if err != nil {
		return nil, err
	}
	if _, err := s.sectionZone(ctx, layout.Zone, layout.Section); err != nil {
		return nil, err
	}
	region, err := s.regions.Create(ctx, &domain.Region{
		LayoutID: layoutID,
		Name:     in.Name,
		X:        in.X,
		Y:        in.Y,
		Width:    in.Width,
		Height:   in.Height,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("region created", zap.Int64("layout_id", layoutID), zap.Int64("region_id", region.ID))
	return region, nil
}

func (s *LayoutService) UpdateRegion(ctx context.Context, regionID int64, in RegionInput) (*domain.Region, error) {
	if err := validateRegion(&in); err != nil {
		return nil, err
	}
	region, err := s.getRegion(ctx, regionID)
	if err != nil {
		return nil, err
	}
	region.Name, region.X, region.Y, region.Width, region.Height = in.Name, in.X, in.Y, in.Width, in.Height
	if err := s.regions.Update(ctx, region); err != nil {
		return nil, err
	}
	return s.getRegion(ctx, regionID)
}

// DeleteRegion unassigns the region's records and then deletes it. It
// returns the number of records unassigned.
func (s *LayoutService) DeleteRegion(ctx context.Context, regionID int64) (int, error) {
	unassigned, err := s.regions.Delete(ctx, regionID)
	if err != nil {
		return 0, err
	}
	s.logger.Info("region deleted", zap.Int64("region_id", regionID), zap.Int("records_unassigned", unassigned))
	return unassigned, nil
}

func (s *LayoutService) RegionRecords(ctx context.Context, regionID int64) ([]*domain.Record, error) {
	if _, err := s.getRegion(ctx, regionID); err != nil {
		return nil, err
	}
	return s.records.ListByRegion(ctx, regionID)
}

// AssignRecord places a record in a region, clearing any grid address. A
// record without a zone adopts the region's zone; a record in another zone
// is rejected, as is a region on a section its zone no longer has.
func (s *LayoutService) AssignRecord(ctx context.Context, recordID, regionID int64) (*domain.Record, error) {
	rec, err := s.getRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}
	layout, err := regionPlacement(ctx, s.zones, s.regions, s.layouts, regionID)
	if err != nil {
		return nil, err
	}
	if err := adoptZone(rec, layout.Zone, "region", regionID); err != nil {
		return nil, err
	}
	rec.Location = domain.InRegion(regionID)
	if err := s.records.Update(ctx, rec); err != nil {
		return nil, err
	}
	s.logger.Info("record assigned to region", zap.Int64("record_id", recordID), zap.Int64("region_id", regionID))
	return s.getRecord(ctx, recordID)
}

// UnassignRecord clears a record's location. Its zone is kept.
func (s *LayoutService) UnassignRecord(ctx context.Context, recordID int64) (*domain.Record, error) {
	rec, err := s.getRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}
	rec.Location = domain.Unassigned()
	if err := s.records.Update(ctx, rec); err != nil {
		return nil, err
	}
	return s.getRecord(ctx, recordID)
}

// SuggestRegions asks the vision backend for candidate regions on a layout
// photo. Nothing is stored.
func (s *LayoutService) SuggestRegions(ctx context.Context, layoutID int64) ([]vision.SuggestedRegion, error) {
	if s.suggester == nil {
		return nil, ErrVisionDisabled
	}
	rc, mimeType, err := s.LayoutPhoto(ctx, layoutID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rc.Close(); err != nil {
			s.logger.Error("failed to close layout photo", zap.Error(err))
		}
	}()

	s.logger.Info("region suggestion started", zap.Int64("layout_id", layoutID))
	result, err := s.suggester.SuggestRegions(ctx, rc, mimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest regions: %w", err)
	}
	s.logger.Info("region suggestion complete", zap.Int64("layout_id", layoutID), zap.Int("regions", len(result.Regions)))
	return result.Regions, nil
}

// sectionZone loads zoneKey and checks that it has section.
func (s *LayoutService) sectionZone(ctx context.Context, zoneKey string, section domain.Section) (*domain.Zone, error) {
	zone, err := s.zones.GetByKey(ctx, zoneKey)
	if err != nil {
		return nil, err
	}
	if zone == nil {
		return nil, apperrors.Invalid("temperature_zone", "unknown zone %q", zoneKey)
	}
	if err := location.CheckSection(zone, section); err != nil {
		return nil, err
	}
	return zone, nil
}

func (s *LayoutService) getRegion(ctx context.Context, regionID int64) (*domain.Region, error) {
	region, err := s.regions.GetByID(ctx, regionID)
	if err != nil {
		return nil, err
	}
	if region == nil {
		return nil, apperrors.NotFound("region", regionID)
	}
	return region, nil
}

func (s *LayoutService) getRecord(ctx context.Context, recordID int64) (*domain.Record, error) {
	rec, err := s.records.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, apperrors.NotFound("record", recordID)
	}
	return rec, nil
}

func (s *LayoutService) discardPhoto(ctx context.Context, key string) {
	if err := s.photoStg.Delete(ctx, key); err != nil {
		s.logger.Error("failed to delete photo file", zap.String("storage_key", key), zap.Error(err))
	}
}

func validateRegion(in *RegionInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return apperrors.Invalid("name", "is required")
	}
	if len(in.Name) > maxRegionNameLen {
		return apperrors.Invalid("name", "must be at most %d characters", maxRegionNameLen)
	}
	if in.Width <= 0 {
		return apperrors.Invalid("width", "must be positive, got %d", in.Width)
	}
	if in.Height <= 0 {
		return apperrors.Invalid("height", "must be positive, got %d", in.Height)
	}
	if in.X < 0 || in.Y < 0 {
		return apperrors.Invalid("x", "coordinates must not be negative")
	}
	return nil
}

// imageSize decodes the photo header. Undecodable photos report 0x0.
func imageSize(data []byte) (int, int) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}
