package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/vbonduro/labinv/internal/apperrors"
	"github.com/vbonduro/labinv/internal/domain"
	"github.com/vbonduro/labinv/internal/location"
	"github.com/vbonduro/labinv/internal/photostore"
)

const (
	maxSchematicNameLen   = 100
	maxCompartmentNameLen = 100
	defaultCompartmentHue = "#e3f2fd"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// SchematicInput carries the fields that place a schematic. FridgeID is nil
// for the zone-wide schematic of a section.
type SchematicInput struct {
	Zone     string         `json:"temperature_zone"`
	Section  domain.Section `json:"section"`
	FridgeID *int64         `json:"fridge_id"`
	Name     string         `json:"name"`
}

// CompartmentInput is one compartment of a SaveCompartments call. ID is zero
// for a new compartment.
type CompartmentInput struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Row        int    `json:"row"`
	Column     int    `json:"column"`
	RowSpan    int    `json:"row_span"`
	ColumnSpan int    `json:"column_span"`
	Color      string `json:"color"`
}

// SchematicView is a schematic with its compartments and their record
// counts. Configured is false when no schematic has been drawn for the
// placement yet; Rows and Columns are the section grid either way.
type SchematicView struct {
	Schematic    *domain.Schematic     `json:"schematic"`
	Rows         int                   `json:"rows"`
	Columns      int                   `json:"columns"`
	Compartments []*domain.Compartment `json:"compartments"`
	Counts       map[int64]int         `json:"counts"`
	Configured   bool                  `json:"configured"`
}

// SchematicService manages span-based compartment layouts of zone sections,
// either zone-wide or per fridge.
type SchematicService struct {
	schematics schematicRepository
	zones      zoneRepository
	fridges    fridgeRepository
	records    recordRepository
	photoStg   photostore.PhotoStore
	logger     *zap.Logger
}

func NewSchematicService(
	schematics schematicRepository,
	zones zoneRepository,
	fridges fridgeRepository,
	records recordRepository,
	photoStg photostore.PhotoStore,
	logger *zap.Logger,
) *SchematicService {
	return &SchematicService{
		schematics: schematics,
		zones:      zones,
		fridges:    fridges,
		records:    records,
		photoStg:   photoStg,
		logger:     logger,
	}
}

func (s *SchematicService) ListSchematics(ctx context.Context) ([]*domain.Schematic, error) {
	return s.schematics.List(ctx)
}

func (s *SchematicService) CreateSchematic(ctx context.Context, in SchematicInput) (*domain.Schematic, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Zone = strings.TrimSpace(in.Zone)
	if len(in.Name) > maxSchematicNameLen {
		return nil, apperrors.Invalid("name", "must be at most %d characters", maxSchematicNameLen)
	}
	if _, err := s.sectionZone(ctx, in.Zone, in.Section); err != nil {
		return nil, err
	}
	if in.FridgeID != nil {
		fridge, err := s.fridges.GetByID(ctx, *in.FridgeID)
		if err != nil {
			return nil, err
		}
		if fridge == nil {
			return nil, apperrors.Invalid("fridge_id", "unknown fridge %d", *in.FridgeID)
		}
		if fridge.Zone != in.Zone {
			return nil, apperrors.Invalid("fridge_id", "fridge %d is in %s, not %s", fridge.ID, fridge.Zone, in.Zone)
		}
	}

	existing, err := s.schematics.GetByPlacement(ctx, in.Zone, in.Section, in.FridgeID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Invalid("section", "schematic %d already covers %s/%s", existing.ID, in.Zone, in.Section)
	}

	sc, err := s.schematics.Create(ctx, &domain.Schematic{
		Zone:     in.Zone,
		Section:  in.Section,
		FridgeID: in.FridgeID,
		Name:     in.Name,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("schematic created",
		zap.Int64("schematic_id", sc.ID),
		zap.String("zone", sc.Zone),
		zap.String("section", string(sc.Section)),
	)
	return sc, nil
}

func (s *SchematicService) GetSchematic(ctx context.Context, id int64) (*SchematicView, error) {
	sc, err := s.getSchematic(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, sc)
}

// FindSchematic returns the schematic drawn for a placement, or an
// unconfigured view carrying the section grid when there is none.
func (s *SchematicService) FindSchematic(ctx context.Context, zoneKey string, section domain.Section, fridgeID *int64) (*SchematicView, error) {
	zone, err := s.sectionZone(ctx, zoneKey, section)
	if err != nil {
		return nil, err
	}
	sc, err := s.schematics.GetByPlacement(ctx, zoneKey, section, fridgeID)
	if err != nil {
		return nil, err
	}
	if sc == nil {
		rows, columns, _ := zone.Dimensions(section)
		return &SchematicView{
			Rows:         rows,
			Columns:      columns,
			Compartments: []*domain.Compartment{},
			Counts:       map[int64]int{},
		}, nil
	}
	return s.view(ctx, sc)
}

// SaveCompartments replaces the schematic's compartments. Every compartment
// must lie inside the section grid and no two may share a cell. It returns
// the new view and the number of records unassigned from removed
// compartments.
func (s *SchematicService) SaveCompartments(ctx context.Context, schematicID int64, in []CompartmentInput) (*SchematicView, int, error) {
	sc, err := s.getSchematic(ctx, schematicID)
	if err != nil {
		return nil, 0, err
	}
	zone, err := s.sectionZone(ctx, sc.Zone, sc.Section)
	if err != nil {
		return nil, 0, err
	}
	rows, columns, _ := zone.Dimensions(sc.Section)

	comps, err := buildCompartments(in, rows, columns)
	if err != nil {
		return nil, 0, err
	}
	unassigned, err := s.schematics.SaveCompartments(ctx, schematicID, comps)
	if err != nil {
		return nil, 0, err
	}
	s.logger.Info("compartments saved",
		zap.Int64("schematic_id", schematicID),
		zap.Int("compartments", len(comps)),
		zap.Int("records_unassigned", unassigned),
	)
	view, err := s.view(ctx, sc)
	if err != nil {
		return nil, 0, err
	}
	return view, unassigned, nil
}

// UploadReferencePhoto stores a reference photo for the schematic, replacing
// any earlier one.
func (s *SchematicService) UploadReferencePhoto(ctx context.Context, schematicID int64, imageData []byte, mimeType string) (*domain.Schematic, error) {
	sc, err := s.getSchematic(ctx, schematicID)
	if err != nil {
		return nil, err
	}
	if len(imageData) == 0 {
		return nil, apperrors.Invalid("photo", "is empty")
	}

	storageKey, err := s.photoStg.Save(ctx, fmt.Sprintf("schematic_%d", schematicID), mimeType, bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to save photo: %w", err)
	}
	if err := s.schematics.ReplacePhoto(ctx, schematicID, storageKey, mimeType); err != nil {
		s.discardPhoto(ctx, storageKey)
		return nil, fmt.Errorf("failed to replace schematic photo: %w", err)
	}
	if sc.HasReferencePhoto() {
		s.discardPhoto(ctx, sc.PhotoKey)
	}
	s.logger.Info("schematic photo replaced", zap.Int64("schematic_id", schematicID))
	return s.getSchematic(ctx, schematicID)
}

// ReferencePhoto opens the schematic's reference photo. The caller closes the reader.
func (s *SchematicService) ReferencePhoto(ctx context.Context, schematicID int64) (io.ReadCloser, string, error) {
	sc, err := s.getSchematic(ctx, schematicID)
	if err != nil {
		return nil, "", err
	}
	if !sc.HasReferencePhoto() {
		return nil, "", apperrors.NotFound("reference photo of schematic", schematicID)
	}
	rc, _, err := s.photoStg.Get(ctx, sc.PhotoKey)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open schematic photo: %w", err)
	}
	return rc, sc.MimeType, nil
}

// DeleteSchematic removes the schematic, its compartments and its photo.
// Records in those compartments become unassigned.
func (s *SchematicService) DeleteSchematic(ctx context.Context, schematicID int64) (int, error) {
	sc, err := s.getSchematic(ctx, schematicID)
	if err != nil {
		return 0, err
	}
	unassigned, err := s.schematics.Delete(ctx, schematicID)
	if err != nil {
		return 0, err
	}
	if sc.HasReferencePhoto() {
		s.discardPhoto(ctx, sc.PhotoKey)
	}
	s.logger.Info("schematic deleted", zap.Int64("schematic_id", schematicID), zap.Int("records_unassigned", unassigned))
	return unassigned, nil
}

func (s *SchematicService) CompartmentRecords(ctx context.Context, compartmentID int64) ([]*domain.Record, error) {
	comp, err := s.schematics.GetCompartment(ctx, compartmentID)
	if err != nil {
		return nil, err
	}
	if comp == nil {
		return nil, apperrors.NotFound("compartment", compartmentID)
	}
	return s.records.ListByCompartment(ctx, compartmentID)
}

// AssignRecordToCompartment places a record in a compartment, clearing any
// other location. Zones are adopted and checked as for regions.
func (s *SchematicService) AssignRecordToCompartment(ctx context.Context, recordID, compartmentID int64) (*domain.Record, error) {
	rec, err := s.getRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}
	sc, err := compartmentPlacement(ctx, s.zones, s.schematics, compartmentID)
	if err != nil {
		return nil, err
	}
	if err := adoptZone(rec, sc.Zone, "compartment", compartmentID); err != nil {
		return nil, err
	}
	rec.Location = domain.InCompartment(compartmentID)
	if err := s.records.Update(ctx, rec); err != nil {
		return nil, err
	}
	s.logger.Info("record assigned to compartment",
		zap.Int64("record_id", recordID),
		zap.Int64("compartment_id", compartmentID),
	)
	return s.getRecord(ctx, recordID)
}

func (s *SchematicService) view(ctx context.Context, sc *domain.Schematic) (*SchematicView, error) {
	zone, err := s.zones.GetByKey(ctx, sc.Zone)
	if err != nil {
		return nil, err
	}
	if zone == nil {
		return nil, apperrors.NotFound("zone", sc.Zone)
	}
	rows, columns, _ := zone.Dimensions(sc.Section)
	comps, err := s.schematics.ListCompartments(ctx, sc.ID)
	if err != nil {
		return nil, err
	}
	counts, err := s.records.CountByCompartment(ctx, sc.ID)
	if err != nil {
		return nil, err
	}
	return &SchematicView{
		Schematic:    sc,
		Rows:         rows,
		Columns:      columns,
		Compartments: comps,
		Counts:       counts,
		Configured:   true,
	}, nil
}

func (s *SchematicService) sectionZone(ctx context.Context, zoneKey string, section domain.Section) (*domain.Zone, error) {
	if zoneKey == "" {
		return nil, apperrors.Invalid("temperature_zone", "is required")
	}
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

func (s *SchematicService) getSchematic(ctx context.Context, id int64) (*domain.Schematic, error) {
	sc, err := s.schematics.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sc == nil {
		return nil, apperrors.NotFound("schematic", id)
	}
	return sc, nil
}

func (s *SchematicService) getRecord(ctx context.Context, recordID int64) (*domain.Record, error) {
	rec, err := s.records.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, apperrors.NotFound("record", recordID)
	}
	return rec, nil
}

func (s *SchematicService) discardPhoto(ctx context.Context, key string) {
	if err := s.photoStg.Delete(ctx, key); err != nil {
		s.logger.Error("failed to delete photo file", zap.String("storage_key", key), zap.Error(err))
	}
}

// buildCompartments validates in against a rows x columns grid. Zero spans
// default to one cell and an empty color to the default hue.
func buildCompartments(in []CompartmentInput, rows, columns int) ([]*domain.Compartment, error) {
	comps := make([]*domain.Compartment, 0, len(in))
	seen := make(map[int64]bool, len(in))
	for i, c := range in {
		field := fmt.Sprintf("compartments[%d]", i)
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, apperrors.Invalid(field+".name", "is required")
		}
		if len(name) > maxCompartmentNameLen {
			return nil, apperrors.Invalid(field+".name", "must be at most %d characters", maxCompartmentNameLen)
		}
		if c.ID != 0 {
			if seen[c.ID] {
				return nil, apperrors.Invalid(field+".id", "compartment %d appears twice", c.ID)
			}
			seen[c.ID] = true
		}
		if c.RowSpan == 0 {
			c.RowSpan = 1
		}
		if c.ColumnSpan == 0 {
			c.ColumnSpan = 1
		}
		if c.RowSpan < 0 || c.ColumnSpan < 0 {
			return nil, apperrors.Invalid(field, "spans must be positive")
		}
		if c.Row < 0 || c.Column < 0 || c.Row+c.RowSpan > rows || c.Column+c.ColumnSpan > columns {
			return nil, apperrors.Invalid(field, "%q does not fit the %dx%d grid", name, rows, columns)
		}
		color := strings.TrimSpace(c.Color)
		if color == "" {
			color = defaultCompartmentHue
		}
		if !hexColor.MatchString(color) {
			return nil, apperrors.Invalid(field+".color", "must be #rrggbb, got %q", color)
		}

		comp := &domain.Compartment{
			ID:         c.ID,
			Name:       name,
			Row:        c.Row,
			Column:     c.Column,
			RowSpan:    c.RowSpan,
			ColumnSpan: c.ColumnSpan,
			Color:      color,
		}
		for _, other := range comps {
			if comp.Overlaps(other) {
				return nil, apperrors.Invalid(field, "%q overlaps %q", comp.Name, other.Name)
			}
		}
		comps = append(comps, comp)
	}
	return comps, nil
}
