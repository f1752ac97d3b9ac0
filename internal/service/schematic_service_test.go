package service

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/labinv/internal/apperrors"
	"github.com/vbonduro/labinv/internal/domain"
)

func TestSchematicServiceCreateValidation(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	freezer := ts.fridge(t, "Freezer", "-20C")
	missing := int64(999)
	ts.schematic(t, "4C", domain.SectionBody, nil)

	tests := []struct {
		name  string
		in    SchematicInput
		field string
	}{
		{name: "unknown zone", in: SchematicInput{Zone: "37C", Section: domain.SectionBody}, field: "temperature_zone"},
		{name: "door on ultra cold", in: SchematicInput{Zone: "-80C", Section: domain.SectionDoor}, field: "section"},
		{name: "bad section", in: SchematicInput{Zone: "4C", Section: "shelf"}, field: "section"},
		{name: "unknown fridge", in: SchematicInput{Zone: "4C", Section: domain.SectionDoor, FridgeID: &missing}, field: "fridge_id"},
		{name: "fridge in other zone", in: SchematicInput{Zone: "4C", Section: domain.SectionDoor, FridgeID: &freezer.ID}, field: "fridge_id"},
		{name: "duplicate placement", in: SchematicInput{Zone: "4C", Section: domain.SectionBody}, field: "section"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.schematics.CreateSchematic(ctx, tt.in)
			require.ErrorIs(t, err, apperrors.ErrValidation)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestSchematicServiceFindSchematic(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	f := ts.fridge(t, "Bench", "4C")

	empty, err := ts.schematics.FindSchematic(ctx, "4C", domain.SectionDoor, nil)
	require.NoError(t, err)
	assert.False(t, empty.Configured)
	assert.Equal(t, 2, empty.Rows)
	assert.Empty(t, empty.Compartments)

	perFridge := ts.schematic(t, "4C", domain.SectionDoor, &f.ID)
	zoneWide, err := ts.schematics.FindSchematic(ctx, "4C", domain.SectionDoor, nil)
	require.NoError(t, err)
	assert.False(t, zoneWide.Configured, "fridge schematic does not cover the zone")

	view, err := ts.schematics.FindSchematic(ctx, "4C", domain.SectionDoor, &f.ID)
	require.NoError(t, err)
	assert.True(t, view.Configured)
	assert.Equal(t, perFridge.ID, view.Schematic.ID)

	_, err = ts.schematics.FindSchematic(ctx, "-80C", domain.SectionDoor, nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestSchematicServiceSaveCompartmentsValidation(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	sc := ts.schematic(t, "4C", domain.SectionBody, nil)

	tests := []struct {
		name string
		in   []CompartmentInput
	}{
		{name: "missing name", in: []CompartmentInput{{Name: " "}}},
		{name: "outside grid", in: []CompartmentInput{{Name: "a", Row: 2, RowSpan: 2}}},
		{name: "negative row", in: []CompartmentInput{{Name: "a", Row: -1}}},
		{name: "negative span", in: []CompartmentInput{{Name: "a", ColumnSpan: -1}}},
		{name: "bad color", in: []CompartmentInput{{Name: "a", Color: "blue"}}},
		{name: "overlap", in: []CompartmentInput{
			{Name: "wide", ColumnSpan: 3},
			{Name: "tall", Column: 1, RowSpan: 2},
		}},
		{name: "duplicate id", in: []CompartmentInput{{ID: 5, Name: "a"}, {ID: 5, Name: "b", Row: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ts.schematics.SaveCompartments(ctx, sc.ID, tt.in)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}

	view, err := ts.schematics.GetSchematic(ctx, sc.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Compartments)
}

func TestSchematicServiceSaveCompartmentsDefaults(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	sc := ts.schematic(t, "4C", domain.SectionBody, nil)

	view, unassigned, err := ts.schematics.SaveCompartments(ctx, sc.ID, []CompartmentInput{
		{Name: "Top shelf", ColumnSpan: 3},
		{Name: "Crisper", Row: 2, Column: 1, ColumnSpan: 2, Color: "#A1B2C3"},
	})
	require.NoError(t, err)
	assert.Zero(t, unassigned)
	require.Len(t, view.Compartments, 2)
	top := view.Compartments[0]
	assert.Equal(t, 1, top.RowSpan)
	assert.Equal(t, defaultCompartmentHue, top.Color)
	assert.Equal(t, "#A1B2C3", view.Compartments[1].Color)
	assert.Equal(t, map[int64]int{top.ID: 0, view.Compartments[1].ID: 0}, view.Counts)
}

func TestSchematicServiceAssignRecordToCompartment(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	sc := ts.schematic(t, "4C", domain.SectionBody, nil)
	comps := ts.compartments(t, sc.ID, "Top", "Bottom")

	zoneless := ts.record(t, "Loose", "", domain.Unassigned())
	got, err := ts.schematics.AssignRecordToCompartment(ctx, zoneless.ID, comps[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "4C", got.Zone)
	assert.Equal(t, domain.InCompartment(comps[0].ID), got.Location)

	gridded := ts.record(t, "Gridded", "4C", domain.AtGrid(domain.SectionBody, 1, 1))
	got, err = ts.schematics.AssignRecordToCompartment(ctx, gridded.ID, comps[1].ID)
	require.NoError(t, err)
	_, isGrid := got.Location.Grid()
	assert.False(t, isGrid)

	frozen := ts.record(t, "Frozen", "-20C", domain.Unassigned())
	_, err = ts.schematics.AssignRecordToCompartment(ctx, frozen.ID, comps[0].ID)
	assert.ErrorIs(t, err, apperrors.ErrZoneMismatch)

	_, err = ts.schematics.AssignRecordToCompartment(ctx, frozen.ID, 999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	inTop, err := ts.schematics.CompartmentRecords(ctx, comps[0].ID)
	require.NoError(t, err)
	require.Len(t, inTop, 1)
	assert.Equal(t, zoneless.ID, inTop[0].ID)

	occupancy, err := ts.occupancy.CompartmentOccupancy(ctx, sc.ID)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{comps[0].ID: 1, comps[1].ID: 1}, occupancy)

	_, err = ts.occupancy.CompartmentOccupancy(ctx, 999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSchematicServiceRemovingCompartmentUnassigns(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	sc := ts.schematic(t, "4C", domain.SectionBody, nil)
	comps := ts.compartments(t, sc.ID, "Top", "Bottom")
	rec := ts.record(t, "Buffer", "4C", domain.InCompartment(comps[1].ID))

	_, unassigned, err := ts.schematics.SaveCompartments(ctx, sc.ID, []CompartmentInput{
		{ID: comps[0].ID, Name: "Top", ColumnSpan: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, unassigned)

	got, err := ts.records.GetRecord(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LocationUnassigned, got.Location.Kind())
}

func TestSchematicServiceReferencePhoto(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	sc := ts.schematic(t, "4C", domain.SectionBody, nil)

	_, _, err := ts.schematics.ReferencePhoto(ctx, sc.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = ts.schematics.UploadReferencePhoto(ctx, sc.ID, nil, "image/jpeg")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	first, err := ts.schematics.UploadReferencePhoto(ctx, sc.ID, testJPEG, "image/jpeg")
	require.NoError(t, err)
	second, err := ts.schematics.UploadReferencePhoto(ctx, sc.ID, []byte("second"), "image/png")
	require.NoError(t, err)
	assert.NotContains(t, ts.photos.saved, first.PhotoKey)

	rc, mimeType, err := ts.schematics.ReferencePhoto(ctx, sc.ID)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
	assert.Equal(t, "image/png", mimeType)

	_, err = ts.schematics.DeleteSchematic(ctx, sc.ID)
	require.NoError(t, err)
	assert.NotContains(t, ts.photos.saved, second.PhotoKey)
}
