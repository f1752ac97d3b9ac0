package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/labinv/internal/apperrors"
	"github.com/vbonduro/labinv/internal/domain"
	"github.com/vbonduro/labinv/internal/vision"
)

func TestLayoutServiceDeleteRegionUnassignsRecords(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	layout := ts.layout(t, "4C", domain.SectionBody)
	regionA := ts.region(t, layout.ID, "A")
	regionB := ts.region(t, layout.ID, "B")

	r1 := ts.record(t, "R1", "4C", domain.InRegion(regionA.ID))
	ts.record(t, "R2", "4C", domain.InRegion(regionB.ID))

	unassigned, err := ts.layouts.DeleteRegion(ctx, regionA.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, unassigned)

	got, err := ts.records.GetRecord(ctx, r1.ID)
	require.NoError(t, err)
	_, inRegion := got.Location.RegionID()
	assert.False(t, inRegion)

	counts, err := ts.occupancy.RegionOccupancy(ctx, layout.ID)
	require.NoError(t, err)
	assert.NotContains(t, counts, regionA.ID)
	assert.Equal(t, 1, counts[regionB.ID])

	recs, err := ts.layouts.RegionRecords(ctx, regionB.ID)
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	_, err = ts.layouts.DeleteRegion(ctx, regionA.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLayoutServiceListRegionsNotConfigured(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	listing, err := ts.layouts.ListRegions(ctx, "4C", domain.SectionBody)
	require.NoError(t, err)
	assert.False(t, listing.Configured)
	assert.Nil(t, listing.Layout)
	assert.Empty(t, listing.Regions)

	_, err = ts.layouts.ListRegions(ctx, "-80C", domain.SectionDoor)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestLayoutServiceListRegionsConfigured(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	layout := ts.layout(t, "RT", domain.SectionBody)
	ts.region(t, layout.ID, "Bench shelf")
	ts.region(t, layout.ID, "Bench shelf")

	listing, err := ts.layouts.ListRegions(ctx, "RT", domain.SectionBody)
	require.NoError(t, err)
	assert.True(t, listing.Configured)
	assert.Equal(t, layout.ID, listing.Layout.ID)
	assert.Len(t, listing.Regions, 2, "duplicate region names are allowed")
}

func TestLayoutServiceUploadReplacesPhoto(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	first := ts.layout(t, "4C", domain.SectionDoor)
	region := ts.region(t, first.ID, "Rack")
	firstKey := first.PhotoKey
	require.Contains(t, ts.photos.saved, firstKey)

	second, err := ts.layouts.UploadLayoutPhoto(ctx, "4C", domain.SectionDoor, []byte{0x89, 0x50, 0x4E, 0x47}, "image/png")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "image/png", second.MimeType)
	assert.NotContains(t, ts.photos.saved, firstKey)
	assert.Contains(t, ts.photos.saved, second.PhotoKey)

	listing, err := ts.layouts.ListRegions(ctx, "4C", domain.SectionDoor)
	require.NoError(t, err)
	require.Len(t, listing.Regions, 1)
	assert.Equal(t, region.ID, listing.Regions[0].ID)
}

func TestLayoutServiceUploadValidation(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	_, err := ts.layouts.UploadLayoutPhoto(ctx, "-80C", domain.SectionDoor, testJPEG, "image/jpeg")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = ts.layouts.UploadLayoutPhoto(ctx, "4C", domain.SectionBody, nil, "image/jpeg")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = ts.layouts.UploadLayoutPhoto(ctx, "unknown", domain.SectionBody, testJPEG, "image/jpeg")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	ts.photos.saveErr = errors.New("disk full")
	_, err = ts.layouts.UploadLayoutPhoto(ctx, "4C", domain.SectionBody, testJPEG, "image/jpeg")
	assert.Error(t, err)
	assert.Empty(t, ts.photos.saved)
}

func TestLayoutServiceCreateRegionValidation(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	layout := ts.layout(t, "4C", domain.SectionBody)

	tests := []struct {
		name string
		in   RegionInput
	}{
		{name: "zero width", in: RegionInput{Name: "a", Width: 0, Height: 10}},
		{name: "zero height", in: RegionInput{Name: "a", Width: 10, Height: 0}},
		{name: "negative x", in: RegionInput{Name: "a", X: -1, Width: 10, Height: 10}},
		{name: "blank name", in: RegionInput{Name: " ", Width: 10, Height: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.layouts.CreateRegion(ctx, layout.ID, tt.in)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}

	_, err := ts.layouts.CreateRegion(ctx, 999, RegionInput{Name: "a", Width: 10, Height: 10})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLayoutServiceUpdateRegion(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	layout := ts.layout(t, "4C", domain.SectionBody)
	region := ts.region(t, layout.ID, "Old")

	updated, err := ts.layouts.UpdateRegion(ctx, region.ID, RegionInput{Name: "New", X: 5, Y: 6, Width: 7, Height: 8})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Name)
	assert.Equal(t, 8, updated.Height)

	_, err = ts.layouts.UpdateRegion(ctx, 999, RegionInput{Name: "x", Width: 1, Height: 1})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLayoutServiceDeleteLayout(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	layout := ts.layout(t, "4C", domain.SectionBody)
	region := ts.region(t, layout.ID, "Shelf")
	rec := ts.record(t, "Media", "4C", domain.InRegion(region.ID))

	unassigned, err := ts.layouts.DeleteLayout(ctx, layout.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, unassigned)
	assert.Empty(t, ts.photos.saved)

	got, err := ts.records.GetRecord(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LocationUnassigned, got.Location.Kind())

	_, err = ts.layouts.GetLayout(ctx, layout.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLayoutServiceAssignAndUnassign(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	layout := ts.layout(t, "-20C", domain.SectionBody)
	region := ts.region(t, layout.ID, "Box 3")

	loose := ts.record(t, "Loose", "", domain.Unassigned())
	assigned, err := ts.layouts.AssignRecord(ctx, loose.ID, region.ID)
	require.NoError(t, err)
	assert.Equal(t, "-20C", assigned.Zone)
	assert.Equal(t, domain.InRegion(region.ID), assigned.Location)

	gridRec := ts.record(t, "Grid", "-20C", domain.AtGrid(domain.SectionBody, 0, 0))
	moved, err := ts.layouts.AssignRecord(ctx, gridRec.ID, region.ID)
	require.NoError(t, err)
	_, isGrid := moved.Location.Grid()
	assert.False(t, isGrid)

	other := ts.record(t, "Cold", "4C", domain.Unassigned())
	_, err = ts.layouts.AssignRecord(ctx, other.ID, region.ID)
	assert.ErrorIs(t, err, apperrors.ErrZoneMismatch)

	cleared, err := ts.layouts.UnassignRecord(ctx, assigned.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LocationUnassigned, cleared.Location.Kind())
	assert.Equal(t, "-20C", cleared.Zone)
}

func TestLayoutServiceSuggestRegions(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	ts.suggester.result = &vision.SuggestionResult{
		Regions: []vision.SuggestedRegion{{Name: "Top shelf", Width: 640, Height: 120}},
	}
	layout := ts.layout(t, "4C", domain.SectionBody)

	regions, err := ts.layouts.SuggestRegions(ctx, layout.ID)
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.Equal(t, "Top shelf", regions[0].Name)
	assert.Equal(t, testJPEG, ts.suggester.got)

	listing, err := ts.layouts.ListRegions(ctx, "4C", domain.SectionBody)
	require.NoError(t, err)
	assert.Empty(t, listing.Regions)
}

func TestLayoutServiceSuggestRegionsDisabled(t *testing.T) {
	ts := newTestServices(t)
	layout := ts.layout(t, "4C", domain.SectionBody)

	svc := *ts.layouts
	svc.suggester = nil
	_, err := svc.SuggestRegions(context.Background(), layout.ID)
	assert.ErrorIs(t, err, ErrVisionDisabled)
}

func TestLayoutServiceLayoutPhoto(t *testing.T) {
	ts := newTestServices(t)
	layout := ts.layout(t, "4C", domain.SectionBody)

	rc, mimeType, err := ts.layouts.LayoutPhoto(context.Background(), layout.ID)
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, testJPEG, data)
	assert.Equal(t, "image/jpeg", mimeType)
}

func TestImageSize(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 64, 48))))

	w, h := imageSize(buf.Bytes())
	assert.Equal(t, 64, w)
	assert.Equal(t, 48, h)

	w, h = imageSize(testJPEG)
	assert.Zero(t, w)
	assert.Zero(t, h)
}
