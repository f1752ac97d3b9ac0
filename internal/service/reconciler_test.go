package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/labinv/internal/apperrors"
	"github.com/vbonduro/labinv/internal/domain"
)

func TestReconcilerGroupAndMigrateSameCell(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	zone, err := ts.zones.GetZone(ctx, "-20C")
	require.NoError(t, err)
	zone.BodyRows, zone.BodyColumns = 4, 3
	_, err = ts.zones.UpdateZone(ctx, zone)
	require.NoError(t, err)

	r1 := ts.record(t, "DMSO stock", "-20C", domain.AtGrid(domain.SectionBody, 1, 2))
	r2 := ts.record(t, "Rapamycin", "-20C", domain.AtGrid(domain.SectionBody, 1, 2))
	r3 := ts.record(t, "Forskolin", "-20C", domain.AtGrid(domain.SectionBody, 1, 2))

	groups, err := ts.reconciler.GroupLegacyRecords(ctx, "-20C")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, domain.SectionBody, groups[0].Section)
	assert.Equal(t, 1, groups[0].Row)
	assert.Equal(t, 2, groups[0].Column)
	assert.Equal(t, []int64{r1.ID, r2.ID, r3.ID}, groups[0].RecordIDs())

	layout := ts.layout(t, "-20C", domain.SectionBody)
	regionX := ts.region(t, layout.ID, "Shelf X")

	result, err := ts.reconciler.Migrate(ctx, []int64{r1.ID, r2.ID, r3.ID}, regionX.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Migrated)
	assert.Zero(t, result.Rejected+result.NotApplicable+result.NotFound+result.Failed)

	for _, id := range []int64{r1.ID, r2.ID, r3.ID} {
		rec, err := ts.records.GetRecord(ctx, id)
		require.NoError(t, err)
		regionID, ok := rec.Location.RegionID()
		assert.True(t, ok)
		assert.Equal(t, regionX.ID, regionID)
		_, isGrid := rec.Location.Grid()
		assert.False(t, isGrid)
	}

	grid, err := ts.occupancy.GridOccupancy(ctx, "-20C", domain.SectionBody)
	require.NoError(t, err)
	assert.Equal(t, 0, grid.Count(1, 2))

	regions, err := ts.occupancy.RegionOccupancy(ctx, layout.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, regions[regionX.ID])

	groups, err = ts.reconciler.GroupLegacyRecords(ctx, "-20C")
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestReconcilerRejectsZoneMismatch(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	r1 := ts.record(t, "Trypsin", "-20C", domain.AtGrid(domain.SectionBody, 0, 1))
	layout := ts.layout(t, "4C", domain.SectionBody)
	regionY := ts.region(t, layout.ID, "Top shelf")

	result, err := ts.reconciler.Migrate(ctx, []int64{r1.ID}, regionY.ID)
	require.NoError(t, err)
	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, StatusRejected, result.Outcomes[0].Status)
	assert.ErrorIs(t, result.Outcomes[0].Err, apperrors.ErrZoneMismatch)
	assert.ErrorIs(t, result.Outcomes[0].Err, apperrors.ErrValidation)
	assert.Equal(t, 1, result.Rejected)
	assert.Zero(t, result.Migrated)

	rec, err := ts.records.GetRecord(ctx, r1.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AtGrid(domain.SectionBody, 0, 1), rec.Location)
	assert.Equal(t, "-20C", rec.Zone)
}

func TestReconcilerMigrateTwiceIsNotApplicable(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	rec := ts.record(t, "PBS", "4C", domain.AtGrid(domain.SectionDoor, 1, 1))
	layout := ts.layout(t, "4C", domain.SectionDoor)
	region := ts.region(t, layout.ID, "Door rack")

	first, err := ts.reconciler.Migrate(ctx, []int64{rec.ID}, region.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Migrated)

	second, err := ts.reconciler.Migrate(ctx, []int64{rec.ID}, region.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, second.NotApplicable)
	assert.Equal(t, StatusNotApplicable, second.Outcomes[0].Status)

	got, err := ts.records.GetRecord(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InRegion(region.ID), got.Location)
}

func TestReconcilerMigratePartialBatch(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	layout := ts.layout(t, "4C", domain.SectionBody)
	region := ts.region(t, layout.ID, "Shelf")

	legacy := ts.record(t, "Glucose", "4C", domain.AtGrid(domain.SectionBody, 2, 2))
	unassigned := ts.record(t, "Agar", "4C", domain.Unassigned())

	result, err := ts.reconciler.Migrate(ctx, []int64{legacy.ID, 9999, unassigned.ID, legacy.ID}, region.ID)
	require.NoError(t, err)
	require.Len(t, result.Outcomes, 3)
	assert.Equal(t, 1, result.Migrated)
	assert.Equal(t, 1, result.NotFound)
	assert.Equal(t, 1, result.NotApplicable)
	assert.Equal(t, StatusNotFound, result.Outcomes[1].Status)
	assert.ErrorIs(t, result.Outcomes[1].Err, apperrors.ErrNotFound)
}

func TestReconcilerMigrateMissingRegion(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	rec := ts.record(t, "Tris", "4C", domain.AtGrid(domain.SectionBody, 0, 0))

	_, err := ts.reconciler.Migrate(ctx, []int64{rec.ID}, 4242)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	got, err := ts.records.GetRecord(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AtGrid(domain.SectionBody, 0, 0), got.Location)
}

func TestReconcilerGroupOrdering(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	b := ts.record(t, "B", "4C", domain.AtGrid(domain.SectionDoor, 0, 0))
	a := ts.record(t, "A", "4C", domain.AtGrid(domain.SectionBody, 2, 0))
	c := ts.record(t, "C", "4C", domain.AtGrid(domain.SectionBody, 0, 1))
	ts.record(t, "Elsewhere", "-20C", domain.AtGrid(domain.SectionBody, 0, 1))

	groups, err := ts.reconciler.GroupLegacyRecords(ctx, "4C")
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Equal(t, []int64{c.ID}, groups[0].RecordIDs())
	assert.Equal(t, []int64{a.ID}, groups[1].RecordIDs())
	assert.Equal(t, []int64{b.ID}, groups[2].RecordIDs())
}

func TestReconcilerSummary(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	layout := ts.layout(t, "4C", domain.SectionBody)
	region := ts.region(t, layout.ID, "Shelf")

	ts.record(t, "In region", "4C", domain.InRegion(region.ID))
	ts.record(t, "On grid", "4C", domain.AtGrid(domain.SectionBody, 0, 0))
	ts.record(t, "Nowhere", "4C", domain.Unassigned())
	ts.record(t, "Other zone", "RT", domain.AtGrid(domain.SectionBody, 0, 0))

	summary, err := ts.reconciler.Summary(ctx, "4C")
	require.NoError(t, err)
	assert.Equal(t, &MigrationSummary{Zone: "4C", WithRegion: 1, LegacyOnly: 1, Unassigned: 1}, summary)

	all, err := ts.reconciler.Summary(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, all.LegacyOnly)
}

func TestReconcilerZonelessRecordIsNotApplicable(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	layout := ts.layout(t, "4C", domain.SectionBody)
	region := ts.region(t, layout.ID, "Shelf")
	rec := ts.record(t, "Loose vial", "", domain.Unassigned())

	result, err := ts.reconciler.Migrate(ctx, []int64{rec.ID}, region.ID)
	require.NoError(t, err)
	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, StatusNotApplicable, result.Outcomes[0].Status)
	assert.NoError(t, result.Outcomes[0].Err)
	assert.Zero(t, result.Rejected)

	got, err := ts.records.GetRecord(ctx, rec.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Zone)
	assert.Equal(t, domain.LocationUnassigned, got.Location.Kind())
}

func TestReconcilerSummaryCountsCompartments(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	sc := ts.schematic(t, "4C", domain.SectionBody, nil)
	comps := ts.compartments(t, sc.ID, "Top")
	ts.record(t, "Boxed", "4C", domain.InCompartment(comps[0].ID))
	ts.record(t, "On grid", "4C", domain.AtGrid(domain.SectionBody, 0, 0))

	summary, err := ts.reconciler.Summary(ctx, "4C")
	require.NoError(t, err)
	assert.Equal(t, &MigrationSummary{Zone: "4C", WithCompartment: 1, LegacyOnly: 1}, summary)
}
