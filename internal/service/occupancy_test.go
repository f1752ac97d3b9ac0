package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/labinv/internal/apperrors"
	"github.com/vbonduro/labinv/internal/domain"
)

func TestOccupancyGridCounts(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c", "d"} {
		ts.record(t, name, "4C", domain.AtGrid(domain.SectionBody, 0, 0))
	}
	ts.record(t, "single", "4C", domain.AtGrid(domain.SectionBody, 2, 1))
	ts.record(t, "door", "4C", domain.AtGrid(domain.SectionDoor, 0, 0))
	ts.record(t, "other zone", "-20C", domain.AtGrid(domain.SectionBody, 0, 0))

	occ, err := ts.occupancy.GridOccupancy(ctx, "4C", domain.SectionBody)
	require.NoError(t, err)
	assert.Equal(t, 3, occ.Rows)
	assert.Equal(t, 3, occ.Columns)
	assert.Equal(t, 4, occ.Count(0, 0))
	assert.Equal(t, 1, occ.Count(2, 1))
	assert.Equal(t, 0, occ.Count(1, 1))
	assert.Zero(t, occ.Overflow)

	assert.Equal(t, domain.TierCrowded, domain.TierFor(occ.Count(0, 0)))
	assert.Equal(t, domain.TierOccupied, domain.TierFor(occ.Count(2, 1)))
	assert.Equal(t, domain.TierEmpty, domain.TierFor(occ.Count(1, 1)))
}

func TestOccupancyShrunkGridOverflows(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	ts.record(t, "corner", "4C", domain.AtGrid(domain.SectionBody, 2, 2))
	ts.record(t, "origin", "4C", domain.AtGrid(domain.SectionBody, 0, 0))

	zone, err := ts.zones.GetZone(ctx, "4C")
	require.NoError(t, err)
	zone.BodyRows, zone.BodyColumns = 2, 2
	_, err = ts.zones.UpdateZone(ctx, zone)
	require.NoError(t, err)

	occ, err := ts.occupancy.GridOccupancy(ctx, "4C", domain.SectionBody)
	require.NoError(t, err)
	assert.Equal(t, 1, occ.Count(0, 0))
	assert.Equal(t, 0, occ.Count(2, 2))
	assert.Equal(t, 1, occ.Overflow)

	recs, err := ts.records.RecordsAtCell(ctx, "4C", domain.SectionBody, 2, 2)
	require.NoError(t, err)
	assert.Len(t, recs, 1, "stale cells stay reachable")
}

func TestOccupancyGridErrors(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	_, err := ts.occupancy.GridOccupancy(ctx, "missing", domain.SectionBody)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = ts.occupancy.GridOccupancy(ctx, "-80C", domain.SectionDoor)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestOccupancyRegionIncludesEmpty(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	layout := ts.layout(t, "4C", domain.SectionBody)
	busy := ts.region(t, layout.ID, "busy")
	empty := ts.region(t, layout.ID, "empty")
	ts.record(t, "one", "4C", domain.InRegion(busy.ID))
	ts.record(t, "two", "4C", domain.InRegion(busy.ID))

	counts, err := ts.occupancy.RegionOccupancy(ctx, layout.ID)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{busy.ID: 2, empty.ID: 0}, counts)

	_, err = ts.occupancy.RegionOccupancy(ctx, 404)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
