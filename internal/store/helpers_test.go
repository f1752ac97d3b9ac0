package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vbonduro/labinv/internal/db"
	"github.com/vbonduro/labinv/internal/domain"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func createLayout(t *testing.T, d *sql.DB, zone string, section domain.Section) *domain.Layout {
	t.Helper()
	l, err := NewLayoutStore(d).Create(context.Background(), &domain.Layout{
		Zone: zone, Section: section, PhotoKey: zone + "_" + string(section) + ".jpg", MimeType: "image/jpeg",
	})
	require.NoError(t, err)
	return l
}

func createRegion(t *testing.T, d *sql.DB, layoutID int64, name string) *domain.Region {
	t.Helper()
	r, err := NewRegionStore(d).Create(context.Background(), &domain.Region{
		LayoutID: layoutID, Name: name, X: 10, Y: 10, Width: 50, Height: 40,
	})
	require.NoError(t, err)
	return r
}

func createRecord(t *testing.T, d *sql.DB, name, zone string, loc domain.Location) *domain.Record {
	t.Helper()
	rec, err := NewRecordStore(d).Create(context.Background(), &domain.Record{Name: name, Zone: zone, Location: loc})
	require.NoError(t, err)
	return rec
}

func createFridge(t *testing.T, d *sql.DB, name, zone string) *domain.Fridge {
	t.Helper()
	f, err := NewFridgeStore(d).Create(context.Background(), &domain.Fridge{Name: name, Zone: zone})
	require.NoError(t, err)
	return f
}

func createSchematic(t *testing.T, d *sql.DB, zone string, section domain.Section, fridgeID *int64) *domain.Schematic {
	t.Helper()
	sc, err := NewSchematicStore(d).Create(context.Background(), &domain.Schematic{
		Zone: zone, Section: section, FridgeID: fridgeID,
	})
	require.NoError(t, err)
	return sc
}

func createCompartments(t *testing.T, d *sql.DB, schematicID int64, names ...string) []*domain.Compartment {
	t.Helper()
	comps := make([]*domain.Compartment, 0, len(names))
	for i, name := range names {
		comps = append(comps, &domain.Compartment{Name: name, Row: i, RowSpan: 1, ColumnSpan: 1, Color: "#e3f2fd"})
	}
	_, err := NewSchematicStore(d).SaveCompartments(context.Background(), schematicID, comps)
	require.NoError(t, err)
	return comps
}
