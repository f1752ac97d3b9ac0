package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vbonduro/labinv/internal/db"
	"github.com/vbonduro/labinv/internal/domain"
	"github.com/vbonduro/labinv/internal/store"
	"github.com/vbonduro/labinv/internal/vision"
)

// stubSuggester is a minimal vision.RegionSuggester for tests.
type stubSuggester struct {
	result *vision.SuggestionResult
	err    error
	got    []byte
}

func (s *stubSuggester) SuggestRegions(_ context.Context, r io.Reader, _ string) (*vision.SuggestionResult, error) {
	s.got, _ = io.ReadAll(r)
	return s.result, s.err
}

// stubPhotoStore is a minimal in-memory photostore.PhotoStore for tests.
type stubPhotoStore struct {
	saved   map[string][]byte
	saveErr error
	n       int
}

func newStubPhotoStore() *stubPhotoStore {
	return &stubPhotoStore{saved: make(map[string][]byte)}
}

func (s *stubPhotoStore) Save(_ context.Context, prefix, _ string, r io.Reader) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	data, _ := io.ReadAll(r)
	s.n++
	key := fmt.Sprintf("%s_%d.jpg", prefix, s.n)
	s.saved[key] = data
	return key, nil
}

func (s *stubPhotoStore) Get(_ context.Context, key string) (io.ReadCloser, string, error) {
	data, ok := s.saved[key]
	if !ok {
		return nil, "", errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(data)), "image/jpeg", nil
}

func (s *stubPhotoStore) Delete(_ context.Context, key string) error {
	delete(s.saved, key)
	return nil
}

type testServices struct {
	records    *RecordService
	zones      *ZoneService
	layouts    *LayoutService
	occupancy  *OccupancyService
	reconciler *Reconciler
	fridges    *FridgeService
	schematics *SchematicService
	antibodies *AntibodyService
	settings   *SettingService
	photos     *stubPhotoStore
	suggester  *stubSuggester

	// zoneStore writes zones without the service's checks, so tests can
	// reproduce configurations the service would refuse.
	zoneStore *store.ZoneStore
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	records := store.NewRecordStore(d)
	zones := store.NewZoneStore(d)
	layouts := store.NewLayoutStore(d)
	regions := store.NewRegionStore(d)
	fridges := store.NewFridgeStore(d)
	schematics := store.NewSchematicStore(d)
	logger := zap.NewNop()

	photos := newStubPhotoStore()
	suggester := &stubSuggester{result: &vision.SuggestionResult{}}

	return &testServices{
		records:    NewRecordService(records, zones, regions, layouts, schematics, logger),
		zones:      NewZoneService(zones, layouts, schematics, logger),
		layouts:    NewLayoutService(zones, layouts, regions, records, photos, suggester, logger),
		occupancy:  NewOccupancyService(zones, layouts, schematics, records),
		reconciler: NewReconciler(records, zones, regions, layouts, logger),
		fridges:    NewFridgeService(fridges, zones, schematics, logger),
		schematics: NewSchematicService(schematics, zones, fridges, records, photos, logger),
		antibodies: NewAntibodyService(store.NewAntibodyStore(d), zones, logger),
		settings:   NewSettingService(store.NewSettingStore(d), logger),
		photos:     photos,
		suggester:  suggester,
		zoneStore:  zones,
	}
}

var testJPEG = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}

func (ts *testServices) layout(t *testing.T, zone string, section domain.Section) *domain.Layout {
	t.Helper()
	l, err := ts.layouts.UploadLayoutPhoto(context.Background(), zone, section, testJPEG, "image/jpeg")
	require.NoError(t, err)
	return l
}

func (ts *testServices) region(t *testing.T, layoutID int64, name string) *domain.Region {
	t.Helper()
	r, err := ts.layouts.CreateRegion(context.Background(), layoutID, RegionInput{Name: name, X: 0, Y: 0, Width: 100, Height: 80})
	require.NoError(t, err)
	return r
}

func (ts *testServices) record(t *testing.T, name, zone string, loc domain.Location) *domain.Record {
	t.Helper()
	rec, err := ts.records.CreateRecord(context.Background(), &domain.Record{Name: name, Zone: zone, Location: loc})
	require.NoError(t, err)
	return rec
}

func (ts *testServices) fridge(t *testing.T, name, zone string) *domain.Fridge {
	t.Helper()
	f, err := ts.fridges.CreateFridge(context.Background(), &domain.Fridge{Name: name, Zone: zone})
	require.NoError(t, err)
	return f
}

func (ts *testServices) schematic(t *testing.T, zone string, section domain.Section, fridgeID *int64) *domain.Schematic {
	t.Helper()
	sc, err := ts.schematics.CreateSchematic(context.Background(), SchematicInput{Zone: zone, Section: section, FridgeID: fridgeID})
	require.NoError(t, err)
	return sc
}

// compartments saves one single-cell compartment per name, one per row.
func (ts *testServices) compartments(t *testing.T, schematicID int64, names ...string) []*domain.Compartment {
	t.Helper()
	in := make([]CompartmentInput, len(names))
	for i, name := range names {
		in[i] = CompartmentInput{Name: name, Row: i}
	}
	view, _, err := ts.schematics.SaveCompartments(context.Background(), schematicID, in)
	require.NoError(t, err)
	return view.Compartments
}

// removeDoor turns off the zone's door directly in the store, leaving any
// door layouts and schematics in place.
func (ts *testServices) removeDoor(t *testing.T, zoneKey string) {
	t.Helper()
	ctx := context.Background()
	zone, err := ts.zoneStore.GetByKey(ctx, zoneKey)
	require.NoError(t, err)
	zone.HasDoor, zone.DoorRows, zone.DoorColumns = false, 0, 0
	require.NoError(t, ts.zoneStore.Update(ctx, zone))
}
