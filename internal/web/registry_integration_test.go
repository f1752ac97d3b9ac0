package web_test

import (
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/labinv/internal/domain"
	"github.com/vbonduro/labinv/internal/service"
)

type schematicViewBody struct {
	Schematic    *domain.Schematic     `json:"schematic"`
	Rows         int                   `json:"rows"`
	Columns      int                   `json:"columns"`
	Compartments []*domain.Compartment `json:"compartments"`
	Counts       map[int64]int         `json:"counts"`
	Configured   bool                  `json:"configured"`

	RecordsUnassigned int `json:"records_unassigned"`
}

func TestIntegration_FridgeCRUD(t *testing.T) {
	srv := newTestServer(t, nil)

	var fridge domain.Fridge
	require.Equal(t, http.StatusCreated, doJSON(t, http.MethodPost, srv.URL+"/api/fridges",
		map[string]any{"name": "Bench fridge", "temperature_zone": "4C", "location": "Room 210"}, &fridge))
	assert.NotZero(t, fridge.ID)

	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodPost, srv.URL+"/api/fridges",
		map[string]any{"name": "Nowhere", "temperature_zone": "37C"}, nil))

	var byZone []domain.Fridge
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, srv.URL+"/api/fridges/by-zone/4C", nil, &byZone))
	assert.Len(t, byZone, 1)
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, srv.URL+"/api/fridges/by-zone/-20C", nil, &byZone))
	assert.Empty(t, byZone)
	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodGet, srv.URL+"/api/fridges/by-zone/XYZ", nil, nil))

	var updated domain.Fridge
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/fridges/%d", srv.URL, fridge.ID),
		map[string]any{"name": "Bench fridge", "temperature_zone": "4C", "model": "LR-200"}, &updated))
	assert.Equal(t, "LR-200", updated.Model)

	var deleted struct {
		RecordsUnassigned int `json:"records_unassigned"`
	}
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/fridges/%d", srv.URL, fridge.ID), nil, &deleted))
	assert.Zero(t, deleted.RecordsUnassigned)
	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/fridges/%d", srv.URL, fridge.ID), nil, nil))
}

func TestIntegration_SchematicCompartments(t *testing.T) {
	srv := newTestServer(t, nil)

	var empty schematicViewBody
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, srv.URL+"/api/schematics/4C/body", nil, &empty))
	assert.False(t, empty.Configured)
	assert.Equal(t, 3, empty.Rows)

	var sc domain.Schematic
	require.Equal(t, http.StatusCreated, doJSON(t, http.MethodPost, srv.URL+"/api/schematics",
		map[string]any{"temperature_zone": "4C", "section": "body", "name": "Shelves"}, &sc))
	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodPost, srv.URL+"/api/schematics",
		map[string]any{"temperature_zone": "4C", "section": "body", "name": "Again"}, nil))

	compartmentsURL := fmt.Sprintf("%s/api/schematics/id/%d/compartments", srv.URL, sc.ID)
	var saved schematicViewBody
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPut, compartmentsURL, map[string]any{
		"compartments": []map[string]any{
			{"name": "Top shelf", "row": 0, "column": 0, "column_span": 3},
			{"name": "Crisper", "row": 2, "column": 0, "column_span": 2},
		},
	}, &saved))
	require.Len(t, saved.Compartments, 2)
	top, crisper := saved.Compartments[0], saved.Compartments[1]

	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodPut, compartmentsURL, map[string]any{
		"compartments": []map[string]any{
			{"name": "A", "row": 0, "column": 0, "column_span": 2},
			{"name": "B", "row": 0, "column": 1},
		},
	}, nil))

	rec := createRecord(t, srv, map[string]any{"name": "Trypsin"})
	var placed domain.Record
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/records/%d/compartment", srv.URL, rec.ID),
		map[string]any{"compartment_id": top.ID}, &placed))
	assert.Equal(t, "4C", placed.Zone)
	assert.Equal(t, domain.InCompartment(top.ID), placed.Location)

	var occupancy []struct {
		CompartmentID int64  `json:"compartment_id"`
		Count         int    `json:"count"`
		Tier          string `json:"tier"`
	}
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/schematics/id/%d/occupancy", srv.URL, sc.ID), nil, &occupancy))
	require.Len(t, occupancy, 2)
	assert.Equal(t, top.ID, occupancy[0].CompartmentID)
	assert.Equal(t, 1, occupancy[0].Count)
	assert.Equal(t, "empty", occupancy[1].Tier)

	var inTop []domain.Record
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/compartments/%d/records", srv.URL, top.ID), nil, &inTop))
	assert.Len(t, inTop, 1)

	var afterRemove schematicViewBody
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPut, compartmentsURL, map[string]any{
		"compartments": []map[string]any{{"id": crisper.ID, "name": "Crisper", "row": 2, "column": 0}},
	}, &afterRemove))
	assert.Equal(t, 1, afterRemove.RecordsUnassigned)
	require.Len(t, afterRemove.Compartments, 1)

	var got domain.Record
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/records/%d", srv.URL, rec.ID), nil, &got))
	assert.Equal(t, domain.LocationUnassigned, got.Location.Kind())

	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/records/%d/compartment", srv.URL, rec.ID),
		map[string]any{"compartment_id": crisper.ID}, nil))
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/records/%d/compartment", srv.URL, rec.ID), nil, &got))
	assert.Equal(t, domain.LocationUnassigned, got.Location.Kind())

	assert.Equal(t, http.StatusOK, doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/schematics/id/%d", srv.URL, sc.ID), nil, nil))
	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/schematics/id/%d", srv.URL, sc.ID), nil, nil))
}

func TestIntegration_SchematicReferencePhoto(t *testing.T) {
	srv := newTestServer(t, nil)

	var sc domain.Schematic
	require.Equal(t, http.StatusCreated, doJSON(t, http.MethodPost, srv.URL+"/api/schematics",
		map[string]any{"temperature_zone": "-20C", "section": "body", "name": "Freezer racks"}, &sc))
	photoURL := fmt.Sprintf("%s/api/schematics/id/%d/reference", srv.URL, sc.ID)

	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodGet, photoURL, nil, nil))

	body, ct := buildMultipartBody(t, "image", "rack.jpg", minimalJPEG, nil)
	resp, err := http.Post(photoURL, ct, body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	photo, err := http.Get(photoURL)
	require.NoError(t, err)
	defer func() { _ = photo.Body.Close() }()
	assert.Equal(t, http.StatusOK, photo.StatusCode)
	assert.Equal(t, "image/jpeg", photo.Header.Get("Content-Type"))
	data, err := io.ReadAll(photo.Body)
	require.NoError(t, err)
	assert.Equal(t, minimalJPEG, data)

	bad, ct := buildMultipartBody(t, "image", "notes.txt", []byte("plain text"), nil)
	resp, err = http.Post(photoURL, ct, bad)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestIntegration_DoorRemovalBlockedByLayout(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, layout := uploadLayout(t, srv, "4C", "door", minimalJPEG)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	noDoor := map[string]any{"label": "4°C fridge", "has_door": false, "body_rows": 3, "body_columns": 3, "sort_order": 10}
	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodPut, srv.URL+"/api/zones/4C", noDoor, nil))

	var zone domain.Zone
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, srv.URL+"/api/zones/4C", nil, &zone))
	assert.True(t, zone.HasDoor)

	var deleted struct {
		RecordsUnassigned int `json:"records_unassigned"`
	}
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/layouts/id/%d", srv.URL, layout.ID), nil, &deleted))
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPut, srv.URL+"/api/zones/4C", noDoor, &zone))
	assert.False(t, zone.HasDoor)

	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodPost, srv.URL+"/api/records",
		map[string]any{"name": "Door item", "temperature_zone": "4C", "location": gridLoc("door", 0, 0)}, nil))
}

func TestIntegration_AntibodyMatching(t *testing.T) {
	srv := newTestServer(t, nil)

	var primary domain.PrimaryAntibody
	require.Equal(t, http.StatusCreated, doJSON(t, http.MethodPost, srv.URL+"/api/antibodies/primary",
		map[string]any{"name": "anti-GFP", "target": "GFP", "host_species": "Rabbit", "isotype": "IgG", "temperature_zone": "4C"}, &primary))

	for _, body := range []map[string]any{
		{"name": "Goat anti-rabbit H+L", "host_species": "Goat", "target_species": "rabbit", "target_isotype": "H+L"},
		{"name": "Donkey anti-rabbit IgG", "host_species": "Donkey", "target_species": "Rabbit", "target_isotype": "IgG"},
		{"name": "Goat anti-mouse", "host_species": "Goat", "target_species": "Mouse"},
	} {
		require.Equal(t, http.StatusCreated, doJSON(t, http.MethodPost, srv.URL+"/api/antibodies/secondary", body, nil))
	}

	var matches []service.AntibodyMatch
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/antibodies/primary/%d/matches", srv.URL, primary.ID), nil, &matches))
	require.Len(t, matches, 2)
	assert.Equal(t, "Donkey anti-rabbit IgG", matches[0].Secondary.Name)
	assert.True(t, matches[0].IsotypeMatch)
	assert.False(t, matches[1].IsotypeMatch)

	var secondaries []domain.SecondaryAntibody
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, srv.URL+"/api/antibodies/secondary", nil, &secondaries))
	assert.Len(t, secondaries, 3)

	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodPost, srv.URL+"/api/antibodies/primary", map[string]any{"target": "GFP"}, nil))
	assert.Equal(t, http.StatusNoContent, doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/antibodies/primary/%d", srv.URL, primary.ID), nil, nil))
	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/antibodies/primary/%d/matches", srv.URL, primary.ID), nil, nil))
}

func TestIntegration_Settings(t *testing.T) {
	srv := newTestServer(t, nil)

	var one struct {
		Key   string  `json:"key"`
		Value *string `json:"value"`
	}
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, srv.URL+"/api/settings/theme", nil, &one))
	assert.Nil(t, one.Value)

	var all map[string]string
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPut, srv.URL+"/api/settings",
		map[string]string{"theme": "dark", "default_zone": "4C"}, &all))
	assert.Equal(t, map[string]string{"theme": "dark", "default_zone": "4C"}, all)

	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, srv.URL+"/api/settings/theme", nil, &one))
	require.NotNil(t, one.Value)
	assert.Equal(t, "dark", *one.Value)

	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodPut, srv.URL+"/api/settings", map[string]string{"bad key": "x"}, nil))
	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodPut, srv.URL+"/api/settings", map[string]string{}, nil))
}
