package domain

import (
	"encoding/json"
	"fmt"
)

type LocationKind string

const (
	LocationUnassigned  LocationKind = "unassigned"
	LocationGrid        LocationKind = "grid"
	LocationRegion      LocationKind = "region"
	LocationCompartment LocationKind = "compartment"
)

// GridPosition addresses a cell in the legacy row/column scheme.
type GridPosition struct {
	Section Section `json:"section"`
	Row     int     `json:"row"`
	Column  int     `json:"column"`
}

// Location is where a record is stored. Exactly one of the variants is
// active; the zero value is Unassigned. Region and compartment locations
// replace the legacy grid address.
type Location struct {
	kind          LocationKind
	grid          GridPosition
	regionID      int64
	compartmentID int64
}

func Unassigned() Location {
	return Location{kind: LocationUnassigned}
}

func AtGrid(section Section, row, column int) Location {
	return Location{kind: LocationGrid, grid: GridPosition{Section: section, Row: row, Column: column}}
}

func InRegion(regionID int64) Location {
	return Location{kind: LocationRegion, regionID: regionID}
}

// InCompartment places a record in a compartment of a schematic layout.
func InCompartment(compartmentID int64) Location {
	return Location{kind: LocationCompartment, compartmentID: compartmentID}
}

func (l Location) Kind() LocationKind {
	if l.kind == "" {
		return LocationUnassigned
	}
	return l.kind
}

func (l Location) Grid() (GridPosition, bool) {
	return l.grid, l.kind == LocationGrid
}

func (l Location) RegionID() (int64, bool) {
	return l.regionID, l.kind == LocationRegion
}

func (l Location) CompartmentID() (int64, bool) {
	return l.compartmentID, l.kind == LocationCompartment
}

func (l Location) String() string {
	switch l.Kind() {
	case LocationGrid:
		return fmt.Sprintf("%s/%d/%d", l.grid.Section, l.grid.Row, l.grid.Column)
	case LocationRegion:
		return fmt.Sprintf("region/%d", l.regionID)
	case LocationCompartment:
		return fmt.Sprintf("compartment/%d", l.compartmentID)
	}
	return string(LocationUnassigned)
}

type locationJSON struct {
	Kind          LocationKind `json:"kind"`
	Section       Section      `json:"section,omitempty"`
	Row           *int         `json:"row,omitempty"`
	Column        *int         `json:"column,omitempty"`
	RegionID      int64        `json:"region_id,omitempty"`
	CompartmentID int64        `json:"compartment_id,omitempty"`
}

func (l Location) MarshalJSON() ([]byte, error) {
	out := locationJSON{Kind: l.Kind()}
	switch out.Kind {
	case LocationGrid:
		row, col := l.grid.Row, l.grid.Column
		out.Section, out.Row, out.Column = l.grid.Section, &row, &col
	case LocationRegion:
		out.RegionID = l.regionID
	case LocationCompartment:
		out.CompartmentID = l.compartmentID
	}
	return json.Marshal(out)
}

func (l *Location) UnmarshalJSON(data []byte) error {
	var in locationJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch in.Kind {
	case "", LocationUnassigned:
		*l = Unassigned()
	case LocationGrid:
		if in.Row == nil || in.Column == nil {
			return fmt.Errorf("grid location requires row and column")
		}
		*l = AtGrid(in.Section, *in.Row, *in.Column)
	case LocationRegion:
		if in.RegionID == 0 {
			return fmt.Errorf("region location requires region_id")
		}
		*l = InRegion(in.RegionID)
	case LocationCompartment:
		if in.CompartmentID == 0 {
			return fmt.Errorf("compartment location requires compartment_id")
		}
		*l = InCompartment(in.CompartmentID)
	default:
		return fmt.Errorf("unknown location kind %q", in.Kind)
	}
	return nil
}
