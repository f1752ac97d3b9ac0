package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// UltraColdZone is the -80C freezer key. It never has a door section.
const UltraColdZone = "-80C"

type Section string

const (
	SectionBody Section = "body"
	SectionDoor Section = "door"
)

// Record is one stock preparation tracked in the inventory.
type Record struct {
	ID              int64               `json:"id"`
	Name            string              `json:"name"`
	Concentration   decimal.NullDecimal `json:"concentration"`
	Unit            string              `json:"unit"`
	Zone            string              `json:"temperature_zone"`
	Location        Location            `json:"location"`
	Supplier        string              `json:"supplier"`
	LotNumber       string              `json:"lot_number"`
	ProductNumber   string              `json:"product_number"`
	PreparationDate string              `json:"preparation_date"`
	ExpirationDate  string              `json:"expiration_date"`
	Sterility       string              `json:"sterility"`
	LightSensitive  bool                `json:"light_sensitive"`
	Solvents        string              `json:"solvents"`
	Solubility      string              `json:"solubility"`
	AliquotVolume   string              `json:"aliquot_volume"`
	Notes           string              `json:"notes"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// Zone is the physical layout configuration of one temperature zone.
// Door dimensions are zero when HasDoor is false.
type Zone struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	HasDoor     bool   `json:"has_door"`
	BodyRows    int    `json:"body_rows"`
	BodyColumns int    `json:"body_columns"`
	DoorRows    int    `json:"door_rows"`
	DoorColumns int    `json:"door_columns"`
	SortOrder   int    `json:"sort_order"`
}

// Dimensions returns the grid size of section. ok is false when the zone has no such section.
func (z *Zone) Dimensions(section Section) (rows, columns int, ok bool) {
	switch section {
	case SectionBody:
		return z.BodyRows, z.BodyColumns, true
	case SectionDoor:
		if !z.HasDoor || z.Key == UltraColdZone {
			return 0, 0, false
		}
		return z.DoorRows, z.DoorColumns, true
	}
	return 0, 0, false
}

// Layout is the photograph of one zone section that regions are drawn on.
type Layout struct {
	ID          int64     `json:"id"`
	Zone        string    `json:"temperature_zone"`
	Section     Section   `json:"section"`
	PhotoKey    string    `json:"-"`
	MimeType    string    `json:"mime_type"`
	PhotoWidth  int       `json:"photo_width"`
	PhotoHeight int       `json:"photo_height"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Region is a named rectangle on a layout photo, in photo pixel coordinates.
type Region struct {
	ID        int64     `json:"id"`
	LayoutID  int64     `json:"layout_id"`
	Name      string    `json:"name"`
	X         int       `json:"x"`
	Y         int       `json:"y"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	CreatedAt time.Time `json:"created_at"`
}
