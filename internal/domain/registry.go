package domain

import "time"

// Fridge is one physical fridge or freezer. Several fridges can share a
// temperature zone.
type Fridge struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Zone      string    `json:"temperature_zone"`
	Location  string    `json:"location"`
	Model     string    `json:"model"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Schematic is a drawn layout of one zone section, optionally for a single
// fridge. Its compartments span cells of the section grid.
type Schematic struct {
	ID        int64     `json:"id"`
	Zone      string    `json:"temperature_zone"`
	Section   Section   `json:"section"`
	FridgeID  *int64    `json:"fridge_id"`
	Name      string    `json:"name"`
	PhotoKey  string    `json:"-"`
	MimeType  string    `json:"mime_type,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasReferencePhoto reports whether a reference photo was uploaded.
func (s *Schematic) HasReferencePhoto() bool {
	return s.PhotoKey != ""
}

// Compartment is a rectangle of grid cells on a schematic.
type Compartment struct {
	ID          int64  `json:"id"`
	SchematicID int64  `json:"schematic_id"`
	Name        string `json:"name"`
	Row         int    `json:"row"`
	Column      int    `json:"column"`
	RowSpan     int    `json:"row_span"`
	ColumnSpan  int    `json:"column_span"`
	Color       string `json:"color"`
}

// Overlaps reports whether c and o share a cell.
func (c *Compartment) Overlaps(o *Compartment) bool {
	return c.Row < o.Row+o.RowSpan && o.Row < c.Row+c.RowSpan &&
		c.Column < o.Column+o.ColumnSpan && o.Column < c.Column+c.ColumnSpan
}

type PrimaryAntibody struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Target        string    `json:"target"`
	HostSpecies   string    `json:"host_species"`
	Isotype       string    `json:"isotype"`
	Clonality     string    `json:"clonality"`
	Clone         string    `json:"clone"`
	Conjugate     string    `json:"conjugate"`
	Supplier      string    `json:"supplier"`
	CatalogNumber string    `json:"catalog_number"`
	LotNumber     string    `json:"lot_number"`
	Dilution      string    `json:"dilution"`
	Zone          string    `json:"temperature_zone"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SecondaryAntibody binds primaries raised in TargetSpecies. An empty
// TargetIsotype, or "H+L", binds every isotype.
type SecondaryAntibody struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	HostSpecies   string    `json:"host_species"`
	TargetSpecies string    `json:"target_species"`
	TargetIsotype string    `json:"target_isotype"`
	Conjugate     string    `json:"conjugate"`
	Supplier      string    `json:"supplier"`
	CatalogNumber string    `json:"catalog_number"`
	LotNumber     string    `json:"lot_number"`
	Dilution      string    `json:"dilution"`
	Zone          string    `json:"temperature_zone"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
