// Package location validates legacy row/column addresses against a zone's
// configured grid.
package location

import (
	"fmt"
	"strings"

	"github.com/vbonduro/labinv/internal/apperrors"
	"github.com/vbonduro/labinv/internal/domain"
)

// Grid dimensions allowed for any zone section.
const (
	MinDimension = 1
	MaxDimension = 10
)

// GridKey is a normalised grid address within a specific zone.
type GridKey struct {
	Zone    string
	Section domain.Section
	Row     int
	Column  int
}

func (k GridKey) String() string {
	return fmt.Sprintf("%s/%s/%d/%d", k.Zone, k.Section, k.Row, k.Column)
}

// Position drops the zone from k.
func (k GridKey) Position() domain.GridPosition {
	return domain.GridPosition{Section: k.Section, Row: k.Row, Column: k.Column}
}

// ParseSection accepts "body" or "door" in any case.
func ParseSection(s string) (domain.Section, error) {
	switch domain.Section(strings.ToLower(strings.TrimSpace(s))) {
	case domain.SectionBody:
		return domain.SectionBody, nil
	case domain.SectionDoor:
		return domain.SectionDoor, nil
	}
	return "", apperrors.Invalid("section", "must be %q or %q, got %q", domain.SectionBody, domain.SectionDoor, s)
}

// CheckSection reports whether zone can hold locations in section at all.
func CheckSection(zone *domain.Zone, section domain.Section) error {
	if section == domain.SectionDoor {
		if !zone.HasDoor || zone.Key == domain.UltraColdZone {
			return apperrors.Invalid("section", "zone %s has no door", zone.Key)
		}
		return nil
	}
	if section != domain.SectionBody {
		return apperrors.Invalid("section", "must be %q or %q, got %q", domain.SectionBody, domain.SectionDoor, section)
	}
	return nil
}

// ValidateGrid checks (section, row, column) against zone's current
// dimensions and returns the normalised key.
func ValidateGrid(zone *domain.Zone, section domain.Section, row, column int) (GridKey, error) {
	if err := CheckSection(zone, section); err != nil {
		return GridKey{}, err
	}
	rows, columns, _ := zone.Dimensions(section)
	if row < 0 || row >= rows {
		return GridKey{}, apperrors.Invalid("row", "%d outside 0..%d for %s %s", row, rows-1, zone.Key, section)
	}
	if column < 0 || column >= columns {
		return GridKey{}, apperrors.Invalid("column", "%d outside 0..%d for %s %s", column, columns-1, zone.Key, section)
	}
	return GridKey{Zone: zone.Key, Section: section, Row: row, Column: column}, nil
}

// InBounds reports whether the cell lies within the zone's current grid.
// Records written under larger dimensions may fall outside it.
func InBounds(zone *domain.Zone, section domain.Section, row, column int) bool {
	_, err := ValidateGrid(zone, section, row, column)
	return err == nil
}

// ValidateZoneConfig checks a zone's dimensions before it is stored. The
// -80C zone never has a door, whatever the caller asks for.
func ValidateZoneConfig(zone *domain.Zone) error {
	key := strings.TrimSpace(zone.Key)
	if key == "" || strings.ContainsAny(key, " \t\n/") {
		return apperrors.Invalid("key", "must be non-empty and contain no whitespace or slashes")
	}
	if len(key) > 32 {
		return apperrors.Invalid("key", "must be at most 32 characters")
	}
	if key == domain.UltraColdZone && zone.HasDoor {
		return apperrors.Invalid("has_door", "zone %s cannot have a door", key)
	}
	if err := checkDimension("body_rows", zone.BodyRows); err != nil {
		return err
	}
	if err := checkDimension("body_columns", zone.BodyColumns); err != nil {
		return err
	}
	if !zone.HasDoor {
		if zone.DoorRows != 0 || zone.DoorColumns != 0 {
			return apperrors.Invalid("door_rows", "must be 0 when the zone has no door")
		}
		return nil
	}
	if err := checkDimension("door_rows", zone.DoorRows); err != nil {
		return err
	}
	return checkDimension("door_columns", zone.DoorColumns)
}

func checkDimension(field string, n int) error {
	if n < MinDimension || n > MaxDimension {
		return apperrors.Invalid(field, "must be between %d and %d, got %d", MinDimension, MaxDimension, n)
	}
	return nil
}
