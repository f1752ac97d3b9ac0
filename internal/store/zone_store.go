package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vbonduro/labinv/internal/domain"
)

const zoneColumns = `key, label, has_door, body_rows, body_columns, door_rows, door_columns, sort_order`

type ZoneStore struct {
	db *sql.DB
}

func NewZoneStore(db *sql.DB) *ZoneStore {
	return &ZoneStore{db: db}
}

func (s *ZoneStore) Create(ctx context.Context, z *domain.Zone) (*domain.Zone, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO zones (`+zoneColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, z.Key, z.Label, z.HasDoor, z.BodyRows, z.BodyColumns, z.DoorRows, z.DoorColumns, z.SortOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to create zone: %w", err)
	}
	return s.GetByKey(ctx, z.Key)
}

func (s *ZoneStore) GetByKey(ctx context.Context, key string) (*domain.Zone, error) {
	z, err := scanZone(s.db.QueryRowContext(ctx, `SELECT `+zoneColumns+` FROM zones WHERE key = ?`, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get zone: %w", err)
	}
	return z, nil
}

func (s *ZoneStore) List(ctx context.Context) ([]*domain.Zone, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+zoneColumns+` FROM zones ORDER BY sort_order ASC, key ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list zones: %w", err)
	}
	defer closeRows(rows)

	var zones []*domain.Zone
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan zone: %w", err)
		}
		zones = append(zones, z)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating zones: %w", err)
	}
	return zones, nil
}

// Update rewrites the zone's label and dimensions. Records are not touched,
// so a shrink may leave some of them outside the new grid.
func (s *ZoneStore) Update(ctx context.Context, z *domain.Zone) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE zones SET label = ?, has_door = ?, body_rows = ?, body_columns = ?, door_rows = ?,
			door_columns = ?, sort_order = ?
		WHERE key = ?
	`, z.Label, z.HasDoor, z.BodyRows, z.BodyColumns, z.DoorRows, z.DoorColumns, z.SortOrder, z.Key)
	if err != nil {
		return fmt.Errorf("failed to update zone: %w", err)
	}
	return expectOne(result, "zone", z.Key)
}

func scanZone(row rowScanner) (*domain.Zone, error) {
	z := &domain.Zone{}
	err := row.Scan(&z.Key, &z.Label, &z.HasDoor, &z.BodyRows, &z.BodyColumns, &z.DoorRows, &z.DoorColumns, &z.SortOrder)
	if err != nil {
		return nil, err
	}
	return z, nil
}
