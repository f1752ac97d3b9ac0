package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vbonduro/labinv/internal/apperrors"
	"github.com/vbonduro/labinv/internal/domain"
)

const (
	schematicColumns   = `id, zone_key, section, fridge_id, name, photo_key, mime_type, created_at, updated_at`
	compartmentColumns = `id, schematic_id, name, row_index, column_index, row_span, column_span, color`
)

type SchematicStore struct {
	db *sql.DB
}

func NewSchematicStore(db *sql.DB) *SchematicStore {
	return &SchematicStore{db: db}
}

func (s *SchematicStore) Create(ctx context.Context, sc *domain.Schematic) (*domain.Schematic, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO schematics (zone_key, section, fridge_id, name, photo_key, mime_type)
		VALUES (?, ?, ?, ?, ?, ?)
	`, sc.Zone, string(sc.Section), fridgeArg(sc.FridgeID), sc.Name, sc.PhotoKey, sc.MimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to create schematic: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *SchematicStore) GetByID(ctx context.Context, id int64) (*domain.Schematic, error) {
	return s.get(ctx, `SELECT `+schematicColumns+` FROM schematics WHERE id = ?`, id)
}

// GetByPlacement returns the schematic of one zone section, either the
// zone-wide one (fridgeID nil) or the one drawn for a single fridge.
func (s *SchematicStore) GetByPlacement(ctx context.Context, zone string, section domain.Section, fridgeID *int64) (*domain.Schematic, error) {
	var fridge int64
	if fridgeID != nil {
		fridge = *fridgeID
	}
	return s.get(ctx, `
		SELECT `+schematicColumns+` FROM schematics
		WHERE zone_key = ? AND section = ? AND COALESCE(fridge_id, 0) = ?
	`, zone, string(section), fridge)
}

func (s *SchematicStore) List(ctx context.Context) ([]*domain.Schematic, error) {
	return s.query(ctx, `
		SELECT `+schematicColumns+` FROM schematics
		ORDER BY zone_key ASC, COALESCE(fridge_id, 0) ASC, section ASC
	`)
}

func (s *SchematicStore) ListByFridge(ctx context.Context, fridgeID int64) ([]*domain.Schematic, error) {
	return s.query(ctx, `
		SELECT `+schematicColumns+` FROM schematics WHERE fridge_id = ? ORDER BY section ASC
	`, fridgeID)
}

// CountBySection counts the schematics drawn for one section of zone.
func (s *SchematicStore) CountBySection(ctx context.Context, zone string, section domain.Section) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM schematics WHERE zone_key = ? AND section = ?
	`, zone, string(section)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count schematics: %w", err)
	}
	return n, nil
}

// ReplacePhoto points the schematic at a new reference photo. Compartments
// are kept.
func (s *SchematicStore) ReplacePhoto(ctx context.Context, id int64, photoKey, mimeType string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE schematics SET photo_key = ?, mime_type = ?, updated_at = datetime('now') WHERE id = ?
	`, photoKey, mimeType, id)
	if err != nil {
		return fmt.Errorf("failed to replace schematic photo: %w", err)
	}
	return expectOne(result, "schematic", id)
}

// Delete removes the schematic and its compartments, first unassigning every
// record placed in one of them. It returns the number of records unassigned.
func (s *SchematicStore) Delete(ctx context.Context, id int64) (int, error) {
	var unassigned int64
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE records SET compartment_id = NULL, updated_at = datetime('now')
			WHERE compartment_id IN (SELECT id FROM compartments WHERE schematic_id = ?)
		`, id)
		if err != nil {
			return fmt.Errorf("failed to unassign schematic records: %w", err)
		}
		if unassigned, err = result.RowsAffected(); err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM compartments WHERE schematic_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete schematic compartments: %w", err)
		}

		result, err = tx.ExecContext(ctx, `DELETE FROM schematics WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete schematic: %w", err)
		}
		return expectOne(result, "schematic", id)
	})
	if err != nil {
		return 0, err
	}
	return int(unassigned), nil
}

func (s *SchematicStore) GetCompartment(ctx context.Context, id int64) (*domain.Compartment, error) {
	c, err := scanCompartment(s.db.QueryRowContext(ctx, `
		SELECT `+compartmentColumns+` FROM compartments WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get compartment: %w", err)
	}
	return c, nil
}

func (s *SchematicStore) ListCompartments(ctx context.Context, schematicID int64) ([]*domain.Compartment, error) {
	return listCompartments(ctx, s.db, schematicID)
}

// SaveCompartments replaces the compartments of a schematic with comps in one
// transaction. Compartments carrying an id are updated in place, the rest are
// inserted and get their new id, and compartments missing from comps are
// deleted once their records are unassigned. It returns the number of
// records unassigned.
func (s *SchematicStore) SaveCompartments(ctx context.Context, schematicID int64, comps []*domain.Compartment) (int, error) {
	var unassigned int64
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		existing, err := listCompartments(ctx, tx, schematicID)
		if err != nil {
			return err
		}

		keep := make(map[int64]bool, len(comps))
		for _, c := range comps {
			if c.ID != 0 {
				keep[c.ID] = true
			}
		}
		known := make(map[int64]bool, len(existing))
		for _, c := range existing {
			known[c.ID] = true
			if keep[c.ID] {
				continue
			}
			result, err := tx.ExecContext(ctx, `
				UPDATE records SET compartment_id = NULL, updated_at = datetime('now') WHERE compartment_id = ?
			`, c.ID)
			if err != nil {
				return fmt.Errorf("failed to unassign compartment records: %w", err)
			}
			n, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			}
			unassigned += n
			if _, err := tx.ExecContext(ctx, `DELETE FROM compartments WHERE id = ?`, c.ID); err != nil {
				return fmt.Errorf("failed to delete compartment: %w", err)
			}
		}

		for _, c := range comps {
			c.SchematicID = schematicID
			if c.ID != 0 {
				if !known[c.ID] {
					return apperrors.NotFound("compartment", c.ID)
				}
				_, err := tx.ExecContext(ctx, `
					UPDATE compartments SET name = ?, row_index = ?, column_index = ?, row_span = ?,
						column_span = ?, color = ?
					WHERE id = ?
				`, c.Name, c.Row, c.Column, c.RowSpan, c.ColumnSpan, c.Color, c.ID)
				if err != nil {
					return fmt.Errorf("failed to update compartment: %w", err)
				}
				continue
			}
			result, err := tx.ExecContext(ctx, `
				INSERT INTO compartments (schematic_id, name, row_index, column_index, row_span, column_span, color)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, schematicID, c.Name, c.Row, c.Column, c.RowSpan, c.ColumnSpan, c.Color)
			if err != nil {
				return fmt.Errorf("failed to create compartment: %w", err)
			}
			if c.ID, err = result.LastInsertId(); err != nil {
				return fmt.Errorf("failed to get last insert id: %w", err)
			}
		}

		_, err = tx.ExecContext(ctx, `UPDATE schematics SET updated_at = datetime('now') WHERE id = ?`, schematicID)
		if err != nil {
			return fmt.Errorf("failed to touch schematic: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(unassigned), nil
}

func listCompartments(ctx context.Context, q dbtx, schematicID int64) ([]*domain.Compartment, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+compartmentColumns+` FROM compartments WHERE schematic_id = ?
		ORDER BY row_index ASC, column_index ASC, id ASC
	`, schematicID)
	if err != nil {
		return nil, fmt.Errorf("failed to list compartments: %w", err)
	}
	defer closeRows(rows)

	comps := make([]*domain.Compartment, 0)
	for rows.Next() {
		c, err := scanCompartment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan compartment: %w", err)
		}
		comps = append(comps, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating compartments: %w", err)
	}
	return comps, nil
}

func (s *SchematicStore) get(ctx context.Context, query string, args ...any) (*domain.Schematic, error) {
	sc, err := scanSchematic(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schematic: %w", err)
	}
	return sc, nil
}

func (s *SchematicStore) query(ctx context.Context, query string, args ...any) ([]*domain.Schematic, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list schematics: %w", err)
	}
	defer closeRows(rows)

	schematics := make([]*domain.Schematic, 0)
	for rows.Next() {
		sc, err := scanSchematic(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schematic: %w", err)
		}
		schematics = append(schematics, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schematics: %w", err)
	}
	return schematics, nil
}

func fridgeArg(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func scanSchematic(row rowScanner) (*domain.Schematic, error) {
	sc := &domain.Schematic{}
	var (
		section string
		fridge  sql.NullInt64
	)
	err := row.Scan(&sc.ID, &sc.Zone, &section, &fridge, &sc.Name, &sc.PhotoKey, &sc.MimeType,
		&sc.CreatedAt, &sc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	sc.Section = domain.Section(section)
	if fridge.Valid {
		id := fridge.Int64
		sc.FridgeID = &id
	}
	return sc, nil
}

func scanCompartment(row rowScanner) (*domain.Compartment, error) {
	c := &domain.Compartment{}
	err := row.Scan(&c.ID, &c.SchematicID, &c.Name, &c.Row, &c.Column, &c.RowSpan, &c.ColumnSpan, &c.Color)
	if err != nil {
		return nil, err
	}
	return c, nil
}
