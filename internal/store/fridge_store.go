package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vbonduro/labinv/internal/domain"
)

const fridgeColumns = `id, name, zone_key, location, model, notes, created_at, updated_at`

type FridgeStore struct {
	db *sql.DB
}

func NewFridgeStore(db *sql.DB) *FridgeStore {
	return &FridgeStore{db: db}
}

func (s *FridgeStore) Create(ctx context.Context, f *domain.Fridge) (*domain.Fridge, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO fridges (name, zone_key, location, model, notes) VALUES (?, ?, ?, ?, ?)
	`, f.Name, f.Zone, f.Location, f.Model, f.Notes)
	if err != nil {
		return nil, fmt.Errorf("failed to create fridge: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *FridgeStore) GetByID(ctx context.Context, id int64) (*domain.Fridge, error) {
	f, err := scanFridge(s.db.QueryRowContext(ctx, `SELECT `+fridgeColumns+` FROM fridges WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fridge: %w", err)
	}
	return f, nil
}

func (s *FridgeStore) List(ctx context.Context) ([]*domain.Fridge, error) {
	return s.query(ctx, `SELECT `+fridgeColumns+` FROM fridges ORDER BY name COLLATE NOCASE ASC, id ASC`)
}

// ListByZone returns the fridges held at one temperature zone.
func (s *FridgeStore) ListByZone(ctx context.Context, zone string) ([]*domain.Fridge, error) {
	return s.query(ctx, `
		SELECT `+fridgeColumns+` FROM fridges WHERE zone_key = ? ORDER BY name COLLATE NOCASE ASC, id ASC
	`, zone)
}

func (s *FridgeStore) Update(ctx context.Context, f *domain.Fridge) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE fridges SET name = ?, zone_key = ?, location = ?, model = ?, notes = ?, updated_at = datetime('now')
		WHERE id = ?
	`, f.Name, f.Zone, f.Location, f.Model, f.Notes, f.ID)
	if err != nil {
		return fmt.Errorf("failed to update fridge: %w", err)
	}
	return expectOne(result, "fridge", f.ID)
}

// Delete removes the fridge with its schematics and their compartments,
// first unassigning every record placed in one of those compartments. It
// returns the number of records unassigned.
func (s *FridgeStore) Delete(ctx context.Context, id int64) (int, error) {
	var unassigned int64
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE records SET compartment_id = NULL, updated_at = datetime('now')
			WHERE compartment_id IN (
				SELECT c.id FROM compartments c JOIN schematics s ON s.id = c.schematic_id
				WHERE s.fridge_id = ?
			)
		`, id)
		if err != nil {
			return fmt.Errorf("failed to unassign fridge records: %w", err)
		}
		if unassigned, err = result.RowsAffected(); err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		result, err = tx.ExecContext(ctx, `DELETE FROM fridges WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete fridge: %w", err)
		}
		return expectOne(result, "fridge", id)
	})
	if err != nil {
		return 0, err
	}
	return int(unassigned), nil
}

func (s *FridgeStore) query(ctx context.Context, query string, args ...any) ([]*domain.Fridge, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list fridges: %w", err)
	}
	defer closeRows(rows)

	fridges := make([]*domain.Fridge, 0)
	for rows.Next() {
		f, err := scanFridge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fridge: %w", err)
		}
		fridges = append(fridges, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fridges: %w", err)
	}
	return fridges, nil
}

func scanFridge(row rowScanner) (*domain.Fridge, error) {
	f := &domain.Fridge{}
	err := row.Scan(&f.ID, &f.Name, &f.Zone, &f.Location, &f.Model, &f.Notes, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return f, nil
}
