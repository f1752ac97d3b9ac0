package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vbonduro/labinv/internal/domain"
)

const regionColumns = `id, layout_id, name, x, y, width, height, created_at`

type RegionStore struct {
	db *sql.DB
}

func NewRegionStore(db *sql.DB) *RegionStore {
	return &RegionStore{db: db}
}

func (s *RegionStore) Create(ctx context.Context, r *domain.Region) (*domain.Region, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO regions (layout_id, name, x, y, width, height) VALUES (?, ?, ?, ?, ?, ?)
	`, r.LayoutID, r.Name, r.X, r.Y, r.Width, r.Height)
	if err != nil {
		return nil, fmt.Errorf("failed to create region: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *RegionStore) GetByID(ctx context.Context, id int64) (*domain.Region, error) {
	r, err := scanRegion(s.db.QueryRowContext(ctx, `SELECT `+regionColumns+` FROM regions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get region: %w", err)
	}
	return r, nil
}

func (s *RegionStore) ListByLayout(ctx context.Context, layoutID int64) ([]*domain.Region, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+regionColumns+` FROM regions WHERE layout_id = ? ORDER BY id ASC
	`, layoutID)
	if err != nil {
		return nil, fmt.Errorf("failed to list regions: %w", err)
	}
	defer closeRows(rows)

	regions := make([]*domain.Region, 0)
	for rows.Next() {
		r, err := scanRegion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan region: %w", err)
		}
		regions = append(regions, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating regions: %w", err)
	}
	return regions, nil
}

func (s *RegionStore) Update(ctx context.Context, r *domain.Region) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE regions SET name = ?, x = ?, y = ?, width = ?, height = ? WHERE id = ?
	`, r.Name, r.X, r.Y, r.Width, r.Height, r.ID)
	if err != nil {
		return fmt.Errorf("failed to update region: %w", err)
	}
	return expectOne(result, "region", r.ID)
}

// Delete unassigns every record in the region and then removes it, in one
// transaction. It returns the number of records unassigned.
func (s *RegionStore) Delete(ctx context.Context, id int64) (int, error) {
	var unassigned int64
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE records SET region_id = NULL, updated_at = datetime('now') WHERE region_id = ?
		`, id)
		if err != nil {
			return fmt.Errorf("failed to unassign region records: %w", err)
		}
		if unassigned, err = result.RowsAffected(); err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		result, err = tx.ExecContext(ctx, `DELETE FROM regions WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete region: %w", err)
		}
		return expectOne(result, "region", id)
	})
	if err != nil {
		return 0, err
	}
	return int(unassigned), nil
}

func scanRegion(row rowScanner) (*domain.Region, error) {
	r := &domain.Region{}
	if err := row.Scan(&r.ID, &r.LayoutID, &r.Name, &r.X, &r.Y, &r.Width, &r.Height, &r.CreatedAt); err != nil {
		return nil, err
	}
	return r, nil
}
