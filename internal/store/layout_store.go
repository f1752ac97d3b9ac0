package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vbonduro/labinv/internal/domain"
)

const layoutColumns = `id, zone_key, section, photo_key, mime_type, photo_width, photo_height, created_at, updated_at`

type LayoutStore struct {
	db *sql.DB
}

func NewLayoutStore(db *sql.DB) *LayoutStore {
	return &LayoutStore{db: db}
}

func (s *LayoutStore) Create(ctx context.Context, l *domain.Layout) (*domain.Layout, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO layouts (zone_key, section, photo_key, mime_type, photo_width, photo_height)
		VALUES (?, ?, ?, ?, ?, ?)
	`, l.Zone, string(l.Section), l.PhotoKey, l.MimeType, l.PhotoWidth, l.PhotoHeight)
	if err != nil {
		return nil, fmt.Errorf("failed to create layout: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *LayoutStore) GetByID(ctx context.Context, id int64) (*domain.Layout, error) {
	return s.get(ctx, `SELECT `+layoutColumns+` FROM layouts WHERE id = ?`, id)
}

func (s *LayoutStore) GetByZoneSection(ctx context.Context, zone string, section domain.Section) (*domain.Layout, error) {
	return s.get(ctx, `SELECT `+layoutColumns+` FROM layouts WHERE zone_key = ? AND section = ?`, zone, string(section))
}

func (s *LayoutStore) List(ctx context.Context) ([]*domain.Layout, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+layoutColumns+` FROM layouts ORDER BY zone_key ASC, section ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list layouts: %w", err)
	}
	defer closeRows(rows)

	var layouts []*domain.Layout
	for rows.Next() {
		l, err := scanLayout(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan layout: %w", err)
		}
		layouts = append(layouts, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating layouts: %w", err)
	}
	return layouts, nil
}

// ReplacePhoto points the layout at a new photo. The id and regions are kept.
func (s *LayoutStore) ReplacePhoto(ctx context.Context, id int64, photoKey, mimeType string, width, height int) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE layouts SET photo_key = ?, mime_type = ?, photo_width = ?, photo_height = ?,
			updated_at = datetime('now')
		WHERE id = ?
	`, photoKey, mimeType, width, height, id)
	if err != nil {
		return fmt.Errorf("failed to replace layout photo: %w", err)
	}
	return expectOne(result, "layout", id)
}

// Delete removes the layout and its regions in one transaction, first
// unassigning every record that points at one of those regions. It returns
// the number of records unassigned.
func (s *LayoutStore) Delete(ctx context.Context, id int64) (int, error) {
	var unassigned int64
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE records SET region_id = NULL, updated_at = datetime('now')
			WHERE region_id IN (SELECT id FROM regions WHERE layout_id = ?)
		`, id)
		if err != nil {
			return fmt.Errorf("failed to unassign layout records: %w", err)
		}
		if unassigned, err = result.RowsAffected(); err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM regions WHERE layout_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete layout regions: %w", err)
		}

		result, err = tx.ExecContext(ctx, `DELETE FROM layouts WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete layout: %w", err)
		}
		return expectOne(result, "layout", id)
	})
	if err != nil {
		return 0, err
	}
	return int(unassigned), nil
}

func (s *LayoutStore) get(ctx context.Context, query string, args ...any) (*domain.Layout, error) {
	l, err := scanLayout(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get layout: %w", err)
	}
	return l, nil
}

func scanLayout(row rowScanner) (*domain.Layout, error) {
	l := &domain.Layout{}
	var section string
	err := row.Scan(&l.ID, &l.Zone, &section, &l.PhotoKey, &l.MimeType, &l.PhotoWidth, &l.PhotoHeight,
		&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	l.Section = domain.Section(section)
	return l, nil
}
