package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vbonduro/labinv/internal/domain"
)

const (
	primaryColumns = `id, name, target, host_species, isotype, clonality, clone, conjugate, supplier,
	catalog_number, lot_number, dilution, zone_key, notes, created_at, updated_at`
	secondaryColumns = `id, name, host_species, target_species, target_isotype, conjugate, supplier,
	catalog_number, lot_number, dilution, zone_key, notes, created_at, updated_at`
)

// AntibodyStore keeps the primary and secondary antibody catalogues.
type AntibodyStore struct {
	db *sql.DB
}

func NewAntibodyStore(db *sql.DB) *AntibodyStore {
	return &AntibodyStore{db: db}
}

func (s *AntibodyStore) CreatePrimary(ctx context.Context, a *domain.PrimaryAntibody) (*domain.PrimaryAntibody, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO primary_antibodies (name, target, host_species, isotype, clonality, clone, conjugate, supplier,
			catalog_number, lot_number, dilution, zone_key, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.Name, a.Target, a.HostSpecies, a.Isotype, a.Clonality, a.Clone, a.Conjugate, a.Supplier,
		a.CatalogNumber, a.LotNumber, a.Dilution, nullString(a.Zone), a.Notes)
	if err != nil {
		return nil, fmt.Errorf("failed to create primary antibody: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetPrimary(ctx, id)
}

func (s *AntibodyStore) GetPrimary(ctx context.Context, id int64) (*domain.PrimaryAntibody, error) {
	a, err := scanPrimary(s.db.QueryRowContext(ctx, `SELECT `+primaryColumns+` FROM primary_antibodies WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get primary antibody: %w", err)
	}
	return a, nil
}

func (s *AntibodyStore) ListPrimaries(ctx context.Context) ([]*domain.PrimaryAntibody, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+primaryColumns+` FROM primary_antibodies ORDER BY name COLLATE NOCASE ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list primary antibodies: %w", err)
	}
	defer closeRows(rows)

	antibodies := make([]*domain.PrimaryAntibody, 0)
	for rows.Next() {
		a, err := scanPrimary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan primary antibody: %w", err)
		}
		antibodies = append(antibodies, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating primary antibodies: %w", err)
	}
	return antibodies, nil
}

func (s *AntibodyStore) UpdatePrimary(ctx context.Context, a *domain.PrimaryAntibody) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE primary_antibodies SET name = ?, target = ?, host_species = ?, isotype = ?, clonality = ?,
			clone = ?, conjugate = ?, supplier = ?, catalog_number = ?, lot_number = ?, dilution = ?,
			zone_key = ?, notes = ?, updated_at = datetime('now')
		WHERE id = ?
	`, a.Name, a.Target, a.HostSpecies, a.Isotype, a.Clonality, a.Clone, a.Conjugate, a.Supplier,
		a.CatalogNumber, a.LotNumber, a.Dilution, nullString(a.Zone), a.Notes, a.ID)
	if err != nil {
		return fmt.Errorf("failed to update primary antibody: %w", err)
	}
	return expectOne(result, "primary antibody", a.ID)
}

func (s *AntibodyStore) DeletePrimary(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM primary_antibodies WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete primary antibody: %w", err)
	}
	return expectOne(result, "primary antibody", id)
}

func (s *AntibodyStore) CreateSecondary(ctx context.Context, a *domain.SecondaryAntibody) (*domain.SecondaryAntibody, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO secondary_antibodies (name, host_species, target_species, target_isotype, conjugate, supplier,
			catalog_number, lot_number, dilution, zone_key, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.Name, a.HostSpecies, a.TargetSpecies, a.TargetIsotype, a.Conjugate, a.Supplier,
		a.CatalogNumber, a.LotNumber, a.Dilution, nullString(a.Zone), a.Notes)
	if err != nil {
		return nil, fmt.Errorf("failed to create secondary antibody: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetSecondary(ctx, id)
}

func (s *AntibodyStore) GetSecondary(ctx context.Context, id int64) (*domain.SecondaryAntibody, error) {
	a, err := scanSecondary(s.db.QueryRowContext(ctx, `SELECT `+secondaryColumns+` FROM secondary_antibodies WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get secondary antibody: %w", err)
	}
	return a, nil
}

func (s *AntibodyStore) ListSecondaries(ctx context.Context) ([]*domain.SecondaryAntibody, error) {
	return s.querySecondaries(ctx, `
		SELECT `+secondaryColumns+` FROM secondary_antibodies ORDER BY name COLLATE NOCASE ASC, id ASC
	`)
}

// ListSecondariesForSpecies returns the secondaries raised against species,
// compared without case or surrounding whitespace.
func (s *AntibodyStore) ListSecondariesForSpecies(ctx context.Context, species string) ([]*domain.SecondaryAntibody, error) {
	return s.querySecondaries(ctx, `
		SELECT `+secondaryColumns+` FROM secondary_antibodies
		WHERE LOWER(TRIM(target_species)) = LOWER(TRIM(?))
		ORDER BY name COLLATE NOCASE ASC, id ASC
	`, species)
}

func (s *AntibodyStore) UpdateSecondary(ctx context.Context, a *domain.SecondaryAntibody) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE secondary_antibodies SET name = ?, host_species = ?, target_species = ?, target_isotype = ?,
			conjugate = ?, supplier = ?, catalog_number = ?, lot_number = ?, dilution = ?, zone_key = ?,
			notes = ?, updated_at = datetime('now')
		WHERE id = ?
	`, a.Name, a.HostSpecies, a.TargetSpecies, a.TargetIsotype, a.Conjugate, a.Supplier,
		a.CatalogNumber, a.LotNumber, a.Dilution, nullString(a.Zone), a.Notes, a.ID)
	if err != nil {
		return fmt.Errorf("failed to update secondary antibody: %w", err)
	}
	return expectOne(result, "secondary antibody", a.ID)
}

func (s *AntibodyStore) DeleteSecondary(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM secondary_antibodies WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete secondary antibody: %w", err)
	}
	return expectOne(result, "secondary antibody", id)
}

func (s *AntibodyStore) querySecondaries(ctx context.Context, query string, args ...any) ([]*domain.SecondaryAntibody, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list secondary antibodies: %w", err)
	}
	defer closeRows(rows)

	antibodies := make([]*domain.SecondaryAntibody, 0)
	for rows.Next() {
		a, err := scanSecondary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan secondary antibody: %w", err)
		}
		antibodies = append(antibodies, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating secondary antibodies: %w", err)
	}
	return antibodies, nil
}

func scanPrimary(row rowScanner) (*domain.PrimaryAntibody, error) {
	a := &domain.PrimaryAntibody{}
	var zone sql.NullString
	err := row.Scan(&a.ID, &a.Name, &a.Target, &a.HostSpecies, &a.Isotype, &a.Clonality, &a.Clone, &a.Conjugate,
		&a.Supplier, &a.CatalogNumber, &a.LotNumber, &a.Dilution, &zone, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Zone = zone.String
	return a, nil
}

func scanSecondary(row rowScanner) (*domain.SecondaryAntibody, error) {
	a := &domain.SecondaryAntibody{}
	var zone sql.NullString
	err := row.Scan(&a.ID, &a.Name, &a.HostSpecies, &a.TargetSpecies, &a.TargetIsotype, &a.Conjugate, &a.Supplier,
		&a.CatalogNumber, &a.LotNumber, &a.Dilution, &zone, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Zone = zone.String
	return a, nil
}
