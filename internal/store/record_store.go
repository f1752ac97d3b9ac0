package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vbonduro/labinv/internal/apperrors"
	"github.com/vbonduro/labinv/internal/domain"
)

const recordColumns = `id, name, concentration, unit, zone_key, section, row_index, column_index, region_id,
	compartment_id, supplier, lot_number, product_number, preparation_date, expiration_date, sterility, light_sensitive,
	solvents, solubility, aliquot_volume, notes, created_at, updated_at`

// RecordFilter narrows List. Empty fields match everything.
type RecordFilter struct {
	Search string
	Zone   string
}

// CellCount is the number of grid-addressed records in one cell.
type CellCount struct {
	Section domain.Section
	Row     int
	Column  int
	Count   int
}

// LocationCounts splits records by addressing scheme.
type LocationCounts struct {
	WithRegion      int
	WithCompartment int
	LegacyOnly      int
	Unassigned      int
}

type RecordStore struct {
	db   dbtx
	conn *sql.DB
}

func NewRecordStore(db *sql.DB) *RecordStore {
	return &RecordStore{db: db, conn: db}
}

// InTx runs fn with a RecordStore bound to a single transaction.
func (s *RecordStore) InTx(ctx context.Context, fn func(tx *RecordStore) error) error {
	if s.conn == nil {
		return fn(s)
	}
	return withTx(ctx, s.conn, func(tx *sql.Tx) error {
		return fn(&RecordStore{db: tx})
	})
}

func (s *RecordStore) Create(ctx context.Context, rec *domain.Record) (*domain.Record, error) {
	loc := locationColumns(rec.Location)
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO records (name, concentration, unit, zone_key, section, row_index, column_index, region_id,
			compartment_id, supplier, lot_number, product_number, preparation_date, expiration_date, sterility,
			light_sensitive, solvents, solubility, aliquot_volume, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.Name, rec.Concentration, rec.Unit, nullString(rec.Zone), loc.section, loc.row, loc.column, loc.region,
		loc.compartment, rec.Supplier, rec.LotNumber, rec.ProductNumber, rec.PreparationDate, rec.ExpirationDate, rec.Sterility,
		rec.LightSensitive, rec.Solvents, rec.Solubility, rec.AliquotVolume, rec.Notes)
	if err != nil {
		return nil, fmt.Errorf("failed to create record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *RecordStore) GetByID(ctx context.Context, id int64) (*domain.Record, error) {
	rec, err := scanRecord(s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM records WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return rec, nil
}

// List returns matching records, newest first. Search matches name,
// supplier and notes case-insensitively.
func (s *RecordStore) List(ctx context.Context, filter RecordFilter) ([]*domain.Record, error) {
	var (
		where []string
		args  []any
	)
	if q := strings.TrimSpace(filter.Search); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		where = append(where, "(LOWER(name) LIKE ? OR LOWER(supplier) LIKE ? OR LOWER(notes) LIKE ?)")
		args = append(args, pattern, pattern, pattern)
	}
	if filter.Zone != "" {
		where = append(where, "zone_key = ?")
		args = append(args, filter.Zone)
	}
	query := `SELECT ` + recordColumns + ` FROM records`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC"

	return s.query(ctx, "list records", query, args...)
}

func (s *RecordStore) ExistsByName(ctx context.Context, name string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records WHERE name = ?`, name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to look up record name: %w", err)
	}
	return n > 0, nil
}

// Update replaces every mutable field of rec.
func (s *RecordStore) Update(ctx context.Context, rec *domain.Record) error {
	loc := locationColumns(rec.Location)
	result, err := s.db.ExecContext(ctx, `
		UPDATE records SET name = ?, concentration = ?, unit = ?, zone_key = ?, section = ?, row_index = ?,
			column_index = ?, region_id = ?, compartment_id = ?, supplier = ?, lot_number = ?, product_number = ?,
			preparation_date = ?, expiration_date = ?, sterility = ?, light_sensitive = ?, solvents = ?,
			solubility = ?, aliquot_volume = ?, notes = ?, updated_at = datetime('now')
		WHERE id = ?
	`, rec.Name, rec.Concentration, rec.Unit, nullString(rec.Zone), loc.section, loc.row, loc.column, loc.region,
		loc.compartment, rec.Supplier, rec.LotNumber, rec.ProductNumber, rec.PreparationDate, rec.ExpirationDate,
		rec.Sterility, rec.LightSensitive, rec.Solvents, rec.Solubility, rec.AliquotVolume, rec.Notes, rec.ID)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}
	return expectOne(result, "record", rec.ID)
}

func (s *RecordStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return expectOne(result, "record", id)
}

// ListByGridCell returns grid-addressed records in one cell.
func (s *RecordStore) ListByGridCell(ctx context.Context, zone string, section domain.Section, row, column int) ([]*domain.Record, error) {
	return s.query(ctx, "list records by cell", `
		SELECT `+recordColumns+` FROM records
		WHERE zone_key = ? AND section = ? AND row_index = ? AND column_index = ?
			AND region_id IS NULL AND compartment_id IS NULL
		ORDER BY name COLLATE NOCASE ASC
	`, zone, string(section), row, column)
}

func (s *RecordStore) ListByRegion(ctx context.Context, regionID int64) ([]*domain.Record, error) {
	return s.query(ctx, "list records by region", `
		SELECT `+recordColumns+` FROM records WHERE region_id = ? ORDER BY name COLLATE NOCASE ASC
	`, regionID)
}

func (s *RecordStore) ListByCompartment(ctx context.Context, compartmentID int64) ([]*domain.Record, error) {
	return s.query(ctx, "list records by compartment", `
		SELECT `+recordColumns+` FROM records
		WHERE compartment_id = ? AND region_id IS NULL
		ORDER BY name COLLATE NOCASE ASC
	`, compartmentID)
}

// ListLegacy returns records of zone that have a full grid address and no
// region or compartment, ordered by cell then id.
func (s *RecordStore) ListLegacy(ctx context.Context, zone string) ([]*domain.Record, error) {
	return s.query(ctx, "list legacy records", `
		SELECT `+recordColumns+` FROM records
		WHERE zone_key = ? AND region_id IS NULL AND compartment_id IS NULL
			AND section IS NOT NULL AND row_index IS NOT NULL AND column_index IS NOT NULL
		ORDER BY section, row_index, column_index, id
	`, zone)
}

// CountByGridCell aggregates grid-addressed records of one zone section.
func (s *RecordStore) CountByGridCell(ctx context.Context, zone string, section domain.Section) ([]CellCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT row_index, column_index, COUNT(*) FROM records
		WHERE zone_key = ? AND section = ? AND region_id IS NULL AND compartment_id IS NULL
			AND row_index IS NOT NULL AND column_index IS NOT NULL
		GROUP BY row_index, column_index
	`, zone, string(section))
	if err != nil {
		return nil, fmt.Errorf("failed to count records by cell: %w", err)
	}
	defer closeRows(rows)

	var counts []CellCount
	for rows.Next() {
		c := CellCount{Section: section}
		if err := rows.Scan(&c.Row, &c.Column, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan cell count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cell counts: %w", err)
	}
	return counts, nil
}

// CountByRegion returns the record count of every region on layoutID,
// including regions with no records.
func (s *RecordStore) CountByRegion(ctx context.Context, layoutID int64) (map[int64]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rg.id, COUNT(r.id) FROM regions rg
		LEFT JOIN records r ON r.region_id = rg.id
		WHERE rg.layout_id = ?
		GROUP BY rg.id
	`, layoutID)
	if err != nil {
		return nil, fmt.Errorf("failed to count records by region: %w", err)
	}
	defer closeRows(rows)

	counts := make(map[int64]int)
	for rows.Next() {
		var id int64
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("failed to scan region count: %w", err)
		}
		counts[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating region counts: %w", err)
	}
	return counts, nil
}

// CountByCompartment returns the record count of every compartment on
// schematicID, including compartments with no records.
func (s *RecordStore) CountByCompartment(ctx context.Context, schematicID int64) (map[int64]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, COUNT(r.id) FROM compartments c
		LEFT JOIN records r ON r.compartment_id = c.id AND r.region_id IS NULL
		WHERE c.schematic_id = ?
		GROUP BY c.id
	`, schematicID)
	if err != nil {
		return nil, fmt.Errorf("failed to count records by compartment: %w", err)
	}
	defer closeRows(rows)

	counts := make(map[int64]int)
	for rows.Next() {
		var id int64
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("failed to scan compartment count: %w", err)
		}
		counts[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating compartment counts: %w", err)
	}
	return counts, nil
}

// CountLocations classifies records of zone (all zones when empty) by
// addressing scheme, with the same precedence as locationFromColumns.
func (s *RecordStore) CountLocations(ctx context.Context, zone string) (LocationCounts, error) {
	var c LocationCounts
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN region_id IS NOT NULL THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN region_id IS NULL AND compartment_id IS NOT NULL THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN region_id IS NULL AND compartment_id IS NULL AND section IS NOT NULL
				AND row_index IS NOT NULL AND column_index IS NOT NULL THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN region_id IS NULL AND compartment_id IS NULL AND (section IS NULL
				OR row_index IS NULL OR column_index IS NULL) THEN 1 ELSE 0 END), 0)
		FROM records
		WHERE ? = '' OR zone_key = ?
	`, zone, zone).Scan(&c.WithRegion, &c.WithCompartment, &c.LegacyOnly, &c.Unassigned)
	if err != nil {
		return LocationCounts{}, fmt.Errorf("failed to count record locations: %w", err)
	}
	return c, nil
}

// MoveLegacyToRegion sets region_id and clears the grid address, but only
// while the record still has a full grid address and no region or
// compartment. It reports whether the row changed.
func (s *RecordStore) MoveLegacyToRegion(ctx context.Context, id, regionID int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE records SET region_id = ?, section = NULL, row_index = NULL, column_index = NULL,
			updated_at = datetime('now')
		WHERE id = ? AND region_id IS NULL AND compartment_id IS NULL
			AND section IS NOT NULL AND row_index IS NOT NULL AND column_index IS NOT NULL
	`, regionID, id)
	if err != nil {
		return false, fmt.Errorf("failed to migrate record: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n == 1, nil
}

func (s *RecordStore) query(ctx context.Context, op, query string, args ...any) ([]*domain.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	defer closeRows(rows)

	var records []*domain.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.Record, error) {
	rec := &domain.Record{}
	var (
		zone, section                           sql.NullString
		rowIdx, colIdx, regionID, compartmentID sql.NullInt64
	)
	err := row.Scan(&rec.ID, &rec.Name, &rec.Concentration, &rec.Unit, &zone, &section, &rowIdx, &colIdx, &regionID,
		&compartmentID, &rec.Supplier, &rec.LotNumber, &rec.ProductNumber, &rec.PreparationDate, &rec.ExpirationDate,
		&rec.Sterility, &rec.LightSensitive, &rec.Solvents, &rec.Solubility, &rec.AliquotVolume, &rec.Notes,
		&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	rec.Zone = zone.String
	rec.Location = locationFromColumns(section, rowIdx, colIdx, regionID, compartmentID)
	return rec, nil
}

// locationFromColumns decodes the nullable location columns. A region wins
// over a compartment, and either wins over a grid address, so a row that
// carries several is read as exactly one location.
func locationFromColumns(section sql.NullString, row, column, region, compartment sql.NullInt64) domain.Location {
	switch {
	case region.Valid:
		return domain.InRegion(region.Int64)
	case compartment.Valid:
		return domain.InCompartment(compartment.Int64)
	case section.Valid && row.Valid && column.Valid:
		return domain.AtGrid(domain.Section(section.String), int(row.Int64), int(column.Int64))
	}
	return domain.Unassigned()
}

// locationArgs holds the column values of one location. Unused columns are nil.
type locationArgs struct {
	section, row, column, region, compartment any
}

func locationColumns(loc domain.Location) locationArgs {
	if pos, ok := loc.Grid(); ok {
		return locationArgs{section: string(pos.Section), row: pos.Row, column: pos.Column}
	}
	if id, ok := loc.RegionID(); ok {
		return locationArgs{region: id}
	}
	if id, ok := loc.CompartmentID(); ok {
		return locationArgs{compartment: id}
	}
	return locationArgs{}
}

func expectOne(result sql.Result, kind string, id any) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return apperrors.NotFound(kind, id)
	}
	return nil
}
