package transfer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vbonduro/labinv/internal/domain"
)

// Row is one parsed data line. Err is set when the line cannot become a record.
type Row struct {
	Line   int
	Record *domain.Record
	Err    error
}

var errMissingName = errors.New("missing name")

// WriteCSV writes the header and one line per record.
func WriteCSV(w io.Writer, records []*domain.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, rec := range records {
		if err := cw.Write(recordValues(rec)); err != nil {
			return fmt.Errorf("failed to write record %d: %w", rec.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a CSV export. Columns are matched by header name and unknown
// columns are ignored. Unparsable numbers are read as empty. The ID column is
// ignored; imported records always get new ids.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("csv is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	columns := make(map[field]int)
	for i, h := range header {
		if f, ok := headerAliases[normaliseHeader(h)]; ok {
			if _, dup := columns[f]; !dup {
				columns[f] = i
			}
		}
	}
	if _, ok := columns[fieldName]; !ok {
		return nil, fmt.Errorf("csv has no name column")
	}

	var rows []Row
	line := 1
	for {
		values, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read csv line %d: %w", line, err)
		}
		if blank(values) {
			continue
		}
		rows = append(rows, parseRow(line, columns, values))
	}
	return rows, nil
}

func parseRow(line int, columns map[field]int, values []string) Row {
	get := func(f field) string {
		i, ok := columns[f]
		if !ok || i >= len(values) {
			return ""
		}
		return strings.TrimSpace(values[i])
	}

	name := get(fieldName)
	if name == "" {
		return Row{Line: line, Err: errMissingName}
	}

	rec := &domain.Record{
		Name:            name,
		Unit:            get(fieldUnit),
		Zone:            get(fieldZone),
		Supplier:        get(fieldSupplier),
		PreparationDate: get(fieldPreparationDate),
		ExpirationDate:  get(fieldExpirationDate),
		Notes:           get(fieldNotes),
		Solvents:        get(fieldSolvents),
		Solubility:      get(fieldSolubility),
		LightSensitive:  parseBool(get(fieldLightSensitive)),
		Sterility:       get(fieldSterility),
		LotNumber:       get(fieldLotNumber),
		ProductNumber:   get(fieldProductNumber),
		AliquotVolume:   get(fieldAliquotVolume),
		Location:        domain.Unassigned(),
	}
	if c, err := decimal.NewFromString(get(fieldConcentration)); err == nil {
		rec.Concentration = decimal.NewNullDecimal(c)
	}

	if id, err := strconv.ParseInt(get(fieldRegionID), 10, 64); err == nil && id > 0 {
		rec.Location = domain.InRegion(id)
		return Row{Line: line, Record: rec}
	}
	if id, err := strconv.ParseInt(get(fieldCompartmentID), 10, 64); err == nil && id > 0 {
		rec.Location = domain.InCompartment(id)
		return Row{Line: line, Record: rec}
	}
	section := strings.ToLower(get(fieldSection))
	row, rerr := strconv.Atoi(get(fieldRow))
	column, cerr := strconv.Atoi(get(fieldColumn))
	if section != "" && rerr == nil && cerr == nil {
		rec.Location = domain.AtGrid(domain.Section(section), row, column)
	}
	return Row{Line: line, Record: rec}
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "yes", "y", "true", "1":
		return true
	}
	return false
}

func blank(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
