// Package transfer converts inventory records to and from spreadsheet formats.
package transfer

import (
	"strconv"
	"strings"

	"github.com/vbonduro/labinv/internal/domain"
)

// Header is the column order of every export.
var Header = []string{
	"ID",
	"Name",
	"Concentration",
	"Unit",
	"Temperature Zone",
	"Supplier",
	"Preparation Date",
	"Expiration Date",
	"Notes",
	"Solvents",
	"Solubility",
	"Light Sensitive",
	"Sterility",
	"Lot Number",
	"Product Number",
	"Aliquot Volume",
	"Section",
	"Row",
	"Column",
	"Region ID",
	"Compartment ID",
}

type field int

const (
	fieldID field = iota
	fieldName
	fieldConcentration
	fieldUnit
	fieldZone
	fieldSupplier
	fieldPreparationDate
	fieldExpirationDate
	fieldNotes
	fieldSolvents
	fieldSolubility
	fieldLightSensitive
	fieldSterility
	fieldLotNumber
	fieldProductNumber
	fieldAliquotVolume
	fieldSection
	fieldRow
	fieldColumn
	fieldRegionID
	fieldCompartmentID
)

// headerAliases maps normalised header names, including those of older
// drug-inventory exports, to fields.
var headerAliases = map[string]field{
	"id":                  fieldID,
	"name":                fieldName,
	"drug name":           fieldName,
	"concentration":       fieldConcentration,
	"stock concentration": fieldConcentration,
	"unit":                fieldUnit,
	"stock unit":          fieldUnit,
	"temperature zone":    fieldZone,
	"storage temperature": fieldZone,
	"supplier":            fieldSupplier,
	"preparation date":    fieldPreparationDate,
	"expiration date":     fieldExpirationDate,
	"expiration time":     fieldExpirationDate,
	"notes":               fieldNotes,
	"solvents":            fieldSolvents,
	"solubility":          fieldSolubility,
	"light sensitive":     fieldLightSensitive,
	"sterility":           fieldSterility,
	"lot number":          fieldLotNumber,
	"product number":      fieldProductNumber,
	"aliquot volume":      fieldAliquotVolume,
	"section":             fieldSection,
	"storage section":     fieldSection,
	"row":                 fieldRow,
	"storage row":         fieldRow,
	"column":              fieldColumn,
	"storage column":      fieldColumn,
	"region id":           fieldRegionID,
	"compartment id":      fieldCompartmentID,
}

func normaliseHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.Join(strings.Fields(strings.ToLower(strings.ReplaceAll(h, "_", " "))), " ")
}

// recordValues renders rec in Header order.
func recordValues(rec *domain.Record) []string {
	var concentration, section, row, column, region, compartment string
	if rec.Concentration.Valid {
		concentration = rec.Concentration.Decimal.String()
	}
	if pos, ok := rec.Location.Grid(); ok {
		section, row, column = string(pos.Section), strconv.Itoa(pos.Row), strconv.Itoa(pos.Column)
	}
	if id, ok := rec.Location.RegionID(); ok {
		region = strconv.FormatInt(id, 10)
	}
	if id, ok := rec.Location.CompartmentID(); ok {
		compartment = strconv.FormatInt(id, 10)
	}
	lightSensitive := "No"
	if rec.LightSensitive {
		lightSensitive = "Yes"
	}
	return []string{
		strconv.FormatInt(rec.ID, 10),
		rec.Name,
		concentration,
		rec.Unit,
		rec.Zone,
		rec.Supplier,
		rec.PreparationDate,
		rec.ExpirationDate,
		rec.Notes,
		rec.Solvents,
		rec.Solubility,
		lightSensitive,
		rec.Sterility,
		rec.LotNumber,
		rec.ProductNumber,
		rec.AliquotVolume,
		section,
		row,
		column,
		region,
		compartment,
	}
}
