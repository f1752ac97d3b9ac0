// Package calc implements the bench calculators: C1V1 = C2V2 dilution and
// the concentration of components spiked into media.
package calc

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vbonduro/labinv/internal/apperrors"
)

var (
	minValue = decimal.New(1, -12)
	maxValue = decimal.New(1, 12)
)

// Units are scaled to a base unit within their family. Conversion is only
// possible inside one family.
var unitFamilies = []map[string]decimal.Decimal{
	{ // molar, base M
		"M":  decimal.New(1, 0),
		"mM": decimal.New(1, -3),
		"µM": decimal.New(1, -6),
		"nM": decimal.New(1, -9),
		"pM": decimal.New(1, -12),
	},
	{ // mass per volume, base g/mL
		"g/mL":  decimal.New(1, 0),
		"mg/mL": decimal.New(1, -3),
		"µg/mL": decimal.New(1, -6),
		"ng/mL": decimal.New(1, -9),
		"pg/mL": decimal.New(1, -12),
		"mg/µL": decimal.New(1, 0),
		"µg/µL": decimal.New(1, -3),
		"ng/µL": decimal.New(1, -6),
	},
	{ // activity
		"U/mL":  decimal.New(1, 0),
		"IU/mL": decimal.New(1, 0),
	},
}

// ConversionFactor returns the multiplier taking a value in from to a value
// in to. ok is false for units in different families. Dimensionless units
// such as % and X only convert to themselves.
func ConversionFactor(from, to string) (factor decimal.Decimal, ok bool) {
	if from == to {
		return decimal.New(1, 0), true
	}
	for _, family := range unitFamilies {
		f, fromOK := family[from]
		t, toOK := family[to]
		if fromOK && toOK {
			return f.Div(t), true
		}
	}
	return decimal.Decimal{}, false
}

type DilutionInput struct {
	StockConcentration decimal.Decimal `json:"stock_concentration"`
	StockUnit          string          `json:"stock_unit"`
	FinalConcentration decimal.Decimal `json:"final_concentration"`
	FinalUnit          string          `json:"final_unit"`
	FinalVolume        decimal.Decimal `json:"final_volume"`
}

type DilutionResult struct {
	VolumeStock                 decimal.Decimal `json:"volume_stock"`
	VolumeSolvent               decimal.Decimal `json:"volume_solvent"`
	StockConcentration          decimal.Decimal `json:"stock_concentration"`
	FinalConcentration          decimal.Decimal `json:"final_concentration"`
	FinalConcentrationConverted decimal.Decimal `json:"final_concentration_converted"`
	FinalVolume                 decimal.Decimal `json:"final_volume"`
	StockUnit                   string          `json:"stock_unit"`
	FinalUnit                   string          `json:"final_unit"`
}

// Dilution solves C1V1 = C2V2 for the stock volume. The final concentration
// is first converted into the stock unit and may not exceed the stock.
func Dilution(in DilutionInput) (*DilutionResult, error) {
	if in.StockUnit == "" {
		in.StockUnit = "µM"
	}
	if in.FinalUnit == "" {
		in.FinalUnit = "µM"
	}
	if err := checkRange("stock_concentration", in.StockConcentration); err != nil {
		return nil, err
	}
	if err := checkRange("final_concentration", in.FinalConcentration); err != nil {
		return nil, err
	}
	if err := checkRange("final_volume", in.FinalVolume); err != nil {
		return nil, err
	}

	factor, ok := ConversionFactor(in.FinalUnit, in.StockUnit)
	if !ok {
		return nil, apperrors.Invalid("final_unit", "cannot convert between %s and %s", in.FinalUnit, in.StockUnit)
	}
	converted := in.FinalConcentration.Mul(factor)
	if converted.GreaterThan(in.StockConcentration) {
		return nil, apperrors.Invalid("final_concentration",
			"%s %s exceeds stock concentration %s %s; dilution cannot concentrate",
			in.FinalConcentration, in.FinalUnit, in.StockConcentration, in.StockUnit)
	}

	volumeStock := converted.Mul(in.FinalVolume).Div(in.StockConcentration)
	return &DilutionResult{
		VolumeStock:                 volumeStock.Round(6),
		VolumeSolvent:               in.FinalVolume.Sub(volumeStock).Round(6),
		StockConcentration:          in.StockConcentration,
		FinalConcentration:          in.FinalConcentration,
		FinalConcentrationConverted: converted.Round(6),
		FinalVolume:                 in.FinalVolume,
		StockUnit:                   in.StockUnit,
		FinalUnit:                   in.FinalUnit,
	}, nil
}

// Component is one stock solution added to media.
type Component struct {
	Name               string          `json:"name"`
	StockConcentration decimal.Decimal `json:"stock_concentration"`
	StockUnit          string          `json:"stock_unit"`
	Volume             decimal.Decimal `json:"volume"`
	VolumeUnit         string          `json:"volume_unit"`
}

type ComponentResult struct {
	Name               string          `json:"name"`
	StockConcentration decimal.Decimal `json:"stock_concentration"`
	StockUnit          string          `json:"stock_unit"`
	VolumeAdded        decimal.Decimal `json:"volume_added"`
	VolumeUnit         string          `json:"volume_unit"`
	FinalConcentration decimal.Decimal `json:"final_concentration"`
	FinalVolume        decimal.Decimal `json:"final_volume"`
}

// ActualConcentration computes, for each component on its own, the
// concentration after adding it to mediaVolume mL of media.
func ActualConcentration(mediaVolume decimal.Decimal, components []Component) ([]ComponentResult, error) {
	if err := checkRange("media_volume", mediaVolume); err != nil {
		return nil, err
	}
	if len(components) == 0 {
		return nil, apperrors.Invalid("components", "at least one component is required")
	}

	thousand := decimal.New(1, 3)
	results := make([]ComponentResult, 0, len(components))
	for i, c := range components {
		field := fmt.Sprintf("components[%d]", i)
		if err := checkRange(field+".stock_concentration", c.StockConcentration); err != nil {
			return nil, err
		}
		if err := checkRange(field+".volume", c.Volume); err != nil {
			return nil, err
		}
		if c.VolumeUnit == "" {
			c.VolumeUnit = "mL"
		}
		if c.Name == "" {
			c.Name = fmt.Sprintf("Component %d", i+1)
		}

		volumeML := c.Volume
		switch c.VolumeUnit {
		case "mL":
		case "µL", "uL":
			volumeML = c.Volume.Div(thousand)
		default:
			return nil, apperrors.Invalid(field+".volume_unit", "must be mL or µL, got %q", c.VolumeUnit)
		}

		finalVolume := mediaVolume.Add(volumeML)
		results = append(results, ComponentResult{
			Name:               c.Name,
			StockConcentration: c.StockConcentration,
			StockUnit:          c.StockUnit,
			VolumeAdded:        c.Volume,
			VolumeUnit:         c.VolumeUnit,
			FinalConcentration: c.StockConcentration.Mul(volumeML).Div(finalVolume).Round(6),
			FinalVolume:        finalVolume.Round(4),
		})
	}
	return results, nil
}

func checkRange(field string, v decimal.Decimal) error {
	if !v.IsPositive() {
		return apperrors.Invalid(field, "must be a positive number")
	}
	if v.LessThan(minValue) || v.GreaterThan(maxValue) {
		return apperrors.Invalid(field, "must be between %s and %s", minValue, maxValue)
	}
	return nil
}
