package calc

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/labinv/internal/apperrors"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestConversionFactor(t *testing.T) {
	tests := []struct {
		from, to string
		want     string
		ok       bool
	}{
		{from: "mM", to: "µM", want: "1000", ok: true},
		{from: "nM", to: "mM", want: "0.000001", ok: true},
		{from: "µg/µL", to: "mg/mL", want: "1", ok: true},
		{from: "IU/mL", to: "U/mL", want: "1", ok: true},
		{from: "%", to: "%", want: "1", ok: true},
		{from: "%", to: "X", ok: false},
		{from: "mM", to: "mg/mL", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			got, ok := ConversionFactor(tt.from, tt.to)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, d(tt.want).Equal(got), "got %s", got)
			}
		})
	}
}

func TestDilution(t *testing.T) {
	res, err := Dilution(DilutionInput{
		StockConcentration: d("10"),
		StockUnit:          "mM",
		FinalConcentration: d("100"),
		FinalUnit:          "µM",
		FinalVolume:        d("50"),
	})
	require.NoError(t, err)
	assert.Equal(t, "0.1", res.FinalConcentrationConverted.String())
	assert.Equal(t, "0.5", res.VolumeStock.String())
	assert.Equal(t, "49.5", res.VolumeSolvent.String())
}

func TestDilutionDefaultsToMicromolar(t *testing.T) {
	res, err := Dilution(DilutionInput{StockConcentration: d("3"), FinalConcentration: d("1"), FinalVolume: d("1")})
	require.NoError(t, err)
	assert.Equal(t, "µM", res.StockUnit)
	assert.Equal(t, "0.333333", res.VolumeStock.String())
	assert.Equal(t, "0.666667", res.VolumeSolvent.String())
}

func TestDilutionErrors(t *testing.T) {
	tests := []struct {
		name string
		in   DilutionInput
	}{
		{name: "concentrate", in: DilutionInput{StockConcentration: d("1"), StockUnit: "mM", FinalConcentration: d("2"), FinalUnit: "mM", FinalVolume: d("1")}},
		{name: "incompatible units", in: DilutionInput{StockConcentration: d("1"), StockUnit: "mM", FinalConcentration: d("1"), FinalUnit: "mg/mL", FinalVolume: d("1")}},
		{name: "zero volume", in: DilutionInput{StockConcentration: d("1"), FinalConcentration: d("1"), FinalVolume: d("0")}},
		{name: "too large", in: DilutionInput{StockConcentration: d("1e13"), FinalConcentration: d("1"), FinalVolume: d("1")}},
		{name: "too small", in: DilutionInput{StockConcentration: d("1"), FinalConcentration: d("1e-13"), FinalVolume: d("1")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Dilution(tt.in)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestActualConcentration(t *testing.T) {
	results, err := ActualConcentration(d("10"), []Component{
		{Name: "Pen/Strep", StockConcentration: d("100"), StockUnit: "X", Volume: d("100"), VolumeUnit: "µL"},
		{StockConcentration: d("50"), Volume: d("1")},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "0.990099", results[0].FinalConcentration.String())
	assert.Equal(t, "10.1", results[0].FinalVolume.String())

	assert.Equal(t, "Component 2", results[1].Name)
	assert.Equal(t, "mL", results[1].VolumeUnit)
	assert.Equal(t, "4.545455", results[1].FinalConcentration.String())
	assert.Equal(t, "11", results[1].FinalVolume.String())
}

func TestActualConcentrationErrors(t *testing.T) {
	_, err := ActualConcentration(d("10"), nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = ActualConcentration(d("-1"), []Component{{StockConcentration: d("1"), Volume: d("1")}})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = ActualConcentration(d("10"), []Component{{StockConcentration: d("1"), Volume: d("1"), VolumeUnit: "L"}})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
