package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefault_LookupByKey(t *testing.T) {
	reg := Default()

	ind, ok := reg.Indicator("farmers")
	assert.True(t, ok)
	assert.Equal(t, TableCropArea, ind.Table)
	assert.Equal(t, "no_of_farmers", ind.Column)
	assert.Equal(t, "Farmers", ind.Unit)

	dim, ok := reg.Dimension("district")
	assert.True(t, ok)
	assert.Equal(t, ColumnDistrict, dim.Column)

	_, ok = reg.Indicator("nonexistent")
	assert.False(t, ok)
}

func TestDefault_FallbackIndicator(t *testing.T) {
	reg := Default()

	def := reg.DefaultIndicator()
	assert.Equal(t, "crop_area", def.Key, "unmatched queries must land on approved crop area")
	assert.Equal(t, TableCropArea, def.Table)
}

func TestDefault_UniqueKeys(t *testing.T) {
	reg := Default()

	seen := make(map[string]bool)
	for _, ind := range reg.Indicators() {
		assert.False(t, seen[ind.Key], "duplicate indicator key %s", ind.Key)
		seen[ind.Key] = true
		assert.NotEmpty(t, ind.Table)
		assert.NotEmpty(t, ind.Title)
	}
}

func TestDefault_DerivedPendingValidation(t *testing.T) {
	reg := Default()

	ind, ok := reg.Indicator("pending_validation")
	assert.True(t, ok)
	assert.True(t, ind.Derived, "pending validation is computed, not a physical column")
}

func TestDefault_YearDimensionIsOrdinal(t *testing.T) {
	reg := Default()

	dim, ok := reg.Dimension("year")
	assert.True(t, ok)
	assert.True(t, dim.Ordinal, "year axis must order chronologically")

	dim, ok = reg.Dimension("district")
	assert.True(t, ok)
	assert.False(t, dim.Ordinal)
}

func TestDefault_ComparisonLegs(t *testing.T) {
	reg := Default()

	for _, cmp := range reg.Comparisons() {
		for _, leg := range cmp.Legs {
			assert.NotEmpty(t, leg.Label, "comparison %s has an unlabeled leg", cmp.Key)
			assert.NotEmpty(t, leg.Table)
			assert.NotEmpty(t, leg.Column)
		}
	}

	cmp, ok := reg.Comparison("rabi_vs_kharif")
	assert.True(t, ok)
	assert.Equal(t, "Rabi", cmp.Legs[0].SeasonEq)
	assert.Equal(t, "Kharif", cmp.Legs[1].SeasonEq)

	cross, ok := reg.Comparison("surveyed_vs_approved_area")
	assert.True(t, ok)
	assert.NotEqual(t, cross.Legs[0].Table, cross.Legs[1].Table, "cross-source comparison must span tables")
}
