package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestAuthority() *Authority {
	a := NewAuthority()
	a.AddDistrict("27", "497", "Pune")
	a.AddDistrict("27", "498", "Nagpur")
	a.AddDistrict("27", "499", "Ahmednagar")
	a.AddDistrict("09", "140", "Agra")
	a.CompilePatterns()
	return a
}

func TestStateName_KnownAndUnknown(t *testing.T) {
	a := NewAuthority()

	assert.Equal(t, "Maharashtra", a.StateName("27"))
	assert.Equal(t, "Uttar Pradesh", a.StateName("09"))
	assert.Equal(t, "LGD 99", a.StateName("99"), "unknown codes get a placeholder, never an error")
}

func TestResolveStateName_CaseInsensitive(t *testing.T) {
	a := NewAuthority()

	code, ok := a.ResolveStateName("maharashtra")
	assert.True(t, ok)
	assert.Equal(t, "27", code)

	code, ok = a.ResolveStateName("  Tamil Nadu ")
	assert.True(t, ok)
	assert.Equal(t, "33", code)

	_, ok = a.ResolveStateName("atlantis")
	assert.False(t, ok)
}

func TestDetectState_InsideQuery(t *testing.T) {
	a := NewAuthority()

	code, name, ok := a.DetectState("show crop area in gujarat for 2023")
	assert.True(t, ok)
	assert.Equal(t, "24", code)
	assert.Equal(t, "Gujarat", name)

	_, _, ok = a.DetectState("district-wise crop area")
	assert.False(t, ok)
}

func TestDetectDistrict_ScopedToState(t *testing.T) {
	a := newTestAuthority()

	code, name, ok := a.DetectDistrict("crop area in Pune district", "27")
	assert.True(t, ok)
	assert.Equal(t, "497", code)
	assert.Equal(t, "Pune", name)

	// Agra belongs to Uttar Pradesh; the Maharashtra scope must not see it.
	_, _, ok = a.DetectDistrict("crop area in Agra", "27")
	assert.False(t, ok)

	code, _, ok = a.DetectDistrict("survey progress in agra this year", "09")
	assert.True(t, ok)
	assert.Equal(t, "140", code)
}

func TestDetectDistrict_WordBoundary(t *testing.T) {
	a := newTestAuthority()

	// "Pune" must not match inside another token.
	_, _, ok := a.DetectDistrict("impunement of crop rules", "27")
	assert.False(t, ok)

	_, _, ok = a.DetectDistrict("PUNE crop summary", "27")
	assert.True(t, ok, "district detection is case-insensitive")
}

func TestDistrictName_Fallback(t *testing.T) {
	a := newTestAuthority()

	assert.Equal(t, "Nagpur", a.DistrictName("498"))
	assert.Equal(t, "777", a.DistrictName("777"), "unknown district codes echo the code")
}
