package vocab

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitPropertyFirstDeclarationWins(t *testing.T) {
	reg := MustDefault()

	prop, ok := reg.UnitProperty("ML")
	require.True(t, ok)
	assert.Equal(t, "volume", prop)

	prop, ok = reg.UnitProperty("mm sq")
	require.True(t, ok)
	assert.Equal(t, "cross-sectional area", prop)

	_, ok = reg.UnitProperty("furlong")
	assert.False(t, ok)
}

func TestUnitPropertiesKeepTableOrder(t *testing.T) {
	props := MustDefault().UnitProperties()
	require.NotEmpty(t, props)
	assert.Equal(t, "weight", props[0])
	assert.Equal(t, "spline", props[len(props)-1])
	assert.Contains(t, props, "cross-sectional area")
}

func TestUnitPatternPrefersLongestUnit(t *testing.T) {
	reg := MustDefault()
	m := reg.UnitDecimalPattern().FindStringSubmatch("CABLE 20 mm sq STRANDED")
	require.NotNil(t, m)
	assert.Equal(t, "20 mm sq", m[1])
	assert.Equal(t, "mm sq", m[2])
}

func TestWireTypePatternPrefersLongestCode(t *testing.T) {
	reg := MustDefault()
	assert.Equal(t, []string{"THW-2", "THW"}, reg.WireTypePattern().FindAllString("WIRE THW-2 AND THW", -1))
	assert.Empty(t, reg.WireTypePattern().FindAllString("THWART USED", -1))
}

func TestKeywordCategory(t *testing.T) {
	reg := MustDefault()
	cat, ok := reg.KeywordCategory("PHELPS DODGE")
	require.True(t, ok)
	assert.Equal(t, "brand", cat)
	require.Len(t, reg.Categories(), 1)
	assert.Equal(t, "Phelps Dodge", reg.Categories()[0].Pattern.FindString("cable Phelps Dodge x"))
}

func TestLabelPatternsRequireSeparation(t *testing.T) {
	reg := MustDefault()
	var sn Label
	for _, l := range reg.Labels() {
		if l.Name == "SN" {
			sn = l
		}
	}
	require.NotNil(t, sn.Pattern)
	assert.False(t, sn.Pattern.MatchString("SNAP RING"))
	assert.False(t, sn.Pattern.MatchString("ASN 12"))
	assert.Equal(t, []string{"sn 12AB", "12AB"}, sn.Pattern.FindStringSubmatch("unit sn 12AB"))
}

func TestValidateRejectsEmptyTables(t *testing.T) {
	_, err := New(Tables{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no unit groups")
	assert.Contains(t, err.Error(), "no wire types")
}

func TestLoadFileOverridesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.yaml")
	custom := Default()
	custom.Keywords = []KeywordGroup{
		{Category: "brand", Keywords: []string{"Omron"}},
		{Category: "material", Keywords: []string{"Stainless", "Galvanized"}},
	}
	require.NoError(t, WriteFile(custom, path))

	reg, err := LoadFile(path)
	require.NoError(t, err)
	cat, ok := reg.KeywordCategory("galvanized")
	require.True(t, ok)
	assert.Equal(t, "material", cat)
	assert.Equal(t, Default().WireTypes, reg.Tables().WireTypes)
}

func TestParseTablesPartialFile(t *testing.T) {
	tables, err := ParseTables([]byte("wire_types: [\"NYM\"]\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"NYM"}, tables.WireTypes)
	assert.Equal(t, Default().Labels, tables.Labels)

	_, err = ParseTables([]byte("wire_type: [\"NYM\"]\n"))
	assert.Error(t, err)

	tables, err = ParseTables(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), tables)
}
