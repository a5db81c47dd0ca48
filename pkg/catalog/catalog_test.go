package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/marmos91/hdrive/pkg/asset"
	"github.com/marmos91/hdrive/pkg/sampler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bareCatalog = `[
  {"name": "Pure Iron Ingot", "product": "Iron Ingot",
   "input": [{"name": "Iron Ore", "nb": 35}, {"name": "Water", "nb": 20}], "rate": 65},
  {"name": "Cast Screw", "product": "Screw",
   "input": [{"name": "Iron Ingot", "nb": 12.5}], "rate": 50},
  {"name": "Wet Concrete", "product": "Concrete",
   "input": [{"name": "Limestone", "nb": 120}, {"name": "Water", "nb": 100}], "rate": 80}
]`

func TestParseBareArray(t *testing.T) {
	c, err := Parse([]byte(bareCatalog))
	require.NoError(t, err)

	assert.Equal(t, 3, c.Len())
	r := c.Record(0)
	assert.Equal(t, "Pure Iron Ingot", r.Name)
	assert.Equal(t, asset.Key("Iron Ingot"), r.Product)
	require.Len(t, r.Input, 2)
	assert.Equal(t, Ingredient{Name: "Water", Nb: 20}, r.Input[1])
	assert.Equal(t, 65.0, r.Rate)
}

func TestParseDocumentWithLocators(t *testing.T) {
	doc := `{"recipes": ` + bareCatalog + `, "assets": {"Water": "fluids/water.png"}}`
	c, err := Parse([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, "fluids/water.png", c.Locator("Water"))
	assert.Equal(t, "Iron_Ore.png", c.Locator("Iron Ore"))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		is    error
	}{
		{"empty input", "  ", ErrEmptyCatalog},
		{"empty array", "[]", ErrEmptyCatalog},
		{"empty document", `{"recipes": []}`, ErrEmptyCatalog},
		{"missing product", `[{"name": "x", "input": []}]`, ErrInvalidRecord},
		{"unnamed ingredient", `[{"name": "x", "product": "y", "input": [{"nb": 1}]}]`, ErrInvalidRecord},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			assert.ErrorIs(t, err, tt.is)
		})
	}

	t.Run("malformed json", func(t *testing.T) {
		_, err := Parse([]byte(`[{"name":`))
		assert.ErrorContains(t, err, "failed to decode catalog")
	})
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipes.json")
	require.NoError(t, os.WriteFile(path, []byte(bareCatalog), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestKeysFirstAppearanceOrder(t *testing.T) {
	c, err := Parse([]byte(bareCatalog))
	require.NoError(t, err)

	assert.Equal(t, []asset.Key{
		"Iron Ingot", "Iron Ore", "Water", "Screw", "Concrete", "Limestone",
	}, c.Keys())
}

func TestRecordKeysProductFirst(t *testing.T) {
	r := Record{Product: "P", Input: []Ingredient{{Name: "A"}, {Name: "B"}}}
	assert.Equal(t, []asset.Key{"P", "A", "B"}, r.Keys())
}

func TestRecordsAreCopies(t *testing.T) {
	c, err := Parse([]byte(bareCatalog))
	require.NoError(t, err)

	r := c.Record(0)
	r.Input[0].Nb = 9999
	assert.Equal(t, 35.0, c.Record(0).Input[0].Nb)
}

func TestDefaultLocator(t *testing.T) {
	assert.Equal(t, "Heavy_Modular_Frame.png", DefaultLocator("Heavy Modular Frame"))
	assert.Equal(t, "Coal.png", DefaultLocator("Coal"))
}

func TestCheckBatchSize(t *testing.T) {
	c, err := Parse([]byte(bareCatalog))
	require.NoError(t, err)

	assert.NoError(t, c.CheckBatchSize(3))
	assert.ErrorIs(t, c.CheckBatchSize(4), sampler.ErrSamplingImpossible)
}
