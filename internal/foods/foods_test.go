package foods

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hemovita/hemovita-cli/internal/model"
)

const testFoods = `food,category,bundle,typical_serve_g,diet_tag
Beef liver,meat,iron,85,omnivore
Lentils,legume,iron,100,vegan
Spinach (cooked),vegetable,iron,90,vegan
Lentils,legume,iron,100,vegan
Clams,seafood,vitamin_B12,85,pescatarian
Fortified nutritional yeast,fortified,vitamin_B12,15,vegan
Yogurt,dairy_egg,calcium,,vegetarian
`

var testBundles = map[string]string{
	"Hemoglobin":   "iron",
	"ferritin":     "iron",
	"vitamin_B12":  "vitamin_B12",
	"homocysteine": "vitamin_B12",
	"calcium":      "calcium",
}

func loadTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "foods.csv")
	require.NoError(t, os.WriteFile(path, []byte(testFoods), 0o600))
	c, err := Load(path)
	require.NoError(t, err)
	return c
}

func TestSuggest_LowMarkersMapToBundles(t *testing.T) {
	c := loadTestCatalog(t)

	out := c.Suggest(map[string]model.Label{
		"Hemoglobin": model.LabelLow,
		"ferritin":   model.LabelLow,
	}, testBundles, 5, "")

	require.Contains(t, out, "iron")
	require.Len(t, out, 1) // both markers collapse to one bundle

	names := make([]string, len(out["iron"]))
	for i, f := range out["iron"] {
		names[i] = f.Name
	}
	// curated row order, duplicate Lentils dropped
	assert.Equal(t, []string{"Beef liver", "Lentils", "Spinach (cooked)"}, names)
}

func TestSuggest_HomocysteineTriggersOnHigh(t *testing.T) {
	c := loadTestCatalog(t)

	out := c.Suggest(map[string]model.Label{"homocysteine": model.LabelHigh}, testBundles, 5, "")
	assert.Contains(t, out, "vitamin_B12")

	out = c.Suggest(map[string]model.Label{"homocysteine": model.LabelLow}, testBundles, 5, "")
	assert.Empty(t, out)
}

func TestSuggest_DietFilter(t *testing.T) {
	c := loadTestCatalog(t)

	out := c.Suggest(map[string]model.Label{"Hemoglobin": model.LabelLow}, testBundles, 5, "vegan")

	names := make([]string, len(out["iron"]))
	for i, f := range out["iron"] {
		names[i] = f.Name
	}
	assert.Equal(t, []string{"Lentils", "Spinach (cooked)"}, names)
}

func TestSuggest_TopNCap(t *testing.T) {
	c := loadTestCatalog(t)

	out := c.Suggest(map[string]model.Label{"Hemoglobin": model.LabelLow}, testBundles, 1, "")
	require.Len(t, out["iron"], 1)
	assert.Equal(t, "Beef liver", out["iron"][0].Name)
}

func TestSuggest_MissingServingIsNil(t *testing.T) {
	c := loadTestCatalog(t)

	out := c.Suggest(map[string]model.Label{"calcium": model.LabelLow}, testBundles, 5, "")
	require.Len(t, out["calcium"], 1)
	assert.Nil(t, out["calcium"][0].ServingG)
}

func TestSuggest_NormalLabelsIgnored(t *testing.T) {
	c := loadTestCatalog(t)

	out := c.Suggest(map[string]model.Label{
		"Hemoglobin":  model.LabelNormal,
		"vitamin_B12": model.LabelHigh,
	}, testBundles, 5, "")
	assert.Empty(t, out)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}
