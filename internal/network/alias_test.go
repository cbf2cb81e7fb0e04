package network

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAliasTable_Resolve(t *testing.T) {
	tbl := AliasTable{"Hemoglobin": "iron"}

	assert.Equal(t, "iron", tbl.Resolve("Hemoglobin"))
	assert.Equal(t, "iron", tbl.Resolve("  Hemoglobin  "))
	assert.Equal(t, "vitamin_D", tbl.Resolve("vitamin_D"))
}

func TestLoadAliases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	content := `supplement_keys:
  Hemoglobin: iron
  ferritin: iron
food_bundles:
  homocysteine: vitamin_B12
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	a, err := LoadAliases(path)
	require.NoError(t, err)
	assert.Equal(t, "iron", a.Supplements.Resolve("ferritin"))
	assert.Equal(t, "vitamin_B12", a.FoodBundles["homocysteine"])
}

func TestLoadAliases_MissingFile(t *testing.T) {
	_, err := LoadAliases(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadAliases_EmptySupplementKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	require.NoError(t, os.WriteFile(path, []byte("food_bundles:\n  a: b\n"), 0o600))

	_, err := LoadAliases(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "supplement_keys")
}
