package refdata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

const testCutoffs = `micronutrient,biomarker,population_group,unit,cutoff_type,cutoff_value,source
iron_related_anemia,hemoglobin,nonpregnant_women,g/dL,anemia,12.0,WHO
iron_related_anemia,hemoglobin,nonpregnant_women,g/dL,severe_anemia,8.0,WHO
iron_related_anemia,hemoglobin,men,g/dL,anemia,13.0,WHO
iron_related_anemia,MCV,adults,fL,microcytosis,80.0,consensus
iron_related_anemia,MCV,adults,fL,macrocytosis,100.0,consensus
iron,serum_ferritin,nonpregnant_adults,µg/L,deficiency,15.0,WHO
calcium,serum_total_calcium,adults,mmol/L,low,2.20,consensus
calcium,serum_total_calcium,adults,mmol/L,high,2.60,consensus
homocysteine_related,plasma_homocysteine,adults,µmol/L,high_mild,15.0,consensus
vitamin_D,serum_25OHD,general,nmol/L,deficiency,not_numeric,IOM
`

func writeTestCutoffs(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cutoffs.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_ResolvesExplicitTiers(t *testing.T) {
	s, err := Load(writeTestCutoffs(t, testCutoffs))
	require.NoError(t, err)

	rng, ok := s.Range("Hemoglobin")
	require.True(t, ok)
	require.NotNil(t, rng.Low)
	assert.Equal(t, 12.0, *rng.Low) // nonpregnant_women row, not men
	assert.Nil(t, rng.High)

	rng, ok = s.Range("MCV")
	require.True(t, ok)
	require.NotNil(t, rng.Low)
	require.NotNil(t, rng.High)
	assert.Equal(t, 80.0, *rng.Low)
	assert.Equal(t, 100.0, *rng.High)
}

func TestLoad_HighOnlyMarker(t *testing.T) {
	s, err := Load(writeTestCutoffs(t, testCutoffs))
	require.NoError(t, err)

	rng, ok := s.Range("homocysteine")
	require.True(t, ok)
	assert.Nil(t, rng.Low)
	require.NotNil(t, rng.High)
	assert.Equal(t, 15.0, *rng.High)
}

func TestLoad_CalciumLowAndHigh(t *testing.T) {
	s, err := Load(writeTestCutoffs(t, testCutoffs))
	require.NoError(t, err)

	rng, ok := s.Range("calcium")
	require.True(t, ok)
	require.NotNil(t, rng.Low)
	require.NotNil(t, rng.High)
	assert.Equal(t, 2.20, *rng.Low)
	assert.Equal(t, 2.60, *rng.High)
}

func TestLoad_MarkerWithoutRows(t *testing.T) {
	s, err := Load(writeTestCutoffs(t, testCutoffs))
	require.NoError(t, err)

	// zinc has a spec but no rows in this table
	_, ok := s.Range("zinc")
	assert.False(t, ok)

	// vitamin_D's only row has a non-numeric cutoff and is dropped
	_, ok = s.Range("vitamin_D")
	assert.False(t, ok)
}

func TestLoad_TiersKeepRowOrder(t *testing.T) {
	s, err := Load(writeTestCutoffs(t, testCutoffs))
	require.NoError(t, err)

	tiers := s.Tiers("Hemoglobin")
	require.Len(t, tiers, 2)
	assert.Equal(t, "anemia", tiers[0].Name)
	assert.Equal(t, "severe_anemia", tiers[1].Name)
}

func TestLoad_XLSXWorkbook(t *testing.T) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("cutoffs")
	require.NoError(t, err)

	header := sheet.AddRow()
	for _, h := range []string{"micronutrient", "biomarker", "population_group", "unit", "cutoff_type", "cutoff_value"} {
		header.AddCell().SetString(h)
	}
	addRow := func(micronutrient, biomarker, group, unit, tier string, cutoff float64) {
		r := sheet.AddRow()
		r.AddCell().SetString(micronutrient)
		r.AddCell().SetString(biomarker)
		r.AddCell().SetString(group)
		r.AddCell().SetString(unit)
		r.AddCell().SetString(tier)
		r.AddCell().SetFloat(cutoff)
	}
	addRow("iron_related_anemia", "hemoglobin", "nonpregnant_women", "g/dL", "anemia", 12.0)
	addRow("iron", "serum_ferritin", "nonpregnant_adults", "µg/L", "deficiency", 15.0)

	path := filepath.Join(t.TempDir(), "cutoffs.xlsx")
	require.NoError(t, file.Save(path))

	s, err := Load(path)
	require.NoError(t, err)

	rng, ok := s.Range("Hemoglobin")
	require.True(t, ok)
	require.NotNil(t, rng.Low)
	assert.Equal(t, 12.0, *rng.Low)

	rng, ok = s.Range("ferritin")
	require.True(t, ok)
	require.NotNil(t, rng.Low)
	assert.Equal(t, 15.0, *rng.Low)
}

func TestLoad_EmptyTableFails(t *testing.T) {
	_, err := Load(writeTestCutoffs(t, "micronutrient,biomarker,population_group,unit,cutoff_type,cutoff_value\n"))
	require.Error(t, err)
}

func TestLoad_MissingColumnFails(t *testing.T) {
	_, err := Load(writeTestCutoffs(t, "micronutrient,biomarker\na,b\n"))
	require.Error(t, err)
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}

func TestRoleFor(t *testing.T) {
	assert.Equal(t, RoleLowIndicator, roleFor("severe_deficiency"))
	assert.Equal(t, RoleLowIndicator, roleFor("anemia"))
	assert.Equal(t, RoleLowIndicator, roleFor("microcytosis"))
	assert.Equal(t, RoleHighIndicator, roleFor("macrocytosis"))
	assert.Equal(t, RoleHighIndicator, roleFor("high_moderate"))
	assert.Equal(t, RoleNeutral, roleFor("marginal"))
}
