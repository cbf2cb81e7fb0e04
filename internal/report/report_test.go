package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hemovita/hemovita-cli/internal/model"
)

func TestPretty(t *testing.T) {
	assert.Equal(t, "Serum ferritin", Pretty("ferritin"))
	assert.Equal(t, "Vitamin D (25(OH)D)", Pretty("vitamin_D"))
	assert.Equal(t, "Iron", Pretty("iron"))
	// unknown keys title-case with underscores expanded
	assert.Equal(t, "Selenium Plasma", Pretty("selenium_plasma"))
}

func TestGenerate_FullReport(t *testing.T) {
	serving := 100.0
	pregnant := false

	plan := model.NewPlan()
	plan.Slots[model.SlotMorning] = []string{"iron", "vitamin_C"}
	plan.Slots[model.SlotMidday] = []string{"calcium"}

	text := Generate(Input{
		Labs: map[string]float64{
			"Hemoglobin": 10.2,
			"calcium":    2.1,
		},
		Labels: map[string]model.Label{
			"Hemoglobin": model.LabelLow,
			"calcium":    model.LabelLow,
		},
		Patient: model.Patient{
			Age: 29, Sex: "female", Pregnant: &pregnant, Country: "India", Notes: "vegetarian",
		},
		Plan: plan,
		Foods: map[string][]model.FoodItem{
			"iron": {
				{Name: "Lentils", ServingG: &serving, Category: "legume"},
			},
		},
		Explanations: map[string][]string{
			"Hemoglobin": {
				"indicator_iron_serum —boosts→ Hemoglobin",
				"vitamin_C —boosts→ indicator_iron_serum —boosts→ Hemoglobin",
			},
		},
		GraphLoaded: true,
	})

	assert.Contains(t, text, "HemoVita – Personalized Micronutrient Report")
	assert.Contains(t, text, "- Age: 29")
	assert.Contains(t, text, "- Sex: female")
	assert.Contains(t, text, "- Pregnant: false")
	assert.Contains(t, text, "- Country: India")
	assert.Contains(t, text, "- Notes: vegetarian")

	assert.Contains(t, text, "1. Lab overview")
	assert.Contains(t, text, "Hemoglobin: 10.2 → low")

	assert.Contains(t, text, "2. Supplement plan (prototype)")
	assert.Contains(t, text, "- Morning: Iron, Vitamin C")
	assert.Contains(t, text, "- Midday: Calcium")

	assert.Contains(t, text, "3. Food suggestions")
	assert.Contains(t, text, "• Lentils [legume] – typical serving ~100 g")

	assert.Contains(t, text, "4. Notes on cutoffs")
	assert.Contains(t, text, "micronutrient_cutoffs_structured.csv")

	assert.Contains(t, text, "5. Network-based nutrient interactions")
	assert.Contains(t, text, "indicator_iron_serum —boosts→ Hemoglobin")

	// lab lines are sorted by raw marker name
	hb := strings.Index(text, "Hemoglobin: 10.2")
	ca := strings.Index(text, "Calcium: 2.1")
	require.Positive(t, hb)
	require.Positive(t, ca)
	assert.Less(t, hb, ca)
}

func TestGenerate_EmptyInputs(t *testing.T) {
	text := Generate(Input{Plan: model.NewPlan()})

	assert.Contains(t, text, "- Age: N/A")
	assert.Contains(t, text, "- Pregnant: N/A")
	assert.Contains(t, text, "No labs provided.")
	assert.Contains(t, text, "No supplements recommended based on current labs.")
	assert.Contains(t, text, "No specific food suggestions")
	assert.Contains(t, text, "Nutrient interaction network not available")
}

func TestGenerate_GraphLoadedButNoChains(t *testing.T) {
	text := Generate(Input{Plan: model.NewPlan(), GraphLoaded: true})
	assert.Contains(t, text, "No network-based causal chains found")
}

func TestGenerate_ChainCap(t *testing.T) {
	text := Generate(Input{
		Plan: model.NewPlan(),
		Explanations: map[string][]string{
			"Hemoglobin": {"chain one", "chain two", "chain three", "chain four"},
		},
		GraphLoaded: true,
	})

	assert.Contains(t, text, "chain three")
	assert.NotContains(t, text, "chain four")
}
