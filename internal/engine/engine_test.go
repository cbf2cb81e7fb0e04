package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hemovita/hemovita-cli/internal/config"
	"github.com/hemovita/hemovita-cli/internal/model"
)

func testConfig() *config.Config {
	return &config.Config{
		Data: config.DataConfig{
			CutoffsPath:       "../../data/micronutrient_cutoffs_structured.csv",
			RelationshipsPath: "../../data/network_relationships.csv",
			AliasesPath:       "../../data/aliases.yaml",
			RiskDataPath:      "../../data/micronutrient_data.csv",
			FoodsPath:         "../../data/foods_usda.csv",
		},
		Bandit: config.BanditConfig{Steps: 2000, Seed: 42, Alpha: 1.0},
		Foods:  config.FoodsConfig{TopN: 3},
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(context.Background(), testConfig())
	require.NoError(t, err)
	e.Train()
	return e
}

func TestNew_LoadsReferenceData(t *testing.T) {
	e, err := New(context.Background(), testConfig())
	require.NoError(t, err)

	steps, seed, actions := e.BanditInfo()
	assert.Equal(t, 0, steps) // untrained until Train or Restore
	assert.Equal(t, int64(0), seed)
	assert.Greater(t, actions, 0)
}

func TestBuildReport_FullPipeline(t *testing.T) {
	e := newTestEngine(t)

	report, result := e.BuildReport(ReportRequest{
		Labs: map[string]float64{
			"Hemoglobin": 10.5,
			"ferritin":   8,
			"calcium":    2.0,
			"MCV":        88,
		},
		Patient: model.Patient{Age: 29, Sex: "female", Country: "India"},
	})

	assert.Equal(t, model.LabelLow, report.Labels["Hemoglobin"])
	assert.Equal(t, model.LabelLow, report.Labels["ferritin"])
	assert.Equal(t, model.LabelLow, report.Labels["calcium"])
	assert.Equal(t, model.LabelNormal, report.Labels["MCV"])

	// Hemoglobin and ferritin collapse to a single iron placement;
	// calcium antagonizes iron and lands in the next slot. Boosters are
	// co-located with their targets even though they are not deficient.
	assert.Equal(t, []string{"iron", "vitamin_C", "folate_plasma"}, report.SupplementPlan[model.SlotMorning])
	assert.Equal(t, []string{"calcium", "vitamin_D"}, report.SupplementPlan[model.SlotMidday])
	assert.Empty(t, report.SupplementPlan[model.SlotEvening])

	assert.NotEmpty(t, report.NetworkNotes)
	assert.Contains(t, report.ReportText, "HemoVita – Personalized Micronutrient Report")
	assert.Contains(t, report.ReportText, "5. Network-based nutrient interactions")
	assert.NotContains(t, report.ReportText, "Nutrient interaction network not available")

	require.NotNil(t, report.RiskProfile)
	assert.True(t, report.RiskProfile.Meta.CountryKnown)
	assert.Equal(t, "Women", report.RiskProfile.Meta.Population)
	for _, r := range report.RiskProfile.MicronutrientRisks {
		assert.GreaterOrEqual(t, r.PredictedRisk, 0.0)
		assert.LessOrEqual(t, r.PredictedRisk, 1.0)
	}
	assert.NotEmpty(t, report.RiskSummaryText)

	assert.Equal(t, 3, result.LowMarkers)
	assert.Equal(t, 0, result.ForcedPlaced)
	assert.True(t, result.RiskServed)
}

func TestBuildReport_UnknownCountryFallback(t *testing.T) {
	e := newTestEngine(t)

	report, _ := e.BuildReport(ReportRequest{
		Labs:    map[string]float64{"ferritin": 8},
		Patient: model.Patient{Age: 40, Sex: "male", Country: "Atlantis"},
	})

	require.NotNil(t, report.RiskProfile)
	assert.False(t, report.RiskProfile.Meta.CountryKnown)
	assert.True(t, report.RiskProfile.Meta.FallbackUsed)
	assert.Equal(t, "population_gender_or_global", report.RiskProfile.Meta.FallbackLevel)
}

func TestBuildReport_MissingGraphDegrades(t *testing.T) {
	cfg := testConfig()
	cfg.Data.RelationshipsPath = "../../data/does_not_exist.csv"

	e, err := New(context.Background(), cfg)
	require.NoError(t, err)
	e.Train()

	report, _ := e.BuildReport(ReportRequest{
		Labs:    map[string]float64{"ferritin": 8},
		Patient: model.Patient{Age: 30, Sex: "female"},
	})

	assert.Contains(t, report.ReportText, "Nutrient interaction network not available")
	require.Len(t, report.NetworkNotes, 1)
	assert.Contains(t, report.NetworkNotes[0], "was not found")
}

func TestSnapshotRoundTrip(t *testing.T) {
	first := newTestEngine(t)
	snap, err := first.Snapshot()
	require.NoError(t, err)

	second, err := New(context.Background(), testConfig())
	require.NoError(t, err)
	require.NoError(t, second.Restore(snap))

	in := model.Patient{Age: 29, Sex: "female", Country: "India"}
	p1 := first.RiskProfile(profileInput(in))
	p2 := second.RiskProfile(profileInput(in))
	require.NotNil(t, p1)
	require.NotNil(t, p2)
	assert.Equal(t, p1.MicronutrientRisks, p2.MicronutrientRisks)
}

func TestProfileInput_Defaults(t *testing.T) {
	pregnant := true

	in := profileInput(model.Patient{Age: 24, Sex: "female", Pregnant: &pregnant})
	assert.Equal(t, "Pregnant women", in.Population)
	assert.Equal(t, "Female", in.Gender)

	in = profileInput(model.Patient{Age: 51, Sex: "male"})
	assert.Equal(t, "Men", in.Population)

	in = profileInput(model.Patient{Age: 33})
	assert.Equal(t, "Adults", in.Population)
	assert.Equal(t, "All", in.Gender)

	in = profileInput(model.Patient{Age: 33, Sex: "female", Population: "Adolescents"})
	assert.Equal(t, "Adolescents", in.Population)
}
