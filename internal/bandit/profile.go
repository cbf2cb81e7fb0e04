package bandit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hemovita/hemovita-cli/internal/model"
)

const (
	fallbackLevelPopGender = "population_gender_or_global"

	// summaryThreshold is the minimum predicted risk an entry needs to
	// appear in the summary sentence.
	summaryThreshold = 0.15
	summaryTopN      = 3
)

// ProfileInput is one demographic risk query.
type ProfileInput struct {
	Country    string  `json:"country"`
	Population string  `json:"population"`
	Gender     string  `json:"gender"`
	Age        float64 `json:"age"`
}

// Profile answers a demographic risk query. If the country was seen in
// training, the frozen bandit parameters are used; otherwise the model
// falls back to baseline means and says so in the disclaimer. Unseen
// countries are a recoverable condition, never an error.
func (m *Model) Profile(in ProfileInput) *model.RiskProfile {
	country := strings.TrimSpace(in.Country)
	population := strings.TrimSpace(in.Population)
	if population == "" {
		population = "All"
	}
	gender := strings.TrimSpace(in.Gender)
	if gender == "" {
		gender = "All"
	}
	age := in.Age
	if age <= 0 {
		age = defaultAge
	}

	countryKnown := m.data.CountryKnown(country)

	var risks []model.RiskEntry
	var disclaimer, fallbackLevel string
	if countryKnown {
		risks = m.Predict(country, population, gender, age)
	} else {
		risks = m.fallbackRisks(population, gender)
		fallbackLevel = fallbackLevelPopGender
		disclaimer = fmt.Sprintf(
			"Country-specific data was not available for this profile. "+
				"Risk estimates are based on global patterns for individuals "+
				"in the same population group (%s, %s).",
			population, gender,
		)
	}

	return &model.RiskProfile{
		MicronutrientRisks: risks,
		SummaryText:        Summarize(risks),
		Disclaimer:         disclaimer,
		Meta: model.RiskMeta{
			Country:       country,
			Population:    population,
			Gender:        gender,
			Age:           age,
			CountryKnown:  countryKnown,
			FallbackUsed:  !countryKnown,
			FallbackLevel: fallbackLevel,
		},
	}
}

// fallbackRisks returns mean observed risk per micronutrient for the
// matching (population, gender) baseline, or the global baseline when
// no rows match, sorted descending.
func (m *Model) fallbackRisks(population, gender string) []model.RiskEntry {
	means := m.data.baselinePopGender[popGenderKey{population: population, gender: gender}]
	if len(means) == 0 {
		means = m.data.baselineGlobal
	}

	entries := make([]model.RiskEntry, 0, len(means))
	for _, action := range m.data.Actions() {
		if risk, ok := means[action]; ok {
			entries = append(entries, model.RiskEntry{Micronutrient: action, PredictedRisk: risk})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].PredictedRisk > entries[j].PredictedRisk
	})
	return entries
}

// Summarize renders the ranked risk list as a single sentence for the
// report surface.
func Summarize(risks []model.RiskEntry) string {
	if len(risks) == 0 {
		return "No micronutrient risks could be estimated from demographic profile."
	}

	var top []model.RiskEntry
	for _, r := range risks {
		if r.PredictedRisk >= summaryThreshold {
			top = append(top, r)
			if len(top) == summaryTopN {
				break
			}
		}
	}
	if len(top) == 0 {
		return "No major micronutrient risks predicted from demographics alone."
	}

	parts := make([]string, len(top))
	for i, r := range top {
		parts[i] = fmt.Sprintf("%s (~%.1f%%)", r.Micronutrient, r.PredictedRisk*100)
	}
	return "Highest predicted deficiency risks from demographics alone: " +
		strings.Join(parts, ", ") + "."
}
