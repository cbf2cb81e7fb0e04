// Package refdata loads the structured micronutrient cutoff table and
// resolves per-marker reference ranges from it.
package refdata

// TierRole classifies what a named cutoff tier indicates. Roles are
// assigned once at load time from the tier name; classification resolves
// bounds by role lookup, never by scanning names at query time.
type TierRole int

const (
	RoleNeutral TierRole = iota
	RoleLowIndicator
	RoleHighIndicator
)

// MarkerSpec selects the cutoff rows relevant to one lab marker and
// optionally names the exact tiers holding its low/high bounds.
type MarkerSpec struct {
	Micronutrient   string
	Biomarker       string
	PopulationGroup string
	Unit            string
	LowTier         string // preferred tier name for the low bound
	HighTier        string // preferred tier name for the high bound
}

// markerSpecs maps panel marker names to the cutoff rows that define
// them. Marker names match the keys callers use in the labs payload.
var markerSpecs = map[string]MarkerSpec{
	// anemia and RBC indices
	"Hemoglobin": {
		Micronutrient:   "iron_related_anemia",
		Biomarker:       "hemoglobin",
		PopulationGroup: "nonpregnant_women",
		Unit:            "g/dL",
		LowTier:         "anemia",
	},
	"MCV": {
		Micronutrient:   "iron_related_anemia",
		Biomarker:       "MCV",
		PopulationGroup: "adults",
		Unit:            "fL",
		LowTier:         "microcytosis",
		HighTier:        "macrocytosis",
	},

	// iron status
	"ferritin": {
		Micronutrient:   "iron",
		Biomarker:       "serum_ferritin",
		PopulationGroup: "nonpregnant_adults",
		Unit:            "µg/L",
		LowTier:         "deficiency",
	},

	// B12 / folate
	"vitamin_B12": {
		Micronutrient:   "vitamin_B12",
		Biomarker:       "serum_B12",
		PopulationGroup: "adults",
		Unit:            "pg/mL",
		LowTier:         "deficiency",
	},
	"folate_plasma": {
		Micronutrient:   "folate",
		Biomarker:       "plasma_or_serum_folate",
		PopulationGroup: "adults",
		Unit:            "nmol/L",
		LowTier:         "deficiency",
	},

	// fat-soluble vitamins
	"vitamin_D": {
		Micronutrient:   "vitamin_D",
		Biomarker:       "serum_25OHD",
		PopulationGroup: "general",
		Unit:            "nmol/L",
		LowTier:         "deficiency",
	},
	"vitamin_A": {
		Micronutrient:   "vitamin_A",
		Biomarker:       "serum_retinol",
		PopulationGroup: "children_and_adults_nonpregnant",
		Unit:            "µmol/L",
		LowTier:         "deficiency",
	},
	"vitamin_E": {
		Micronutrient:   "vitamin_E",
		Biomarker:       "plasma_alpha_tocopherol",
		PopulationGroup: "adults",
		Unit:            "µmol/L",
		LowTier:         "deficiency",
	},

	// water-soluble vitamins
	"vitamin_C": {
		Micronutrient:   "vitamin_C",
		Biomarker:       "plasma_vitamin_C",
		PopulationGroup: "adults",
		Unit:            "µmol/L",
		LowTier:         "deficiency",
	},
	"vitamin_B6": {
		Micronutrient:   "vitamin_B6",
		Biomarker:       "plasma_PLP",
		PopulationGroup: "adults",
		Unit:            "nmol/L",
		LowTier:         "deficiency",
	},

	// minerals
	"magnesium": {
		Micronutrient:   "magnesium",
		Biomarker:       "serum_magnesium",
		PopulationGroup: "adults",
		Unit:            "mmol/L",
		LowTier:         "deficiency",
	},
	"calcium": {
		Micronutrient:   "calcium",
		Biomarker:       "serum_total_calcium",
		PopulationGroup: "adults",
		Unit:            "mmol/L",
		LowTier:         "low",
	},
	"zinc": {
		Micronutrient:   "zinc",
		Biomarker:       "plasma_or_serum_zinc",
		PopulationGroup: "females_over_10",
		Unit:            "µg/dL",
		LowTier:         "deficiency",
	},

	// functional B12/folate marker, flagged on the high side
	"homocysteine": {
		Micronutrient:   "homocysteine_related",
		Biomarker:       "plasma_homocysteine",
		PopulationGroup: "adults",
		Unit:            "µmol/L",
		HighTier:        "high_mild",
	},
}

// roleKeywords assigns tier roles by name fragment, in declared priority
// order. First match wins; unmatched tiers are neutral.
var roleKeywords = []struct {
	fragment string
	role     TierRole
}{
	{"deficiency", RoleLowIndicator},
	{"anemia", RoleLowIndicator},
	{"microcyt", RoleLowIndicator},
	{"ntd_insufficient", RoleLowIndicator},
	{"low", RoleLowIndicator},
	{"high", RoleHighIndicator},
	{"macrocyt", RoleHighIndicator},
	{"elevated", RoleHighIndicator},
}
