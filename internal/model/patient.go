package model

// Patient holds the demographic context submitted alongside lab values.
type Patient struct {
	Age        float64 `json:"age"`
	Sex        string  `json:"sex"` // "female" / "male" / ""
	Pregnant   *bool   `json:"pregnant,omitempty"`
	Country    string  `json:"country,omitempty"`
	Population string  `json:"population,omitempty"` // overrides the sex-derived default
	Notes      string  `json:"notes,omitempty"`
}

// FoodItem is one suggested food source for a nutrient bundle.
type FoodItem struct {
	Name     string   `json:"name"`
	ServingG *float64 `json:"serving_g,omitempty"`
	Category string   `json:"category,omitempty"`
}

// Report is the full decision-pipeline output for one lab panel.
type Report struct {
	Labels         map[string]Label      `json:"labels"`
	SupplementPlan map[Slot][]string     `json:"supplement_plan"`
	Foods          map[string][]FoodItem `json:"foods"`
	NetworkNotes   []string              `json:"network_notes"`
	ReportText     string                `json:"report_text"`

	RiskProfile        *ReportRiskProfile `json:"risk_profile,omitempty"`
	MicronutrientRisks []RiskEntry        `json:"micronutrient_risks,omitempty"`
	RiskSummaryText    string             `json:"risk_summary_text,omitempty"`
}
