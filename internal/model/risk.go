package model

// RiskEntry is one micronutrient with its predicted deficiency risk.
type RiskEntry struct {
	Micronutrient string  `json:"micronutrient"`
	PredictedRisk float64 `json:"predicted_risk"` // always in [0,1]
}

// RiskMeta echoes the queried demographics plus how the estimate was
// produced.
type RiskMeta struct {
	Country       string  `json:"country"`
	Population    string  `json:"population"`
	Gender        string  `json:"gender"`
	Age           float64 `json:"age"`
	CountryKnown  bool    `json:"country_known"`
	FallbackUsed  bool    `json:"fallback_used"`
	FallbackLevel string  `json:"fallback_level,omitempty"`
}

// RiskProfile is the risk model output for one demographic query.
type RiskProfile struct {
	MicronutrientRisks []RiskEntry `json:"micronutrient_risks"`
	SummaryText        string      `json:"summary_text"`
	Disclaimer         string      `json:"disclaimer,omitempty"`
	Meta               RiskMeta    `json:"meta"`
}

// RiskBucket buckets an overall risk value for the report surface.
type RiskBucket string

const (
	RiskBucketLow      RiskBucket = "low"
	RiskBucketModerate RiskBucket = "moderate"
	RiskBucketHigh     RiskBucket = "high"
)

// ReportRiskProfile is the report-shaped view of a RiskProfile.
type ReportRiskProfile struct {
	OverallRisk            float64     `json:"overall_risk"`
	RiskBucket             RiskBucket  `json:"risk_bucket"`
	HighRiskMicronutrients []RiskEntry `json:"high_risk_micronutrients"`
	MicronutrientRisks     []RiskEntry `json:"micronutrient_risks"`
	SummaryText            string      `json:"summary_text"`
	Meta                   RiskMeta    `json:"meta"`
}
