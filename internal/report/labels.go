// Package report renders the narrative micronutrient report and the
// interaction notes that explain the supplement plan.
package report

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// humanLabels maps markers and supplement keys to display names.
var humanLabels = map[string]string{
	"Hemoglobin": "Hemoglobin",
	"MCV":        "Mean corpuscular volume (MCV)",
	"ferritin":   "Serum ferritin",

	// scheduling key for the anemia marker cluster
	"iron": "Iron",

	"vitamin_B12":   "Vitamin B12",
	"folate_plasma": "Folic Acid",
	"folate":        "Folate",
	"vitamin_D":     "Vitamin D (25(OH)D)",
	"vitamin_C":     "Vitamin C",
	"vitamin_E":     "Vitamin E",
	"vitamin_A":     "Vitamin A (retinol)",
	"vitamin_B6":    "Vitamin B6 (PLP)",
	"magnesium":     "Magnesium",
	"calcium":       "Calcium",
	"zinc":          "Zinc",
	"homocysteine":  "Homocysteine",
}

var titleCaser = cases.Title(language.English)

// Pretty returns the display name for a marker or supplement key,
// title-casing unknown keys.
func Pretty(key string) string {
	if label, ok := humanLabels[key]; ok {
		return label
	}
	return titleCaser.String(strings.ReplaceAll(key, "_", " "))
}
