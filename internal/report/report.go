package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hemovita/hemovita-cli/internal/model"
)

// maxChainsPerTarget caps how many causal chains the narrative shows
// for one deficient marker. Presentation-only; the explainer itself
// returns everything.
const maxChainsPerTarget = 3

// Input carries everything the narrative needs, already computed by the
// decision components.
type Input struct {
	Labs         map[string]float64
	Labels       map[string]model.Label
	Patient      model.Patient
	Plan         model.Plan
	Foods        map[string][]model.FoodItem
	Explanations map[string][]string
	GraphLoaded  bool
}

// Generate renders the plain-text micronutrient report.
func Generate(in Input) string {
	header := []string{
		"HemoVita – Personalized Micronutrient Report",
		"===========================================",
		"",
		"Patient summary:",
		"- Age: " + orNA(formatAge(in.Patient.Age)),
		"- Sex: " + orNA(in.Patient.Sex),
		"- Pregnant: " + formatPregnant(in.Patient.Pregnant),
		"- Country: " + orNA(in.Patient.Country),
	}
	if in.Patient.Notes != "" {
		header = append(header, "- Notes: "+in.Patient.Notes)
	}

	parts := []string{
		strings.Join(header, "\n"),
		"",
		"1. Lab overview",
		"---------------",
		orDefault(labBlock(in.Labs, in.Labels), "No labs provided."),
		"",
		"2. Supplement plan (prototype)",
		"------------------------------",
		supplementBlock(in.Plan),
		"",
		"3. Food suggestions (per 100 g, highest nutrient density first)",
		"----------------------------------------------------------------",
		foodBlock(in.Foods),
		"",
		"4. Notes on cutoffs",
		"--------------------",
		"All low/normal/high classifications are derived from a unified cutoff table ",
		"(`micronutrient_cutoffs_structured.csv`) built from WHO guidelines, IZiNCG ",
		"zinc thresholds, and widely used clinical consensus cutoffs. This table can ",
		"be updated independently of the code to reflect new evidence.",
		"",
		"5. Network-based nutrient interactions",
		"--------------------------------------",
		networkBlock(in.Explanations, in.GraphLoaded),
	}

	return strings.Join(parts, "\n")
}

func labBlock(labs map[string]float64, labels map[string]model.Label) string {
	markers := make([]string, 0, len(labs))
	for m := range labs {
		markers = append(markers, m)
	}
	sort.Strings(markers)

	var lines []string
	for _, marker := range markers {
		label, ok := labels[marker]
		if !ok {
			label = model.LabelUnknown
		}
		lines = append(lines, fmt.Sprintf("- %s: %v → %s", Pretty(marker), labs[marker], label))
	}
	return strings.Join(lines, "\n")
}

func supplementBlock(plan model.Plan) string {
	var lines []string
	for _, slot := range model.Slots {
		keys := plan.Slots[slot]
		if len(keys) == 0 {
			continue
		}
		pretty := make([]string, len(keys))
		for i, k := range keys {
			pretty[i] = Pretty(k)
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", titleCaser.String(string(slot)), strings.Join(pretty, ", ")))
	}
	if len(lines) == 0 {
		return "No supplements recommended based on current labs."
	}
	return strings.Join(lines, "\n")
}

func foodBlock(foods map[string][]model.FoodItem) string {
	if len(foods) == 0 {
		return "No specific food suggestions (no matching entries for the flagged deficiencies)."
	}

	bundles := make([]string, 0, len(foods))
	for b := range foods {
		bundles = append(bundles, b)
	}
	sort.Strings(bundles)

	var chunks []string
	for _, bundle := range bundles {
		items := foods[bundle]
		if len(items) == 0 {
			continue
		}
		lines := []string{Pretty(bundle) + " – suggested food sources:"}
		for _, item := range items {
			var cat, amount string
			if item.Category != "" {
				cat = fmt.Sprintf(" [%s]", item.Category)
			}
			if item.ServingG != nil {
				amount = fmt.Sprintf(" – typical serving ~%g g", *item.ServingG)
			}
			lines = append(lines, fmt.Sprintf("  • %s%s%s", item.Name, cat, amount))
		}
		chunks = append(chunks, strings.Join(lines, "\n"))
	}
	return strings.Join(chunks, "\n\n")
}

func networkBlock(explanations map[string][]string, graphLoaded bool) string {
	if !graphLoaded {
		return "Nutrient interaction network not available (missing relationships file)."
	}
	if len(explanations) == 0 {
		return "No network-based causal chains found for the flagged deficiencies."
	}

	targets := make([]string, 0, len(explanations))
	for t := range explanations {
		targets = append(targets, t)
	}
	sort.Strings(targets)

	var lines []string
	for _, target := range targets {
		lines = append(lines, Pretty(target)+":")
		chains := explanations[target]
		if len(chains) > maxChainsPerTarget {
			chains = chains[:maxChainsPerTarget]
		}
		for _, chain := range chains {
			lines = append(lines, "  • "+chain)
		}
	}
	return strings.Join(lines, "\n")
}

func formatAge(age float64) string {
	if age <= 0 {
		return ""
	}
	return fmt.Sprintf("%g", age)
}

func formatPregnant(p *bool) string {
	if p == nil {
		return "N/A"
	}
	if *p {
		return "true"
	}
	return "false"
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
