package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hemovita/hemovita-cli/internal/model"
	"github.com/hemovita/hemovita-cli/internal/network"
)

// PlanNotes explains the plan using the relationship rows: why some
// nutrients were co-dosed (boost edges whose endpoints share a slot)
// and why some were separated (inhibit edges whose endpoints never
// share a slot). A nil edge list means the relationship table was
// never loaded.
func PlanNotes(plan model.Plan, edges []network.Edge, aliases network.AliasTable) []string {
	if edges == nil {
		return []string{
			"Supplement timing uses an internal nutrient interaction network, " +
				"but the relationships file (network_relationships.csv) was not found.",
		}
	}
	if len(edges) == 0 {
		return []string{
			"Supplement timing uses an internal nutrient interaction network, " +
				"but no relationships were found in network_relationships.csv.",
		}
	}

	// Slot membership maps from the plan.
	nutrientSlots := make(map[string]map[model.Slot]bool)
	for _, slot := range model.Slots {
		for _, key := range plan.Slots[slot] {
			if key == "" {
				continue
			}
			if nutrientSlots[key] == nil {
				nutrientSlots[key] = make(map[model.Slot]bool)
			}
			nutrientSlots[key][slot] = true
		}
	}

	var notes []string
	seen := make(map[string]bool)
	addOnce := func(dedupKey, note string) {
		if !seen[dedupKey] {
			seen[dedupKey] = true
			notes = append(notes, note)
		}
	}

	// Co-dosed boosters: both endpoints in the same slot.
	for _, e := range edges {
		if e.Effect != network.EffectBoosts {
			continue
		}
		src := aliases.Resolve(e.Source)
		tgt := aliases.Resolve(e.Target)
		if src == tgt {
			continue
		}
		if nutrientSlots[src] == nil || nutrientSlots[tgt] == nil {
			continue
		}

		for _, slot := range model.Slots {
			if !nutrientSlots[src][slot] || !nutrientSlots[tgt][slot] {
				continue
			}
			snippet := e.Notes
			if snippet == "" {
				snippet = fmt.Sprintf("%s helps the effectiveness of %s.", Pretty(src), Pretty(tgt))
			}
			addOnce(
				"boost|"+string(slot)+"|"+pairKey(src, tgt),
				fmt.Sprintf("%s and %s are scheduled together in the %s slot because %s%s.",
					Pretty(src), Pretty(tgt), slot, snippet, evidenceSuffix(e.Confidence)),
			)
		}
	}

	// Separated antagonists: both endpoints in the plan, no shared slot.
	for _, e := range edges {
		if e.Effect != network.EffectInhibits {
			continue
		}
		src := aliases.Resolve(e.Source)
		tgt := aliases.Resolve(e.Target)
		srcSlots := nutrientSlots[src]
		tgtSlots := nutrientSlots[tgt]
		if len(srcSlots) == 0 || len(tgtSlots) == 0 {
			continue
		}
		if slotsOverlap(srcSlots, tgtSlots) {
			continue
		}

		snippet := e.Notes
		if snippet == "" {
			snippet = fmt.Sprintf("%s can reduce the absorption or effect of %s when taken together.",
				Pretty(tgt), Pretty(src))
		}
		addOnce(
			"inhibit|"+pairKey(src, tgt),
			fmt.Sprintf("%s is kept in the %s slot and %s in the %s slot to avoid interaction: %s%s.",
				Pretty(src), slotsPhrase(srcSlots), Pretty(tgt), slotsPhrase(tgtSlots),
				snippet, evidenceSuffix(e.Confidence)),
		)
	}

	if len(notes) == 0 {
		notes = append(notes,
			"Supplement timing groups compatible nutrients and separates antagonistic ones "+
				"based on the nutrient interaction network (network_relationships.csv).")
	}
	return notes
}

func evidenceSuffix(confidence string) string {
	if confidence == "" {
		return ""
	}
	return fmt.Sprintf(" (evidence: %s)", confidence)
}

func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

func slotsOverlap(a, b map[model.Slot]bool) bool {
	for slot := range a {
		if b[slot] {
			return true
		}
	}
	return false
}

// slotsPhrase renders a slot set as "morning", "midday and morning",
// or "evening, midday, and morning" (sorted).
func slotsPhrase(slots map[model.Slot]bool) string {
	names := make([]string, 0, len(slots))
	for s := range slots {
		names = append(names, string(s))
	}
	sort.Strings(names)

	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
	}
}
