// Package schedule assigns supplements for deficient markers to time
// slots, keeping antagonists apart and co-locating boosters.
package schedule

import (
	"sort"

	"go.uber.org/zap"

	"github.com/hemovita/hemovita-cli/internal/model"
	"github.com/hemovita/hemovita-cli/internal/network"
)

// Scheduler builds supplement plans from classification labels using
// the derived interaction rules. Pure over frozen startup data; safe
// for concurrent use.
type Scheduler struct {
	rules   *network.Rules
	aliases network.AliasTable
}

// New creates a Scheduler.
func New(rules *network.Rules, aliases network.AliasTable) *Scheduler {
	return &Scheduler{rules: rules, aliases: aliases}
}

// Build produces a plan for the given labels. Markers labeled low are
// collapsed to supplement keys in sorted marker order (labels arrive as
// an unordered map; sorting fixes the placement order), deduplicated,
// and placed into the first conflict-free slot. A key with no
// conflict-free slot is forced into the last slot and reported via
// Plan.Forced. A second pass co-locates each deficient target's known
// boosters whether or not the boosters are themselves deficient.
func (s *Scheduler) Build(labels map[string]model.Label) model.Plan {
	plan := model.NewPlan()

	// Deficient markers, collapsed and deduplicated in stable order.
	markers := make([]string, 0, len(labels))
	for m, l := range labels {
		if l == model.LabelLow {
			markers = append(markers, m)
		}
	}
	sort.Strings(markers)

	var deficient []string
	deficientSet := make(map[string]bool)
	for _, m := range markers {
		key := s.aliases.Resolve(m)
		if !deficientSet[key] {
			deficientSet[key] = true
			deficient = append(deficient, key)
		}
	}

	// Pass 1: primary placement.
	last := model.Slots[len(model.Slots)-1]
	for _, key := range deficient {
		placed := false
		for _, slot := range model.Slots {
			if s.canPlace(plan, slot, key) {
				plan.Slots[slot] = append(plan.Slots[slot], key)
				placed = true
				break
			}
		}
		if !placed {
			// Documented degenerate fallback: the key lands in the last
			// slot even though it conflicts there.
			plan.Slots[last] = append(plan.Slots[last], key)
			plan.Forced = append(plan.Forced, key)
			zap.L().Warn("schedule: forced placement violates antagonist separation",
				zap.String("key", key),
				zap.String("slot", string(last)),
				zap.Strings("slot_contents", plan.Slots[last]),
			)
		}
	}

	// Pass 2: co-locate boosters with their deficient targets.
	for _, bundle := range s.rules.Bundles() {
		if !deficientSet[bundle.Target] {
			continue
		}
		slot, ok := plan.SlotOf(bundle.Target)
		if !ok {
			continue
		}
		for _, booster := range bundle.Boosters {
			key := s.aliases.Resolve(booster)
			if plan.Contains(slot, key) {
				continue
			}
			if s.canPlace(plan, slot, key) {
				plan.Slots[slot] = append(plan.Slots[slot], key)
			}
		}
	}

	return plan
}

// canPlace reports whether key can join slot without sharing it with an
// antagonist. Both directions are checked even though rule derivation
// registers antagonists symmetrically; the second check is insurance
// against an asymmetric registration source, not load-bearing logic.
func (s *Scheduler) canPlace(plan model.Plan, slot model.Slot, key string) bool {
	for _, existing := range plan.Slots[slot] {
		if s.rules.Antagonistic(key, existing) || s.rules.Antagonistic(existing, key) {
			return false
		}
	}
	return true
}
