package network

import "sort"

// BoosterBundle names the co-dosed helpers for one supplement key.
// Boosters keep first-seen order with duplicates removed.
type BoosterBundle struct {
	Target   string
	Boosters []string
}

// Rules holds the scheduling relations derived from the interaction
// graph: booster bundles per target and a symmetric antagonist
// relation. Immutable after DeriveRules.
type Rules struct {
	bundles     []BoosterBundle
	bundleIndex map[string]int
	antagonists map[string]map[string]bool
}

// DeriveRules computes booster bundles and antagonist sets from the
// edge list, collapsing node names through the alias table. Boost edges
// whose endpoints collapse to the same key are discarded (a self-boost
// is meaningless after bundling), and inhibit edges are always
// registered in both directions.
func DeriveRules(edges []Edge, aliases AliasTable) *Rules {
	r := &Rules{
		bundleIndex: make(map[string]int),
		antagonists: make(map[string]map[string]bool),
	}

	for _, e := range edges {
		sourceKey := aliases.Resolve(e.Source)
		targetKey := aliases.Resolve(e.Target)
		if sourceKey == "" || targetKey == "" || sourceKey == targetKey {
			continue
		}

		switch e.Effect {
		case EffectBoosts:
			i, ok := r.bundleIndex[targetKey]
			if !ok {
				i = len(r.bundles)
				r.bundleIndex[targetKey] = i
				r.bundles = append(r.bundles, BoosterBundle{Target: targetKey})
			}
			if !containsNode(r.bundles[i].Boosters, sourceKey) {
				r.bundles[i].Boosters = append(r.bundles[i].Boosters, sourceKey)
			}
		case EffectInhibits:
			r.addAntagonist(sourceKey, targetKey)
			r.addAntagonist(targetKey, sourceKey)
		}
		// other effects feed the explainer only
	}

	return r
}

func (r *Rules) addAntagonist(a, b string) {
	set, ok := r.antagonists[a]
	if !ok {
		set = make(map[string]bool)
		r.antagonists[a] = set
	}
	set[b] = true
}

// Bundles returns the booster bundles in derivation order.
func (r *Rules) Bundles() []BoosterBundle {
	return r.bundles
}

// Antagonistic reports whether a is registered as an antagonist of b.
// The relation is registered symmetrically, so one direction suffices;
// callers that check both directions are insuring against asymmetric
// registration, not relying on it.
func (r *Rules) Antagonistic(a, b string) bool {
	return r.antagonists[a][b]
}

// AvoidWith returns the sorted antagonists of key.
func (r *Rules) AvoidWith(key string) []string {
	set := r.antagonists[key]
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
