package model

// Plan assigns supplement keys to time slots. Slot lists preserve
// insertion order; a key appears at most once per slot.
type Plan struct {
	Slots map[Slot][]string `json:"slots"`

	// Forced lists keys that had no conflict-free slot and were placed
	// into the last slot anyway. The antagonist invariant is knowingly
	// violated for these keys.
	Forced []string `json:"forced,omitempty"`
}

// NewPlan returns an empty plan with every slot initialized.
func NewPlan() Plan {
	slots := make(map[Slot][]string, len(Slots))
	for _, s := range Slots {
		slots[s] = []string{}
	}
	return Plan{Slots: slots}
}

// Contains reports whether key is already placed in slot.
func (p Plan) Contains(slot Slot, key string) bool {
	for _, k := range p.Slots[slot] {
		if k == key {
			return true
		}
	}
	return false
}

// SlotOf returns the first slot containing key, scanning in slot order.
func (p Plan) SlotOf(key string) (Slot, bool) {
	for _, s := range Slots {
		if p.Contains(s, key) {
			return s, true
		}
	}
	return "", false
}

// Empty reports whether no supplement was placed in any slot.
func (p Plan) Empty() bool {
	for _, s := range Slots {
		if len(p.Slots[s]) > 0 {
			return false
		}
	}
	return true
}
