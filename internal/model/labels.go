// Package model defines the shared vocabulary for the decision engine:
// classification labels, schedule slots and plans, risk profiles, and
// run bookkeeping records.
package model

// Label is the classification result for a single lab marker.
type Label string

const (
	LabelLow     Label = "low"
	LabelNormal  Label = "normal"
	LabelHigh    Label = "high"
	LabelUnknown Label = "unknown"
)

// Slot is a named time of day for supplement intake.
type Slot string

const (
	SlotMorning Slot = "morning"
	SlotMidday  Slot = "midday"
	SlotEvening Slot = "evening"
)

// Slots lists the schedule slots in placement order. The last slot is
// the forced-fallback slot for supplements with no conflict-free home.
var Slots = []Slot{SlotMorning, SlotMidday, SlotEvening}
