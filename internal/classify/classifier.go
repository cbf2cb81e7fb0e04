// Package classify maps lab values to deficiency labels using the
// loaded reference ranges.
package classify

import (
	"math"

	"github.com/hemovita/hemovita-cli/internal/model"
	"github.com/hemovita/hemovita-cli/internal/refdata"
)

// Classifier labels marker values against a reference store. It is a
// pure read layer over frozen startup data and is safe for concurrent
// use.
type Classifier struct {
	ref *refdata.Store
}

// New creates a Classifier over the given reference store.
func New(ref *refdata.Store) *Classifier {
	return &Classifier{ref: ref}
}

// Classify labels a single marker value. A nil or NaN value, or a
// marker without a reference range, labels unknown — classification
// never fails on bad input. The bounds are exclusive: a value exactly
// at the low cutoff is normal.
func (c *Classifier) Classify(marker string, value *float64) model.Label {
	if value == nil || math.IsNaN(*value) {
		return model.LabelUnknown
	}

	rng, ok := c.ref.Range(marker)
	if !ok {
		return model.LabelUnknown
	}

	if rng.Low != nil && *value < *rng.Low {
		return model.LabelLow
	}
	if rng.High != nil && *value > *rng.High {
		return model.LabelHigh
	}
	return model.LabelNormal
}

// Panel labels every marker in a lab panel independently.
func (c *Classifier) Panel(labs map[string]float64) map[string]model.Label {
	labels := make(map[string]model.Label, len(labs))
	for marker, val := range labs {
		v := val
		labels[marker] = c.Classify(marker, &v)
	}
	return labels
}
