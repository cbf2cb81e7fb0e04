// Package foods suggests food sources for flagged deficiencies from a
// curated USDA-derived table.
package foods

import (
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/hemovita/hemovita-cli/internal/model"
)

type row struct {
	food     string
	category string
	bundle   string
	servingG *float64
	dietTag  string
}

// Catalog holds the curated food table in source order. Immutable after
// Load.
type Catalog struct {
	rows []row
}

// Load reads the curated food table. Food suggestions are an optional
// feature; callers decide whether a missing file degrades or fails.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "foods: open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, eris.Wrapf(err, "foods: read header %s", path)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range []string{"food", "bundle"} {
		if _, ok := col[name]; !ok {
			return nil, eris.Errorf("foods: table missing column %q", name)
		}
	}

	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	c := &Catalog{}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "foods: parse %s", path)
		}

		var servingG *float64
		if v, err := strconv.ParseFloat(field(rec, "typical_serve_g"), 64); err == nil {
			servingG = &v
		}
		c.rows = append(c.rows, row{
			food:     field(rec, "food"),
			category: field(rec, "category"),
			bundle:   field(rec, "bundle"),
			servingG: servingG,
			dietTag:  field(rec, "diet_tag"),
		})
	}

	zap.L().Info("foods: catalog loaded", zap.String("path", path), zap.Int("rows", len(c.rows)))
	return c, nil
}

// Suggest returns top foods per nutrient bundle for the flagged
// markers. Deficiencies trigger on low; homocysteine-style functional
// markers trigger on high via their bundle mapping. Bundles keep the
// curated row order; repeated foods within a bundle are dropped.
func (c *Catalog) Suggest(labels map[string]model.Label, bundles map[string]string, topN int, dietFilter string) map[string][]model.FoodItem {
	out := make(map[string][]model.FoodItem)
	if c == nil || topN <= 0 {
		return out
	}

	// Markers in sorted order so bundle selection is deterministic.
	markers := make([]string, 0, len(labels))
	for m := range labels {
		markers = append(markers, m)
	}
	sort.Strings(markers)

	var needed []string
	seen := make(map[string]bool)
	for _, marker := range markers {
		label := labels[marker]
		if marker == "homocysteine" {
			if label != model.LabelHigh {
				continue
			}
		} else if label != model.LabelLow {
			continue
		}

		bundle, ok := bundles[marker]
		if !ok || bundle == "" {
			continue
		}
		if !seen[bundle] {
			seen[bundle] = true
			needed = append(needed, bundle)
		}
	}

	for _, bundle := range needed {
		items := c.topForBundle(bundle, topN, dietFilter)
		if len(items) > 0 {
			out[bundle] = items
		}
	}
	return out
}

func (c *Catalog) topForBundle(bundle string, topN int, dietFilter string) []model.FoodItem {
	filter := strings.ToLower(strings.TrimSpace(dietFilter))
	seenFood := make(map[string]bool)

	var items []model.FoodItem
	for _, r := range c.rows {
		if r.bundle != bundle {
			continue
		}
		if filter != "" && !strings.Contains(strings.ToLower(r.dietTag), filter) {
			continue
		}
		if seenFood[r.food] {
			continue
		}
		seenFood[r.food] = true

		items = append(items, model.FoodItem{
			Name:     r.food,
			ServingG: r.servingG,
			Category: r.category,
		})
		if len(items) == topN {
			break
		}
	}
	return items
}
