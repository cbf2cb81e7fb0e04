package refdata

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
)

// Tier is one named cutoff for a marker. Tiers keep the order of their
// source rows, which fixes the tie-break order for role-based bound
// resolution.
type Tier struct {
	Name   string
	Cutoff float64
	Role   TierRole
}

// Range holds the resolved low/high bounds for a marker. A nil bound
// means the marker has no cutoff on that side.
type Range struct {
	Low  *float64
	High *float64
}

// Store holds the loaded cutoff tiers and resolved reference ranges,
// immutable after Load.
type Store struct {
	tiers  map[string][]Tier
	ranges map[string]Range
}

type cutoffRow struct {
	micronutrient   string
	biomarker       string
	populationGroup string
	unit            string
	cutoffType      string
	cutoffValue     float64
}

// Load reads the structured cutoff table (.csv or .xlsx) and builds the
// per-marker tier tables and reference ranges. An unreadable or empty
// table is an error: the classifier must never serve with partial
// reference data.
func Load(path string) (*Store, error) {
	rows, err := readCutoffRows(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, eris.Errorf("refdata: cutoff table %s is empty", path)
	}

	s := &Store{
		tiers:  make(map[string][]Tier),
		ranges: make(map[string]Range),
	}

	for marker, spec := range markerSpecs {
		tiers := tiersForSpec(rows, spec)
		if len(tiers) == 0 {
			continue
		}
		s.tiers[marker] = tiers

		rng := resolveRange(tiers, spec)
		if rng.Low != nil || rng.High != nil {
			s.ranges[marker] = rng
		}
	}

	zap.L().Info("refdata: cutoff table loaded",
		zap.String("path", path),
		zap.Int("rows", len(rows)),
		zap.Int("markers", len(s.ranges)),
	)

	return s, nil
}

// Range returns the resolved reference range for marker.
func (s *Store) Range(marker string) (Range, bool) {
	r, ok := s.ranges[marker]
	return r, ok
}

// Tiers returns the cutoff tiers for marker in source-row order.
func (s *Store) Tiers(marker string) []Tier {
	return s.tiers[marker]
}

// Markers lists all markers with a resolved range, sorted.
func (s *Store) Markers() []string {
	out := make([]string, 0, len(s.ranges))
	for m := range s.ranges {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Spec returns the marker spec for marker, if one is declared.
func Spec(marker string) (MarkerSpec, bool) {
	spec, ok := markerSpecs[marker]
	return spec, ok
}

// tiersForSpec filters rows on the spec's selector columns and collapses
// them to one tier per cutoff name, first row winning.
func tiersForSpec(rows []cutoffRow, spec MarkerSpec) []Tier {
	seen := make(map[string]bool)
	var tiers []Tier
	for _, r := range rows {
		if r.micronutrient != spec.Micronutrient || r.biomarker != spec.Biomarker {
			continue
		}
		if spec.PopulationGroup != "" && r.populationGroup != spec.PopulationGroup {
			continue
		}
		if spec.Unit != "" && r.unit != spec.Unit {
			continue
		}
		if seen[r.cutoffType] {
			continue
		}
		seen[r.cutoffType] = true
		tiers = append(tiers, Tier{
			Name:   r.cutoffType,
			Cutoff: r.cutoffValue,
			Role:   roleFor(r.cutoffType),
		})
	}
	return tiers
}

// roleFor tags a tier name with its semantic role using the declared
// keyword priority list.
func roleFor(name string) TierRole {
	lower := strings.ToLower(name)
	for _, kw := range roleKeywords {
		if strings.Contains(lower, kw.fragment) {
			return kw.role
		}
	}
	return RoleNeutral
}

// resolveRange picks the low and high bounds for a marker: the spec's
// explicit tier name wins; otherwise the first tier in row order with
// the matching role.
func resolveRange(tiers []Tier, spec MarkerSpec) Range {
	var rng Range
	rng.Low = pickBound(tiers, spec.LowTier, RoleLowIndicator)
	rng.High = pickBound(tiers, spec.HighTier, RoleHighIndicator)
	return rng
}

func pickBound(tiers []Tier, explicit string, role TierRole) *float64 {
	if explicit != "" {
		for _, t := range tiers {
			if t.Name == explicit {
				v := t.Cutoff
				return &v
			}
		}
	}
	for _, t := range tiers {
		if t.Role == role {
			v := t.Cutoff
			return &v
		}
	}
	return nil
}

func readCutoffRows(path string) ([]cutoffRow, error) {
	var records [][]string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		records, err = readXLSX(path)
	default:
		records, err = readCSV(path)
	}
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, eris.Errorf("refdata: cutoff table %s has no header", path)
	}

	col := indexColumns(records[0])
	for _, name := range []string{"micronutrient", "biomarker", "population_group", "unit", "cutoff_type", "cutoff_value"} {
		if _, ok := col[name]; !ok {
			return nil, eris.Errorf("refdata: cutoff table missing column %q", name)
		}
	}

	var rows []cutoffRow
	for _, rec := range records[1:] {
		if len(rec) < len(records[0]) {
			continue
		}
		val, err := strconv.ParseFloat(strings.TrimSpace(rec[col["cutoff_value"]]), 64)
		if err != nil {
			continue // non-numeric cutoffs carry no classification value
		}
		rows = append(rows, cutoffRow{
			micronutrient:   strings.TrimSpace(rec[col["micronutrient"]]),
			biomarker:       strings.TrimSpace(rec[col["biomarker"]]),
			populationGroup: strings.TrimSpace(rec[col["population_group"]]),
			unit:            strings.TrimSpace(rec[col["unit"]]),
			cutoffType:      strings.TrimSpace(rec[col["cutoff_type"]]),
			cutoffValue:     val,
		})
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "refdata: open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "refdata: parse %s", path)
		}
		records = append(records, rec)
	}
	return records, nil
}

// readXLSX reads the first sheet of a reference workbook.
func readXLSX(path string) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "refdata: open %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("refdata: workbook %s has no sheets", path)
	}

	var records [][]string
	for _, row := range f.Sheets[0].Rows {
		cells := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			cells[i] = c.String()
		}
		records = append(records, cells)
	}
	return records, nil
}

func indexColumns(header []string) map[string]int {
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return col
}
