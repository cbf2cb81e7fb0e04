// Package bandit implements the demographic deficiency-risk model: a
// LinUCB contextual bandit trained offline on aggregated historical
// data, served frozen, with a baseline fallback for unseen countries.
package bandit

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// defaultAge fills rows and queries without a usable age.
const defaultAge = 15.0

// ContextDim is the encoded context vector length: three categorical
// codes plus scaled age.
const ContextDim = 4

// Context is one demographic key observed in the historical data.
type Context struct {
	Country    string
	Population string
	Gender     string
	Age        float64
}

type ctxAction struct {
	ctx    Context
	action string
}

type popGenderKey struct {
	population string
	gender     string
}

// Dataset is the aggregated historical risk environment the bandit
// trains against, plus the baseline tables used for fallback.
// Immutable after Load.
type Dataset struct {
	contexts    []Context
	avail       map[Context][]string
	risk        map[ctxAction]float64
	actions     []string // sorted; fixes action insertion order
	actionIndex map[string]int

	countryCode    map[string]int
	populationCode map[string]int
	genderCode     map[string]int

	baselinePopGender map[popGenderKey]map[string]float64
	baselineGlobal    map[string]float64
}

type riskRow struct {
	country       string
	population    string
	gender        string
	micronutrient string
	age           float64
	trueRisk      float64
}

// LoadDataset reads the historical risk table. Risk values on a
// [0,100] scale are normalized to [0,1]; rows without a risk value are
// dropped; missing ages fill with the default. An unreadable or empty
// table is fatal: the risk model must not serve untrained.
func LoadDataset(path string) (*Dataset, error) {
	rows, err := readRiskRows(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, eris.Errorf("bandit: risk data %s has no usable rows", path)
	}

	d := &Dataset{
		avail:             make(map[Context][]string),
		risk:              make(map[ctxAction]float64),
		actionIndex:       make(map[string]int),
		baselinePopGender: make(map[popGenderKey]map[string]float64),
		baselineGlobal:    make(map[string]float64),
	}

	d.buildCategoryCodes(rows)
	d.buildEnvironment(rows)
	d.buildBaselines(rows)

	zap.L().Info("bandit: risk dataset loaded",
		zap.String("path", path),
		zap.Int("rows", len(rows)),
		zap.Int("contexts", len(d.contexts)),
		zap.Int("actions", len(d.actions)),
	)

	return d, nil
}

// Actions returns the known micronutrients in fixed (sorted) order.
func (d *Dataset) Actions() []string {
	return d.actions
}

// Contexts returns the training contexts in first-appearance order.
func (d *Dataset) Contexts() []Context {
	return d.contexts
}

// CountryKnown reports whether country appeared in the training data.
// This is the sole trigger for the fallback path.
func (d *Dataset) CountryKnown(country string) bool {
	_, ok := d.countryCode[strings.TrimSpace(country)]
	return ok
}

// Encode maps a demographic context to its feature vector: categorical
// codes (unseen values encode as -1) plus age scaled to roughly [0,1].
func (d *Dataset) Encode(country, population, gender string, age float64) []float64 {
	code := func(m map[string]int, v string) float64 {
		if i, ok := m[strings.TrimSpace(v)]; ok {
			return float64(i)
		}
		return -1
	}
	return []float64{
		code(d.countryCode, country),
		code(d.populationCode, population),
		code(d.genderCode, gender),
		age / 100.0,
	}
}

// TrueRisk returns the aggregated deficiency probability for a
// (context, action) pair observed in training data.
func (d *Dataset) TrueRisk(ctx Context, action string) (float64, bool) {
	r, ok := d.risk[ctxAction{ctx: ctx, action: action}]
	return r, ok
}

// AvailableActions returns the micronutrients observed for ctx.
func (d *Dataset) AvailableActions(ctx Context) []string {
	return d.avail[ctx]
}

func (d *Dataset) buildCategoryCodes(rows []riskRow) {
	uniqueSorted := func(pick func(riskRow) string) map[string]int {
		set := make(map[string]bool)
		for _, r := range rows {
			set[pick(r)] = true
		}
		vals := make([]string, 0, len(set))
		for v := range set {
			vals = append(vals, v)
		}
		sort.Strings(vals)
		codes := make(map[string]int, len(vals))
		for i, v := range vals {
			codes[v] = i
		}
		return codes
	}

	d.countryCode = uniqueSorted(func(r riskRow) string { return r.country })
	d.populationCode = uniqueSorted(func(r riskRow) string { return r.population })
	d.genderCode = uniqueSorted(func(r riskRow) string { return r.gender })
}

// buildEnvironment aggregates rows to mean risk per (context, action)
// and records which actions each context offers.
func (d *Dataset) buildEnvironment(rows []riskRow) {
	type agg struct {
		sum   float64
		count int
	}
	sums := make(map[ctxAction]*agg)
	var order []ctxAction

	actionSet := make(map[string]bool)
	for _, r := range rows {
		key := ctxAction{
			ctx:    Context{Country: r.country, Population: r.population, Gender: r.gender, Age: r.age},
			action: r.micronutrient,
		}
		a, ok := sums[key]
		if !ok {
			a = &agg{}
			sums[key] = a
			order = append(order, key)
		}
		a.sum += r.trueRisk
		a.count++
		actionSet[r.micronutrient] = true
	}

	d.actions = make([]string, 0, len(actionSet))
	for a := range actionSet {
		d.actions = append(d.actions, a)
	}
	sort.Strings(d.actions)
	for i, a := range d.actions {
		d.actionIndex[a] = i
	}

	seenCtx := make(map[Context]bool)
	for _, key := range order {
		a := sums[key]
		d.risk[key] = a.sum / float64(a.count)
		if !seenCtx[key.ctx] {
			seenCtx[key.ctx] = true
			d.contexts = append(d.contexts, key.ctx)
		}
		d.avail[key.ctx] = append(d.avail[key.ctx], key.action)
	}
}

func (d *Dataset) buildBaselines(rows []riskRow) {
	type agg struct {
		sum   float64
		count int
	}
	pg := make(map[popGenderKey]map[string]*agg)
	global := make(map[string]*agg)

	for _, r := range rows {
		key := popGenderKey{population: r.population, gender: r.gender}
		byAction, ok := pg[key]
		if !ok {
			byAction = make(map[string]*agg)
			pg[key] = byAction
		}
		a, ok := byAction[r.micronutrient]
		if !ok {
			a = &agg{}
			byAction[r.micronutrient] = a
		}
		a.sum += r.trueRisk
		a.count++

		g, ok := global[r.micronutrient]
		if !ok {
			g = &agg{}
			global[r.micronutrient] = g
		}
		g.sum += r.trueRisk
		g.count++
	}

	for key, byAction := range pg {
		means := make(map[string]float64, len(byAction))
		for action, a := range byAction {
			means[action] = a.sum / float64(a.count)
		}
		d.baselinePopGender[key] = means
	}
	for action, g := range global {
		d.baselineGlobal[action] = g.sum / float64(g.count)
	}
}

func readRiskRows(path string) ([]riskRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "bandit: open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, eris.Wrapf(err, "bandit: read header %s", path)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range []string{"country", "population", "gender", "micronutrient"} {
		if _, ok := col[name]; !ok {
			return nil, eris.Errorf("bandit: risk data missing column %q", name)
		}
	}
	riskCol, ok := col["p_deficiency_primary"]
	if !ok {
		if riskCol, ok = col["true_risk"]; !ok {
			return nil, eris.New("bandit: risk data missing column \"P_Deficiency_Primary\"")
		}
	}
	ageCol, hasAge := col["age"]

	field := func(rec []string, i int) string {
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var rows []riskRow
	maxRisk := 0.0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "bandit: parse %s", path)
		}

		risk, err := strconv.ParseFloat(field(rec, riskCol), 64)
		if err != nil || math.IsNaN(risk) {
			continue // rows without a primary deficiency probability are dropped
		}

		age := defaultAge
		if hasAge {
			if v, err := strconv.ParseFloat(field(rec, ageCol), 64); err == nil && !math.IsNaN(v) {
				age = v
			}
		}

		rows = append(rows, riskRow{
			country:       field(rec, col["country"]),
			population:    field(rec, col["population"]),
			gender:        field(rec, col["gender"]),
			micronutrient: field(rec, col["micronutrient"]),
			age:           age,
			trueRisk:      risk,
		})
		if risk > maxRisk {
			maxRisk = risk
		}
	}

	// Percent-scale tables normalize to probabilities.
	if maxRisk > 1.0 {
		for i := range rows {
			rows[i].trueRisk /= 100.0
		}
	}

	return rows, nil
}
