package bandit

import (
	"encoding/json"
	"math"
	"math/rand"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/hemovita/hemovita-cli/internal/model"
)

// params holds one action's ridge design matrix and response vector.
// The point estimate is theta = A⁻¹·b.
type params struct {
	A [][]float64 `json:"a"`
	B []float64   `json:"b"`
}

// Model is a LinUCB contextual bandit over the dataset's actions.
// Parameters mutate only inside Train; afterward the model is frozen
// and Predict is safe for concurrent use.
type Model struct {
	data    *Dataset
	alpha   float64
	actions []params
	trained bool
	steps   int
	seed    int64
}

// New creates an untrained model: per-action A initialized to the
// identity and b to zero.
func New(data *Dataset, alpha float64) *Model {
	m := &Model{
		data:    data,
		alpha:   alpha,
		actions: make([]params, len(data.Actions())),
	}
	for i := range m.actions {
		m.actions[i] = params{A: identity(ContextDim), B: zeros(ContextDim)}
	}
	return m
}

// Trained reports whether Train (or a snapshot restore) completed.
func (m *Model) Trained() bool {
	return m.trained
}

// Train runs the offline LinUCB loop: sample a training context, pick
// the admissible action with the highest UCB score, draw a Bernoulli
// reward from the aggregated true risk, and update that action's
// parameters. This is the only phase that mutates the model.
func (m *Model) Train(steps int, seed int64) {
	contexts := m.data.Contexts()
	if len(contexts) == 0 {
		zap.L().Warn("bandit: no training contexts, skipping training")
		m.trained = true
		return
	}

	rng := rand.New(rand.NewSource(seed))
	var rewardSum float64

	for t := 1; t <= steps; t++ {
		ctx := contexts[rng.Intn(len(contexts))]
		x := m.data.Encode(ctx.Country, ctx.Population, ctx.Gender, ctx.Age)

		action := m.chooseUCB(x, m.data.AvailableActions(ctx))
		if action == "" {
			continue
		}

		trueRisk, _ := m.data.TrueRisk(ctx, action)
		var reward float64
		if rng.Float64() < trueRisk {
			reward = 1
		}
		rewardSum += reward

		p := &m.actions[m.data.actionIndex[action]]
		addOuter(p.A, x)
		addScaled(p.B, x, reward)
	}

	m.trained = true
	m.steps = steps
	m.seed = seed

	zap.L().Info("bandit: training complete",
		zap.Int("steps", steps),
		zap.Int64("seed", seed),
		zap.Float64("mean_reward", rewardSum/float64(steps)),
	)
}

// chooseUCB picks the admissible action maximizing theta·x plus the
// exploration bonus alpha·sqrt(xᵗA⁻¹x).
func (m *Model) chooseUCB(x []float64, admissible []string) string {
	best := ""
	bestScore := -1e9
	for _, action := range admissible {
		p := m.actions[m.data.actionIndex[action]]
		inv, err := invert(p.A)
		if err != nil {
			continue
		}
		theta := matVec(inv, p.B)
		score := dot(theta, x) + m.alpha*sqrt(quadForm(inv, x))
		if score > bestScore {
			bestScore = score
			best = action
		}
	}
	return best
}

// Predict estimates deficiency risk for every known action, clamped to
// [0,1] and sorted descending. Ties keep action order (stable sort
// over the fixed action list).
func (m *Model) Predict(country, population, gender string, age float64) []model.RiskEntry {
	x := m.data.Encode(country, population, gender, age)

	entries := make([]model.RiskEntry, 0, len(m.data.Actions()))
	for i, action := range m.data.Actions() {
		p := m.actions[i]
		inv, err := invert(p.A)
		if err != nil {
			continue
		}
		theta := matVec(inv, p.B)
		risk := clamp01(dot(theta, x))
		entries = append(entries, model.RiskEntry{Micronutrient: action, PredictedRisk: risk})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].PredictedRisk > entries[j].PredictedRisk
	})
	return entries
}

// snapshot is the serialized form of trained parameters.
type snapshot struct {
	Alpha   float64  `json:"alpha"`
	Steps   int      `json:"steps"`
	Seed    int64    `json:"seed"`
	Actions []string `json:"actions"`
	Params  []params `json:"params"`
}

// MarshalSnapshot serializes the trained parameters for persistence.
func (m *Model) MarshalSnapshot() ([]byte, error) {
	if !m.trained {
		return nil, eris.New("bandit: cannot snapshot an untrained model")
	}
	return json.Marshal(snapshot{
		Alpha:   m.alpha,
		Steps:   m.steps,
		Seed:    m.seed,
		Actions: m.data.Actions(),
		Params:  m.actions,
	})
}

// RestoreSnapshot loads previously trained parameters instead of
// retraining. The snapshot must match the current dataset's action set
// exactly; otherwise the caller should retrain.
func (m *Model) RestoreSnapshot(raw []byte) error {
	var s snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return eris.Wrap(err, "bandit: decode snapshot")
	}
	if len(s.Actions) != len(m.data.Actions()) || len(s.Params) != len(s.Actions) {
		return eris.New("bandit: snapshot action set does not match dataset")
	}
	for i, a := range m.data.Actions() {
		if s.Actions[i] != a {
			return eris.New("bandit: snapshot action set does not match dataset")
		}
	}
	for _, p := range s.Params {
		if len(p.A) != ContextDim || len(p.B) != ContextDim {
			return eris.New("bandit: snapshot has wrong context dimension")
		}
	}

	m.actions = s.Params
	m.alpha = s.Alpha
	m.steps = s.Steps
	m.seed = s.Seed
	m.trained = true
	return nil
}

// Steps returns the number of training steps run (or restored).
func (m *Model) Steps() int { return m.steps }

// Seed returns the training RNG seed.
func (m *Model) Seed() int64 { return m.seed }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// sqrt guards the exploration bonus against tiny negative quadratic
// forms from float rounding.
func sqrt(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Sqrt(v)
}
