package engine

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hemovita/hemovita-cli/internal/bandit"
	"github.com/hemovita/hemovita-cli/internal/classify"
	"github.com/hemovita/hemovita-cli/internal/config"
	"github.com/hemovita/hemovita-cli/internal/foods"
	"github.com/hemovita/hemovita-cli/internal/model"
	"github.com/hemovita/hemovita-cli/internal/network"
	"github.com/hemovita/hemovita-cli/internal/refdata"
	"github.com/hemovita/hemovita-cli/internal/report"
	"github.com/hemovita/hemovita-cli/internal/schedule"
)

// ReportRequest is one full report query: a lab panel plus demographics.
type ReportRequest struct {
	Labs       map[string]float64 `json:"labs"`
	Patient    model.Patient      `json:"patient"`
	DietFilter string             `json:"diet_filter,omitempty"`
}

// Engine wires the decision components together. All fields are
// immutable after New returns, so one Engine serves concurrent requests.
type Engine struct {
	cfg *config.Config

	ref        *refdata.Store
	classifier *classify.Classifier
	graph      *network.Graph // nil when the relationships file is missing
	explainer  *network.Explainer
	rules      *network.Rules
	scheduler  *schedule.Scheduler
	aliases    network.Aliases
	catalog    *foods.Catalog // nil when the foods file is missing
	dataset    *bandit.Dataset
	bandit     *bandit.Model
}

// New loads all reference data and constructs an untrained engine.
// Cutoffs, aliases, and the risk dataset are required; the interaction
// graph and food catalog are optional and degrade gracefully.
func New(ctx context.Context, cfg *config.Config) (*Engine, error) {
	e := &Engine{cfg: cfg}

	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		ref, err := refdata.Load(cfg.Data.CutoffsPath)
		if err != nil {
			return eris.Wrap(err, "engine: load cutoffs")
		}
		e.ref = ref
		return nil
	})

	g.Go(func() error {
		aliases, err := network.LoadAliases(cfg.Data.AliasesPath)
		if err != nil {
			return eris.Wrap(err, "engine: load aliases")
		}
		e.aliases = aliases
		return nil
	})

	g.Go(func() error {
		data, err := bandit.LoadDataset(cfg.Data.RiskDataPath)
		if err != nil {
			return eris.Wrap(err, "engine: load risk dataset")
		}
		e.dataset = data
		return nil
	})

	g.Go(func() error {
		graph, err := network.LoadGraph(cfg.Data.RelationshipsPath)
		if err != nil {
			zap.L().Warn("engine: interaction graph unavailable, continuing without it",
				zap.String("path", cfg.Data.RelationshipsPath),
				zap.Error(err))
			return nil
		}
		e.graph = graph
		return nil
	})

	g.Go(func() error {
		catalog, err := foods.Load(cfg.Data.FoodsPath)
		if err != nil {
			zap.L().Warn("engine: food catalog unavailable, continuing without it",
				zap.String("path", cfg.Data.FoodsPath),
				zap.Error(err))
			return nil
		}
		e.catalog = catalog
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.classifier = classify.New(e.ref)

	var edges []network.Edge
	if e.graph != nil {
		edges = e.graph.Edges()
		e.explainer = network.NewExplainer(e.graph)
	}
	e.rules = network.DeriveRules(edges, e.aliases.Supplements)
	e.scheduler = schedule.New(e.rules, e.aliases.Supplements)

	e.bandit = bandit.New(e.dataset, cfg.Bandit.Alpha)

	return e, nil
}

// Train runs offline bandit training with the configured step count and
// seed.
func (e *Engine) Train() {
	e.bandit.Train(e.cfg.Bandit.Steps, e.cfg.Bandit.Seed)
}

// Restore loads previously trained bandit parameters. Returns an error
// when the snapshot does not match the current dataset; callers fall
// back to Train.
func (e *Engine) Restore(snapshot []byte) error {
	return e.bandit.RestoreSnapshot(snapshot)
}

// Snapshot serializes the trained bandit parameters for persistence.
func (e *Engine) Snapshot() ([]byte, error) {
	return e.bandit.MarshalSnapshot()
}

// BanditInfo returns the training step count and seed for bookkeeping.
func (e *Engine) BanditInfo() (steps int, seed int64, actions int) {
	return e.bandit.Steps(), e.bandit.Seed(), len(e.dataset.Actions())
}

// ClassifyPanel labels each submitted marker against its reference range.
func (e *Engine) ClassifyPanel(labs map[string]float64) map[string]model.Label {
	return e.classifier.Panel(labs)
}

// Schedule builds a conflict-aware supplement plan from panel labels.
func (e *Engine) Schedule(labels map[string]model.Label) model.Plan {
	return e.scheduler.Build(labels)
}

// Explain returns causal chains ending at each deficient marker, or nil
// when the interaction graph is not loaded.
func (e *Engine) Explain(labels map[string]model.Label) map[string][]string {
	if e.explainer == nil {
		return nil
	}
	return e.explainer.Explain(labels, network.DefaultMaxHops)
}

// RiskProfile answers a demographic risk query. A panicking risk model
// must never take down a report, so failures degrade to a nil profile.
func (e *Engine) RiskProfile(in bandit.ProfileInput) (profile *model.RiskProfile) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("engine: risk model failed", zap.Any("panic", r))
			profile = nil
		}
	}()
	return e.bandit.Profile(in)
}

// BuildReport runs the full decision pipeline for one request.
func (e *Engine) BuildReport(req ReportRequest) (*model.Report, *model.RunResult) {
	start := time.Now()

	labels := e.ClassifyPanel(req.Labs)
	plan := e.Schedule(labels)

	var foodMap map[string][]model.FoodItem
	if e.catalog != nil {
		foodMap = e.catalog.Suggest(labels, e.aliases.FoodBundles, e.cfg.Foods.TopN, req.DietFilter)
	}

	var edges []network.Edge
	if e.graph != nil {
		edges = e.graph.Edges()
	}
	notes := report.PlanNotes(plan, edges, e.aliases.Supplements)

	explanations := e.Explain(labels)
	text := report.Generate(report.Input{
		Labs:         req.Labs,
		Labels:       labels,
		Patient:      req.Patient,
		Plan:         plan,
		Foods:        foodMap,
		Explanations: explanations,
		GraphLoaded:  e.graph != nil,
	})

	out := &model.Report{
		Labels:         labels,
		SupplementPlan: plan.Slots,
		Foods:          foodMap,
		NetworkNotes:   notes,
		ReportText:     text,
	}

	profile := e.RiskProfile(profileInput(req.Patient))
	if profile != nil {
		out.RiskProfile = shapeRiskProfile(profile)
		out.MicronutrientRisks = profile.MicronutrientRisks
		out.RiskSummaryText = profile.SummaryText
		if profile.Disclaimer != "" {
			out.RiskSummaryText = profile.SummaryText + " " + profile.Disclaimer
		}
	}

	result := &model.RunResult{
		LowMarkers:   countLow(labels),
		ForcedPlaced: len(plan.Forced),
		RiskServed:   profile != nil,
		DurationMS:   time.Since(start).Milliseconds(),
	}
	return out, result
}

// profileInput derives the risk query from patient demographics. An
// explicit population overrides the sex-derived default.
func profileInput(p model.Patient) bandit.ProfileInput {
	var population, gender string
	switch {
	case strings.EqualFold(p.Sex, "female"):
		population = "Women"
		if p.Pregnant != nil && *p.Pregnant {
			population = "Pregnant women"
		}
		gender = "Female"
	case strings.EqualFold(p.Sex, "male"):
		population = "Men"
		gender = "Male"
	default:
		population = "Adults"
		gender = "All"
	}
	if p.Population != "" {
		population = p.Population
	}
	return bandit.ProfileInput{
		Country:    p.Country,
		Population: population,
		Gender:     gender,
		Age:        p.Age,
	}
}

// shapeRiskProfile buckets the raw risk profile for the report surface.
func shapeRiskProfile(p *model.RiskProfile) *model.ReportRiskProfile {
	var overall float64
	for _, r := range p.MicronutrientRisks {
		if r.PredictedRisk > overall {
			overall = r.PredictedRisk
		}
	}

	bucket := model.RiskBucketLow
	switch {
	case overall >= 0.66:
		bucket = model.RiskBucketHigh
	case overall >= 0.33:
		bucket = model.RiskBucketModerate
	}

	var high []model.RiskEntry
	for _, r := range p.MicronutrientRisks {
		if r.PredictedRisk >= 0.66 {
			high = append(high, r)
		}
	}

	return &model.ReportRiskProfile{
		OverallRisk:            overall,
		RiskBucket:             bucket,
		HighRiskMicronutrients: high,
		MicronutrientRisks:     p.MicronutrientRisks,
		SummaryText:            p.SummaryText,
		Meta:                   p.Meta,
	}
}

func countLow(labels map[string]model.Label) int {
	n := 0
	for _, l := range labels {
		if l == model.LabelLow {
			n++
		}
	}
	return n
}
