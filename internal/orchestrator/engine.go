package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/isaiahriv1234/Freight-Project/internal/compliance"
	"github.com/isaiahriv1234/Freight-Project/internal/consolidation"
	"github.com/isaiahriv1234/Freight-Project/internal/ledger"
	"github.com/isaiahriv1234/Freight-Project/internal/ratequote"
	"github.com/isaiahriv1234/Freight-Project/internal/scoring"
	"github.com/isaiahriv1234/Freight-Project/pkg/config"
	"github.com/isaiahriv1234/Freight-Project/pkg/enums"
	"github.com/isaiahriv1234/Freight-Project/pkg/logger"
	"github.com/isaiahriv1234/Freight-Project/pkg/metrics"
)

// QuoteSource returns real-time quotes. An empty result means no data.
type QuoteSource interface {
	Quotes(ctx context.Context, req ratequote.Request) []ratequote.Quote
}

// Config holds the alerting thresholds applied on top of the three engines.
type Config struct {
	WindowDays             int
	AlertSavingsThreshold  float64
	HighPrioritySavings    float64
	MaxConsolidationAlerts int
	OverchargeMultiplier   float64
	OverchargeLookbackDays int
	AutoConsolidateSavings float64
	OriginZip              string
}

func (c Config) validate() error {
	if c.WindowDays <= 0 {
		return fmt.Errorf("window days must be positive")
	}
	if c.OverchargeMultiplier <= 1 {
		return fmt.Errorf("overcharge multiplier must be greater than 1")
	}
	if c.OverchargeLookbackDays <= 0 {
		return fmt.Errorf("overcharge lookback days must be positive")
	}
	if c.MaxConsolidationAlerts < 0 {
		return fmt.Errorf("max consolidation alerts must not be negative")
	}
	return nil
}

type Deps struct {
	Scoring    *scoring.Engine
	Batcher    *consolidation.Batcher
	Compliance *compliance.Tracker
	Quotes     QuoteSource
	Logger     *logger.Logger
	Metrics    *metrics.AnalysisMetrics
	Now        func() time.Time
}

// Engine composes scoring, consolidation and compliance into analysis runs.
// It is stateless between runs.
type Engine struct {
	cfg        Config
	scoring    *scoring.Engine
	batcher    *consolidation.Batcher
	compliance *compliance.Tracker
	quotes     QuoteSource
	logg       *logger.Logger
	metrics    *metrics.AnalysisMetrics
	now        func() time.Time
}

func NewEngine(cfg Config, deps Deps) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if deps.Scoring == nil {
		return nil, fmt.Errorf("scoring engine required")
	}
	if deps.Batcher == nil {
		return nil, fmt.Errorf("batcher required")
	}
	if deps.Compliance == nil {
		return nil, fmt.Errorf("compliance tracker required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		cfg:        cfg,
		scoring:    deps.Scoring,
		batcher:    deps.Batcher,
		compliance: deps.Compliance,
		quotes:     deps.Quotes,
		logg:       deps.Logger,
		metrics:    deps.Metrics,
		now:        now,
	}, nil
}

// FromConfig builds the engine and its collaborators from application config.
func FromConfig(cfg *config.Config, quotes QuoteSource, logg *logger.Logger, m *metrics.AnalysisMetrics) (*Engine, error) {
	eng := cfg.Engine

	scorer, err := scoring.NewEngine(scoring.Config{
		MinShippingCost:   eng.MinShippingCost,
		DefaultGroundCost: eng.DefaultGroundCost,
		DefaultGroundDays: eng.DefaultGroundDays,
	})
	if err != nil {
		return nil, fmt.Errorf("scoring: %w", err)
	}

	batcher, err := consolidation.NewBatcher(consolidation.Config{
		WindowDays:       eng.ConsolidationWindowDays,
		Discount:         eng.ConsolidationDiscount,
		MinSavings:       eng.MinConsolidationSavings,
		MaxWaitDays:      eng.BatchMaxWaitDays,
		MinOrders:        eng.BatchMinOrders,
		MinBatchValue:    eng.BatchMinValue,
		MaxBatchSize:     eng.BatchMaxSize,
		IndividualRate:   eng.BatchIndividualShippingRate,
		ConsolidatedRate: eng.BatchConsolidatedShippingRate,
		AdminSavings:     eng.BatchAdminSavingsPerOrder,
		Basis:            consolidation.SavingsBasis(eng.BatchSavingsBasis),
		Parallelism:      eng.BatchParallelism,
	}, logg)
	if err != nil {
		return nil, fmt.Errorf("consolidation: %w", err)
	}

	comp := cfg.Compliance
	tracker, err := compliance.NewTracker(compliance.Config{
		Targets: compliance.Targets{
			Overall: comp.TargetOverall,
			Categories: []compliance.CategoryTarget{
				{Category: enums.DiversityDVBE, Percent: comp.TargetDVBE},
				{Category: enums.DiversityWOB, Percent: comp.TargetWOB},
				{Category: enums.DiversityMBE, Percent: comp.TargetMBE},
			},
		},
		SmallOrderThreshold:         comp.SmallOrderThreshold,
		InfrequentSupplierMaxOrders: comp.InfrequentSupplierMaxOrders,
	})
	if err != nil {
		return nil, fmt.Errorf("compliance: %w", err)
	}

	return NewEngine(Config{
		WindowDays:             eng.ConsolidationWindowDays,
		AlertSavingsThreshold:  eng.AlertSavingsThreshold,
		HighPrioritySavings:    eng.HighPrioritySavings,
		MaxConsolidationAlerts: eng.MaxConsolidationAlerts,
		OverchargeMultiplier:   eng.OverchargeMultiplier,
		OverchargeLookbackDays: eng.OverchargeLookbackDays,
		AutoConsolidateSavings: eng.AutoConsolidateSavings,
		OriginZip:              cfg.RateQuotes.OriginZip,
	}, Deps{
		Scoring:    scorer,
		Batcher:    batcher,
		Compliance: tracker,
		Quotes:     quotes,
		Logger:     logg,
		Metrics:    m,
	})
}

func (e *Engine) Config() Config { return e.cfg }

func (e *Engine) Scoring() *scoring.Engine { return e.scoring }

// NewRun starts an analysis pass over snap. asOf anchors alert deadlines.
func (e *Engine) NewRun(snap *ledger.Snapshot, asOf time.Time) *Run {
	if snap == nil {
		snap = ledger.NewSnapshot(nil, e.cfg.WindowDays, 0, asOf)
	}
	orders := snap.Orders()
	return &Run{
		id:       uuid.NewString(),
		engine:   e,
		snapshot: snap,
		asOf:     asOf.UTC(),
		model:    e.scoring.Build(orders),
		tracking: e.compliance.Analyze(orders),
		log:      newDecisionLog(e.now),
	}
}

// Run is one analysis pass. Its decision log lives and dies with it.
type Run struct {
	id       string
	engine   *Engine
	snapshot *ledger.Snapshot
	asOf     time.Time
	model    *scoring.Model
	tracking *compliance.Analysis
	log      *DecisionLog
}

func (r *Run) ID() string { return r.id }

func (r *Run) AsOf() time.Time { return r.asOf }

func (r *Run) Snapshot() *ledger.Snapshot { return r.snapshot }

func (r *Run) Model() *scoring.Model { return r.model }

func (r *Run) Compliance() *compliance.Analysis { return r.tracking }

func (r *Run) Log() *DecisionLog { return r.log }

// RecommendCarriers ranks carriers for a hypothetical order.
func (r *Run) RecommendCarriers(req scoring.RecommendationRequest) []scoring.Recommendation {
	return r.model.RecommendCarriers(req)
}

// Opportunities scans the ledger for overlapping consolidation windows.
func (r *Run) Opportunities(windowDays int) ([]consolidation.Opportunity, consolidation.Summary) {
	orders := r.snapshot.Orders()
	opps := r.engine.batcher.Opportunities(orders, windowDays)
	return opps, consolidation.Summarize(orders, opps)
}

// Batches runs the sequential batcher over every supplier and logs each
// emitted batch.
func (r *Run) Batches(ctx context.Context) ([]consolidation.BatchResult, error) {
	results, err := r.engine.batcher.Schedule(ctx, r.snapshot)
	if err != nil {
		return nil, err
	}
	for _, b := range consolidation.Flatten(results) {
		r.log.Append(EventBatchEmitted, b.Supplier, fmt.Sprintf("%d orders batched", b.OrderCount), map[string]any{
			"order_ids":         b.OrderIDs,
			"estimated_savings": b.EstimatedSavings,
		})
	}
	return results, nil
}
