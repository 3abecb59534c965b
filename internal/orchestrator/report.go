package orchestrator

import (
	"context"
	"time"

	"github.com/isaiahriv1234/Freight-Project/internal/compliance"
	"github.com/isaiahriv1234/Freight-Project/internal/consolidation"
	"github.com/isaiahriv1234/Freight-Project/internal/ledger"
	"github.com/isaiahriv1234/Freight-Project/internal/scoring"
	"github.com/isaiahriv1234/Freight-Project/pkg/enums"
	pkgerrors "github.com/isaiahriv1234/Freight-Project/pkg/errors"
	"github.com/isaiahriv1234/Freight-Project/pkg/money"
)

// ShippingRules are the automation triggers derived from history and config.
type ShippingRules struct {
	CarrierPreferences []scoring.ValueBand `json:"carrier_preferences"`
	Consolidation      ConsolidationRules  `json:"consolidation"`
	CostThresholds     CostThresholds      `json:"cost_thresholds"`
}

type ConsolidationRules struct {
	WindowDays             int     `json:"window_days"`
	MinSavings             float64 `json:"min_savings"`
	AutoConsolidateSavings float64 `json:"auto_consolidate_savings"`
	Discount               float64 `json:"discount"`
}

type CostThresholds struct {
	OverchargeMultiplier float64 `json:"overcharge_multiplier"`
	OverchargePct        float64 `json:"overcharge_pct"`
	MinAlertSavings      float64 `json:"min_alert_savings"`
	HighPrioritySavings  float64 `json:"high_priority_savings"`
}

func (r *Run) ShippingRules() ShippingRules {
	cfg := r.engine.cfg
	bcfg := r.engine.batcher.Config()
	return ShippingRules{
		CarrierPreferences: scoring.ValueBandPreferences(r.snapshot.Orders()),
		Consolidation: ConsolidationRules{
			WindowDays:             cfg.WindowDays,
			MinSavings:             bcfg.MinSavings,
			AutoConsolidateSavings: cfg.AutoConsolidateSavings,
			Discount:               bcfg.Discount,
		},
		CostThresholds: CostThresholds{
			OverchargeMultiplier: cfg.OverchargeMultiplier,
			OverchargePct:        money.Round2((cfg.OverchargeMultiplier - 1) * 100),
			MinAlertSavings:      cfg.AlertSavingsThreshold,
			HighPrioritySavings:  cfg.HighPrioritySavings,
		},
	}
}

// Scenario is a representative order the report ranks carriers for.
type Scenario struct {
	Label           string                        `json:"label"`
	Request         scoring.RecommendationRequest `json:"request"`
	Recommendations []scoring.Recommendation      `json:"recommendations"`
}

type CarrierSection struct {
	Stats       map[string]scoring.CarrierStats `json:"stats"`
	Performance []scoring.CarrierPerformance    `json:"performance"`
	Scenarios   []Scenario                      `json:"scenarios"`
	Savings     scoring.CostSavings             `json:"savings"`
	Rules       ShippingRules                   `json:"rules"`
}

type ConsolidationSection struct {
	Opportunities []consolidation.Opportunity `json:"opportunities"`
	Summary       consolidation.Summary       `json:"summary"`
	Batches       []consolidation.BatchResult `json:"batches"`
}

type ComplianceSection struct {
	Performance     compliance.Performance      `json:"performance"`
	Status          []compliance.Status         `json:"status"`
	Alerts          []compliance.Alert          `json:"alerts"`
	Recommendations []compliance.Recommendation `json:"recommendations"`
	Trends          []compliance.CategoryTrend  `json:"trends"`
	Forecast        []compliance.Forecast       `json:"forecast"`
	Suppliers       []compliance.SupplierEntry  `json:"suppliers"`
	Summary         compliance.ExecutiveSummary `json:"summary"`
	Identifications []compliance.Identification `json:"identifications"`
}

// Report is the complete output of one analysis pass.
type Report struct {
	RunID         string               `json:"run_id"`
	GeneratedAt   time.Time            `json:"generated_at"`
	AsOf          time.Time            `json:"as_of"`
	LedgerVersion uint64               `json:"ledger_version"`
	OrderCount    int                  `json:"order_count"`
	TotalSpend    float64              `json:"total_spend"`
	Carriers      CarrierSection       `json:"carriers"`
	Consolidation ConsolidationSection `json:"consolidation"`
	Compliance    ComplianceSection    `json:"compliance"`
	Alerts        []Alert              `json:"alerts"`
	Decisions     []Event              `json:"decisions"`
}

const (
	runResultSuccess = "success"
	runResultFailure = "failure"
)

// Report computes every section. An empty ledger fails fast, and any error
// or cancellation discards the partial result.
func (r *Run) Report(ctx context.Context) (*Report, error) {
	started := r.engine.now()
	report, err := r.buildReport(ctx)
	result := runResultSuccess
	if err != nil {
		result = runResultFailure
	}
	r.engine.metrics.ObserveRun(result, r.engine.now().Sub(started))
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (r *Run) buildReport(ctx context.Context) (*Report, error) {
	ctx = r.engine.logg.WithRunID(ctx, r.id)
	if r.snapshot.IsEmpty() {
		err := pkgerrors.New(pkgerrors.CodeInsufficientData, "order ledger is empty")
		r.engine.logg.Error(ctx, "analysis aborted", err)
		return nil, err
	}

	orders := r.snapshot.Orders()
	report := &Report{
		RunID:         r.id,
		AsOf:          r.asOf,
		LedgerVersion: r.snapshot.Version(),
		OrderCount:    len(orders),
		TotalSpend:    money.Round2(r.snapshot.TotalSpend()),
	}

	report.Carriers = CarrierSection{
		Stats:       r.model.Stats(),
		Performance: r.model.PerformanceSummary(),
		Scenarios:   r.scenarios(orders),
		Savings:     r.model.SavingsAnalysis(orders),
		Rules:       r.ShippingRules(),
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opps, summary := r.Opportunities(r.engine.cfg.WindowDays)
	batches, err := r.Batches(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "batch scheduling")
	}
	report.Consolidation = ConsolidationSection{Opportunities: opps, Summary: summary, Batches: batches}

	report.Compliance = ComplianceSection{
		Performance:     r.tracking.PerformanceSummary(),
		Status:          r.tracking.CheckCompliance(),
		Alerts:          r.tracking.Alerts(),
		Recommendations: r.tracking.Recommendations(),
		Trends:          r.tracking.MonthlyTrends(),
		Forecast:        r.tracking.Forecast(),
		Suppliers:       r.tracking.SupplierDirectory(),
		Summary:         r.tracking.ExecutiveSummary(),
		Identifications: r.tracking.Identifications(),
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report.Alerts = r.GenerateAlerts()
	report.Decisions = r.log.Events()
	report.GeneratedAt = r.engine.now().UTC()

	r.engine.logg.Info(r.engine.logg.WithFields(ctx, map[string]any{
		"orders":    report.OrderCount,
		"alerts":    len(report.Alerts),
		"decisions": len(report.Decisions),
	}), "analysis complete")
	return report, nil
}

// scenarios ranks carriers for a small parcel, the average order, a large
// heavy shipment and an overnight average order.
func (r *Run) scenarios(orders []ledger.Order) []Scenario {
	avg := 0.0
	if len(orders) > 0 {
		sum := 0.0
		for _, o := range orders {
			sum += o.TotalAmount
		}
		avg = money.Round2(sum / float64(len(orders)))
	}
	reqs := []struct {
		label string
		req   scoring.RecommendationRequest
	}{
		{"small_parcel", scoring.RecommendationRequest{OrderValue: 500, WeightCategory: enums.WeightLight, Urgency: enums.UrgencyStandard}},
		{"average_order", scoring.RecommendationRequest{OrderValue: avg, WeightCategory: enums.WeightMedium, Urgency: enums.UrgencyStandard}},
		{"large_freight", scoring.RecommendationRequest{OrderValue: 12000, WeightCategory: enums.WeightHeavy, Urgency: enums.UrgencyStandard}},
		{"overnight", scoring.RecommendationRequest{OrderValue: avg, WeightCategory: enums.WeightMedium, Urgency: enums.UrgencyOvernight}},
	}
	out := make([]Scenario, 0, len(reqs))
	for _, s := range reqs {
		out = append(out, Scenario{Label: s.label, Request: s.req, Recommendations: r.model.RecommendCarriers(s.req)})
	}
	return out
}
