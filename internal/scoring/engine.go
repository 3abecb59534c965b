package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/isaiahriv1234/Freight-Project/internal/ledger"
	"github.com/isaiahriv1234/Freight-Project/pkg/enums"
	"github.com/isaiahriv1234/Freight-Project/pkg/money"
)

const (
	baseScore = 50
	minScore  = 0
	maxScore  = 100

	largeOrderValue = 10000
	smallOrderValue = 1000

	fallbackCarrier = "Ground"
)

// Config carries the pricing constants used by the engine.
type Config struct {
	MinShippingCost   float64
	DefaultGroundCost float64
	DefaultGroundDays int
}

// Engine ranks carriers against historical statistics. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) (*Engine, error) {
	if cfg.MinShippingCost <= 0 {
		return nil, fmt.Errorf("minimum shipping cost must be positive")
	}
	if cfg.DefaultGroundCost < cfg.MinShippingCost {
		return nil, fmt.Errorf("default ground cost must be at least the minimum shipping cost")
	}
	if cfg.DefaultGroundDays <= 0 {
		return nil, fmt.Errorf("default ground days must be positive")
	}
	return &Engine{cfg: cfg}, nil
}

func (e *Engine) Config() Config { return e.cfg }

// Model is the carrier statistics cache for one ledger snapshot.
type Model struct {
	engine   *Engine
	stats    map[string]CarrierStats
	carriers []string
}

// Build computes carrier statistics for orders.
func (e *Engine) Build(orders []ledger.Order) *Model {
	stats := ComputeCarrierStats(orders)
	return &Model{engine: e, stats: stats, carriers: sortedCarriers(stats)}
}

// Stats returns the statistics for every carrier with orders.
func (m *Model) Stats() map[string]CarrierStats {
	out := make(map[string]CarrierStats, len(m.stats))
	for k, v := range m.stats {
		out[k] = v
	}
	return out
}

func (m *Model) CarrierStats(carrier string) (CarrierStats, bool) {
	st, ok := m.stats[carrier]
	return st, ok
}

// HasHistory reports whether any carrier has historical orders.
func (m *Model) HasHistory() bool {
	return len(m.stats) > 0
}

// RecommendationRequest describes a real or hypothetical order.
type RecommendationRequest struct {
	OrderValue     float64              `json:"order_value"`
	WeightCategory enums.WeightCategory `json:"weight_category"`
	Urgency        enums.Urgency        `json:"urgency"`
}

// Recommendation is one ranked carrier option.
type Recommendation struct {
	Carrier            string           `json:"carrier"`
	PredictedCost      float64          `json:"predicted_cost"`
	AvgLeadTime        float64          `json:"avg_lead_time"`
	CostEfficiencyPct  float64          `json:"cost_efficiency_pct"`
	ReliabilityScore   float64          `json:"reliability_score"`
	ProfileReliability float64          `json:"profile_reliability"`
	Score              int              `json:"score"`
	Reasoning          string           `json:"reasoning"`
	Profiled           bool             `json:"profiled"`
	Confidence         enums.Confidence `json:"confidence"`
	Fallback           bool             `json:"fallback"`
}

// RecommendCarriers ranks every carrier with history. With no history at all
// it returns a single low-confidence ground entry.
func (m *Model) RecommendCarriers(req RecommendationRequest) []Recommendation {
	if !req.WeightCategory.IsValid() {
		req.WeightCategory = enums.WeightMedium
	}
	if !req.Urgency.IsValid() {
		req.Urgency = enums.UrgencyStandard
	}
	if !m.HasHistory() {
		return []Recommendation{m.engine.Fallback()}
	}

	recs := make([]Recommendation, 0, len(m.carriers))
	for _, carrier := range m.carriers {
		st := m.stats[carrier]
		profile := LookupProfile(carrier)
		recs = append(recs, Recommendation{
			Carrier:            carrier,
			PredictedCost:      m.engine.PredictCost(st, profile, req.OrderValue),
			AvgLeadTime:        st.MeanLeadTime,
			CostEfficiencyPct:  st.CostEfficiencyPct,
			ReliabilityScore:   reliabilityScore(st.SampleCount),
			ProfileReliability: profile.Reliability,
			Score:              Score(st, profile, req),
			Reasoning:          reasoning(profile, req),
			Profiled:           profile.Profiled(),
			Confidence:         enums.ConfidenceMedium,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		if recs[i].PredictedCost != recs[j].PredictedCost {
			return recs[i].PredictedCost < recs[j].PredictedCost
		}
		return recs[i].Carrier < recs[j].Carrier
	})
	return recs
}

// PredictFor prices an order of orderValue on carrier from its history.
func (m *Model) PredictFor(carrier string, orderValue float64) (float64, bool) {
	st, ok := m.stats[carrier]
	if !ok {
		return 0, false
	}
	return m.engine.PredictCost(st, LookupProfile(carrier), orderValue), true
}

// Engine returns the engine the model was built by.
func (m *Model) Engine() *Engine { return m.engine }

// Fallback is the default ground option used when nothing better is known.
func (e *Engine) Fallback() Recommendation {
	return Recommendation{
		Carrier:       fallbackCarrier,
		PredictedCost: money.Round2(e.cfg.DefaultGroundCost),
		AvgLeadTime:   float64(e.cfg.DefaultGroundDays),
		Score:         baseScore,
		Reasoning:     "No historical carrier data; default ground shipping",
		Profiled:      true,
		Confidence:    enums.ConfidenceLow,
		Fallback:      true,
	}
}

// PredictCost extrapolates the historical mean by order value, floored at
// the minimum shipping cost.
func (e *Engine) PredictCost(st CarrierStats, profile Profile, orderValue float64) float64 {
	predicted := st.MeanCost + (orderValue/1000)*profile.PerThousandRate
	if predicted < e.cfg.MinShippingCost {
		predicted = e.cfg.MinShippingCost
	}
	return money.Round2(predicted)
}

// Score applies the rule adjustments to the base score, clamped to [0,100].
func Score(st CarrierStats, profile Profile, req RecommendationRequest) int {
	score := baseScore

	if st.HasOrderValue() {
		switch {
		case st.CostEfficiencyPct < 5:
			score += 20
		case st.CostEfficiencyPct < 10:
			score += 10
		}
	}

	switch req.Urgency {
	case enums.UrgencyOvernight:
		if profile.SpeedTier == SpeedFastest {
			score += 25
		}
	case enums.UrgencyExpedited:
		if profile.SpeedTier == SpeedFastest || profile.SpeedTier == SpeedFast {
			score += 15
		}
	case enums.UrgencyStandard:
		if profile.CostTier == CostTierLow || profile.CostTier == CostTierLowest {
			score += 15
		}
	}

	switch profile.Kind {
	case KindFreight:
		if req.WeightCategory == enums.WeightHeavy {
			score += 20
		}
		if req.OrderValue > largeOrderValue {
			score += 15
		}
	case KindParcel:
		if req.WeightCategory == enums.WeightLight {
			score += 10
		}
	case KindGround:
		if req.OrderValue < smallOrderValue {
			score += 10
		}
	case KindElectronic, KindUnprofiled:
	}

	if score < minScore {
		return minScore
	}
	if score > maxScore {
		return maxScore
	}
	return score
}

func reliabilityScore(samples int) float64 {
	r := float64(samples) / 10 * 100
	if r > 100 {
		return 100
	}
	return r
}

func reasoning(profile Profile, req RecommendationRequest) string {
	var reasons []string

	switch {
	case profile.Kind == KindFreight && req.WeightCategory == enums.WeightHeavy:
		reasons = append(reasons, "Best for heavy/bulk items")
	case profile.SpeedTier == SpeedFastest && req.Urgency == enums.UrgencyOvernight:
		reasons = append(reasons, "Fastest delivery option")
	case profile.Kind == KindGround && req.Urgency == enums.UrgencyStandard:
		reasons = append(reasons, "Most cost-effective for standard delivery")
	case profile.Kind == KindParcel && profile.CostTier == CostTierMedium:
		reasons = append(reasons, "Good balance of cost and speed")
	}

	switch {
	case profile.CostTier == CostTierLowest:
		reasons = append(reasons, "Lowest cost option")
	case profile.SpeedTier == SpeedFastest:
		reasons = append(reasons, "Fastest delivery")
	}

	if !profile.Profiled() {
		reasons = append(reasons, "Unprofiled carrier; ranked on history only")
	}
	if len(reasons) == 0 {
		return "Standard option"
	}
	return strings.Join(reasons, "; ")
}
