package scoring

import (
	"math"
	"sort"

	"github.com/isaiahriv1234/Freight-Project/internal/ledger"
	"github.com/isaiahriv1234/Freight-Project/pkg/enums"
	"github.com/isaiahriv1234/Freight-Project/pkg/money"
)

// CostSavings estimates what switching every order to the top-ranked
// carrier would have saved.
type CostSavings struct {
	CurrentTotalShipping float64            `json:"current_total_shipping"`
	PotentialSavings     float64            `json:"potential_savings"`
	SavingsPct           float64            `json:"savings_pct"`
	OrdersAnalyzed       int                `json:"orders_analyzed"`
	OrdersOverOptimal    int                `json:"orders_over_optimal"`
	CarrierBreakdown     map[string]float64 `json:"carrier_breakdown"`
}

// SavingsAnalysis compares each order's shipping cost with the predicted
// cost of the best carrier for a medium, standard order of the same value.
func (m *Model) SavingsAnalysis(orders []ledger.Order) CostSavings {
	out := CostSavings{CarrierBreakdown: map[string]float64{}}

	current := 0.0
	savings := 0.0
	for _, o := range orders {
		current += o.ShippingCost
		if o.HasCarrier() {
			out.CarrierBreakdown[o.Carrier] += o.ShippingCost
		}
		if o.ShippingCost <= 0 {
			continue
		}
		out.OrdersAnalyzed++
		recs := m.RecommendCarriers(RecommendationRequest{
			OrderValue:     o.TotalAmount,
			WeightCategory: enums.WeightMedium,
			Urgency:        enums.UrgencyStandard,
		})
		if len(recs) == 0 {
			continue
		}
		if diff := o.ShippingCost - recs[0].PredictedCost; diff > 0 {
			savings += diff
			out.OrdersOverOptimal++
		}
	}

	for carrier, v := range out.CarrierBreakdown {
		out.CarrierBreakdown[carrier] = money.Round2(v)
	}
	out.CurrentTotalShipping = money.Round2(current)
	out.PotentialSavings = money.Round2(savings)
	out.SavingsPct = money.Percent(savings, current)
	return out
}

// CarrierPerformance is the dashboard view of one carrier.
type CarrierPerformance struct {
	Carrier           string  `json:"carrier"`
	AvgCost           float64 `json:"avg_cost"`
	AvgLeadTime       float64 `json:"avg_lead_time"`
	CostEfficiencyPct float64 `json:"cost_efficiency_pct"`
	Shipments         int     `json:"shipments"`
	Reliability       string  `json:"reliability"`
}

// PerformanceSummary lists carriers by name with a sample-size reliability
// label.
func (m *Model) PerformanceSummary() []CarrierPerformance {
	out := make([]CarrierPerformance, 0, len(m.carriers))
	for _, carrier := range m.carriers {
		st := m.stats[carrier]
		out = append(out, CarrierPerformance{
			Carrier:           carrier,
			AvgCost:           st.MeanCost,
			AvgLeadTime:       st.MeanLeadTime,
			CostEfficiencyPct: st.CostEfficiencyPct,
			Shipments:         st.SampleCount,
			Reliability:       reliabilityLabel(st.SampleCount),
		})
	}
	return out
}

func reliabilityLabel(samples int) string {
	switch {
	case samples > 20:
		return "High"
	case samples > 10:
		return "Medium"
	default:
		return "Low"
	}
}

// ValueBand is an order-value range with its cheapest historical carrier.
type ValueBand struct {
	Label            string  `json:"label"`
	Min              float64 `json:"min"`
	Max              float64 `json:"max,omitempty"`
	PreferredCarrier string  `json:"preferred_carrier,omitempty"`
	AvgShipping      float64 `json:"avg_shipping,omitempty"`
	Orders           int     `json:"orders"`
}

var valueBands = []ValueBand{
	{Label: "small", Min: 0, Max: 500},
	{Label: "medium", Min: 500, Max: 2000},
	{Label: "large", Min: 2000, Max: 10000},
	{Label: "enterprise", Min: 10000},
}

// ValueBandPreferences picks, per order-value band, the carrier with the
// lowest mean shipping cost. Ties go to the carrier name that sorts first.
func ValueBandPreferences(orders []ledger.Order) []ValueBand {
	out := make([]ValueBand, len(valueBands))
	copy(out, valueBands)

	for i := range out {
		band := &out[i]
		sums := map[string]float64{}
		counts := map[string]int{}
		for _, o := range orders {
			if !o.HasCarrier() || o.TotalAmount < band.Min {
				continue
			}
			if band.Max > 0 && o.TotalAmount >= band.Max {
				continue
			}
			sums[o.Carrier] += o.ShippingCost
			counts[o.Carrier]++
			band.Orders++
		}

		best := math.Inf(1)
		for _, carrier := range sortedKeys(counts) {
			avg := sums[carrier] / float64(counts[carrier])
			if avg < best {
				best = avg
				band.PreferredCarrier = carrier
			}
		}
		if band.PreferredCarrier != "" {
			band.AvgShipping = money.Round2(best)
		}
	}
	return out
}

func sortedKeys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
