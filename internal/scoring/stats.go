package scoring

import (
	"math"
	"sort"

	"github.com/isaiahriv1234/Freight-Project/internal/ledger"
	"github.com/isaiahriv1234/Freight-Project/pkg/money"
)

// CarrierStats summarises historical shipments with one carrier.
type CarrierStats struct {
	Carrier           string  `json:"carrier"`
	MeanCost          float64 `json:"mean_cost"`
	StdCost           float64 `json:"std_cost"`
	MeanLeadTime      float64 `json:"mean_lead_time"`
	LeadTimeSamples   int     `json:"lead_time_samples"`
	SampleCount       int     `json:"sample_count"`
	TotalShipping     float64 `json:"total_shipping"`
	TotalOrderValue   float64 `json:"total_order_value"`
	CostEfficiencyPct float64 `json:"cost_efficiency_pct"`
}

// HasOrderValue reports whether cost efficiency is meaningful.
func (s CarrierStats) HasOrderValue() bool {
	return s.TotalOrderValue > 0
}

// ComputeCarrierStats aggregates orders by carrier. Orders without a carrier
// are skipped, so carriers with zero orders never appear.
func ComputeCarrierStats(orders []ledger.Order) map[string]CarrierStats {
	costs := make(map[string][]float64)
	leadTimes := make(map[string][]float64)
	values := make(map[string]float64)

	for _, o := range orders {
		if !o.HasCarrier() {
			continue
		}
		costs[o.Carrier] = append(costs[o.Carrier], o.ShippingCost)
		values[o.Carrier] += o.TotalAmount
		if o.LeadTimeDays != nil {
			leadTimes[o.Carrier] = append(leadTimes[o.Carrier], float64(*o.LeadTimeDays))
		}
	}

	out := make(map[string]CarrierStats, len(costs))
	for carrier, cs := range costs {
		total := money.Sum(cs...)
		st := CarrierStats{
			Carrier:         carrier,
			SampleCount:     len(cs),
			MeanCost:        money.Round2(mean(cs)),
			StdCost:         money.Round2(sampleStd(cs)),
			TotalShipping:   money.Round2(total),
			TotalOrderValue: money.Round2(values[carrier]),
			LeadTimeSamples: len(leadTimes[carrier]),
		}
		if lt := leadTimes[carrier]; len(lt) > 0 {
			st.MeanLeadTime = money.Round2(mean(lt))
		}
		st.CostEfficiencyPct = money.Percent(total, values[carrier])
		out[carrier] = st
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleStd is the n-1 standard deviation; a single sample has none.
func sampleStd(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	ss := 0.0
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

func sortedCarriers(stats map[string]CarrierStats) []string {
	out := make([]string, 0, len(stats))
	for name := range stats {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
